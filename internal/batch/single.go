package batch

// NewSingleResult builds a SingleResult from what an operation wrote and the
// error it returned. Joined errors are reported one entry each.
func NewSingleResult(outputPath string, outputFiles []string, err error) SingleResult {
	result := SingleResult{
		OutputPath:  outputPath,
		OutputFiles: outputFiles,
		Errors:      ErrorStrings(err),
	}
	if result.OutputPath == "" && len(outputFiles) > 0 {
		result.OutputPath = outputFiles[0]
	}
	result.Success = len(result.Errors) == 0 && result.OutputPath != ""
	return result
}

// FailedSingle reports a single-file operation that produced nothing
func FailedSingle(err error) SingleResult {
	return SingleResult{Errors: ErrorStrings(err)}
}

// ErrorStrings flattens err, expanding errors.Join trees one level
func ErrorStrings(err error) []string {
	if err == nil {
		return []string{}
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs := joined.Unwrap()
		out := make([]string, 0, len(errs))
		for _, e := range errs {
			if e != nil {
				out = append(out, e.Error())
			}
		}
		return out
	}
	return []string{err.Error()}
}
