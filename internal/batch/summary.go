package batch

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

// Aggregate folds item results into a Summary. Results keep their arrival
// order; callers that need request order should use ByInputPath.
func Aggregate(batchID, operation string, results []ItemResult, total int) Summary {
	summary := Summary{
		BatchID:    batchID,
		Operation:  operation,
		Total:      total,
		Results:    results,
		FinishedAt: time.Now(),
	}
	if summary.Results == nil {
		summary.Results = []ItemResult{}
	}

	summary.Completed = lo.CountBy(results, func(r ItemResult) bool { return r.Success })
	summary.Cancelled = lo.CountBy(results, func(r ItemResult) bool { return r.Cancelled })
	summary.Failed = len(results) - summary.Completed - summary.Cancelled
	summary.InputBytes = lo.SumBy(results, func(r ItemResult) int64 { return r.InputSize })
	summary.OutputBytes = lo.SumBy(results, func(r ItemResult) int64 { return r.OutputSize })

	return summary
}

// Classify maps completed and total counts onto an Outcome. An empty batch
// counts as a failure since nothing was produced.
func Classify(completed, total int) Outcome {
	switch {
	case total <= 0 || completed <= 0:
		return OutcomeFailure
	case completed >= total:
		return OutcomeSuccess
	default:
		return OutcomePartial
	}
}

// Outcome classifies the summary
func (s Summary) Outcome() Outcome {
	return Classify(s.Completed, s.Total)
}

// ByInputPath indexes results by input path
func (s Summary) ByInputPath() map[string]ItemResult {
	return lo.KeyBy(s.Results, func(r ItemResult) string { return r.InputPath })
}

// Message renders a short human readable status line
func (s Summary) Message() string {
	msg := fmt.Sprintf("%d of %d files processed", s.Completed, s.Total)
	switch {
	case s.Failed > 0 && s.Cancelled > 0:
		msg += fmt.Sprintf(" (%d failed, %d cancelled)", s.Failed, s.Cancelled)
	case s.Failed > 0:
		msg += fmt.Sprintf(" (%d failed)", s.Failed)
	case s.Cancelled > 0:
		msg += fmt.Sprintf(" (%d cancelled)", s.Cancelled)
	}
	return msg
}

// SavedBytes is the difference between input and output bytes of successful items
func (s Summary) SavedBytes() int64 {
	successful := lo.Filter(s.Results, func(r ItemResult, _ int) bool { return r.Success })
	in := lo.SumBy(successful, func(r ItemResult) int64 { return r.InputSize })
	out := lo.SumBy(successful, func(r ItemResult) int64 { return r.OutputSize })
	return in - out
}
