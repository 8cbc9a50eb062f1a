package operations

// NewDefaultRegistry registers every built-in operation. compress_pdf is only
// available when a compressor is given.
func NewDefaultRegistry(pdf PDFCompressor) *Registry {
	r := NewRegistry()
	r.MustRegister(CompressWebP())
	r.MustRegister(ConvertImages())
	r.MustRegister(ResizeImages())
	r.MustRegister(CropImages())
	r.MustRegister(AddWatermark())
	r.MustRegister(StripMetadata())
	r.MustRegister(OptimizeImages())
	r.MustRegister(BulkRename())
	if pdf != nil {
		r.MustRegister(CompressPDF(pdf))
	}
	return r
}
