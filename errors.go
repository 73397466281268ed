package web2pdf

import "errors"

// Sentinel errors for library operations.
var (
	// URL resolution errors.
	ErrNoURLs          = errors.New("no URLs to process")
	ErrReadURLFile     = errors.New("failed to read URL list file")
	ErrInvalidBaseURL  = errors.New("invalid base URL")
	ErrInvalidStep     = errors.New("range step must be positive")
	ErrNoOutputDir     = errors.New("output directory not specified")
	ErrNoMergedPath    = errors.New("merged output path not specified")
	ErrCreateOutputDir = errors.New("failed to create output directory")

	// Browser-control errors. These form the transient class the retry
	// controller recovers from; everything else aborts the run.
	ErrBrowserConnect  = errors.New("failed to connect to browser")
	ErrPageCreate      = errors.New("failed to create browser page")
	ErrPageLoad        = errors.New("failed to load page")
	ErrScreenEmulation = errors.New("failed to force screen media emulation")
	ErrMeasureHeight   = errors.New("failed to measure content height")
	ErrPDFGeneration   = errors.New("PDF generation failed")

	ErrWritePDF = errors.New("failed to write PDF file")

	// Merge errors.
	ErrNothingToMerge = errors.New("no PDFs were created; nothing to merge")
	ErrMergePDF       = errors.New("failed to merge PDFs")

	// Settings validation errors.
	ErrInvalidPaperWidth  = errors.New("invalid paper width")
	ErrInvalidMargin      = errors.New("invalid margin")
	ErrInvalidHeightRange = errors.New("invalid height range")
	ErrInvalidWaitRange   = errors.New("invalid wait range")
	ErrInvalidBurstSize   = errors.New("invalid burst size")
	ErrInvalidRetries     = errors.New("invalid retry count")
)

// isBrowserError reports whether err belongs to the transient browser-control
// class that the retry controller backs off and retries.
func isBrowserError(err error) bool {
	return errors.Is(err, ErrBrowserConnect) ||
		errors.Is(err, ErrPageCreate) ||
		errors.Is(err, ErrPageLoad) ||
		errors.Is(err, ErrScreenEmulation) ||
		errors.Is(err, ErrMeasureHeight) ||
		errors.Is(err, ErrPDFGeneration)
}
