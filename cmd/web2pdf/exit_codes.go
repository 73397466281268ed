package main

import (
	"errors"
	"os"

	web2pdf "github.com/alnah/go-web2pdf"
	"github.com/alnah/go-web2pdf/internal/config"
)

// Exit codes for the web2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
	ExitNoURLs  = 5 // URL resolution produced an empty sequence
	ExitNoPages = 6 // Run completed but no page was captured
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Run-level distinct failures (exit 5 and 6)
	if errors.Is(err, web2pdf.ErrNoURLs) {
		return ExitNoURLs
	}
	if errors.Is(err, web2pdf.ErrNothingToMerge) {
		return ExitNoPages
	}

	// Browser errors (exit 4)
	if errors.Is(err, web2pdf.ErrBrowserConnect) ||
		errors.Is(err, web2pdf.ErrPageCreate) ||
		errors.Is(err, web2pdf.ErrPageLoad) ||
		errors.Is(err, web2pdf.ErrScreenEmulation) ||
		errors.Is(err, web2pdf.ErrMeasureHeight) ||
		errors.Is(err, web2pdf.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, web2pdf.ErrReadURLFile) ||
		errors.Is(err, web2pdf.ErrCreateOutputDir) ||
		errors.Is(err, web2pdf.ErrWritePDF) ||
		errors.Is(err, web2pdf.ErrMergePDF) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, web2pdf.ErrInvalidBaseURL) ||
		errors.Is(err, web2pdf.ErrInvalidStep) ||
		errors.Is(err, web2pdf.ErrNoOutputDir) ||
		errors.Is(err, web2pdf.ErrNoMergedPath) ||
		errors.Is(err, web2pdf.ErrInvalidPaperWidth) ||
		errors.Is(err, web2pdf.ErrInvalidMargin) ||
		errors.Is(err, web2pdf.ErrInvalidHeightRange) ||
		errors.Is(err, web2pdf.ErrInvalidWaitRange) ||
		errors.Is(err, web2pdf.ErrInvalidBurstSize) ||
		errors.Is(err, web2pdf.ErrInvalidRetries) ||
		errors.Is(err, ErrSourceMissing) ||
		errors.Is(err, ErrSourceConflict) {
		return ExitUsage
	}

	return ExitGeneral
}
