package web2pdf

import (
	"context"
	"fmt"
	"os"

	"github.com/go-rod/rod/lib/proto"
)

// pageDriver abstracts the browser-control session to enable testing without
// a browser. rodSession is the production implementation.
type pageDriver interface {
	Navigate(url string) error
	Reload() error
	EmulateScreenMedia() error
	ContentHeightPx() (float64, error)
	PrintToPDF(req *proto.PagePrintToPDF) ([]byte, error)
	HasAny(selectors ...string) (bool, error)
	Close() error
}

// Compile-time interface check.
var _ pageDriver = (*rodSession)(nil)

// Chrome's printToPDF assumes 96 CSS pixels per inch.
const pixelsPerInch = 96.0

// contentHeightJS measures the full document height. Layout engines disagree
// on which of the six root/body metrics reports the real height, so take the
// maximum of all of them.
const contentHeightJS = `() => Math.max(
	document.body.scrollHeight, document.documentElement.scrollHeight,
	document.body.offsetHeight, document.documentElement.offsetHeight,
	document.body.clientHeight, document.documentElement.clientHeight)`

// paperHeightInches converts a measured pixel height to a physical page
// height: px/96 plus margin on top and bottom, clamped to [minIn, maxIn].
func paperHeightInches(heightPx, marginIn, minIn, maxIn float64) float64 {
	h := heightPx/pixelsPerInch + marginIn*2
	if h < minIn {
		return minIn
	}
	if h > maxIn {
		return maxIn
	}
	return h
}

// PDF file permissions: owner read+write, others read.
const pdfFilePermissions = 0o644

// captureEngine renders one URL to a single-tall-page PDF on the shared
// session.
type captureEngine struct {
	drv      pageDriver
	settings CaptureSettings
}

// Capture sizes the paper to the full content height of the page the driver
// currently shows and writes the resulting one-page PDF to dest. Navigation
// and settle delays are the caller's responsibility. Browser-control errors
// propagate unswallowed.
func (e *captureEngine) Capture(ctx context.Context, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := e.drv.EmulateScreenMedia(); err != nil {
		return err
	}

	heightPx, err := e.drv.ContentHeightPx()
	if err != nil {
		return err
	}
	height := paperHeightInches(heightPx, e.settings.MarginInches, e.settings.MinHeightInches, e.settings.MaxHeightInches)

	// The page is exactly as tall as the content, so Chrome emits one
	// physical page. PreferCSSPageSize and DisplayHeaderFooter stay false:
	// the computed height must win over any CSS @page rule.
	pdf, err := e.drv.PrintToPDF(&proto.PagePrintToPDF{
		PrintBackground: true,
		PaperWidth:      floatPtr(e.settings.widthInches()),
		PaperHeight:     floatPtr(height),
		MarginTop:       floatPtr(e.settings.MarginInches),
		MarginBottom:    floatPtr(e.settings.MarginInches),
		MarginLeft:      floatPtr(e.settings.MarginInches),
		MarginRight:     floatPtr(e.settings.MarginInches),
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(dest, pdf, pdfFilePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWritePDF, err)
	}
	return nil
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
