package web2pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// pdfMerger abstracts PDF concatenation to allow different backends.
type pdfMerger interface {
	Merge(inputs []string, output string) error
}

// Compile-time interface check.
var _ pdfMerger = (*pdfcpuMerger)(nil)

// pdfcpuMerger concatenates PDFs with pdfcpu. Every page of every input is
// appended in input order; no page count per document is assumed.
type pdfcpuMerger struct{}

// Merge writes the concatenation of inputs (in order) to output.
func (pdfcpuMerger) Merge(inputs []string, output string) error {
	if len(inputs) == 0 {
		return ErrNothingToMerge
	}
	if err := api.MergeCreateFile(inputs, output, false, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrMergePDF, err)
	}
	return nil
}
