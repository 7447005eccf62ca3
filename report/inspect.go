package report

import (
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// CountPages reads a PDF and returns its page count.
func CountPages(rs io.ReadSeeker) (int, error) {
	ctx, err := pdfcpu.Read(rs, model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}

	if err := pdfcpu.OptimizeXRefTable(ctx); err != nil {
		return 0, fmt.Errorf("optimize xref: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}
	return ctx.PageCount, nil
}

// CountPagesFile opens path and returns its page count.
func CountPagesFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	return CountPages(f)
}
