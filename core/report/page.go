package report

import "fmt"

// PaperSize tags the two physical formats the center prints on.
type PaperSize string

const (
	// PaperA4 is the standard format.
	PaperA4 PaperSize = "A4"
	// PaperOficio is the long "legal/oficio" format (216mm x 330mm).
	PaperOficio PaperSize = "oficio"
)

// PageLayout is the single source of truth for page geometry: both the
// embedded @page CSS rule and the print-engine options are derived from it,
// so the painted content always matches the physical page.
type PageLayout struct {
	Size PaperSize

	// Explicit physical dimensions, set only for the long format. When set,
	// the engine receives width/height instead of a named format.
	WidthMM  int
	HeightMM int
}

// LayoutFor maps a requested paper size to its layout. Unknown tags fall back
// to the standard format.
func LayoutFor(size PaperSize) PageLayout {
	if size == PaperOficio {
		return PageLayout{Size: PaperOficio, WidthMM: 216, HeightMM: 330}
	}
	return PageLayout{Size: PaperA4}
}

// Explicit reports whether the layout carries explicit physical dimensions
// rather than a named format.
func (l PageLayout) Explicit() bool {
	return l.WidthMM > 0 && l.HeightMM > 0
}

// PageRuleCSS emits the @page size declaration embedded in the document head.
func (l PageLayout) PageRuleCSS() string {
	if l.Explicit() {
		return fmt.Sprintf("@page { size: %dmm %dmm; }", l.WidthMM, l.HeightMM)
	}
	return fmt.Sprintf("@page { size: %s; }", l.Size)
}

const mmPerInch = 25.4

// PrintOptions are the engine-facing rasterization options. Margins are fixed
// independent of paper size; top and bottom are enlarged to reserve room for
// the repeating header/footer bands the engine injects.
type PrintOptions struct {
	// Format names a standard paper format; empty when explicit dimensions
	// are set. Exactly one of (Format) or (WidthIn, HeightIn) is populated.
	Format   string
	WidthIn  float64
	HeightIn float64

	MarginTopIn    float64
	MarginBottomIn float64
	MarginLeftIn   float64
	MarginRightIn  float64

	HeaderHTML string
	FooterHTML string
}

// PrintOptions derives the engine options matching PageRuleCSS.
func (l PageLayout) PrintOptions() PrintOptions {
	opts := PrintOptions{
		MarginTopIn:    1.0,
		MarginBottomIn: 0.8,
		MarginLeftIn:   0.5,
		MarginRightIn:  0.5,
	}
	if l.Explicit() {
		opts.WidthIn = float64(l.WidthMM) / mmPerInch
		opts.HeightIn = float64(l.HeightMM) / mmPerInch
	} else {
		opts.Format = string(l.Size)
	}
	return opts
}
