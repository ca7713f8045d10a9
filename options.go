package flipbook

import "github.com/eka-jashina/flipbook-sub006/format"

// ExtractOptions holds configuration for text extraction.
type ExtractOptions struct {
	// format overrides detection when not Unknown.
	format format.Format

	// withoutFallback disables the heuristic scanner for legacy .doc.
	withoutFallback bool
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		format:          format.Unknown,
		withoutFallback: false,
	}
}

// clone creates a copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	return ExtractOptions{
		format:          o.format,
		withoutFallback: o.withoutFallback,
	}
}
