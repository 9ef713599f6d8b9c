// Package format holds the cell formats of a workbook. Formats are created
// through a Registry, which owns them and assigns each distinct Style a
// stable cell-format (xf) index.
package format

import (
	"strings"
)

// Border line styles.
const (
	BorderNone   = ""
	BorderThin   = "thin"
	BorderMedium = "medium"
	BorderThick  = "thick"
	BorderDashed = "dashed"
	BorderDotted = "dotted"
	BorderDouble = "double"
)

// Style describes a cell format by value. The zero Style is the workbook
// default (Calibri 11, General). Colors are RRGGBB hex, with or without '#'.
type Style struct {
	NumFormat string

	FontName  string
	FontSize  float64
	FontColor string
	Bold      bool
	Italic    bool
	Underline bool
	Strikeout bool

	FillColor string

	Border      string
	BorderColor string

	HAlign string // left, center, right, justify, fill, distributed
	VAlign string // top, center, bottom
	Wrap   bool
	Indent int
}

// Default font of a new workbook.
const (
	DefaultFontName = "Calibri"
	DefaultFontSize = 11.0
)

// normalize fills the font defaults and canonicalizes colors so that equal
// looking styles compare equal.
func (s Style) normalize() Style {
	if s.FontName == "" {
		s.FontName = DefaultFontName
	}
	if s.FontSize <= 0 {
		s.FontSize = DefaultFontSize
	}
	if s.NumFormat == "General" {
		s.NumFormat = ""
	}
	s.FontColor = normalizeColor(s.FontColor)
	s.FillColor = normalizeColor(s.FillColor)
	s.BorderColor = normalizeColor(s.BorderColor)
	s.HAlign = strings.ToLower(s.HAlign)
	s.VAlign = strings.ToLower(s.VAlign)
	if s.VAlign == "middle" {
		s.VAlign = "center"
	}
	if s.Indent < 0 {
		s.Indent = 0
	}
	return s
}

// normalizeColor converts "#rrggbb", "rrggbb" or "AARRGGBB" to upper-case
// RRGGBB.
func normalizeColor(hex string) string {
	hex = strings.ToUpper(strings.TrimPrefix(hex, "#"))
	if len(hex) == 8 {
		return hex[2:]
	}
	return hex
}

func (s Style) hasFont() bool {
	return s.FontName != DefaultFontName || s.FontSize != DefaultFontSize || s.FontColor != "" ||
		s.Bold || s.Italic || s.Underline || s.Strikeout
}

func (s Style) hasFill() bool { return s.FillColor != "" }

func (s Style) hasBorder() bool { return s.Border != BorderNone }

func (s Style) hasAlignment() bool {
	return s.HAlign != "" || s.VAlign != "" || s.Wrap || s.Indent > 0
}

// Format is a registered Style. Worksheets hold *Format values as
// non-owning references.
type Format struct {
	style Style
	index uint32
}

// XFIndex returns the cell-format index written to the s attribute of
// cells, rows and columns. A nil Format is the default, index 0.
func (f *Format) XFIndex() uint32 {
	if f == nil {
		return 0
	}
	return f.index
}

// Style returns the normalized style of f.
func (f *Format) Style() Style {
	if f == nil {
		return Style{}.normalize()
	}
	return f.style
}
