package format

import (
	"encoding/xml"
	"io"

	"github.com/olekukonko/errors"
	"github.com/unidoc/unioffice/schema/soo/sml"
)

// firstCustomNumFmt is the first id Excel leaves for workbook-defined number
// formats.
const firstCustomNumFmt = 164

var builtinNumFmts = map[string]int{
	"":                         0,
	"0":                        1,
	"0.00":                     2,
	"#,##0":                    3,
	"#,##0.00":                 4,
	"0%":                       9,
	"0.00%":                    10,
	"0.00E+00":                 11,
	"# ?/?":                    12,
	"# ??/??":                  13,
	"mm-dd-yy":                 14,
	"d-mmm-yy":                 15,
	"d-mmm":                    16,
	"mmm-yy":                   17,
	"h:mm AM/PM":               18,
	"h:mm:ss AM/PM":            19,
	"h:mm":                     20,
	"h:mm:ss":                  21,
	"m/d/yy h:mm":              22,
	"#,##0 ;(#,##0)":           37,
	"#,##0 ;[Red](#,##0)":      38,
	"#,##0.00;(#,##0.00)":      39,
	"#,##0.00;[Red](#,##0.00)": 40,
	"mm:ss":                    45,
	"[h]:mm:ss":                46,
	"mm:ss.0":                  47,
	"##0.0E+0":                 48,
	"@":                        49,
}

type fontKey struct {
	name                            string
	size                            float64
	color                           string
	bold, italic, underline, strike bool
}

type borderKey struct {
	style, color string
}

// stylesBuilder deduplicates the fonts, fills, borders and number formats
// referenced by the registered formats.
type stylesBuilder struct {
	sheet   *sml.StyleSheet
	fonts   map[fontKey]int
	fills   map[string]int
	borders map[borderKey]int
	numFmts map[string]int
}

func u32(v int) *uint32 { n := uint32(v); return &n }

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }

func rgbColor(rgb string) *sml.CT_Color {
	c := sml.NewCT_Color()
	c.RgbAttr = strPtr("FF" + rgb)
	return c
}

func indexedColor(i int) *sml.CT_Color {
	c := sml.NewCT_Color()
	c.IndexedAttr = u32(i)
	return c
}

func patternFill(t sml.ST_PatternType) *sml.CT_Fill {
	f := sml.NewCT_Fill()
	f.PatternFill = sml.NewCT_PatternFill()
	f.PatternFill.PatternTypeAttr = t
	return f
}

// setEnum parses v into one of the sml enumerations. Unknown values leave
// dst unset, and unset attributes are not written.
func setEnum(dst interface{ UnmarshalXMLAttr(xml.Attr) error }, v string) {
	_ = dst.UnmarshalXMLAttr(xml.Attr{Value: v})
}

func newStylesBuilder() *stylesBuilder {
	ss := sml.NewStyleSheet()
	ss.Fonts = sml.NewCT_Fonts()
	// Excel requires the first two fills to be none and gray125.
	ss.Fills = sml.NewCT_Fills()
	ss.Fills.Fill = []*sml.CT_Fill{
		patternFill(sml.ST_PatternTypeNone),
		patternFill(sml.ST_PatternTypeGray125),
	}
	ss.Borders = sml.NewCT_Borders()
	empty := sml.NewCT_Border()
	empty.Left = sml.NewCT_BorderPr()
	empty.Right = sml.NewCT_BorderPr()
	empty.Top = sml.NewCT_BorderPr()
	empty.Bottom = sml.NewCT_BorderPr()
	empty.Diagonal = sml.NewCT_BorderPr()
	ss.Borders.Border = []*sml.CT_Border{empty}

	normal := sml.NewCT_Xf()
	normal.NumFmtIdAttr, normal.FontIdAttr, normal.FillIdAttr, normal.BorderIdAttr = u32(0), u32(0), u32(0), u32(0)
	ss.CellStyleXfs = sml.NewCT_CellStyleXfs()
	ss.CellStyleXfs.Xf = []*sml.CT_Xf{normal}
	ss.CellXfs = sml.NewCT_CellXfs()

	ss.CellStyles = sml.NewCT_CellStyles()
	cs := sml.NewCT_CellStyle()
	cs.NameAttr = strPtr("Normal")
	cs.BuiltinIdAttr = u32(0)
	ss.CellStyles.CellStyle = []*sml.CT_CellStyle{cs}

	ss.Dxfs = sml.NewCT_Dxfs()
	ss.Dxfs.CountAttr = u32(0)
	ss.TableStyles = sml.NewCT_TableStyles()
	ss.TableStyles.CountAttr = u32(0)
	ss.TableStyles.DefaultTableStyleAttr = strPtr("TableStyleMedium9")
	ss.TableStyles.DefaultPivotStyleAttr = strPtr("PivotStyleLight16")

	b := &stylesBuilder{
		sheet:   ss,
		fonts:   make(map[fontKey]int),
		fills:   make(map[string]int),
		borders: make(map[borderKey]int),
		numFmts: make(map[string]int),
	}
	b.borders[borderKey{}] = 0
	b.font(Style{}.normalize())
	return b
}

func (b *stylesBuilder) font(s Style) int {
	key := fontKey{s.FontName, s.FontSize, s.FontColor, s.Bold, s.Italic, s.Underline, s.Strikeout}
	if id, ok := b.fonts[key]; ok {
		return id
	}
	f := sml.NewCT_Font()
	f.Sz = []*sml.CT_FontSize{{ValAttr: s.FontSize}}
	f.Name = []*sml.CT_FontName{{ValAttr: s.FontName}}
	f.Family = []*sml.CT_FontFamily{{ValAttr: 2}}
	if s.Bold {
		f.B = []*sml.CT_BooleanProperty{sml.NewCT_BooleanProperty()}
	}
	if s.Italic {
		f.I = []*sml.CT_BooleanProperty{sml.NewCT_BooleanProperty()}
	}
	if s.Strikeout {
		f.Strike = []*sml.CT_BooleanProperty{sml.NewCT_BooleanProperty()}
	}
	if s.Underline {
		f.U = []*sml.CT_UnderlineProperty{{ValAttr: sml.ST_UnderlineValuesSingle}}
	}
	if s.FontColor != "" {
		f.Color = []*sml.CT_Color{rgbColor(s.FontColor)}
	} else {
		theme := sml.NewCT_Color()
		theme.ThemeAttr = u32(1)
		f.Color = []*sml.CT_Color{theme}
	}
	if s.FontName == DefaultFontName {
		f.Scheme = []*sml.CT_FontScheme{{ValAttr: sml.ST_FontSchemeMinor}}
	}
	id := len(b.sheet.Fonts.Font)
	b.sheet.Fonts.Font = append(b.sheet.Fonts.Font, f)
	b.fonts[key] = id
	return id
}

func (b *stylesBuilder) fill(s Style) int {
	if !s.hasFill() {
		return 0
	}
	if id, ok := b.fills[s.FillColor]; ok {
		return id
	}
	f := patternFill(sml.ST_PatternTypeSolid)
	f.PatternFill.FgColor = rgbColor(s.FillColor)
	f.PatternFill.BgColor = indexedColor(64)
	id := len(b.sheet.Fills.Fill)
	b.sheet.Fills.Fill = append(b.sheet.Fills.Fill, f)
	b.fills[s.FillColor] = id
	return id
}

func (b *stylesBuilder) border(s Style) int {
	key := borderKey{s.Border, s.BorderColor}
	if id, ok := b.borders[key]; ok {
		return id
	}
	side := func() *sml.CT_BorderPr {
		pr := sml.NewCT_BorderPr()
		setEnum(&pr.StyleAttr, s.Border)
		pr.Color = indexedColor(64)
		if s.BorderColor != "" {
			pr.Color = rgbColor(s.BorderColor)
		}
		return pr
	}
	bd := sml.NewCT_Border()
	bd.Left, bd.Right, bd.Top, bd.Bottom = side(), side(), side(), side()
	bd.Diagonal = sml.NewCT_BorderPr()
	id := len(b.sheet.Borders.Border)
	b.sheet.Borders.Border = append(b.sheet.Borders.Border, bd)
	b.borders[key] = id
	return id
}

func (b *stylesBuilder) numFmt(code string) int {
	if id, ok := builtinNumFmts[code]; ok {
		return id
	}
	if id, ok := b.numFmts[code]; ok {
		return id
	}
	if b.sheet.NumFmts == nil {
		b.sheet.NumFmts = sml.NewCT_NumFmts()
	}
	id := firstCustomNumFmt + len(b.sheet.NumFmts.NumFmt)
	b.sheet.NumFmts.NumFmt = append(b.sheet.NumFmts.NumFmt, &sml.CT_NumFmt{
		NumFmtIdAttr:   uint32(id),
		FormatCodeAttr: code,
	})
	b.numFmts[code] = id
	return id
}

func (b *stylesBuilder) xf(s Style) *sml.CT_Xf {
	xf := sml.NewCT_Xf()
	numFmt := b.numFmt(s.NumFormat)
	xf.NumFmtIdAttr = u32(numFmt)
	xf.FontIdAttr = u32(b.font(s))
	xf.FillIdAttr = u32(b.fill(s))
	xf.BorderIdAttr = u32(b.border(s))
	xf.XfIdAttr = u32(0)
	if numFmt != 0 {
		xf.ApplyNumberFormatAttr = boolPtr(true)
	}
	if s.hasFont() {
		xf.ApplyFontAttr = boolPtr(true)
	}
	if s.hasFill() {
		xf.ApplyFillAttr = boolPtr(true)
	}
	if s.hasBorder() {
		xf.ApplyBorderAttr = boolPtr(true)
	}
	if s.hasAlignment() {
		xf.ApplyAlignmentAttr = boolPtr(true)
		a := sml.NewCT_CellAlignment()
		if s.HAlign != "" {
			setEnum(&a.HorizontalAttr, s.HAlign)
		}
		if s.VAlign != "" {
			setEnum(&a.VerticalAttr, s.VAlign)
		}
		if s.Wrap {
			a.WrapTextAttr = boolPtr(true)
		}
		if s.Indent > 0 {
			a.IndentAttr = u32(s.Indent)
		}
		xf.Alignment = a
	}
	return xf
}

func (b *stylesBuilder) finish() *sml.StyleSheet {
	sh := b.sheet
	if sh.NumFmts != nil {
		sh.NumFmts.CountAttr = u32(len(sh.NumFmts.NumFmt))
	}
	sh.Fonts.CountAttr = u32(len(sh.Fonts.Font))
	sh.Fills.CountAttr = u32(len(sh.Fills.Fill))
	sh.Borders.CountAttr = u32(len(sh.Borders.Border))
	sh.CellStyleXfs.CountAttr = u32(len(sh.CellStyleXfs.Xf))
	sh.CellXfs.CountAttr = u32(len(sh.CellXfs.Xf))
	sh.CellStyles.CountAttr = u32(len(sh.CellStyles.CellStyle))
	return sh
}

// WriteXML writes the styles part with one cellXfs entry per registered
// format, in index order.
func (r *Registry) WriteXML(w io.Writer) error {
	b := newStylesBuilder()
	for _, f := range r.formats {
		b.sheet.CellXfs.Xf = append(b.sheet.CellXfs.Xf, b.xf(f.style))
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return errors.New("write styles").Wrap(err)
	}
	if err := xml.NewEncoder(w).Encode(b.finish()); err != nil {
		return errors.New("write styles").Wrap(err)
	}
	return nil
}
