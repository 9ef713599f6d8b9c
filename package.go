package xlsxwriter

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/olekukonko/errors"
	"github.com/unidoc/unioffice/schema/soo/sml"
)

const (
	nsMain          = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPackageRels   = "http://schemas.openxmlformats.org/package/2006/relationships"

	relOfficeDocument = nsRelationships + "/officeDocument"
	relWorksheet      = nsRelationships + "/worksheet"
	relStyles         = nsRelationships + "/styles"
	relSharedStrings  = nsRelationships + "/sharedStrings"
	relExtended       = nsRelationships + "/extended-properties"
	relCore           = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"

	ctWorkbook      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	ctWorksheet     = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	ctStyles        = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
	ctSharedStrings = "application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"
	ctCore          = "application/vnd.openxmlformats-package.core-properties+xml"
	ctExtended      = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
	ctRels          = "application/vnd.openxmlformats-package.relationships+xml"
)

type xlsxDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type xlsxOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type xlsxTypes struct {
	XMLName   xml.Name       `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []xlsxDefault  `xml:"Default"`
	Overrides []xlsxOverride `xml:"Override"`
}

type xlsxRelationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

type xlsxRelationships struct {
	XMLName       xml.Name           `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Relationships []xlsxRelationship `xml:"Relationship"`
}

func writeXML(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(v)
}

func sheetPath(i int) string { return fmt.Sprintf("worksheets/sheet%d.xml", i+1) }

// packager writes the parts of one workbook into a ZIP container.
type packager struct {
	zw *zip.Writer
}

func (p *packager) part(name string, write func(io.Writer) error) error {
	w, err := p.zw.Create(name)
	if err != nil {
		return errors.Newf("create part %s", name).Wrap(err)
	}
	if err := write(w); err != nil {
		return errors.Newf("write part %s", name).Wrap(err)
	}
	return nil
}

func (wb *Workbook) contentTypes(hasStrings bool) xlsxTypes {
	t := xlsxTypes{
		Defaults: []xlsxDefault{
			{Extension: "rels", ContentType: ctRels},
			{Extension: "xml", ContentType: "application/xml"},
		},
		Overrides: []xlsxOverride{
			{PartName: "/docProps/app.xml", ContentType: ctExtended},
			{PartName: "/docProps/core.xml", ContentType: ctCore},
			{PartName: "/xl/styles.xml", ContentType: ctStyles},
			{PartName: "/xl/workbook.xml", ContentType: ctWorkbook},
		},
	}
	for i := range wb.sheets {
		t.Overrides = append(t.Overrides, xlsxOverride{PartName: "/xl/" + sheetPath(i), ContentType: ctWorksheet})
	}
	if hasStrings {
		t.Overrides = append(t.Overrides, xlsxOverride{PartName: "/xl/sharedStrings.xml", ContentType: ctSharedStrings})
	}
	return t
}

func rootRels() xlsxRelationships {
	return xlsxRelationships{Relationships: []xlsxRelationship{
		{ID: "rId1", Type: relOfficeDocument, Target: "xl/workbook.xml"},
		{ID: "rId2", Type: relCore, Target: "docProps/core.xml"},
		{ID: "rId3", Type: relExtended, Target: "docProps/app.xml"},
	}}
}

// workbookRels numbers the worksheets rId1..rIdN, followed by styles and
// shared strings.
func (wb *Workbook) workbookRels(hasStrings bool) xlsxRelationships {
	var rels xlsxRelationships
	for i := range wb.sheets {
		rels.Relationships = append(rels.Relationships, xlsxRelationship{
			ID: fmt.Sprintf("rId%d", i+1), Type: relWorksheet, Target: sheetPath(i),
		})
	}
	n := len(wb.sheets)
	rels.Relationships = append(rels.Relationships, xlsxRelationship{
		ID: fmt.Sprintf("rId%d", n+1), Type: relStyles, Target: "styles.xml",
	})
	if hasStrings {
		rels.Relationships = append(rels.Relationships, xlsxRelationship{
			ID: fmt.Sprintf("rId%d", n+2), Type: relSharedStrings, Target: "sharedStrings.xml",
		})
	}
	return rels
}

// writeWorkbookXML writes xl/workbook.xml. calcPr carries fullCalcOnLoad when
// any worksheet emitted a formula.
func (wb *Workbook) writeWorkbookXML(w io.Writer, recalc bool) error {
	enc := xml.NewEncoder(w)
	start := func(name string, attrs ...xml.Attr) xml.StartElement {
		return xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs}
	}
	root := start("workbook", attr("xmlns", nsMain), attr("xmlns:r", nsRelationships))
	views := start("bookViews")
	view := start("workbookView", attr("activeTab", fmt.Sprint(wb.activeTab())))
	sheets := start("sheets")

	var pr xml.StartElement
	if wb.cfg.date1904 {
		pr = start("workbookPr", attr("date1904", "1"))
	} else {
		pr = start("workbookPr", attr("defaultThemeVersion", "124226"))
	}
	tokens := []xml.Token{
		xml.ProcInst{Target: "xml", Inst: []byte(`version="1.0" encoding="UTF-8" standalone="yes"`)},
		xml.CharData("\n"),
		root,
		pr, pr.End(),
		views, view, view.End(), views.End(),
		sheets,
	}
	for i, ws := range wb.sheets {
		sheet := start("sheet",
			attr("name", ws.Name()),
			attr("sheetId", fmt.Sprint(i+1)),
			attr("r:id", fmt.Sprintf("rId%d", i+1)))
		tokens = append(tokens, sheet, sheet.End())
	}
	tokens = append(tokens, sheets.End())
	for _, tok := range tokens {
		if err := enc.EncodeToken(tok); err != nil {
			return err
		}
	}

	calc := &sml.CT_CalcPr{}
	if recalc {
		on := true
		calc.FullCalcOnLoadAttr = &on
	}
	if err := enc.EncodeElement(calc, start("calcPr")); err != nil {
		return err
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	return enc.Flush()
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}
