// Package xlsxwriter writes Excel 2007+ (.xlsx) workbooks.
//
// Cells are buffered in memory per worksheet and the whole package is
// written on Close:
//
//	wb, err := xlsxwriter.NewFile("report.xlsx")
//	ws, err := wb.AddWorksheet("")
//	bold := wb.AddFormat(format.Style{Bold: true})
//	ws.WriteString(0, 0, "Total", bold)
//	ws.WriteFormula(0, 1, "=SUM(B2:B9)", nil)
//	err = wb.Close()
package xlsxwriter

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/errors"
	"github.com/olekukonko/ll"

	"github.com/aerissecure/xlsxwriter/format"
	"github.com/aerissecure/xlsxwriter/sst"
	"github.com/aerissecure/xlsxwriter/worksheet"
)

// MaxSheetNameLength is the longest worksheet name Excel accepts.
const MaxSheetNameLength = 31

var (
	// ErrClosed is returned by Close and AddWorksheet after the workbook has
	// been closed.
	ErrClosed = errors.Named("WorkbookClosed")
	// ErrSheetName is returned by AddWorksheet for an invalid or duplicate
	// name.
	ErrSheetName = errors.Named("InvalidSheetName")
)

// Workbook owns its worksheets, the shared-string table and the format
// registry. It is not safe for concurrent use.
type Workbook struct {
	out     io.Writer
	file    *os.File
	path    string
	cfg     config
	log     *ll.Logger
	sheets  []*worksheet.Worksheet
	strings *sst.Table
	formats *format.Registry
	props   Properties
	closed  bool
}

// New returns a workbook that writes the package to w on Close.
func New(w io.Writer, opts ...Option) *Workbook {
	cfg := newConfig(opts)
	return &Workbook{
		out:     w,
		cfg:     cfg,
		log:     cfg.logger,
		strings: sst.New(sst.WithStringLimit(cfg.stringLimit), sst.WithLogger(cfg.logger)),
		formats: format.NewRegistry(),
	}
}

// NewFile returns a workbook that is written to path on Close. The data goes
// to a temporary file in the same directory first, so path only ever holds a
// complete package.
func NewFile(path string, opts ...Option) (*Workbook, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, errors.Newf("create %s", path).Wrap(err)
	}
	wb := New(f, opts...)
	wb.file = f
	wb.path = path
	return wb, nil
}

// AddWorksheet adds a sheet. An empty name becomes "SheetN". The first
// worksheet is the selected tab.
func (wb *Workbook) AddWorksheet(name string) (*worksheet.Worksheet, error) {
	if wb.closed {
		return nil, ErrClosed
	}
	if name == "" {
		name = fmt.Sprintf("Sheet%d", len(wb.sheets)+1)
	}
	if err := wb.checkSheetName(name); err != nil {
		return nil, err
	}
	ws := worksheet.New(name, wb.strings,
		worksheet.WithLogger(wb.log),
		worksheet.WithMaxColumnRuns(wb.cfg.maxColumnRuns),
		worksheet.WithDate1904(wb.cfg.date1904))
	if len(wb.sheets) == 0 {
		ws.Select()
	}
	wb.sheets = append(wb.sheets, ws)
	return ws, nil
}

func (wb *Workbook) checkSheetName(name string) error {
	if n := len([]rune(name)); n > MaxSheetNameLength {
		return errors.Newf("sheet name %q is %d characters, the maximum is %d", name, n, MaxSheetNameLength).
			WithName(ErrSheetName.Name())
	}
	if strings.ContainsAny(name, `[]:*?/\`) {
		return errors.Newf("sheet name %q contains one of []:*?/\\", name).WithName(ErrSheetName.Name())
	}
	if strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'") {
		return errors.Newf("sheet name %q starts or ends with an apostrophe", name).WithName(ErrSheetName.Name())
	}
	for _, ws := range wb.sheets {
		if strings.EqualFold(ws.Name(), name) {
			return errors.Newf("sheet name %q is already in use", name).WithName(ErrSheetName.Name())
		}
	}
	return nil
}

// Worksheets returns the sheets in tab order.
func (wb *Workbook) Worksheets() []*worksheet.Worksheet { return wb.sheets }

// Worksheet returns the sheet with the given name.
func (wb *Workbook) Worksheet(name string) (*worksheet.Worksheet, bool) {
	for _, ws := range wb.sheets {
		if strings.EqualFold(ws.Name(), name) {
			return ws, true
		}
	}
	return nil, false
}

// AddFormat registers a cell format. Equal styles return the same *Format.
func (wb *Workbook) AddFormat(s format.Style) *format.Format {
	return wb.formats.Add(s)
}

// Formats exposes the format registry.
func (wb *Workbook) Formats() *format.Registry { return wb.formats }

// Strings exposes the shared-string table.
func (wb *Workbook) Strings() *sst.Table { return wb.strings }

func (wb *Workbook) SetProperties(p Properties) { wb.props = p }

func (wb *Workbook) activeTab() int {
	for i, ws := range wb.sheets {
		if ws.Selected() {
			return i
		}
	}
	return 0
}

// Close serializes every worksheet once, writes the package and releases the
// worksheets. A workbook without worksheets gets an empty "Sheet1". Calling
// Close again returns ErrClosed.
func (wb *Workbook) Close() error {
	if wb.closed {
		return ErrClosed
	}
	if len(wb.sheets) == 0 {
		if _, err := wb.AddWorksheet(""); err != nil {
			return err
		}
	}
	wb.closed = true
	defer wb.free()

	err := wb.writePackage(wb.out)
	if wb.file != nil {
		err = wb.finishFile(err)
	}
	return err
}

// Abort releases the workbook without writing anything. A workbook created
// with NewFile removes its temporary file and leaves the destination alone.
func (wb *Workbook) Abort() {
	if wb.closed {
		return
	}
	wb.closed = true
	wb.free()
	if wb.file != nil {
		wb.file.Close()
		os.Remove(wb.file.Name())
	}
}

func (wb *Workbook) writePackage(w io.Writer) error {
	zw := zip.NewWriter(w)
	p := &packager{zw: zw}

	recalc := false
	for i, ws := range wb.sheets {
		if err := p.part("xl/"+sheetPath(i), ws.AssembleXML); err != nil {
			return err
		}
		recalc = recalc || ws.RecalcOnLoad()
	}
	if recalc {
		wb.log.Debugf("formulas present, setting fullCalcOnLoad")
	}

	hasStrings := wb.strings.Unique() > 0
	names := make([]string, len(wb.sheets))
	for i, ws := range wb.sheets {
		names[i] = ws.Name()
	}
	parts := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"xl/workbook.xml", func(w io.Writer) error { return wb.writeWorkbookXML(w, recalc) }},
		{"xl/_rels/workbook.xml.rels", func(w io.Writer) error { return writeXML(w, wb.workbookRels(hasStrings)) }},
		{"xl/styles.xml", wb.formats.WriteXML},
		{"docProps/core.xml", wb.props.writeCore},
		{"docProps/app.xml", func(w io.Writer) error { return wb.props.writeApp(w, names) }},
		{"_rels/.rels", func(w io.Writer) error { return writeXML(w, rootRels()) }},
		{"[Content_Types].xml", func(w io.Writer) error { return writeXML(w, wb.contentTypes(hasStrings)) }},
	}
	if hasStrings {
		if err := p.part("xl/sharedStrings.xml", wb.strings.WriteXML); err != nil {
			return err
		}
	}
	for _, part := range parts {
		if err := p.part(part.name, part.write); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return errors.New("finish zip container").Wrap(err)
	}
	wb.log.Infof("wrote %d worksheets, %d shared strings, %d formats",
		len(wb.sheets), wb.strings.Unique(), wb.formats.Len())
	return nil
}

// finishFile closes the temporary file and moves it into place, or removes
// it when anything failed.
func (wb *Workbook) finishFile(err error) error {
	name := wb.file.Name()
	if cerr := wb.file.Close(); err == nil && cerr != nil {
		err = errors.Newf("close %s", name).Wrap(cerr)
	}
	if err == nil {
		if rerr := os.Rename(name, wb.path); rerr != nil {
			err = errors.Newf("rename to %s", wb.path).Wrap(rerr)
		}
	}
	if err != nil {
		os.Remove(name)
	}
	return err
}

func (wb *Workbook) free() {
	for _, ws := range wb.sheets {
		ws.Free()
	}
}
