// Command csv2xlsx converts a CSV file into a single-sheet xlsx workbook.
//
// Numeric fields become number cells, fields starting with '=' become
// formulas and everything else is stored as a shared string. An optional
// YAML layout styles the header row and sets column widths and formats.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/olekukonko/errors"
	"github.com/olekukonko/ll"
	"github.com/olekukonko/ll/lh"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/aerissecure/xlsxwriter"
	"github.com/aerissecure/xlsxwriter/format"
	"github.com/aerissecure/xlsxwriter/preview"
	"github.com/aerissecure/xlsxwriter/worksheet"
)

var version = "dev"

type options struct {
	input     string
	output    string
	sheet     string
	delimiter rune
	encoding  encoding.Encoding
	layout    *layout
	preview   bool
	html      string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("csv2xlsx", flag.ContinueOnError)
	fs.SetOutput(stderr)

	output := fs.String("o", "", "output workbook path")
	layoutPath := fs.String("c", "", "layout YAML file")
	delimiterFlag := fs.String("d", ",", "field delimiter")
	encodingFlag := fs.String("e", "utf-8", "input encoding")
	sheet := fs.String("sheet", "", "worksheet name")
	showPreview := fs.Bool("preview", false, "print the sheet as a table")
	htmlPath := fs.String("html", "", "also render the written workbook as HTML")
	verbose := fs.Bool("v", false, "log progress to stderr")
	showVersion := fs.Bool("version", false, "show version")

	fs.Usage = func() {
		fmt.Fprint(stderr, usageText())
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *showVersion {
		fmt.Fprintln(stdout, version)
		return 0
	}

	rest := fs.Args()
	if len(rest) != 1 {
		fs.Usage()
		return 2
	}

	opts := options{
		input:   rest[0],
		output:  *output,
		sheet:   *sheet,
		preview: *showPreview,
		html:    *htmlPath,
	}
	if opts.output == "" {
		if opts.input == "-" {
			fmt.Fprintln(stderr, "-o is required when reading from stdin")
			return 2
		}
		opts.output = strings.TrimSuffix(opts.input, filepath.Ext(opts.input)) + ".xlsx"
	}

	var err error
	if opts.delimiter, err = parseDelimiter(*delimiterFlag); err != nil {
		fmt.Fprintf(stderr, "invalid delimiter: %v\n", err)
		return 2
	}
	if opts.encoding, err = parseEncoding(*encodingFlag); err != nil {
		fmt.Fprintf(stderr, "invalid encoding: %v\n", err)
		return 2
	}
	if *layoutPath != "" {
		if opts.layout, err = loadLayout(*layoutPath); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		if opts.sheet == "" {
			opts.sheet = opts.layout.Sheet
		}
	}

	logger := ll.New("csv2xlsx")
	if *verbose {
		logger = ll.New("csv2xlsx", ll.WithHandler(lh.NewTextHandler(stderr))).Enable()
	}

	in := stdin
	if opts.input != "-" {
		f, err := os.Open(opts.input)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		defer f.Close()
		in = f
	}

	if err := convert(in, stdout, opts, logger); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func usageText() string {
	return `Usage:

 csv2xlsx [-o OUTPUT] [-c LAYOUT] [-d DELIMITER] [-e ENCODING]
          [-sheet NAME] [-preview] [-html FILE] [-v] [-version]
          input.csv

positional arguments:

  input.csv        CSV file to convert, use '-' to read from STDIN

optional arguments:

  -o OUTPUT        output workbook (default: input with the .xlsx extension)
  -c LAYOUT        YAML layout with sheet, header and columns settings
  -d DELIMITER     field delimiter, 'tab' or 'x09' for a tab (default: ',')
  -e ENCODING      input encoding: utf-8, latin1, windows-1252 (default: utf-8)
  -sheet NAME      worksheet name (default: the layout sheet, or Sheet1)
  -preview         print the converted sheet as a table on STDOUT
  -html FILE       read the written workbook back and render it as HTML
  -v               log progress to STDERR
  -version         show version
`
}

func parseDelimiter(value string) (rune, error) {
	switch strings.ToLower(value) {
	case "tab", "x09", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(value)
	if size == 0 || size != len(value) {
		return 0, errors.Newf("delimiter must be a single character, got %q", value)
	}
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, errors.Newf("%q cannot be used as a delimiter", value)
	}
	return r, nil
}

func parseEncoding(value string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(value, "_", "-")) {
	case "utf-8", "utf8":
		return unicode.UTF8BOM, nil
	case "latin1", "latin-1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	}
	return nil, errors.Newf("unsupported input encoding %q", value)
}

// convert writes the records read from in to opts.output. The destination
// is only created once every record has been stored.
func convert(in io.Reader, stdout io.Writer, opts options, log *ll.Logger) error {
	start := time.Now()
	r := csv.NewReader(opts.encoding.NewDecoder().Reader(in))
	r.Comma = opts.delimiter
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	wb, err := xlsxwriter.NewFile(opts.output, xlsxwriter.WithLogger(log))
	if err != nil {
		return err
	}
	ws, err := wb.AddWorksheet(opts.sheet)
	if err != nil {
		wb.Abort()
		return err
	}
	title := strings.TrimSuffix(filepath.Base(opts.input), filepath.Ext(opts.input))
	if opts.input == "-" {
		title = ws.Name()
	}
	wb.SetProperties(xlsxwriter.Properties{Title: title, Created: start})

	rows, err := fill(wb, ws, r, opts.layout)
	if err != nil {
		wb.Abort()
		return err
	}
	if opts.preview {
		if err := preview.RenderText(stdout, preview.BuildSheet(ws, wb.Strings())); err != nil {
			wb.Abort()
			return err
		}
	}
	if err := wb.Close(); err != nil {
		return err
	}
	log.Infof("wrote %d rows to %s in %s", rows, opts.output, time.Since(start).Round(time.Millisecond))
	if opts.html != "" {
		return writeHTML(opts.output, opts.html)
	}
	return nil
}

// writeHTML renders the workbook at path the way a reader sees it.
func writeHTML(path, dest string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	m, err := preview.ReadWorkbook(f, info.Size())
	if err != nil {
		return errors.Newf("preview %s", path).Wrap(err)
	}
	if err := os.WriteFile(dest, []byte(preview.RenderWorkbookHTML(m)), 0o644); err != nil {
		return errors.Newf("write %s", dest).Wrap(err)
	}
	return nil
}

// fill applies the layout and stores every record. It returns the number of
// records read.
func fill(wb *xlsxwriter.Workbook, ws *worksheet.Worksheet, r *csv.Reader, l *layout) (int, error) {
	var header worksheet.Format
	if l != nil {
		if err := applyColumns(wb, ws, l.Columns); err != nil {
			return 0, err
		}
		if h := l.Header; h != nil {
			f := wb.AddFormat(format.Style{Bold: h.Bold, FillColor: h.Fill})
			if f.XFIndex() != 0 {
				header = f
			}
			height := h.Height
			if height == 0 {
				height = worksheet.DefaultRowHeight
			}
			if err := ws.SetRow(0, height, header, nil); err != nil {
				return 0, err
			}
		}
	}

	row := 0
	for ; ; row++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return row, errors.Newf("read record %d", row+1).Wrap(err)
		}
		var f worksheet.Format
		if row == 0 {
			f = header
		}
		for col, text := range record {
			if err := writeField(ws, row, col, text, f); err != nil {
				return row, err
			}
		}
	}
	return row, nil
}

func applyColumns(wb *xlsxwriter.Workbook, ws *worksheet.Worksheet, cols []columnLayout) error {
	for _, c := range cols {
		first, last, err := parseRange(c.Range)
		if err != nil {
			return err
		}
		width := c.Width
		if width == 0 {
			width = worksheet.DefaultColumnWidth
		}
		var f worksheet.Format
		if c.NumFormat != "" || c.Bold {
			f = wb.AddFormat(format.Style{NumFormat: c.NumFormat, Bold: c.Bold})
		}
		if err := ws.SetColumn(first, last, width, f, &worksheet.RowColOptions{Hidden: c.Hidden}); err != nil {
			return err
		}
	}
	return nil
}

// writeField stores one CSV field. Empty fields are skipped.
func writeField(ws *worksheet.Worksheet, row, col int, text string, f worksheet.Format) error {
	if text == "" {
		return nil
	}
	if len(text) > 1 && text[0] == '=' {
		return ws.WriteFormula(row, col, text, f)
	}
	if v, ok := parseNumber(text); ok {
		return ws.WriteNumber(row, col, v, f)
	}
	return ws.WriteString(row, col, text, f)
}

// parseNumber accepts decimal and exponent notation. Values Excel cannot
// hold, and spellings such as "Inf" or "0x1p3", stay text.
func parseNumber(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	if s == "" || strings.ContainsAny(s, "xXpP_iInN") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
