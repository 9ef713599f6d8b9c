// Package sst implements the shared-string table of a workbook: every
// distinct cell string is stored once and referenced by id.
package sst

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/errors"
	"github.com/olekukonko/ll"
	"github.com/unidoc/unioffice/schema/soo/sml"
)

var (
	// ErrFull is returned by Intern once the unique-string limit is reached.
	ErrFull = errors.Named("StringTableFull")
	// ErrSealed is returned by Intern after the table has been written.
	ErrSealed = errors.Named("StringTableSealed")
)

type Option func(*Table)

// WithStringLimit caps the number of unique strings. 0 means no limit.
func WithStringLimit(n int) Option {
	return func(t *Table) { t.limit = n }
}

func WithLogger(l *ll.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.log = l.Namespace("sst")
		}
	}
}

// Table interns strings in first-seen order. It is not safe for concurrent
// use.
type Table struct {
	ids    map[string]int
	list   []string
	count  int
	limit  int
	sealed bool
	log    *ll.Logger
}

func New(opts ...Option) *Table {
	t := &Table{
		ids: make(map[string]int),
		log: ll.New("xlsxwriter/sst"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Intern returns the id of s, adding it on first use. Every call counts as
// one reference.
func (t *Table) Intern(s string) (int, error) {
	if t.sealed {
		return 0, ErrSealed
	}
	if id, ok := t.ids[s]; ok {
		t.count++
		return id, nil
	}
	if t.limit > 0 && len(t.list) >= t.limit {
		t.log.Debugf("rejected string %d: limit %d reached", len(t.list)+1, t.limit)
		return 0, ErrFull
	}
	id := len(t.list)
	t.ids[s] = id
	t.list = append(t.list, s)
	t.count++
	return id, nil
}

// Lookup returns the string with the given id.
func (t *Table) Lookup(id int) (string, bool) {
	if id < 0 || id >= len(t.list) {
		return "", false
	}
	return t.list[id], true
}

// Count is the total number of references handed out.
func (t *Table) Count() int { return t.count }

// Unique is the number of distinct strings.
func (t *Table) Unique() int { return len(t.list) }

// Sealed reports whether WriteXML has been called.
func (t *Table) Sealed() bool { return t.sealed }

// WriteXML writes the sharedStrings part and seals the table.
func (t *Table) WriteXML(w io.Writer) error {
	t.sealed = true
	doc := sml.NewSst()
	count, unique := uint32(t.count), uint32(len(t.list))
	doc.CountAttr = &count
	doc.UniqueCountAttr = &unique
	doc.Si = make([]*sml.CT_Rst, len(t.list))
	for i, s := range t.list {
		text := Escape(s)
		doc.Si[i] = sml.NewCT_Rst()
		doc.Si[i].T = &text
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return errors.New("write shared strings").Wrap(err)
	}
	if err := xml.NewEncoder(w).Encode(doc); err != nil {
		return errors.New("write shared strings").Wrap(err)
	}
	t.log.Debugf("wrote %d unique strings, %d references", len(t.list), t.count)
	return nil
}

// Escape replaces control characters other than tab and newline with the
// _xHHHH_ form Excel uses, since XML 1.0 cannot carry them.
func Escape(s string) string {
	if strings.IndexFunc(s, isControl) < 0 {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if isControl(r) {
			fmt.Fprintf(&b, "_x%04X_", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isControl(r rune) bool {
	return r < 0x20 && r != '\t' && r != '\n'
}
