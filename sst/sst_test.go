package sst

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/olekukonko/errors"
	"github.com/unidoc/unioffice/schema/soo/sml"
)

func TestIntern(t *testing.T) {
	tbl := New()
	for i, s := range []string{"a", "b", "a", "c", "b", "a"} {
		id, err := tbl.Intern(s)
		if err != nil {
			t.Fatalf("Intern #%d: %v", i, err)
		}
		if got, _ := tbl.Lookup(id); got != s {
			t.Errorf("Lookup(%d) = %q, want %q", id, got, s)
		}
	}
	if tbl.Count() != 6 || tbl.Unique() != 3 {
		t.Errorf("Count, Unique = %d, %d; want 6, 3", tbl.Count(), tbl.Unique())
	}
	if id, _ := tbl.Intern("c"); id != 2 {
		t.Errorf("id of c = %d, want 2", id)
	}
	if _, ok := tbl.Lookup(3); ok {
		t.Error("Lookup(3) found a string")
	}
}

func TestLimit(t *testing.T) {
	tbl := New(WithStringLimit(2))
	for _, s := range []string{"x", "y", "x"} {
		if _, err := tbl.Intern(s); err != nil {
			t.Fatalf("Intern(%q): %v", s, err)
		}
	}
	if _, err := tbl.Intern("z"); !errors.Is(err, ErrFull) {
		t.Errorf("Intern past limit: err = %v, want ErrFull", err)
	}
}

func TestWriteXML(t *testing.T) {
	tbl := New()
	for _, s := range []string{"Hello", " padded ", "bell\a", "Hello", "a<b"} {
		if _, err := tbl.Intern(s); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := tbl.WriteXML(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`count="5" uniqueCount="4">`,
		`<ma:si><ma:t>Hello</ma:t></ma:si>`,
		`<ma:si><ma:t xml:space="preserve"> padded </ma:t></ma:si>`,
		`<ma:si><ma:t>bell_x0007_</ma:t></ma:si>`,
		`<ma:si><ma:t>a&lt;b</ma:t></ma:si>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s\n%s", want, out)
		}
	}

	doc := sml.NewSst()
	if err := xml.Unmarshal(buf.Bytes(), doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Si) != 4 || doc.Si[1].T == nil || *doc.Si[1].T != " padded " {
		t.Errorf("decoded %+v", doc.Si)
	}
	if doc.UniqueCountAttr == nil || *doc.UniqueCountAttr != 4 {
		t.Errorf("uniqueCount = %v", doc.UniqueCountAttr)
	}

	if _, err := tbl.Intern("late"); !errors.Is(err, ErrSealed) {
		t.Errorf("Intern after write: err = %v, want ErrSealed", err)
	}
}

func TestEscape(t *testing.T) {
	cases := map[string]string{
		"plain":        "plain",
		"tab\tand\nnl": "tab\tand\nnl",
		"\x00\x1f":     "_x0000__x001F_",
		"cr\r":         "cr_x000D_",
	}
	for in, want := range cases {
		if got := Escape(in); got != want {
			t.Errorf("Escape(%q) = %q, want %q", in, got, want)
		}
	}
}
