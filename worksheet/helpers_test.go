package worksheet

import (
	"bytes"
	"testing"

	"github.com/olekukonko/errors"
)

type testFormat uint32

func (f testFormat) XFIndex() uint32 { return uint32(f) }

const (
	bold   = testFormat(1)
	italic = testFormat(2)
	money  = testFormat(3)
)

type memStrings struct {
	ids  map[string]int
	list []string
	fail error
}

func newMemStrings() *memStrings {
	return &memStrings{ids: make(map[string]int)}
}

func (m *memStrings) Intern(s string) (int, error) {
	if m.fail != nil {
		return 0, m.fail
	}
	if id, ok := m.ids[s]; ok {
		return id, nil
	}
	id := len(m.list)
	m.ids[s] = id
	m.list = append(m.list, s)
	return id, nil
}

func newTestSheet(t *testing.T, opts ...Option) (*Worksheet, *memStrings) {
	t.Helper()
	strs := newMemStrings()
	return New("Sheet1", strs, opts...), strs
}

func assemble(t *testing.T, ws *Worksheet) string {
	t.Helper()
	var buf bytes.Buffer
	if err := ws.AssembleXML(&buf); err != nil {
		t.Fatalf("AssembleXML: %v", err)
	}
	return buf.String()
}

func wantCode(t *testing.T, err error, want WriteError) {
	t.Helper()
	if got := Code(err); got != want {
		t.Fatalf("Code(%v) = %s, want %s", err, got, want)
	}
}

var errDiskFull = errors.New("disk full")

// failWriter accepts n bytes and then fails every write.
type failWriter struct {
	n int
}

func (w *failWriter) Write(p []byte) (int, error) {
	if w.n <= 0 {
		return 0, errDiskFull
	}
	if len(p) > w.n {
		k := w.n
		w.n = 0
		return k, errDiskFull
	}
	w.n -= len(p)
	return len(p), nil
}
