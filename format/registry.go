package format

// Registry owns the formats of one workbook. Equal styles share one Format.
type Registry struct {
	formats []*Format
	byStyle map[Style]*Format
}

func NewRegistry() *Registry {
	def := &Format{style: Style{}.normalize()}
	return &Registry{
		formats: []*Format{def},
		byStyle: map[Style]*Format{def.style: def},
	}
}

// Add returns the Format for s, registering it on first use. The default
// style returns the Format at index 0.
func (r *Registry) Add(s Style) *Format {
	s = s.normalize()
	if f, ok := r.byStyle[s]; ok {
		return f
	}
	f := &Format{style: s, index: uint32(len(r.formats))}
	r.formats = append(r.formats, f)
	r.byStyle[s] = f
	return f
}

// Default returns the Format at index 0.
func (r *Registry) Default() *Format { return r.formats[0] }

// Lookup returns the Format with the given xf index.
func (r *Registry) Lookup(index uint32) (*Format, bool) {
	if int(index) >= len(r.formats) {
		return nil, false
	}
	return r.formats[index], true
}

// Formats returns every Format in index order, the default first.
func (r *Registry) Formats() []*Format { return r.formats }

func (r *Registry) Len() int { return len(r.formats) }
