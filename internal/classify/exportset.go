package classify

// ExportSet is the classification result for one module: the named value
// bindings it exports, the type-only declarations it exports, and whether it
// has a default export. Order within Named and Types mirrors source order.
// An identifier appears in at most one of the two lists; the first
// classification wins when TypeScript declaration merging exports the same
// identifier as both a value and a type.
type ExportSet struct {
	Named      []string
	Types      []string
	HasDefault bool

	seen map[string]struct{}
}

// NewExportSet returns an empty ExportSet.
func NewExportSet() *ExportSet {
	return &ExportSet{seen: make(map[string]struct{})}
}

// AddNamed records a named value export, ignoring duplicates.
func (s *ExportSet) AddNamed(name string) {
	if s.add(name) {
		s.Named = append(s.Named, name)
	}
}

// AddType records a type-only export, ignoring duplicates.
func (s *ExportSet) AddType(name string) {
	if s.add(name) {
		s.Types = append(s.Types, name)
	}
}

func (s *ExportSet) add(name string) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, dup := s.seen[name]; dup {
		return false
	}
	s.seen[name] = struct{}{}
	return true
}

// Empty reports whether the module exposes nothing at all. An empty set is
// valid output, not an error; the renderer emits zero lines for it.
func (s *ExportSet) Empty() bool {
	return len(s.Named) == 0 && len(s.Types) == 0 && !s.HasDefault
}
