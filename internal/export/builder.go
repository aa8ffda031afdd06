package export

import "sort"

// Builder collects the output files for one analyzed floor plan.
type Builder struct {
	json []byte
	hcl  []byte
	raw  []byte
}

// NewBuilder returns a new Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// SetJSON sets the layout.json content.
func (b *Builder) SetJSON(content []byte) {
	b.json = content
}

// SetHCL sets the layout.hcl content.
func (b *Builder) SetHCL(content []byte) {
	b.hcl = content
}

// SetRaw sets the reply.txt content, written when the reply was not usable.
func (b *Builder) SetRaw(content []byte) {
	b.raw = content
}

// Build returns a map of filename -> content.
func (b *Builder) Build() map[string][]byte {
	out := make(map[string][]byte)
	if len(b.json) > 0 {
		out["layout.json"] = b.json
	}
	if len(b.hcl) > 0 {
		out["layout.hcl"] = b.hcl
	}
	if len(b.raw) > 0 {
		out["reply.txt"] = b.raw
	}
	return out
}

// Names returns the file names of files, sorted.
func Names(files map[string][]byte) []string {
	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
