package spell

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownSpell is returned when a spell ID has no definition.
var ErrUnknownSpell = errors.New("unknown spell")

// Registry holds all known spell definitions keyed by ID.
type Registry struct {
	defs map[ID]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[ID]*Def)}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
//
// Precondition: def must be valid.
func (r *Registry) Register(def *Def) error {
	if def == nil {
		return errors.New("spell: nil definition")
	}
	if err := def.Validate(); err != nil {
		return err
	}
	r.defs[def.ID] = def
	return nil
}

// Get returns the definition for id, or (nil, false) if not found.
func (r *Registry) Get(id ID) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// Lookup returns the definition for id or ErrUnknownSpell.
func (r *Registry) Lookup(id ID) (*Def, error) {
	if d, ok := r.defs[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSpell, id)
}

// ExtraValue returns the extra value of id, or 0 if the spell is unknown.
func (r *Registry) ExtraValue(id ID) int {
	if d, ok := r.defs[id]; ok {
		return d.ExtraValue
	}
	return 0
}

// All returns every definition sorted by ID.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of definitions.
func (r *Registry) Len() int { return len(r.defs) }

type spellFile struct {
	Spells []*Def `yaml:"spells"`
}

// LoadBytes parses a YAML document holding a top-level "spells" list into reg.
//
// Postcondition: every parsed definition is validated and registered, or an
// error is returned.
func (r *Registry) LoadBytes(data []byte) error {
	var f spellFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return fmt.Errorf("parsing spell YAML: %w", err)
	}
	for _, def := range f.Spells {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// LoadFS reads every *.yaml file in dir of fsys into a new Registry.
//
// Postcondition: Returns a non-nil Registry, or an error if any file fails.
func LoadFS(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading spell dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		p := path.Join(dir, e.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		if err := reg.LoadBytes(data); err != nil {
			return nil, fmt.Errorf("loading %q: %w", p, err)
		}
	}
	return reg, nil
}

// LoadDirectory reads every *.yaml file in dir.
//
// Precondition: dir must be a readable directory.
func LoadDirectory(dir string) (*Registry, error) {
	return LoadFS(os.DirFS(dir), ".")
}
