package creature

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

// ErrUnknownCreature is returned when a creature ID has no definition.
var ErrUnknownCreature = errors.New("unknown creature")

// Registry holds all known creature definitions keyed by ID.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register validates def and adds it, overwriting any entry with the same ID.
func (r *Registry) Register(def *Def) error {
	if def == nil {
		return errors.New("creature: nil definition")
	}
	if err := def.Validate(); err != nil {
		return err
	}
	r.defs[def.ID] = def
	return nil
}

// Get returns the definition for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// Lookup returns the definition for id or ErrUnknownCreature.
func (r *Registry) Lookup(id string) (*Def, error) {
	if d, ok := r.defs[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCreature, id)
}

// Upgraded returns the upgraded form of def, if one is registered.
func (r *Registry) Upgraded(def *Def) (*Def, bool) {
	if def == nil || def.Upgrade == "" {
		return nil, false
	}
	return r.Get(def.Upgrade)
}

// UpgradeChain returns def followed by every successive upgrade. The walk stops
// at the first unknown or repeated ID.
func (r *Registry) UpgradeChain(def *Def) []*Def {
	if def == nil {
		return nil
	}
	chain := []*Def{def}
	seen := map[string]bool{def.ID: true}
	for cur := def; ; {
		next, ok := r.Upgraded(cur)
		if !ok || seen[next.ID] {
			return chain
		}
		seen[next.ID] = true
		chain = append(chain, next)
		cur = next
	}
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

type creatureFile struct {
	Creatures []*Def `yaml:"creatures"`
}

// LoadBytes parses a YAML document holding a top-level "creatures" list.
//
// Postcondition: every definition is validated and registered, or an error is returned.
func (r *Registry) LoadBytes(data []byte) error {
	var f creatureFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return fmt.Errorf("parsing creature YAML: %w", err)
	}
	for _, def := range f.Creatures {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// LoadFS reads every *.yaml file in dir of fsys into a new Registry and checks
// that every upgrade target exists.
//
// Postcondition: Returns a non-nil Registry, or an error if any file fails.
func LoadFS(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading creature dir %q: %w", dir, err)
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
	for _, d := range reg.defs {
		if d.Upgrade != "" {
			if _, ok := reg.defs[d.Upgrade]; !ok {
				return nil, fmt.Errorf("creature %q: upgrade %q: %w", d.ID, d.Upgrade, ErrUnknownCreature)
			}
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
