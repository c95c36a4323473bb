// Package content provides the embedded default creature, spell and script
// definitions and loads overrides from disk.
package content

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/cory-johannsen/warband/internal/config"
	"github.com/cory-johannsen/warband/internal/game/creature"
	"github.com/cory-johannsen/warband/internal/game/spell"
)

// contentFS embeds the default definitions at build time.
//
//go:embed creatures/*.yaml spells/*.yaml scripts/*.lua
var contentFS embed.FS

// FS returns the embedded filesystem containing the default content.
func FS() fs.FS {
	return contentFS
}

// Scripts returns the embedded Lua scripts directory.
func Scripts() (fs.FS, error) {
	return fs.Sub(contentFS, "scripts")
}

// Creatures loads the embedded creature definitions.
func Creatures() (*creature.Registry, error) {
	return creature.LoadFS(contentFS, "creatures")
}

// Spells loads the embedded spell definitions.
func Spells() (*spell.Registry, error) {
	return spell.LoadFS(contentFS, "spells")
}

// Load returns creature and spell registries, reading cfg's directories when
// set and the embedded defaults otherwise.
//
// Postcondition: Returns non-nil registries or a non-nil error.
func Load(cfg config.ContentConfig) (*creature.Registry, *spell.Registry, error) {
	var (
		creatures *creature.Registry
		spells    *spell.Registry
		err       error
	)
	if cfg.CreaturesDir != "" {
		creatures, err = creature.LoadDirectory(cfg.CreaturesDir)
	} else {
		creatures, err = Creatures()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading creatures: %w", err)
	}
	if cfg.SpellsDir != "" {
		spells, err = spell.LoadDirectory(cfg.SpellsDir)
	} else {
		spells, err = Spells()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading spells: %w", err)
	}
	for _, def := range creatures.All() {
		for _, e := range []*creature.Effect{def.SecondaryEffect, def.SpellCaster} {
			if e == nil {
				continue
			}
			if _, err := spells.Lookup(e.Spell); err != nil {
				return nil, nil, fmt.Errorf("creature %q: %w", def.ID, err)
			}
		}
	}
	return creatures, spells, nil
}

// MustLoad returns the embedded registries and panics if they are malformed.
// The embedded files are compiled in, so a failure is a build defect.
func MustLoad() (*creature.Registry, *spell.Registry) {
	creatures, spells, err := Load(config.ContentConfig{})
	if err != nil {
		panic("content: embedded definitions are invalid: " + err.Error())
	}
	return creatures, spells
}
