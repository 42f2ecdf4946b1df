// Package formation holds the named slot templates a roster is built against.
//
// Slot order inside a Formation is the allocation order: positions listed
// first get first claim on the budget.
package formation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/okian/escala/internal/domain/model"
)

// SquadSize is the number of slots every formation must define.
const SquadSize = 12

// Sentinel errors for this package.
var (
	ErrUnknownFormation = errors.New("unknown formation")
	ErrInvalidFormation = errors.New("invalid formation")
)

// Quota is the number of slots required for one position.
type Quota struct {
	Position model.Position `json:"position" koanf:"position"`
	Count    int            `json:"count" koanf:"count"`
}

// Formation is an ordered list of position quotas.
type Formation struct {
	Name  string  `json:"name"`
	Slots []Quota `json:"slots"`
}

// Total returns the number of slots in the formation.
func (f Formation) Total() int {
	n := 0
	for _, q := range f.Slots {
		n += q.Count
	}
	return n
}

// Count returns the quota for p, zero if the formation does not use it.
func (f Formation) Count(p model.Position) int {
	for _, q := range f.Slots {
		if q.Position == p {
			return q.Count
		}
	}
	return 0
}

// Validate checks the formation is usable by the allocator.
func (f Formation) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidFormation)
	}
	seen := make(map[model.Position]bool, len(f.Slots))
	for _, q := range f.Slots {
		if q.Position == model.PositionUnknown {
			return fmt.Errorf("%w: %s has an unknown position", ErrInvalidFormation, f.Name)
		}
		if q.Count <= 0 {
			return fmt.Errorf("%w: %s has a non-positive count for %s", ErrInvalidFormation, f.Name, q.Position)
		}
		if seen[q.Position] {
			return fmt.Errorf("%w: %s lists %s twice", ErrInvalidFormation, f.Name, q.Position)
		}
		seen[q.Position] = true
	}
	if total := f.Total(); total != SquadSize {
		return fmt.Errorf("%w: %s has %d slots, want %d", ErrInvalidFormation, f.Name, total, SquadSize)
	}
	return nil
}

// The two presets. Slot order matches the upstream position ids.
var (
	f433 = Formation{Name: "4-3-3", Slots: []Quota{
		{model.Goalkeeper, 1},
		{model.FullBack, 2},
		{model.CenterBack, 2},
		{model.Midfielder, 3},
		{model.Forward, 3},
		{model.Coach, 1},
	}}
	f442 = Formation{Name: "4-4-2", Slots: []Quota{
		{model.Goalkeeper, 1},
		{model.FullBack, 2},
		{model.CenterBack, 2},
		{model.Midfielder, 4},
		{model.Forward, 2},
		{model.Coach, 1},
	}}
)

// Catalog is an immutable lookup of formations by name.
type Catalog struct {
	byName map[string]Formation
}

// NewCatalog validates and indexes the given formations.
func NewCatalog(formations ...Formation) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]Formation, len(formations))}
	for _, f := range formations {
		if err := f.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byName[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %s", ErrInvalidFormation, f.Name)
		}
		c.byName[f.Name] = clone(f)
	}
	return c, nil
}

// Presets returns copies of the built-in formations.
func Presets() []Formation {
	return []Formation{clone(f433), clone(f442)}
}

// Default returns a catalog holding only the presets.
func Default() *Catalog {
	c, err := NewCatalog(Presets()...)
	if err != nil {
		panic(err) // presets are static
	}
	return c
}

// Lookup returns the named formation or ErrUnknownFormation.
func (c *Catalog) Lookup(name string) (Formation, error) {
	f, ok := c.byName[name]
	if !ok {
		return Formation{}, fmt.Errorf("%w: %q", ErrUnknownFormation, name)
	}
	return clone(f), nil
}

// Has reports whether name is in the catalog.
func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Names returns all formation names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// All returns every formation, sorted by name.
func (c *Catalog) All() []Formation {
	out := make([]Formation, 0, len(c.byName))
	for _, n := range c.Names() {
		out = append(out, clone(c.byName[n]))
	}
	return out
}

func clone(f Formation) Formation {
	return Formation{Name: f.Name, Slots: append([]Quota(nil), f.Slots...)}
}
