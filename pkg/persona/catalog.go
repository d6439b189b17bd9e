// Package persona holds the fixed set of named personas a turn fans out to,
// and the runner that asks the model to answer as one of them.
package persona

import (
	"errors"
	"fmt"
	"strings"
)

// MaxPersonasPerTurn caps any active set; the worker pool is sized from it.
const MaxPersonasPerTurn = 3

var ErrUnknownPersona = errors.New("unknown persona")

// Definition is immutable once the catalog is built.
type Definition struct {
	ID           string  `yaml:"id" json:"id"`
	Name         string  `yaml:"name" json:"name"`
	SystemPrompt string  `yaml:"system_prompt" json:"-"`
	Temperature  float64 `yaml:"temperature" json:"temperature"`
	Greeting     string  `yaml:"greeting,omitempty" json:"greeting,omitempty"`
}

type ModeKind string

const (
	ModeEnsemble  ModeKind = "ensemble"
	ModeExclusive ModeKind = "exclusive"
)

// Mode selects which personas answer the next turn.
type Mode struct {
	Kind      ModeKind `json:"kind"`
	PersonaID string   `json:"persona_id,omitempty"`
}

func EnsembleMode() Mode {
	return Mode{Kind: ModeEnsemble}
}

func ExclusiveMode(personaID string) Mode {
	return Mode{Kind: ModeExclusive, PersonaID: personaID}
}

// Catalog is the ordered persona list. Its order is the display order.
type Catalog struct {
	defs     []Definition
	byID     map[string]int
	ensemble map[string]bool
}

// NewCatalog validates defs and the ensemble id list. An empty ensemble means
// every persona answers in ensemble mode.
func NewCatalog(defs []Definition, ensemble []string) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, errors.New("persona: catalog is empty")
	}

	c := &Catalog{
		defs:     make([]Definition, 0, len(defs)),
		byID:     make(map[string]int, len(defs)),
		ensemble: make(map[string]bool),
	}
	for _, d := range defs {
		d.ID = strings.ToLower(strings.TrimSpace(d.ID))
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("persona: duplicate id %q", d.ID)
		}
		c.byID[d.ID] = len(c.defs)
		c.defs = append(c.defs, d)
	}

	if len(ensemble) == 0 {
		for _, d := range c.defs {
			ensemble = append(ensemble, d.ID)
		}
	}
	for _, id := range ensemble {
		id = strings.ToLower(strings.TrimSpace(id))
		if _, ok := c.byID[id]; !ok {
			return nil, fmt.Errorf("persona: ensemble references %w %q", ErrUnknownPersona, id)
		}
		c.ensemble[id] = true
	}
	if len(c.ensemble) > MaxPersonasPerTurn {
		return nil, fmt.Errorf("persona: ensemble has %d personas, at most %d allowed", len(c.ensemble), MaxPersonasPerTurn)
	}

	return c, nil
}

func (d Definition) validate() error {
	if d.ID == "" {
		return errors.New("persona: id is required")
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("persona %q: name is required", d.ID)
	}
	if strings.TrimSpace(d.SystemPrompt) == "" {
		return fmt.Errorf("persona %q: system_prompt is required", d.ID)
	}
	if d.Temperature < 0 || d.Temperature > 2 {
		return fmt.Errorf("persona %q: temperature %.2f outside [0, 2]", d.ID, d.Temperature)
	}
	return nil
}

// All returns every persona in display order.
func (c *Catalog) All() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

func (c *Catalog) Get(id string) (Definition, bool) {
	i, ok := c.byID[strings.ToLower(id)]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// First is the persona that greets new sessions.
func (c *Catalog) First() Definition {
	return c.defs[0]
}

func (c *Catalog) InEnsemble(id string) bool {
	return c.ensemble[id]
}

// MaxSetSize is the largest persona set any mode can produce.
func (c *Catalog) MaxSetSize() int {
	if n := len(c.ensemble); n > 1 {
		return n
	}
	return 1
}

// ResolveMode validates a requested mode against the catalog.
func (c *Catalog) ResolveMode(kind, personaID string) (Mode, error) {
	switch ModeKind(strings.ToLower(kind)) {
	case ModeEnsemble, "":
		return EnsembleMode(), nil
	case ModeExclusive:
		def, ok := c.Get(personaID)
		if !ok {
			return Mode{}, fmt.Errorf("%w %q", ErrUnknownPersona, personaID)
		}
		return ExclusiveMode(def.ID), nil
	default:
		return Mode{}, fmt.Errorf("persona: unknown mode %q", kind)
	}
}

// ActiveSet lists the personas that answer a turn in mode m, in display order.
func (c *Catalog) ActiveSet(m Mode) ([]Definition, error) {
	if m.Kind == ModeExclusive {
		def, ok := c.Get(m.PersonaID)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownPersona, m.PersonaID)
		}
		return []Definition{def}, nil
	}

	out := make([]Definition, 0, len(c.ensemble))
	for _, d := range c.defs {
		if c.ensemble[d.ID] {
			out = append(out, d)
		}
	}
	return out, nil
}
