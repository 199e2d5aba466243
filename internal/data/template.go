package data

import (
	"math/rand"
	"os"
	"sort"

	"github.com/l1jgo/entitycore/internal/component"
	"github.com/l1jgo/entitycore/internal/core/ecs"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ErrUnknownTemplate is returned by Spawn for a name that is not in the table.
var ErrUnknownTemplate = eris.New("unknown entity template")

// Template describes the components an entity is spawned with. Absent
// sections mean the component is not attached.
type Template struct {
	Name      string        `yaml:"name"`
	Permanent bool          `yaml:"permanent"`
	Singleton string        `yaml:"singleton"` // "bounds" or "clock"
	Position  *PositionSpec `yaml:"position"`
	Velocity  *VelocitySpec `yaml:"velocity"`
	Lifetime  int           `yaml:"lifetime"` // ticks, 0 = immortal
	Jitter    float64       `yaml:"jitter"`   // random offset applied to position and velocity
	Bounds    *BoundsSpec   `yaml:"bounds"`
}

type PositionSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type VelocitySpec struct {
	DX float64 `yaml:"dx"`
	DY float64 `yaml:"dy"`
}

type BoundsSpec struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

type templateFile struct {
	Templates []Template `yaml:"templates"`
}

// TemplateTable holds all entity templates indexed by name.
type TemplateTable struct {
	templates map[string]*Template
}

// LoadTemplateTable loads entity templates from a YAML file.
func LoadTemplateTable(path string) (*TemplateTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "read templates")
	}
	return ParseTemplateTable(raw)
}

func ParseTemplateTable(raw []byte) (*TemplateTable, error) {
	var f templateFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, eris.Wrap(err, "parse templates")
	}
	t := &TemplateTable{templates: make(map[string]*Template, len(f.Templates))}
	for i := range f.Templates {
		tpl := &f.Templates[i]
		if tpl.Name == "" {
			return nil, eris.Errorf("template #%d has no name", i)
		}
		if _, dup := t.templates[tpl.Name]; dup {
			return nil, eris.Errorf("duplicate template %q", tpl.Name)
		}
		switch tpl.Singleton {
		case "", "bounds", "clock":
		default:
			return nil, eris.Errorf("template %q: unknown singleton %q", tpl.Name, tpl.Singleton)
		}
		if tpl.Singleton == "bounds" && tpl.Bounds == nil {
			return nil, eris.Errorf("template %q: bounds singleton without bounds", tpl.Name)
		}
		t.templates[tpl.Name] = tpl
	}
	return t, nil
}

// Get returns a template by name.
func (t *TemplateTable) Get(name string) *Template {
	return t.templates[name]
}

// Count returns the number of loaded templates.
func (t *TemplateTable) Count() int {
	return len(t.templates)
}

// Names returns the template names in sorted order.
func (t *TemplateTable) Names() []string {
	names := make([]string, 0, len(t.templates))
	for n := range t.templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Spawn stages an entity built from the named template in c. rng may be nil
// when no jitter is wanted.
func (t *TemplateTable) Spawn(c *ecs.EntityCollection, name string, rng *rand.Rand) (*ecs.Entity, error) {
	tpl := t.templates[name]
	if tpl == nil {
		return nil, eris.Wrapf(ErrUnknownTemplate, "%q", name)
	}

	var e *ecs.Entity
	if tpl.Permanent {
		e = c.CreatePermanentEntity()
	} else {
		e = c.CreateEntity()
	}
	ecs.AddComponent(e, component.Tag{Name: tpl.Name})

	jitter := func() float64 {
		if rng == nil || tpl.Jitter == 0 {
			return 0
		}
		return (rng.Float64()*2 - 1) * tpl.Jitter
	}
	if tpl.Position != nil {
		ecs.AddComponent(e, component.Position{X: tpl.Position.X + jitter(), Y: tpl.Position.Y + jitter()})
	}
	if tpl.Velocity != nil {
		ecs.AddComponent(e, component.Velocity{DX: tpl.Velocity.DX + jitter(), DY: tpl.Velocity.DY + jitter()})
	}
	if tpl.Lifetime > 0 {
		ecs.AddComponent(e, component.Lifetime{Ticks: tpl.Lifetime})
	}

	switch tpl.Singleton {
	case "bounds":
		b := tpl.Bounds
		ecs.AddComponent(e, component.Bounds{MinX: b.MinX, MinY: b.MinY, MaxX: b.MaxX, MaxY: b.MaxY})
		ecs.RegisterSingleton[component.Bounds](c, e)
	case "clock":
		ecs.AddComponent(e, component.Clock{})
		ecs.RegisterSingleton[component.Clock](c, e)
	}
	return e, nil
}
