// Package masterdata exposes the bundled offline copy of the location tree.
// It is consulted when the remote store has no rows for a parent.
package masterdata

import (
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"crmdir/internal/location/models"
)

//go:embed locations.yaml
var bundled []byte

// Dataset is an immutable, in-memory set of entities per level.
type Dataset struct {
	levels map[models.Level][]models.Entity
}

type document struct {
	Countries      []models.Entity `yaml:"countries"`
	Departments    []models.Entity `yaml:"departments"`
	Municipalities []models.Entity `yaml:"municipalities"`
	Districts      []models.Entity `yaml:"districts"`
}

// Bundled parses the dataset compiled into the binary.
func Bundled() (*Dataset, error) {
	return decode(bundled)
}

// MustBundled is Bundled for process wiring; the embedded file is validated by tests.
func MustBundled() *Dataset {
	ds, err := Bundled()
	if err != nil {
		panic(err)
	}
	return ds
}

// Parse reads a dataset in the bundled YAML layout.
func Parse(r io.Reader) (*Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read master dataset: %w", err)
	}
	return decode(raw)
}

// New builds a dataset from explicit entity lists.
func New(levels map[models.Level][]models.Entity) *Dataset {
	ds := &Dataset{levels: make(map[models.Level][]models.Entity, len(levels))}
	for l, entities := range levels {
		ds.levels[l] = append([]models.Entity(nil), entities...)
	}
	return ds
}

func decode(raw []byte) (*Dataset, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode master dataset: %w", err)
	}
	return New(map[models.Level][]models.Entity{
		models.LevelCountry:      doc.Countries,
		models.LevelDepartment:   doc.Departments,
		models.LevelMunicipality: doc.Municipalities,
		models.LevelDistrict:     doc.Districts,
	}), nil
}

// ChildrenOf returns entities at level whose parent is parentID.
// An empty parentID returns the whole level.
func (d *Dataset) ChildrenOf(level models.Level, parentID string) []models.Entity {
	if d == nil {
		return nil
	}
	all := d.levels[level]
	if parentID == "" {
		return append([]models.Entity(nil), all...)
	}
	var out []models.Entity
	for _, e := range all {
		if e.ParentID == parentID {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entities at level.
func (d *Dataset) Len(level models.Level) int {
	if d == nil {
		return 0
	}
	return len(d.levels[level])
}
