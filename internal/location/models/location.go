package models

import (
	"strings"

	dErrors "crmdir/pkg/domain-errors"
)

// Level is one tier of the geographic hierarchy.
type Level string

const (
	LevelCountry      Level = "country"
	LevelDepartment   Level = "department"
	LevelMunicipality Level = "municipality"
	LevelDistrict     Level = "district"
)

// Levels lists every tier from the root down.
var Levels = []Level{LevelCountry, LevelDepartment, LevelMunicipality, LevelDistrict}

// ParseLevel validates a level name.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if !l.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "unknown location level: "+s)
	}
	return l, nil
}

func (l Level) IsValid() bool {
	switch l {
	case LevelCountry, LevelDepartment, LevelMunicipality, LevelDistrict:
		return true
	}
	return false
}

func (l Level) String() string { return string(l) }

// Parent returns the level directly above l. Countries have no parent.
func (l Level) Parent() (Level, bool) {
	switch l {
	case LevelDepartment:
		return LevelCountry, true
	case LevelMunicipality:
		return LevelDepartment, true
	case LevelDistrict:
		return LevelMunicipality, true
	}
	return "", false
}

// Entity is a resolved node of the location tree.
// ParentID is empty for countries. ISOCode is only set for countries and acts
// as an alternate lookup key.
type Entity struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	ISOCode  string `json:"iso_code,omitempty" yaml:"iso_code,omitempty"`
}

// Matches reports whether key identifies the entity at the given level.
// Countries accept their ISO code as well as their id.
func (e Entity) Matches(level Level, key string) bool {
	if e.ID == key {
		return true
	}
	return level == LevelCountry && e.ISOCode != "" && strings.EqualFold(e.ISOCode, key)
}

// Address is the postal address shape shared with the client directory.
// Country, State, City and District hold location ids.
type Address struct {
	Country    string `json:"country"`
	State      string `json:"state"`
	City       string `json:"city"`
	District   string `json:"district,omitempty"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code,omitempty"`
}
