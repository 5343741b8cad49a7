package models

import (
	"time"

	locmodels "crmdir/internal/location/models"
	id "crmdir/pkg/domain"
	dErrors "crmdir/pkg/domain-errors"
)

// ClientType classifies a directory entry.
type ClientType string

const (
	ClientTypePersonaNatural ClientType = "PersonaNatural"
	ClientTypeOrganizacion   ClientType = "Organización"
	ClientTypeEmpresa        ClientType = "Empresa"
)

func (t ClientType) IsValid() bool {
	switch t {
	case ClientTypePersonaNatural, ClientTypeOrganizacion, ClientTypeEmpresa:
		return true
	}
	return false
}

// ParseClientType validates a client type value.
func ParseClientType(s string) (ClientType, error) {
	t := ClientType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid clientType: "+s)
	}
	return t, nil
}

// Status is the lifecycle stage of a client.
type Status string

const (
	StatusProspecto Status = "Prospecto"
	StatusActivo    Status = "Activo"
	StatusInactivo  Status = "Inactivo"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusProspecto, StatusActivo, StatusInactivo:
		return true
	}
	return false
}

// ParseStatus validates a status value.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid status: "+s)
	}
	return st, nil
}

// ClientRecord is one directory entry as fetched from the document store.
// Records are treated as immutable once handed to the search engine.
type ClientRecord struct {
	ID                  id.ClientID       `json:"id"`
	TenantID            id.TenantID       `json:"tenant_id"`
	Name                string            `json:"name"`
	DocumentID          string            `json:"document_id"`
	ClientType          ClientType        `json:"client_type"`
	Status              Status            `json:"status"`
	Tags                []string          `json:"tags"`
	Source              string            `json:"source,omitempty"`
	Address             locmodels.Address `json:"address"`
	CreatedAt           time.Time         `json:"created_at"`
	LastInteractionDate *time.Time        `json:"last_interaction_date,omitempty"`
	BirthDate           *time.Time        `json:"birth_date,omitempty"`
}
