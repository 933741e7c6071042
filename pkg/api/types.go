package api

import (
	"github.com/MouseMan32/PokHo/pkg/region"
	"github.com/MouseMan32/PokHo/pkg/saves"
	"github.com/MouseMan32/PokHo/pkg/species"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OffsetRequest carries a manual region offset override. The offset is the
// usual text form, decimal or 0x-prefixed hex.
type OffsetRequest struct {
	Offset string `json:"offset"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string
}

// SaveService is the save operations surface the handlers talk to.
type SaveService interface {
	Upload(name string, data []byte) (*saves.SaveInfo, error)
	Get(id string) (*saves.SaveInfo, error)
	List() ([]*saves.SaveInfo, error)
	Delete(id string) error
	SetOffset(id, text string) (*saves.SaveInfo, error)
	ClearOffset(id string) (*saves.SaveInfo, error)
	Scan(id, hintText string) (*saves.ScanResult, error)
	Boxes(id, offsetText string) (*region.Grid, error)
	ExportSlot(id string, box, slot int, offsetText string) ([]byte, error)
}

// SpeciesDirectory resolves species codes to names and answers name queries.
type SpeciesDirectory interface {
	Lookup(code uint16) (string, error)
	Search(query string, limit int) ([]species.Match, error)
}
