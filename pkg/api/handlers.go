package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MouseMan32/PokHo/pkg/region"
	"github.com/MouseMan32/PokHo/pkg/saves"
	"github.com/MouseMan32/PokHo/pkg/species"
)

// maxUploadBytes caps save uploads. Real saves are a few hundred KiB; the
// limit only exists to bound a hostile request body.
const maxUploadBytes = 64 << 20

// RecordView is the JSON shape of one decoded creature record.
type RecordView struct {
	Species          uint16 `json:"species"`
	SpeciesName      string `json:"species_name,omitempty"`
	Nature           string `json:"nature,omitempty"`
	PersonalityValue uint32 `json:"personality_value"`
	TrainerID        uint16 `json:"trainer_id"`
	SecretID         uint16 `json:"secret_id"`
	Rare             bool   `json:"rare,omitempty"`
}

// SlotView is the JSON shape of one box slot.
type SlotView struct {
	Slot   int         `json:"slot"`
	Offset int         `json:"offset"`
	Class  string      `json:"class"`
	Record *RecordView `json:"record,omitempty"`
}

// BoxView is the JSON shape of one box.
type BoxView struct {
	Box   int        `json:"box"`
	Slots []SlotView `json:"slots"`
}

// GridView is the JSON shape of an assembled box grid.
type GridView struct {
	Offset     int       `json:"offset"`
	ValidCount int       `json:"valid_count"`
	Boxes      []BoxView `json:"boxes"`
}

// Server holds the API server state
type Server struct {
	saves   SaveService
	species SpeciesDirectory
	config  ServerConfig
	metrics *Metrics
	hub     *EventHub
}

// NewServer creates a new API server
func NewServer(saveSvc SaveService, speciesDir SpeciesDirectory, config ServerConfig, metrics *Metrics, hub *EventHub) *Server {
	return &Server{
		saves:   saveSvc,
		species: speciesDir,
		config:  config,
		metrics: metrics,
		hub:     hub,
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	APIResponse
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleUploadSave godoc
//
//	@Summary		Upload a save
//	@Description	Store a raw save blob. The body is the save bytes; an optional name query names it.
//	@Tags			saves
//	@Accept			octet-stream
//	@Produce		json
//	@Param			name	query		string	false	"Display name"
//	@Param			body	body		[]byte	true	"Save bytes"
//	@Success		200		{object}	APIResponse
//	@Failure		400		{object}	APIResponse
//	@Failure		500		{object}	APIResponse
//	@Router			/saves [post]
//	@Security		ApiKeyAuth
func (s *Server) handleUploadSave(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		s.metrics.RecordUpload(false)
		sendError(w, "Failed to read request body", http.StatusRequestEntityTooLarge)
		return
	}

	info, err := s.saves.Upload(r.URL.Query().Get("name"), body)
	if err != nil {
		s.metrics.RecordUpload(false)
		sendServiceError(w, err)
		return
	}

	s.metrics.RecordUpload(true)
	s.hub.Broadcast(EventSaveUploaded, info)
	sendSuccess(w, info)
}

// handleListSaves godoc
//
//	@Summary		List saves
//	@Description	List metadata for every stored save
//	@Tags			saves
//	@Produce		json
//	@Success		200	{object}	APIResponse
//	@Failure		500	{object}	APIResponse
//	@Router			/saves [get]
//	@Security		ApiKeyAuth
func (s *Server) handleListSaves(w http.ResponseWriter, r *http.Request) {
	infos, err := s.saves.List()
	if err != nil {
		sendServiceError(w, err)
		return
	}

	sendSuccess(w, map[string]interface{}{"saves": infos})
}

// handleGetSave godoc
//
//	@Summary		Get save metadata
//	@Description	Get the metadata for one save
//	@Tags			saves
//	@Produce		json
//	@Param			id	path		string	true	"Save ID"
//	@Success		200	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Router			/saves/{id} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetSave(w http.ResponseWriter, r *http.Request) {
	info, err := s.saves.Get(chi.URLParam(r, "id"))
	if err != nil {
		sendServiceError(w, err)
		return
	}

	sendSuccess(w, info)
}

// handleDeleteSave godoc
//
//	@Summary		Delete a save
//	@Description	Delete a save blob and its metadata
//	@Tags			saves
//	@Produce		json
//	@Param			id	path		string	true	"Save ID"
//	@Success		200	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Failure		500	{object}	APIResponse
//	@Router			/saves/{id} [delete]
//	@Security		ApiKeyAuth
func (s *Server) handleDeleteSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.saves.Delete(id); err != nil {
		sendServiceError(w, err)
		return
	}

	s.hub.Broadcast(EventSaveDeleted, map[string]string{"id": id})
	sendSuccess(w, map[string]string{"message": "Save deleted successfully"})
}

// handleScanSave godoc
//
//	@Summary		Scan for the creature region
//	@Description	Locate the record region in a save. An optional hint offset narrows the sweep to a window.
//	@Tags			saves
//	@Produce		json
//	@Param			id		path		string	true	"Save ID"
//	@Param			hint	query		string	false	"Hint offset (decimal or 0x hex)"
//	@Success		200		{object}	APIResponse
//	@Failure		400		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Failure		422		{object}	APIResponse
//	@Router			/saves/{id}/scan [post]
//	@Security		ApiKeyAuth
func (s *Server) handleScanSave(w http.ResponseWriter, r *http.Request) {
	hint := r.URL.Query().Get("hint")
	if hint != "" {
		if _, err := region.ParseOffset(hint); err != nil {
			sendError(w, fmt.Sprintf("Invalid hint offset: %v", err), http.StatusBadRequest)
			return
		}
	}

	id := chi.URLParam(r, "id")
	start := time.Now()
	result, err := s.saves.Scan(id, hint)
	s.metrics.RecordScan(err == nil, time.Since(start))
	if err != nil {
		sendServiceError(w, err)
		return
	}

	s.hub.Broadcast(EventScanCompleted, map[string]interface{}{"id": id, "best": result.Best})
	sendSuccess(w, result)
}

// handleGetBoxes godoc
//
//	@Summary		Get the box grid
//	@Description	Assemble the box view of a save's creature region. Use ?names=true to resolve species names.
//	@Tags			saves
//	@Produce		json
//	@Param			id		path		string	true	"Save ID"
//	@Param			offset	query		string	false	"Explicit region offset (decimal or 0x hex)"
//	@Param			names	query		bool	false	"Resolve species names"
//	@Success		200		{object}	APIResponse
//	@Failure		400		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Failure		422		{object}	APIResponse
//	@Router			/saves/{id}/boxes [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetBoxes(w http.ResponseWriter, r *http.Request) {
	offset := r.URL.Query().Get("offset")
	if offset != "" {
		if _, err := region.ParseOffset(offset); err != nil {
			sendError(w, fmt.Sprintf("Invalid offset: %v", err), http.StatusBadRequest)
			return
		}
	}

	grid, err := s.saves.Boxes(chi.URLParam(r, "id"), offset)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	withNames := r.URL.Query().Get("names") == "true"
	sendSuccess(w, s.buildGridView(grid, withNames))
}

// handleSetOffset godoc
//
//	@Summary		Override the region offset
//	@Description	Persist a manual region offset for a save. The full region must fit inside the save.
//	@Tags			saves
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Save ID"
//	@Param			request	body		OffsetRequest	true	"Offset override"
//	@Success		200		{object}	APIResponse
//	@Failure		400		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Router			/saves/{id}/offset [put]
//	@Security		ApiKeyAuth
func (s *Server) handleSetOffset(w http.ResponseWriter, r *http.Request) {
	var req OffsetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid JSON request", http.StatusBadRequest)
		return
	}
	if _, err := region.ParseOffset(req.Offset); err != nil {
		sendError(w, fmt.Sprintf("Invalid offset: %v", err), http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	info, err := s.saves.SetOffset(id, req.Offset)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	s.hub.Broadcast(EventOffsetOverridden, map[string]interface{}{"id": id, "offset": info.Offset})
	sendSuccess(w, info)
}

// handleClearOffset godoc
//
//	@Summary		Clear the region offset override
//	@Description	Remove the manual region offset from a save, returning it to automatic location.
//	@Tags			saves
//	@Produce		json
//	@Param			id	path		string	true	"Save ID"
//	@Success		200	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Router			/saves/{id}/offset [delete]
//	@Security		ApiKeyAuth
func (s *Server) handleClearOffset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	info, err := s.saves.ClearOffset(id)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	s.hub.Broadcast(EventOffsetOverridden, map[string]interface{}{"id": id, "offset": nil})
	sendSuccess(w, info)
}

// handleExportSlot godoc
//
//	@Summary		Export one slot
//	@Description	Return the raw 232-byte record for one box slot. Empty slots are 404.
//	@Tags			saves
//	@Produce		octet-stream
//	@Param			id		path		string	true	"Save ID"
//	@Param			box		path		int		true	"Box index"
//	@Param			slot	path		int		true	"Slot index"
//	@Param			offset	query		string	false	"Explicit region offset (decimal or 0x hex)"
//	@Success		200		{string}	byte
//	@Failure		400		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Failure		422		{object}	APIResponse
//	@Router			/saves/{id}/export/{box}/{slot} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleExportSlot(w http.ResponseWriter, r *http.Request) {
	box, err := strconv.Atoi(chi.URLParam(r, "box"))
	if err != nil {
		sendError(w, "Invalid box index", http.StatusBadRequest)
		return
	}
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		sendError(w, "Invalid slot index", http.StatusBadRequest)
		return
	}
	offset := r.URL.Query().Get("offset")
	if offset != "" {
		if _, err := region.ParseOffset(offset); err != nil {
			sendError(w, fmt.Sprintf("Invalid offset: %v", err), http.StatusBadRequest)
			return
		}
	}

	id := chi.URLParam(r, "id")
	raw, err := s.saves.ExportSlot(id, box, slot, offset)
	if err != nil {
		s.metrics.RecordExport(false)
		sendServiceError(w, err)
		return
	}

	s.metrics.RecordExport(true)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s-box%d-slot%d.bin", id, box, slot)))
	if _, err := w.Write(raw); err != nil {
		sendError(w, "Failed to write response", http.StatusInternalServerError)
		return
	}
}

// handleGetSpecies godoc
//
//	@Summary		Resolve a species code
//	@Description	Resolve a numeric species code to its name
//	@Tags			species
//	@Produce		json
//	@Param			code	path		int	true	"Species code"
//	@Success		200		{object}	APIResponse
//	@Failure		400		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Router			/species/{code} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetSpecies(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.ParseUint(chi.URLParam(r, "code"), 10, 16)
	if err != nil {
		sendError(w, "Invalid species code", http.StatusBadRequest)
		return
	}

	name, err := s.species.Lookup(uint16(code))
	if err != nil {
		sendServiceError(w, err)
		return
	}

	sendSuccess(w, map[string]interface{}{"code": code, "name": name})
}

// handleSearchSpecies godoc
//
//	@Summary		Search species by name
//	@Description	Search cached species names: exact, then prefix, then fuzzy matches
//	@Tags			species
//	@Produce		json
//	@Param			q		query		string	true	"Name query"
//	@Param			limit	query		int		false	"Maximum number of matches"
//	@Success		200		{object}	APIResponse
//	@Failure		400		{object}	APIResponse
//	@Failure		500		{object}	APIResponse
//	@Router			/species [get]
//	@Security		ApiKeyAuth
func (s *Server) handleSearchSpecies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		sendError(w, "Query parameter q is required", http.StatusBadRequest)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	matches, err := s.species.Search(query, limit)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	sendSuccess(w, map[string]interface{}{"matches": matches})
}

// buildGridView converts a region grid into its JSON shape, resolving species
// names when asked to. A failed name lookup leaves the name blank rather than
// failing the grid.
func (s *Server) buildGridView(grid *region.Grid, withNames bool) *GridView {
	view := &GridView{
		Offset:     grid.Offset,
		ValidCount: grid.ValidCount(),
		Boxes:      make([]BoxView, len(grid.Boxes)),
	}

	names := make(map[uint16]string)
	valid, garbage, empty := 0, 0, 0

	for b, box := range grid.Boxes {
		bv := BoxView{Box: b, Slots: make([]SlotView, len(box))}
		for i := range box {
			slot := &box[i]
			sv := SlotView{Slot: slot.Index, Offset: slot.Offset, Class: slot.Class.String()}

			switch slot.Class {
			case region.SlotValid:
				valid++
			case region.SlotGarbage:
				garbage++
			default:
				empty++
			}

			if slot.Class == region.SlotValid && slot.Record != nil {
				rv := &RecordView{
					Species:          slot.Record.IdentityCode,
					PersonalityValue: slot.Record.PersonalityValue,
					TrainerID:        slot.Record.TrainerID,
					SecretID:         slot.Record.SecretID,
					Rare:             slot.Record.Rare,
				}
				if nature, ok := species.NatureName(slot.Record.NatureIndex); ok {
					rv.Nature = nature
				}
				if withNames {
					name, seen := names[rv.Species]
					if !seen {
						name, _ = s.species.Lookup(rv.Species)
						names[rv.Species] = name
					}
					rv.SpeciesName = name
				}
				sv.Record = rv
			}
			bv.Slots[i] = sv
		}
		view.Boxes[b] = bv
	}

	s.metrics.RecordDecodeOutcomes(valid, garbage, empty)
	return view
}

// sendServiceError maps service errors onto HTTP statuses.
func sendServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, saves.ErrSaveNotFound):
		sendError(w, "Save not found", http.StatusNotFound)
	case errors.Is(err, region.ErrEmptySlot):
		sendError(w, "Slot is empty", http.StatusNotFound)
	case errors.Is(err, species.ErrUnknownSpecies):
		sendError(w, "Unknown species", http.StatusNotFound)
	case errors.Is(err, region.ErrNoRegion):
		sendError(w, "No creature region found", http.StatusUnprocessableEntity)
	case errors.Is(err, saves.ErrEmptySave),
		errors.Is(err, region.ErrBadSlot),
		errors.Is(err, region.ErrOutOfRange):
		sendError(w, err.Error(), http.StatusBadRequest)
	default:
		sendError(w, err.Error(), http.StatusInternalServerError)
	}
}

// startStatsUpdater periodically refreshes the gauge metrics.
func (s *Server) startStatsUpdater() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if infos, err := s.saves.List(); err == nil {
			s.metrics.UpdateSaveStats(len(infos))
		}
		s.metrics.SetWSClients(s.hub.ClientCount())
	}
}
