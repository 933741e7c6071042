// Package saves manages uploaded save files: blob persistence, metadata,
// offset overrides, and the scan/boxes/export operations the CLI and API
// expose.
package saves

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/MouseMan32/PokHo/pkg/region"
	"github.com/MouseMan32/PokHo/pkg/storage"
	"github.com/MouseMan32/PokHo/pkg/store"
)

var (
	// ErrSaveNotFound is returned when no save exists for the given id.
	ErrSaveNotFound = errors.New("saves: save not found")

	// ErrEmptySave is returned for uploads with no bytes.
	ErrEmptySave = errors.New("saves: save data is empty")
)

const saveKeyPrefix = "save:"

func saveKey(id string) []byte {
	return []byte(saveKeyPrefix + id)
}

// SaveInfo is the stored metadata for one uploaded save.
type SaveInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Size        int       `json:"size"`
	RegionSized bool      `json:"region_sized"`
	UploadedAt  time.Time `json:"uploaded_at"`

	// Offset is the manual region offset override, when one has been set.
	Offset *int `json:"offset,omitempty"`

	// LastAutopick remembers the best offset from the most recent scan and
	// seeds later autopicks.
	LastAutopick *int `json:"last_autopick,omitempty"`
}

// ScanResult is the outcome of a region scan.
type ScanResult struct {
	Best   region.Candidate   `json:"best"`
	Ranked []region.Candidate `json:"ranked"`
}

// Service ties the blob store, the metadata store and the region engine
// together. Save bytes are immutable once uploaded; every operation below
// only ever reads them.
type Service struct {
	blobs  *storage.BlobStore
	meta   *store.MetaStore
	params region.ScanParams
}

func NewService(blobs *storage.BlobStore, meta *store.MetaStore, params region.ScanParams) *Service {
	return &Service{blobs: blobs, meta: meta, params: params}
}

// Upload stores the blob and its metadata, returning the new save's info.
// The id doubles as the blob key.
func (s *Service) Upload(name string, data []byte) (*SaveInfo, error) {
	if len(data) == 0 {
		return nil, ErrEmptySave
	}

	id, err := s.blobs.Create(data)
	if err != nil {
		return nil, fmt.Errorf("saves: store blob: %w", err)
	}

	info := &SaveInfo{
		ID:          id.String(),
		Name:        name,
		Size:        len(data),
		RegionSized: region.IsRegionLength(len(data)),
		UploadedAt:  time.Now().UTC(),
	}
	if info.Name == "" {
		info.Name = info.ID
	}

	if err := s.putInfo(info); err != nil {
		// Do not leave an orphaned blob behind.
		s.blobs.Delete(id)
		return nil, err
	}
	return info, nil
}

// Get returns the metadata for one save.
func (s *Service) Get(id string) (*SaveInfo, error) {
	doc, err := s.meta.Get(saveKey(id))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, ErrSaveNotFound
		}
		return nil, fmt.Errorf("saves: load metadata for %s: %w", id, err)
	}

	var info SaveInfo
	if err := json.Unmarshal(doc, &info); err != nil {
		return nil, fmt.Errorf("saves: decode metadata for %s: %w", id, err)
	}
	return &info, nil
}

// List returns metadata for every stored save, ordered by key.
func (s *Service) List() ([]*SaveInfo, error) {
	keys, err := s.meta.ListKeys([]byte(saveKeyPrefix))
	if err != nil {
		return nil, fmt.Errorf("saves: list: %w", err)
	}

	infos := make([]*SaveInfo, 0, len(keys))
	for _, key := range keys {
		info, err := s.Get(strings.TrimPrefix(key, saveKeyPrefix))
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Delete removes a save's blob and metadata.
func (s *Service) Delete(id string) error {
	info, err := s.Get(id)
	if err != nil {
		return err
	}

	kid, err := ksuid.Parse(info.ID)
	if err != nil {
		return fmt.Errorf("saves: bad blob id %q: %w", info.ID, err)
	}
	if err := s.blobs.Delete(kid); err != nil {
		return fmt.Errorf("saves: delete blob: %w", err)
	}
	if err := s.meta.Delete(saveKey(id)); err != nil {
		return fmt.Errorf("saves: delete metadata: %w", err)
	}
	return nil
}

// SetOffset parses and persists a manual region offset override. The full
// region must fit inside the save.
func (s *Service) SetOffset(id, text string) (*SaveInfo, error) {
	info, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	off, err := region.ParseOffset(text)
	if err != nil {
		return nil, err
	}
	if off > info.Size-region.RegionSize {
		return nil, fmt.Errorf("saves: offset %d leaves no full region in %d bytes: %w",
			off, info.Size, region.ErrOutOfRange)
	}

	info.Offset = &off
	if err := s.putInfo(info); err != nil {
		return nil, err
	}
	return info, nil
}

// ClearOffset removes the manual offset override.
func (s *Service) ClearOffset(id string) (*SaveInfo, error) {
	info, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	info.Offset = nil
	if err := s.putInfo(info); err != nil {
		return nil, err
	}
	return info, nil
}

// Scan locates the record region. With a hint the windowed autopick runs,
// otherwise the full coarse-to-fine sweep. The best offset is remembered on
// the save for later boxes/export calls. region.ErrNoRegion passes through
// untouched.
func (s *Service) Scan(id, hintText string) (*ScanResult, error) {
	info, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	blob, err := s.loadBlob(info)
	if err != nil {
		return nil, err
	}

	var result *ScanResult
	if hintText != "" {
		hint, err := region.ParseOffset(hintText)
		if err != nil {
			return nil, err
		}
		best, ranked, err := region.Autopick(blob, hint, s.params)
		if err != nil {
			return nil, err
		}
		result = &ScanResult{Best: best, Ranked: ranked}
	} else {
		candidates, err := region.Locate(blob, s.params)
		if err != nil {
			return nil, err
		}
		result = &ScanResult{Best: candidates[0], Ranked: candidates}
	}

	best := result.Best.Offset
	info.LastAutopick = &best
	if err := s.putInfo(info); err != nil {
		return nil, err
	}
	return result, nil
}

// Boxes assembles the box grid for a save at the resolved region offset.
func (s *Service) Boxes(id, offsetText string) (*region.Grid, error) {
	info, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	blob, err := s.loadBlob(info)
	if err != nil {
		return nil, err
	}

	off, err := s.resolveOffset(info, blob, offsetText)
	if err != nil {
		return nil, err
	}
	return region.Assemble(blob, off), nil
}

// ExportSlot returns the raw 232 bytes for one slot at the resolved region
// offset. Empty and garbage slots yield region.ErrEmptySlot.
func (s *Service) ExportSlot(id string, box, slot int, offsetText string) ([]byte, error) {
	info, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	blob, err := s.loadBlob(info)
	if err != nil {
		return nil, err
	}

	off, err := s.resolveOffset(info, blob, offsetText)
	if err != nil {
		return nil, err
	}
	return region.ExportSlot(blob, off, box, slot)
}

// resolveOffset picks the region offset for a read operation. Precedence: a
// per-call explicit offset, then the persisted override, then a fresh
// autopick seeded by the last scan when one is remembered.
func (s *Service) resolveOffset(info *SaveInfo, blob []byte, offsetText string) (int, error) {
	if offsetText != "" {
		off, err := region.ParseOffset(offsetText)
		if err != nil {
			return 0, err
		}
		if off >= len(blob) {
			return 0, fmt.Errorf("saves: offset %d past end of %d-byte save: %w",
				off, len(blob), region.ErrOutOfRange)
		}
		return off, nil
	}

	if info.Offset != nil {
		return *info.Offset, nil
	}

	if info.LastAutopick != nil {
		best, _, err := region.Autopick(blob, *info.LastAutopick, s.params)
		if err != nil {
			return 0, err
		}
		return best.Offset, nil
	}

	candidates, err := region.Locate(blob, s.params)
	if err != nil {
		return 0, err
	}
	return candidates[0].Offset, nil
}

func (s *Service) loadBlob(info *SaveInfo) ([]byte, error) {
	kid, err := ksuid.Parse(info.ID)
	if err != nil {
		return nil, fmt.Errorf("saves: bad blob id %q: %w", info.ID, err)
	}
	data, err := s.blobs.Read(kid)
	if err != nil {
		return nil, fmt.Errorf("saves: read blob for %s: %w", info.ID, err)
	}
	return data, nil
}

func (s *Service) putInfo(info *SaveInfo) error {
	doc, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("saves: encode metadata: %w", err)
	}
	if err := s.meta.Put(saveKey(info.ID), doc); err != nil {
		return fmt.Errorf("saves: store metadata: %w", err)
	}
	return nil
}
