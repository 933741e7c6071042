package saves

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/MouseMan32/PokHo/pkg/codec"
	"github.com/MouseMan32/PokHo/pkg/region"
	"github.com/MouseMan32/PokHo/pkg/storage"
	"github.com/MouseMan32/PokHo/pkg/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "pokho_saves")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	blobs, err := storage.NewBlobStore(filepath.Join(tmpDir, "blobs"))
	if err != nil {
		t.Fatalf("Failed to open blob store: %v", err)
	}
	t.Cleanup(func() { blobs.Close() })

	meta, err := store.NewMetaStore(store.MetaStoreConfig{
		DataDir:       filepath.Join(tmpDir, "meta"),
		FsyncInterval: 0,
	})
	if err != nil {
		t.Fatalf("Failed to create meta store: %v", err)
	}
	if _, err := meta.Open(); err != nil {
		t.Fatalf("Failed to open meta store: %v", err)
	}
	t.Cleanup(func() { meta.Close() })

	return NewService(blobs, meta, region.DefaultScanParams())
}

// plantedBlob builds a synthetic save with valid records at regionOffset plus
// the sampled-lattice slots 0, 31 and 62, so both scan modes can find it.
func plantedBlob(size, regionOffset int) []byte {
	blob := make([]byte, size)
	rc := codec.NewRecordCodec()
	for i, slot := range []int{0, 31, 62} {
		raw := rc.Encode(codec.Fields{
			IdentityCode:     uint16(25 + i),
			NatureIndex:      10,
			PersonalityValue: 0x87654321,
			TrainerID:        0x1234,
			SecretID:         0xABCD,
		}, uint32(slot))
		copy(blob[regionOffset+slot*codec.RecordSize:], raw)
	}
	return blob
}

func TestService_UploadAndGet(t *testing.T) {
	svc := newTestService(t)

	data := bytes.Repeat([]byte{0x5A}, 1000)
	info, err := svc.Upload("emerald.sav", data)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if info.ID == "" {
		t.Fatal("Upload returned empty id")
	}
	if info.Name != "emerald.sav" {
		t.Errorf("Name: got %q, want %q", info.Name, "emerald.sav")
	}
	if info.Size != 1000 {
		t.Errorf("Size: got %d, want 1000", info.Size)
	}
	if info.RegionSized {
		t.Error("RegionSized true for a 1000-byte save")
	}
	if info.Offset != nil || info.LastAutopick != nil {
		t.Error("Fresh save carries offset state")
	}

	got, err := svc.Get(info.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != info.ID || got.Name != info.Name || got.Size != info.Size {
		t.Errorf("Get mismatch: got %+v, want %+v", got, info)
	}
	if !got.UploadedAt.Equal(info.UploadedAt) {
		t.Errorf("UploadedAt did not survive the round trip: got %v, want %v",
			got.UploadedAt, info.UploadedAt)
	}
}

func TestService_UploadRegionSized(t *testing.T) {
	svc := newTestService(t)

	info, err := svc.Upload("exact.bin", make([]byte, region.RegionSize))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if !info.RegionSized {
		t.Error("RegionSized false for an exact region-length save")
	}
}

func TestService_UploadEmpty(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Upload("empty.sav", nil); !errors.Is(err, ErrEmptySave) {
		t.Errorf("Upload of empty data: got %v, want ErrEmptySave", err)
	}
}

func TestService_UploadDefaultsName(t *testing.T) {
	svc := newTestService(t)

	info, err := svc.Upload("", []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if info.Name != info.ID {
		t.Errorf("Unnamed save: got name %q, want the id %q", info.Name, info.ID)
	}
}

func TestService_List(t *testing.T) {
	svc := newTestService(t)

	infos, err := svc.List()
	if err != nil {
		t.Fatalf("List on empty service failed: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("List on empty service: got %d saves, want 0", len(infos))
	}

	want := map[string]bool{}
	for _, name := range []string{"a.sav", "b.sav", "c.sav"} {
		info, err := svc.Upload(name, []byte(name))
		if err != nil {
			t.Fatalf("Upload %q failed: %v", name, err)
		}
		want[info.ID] = true
	}

	infos, err = svc.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != len(want) {
		t.Fatalf("List: got %d saves, want %d", len(infos), len(want))
	}
	for _, info := range infos {
		if !want[info.ID] {
			t.Errorf("List returned unknown save %s", info.ID)
		}
	}
}

func TestService_Delete(t *testing.T) {
	svc := newTestService(t)

	info, err := svc.Upload("doomed.sav", []byte("bytes"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if err := svc.Delete(info.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Get(info.ID); !errors.Is(err, ErrSaveNotFound) {
		t.Errorf("Get after delete: got %v, want ErrSaveNotFound", err)
	}

	if err := svc.Delete("no-such-save"); !errors.Is(err, ErrSaveNotFound) {
		t.Errorf("Delete of missing save: got %v, want ErrSaveNotFound", err)
	}
}

func TestService_SetAndClearOffset(t *testing.T) {
	svc := newTestService(t)

	// Room for a full region at offsets 0..500.
	info, err := svc.Upload("padded.sav", make([]byte, region.RegionSize+500))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	updated, err := svc.SetOffset(info.ID, "0x64")
	if err != nil {
		t.Fatalf("SetOffset failed: %v", err)
	}
	if updated.Offset == nil || *updated.Offset != 100 {
		t.Fatalf("Offset after set: got %v, want 100", updated.Offset)
	}

	// The override persists.
	got, err := svc.Get(info.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Offset == nil || *got.Offset != 100 {
		t.Errorf("Persisted offset: got %v, want 100", got.Offset)
	}

	// Past the last full region start.
	if _, err := svc.SetOffset(info.ID, "501"); !errors.Is(err, region.ErrOutOfRange) {
		t.Errorf("SetOffset past the end: got %v, want ErrOutOfRange", err)
	}

	// Unparseable text.
	if _, err := svc.SetOffset(info.ID, "0x"); err == nil {
		t.Error("SetOffset accepted bare 0x")
	}

	cleared, err := svc.ClearOffset(info.ID)
	if err != nil {
		t.Fatalf("ClearOffset failed: %v", err)
	}
	if cleared.Offset != nil {
		t.Errorf("Offset after clear: got %v, want nil", *cleared.Offset)
	}
}

func TestService_ScanBoxesExportFlow(t *testing.T) {
	svc := newTestService(t)

	blob := plantedBlob(300000, 4096)
	info, err := svc.Upload("planted.sav", blob)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	// Blind scan finds the planted region.
	result, err := svc.Scan(info.ID, "")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if result.Best.Offset != 4096 {
		t.Fatalf("Best offset: got %d, want 4096", result.Best.Offset)
	}
	if result.Best.ValidCount != 3 {
		t.Errorf("Best valid count: got %d, want 3", result.Best.ValidCount)
	}
	if len(result.Ranked) == 0 || result.Ranked[0].Offset != result.Best.Offset {
		t.Error("Ranked list does not lead with the best candidate")
	}

	// The scan outcome is remembered.
	got, err := svc.Get(info.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.LastAutopick == nil || *got.LastAutopick != 4096 {
		t.Errorf("LastAutopick: got %v, want 4096", got.LastAutopick)
	}

	// Hinted scan resolves the same offset.
	result, err = svc.Scan(info.ID, "0x1000")
	if err != nil {
		t.Fatalf("Hinted scan failed: %v", err)
	}
	if result.Best.Offset != 4096 {
		t.Errorf("Hinted best offset: got %d, want 4096", result.Best.Offset)
	}

	// Boxes without an explicit offset reuses the remembered pick.
	grid, err := svc.Boxes(info.ID, "")
	if err != nil {
		t.Fatalf("Boxes failed: %v", err)
	}
	if grid.Offset != 4096 {
		t.Errorf("Grid offset: got %d, want 4096", grid.Offset)
	}
	if grid.ValidCount() != 3 {
		t.Errorf("Grid valid count: got %d, want 3", grid.ValidCount())
	}
	if grid.Boxes[0][0].Class != region.SlotValid {
		t.Errorf("Slot (0,0) class: got %v, want valid", grid.Boxes[0][0].Class)
	}
	if grid.Boxes[1][1].Class != region.SlotValid {
		t.Errorf("Slot (1,1) class: got %v, want valid", grid.Boxes[1][1].Class)
	}

	// Export round-trips the planted bytes.
	raw, err := svc.ExportSlot(info.ID, 0, 0, "")
	if err != nil {
		t.Fatalf("ExportSlot failed: %v", err)
	}
	if len(raw) != codec.RecordSize {
		t.Fatalf("Exported record length: got %d, want %d", len(raw), codec.RecordSize)
	}
	if !bytes.Equal(raw, blob[4096:4096+codec.RecordSize]) {
		t.Error("Exported bytes differ from the planted record")
	}

	// An untouched slot has nothing to export.
	if _, err := svc.ExportSlot(info.ID, 5, 5, ""); !errors.Is(err, region.ErrEmptySlot) {
		t.Errorf("Export of empty slot: got %v, want ErrEmptySlot", err)
	}
}

func TestService_ScanNoRegion(t *testing.T) {
	svc := newTestService(t)

	info, err := svc.Upload("zeros.sav", make([]byte, 300000))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if _, err := svc.Scan(info.ID, ""); !errors.Is(err, region.ErrNoRegion) {
		t.Errorf("Scan of all-zero save: got %v, want ErrNoRegion", err)
	}
}

func TestService_OffsetPrecedence(t *testing.T) {
	svc := newTestService(t)

	// Records live at 4096; the override deliberately points at silence.
	blob := plantedBlob(600000, 4096)
	info, err := svc.Upload("planted.sav", blob)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if _, err := svc.SetOffset(info.ID, "300000"); err != nil {
		t.Fatalf("SetOffset failed: %v", err)
	}

	// Override beats any autopick.
	grid, err := svc.Boxes(info.ID, "")
	if err != nil {
		t.Fatalf("Boxes with override failed: %v", err)
	}
	if grid.Offset != 300000 {
		t.Errorf("Grid offset under override: got %d, want 300000", grid.Offset)
	}
	if grid.ValidCount() != 0 {
		t.Errorf("Grid valid count at silent offset: got %d, want 0", grid.ValidCount())
	}

	// A per-call offset beats the override.
	grid, err = svc.Boxes(info.ID, "0x1000")
	if err != nil {
		t.Fatalf("Boxes with explicit offset failed: %v", err)
	}
	if grid.Offset != 4096 {
		t.Errorf("Grid offset with explicit text: got %d, want 4096", grid.Offset)
	}
	if grid.ValidCount() != 3 {
		t.Errorf("Grid valid count at planted offset: got %d, want 3", grid.ValidCount())
	}

	// With the override cleared, a fresh locate finds the records again.
	if _, err := svc.ClearOffset(info.ID); err != nil {
		t.Fatalf("ClearOffset failed: %v", err)
	}
	grid, err = svc.Boxes(info.ID, "")
	if err != nil {
		t.Fatalf("Boxes after clear failed: %v", err)
	}
	if grid.Offset != 4096 {
		t.Errorf("Grid offset after clear: got %d, want 4096", grid.Offset)
	}
}

func TestService_ExplicitOffsetPastEnd(t *testing.T) {
	svc := newTestService(t)

	info, err := svc.Upload("short.sav", make([]byte, 1000))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if _, err := svc.Boxes(info.ID, "2000"); !errors.Is(err, region.ErrOutOfRange) {
		t.Errorf("Boxes past blob end: got %v, want ErrOutOfRange", err)
	}
}
