package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestHashIndex_BasicOperations(t *testing.T) {
	idx := NewHashIndex()

	if idx.Size() != 0 {
		t.Errorf("New index size: got %d, want 0", idx.Size())
	}

	key := []byte("save:abc")
	entry := &IndexEntry{FileID: 0, Offset: 42, Size: 100, Timestamp: 1}
	idx.Put(key, entry)

	got, exists := idx.Get(key)
	if !exists {
		t.Fatal("Get returned not found for stored key")
	}
	if got.Offset != 42 || got.Size != 100 {
		t.Errorf("Entry mismatch: got %+v, want %+v", got, entry)
	}
	if idx.Size() != 1 {
		t.Errorf("Index size after put: got %d, want 1", idx.Size())
	}

	// Overwrite keeps a single entry.
	idx.Put(key, &IndexEntry{Offset: 142, Size: 100, Timestamp: 2})
	got, _ = idx.Get(key)
	if got.Offset != 142 {
		t.Errorf("Entry offset after overwrite: got %d, want 142", got.Offset)
	}
	if idx.Size() != 1 {
		t.Errorf("Index size after overwrite: got %d, want 1", idx.Size())
	}

	idx.Delete(key)
	if _, exists := idx.Get(key); exists {
		t.Error("Get found a deleted key")
	}
	if idx.Size() != 0 {
		t.Errorf("Index size after delete: got %d, want 0", idx.Size())
	}
}

func TestHashIndex_Clear(t *testing.T) {
	idx := NewHashIndex()
	for _, k := range []string{"a", "b", "c"} {
		idx.Put([]byte(k), &IndexEntry{})
	}
	if idx.Size() != 3 {
		t.Fatalf("Index size: got %d, want 3", idx.Size())
	}

	idx.Clear()
	if idx.Size() != 0 {
		t.Errorf("Index size after clear: got %d, want 0", idx.Size())
	}
}

func TestHashIndex_KeysWithPrefix(t *testing.T) {
	idx := NewHashIndex()

	// Inserted out of order on purpose.
	for _, k := range []string{"species:3", "save:zz", "save:aa", "species:25", "save:mm"} {
		idx.Put([]byte(k), &IndexEntry{})
	}

	testCases := []struct {
		name   string
		prefix string
		want   []string
	}{
		{"saves", "save:", []string{"save:aa", "save:mm", "save:zz"}},
		{"species", "species:", []string{"species:25", "species:3"}},
		{"everything", "", []string{"save:aa", "save:mm", "save:zz", "species:25", "species:3"}},
		{"no match", "box:", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := idx.KeysWithPrefix(tc.prefix)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("KeysWithPrefix(%q): got %v, want %v", tc.prefix, got, tc.want)
			}
		})
	}
}

func TestHashIndex_BuildFromLog(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "pokho_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	logPath := filepath.Join(tmpDir, "test.log")
	writer, err := NewLogWriter(LogWriterConfig{FilePath: logPath, FsyncInterval: 0})
	if err != nil {
		t.Fatalf("Failed to create log writer: %v", err)
	}

	// Two live keys, one overwritten, one deleted via tombstone.
	type op struct {
		key   string
		value string
	}
	ops := []op{
		{"save:keep", "v1"},
		{"save:gone", "v2"},
		{"save:keep", "v3"},
		{"species:9", "v4"},
		{"save:gone", ""}, // Tombstone
	}

	offsets := make([]int64, len(ops))
	for i, o := range ops {
		offsets[i], err = writer.Put([]byte(o.key), []byte(o.value))
		if err != nil {
			t.Fatalf("Put %d failed: %v", i, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	reader, err := NewLogReader(LogReaderConfig{FilePath: logPath})
	if err != nil {
		t.Fatalf("Failed to create log reader: %v", err)
	}
	defer reader.Close()

	idx := NewHashIndex()
	if err := idx.BuildFromLog(reader); err != nil {
		t.Fatalf("BuildFromLog failed: %v", err)
	}

	if idx.Size() != 2 {
		t.Errorf("Index size after replay: got %d, want 2", idx.Size())
	}

	if _, exists := idx.Get([]byte("save:gone")); exists {
		t.Error("Tombstoned key survived replay")
	}

	// The overwritten key must point at the latest frame.
	entry, exists := idx.Get([]byte("save:keep"))
	if !exists {
		t.Fatal("Live key missing after replay")
	}
	if entry.Offset != offsets[2] {
		t.Errorf("Replayed offset for overwritten key: got %d, want %d", entry.Offset, offsets[2])
	}

	// The entry offsets must round-trip through ReadAt.
	frame, err := reader.ReadAt(entry.Offset)
	if err != nil {
		t.Fatalf("ReadAt on replayed offset failed: %v", err)
	}
	if string(frame.Value) != "v3" {
		t.Errorf("Replayed value: got %q, want %q", frame.Value, "v3")
	}
}
