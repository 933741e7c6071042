package store

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// MetaStore is the append-only key-value store behind everything PokHo
// persists besides raw save blobs: per-save metadata under "save:<id>" and
// cached species lookups under "species:<code>". It is a single-file log with
// an in-memory hash index, rebuilt and crash-checked on every Open.
type MetaStore struct {
	config   MetaStoreConfig
	writer   *LogWriter
	reader   *LogReader
	index    *HashIndex
	dataFile string
	mutex    sync.Mutex
	isOpen   bool
}

// NewMetaStore creates a new metadata store instance.
func NewMetaStore(config MetaStoreConfig) (*MetaStore, error) {
	if err := os.MkdirAll(config.DataDir, 0755); err != nil {
		return nil, err
	}

	return &MetaStore{
		config:   config,
		dataFile: filepath.Join(config.DataDir, "meta.data"),
		index:    NewHashIndex(),
	}, nil
}

// Open validates the log, truncating a corrupted tail if needed, then builds
// the index. Opening an already-open store is a no-op.
func (ms *MetaStore) Open() (*RecoveryResult, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if ms.isOpen {
		return &RecoveryResult{}, nil
	}

	recovery, err := ms.validateLogFile(ms.dataFile)
	if err != nil {
		return nil, err
	}

	writer, err := NewLogWriter(LogWriterConfig{
		FilePath:      ms.dataFile,
		FsyncInterval: ms.config.FsyncInterval,
		BufferSize:    64 * 1024,
	})
	if err != nil {
		return nil, err
	}
	ms.writer = writer

	reader, err := NewLogReader(LogReaderConfig{FilePath: ms.dataFile})
	if err != nil {
		ms.writer.Close()
		return nil, err
	}
	ms.reader = reader

	if err := ms.index.BuildFromLog(ms.reader); err != nil {
		ms.reader.Close()
		ms.writer.Close()
		return nil, err
	}

	ms.isOpen = true
	return recovery, nil
}

// Get retrieves the value for a key.
func (ms *MetaStore) Get(key []byte) ([]byte, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if !ms.isOpen {
		return nil, &StoreError{"store is not open"}
	}

	entry, exists := ms.index.Get(key)
	if !exists {
		return nil, ErrKeyNotFound
	}

	frame, err := ms.reader.ReadAt(entry.Offset)
	if err != nil {
		return nil, err
	}

	// Empty value means a tombstone slipped into the index.
	if len(frame.Value) == 0 {
		return nil, ErrKeyNotFound
	}

	return frame.Value, nil
}

// Put stores a key-value pair.
func (ms *MetaStore) Put(key, value []byte) error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if !ms.isOpen {
		return &StoreError{"store is not open"}
	}

	if len(key) == 0 {
		return ErrInvalidKey
	}

	offset, err := ms.writer.Put(key, value)
	if err != nil {
		return err
	}

	frame := NewFrame(key, value)
	ms.index.Put(key, &IndexEntry{
		FileID:    0,
		Offset:    offset,
		Size:      uint32(frame.Size()),
		Timestamp: frame.Timestamp,
	})

	return nil
}

// Delete removes a key by writing a tombstone.
func (ms *MetaStore) Delete(key []byte) error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if !ms.isOpen {
		return &StoreError{"store is not open"}
	}

	if len(key) == 0 {
		return ErrInvalidKey
	}

	if _, err := ms.writer.Put(key, []byte{}); err != nil {
		return err
	}

	ms.index.Delete(key)
	return nil
}

// ListKeys returns all keys with the given prefix, sorted.
func (ms *MetaStore) ListKeys(prefix []byte) ([]string, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if !ms.isOpen {
		return nil, &StoreError{"store is not open"}
	}

	return ms.index.KeysWithPrefix(string(prefix)), nil
}

// Close shuts down the store.
func (ms *MetaStore) Close() error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if !ms.isOpen {
		return nil
	}
	ms.isOpen = false

	// Close the writer first so everything is flushed.
	if ms.writer != nil {
		if err := ms.writer.Close(); err != nil {
			ms.reader.Close()
			return err
		}
	}

	if ms.reader != nil {
		return ms.reader.Close()
	}
	return nil
}

// Stats returns store statistics.
func (ms *MetaStore) Stats() *StoreStats {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if !ms.isOpen {
		return &StoreStats{}
	}

	return &StoreStats{
		Keys:     ms.index.Size(),
		DataSize: ms.writer.Size(),
	}
}

// StoreStats holds statistics about the store.
type StoreStats struct {
	Keys     int   `json:"keys"`
	DataSize int64 `json:"data_size"`
}

// validateLogFile walks the log until EOF or corruption. A corrupted tail is
// truncated at the last valid frame boundary so Open always leaves a clean
// log behind.
func (ms *MetaStore) validateLogFile(filePath string) (*RecoveryResult, error) {
	startTime := time.Now()

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &RecoveryResult{
				IndexRebuilt: true,
				RecoveryTime: time.Since(startTime).Nanoseconds(),
			}, nil
		}
		return nil, err
	}
	fileSizeBefore := fileInfo.Size()

	reader, err := NewLogReader(LogReaderConfig{FilePath: filePath})
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var framesValidated int64
	var lastValidOffset int64
	var corruptionFound bool

	for {
		_, err := reader.ReadNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			corruptionFound = true
			break
		}
		framesValidated++
		lastValidOffset = reader.Offset()
	}

	fileSizeAfter := fileSizeBefore
	var framesTruncated int64

	if corruptionFound && lastValidOffset < fileSizeBefore {
		file, err := os.OpenFile(filePath, os.O_RDWR, 0644)
		if err != nil {
			return nil, err
		}
		if err := file.Truncate(lastValidOffset); err != nil {
			file.Close()
			return nil, err
		}
		file.Close()

		fileSizeAfter = lastValidOffset
		framesTruncated = 1 // Only the tail frame can be torn
	}

	return &RecoveryResult{
		FramesValidated: framesValidated,
		FramesTruncated: framesTruncated,
		FileSizeBefore:  fileSizeBefore,
		FileSizeAfter:   fileSizeAfter,
		IndexRebuilt:    true,
		RecoveryTime:    time.Since(startTime).Nanoseconds(),
	}, nil
}
