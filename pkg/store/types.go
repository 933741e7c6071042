package store

import "time"

// IndexEntry locates one frame inside the log file.
type IndexEntry struct {
	FileID    uint32 // ID of the data file
	Offset    int64  // Byte offset within the file
	Size      uint32 // Encoded frame size in bytes
	Timestamp uint64 // Frame timestamp
}

// LogWriterConfig holds configuration for the log writer.
type LogWriterConfig struct {
	FilePath      string        // Path to the active data file
	FsyncInterval time.Duration // How often to fsync (0 = every write)
	BufferSize    int           // Write buffer size
}

// LogReaderConfig holds configuration for the log reader.
type LogReaderConfig struct {
	FilePath    string // Path to the data file
	StartOffset int64  // Offset to start reading from
}

// MetaStoreConfig holds configuration for the metadata store.
type MetaStoreConfig struct {
	DataDir       string        // Directory for data files
	FsyncInterval time.Duration // Fsync interval for durability
}

// RecoveryResult reports what Open found while validating the log.
type RecoveryResult struct {
	FramesValidated int64
	FramesTruncated int64
	FileSizeBefore  int64
	FileSizeAfter   int64
	IndexRebuilt    bool
	RecoveryTime    int64 // Nanoseconds spent validating
}

// FrameIterator provides streaming access to log frames.
type FrameIterator interface {
	Next() bool
	Frame() *Frame
	Close() error
}

// Errors
var (
	ErrKeyNotFound = &StoreError{"key not found"}
	ErrInvalidKey  = &StoreError{"invalid key"}
	ErrCorruption  = &StoreError{"data corruption detected"}
)

// StoreError represents a metadata store error.
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}
