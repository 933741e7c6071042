package store

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"time"
)

// frameHeaderSize is CRC32(4) + KeySize(4) + ValueSize(4) + Timestamp(8).
const frameHeaderSize = 20

// maxFrameSize caps key plus value bytes for a single frame. Metadata values
// are small JSON documents, so anything near this limit is a misread.
const maxFrameSize = 64 << 20

// Frame is one key-value entry in the append-only log. A frame with an empty
// value is a tombstone.
type Frame struct {
	CRC32     uint32 // CRC32 checksum for integrity
	KeySize   uint32 // Size of the key in bytes
	ValueSize uint32 // Size of the value in bytes
	Timestamp uint64 // Unix timestamp in nanoseconds
	Key       []byte
	Value     []byte
}

// NewFrame creates a frame for key and value with the current timestamp. The
// CRC field is filled in during encoding.
func NewFrame(key, value []byte) *Frame {
	return &Frame{
		KeySize:   uint32(len(key)),
		ValueSize: uint32(len(value)),
		Timestamp: uint64(time.Now().UnixNano()),
		Key:       key,
		Value:     value,
	}
}

// Size returns the total encoded size of the frame.
func (f *Frame) Size() int {
	return frameHeaderSize + len(f.Key) + len(f.Value)
}

// Validate checks the integrity of the frame against its CRC.
func (f *Frame) Validate() error {
	if f.CRC32 != f.checksum() {
		return fmt.Errorf("CRC32 mismatch: %d != %d", f.CRC32, f.checksum())
	}
	return nil
}

// checksum covers every field but the CRC itself.
func (f *Frame) checksum() uint32 {
	crc := crc32.NewIEEE()

	var header [frameHeaderSize - 4]byte
	binary.LittleEndian.PutUint32(header[0:], f.KeySize)
	binary.LittleEndian.PutUint32(header[4:], f.ValueSize)
	binary.LittleEndian.PutUint64(header[8:], f.Timestamp)
	crc.Write(header[:])

	crc.Write(f.Key)
	crc.Write(f.Value)

	return crc.Sum32()
}

// FrameCodec serializes log frames.
// Format: [CRC32(4)][KeySize(4)][ValueSize(4)][Timestamp(8)][Key][Value]
type FrameCodec struct{}

// NewFrameCodec creates a new frame codec instance.
func NewFrameCodec() *FrameCodec {
	return &FrameCodec{}
}

// Encode serializes a key-value pair into the binary frame format.
func (c *FrameCodec) Encode(key, value []byte) ([]byte, error) {
	f := NewFrame(key, value)
	f.CRC32 = f.checksum()

	buf := make([]byte, f.Size())
	binary.LittleEndian.PutUint32(buf[0:], f.CRC32)
	binary.LittleEndian.PutUint32(buf[4:], f.KeySize)
	binary.LittleEndian.PutUint32(buf[8:], f.ValueSize)
	binary.LittleEndian.PutUint64(buf[12:], f.Timestamp)
	copy(buf[frameHeaderSize:], f.Key)
	copy(buf[frameHeaderSize+int(f.KeySize):], f.Value)

	return buf, nil
}

// Decode deserializes a binary frame. Key and Value borrow from data; callers
// that outlive data must copy them.
func (c *FrameCodec) Decode(data []byte) (*Frame, error) {
	if len(data) < frameHeaderSize {
		return nil, fmt.Errorf("data too short for frame header")
	}

	f := &Frame{}
	f.CRC32 = binary.LittleEndian.Uint32(data[0:4])
	f.KeySize = binary.LittleEndian.Uint32(data[4:8])
	f.ValueSize = binary.LittleEndian.Uint32(data[8:12])
	f.Timestamp = binary.LittleEndian.Uint64(data[12:20])

	total := frameHeaderSize + int(f.KeySize) + int(f.ValueSize)
	if len(data) < total {
		return nil, fmt.Errorf("data too short for key/value sizes: %d < %d", len(data), total)
	}

	f.Key = data[frameHeaderSize : frameHeaderSize+f.KeySize]
	f.Value = data[frameHeaderSize+f.KeySize : frameHeaderSize+f.KeySize+f.ValueSize]

	return f, nil
}
