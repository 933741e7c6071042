package store

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
)

// LogReader provides sequential and positional access to frames in a log
// file.
type LogReader struct {
	file   *os.File
	reader *bufio.Reader
	codec  *FrameCodec
	offset int64
	config LogReaderConfig
}

// NewLogReader creates a new log reader for the specified file.
func NewLogReader(config LogReaderConfig) (*LogReader, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, err
	}

	if config.StartOffset > 0 {
		if _, err := file.Seek(config.StartOffset, io.SeekStart); err != nil {
			file.Close()
			return nil, err
		}
	}

	return &LogReader{
		file:   file,
		reader: bufio.NewReader(file),
		codec:  NewFrameCodec(),
		offset: config.StartOffset,
		config: config,
	}, nil
}

// readFrame reads one frame from r. io.EOF at a frame boundary means a clean
// end of log; a short read inside a frame is corruption.
func (r *LogReader) readFrame(src io.Reader) (*Frame, int, error) {
	header := make([]byte, frameHeaderSize)
	if _, err := io.ReadFull(src, header); err != nil {
		if err == io.EOF {
			return nil, 0, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, 0, ErrCorruption
		}
		return nil, 0, err
	}

	keySize := binary.LittleEndian.Uint32(header[4:8])
	valueSize := binary.LittleEndian.Uint32(header[8:12])

	// Implausible sizes mean we are not looking at a frame boundary. Reject
	// them before allocating.
	if uint64(keySize)+uint64(valueSize) > maxFrameSize {
		return nil, 0, ErrCorruption
	}

	full := make([]byte, frameHeaderSize+int(keySize)+int(valueSize))
	copy(full, header)
	if _, err := io.ReadFull(src, full[frameHeaderSize:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, 0, ErrCorruption
		}
		return nil, 0, err
	}

	frame, err := r.codec.Decode(full)
	if err != nil {
		return nil, 0, ErrCorruption
	}
	if err := frame.Validate(); err != nil {
		return nil, 0, ErrCorruption
	}

	return frame, len(full), nil
}

// ReadNext reads the frame at the current offset and advances past it.
func (r *LogReader) ReadNext() (*Frame, error) {
	frame, n, err := r.readFrame(r.reader)
	if err != nil {
		return nil, err
	}
	r.offset += int64(n)
	return frame, nil
}

// ReadAt reads the frame starting at offset. The file is reopened so writes
// flushed after this reader was created are visible.
func (r *LogReader) ReadAt(offset int64) (*Frame, error) {
	file, err := os.Open(r.config.FilePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}

	frame, _, err := r.readFrame(bufio.NewReader(file))
	if err == io.EOF {
		return nil, ErrCorruption
	}
	return frame, err
}

// Seek sets the read offset for sequential reads.
func (r *LogReader) Seek(offset int64) error {
	if _, err := r.file.Seek(offset, io.SeekStart); err != nil {
		return err
	}

	r.reader = bufio.NewReader(r.file) // Recreate reader to clear buffer
	r.offset = offset
	return nil
}

// Offset returns the current sequential read offset.
func (r *LogReader) Offset() int64 {
	return r.offset
}

// Iterator returns a streaming iterator over frames.
func (r *LogReader) Iterator() FrameIterator {
	return &logFrameIterator{reader: r}
}

// Close closes the log reader.
func (r *LogReader) Close() error {
	return r.file.Close()
}

type logFrameIterator struct {
	reader *LogReader
	frame  *Frame
	err    error
}

func (it *logFrameIterator) Next() bool {
	it.frame, it.err = it.reader.ReadNext()
	return it.err == nil
}

func (it *logFrameIterator) Frame() *Frame {
	return it.frame
}

func (it *logFrameIterator) Close() error {
	// The underlying reader is owned by the caller.
	return nil
}
