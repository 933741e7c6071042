package storage

import (
	"errors"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// ErrBlobNotFound is returned when no blob exists for the given id.
var ErrBlobNotFound = errors.New("storage: blob not found")

// BlobStore keeps raw uploaded save files in a pebble database, keyed by
// KSUID. Metadata about each save lives elsewhere; this store only ever sees
// opaque bytes.
type BlobStore struct {
	db *pebble.DB
}

func NewBlobStore(path string) (*BlobStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &BlobStore{db: db}, nil
}

func (s *BlobStore) Create(data []byte) (ksuid.KSUID, error) {
	id := ksuid.New()
	if err := s.db.Set(id.Bytes(), data, pebble.Sync); err != nil {
		return ksuid.Nil, err
	}
	return id, nil
}

func (s *BlobStore) Read(id ksuid.KSUID) ([]byte, error) {
	data, closer, err := s.db.Get(id.Bytes())
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}

	// The slice pebble hands out is only valid until the closer is closed.
	out := make([]byte, len(data))
	copy(out, data)
	if err := closer.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BlobStore) Update(id ksuid.KSUID, data []byte) error {
	return s.db.Set(id.Bytes(), data, pebble.Sync)
}

func (s *BlobStore) Delete(id ksuid.KSUID) error {
	return s.db.Delete(id.Bytes(), pebble.Sync)
}

// List returns the ids of every stored blob.
func (s *BlobStore) List() ([]ksuid.KSUID, error) {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var ids []ksuid.KSUID
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key())
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *BlobStore) Close() error {
	return s.db.Close()
}
