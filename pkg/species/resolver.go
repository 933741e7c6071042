// Package species resolves species codes to display names and natures to
// their fixed table entries. Network lookups are cached through the metadata
// store so repeated grid renders stay offline.
package species

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/MouseMan32/PokHo/pkg/codec"
	"github.com/MouseMan32/PokHo/pkg/store"
)

// ErrUnknownSpecies is returned when a code cannot be resolved to a name.
var ErrUnknownSpecies = errors.New("species: unknown species")

const cacheKeyPrefix = "species:"

func cacheKey(code uint16) []byte {
	return []byte(cacheKeyPrefix + strconv.Itoa(int(code)))
}

// Config controls name resolution.
type Config struct {
	// Endpoint serves one JSON document per code at <Endpoint>/<code>, with
	// at least a "name" field.
	Endpoint string

	// Offline disables network lookups; only cached names resolve.
	Offline bool

	// Timeout bounds each lookup request. Zero means 5 seconds.
	Timeout time.Duration
}

// Resolver maps species codes to names.
type Resolver struct {
	config Config
	meta   *store.MetaStore
	client *http.Client
}

func NewResolver(config Config, meta *store.MetaStore) *Resolver {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Resolver{
		config: config,
		meta:   meta,
		client: &http.Client{Timeout: timeout},
	}
}

// Lookup resolves a species code to its display name: cache first, then the
// configured endpoint with write-through caching.
func (r *Resolver) Lookup(code uint16) (string, error) {
	if !codec.SpeciesInRange(code) {
		return "", fmt.Errorf("species: code %d out of range: %w", code, ErrUnknownSpecies)
	}

	if cached, err := r.meta.Get(cacheKey(code)); err == nil {
		return string(cached), nil
	}

	if r.config.Offline || r.config.Endpoint == "" {
		return "", fmt.Errorf("species: code %d not cached: %w", code, ErrUnknownSpecies)
	}

	name, err := r.fetch(code)
	if err != nil {
		return "", err
	}

	// A failed cache write does not invalidate the lookup itself.
	_ = r.meta.Put(cacheKey(code), []byte(name))

	return name, nil
}

func (r *Resolver) fetch(code uint16) (string, error) {
	url := fmt.Sprintf("%s/%d", strings.TrimRight(r.config.Endpoint, "/"), code)
	resp, err := r.client.Get(url)
	if err != nil {
		return "", fmt.Errorf("species: lookup %d: %w", code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("species: code %d: %w", code, ErrUnknownSpecies)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("species: lookup %d: unexpected status %s", code, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("species: lookup %d: %w", code, err)
	}

	name := gjson.GetBytes(body, "name").String()
	if name == "" {
		return "", fmt.Errorf("species: lookup %d: response has no name", code)
	}
	return name, nil
}

// CachedNames returns every cached code to name mapping. Keys that do not
// parse as in-range codes are skipped.
func (r *Resolver) CachedNames() (map[uint16]string, error) {
	keys, err := r.meta.ListKeys([]byte(cacheKeyPrefix))
	if err != nil {
		return nil, err
	}

	names := make(map[uint16]string, len(keys))
	for _, key := range keys {
		code, err := strconv.Atoi(strings.TrimPrefix(key, cacheKeyPrefix))
		if err != nil || code < 0 || code > 0xFFFF || !codec.SpeciesInRange(uint16(code)) {
			continue
		}
		value, err := r.meta.Get([]byte(key))
		if err != nil {
			continue
		}
		names[uint16(code)] = string(value)
	}
	return names, nil
}
