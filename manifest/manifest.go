package manifest

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/hupe1980/geotile/blobstore"
	"github.com/hupe1980/geotile/codec"
	"github.com/hupe1980/geotile/geom"
	"github.com/hupe1980/geotile/model"
)

const (
	ManifestFileName = "MANIFEST"
	CurrentFileName  = "CURRENT"
	// CurrentVersion is the version of the manifest format.
	CurrentVersion = 1
)

// Manifest describes one committed partition run.
type Manifest struct {
	Version   int       `json:"version"`
	ID        uint64    `json:"id"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Codec and Compression describe how tile payloads are encoded.
	Codec       string `json:"codec"`
	Compression string `json:"compression"`

	MaxRecordsPerTile int     `json:"max_records_per_tile"`
	GridSize          int     `json:"grid_size"`
	MinCellSize       float64 `json:"min_cell_size"`

	// Bounds is nil for an empty dataset.
	Bounds         *geom.BoundingBox `json:"bounds,omitempty"`
	TotalRecords   int               `json:"total_records"`
	SkippedRecords int               `json:"skipped_records"`
	Tiles          []model.Tile      `json:"tiles"`

	// Legacy is set for manifests converted from a <location>_metadata.json
	// file. It is never persisted.
	Legacy bool `json:"-"`
}

// New creates an empty manifest for location.
func New(location string) *Manifest {
	return &Manifest{
		Version:   CurrentVersion,
		Location:  location,
		CreatedAt: time.Now().UTC(),
		Tiles:     []model.Tile{},
	}
}

// Filename returns the blob name of manifest id.
func Filename(id uint64) string {
	return fmt.Sprintf("%s-%06d.json", ManifestFileName, id)
}

// parseID extracts the manifest ID from a MANIFEST-NNNNNN.json name.
func parseID(name string) (uint64, bool) {
	base := path.Base(name)
	if !strings.HasPrefix(base, ManifestFileName+"-") || path.Ext(base) != ".json" {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(base, ManifestFileName+"-"), ".json")
	id, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Store manages manifest blobs and the CURRENT pointer.
type Store struct {
	store blobstore.BlobStore
	mu    sync.Mutex
}

// NewStore creates a new manifest store.
func NewStore(store blobstore.BlobStore) *Store {
	return &Store{store: store}
}

// Load loads the current manifest.
func (s *Store) Load(ctx context.Context) (*Manifest, error) {
	return s.LoadVersion(ctx, 0)
}

// LoadVersion loads a specific version ID. 0 means latest.
func (s *Store) LoadVersion(ctx context.Context, id uint64) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := Filename(id)
	if id == 0 {
		content, err := blobstore.ReadAll(ctx, s.store, CurrentFileName)
		if err != nil {
			if errors.Is(err, blobstore.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		name = strings.TrimSpace(string(content))
	}

	data, err := blobstore.ReadAll(ctx, s.store, name)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to open manifest %s: %w", name, err)
	}

	return Decode(data)
}

// Decode parses a manifest blob and checks its version.
func Decode(data []byte) (*Manifest, error) {
	var m Manifest
	if err := gojson.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if m.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: %d (expected %d)", ErrIncompatibleVersion, m.Version, CurrentVersion)
	}
	if _, ok := codec.ByName(m.Codec); !ok {
		return nil, fmt.Errorf("%w: unknown codec %q", ErrInvalidManifest, m.Codec)
	}
	if m.Tiles == nil {
		m.Tiles = []model.Tile{}
	}
	return &m, nil
}

// TileCodec returns the codec the tiles of m were written with.
func (m *Manifest) TileCodec() codec.Codec {
	if c, ok := codec.ByName(m.Codec); ok {
		return c
	}
	return codec.Default
}

// Encode serializes m.
func Encode(m *Manifest) ([]byte, error) {
	return gojson.MarshalIndent(m, "", "  ")
}

// ListVersions returns the IDs of all stored manifests in ascending order.
func (s *Store) ListVersions(ctx context.Context) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listVersions(ctx)
}

func (s *Store) listVersions(ctx context.Context) ([]uint64, error) {
	names, err := s.store.List(ctx, ManifestFileName+"-")
	if err != nil {
		return nil, err
	}
	var ids []uint64
	for _, name := range names {
		if id, ok := parseID(name); ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// NextID returns the ID the next Save will assign.
func (s *Store) NextID(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID(ctx)
}

func (s *Store) nextID(ctx context.Context) (uint64, error) {
	ids, err := s.listVersions(ctx)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 1, nil
	}
	return ids[len(ids)-1] + 1, nil
}

// Save assigns m the next manifest ID, writes it and points CURRENT at it.
// On error CURRENT is left unchanged.
func (s *Store) Save(ctx context.Context, m *Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.nextID(ctx)
	if err != nil {
		return err
	}

	m.Version = CurrentVersion
	m.ID = next
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.Tiles == nil {
		m.Tiles = []model.Tile{}
	}

	data, err := Encode(m)
	if err != nil {
		return err
	}

	name := Filename(m.ID)
	if err := s.store.Put(ctx, name, data); err != nil {
		return err
	}

	if err := s.store.Put(ctx, CurrentFileName, []byte(name)); err != nil {
		_ = s.store.Delete(ctx, name)
		return err
	}
	return nil
}

// DeleteVersion deletes the manifest blob for the given version.
func (s *Store) DeleteVersion(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(ctx, Filename(id))
}
