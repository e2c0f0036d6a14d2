package dataset

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/growlab/growlab-cli/internal/config"
)

// Snapshot identifies one cache generation. Clients compare IDs to tell
// whether the data they rendered is still the data the store holds.
type Snapshot struct {
	ID       string    `json:"id"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Store memoizes dataset loads. The first Environment or Growth call reads
// from disk; repeated calls return the cached result, including a cached
// failure, until Invalidate. Safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	dir      string
	workbook string
	sites    []config.Site

	env     *Collection
	envErr  error
	envDone bool

	growth     *Collection
	growthErr  error
	growthDone bool

	snap Snapshot
}

// NewStore builds a store over the configured data directory and sites.
func NewStore(cfg *config.Global) *Store {
	return &Store{
		dir:      cfg.DataDir,
		workbook: cfg.GrowthFile,
		sites:    cfg.Sites,
	}
}

// Sites returns the configured sites in canonical order.
func (s *Store) Sites() []config.Site {
	return s.sites
}

// Dir returns the data directory the store reads from.
func (s *Store) Dir() string {
	return s.dir
}

// Workbook returns the configured growth workbook file name.
func (s *Store) Workbook() string {
	return s.workbook
}

// Environment returns the environment collection, loading it on first use.
func (s *Store) Environment() (*Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.envDone {
		s.env, s.envErr = LoadEnvironment(s.dir, s.sites)
		s.envDone = true
		s.touch()
	}
	return s.env, s.envErr
}

// Growth returns the growth collection, loading it on first use.
func (s *Store) Growth() (*Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.growthDone {
		s.growth, s.growthErr = LoadGrowth(s.dir, s.workbook, s.sites)
		s.growthDone = true
		s.touch()
	}
	return s.growth, s.growthErr
}

// Snapshot reports the current cache generation. The zero Snapshot means
// nothing has been loaded since the last Invalidate.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Invalidate discards all cached results. The next access re-reads from
// disk and starts a new generation.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env, s.envErr, s.envDone = nil, nil, false
	s.growth, s.growthErr, s.growthDone = nil, nil, false
	s.snap = Snapshot{}
}

func (s *Store) touch() {
	if s.snap.ID == "" {
		s.snap = Snapshot{ID: uuid.NewString(), LoadedAt: time.Now().UTC()}
	}
}
