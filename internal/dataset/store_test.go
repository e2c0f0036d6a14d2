package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/growlab/growlab-cli/internal/config"
)

func storeFixture(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	writeEnvCSV(t, dir, "한빛중학교_환경데이터.csv",
		"온도(℃),습도(%)",
		"21.5,65",
	)
	writeWorkbook(t, dir, "생육데이터.xlsx", map[string][][]string{
		"한빛중학교": {growthHeader(), {"1", "2.1", "5", "88"}},
	}, []string{"한빛중학교"})

	cfg := &config.Global{
		DataDir:    dir,
		GrowthFile: "생육데이터.xlsx",
		Sites:      testSites()[:1],
	}
	return NewStore(cfg), dir
}

func TestStoreMemoizesAcrossDiskChanges(t *testing.T) {
	store, dir := storeFixture(t)

	env1, err := store.Environment()
	if err != nil {
		t.Fatalf("Environment: %v", err)
	}
	if env1.Site("hanbit") == nil {
		t.Fatalf("initial load missing hanbit")
	}

	// Replace the file on disk; the cached result must not notice.
	writeEnvCSV(t, dir, "한빛중학교_환경데이터.csv",
		"온도(℃),습도(%)",
		"99.9,10",
		"99.8,11",
	)

	env2, err := store.Environment()
	if err != nil {
		t.Fatalf("Environment (cached): %v", err)
	}
	if env2 != env1 {
		t.Fatalf("second call returned a fresh load")
	}
	if env2.Site("hanbit").Len() != 1 {
		t.Fatalf("cached rows = %d, want 1", env2.Site("hanbit").Len())
	}
}

func TestStoreInvalidateForcesReload(t *testing.T) {
	store, dir := storeFixture(t)

	if _, err := store.Environment(); err != nil {
		t.Fatalf("Environment: %v", err)
	}
	first := store.Snapshot()
	if first.ID == "" || first.LoadedAt.IsZero() {
		t.Fatalf("snapshot not populated: %#v", first)
	}

	writeEnvCSV(t, dir, "한빛중학교_환경데이터.csv",
		"온도(℃),습도(%)",
		"99.9,10",
		"99.8,11",
	)
	store.Invalidate()
	if got := store.Snapshot(); got.ID != "" {
		t.Fatalf("snapshot should reset on invalidate: %#v", got)
	}

	env, err := store.Environment()
	if err != nil {
		t.Fatalf("Environment after invalidate: %v", err)
	}
	if env.Site("hanbit").Len() != 2 {
		t.Fatalf("reloaded rows = %d, want 2", env.Site("hanbit").Len())
	}
	second := store.Snapshot()
	if second.ID == "" || second.ID == first.ID {
		t.Fatalf("new generation should have a new ID: %#v vs %#v", first, second)
	}
}

func TestStoreGrowthFailureLeavesEnvironmentIntact(t *testing.T) {
	dir := t.TempDir()
	writeEnvCSV(t, dir, "한빛중학교_환경데이터.csv",
		"온도(℃)",
		"21.5",
	)
	cfg := &config.Global{
		DataDir:    dir,
		GrowthFile: "생육데이터.xlsx",
		Sites:      testSites()[:1],
	}
	store := NewStore(cfg)

	env, err := store.Environment()
	if err != nil {
		t.Fatalf("Environment: %v", err)
	}
	if env.Site("hanbit") == nil {
		t.Fatalf("environment should load without the workbook")
	}

	if _, err := store.Growth(); !errors.Is(err, ErrWorkbookNotFound) {
		t.Fatalf("Growth err = %v, want ErrWorkbookNotFound", err)
	}

	again, err := store.Environment()
	if err != nil {
		t.Fatalf("Environment after growth failure: %v", err)
	}
	if again != env {
		t.Fatalf("growth failure disturbed the cached environment")
	}
}

func TestStoreCachesGrowthFailureUntilInvalidate(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Global{
		DataDir:    dir,
		GrowthFile: "생육데이터.xlsx",
		Sites:      testSites()[:1],
	}
	store := NewStore(cfg)

	if _, err := store.Growth(); !errors.Is(err, ErrWorkbookNotFound) {
		t.Fatalf("Growth err = %v", err)
	}

	// The workbook appears afterwards; the cached failure holds until
	// an explicit invalidation.
	writeWorkbook(t, dir, "생육데이터.xlsx", map[string][][]string{
		"한빛중학교": {growthHeader(), {"1", "2.1", "5", "88"}},
	}, []string{"한빛중학교"})

	if _, err := store.Growth(); !errors.Is(err, ErrWorkbookNotFound) {
		t.Fatalf("cached failure expected, got %v", err)
	}

	store.Invalidate()
	col, err := store.Growth()
	if err != nil {
		t.Fatalf("Growth after invalidate: %v", err)
	}
	if col.Site("hanbit") == nil {
		t.Fatalf("reload after invalidate missing hanbit")
	}
}

func TestStoreAccessors(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg := &config.Global{
		DataDir:    dir,
		GrowthFile: "생육데이터.xlsx",
		Sites:      testSites(),
	}
	store := NewStore(cfg)
	if store.Dir() != dir {
		t.Fatalf("Dir = %q", store.Dir())
	}
	if store.Workbook() != "생육데이터.xlsx" {
		t.Fatalf("Workbook = %q", store.Workbook())
	}
	if len(store.Sites()) != 3 {
		t.Fatalf("Sites = %#v", store.Sites())
	}
}
