package cli

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/chrsmith/kami2-solver/pkg/cache"
)

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{2048, "2.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{5 * 1024 * 1024 * 1024, "5.0 GiB"},
	}

	for _, tt := range tests {
		if got := humanBytes(tt.n); got != tt.want {
			t.Errorf("humanBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

// cacheTestRoot builds a root command against whatever XDG environment the
// caller has set up, unlike newTestRoot which isolates it per call.
func cacheTestRoot() *cobra.Command {
	c := New(io.Discard, log.WarnLevel)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root
}

func TestCacheCommands(t *testing.T) {
	cacheHome := t.TempDir()
	setEnv(t, "XDG_CONFIG_HOME", t.TempDir())
	setEnv(t, "XDG_CACHE_HOME", cacheHome)

	// Seed an entry the way the pipeline would.
	dir := filepath.Join(cacheHome, appName)
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	if err := fc.Set(context.Background(), "solve:test", []byte(`{"solved":true}`), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	fc.Close()

	t.Run("info", func(t *testing.T) {
		root := cacheTestRoot()
		root.SetArgs([]string{"cache", "info"})
		if err := root.ExecuteContext(context.Background()); err != nil {
			t.Errorf("cache info failed: %v", err)
		}
	})

	t.Run("path", func(t *testing.T) {
		root := cacheTestRoot()
		root.SetArgs([]string{"cache", "path"})
		if err := root.ExecuteContext(context.Background()); err != nil {
			t.Errorf("cache path failed: %v", err)
		}
	})

	t.Run("prune keeps live entries", func(t *testing.T) {
		root := cacheTestRoot()
		root.SetArgs([]string{"cache", "prune"})
		if err := root.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("cache prune failed: %v", err)
		}

		fc, err := cache.NewFileCache(dir)
		if err != nil {
			t.Fatalf("NewFileCache failed: %v", err)
		}
		defer fc.Close()
		stats, err := fc.Stats()
		if err != nil {
			t.Fatalf("Stats failed: %v", err)
		}
		if stats.Entries != 1 {
			t.Errorf("entries after prune = %d, want 1", stats.Entries)
		}
	})

	t.Run("clear removes everything", func(t *testing.T) {
		root := cacheTestRoot()
		root.SetArgs([]string{"cache", "clear"})
		if err := root.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("cache clear failed: %v", err)
		}

		fc, err := cache.NewFileCache(dir)
		if err != nil {
			t.Fatalf("NewFileCache failed: %v", err)
		}
		defer fc.Close()
		stats, err := fc.Stats()
		if err != nil {
			t.Fatalf("Stats failed: %v", err)
		}
		if stats.Entries != 0 {
			t.Errorf("entries after clear = %d, want 0", stats.Entries)
		}
	})
}

func TestCacheClearMissingDirectory(t *testing.T) {
	setEnv(t, "XDG_CONFIG_HOME", t.TempDir())
	setEnv(t, "XDG_CACHE_HOME", t.TempDir())

	// Nothing was ever cached; clear should report an empty cache, not fail.
	root := cacheTestRoot()
	root.SetArgs([]string{"cache", "clear"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Errorf("cache clear on missing directory failed: %v", err)
	}
}
