package storage

import (
	"os"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/hailam/chesscore/internal/errors"
	"github.com/hailam/chesscore/internal/testutil"
)

func openTestCache(t *testing.T) *PerftCache {
	t.Helper()
	c, err := OpenPerftCache(t.TempDir())
	if err != nil {
		t.Fatalf("OpenPerftCache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPerftCache(t *testing.T) {
	c := openTestCache(t)

	t.Run("Miss", func(t *testing.T) {
		_, err := c.Get(0xdeadbeef, 3, "castle-only")
		testutil.AssertErrorIs(t, err, errors.ErrNotCached)
		_, err = c.Lookup(0xdeadbeef, 3, "castle-only")
		testutil.AssertErrorIs(t, err, errors.ErrNotCached)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		rec := &PerftRecord{
			FEN:    "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			Hash:   0x0123456789abcdef,
			Depth:  3,
			Policy: "castle-only",
			Nodes:  8902,
		}
		testutil.AssertNoError(t, c.Put(rec))
		if rec.ID == "" || rec.CreatedAt.IsZero() {
			t.Fatalf("Put did not fill ID/CreatedAt: %+v", rec)
		}

		got, err := c.Get(rec.Hash, 3, "castle-only")
		testutil.AssertNoError(t, err)
		testutil.AssertDiff(t, got, rec, []cmp.Option{cmpopts.EquateApproxTime(0)})

		// Same hash, other depth or policy: distinct keys.
		_, err = c.Get(rec.Hash, 2, "castle-only")
		testutil.AssertErrorIs(t, err, errors.ErrNotCached)
		_, err = c.Get(rec.Hash, 3, "standard")
		testutil.AssertErrorIs(t, err, errors.ErrNotCached)
	})

	t.Run("RecordLookup", func(t *testing.T) {
		testutil.AssertNoError(t, c.Record("fen", 42, 1, "standard", 20))
		n, err := c.Lookup(42, 1, "standard")
		testutil.AssertNoError(t, err)
		if n != 20 {
			t.Errorf("Lookup = %d, want 20", n)
		}
	})

	t.Run("Records", func(t *testing.T) {
		all, err := c.Records("")
		testutil.AssertNoError(t, err)
		if len(all) != 2 {
			t.Fatalf("Records() = %d entries, want 2", len(all))
		}
		std, err := c.Records("standard")
		testutil.AssertNoError(t, err)
		if len(std) != 1 || std[0].Hash != 42 {
			t.Errorf("Records(standard) = %+v", std)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		testutil.AssertNoError(t, c.Clear())
		all, err := c.Records("")
		testutil.AssertNoError(t, err)
		if len(all) != 0 {
			t.Errorf("%d records survive Clear", len(all))
		}
	})
}

func TestPerftCacheReopen(t *testing.T) {
	dir := t.TempDir()
	c, err := OpenPerftCache(dir)
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, c.Record("fen", 7, 4, "castle-only", 197281))
	testutil.AssertNoError(t, c.Close())

	c, err = OpenPerftCache(dir)
	testutil.AssertNoError(t, err)
	defer c.Close()
	n, err := c.Lookup(7, 4, "castle-only")
	testutil.AssertNoError(t, err)
	if n != 197281 {
		t.Errorf("after reopen Lookup = %d", n)
	}
}

func TestPerftCacheConcurrent(t *testing.T) {
	c := openTestCache(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := c.Record("fen", uint64(i), 2, "castle-only", uint64(i*10)); err != nil {
				t.Errorf("Record %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		n, err := c.Lookup(uint64(i), 2, "castle-only")
		testutil.AssertNoError(t, err)
		if n != uint64(i*10) {
			t.Errorf("hash %d: nodes %d", i, n)
		}
	}
}

func TestParseKey(t *testing.T) {
	hash, depth, policy, err := ParseKey(string(perftKey(0xabc, 5, "standard")))
	testutil.AssertNoError(t, err)
	if hash != 0xabc || depth != 5 || policy != "standard" {
		t.Errorf("ParseKey = %x %d %s", hash, depth, policy)
	}

	for _, bad := range []string{"prefs/x", "perft/a/b", "perft/std/zz/1", "perft/std/01/x"} {
		if _, _, _, err := ParseKey(bad); err == nil {
			t.Errorf("ParseKey(%q) succeeded", bad)
		}
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}

	dbDir, err := GetDatabaseDir()
	if err != nil {
		t.Fatalf("GetDatabaseDir failed: %v", err)
	}
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		t.Errorf("Database directory was not created: %s", dbDir)
	}
}
