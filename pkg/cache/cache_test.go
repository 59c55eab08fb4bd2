package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	errs "github.com/matzehuels/trackgrid/pkg/errors"
	"github.com/matzehuels/trackgrid/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Errorf("Get() = %q, %v, want nil, false", data, hit)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h2 := Hash([]byte("hello")); h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h3 := Hash([]byte("world")); h1 == h3 {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("len(Hash()) = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	lk1 := k.LayoutKey("doc", LayoutKeyOpts{Version: 1})
	lk2 := k.LayoutKey("doc", LayoutKeyOpts{Version: 2})
	lk3 := k.LayoutKey("other", LayoutKeyOpts{Version: 1})
	if lk1 == lk2 || lk1 == lk3 {
		t.Error("different layout inputs should produce different keys")
	}
	if lk1 != k.LayoutKey("doc", LayoutKeyOpts{Version: 1}) {
		t.Error("LayoutKey should be deterministic")
	}
	if !strings.HasPrefix(lk1, "layout:") {
		t.Errorf("LayoutKey() = %q, want layout: prefix", lk1)
	}

	svg := k.ArtifactKey("layout", ArtifactKeyOpts{Format: "svg"})
	png := k.ArtifactKey("layout", ArtifactKeyOpts{Format: "png", Scale: 2})
	cells := k.ArtifactKey("layout", ArtifactKeyOpts{Format: "svg", Cells: true})
	if svg == png || svg == cells {
		t.Error("different artifact options should produce different keys")
	}
	if !strings.HasPrefix(svg, "artifact:") {
		t.Errorf("ArtifactKey() = %q, want artifact: prefix", svg)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := GridKeyer(inner, "g1")

	want := "grid:g1:" + inner.LayoutKey("doc", LayoutKeyOpts{})
	if got := scoped.LayoutKey("doc", LayoutKeyOpts{}); got != want {
		t.Errorf("LayoutKey() = %q, want %q", got, want)
	}
	if a, b := GridKeyer(inner, "g1"), GridKeyer(inner, "g2"); a.ArtifactKey("l", ArtifactKeyOpts{}) == b.ArtifactKey("l", ArtifactKeyOpts{}) {
		t.Error("different grids should produce different keys")
	}
	if got := NewScopedKeyer(nil, "p:").LayoutKey("doc", LayoutKeyOpts{}); got != "p:"+inner.LayoutKey("doc", LayoutKeyOpts{}) {
		t.Errorf("NewScopedKeyer(nil) should default to DefaultKeyer, got %q", got)
	}
}

func TestKeyKind(t *testing.T) {
	k := NewDefaultKeyer()
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"layout", k.LayoutKey("d", LayoutKeyOpts{}), KindLayout},
		{"artifact", k.ArtifactKey("l", ArtifactKeyOpts{}), KindArtifact},
		{"scoped", GridKeyer(k, "abc").LayoutKey("d", LayoutKeyOpts{}), KindLayout},
		{"no colon", "plain", "other"},
		{"leading colon", ":x", "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyKind(tt.key); got != tt.want {
				t.Errorf("KeyKind(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if c.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", c.Dir(), dir)
	}

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("Get on missing key should miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || string(data) != "value" {
		t.Errorf("Get() = %q, %v, %v, want value, true, nil", data, hit, err)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}

	if err := c.Set(ctx, "forever", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero ttl entry should not expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("Get() = %v, %v, want miss without error", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, err := os.ReadDir(c.Dir())
	if err != nil {
		t.Fatalf("cache dir should survive Clear: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Clear left %d entries", len(entries))
	}
}

type recordingCacheHooks struct {
	observability.NoopCacheHooks
	events []string
}

func (h *recordingCacheHooks) OnCacheHit(_ context.Context, kind string) {
	h.events = append(h.events, "hit:"+kind)
}

func (h *recordingCacheHooks) OnCacheMiss(_ context.Context, kind string) {
	h.events = append(h.events, "miss:"+kind)
}

func (h *recordingCacheHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.events = append(h.events, "set:"+kind)
}

func TestWithHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	rec := &recordingCacheHooks{}
	observability.SetCacheHooks(rec)

	ctx := context.Background()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := WithHooks(fc)
	if WithHooks(c) != c {
		t.Error("WithHooks should not wrap twice")
	}
	if Unwrap(c) != Cache(fc) {
		t.Error("Unwrap should return the backend")
	}

	key := NewDefaultKeyer().LayoutKey("doc", LayoutKeyOpts{})
	c.Get(ctx, key)
	c.Set(ctx, key, []byte("x"), time.Hour)
	c.Get(ctx, key)

	want := []string{"miss:layout", "set:layout", "hit:layout"}
	if strings.Join(rec.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", rec.events, want)
	}

	if err := c.(Clearer).Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, hit, _ := fc.Get(ctx, key); hit {
		t.Error("Clear through the wrapper should reach the backend")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name     string
		opts     Options
		wantType string
		wantCode errs.Code
	}{
		{"empty is none", Options{}, "null", ""},
		{"empty with dir is file", Options{Dir: dir}, "file", ""},
		{"explicit none", Options{Backend: "None", Dir: dir}, "null", ""},
		{"file", Options{Backend: "file", Dir: dir}, "file", ""},
		{"file without dir", Options{Backend: "file"}, "", errs.ErrCodeInvalidInput},
		{"redis without addr", Options{Backend: "redis"}, "", errs.ErrCodeInvalidInput},
		{"mongo without uri", Options{Backend: "mongo"}, "", errs.ErrCodeInvalidInput},
		{"unknown", Options{Backend: "memcached"}, "", errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(ctx, tt.opts)
			if tt.wantCode != "" {
				if !errs.Is(err, tt.wantCode) {
					t.Fatalf("Open() error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer c.Close()

			var got string
			switch Unwrap(c).(type) {
			case NullCache:
				got = "null"
			case *FileCache:
				got = "file"
			}
			if got != tt.wantType {
				t.Errorf("Open() backend = %s, want %s", got, tt.wantType)
			}
		})
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = old }()
	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("succeeds after retries", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, 3, func() error {
			calls++
			if calls < 3 {
				return Retryable(boom)
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("RetryWithBackoff() = %v after %d calls, want nil after 3", err, calls)
		}
	})

	t.Run("permanent error stops", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, 3, func() error {
			calls++
			return boom
		})
		if !errors.Is(err, boom) || calls != 1 {
			t.Errorf("RetryWithBackoff() = %v after %d calls, want boom after 1", err, calls)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, 2, func() error {
			calls++
			return Retryable(boom)
		})
		if !IsRetryable(err) || !errors.Is(err, boom) || calls != 2 {
			t.Errorf("RetryWithBackoff() = %v after %d calls, want retryable boom after 2", err, calls)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := RetryWithBackoff(cctx, 3, func() error { return Retryable(boom) })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RetryWithBackoff() = %v, want context.Canceled", err)
		}
	})
}

func TestRetryableNil(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
}

func TestOpenMaxTTL(t *testing.T) {
	ctx := context.Background()
	c, err := Open(ctx, Options{Backend: BackendFile, Dir: t.TempDir(), MaxTTL: time.Nanosecond})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), TTLArtifact); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("MaxTTL should cap the entry lifetime")
	}
}
