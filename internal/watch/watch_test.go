package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpress/internal/deploy"
	"git.home.luguber.info/inful/docpress/internal/logging"
)

type recorder struct {
	mu      sync.Mutex
	modes   []deploy.Mode
	running atomic.Int32
	overlap atomic.Bool
	delay   time.Duration
	err     error
}

func (r *recorder) build(_ context.Context, mode deploy.Mode) error {
	if r.running.Add(1) > 1 {
		r.overlap.Store(true)
	}
	defer r.running.Add(-1)
	time.Sleep(r.delay)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.modes = append(r.modes, mode)
	return r.err
}

func (r *recorder) count(mode deploy.Mode) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.modes {
		if m == mode {
			n++
		}
	}
	return n
}

func start(t *testing.T, r *recorder, opts Options) (context.CancelFunc, <-chan error) {
	t.Helper()
	opts.Logger = logging.Discard()
	w, err := New(r.build, opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	return cancel, done
}

func stop(t *testing.T, cancel context.CancelFunc, done <-chan error) {
	t.Helper()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_InitialBuildAndChange(t *testing.T) {
	dir := t.TempDir()
	r := &recorder{}
	cancel, done := start(t, r, Options{SourceDir: dir, Debounce: 50 * time.Millisecond})

	require.Eventually(t, func() bool { return r.count(deploy.ModeIncremental) == 1 }, 2*time.Second, 10*time.Millisecond)

	for i := range 5 {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "post.md"), []byte{byte('a' + i)}, 0o644))
	}
	assert.Eventually(t, func() bool { return r.count(deploy.ModeIncremental) >= 2 }, 3*time.Second, 20*time.Millisecond)

	stop(t, cancel, done)
}

func TestWatcher_IgnoredNamesDoNotTrigger(t *testing.T) {
	dir := t.TempDir()
	r := &recorder{}
	cancel, done := start(t, r, Options{
		SourceDir: dir,
		Debounce:  20 * time.Millisecond,
		Ignore:    regexp.MustCompile(`\.swp$`),
	})
	require.Eventually(t, func() bool { return r.count(deploy.ModeIncremental) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".post.md.swp"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, r.count(deploy.ModeIncremental))

	stop(t, cancel, done)
}

func TestWatcher_PeriodicFullRebuild(t *testing.T) {
	r := &recorder{}
	cancel, done := start(t, r, Options{SourceDir: t.TempDir(), RebuildEvery: 100 * time.Millisecond})

	assert.Eventually(t, func() bool { return r.count(deploy.ModeFull) >= 1 }, 3*time.Second, 20*time.Millisecond)
	stop(t, cancel, done)
}

func TestWatcher_BuildsNeverOverlap(t *testing.T) {
	r := &recorder{delay: 20 * time.Millisecond}
	w, err := New(r.build, Options{SourceDir: t.TempDir(), Logger: logging.Discard()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.watcher.Close() })

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(full bool) {
			defer wg.Done()
			mode := deploy.ModeIncremental
			if full {
				mode = deploy.ModeFull
			}
			w.runBuild(context.Background(), mode)
		}(i%2 == 0)
	}
	wg.Wait()

	assert.False(t, r.overlap.Load())
	assert.Equal(t, 4, r.count(deploy.ModeFull))
	assert.Equal(t, 4, r.count(deploy.ModeIncremental))
}

func TestWatcher_BuildErrorKeepsWatching(t *testing.T) {
	r := &recorder{err: errors.New("boom")}
	cancel, done := start(t, r, Options{SourceDir: t.TempDir()})
	require.Eventually(t, func() bool { return r.count(deploy.ModeIncremental) == 1 }, 2*time.Second, 10*time.Millisecond)
	stop(t, cancel, done)
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New((&recorder{}).build, Options{SourceDir: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}
