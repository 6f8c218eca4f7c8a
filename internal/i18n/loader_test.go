package i18n

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/apperr"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
)

// countingSource serves fixed bundles and counts fetches per key.
type countingSource struct {
	bundles map[string]Messages
	gate    chan struct{}
	mu      sync.Mutex
	calls   map[string]int
	total   atomic.Int32
}

func newCountingSource(bundles map[string]Messages) *countingSource {
	return &countingSource{bundles: bundles, calls: map[string]int{}}
}

func (s *countingSource) Load(ctx context.Context, locale, namespace string) (Messages, error) {
	key := CacheKey(locale, namespace)
	s.mu.Lock()
	s.calls[key]++
	s.mu.Unlock()
	s.total.Add(1)
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	msgs, ok := s.bundles[key]
	if !ok {
		return nil, ErrBundleNotFound
	}
	return msgs, nil
}

func (s *countingSource) count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

func TestLoaderCachesWithinTTL(t *testing.T) {
	src := newCountingSource(map[string]Messages{"en:common": {"actions.save": "Save"}})
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	loader := NewLoader(src, NewCache(time.Hour, clock.Now), "en", logger.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		msgs, err := loader.LoadNamespaceMessages(ctx, "en", "common")
		require.NoError(t, err)
		assert.Equal(t, "Save", msgs["actions.save"])
	}
	assert.Equal(t, 1, src.count("en:common"))

	clock.Advance(time.Hour + time.Second)
	_, err := loader.LoadNamespaceMessages(ctx, "en", "common")
	require.NoError(t, err)
	assert.Equal(t, 2, src.count("en:common"), "refetched after the TTL")
}

func TestLoaderCollapsesConcurrentLoads(t *testing.T) {
	src := newCountingSource(map[string]Messages{"en:dashboard": {"title": "Dashboard"}})
	src.gate = make(chan struct{})
	loader := NewLoader(src, NewCache(time.Hour, nil), "en", logger.NewNop())

	const callers = 16
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			msgs, err := loader.LoadNamespaceMessages(context.Background(), "en", "dashboard")
			if err == nil && msgs["title"] != "Dashboard" {
				err = errors.New("wrong bundle")
			}
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return src.total.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, src.count("en:dashboard"))
}

func TestLoaderFallback(t *testing.T) {
	src := newCountingSource(map[string]Messages{
		"en:common": {"actions.save": "Save"},
		"es:common": {"actions.save": "Guardar"},
	})
	loader := NewLoader(src, NewCache(time.Hour, nil), "en", logger.NewNop())
	ctx := context.Background()

	msgs, err := loader.LoadNamespaceMessages(ctx, "es-MX", "common")
	require.NoError(t, err)
	assert.Equal(t, "Guardar", msgs["actions.save"], "base language first")

	msgs, err = loader.LoadNamespaceMessages(ctx, "fr", "common")
	require.NoError(t, err)
	assert.Equal(t, "Save", msgs["actions.save"], "then the default locale")

	_, err = loader.LoadNamespaceMessages(ctx, "fr", "common")
	require.NoError(t, err)
	assert.Equal(t, 1, src.count("fr:common"), "fallback result is cached under the requested key")

	_, err = loader.LoadNamespaceMessages(ctx, "en", "missing")
	assert.True(t, apperr.IsNotFound(err))
}

func TestLoaderRejectsUnsafeNames(t *testing.T) {
	loader := NewLoader(newCountingSource(nil), NewCache(time.Hour, nil), "", logger.NewNop())
	assert.Equal(t, DefaultLocale, loader.DefaultLocale())

	for _, bad := range [][2]string{{"../etc", "common"}, {"en", "a/b"}, {"", "common"}, {"en", ""}} {
		_, err := loader.LoadNamespaceMessages(context.Background(), bad[0], bad[1])
		assert.True(t, apperr.IsBadRequest(err), "%q/%q", bad[0], bad[1])
	}
}

func TestLoaderInvalidateAndLocales(t *testing.T) {
	src := newCountingSource(map[string]Messages{"en:common": {"a": "1"}})
	loader := NewLoader(src, NewCache(time.Hour, nil), "en", logger.NewNop())
	ctx := context.Background()

	_, err := loader.LoadNamespaceMessages(ctx, "en", "common")
	require.NoError(t, err)
	loader.Invalidate("en", "common")
	_, err = loader.LoadNamespaceMessages(ctx, "en", "common")
	require.NoError(t, err)
	assert.Equal(t, 2, src.count("en:common"))

	locales, err := loader.Locales(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"en"}, locales, "sources that cannot list locales report the default")

	embedded := NewLoader(Embedded(), NewCache(time.Hour, nil), "en", logger.NewNop())
	locales, err = embedded.Locales(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "es"}, locales)
}

func TestLoaderSharedFetchSurvivesCallerCancel(t *testing.T) {
	src := newCountingSource(map[string]Messages{"en:dashboard": {"title": "Dashboard"}})
	src.gate = make(chan struct{})
	loader := NewLoader(src, NewCache(time.Hour, nil), "en", logger.NewNop())

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := loader.LoadNamespaceMessages(firstCtx, "en", "dashboard")
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return src.total.Load() >= 1 }, time.Second, time.Millisecond)

	second := make(chan error, 1)
	go func() {
		msgs, err := loader.LoadNamespaceMessages(context.Background(), "en", "dashboard")
		if err == nil && msgs["title"] != "Dashboard" {
			err = errors.New("wrong bundle")
		}
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(src.gate)
	require.NoError(t, <-second)
	assert.Equal(t, 1, src.count("en:dashboard"))
}
