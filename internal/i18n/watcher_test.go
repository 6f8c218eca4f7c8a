package i18n

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiskSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "en", "site.yml"), "crew:\n  lead: Foreman\n")
	writeFile(t, filepath.Join(dir, "en", "notes.txt"), "ignored")

	src := NewDiskSource(dir)
	msgs, err := src.Load(context.Background(), "en", "site")
	require.NoError(t, err)
	assert.Equal(t, "Foreman", msgs["crew.lead"])

	_, err = src.Load(context.Background(), "en", "notes")
	assert.ErrorIs(t, err, ErrBundleNotFound)

	_, err = NewDiskSource(filepath.Join(dir, "nope")).Locales(context.Background())
	assert.NoError(t, err)
}

func TestWatcherInvalidatesChangedBundles(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "en", "common.json")
	writeFile(t, bundle, `{"greeting":"Hello"}`)

	log := logger.NewNop()
	loader := NewLoader(NewDiskSource(dir), NewCache(time.Hour, nil), "en", log)
	ctx, cancel := context.WithCancel(context.Background())

	w, err := NewWatcher(dir, loader, log)
	require.NoError(t, err)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		_ = w.Close()
		wg.Wait()
	})

	msgs, err := loader.LoadNamespaceMessages(context.Background(), "en", "common")
	require.NoError(t, err)
	assert.Equal(t, "Hello", msgs["greeting"])

	writeFile(t, bundle, `{"greeting":"Howdy"}`)
	require.Eventually(t, func() bool {
		msgs, err := loader.LoadNamespaceMessages(context.Background(), "en", "common")
		return err == nil && msgs["greeting"] == "Howdy"
	}, 5*time.Second, 20*time.Millisecond)

	// A locale without its own bundle is served the default one, and sees
	// the default change too.
	msgs, err = loader.LoadNamespaceMessages(context.Background(), "es", "common")
	require.NoError(t, err)
	assert.Equal(t, "Howdy", msgs["greeting"])

	writeFile(t, bundle, `{"greeting":"Hi"}`)
	require.Eventually(t, func() bool {
		msgs, err := loader.LoadNamespaceMessages(context.Background(), "es", "common")
		return err == nil && msgs["greeting"] == "Hi"
	}, 5*time.Second, 20*time.Millisecond)
}
