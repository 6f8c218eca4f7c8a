package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
)

func newTranslationServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/bt/locales/es/common.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret-key" {
			http.Error(w, "bad key", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"actions":{"save":"Guardar (remoto)"}}`))
	})
	mux.HandleFunc("/projects/bt/locales", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"locales":["en","es","pt-BR"]}`))
	})
	mux.HandleFunc("/projects/bt/locales/en/broken.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteSource(t *testing.T) {
	srv := newTranslationServer(t)
	ctx := context.Background()

	src := NewRemoteSource(srv.URL+"/", "secret-key", "bt", srv.Client())
	msgs, err := src.Load(ctx, "es", "common")
	require.NoError(t, err)
	assert.Equal(t, "Guardar (remoto)", msgs["actions.save"])

	_, err = src.Load(ctx, "de", "common")
	assert.ErrorIs(t, err, ErrBundleNotFound)

	_, err = src.Load(ctx, "en", "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")

	locales, err := src.Locales(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "es", "pt-BR"}, locales)

	_, err = NewRemoteSource(srv.URL, "wrong", "bt", srv.Client()).Load(ctx, "es", "common")
	assert.Error(t, err)
}

func TestChainPrefersRemoteAndFallsBack(t *testing.T) {
	srv := newTranslationServer(t)
	var failures []error
	chain := NewChainSource(func(err error) { failures = append(failures, err) },
		NewRemoteSource(srv.URL, "secret-key", "bt", srv.Client()),
		Embedded(),
	)
	loader := NewLoader(chain, NewCache(time.Hour, nil), "en", logger.NewNop())
	ctx := context.Background()

	es, err := loader.LoadNamespaceMessages(ctx, "es", "common")
	require.NoError(t, err)
	assert.Equal(t, "Guardar (remoto)", es["actions.save"])

	en, err := loader.LoadNamespaceMessages(ctx, "en", "common")
	require.NoError(t, err)
	assert.Equal(t, "Save", en["actions.save"], "remote 404 falls through to the embedded bundle")
	assert.Empty(t, failures)

	locales, err := chain.Locales(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "es", "pt-BR"}, locales)
}

func TestChainSkipsFailingSource(t *testing.T) {
	srv := newTranslationServer(t)
	srv.Close()

	var failures int
	chain := NewChainSource(func(error) { failures++ },
		NewRemoteSource(srv.URL, "secret-key", "bt", srv.Client()),
		Embedded(),
	)
	msgs, err := chain.Load(context.Background(), "en", "common")
	require.NoError(t, err)
	assert.Equal(t, "Save", msgs["actions.save"])
	assert.Equal(t, 1, failures)

	_, err = NewChainSource(nil, NewRemoteSource(srv.URL, "", "bt", srv.Client())).Load(context.Background(), "en", "common")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBundleNotFound)
}

func TestLoaderFallsBackWhenRemoteIsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	chain := NewChainSource(nil, NewRemoteSource(srv.URL, "secret-key", "bt", srv.Client()), Embedded())
	loader := NewLoader(chain, NewCache(time.Hour, nil), "en", logger.NewNop())
	ctx := context.Background()

	es, err := loader.LoadNamespaceMessages(ctx, "es", "common")
	require.NoError(t, err)
	assert.Equal(t, "Guardar", es["actions.save"])

	esMX, err := loader.LoadNamespaceMessages(ctx, "es-MX", "common")
	require.NoError(t, err)
	assert.Equal(t, "Guardar", esMX["actions.save"], "base language from the embedded bundles")

	fr, err := loader.LoadNamespaceMessages(ctx, "fr", "common")
	require.NoError(t, err)
	assert.Equal(t, "Save", fr["actions.save"], "default locale from the embedded bundles")
}

func TestLoaderReportsSourceFailureWhenNothingServes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	loader := NewLoader(NewRemoteSource(srv.URL, "", "bt", srv.Client()), NewCache(time.Hour, nil), "en", logger.NewNop())
	_, err := loader.LoadNamespaceMessages(context.Background(), "fr", "common")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
