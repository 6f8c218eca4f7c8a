package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"
	"golang.org/x/sync/singleflight"
)

const (
	keySetTTL          = 10 * time.Minute
	minRefreshInterval = 30 * time.Second
)

// KeySet caches the identity provider's JWKS. An unknown kid triggers a
// refresh, at most once per minRefreshInterval.
type KeySet struct {
	url    string
	client *http.Client
	group  singleflight.Group

	mu        sync.RWMutex
	set       jose.JSONWebKeySet
	fetchedAt time.Time
	now       func() time.Time
}

// NewKeySet creates a lazily fetched key set.
func NewKeySet(url string, client *http.Client) *KeySet {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &KeySet{url: url, client: client, now: time.Now}
}

// Lookup returns the key with the given id. An empty kid matches a key set
// containing exactly one key.
func (k *KeySet) Lookup(ctx context.Context, kid string) (*jose.JSONWebKey, error) {
	k.mu.RLock()
	key, found := find(k.set, kid)
	stale := k.now().Sub(k.fetchedAt) > keySetTTL
	recent := k.now().Sub(k.fetchedAt) < minRefreshInterval
	k.mu.RUnlock()

	if found && !stale {
		return key, nil
	}
	if !found && recent && !k.fetchedAt.IsZero() {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}

	if err := k.refresh(ctx); err != nil {
		if found {
			return key, nil
		}
		return nil, err
	}

	k.mu.RLock()
	defer k.mu.RUnlock()
	if key, ok := find(k.set, kid); ok {
		return key, nil
	}
	return nil, fmt.Errorf("unknown key id %q", kid)
}

func (k *KeySet) refresh(ctx context.Context) error {
	_, err, _ := k.group.Do("jwks", func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := k.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch key set: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch key set: unexpected status %d", resp.StatusCode)
		}

		var set jose.JSONWebKeySet
		if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
			return nil, fmt.Errorf("decode key set: %w", err)
		}

		k.mu.Lock()
		k.set = set
		k.fetchedAt = k.now()
		k.mu.Unlock()
		return nil, nil
	})
	return err
}

func find(set jose.JSONWebKeySet, kid string) (*jose.JSONWebKey, bool) {
	if kid == "" {
		if len(set.Keys) == 1 {
			return &set.Keys[0], true
		}
		return nil, false
	}
	keys := set.Key(kid)
	if len(keys) == 0 {
		return nil, false
	}
	return &keys[0], true
}
