// Package i18n loads namespaced translation bundles for the web client and
// caches them per locale and namespace.
package i18n

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/apperr"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
)

// DefaultLocale is used when a locale has no bundle for a namespace.
const DefaultLocale = "en"

// fetchTimeout bounds a shared fetch, which runs detached from the contexts
// of the callers waiting on it.
const fetchTimeout = 15 * time.Second

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Loader serves bundles from a cache, filling misses from a Source.
// Concurrent misses for the same key share one fetch.
type Loader struct {
	source        Source
	cache         *Cache
	group         singleflight.Group
	defaultLocale string
	logger        *logger.Logger
}

func NewLoader(source Source, cache *Cache, defaultLocale string, log *logger.Logger) *Loader {
	if defaultLocale == "" {
		defaultLocale = DefaultLocale
	}
	return &Loader{
		source:        source,
		cache:         cache,
		defaultLocale: defaultLocale,
		logger:        log.WithFields(zap.String("component", "i18n-loader")),
	}
}

func (l *Loader) DefaultLocale() string { return l.defaultLocale }

// LoadNamespaceMessages returns the flat bundle for locale and namespace.
// A locale without the bundle falls back to its base language and then to
// the default locale; the result is cached under the requested key. The
// returned map is shared and must not be modified.
func (l *Loader) LoadNamespaceMessages(ctx context.Context, locale, namespace string) (Messages, error) {
	if !namePattern.MatchString(locale) {
		return nil, apperr.Validation("locale", "invalid locale")
	}
	if !namePattern.MatchString(namespace) {
		return nil, apperr.Validation("namespace", "invalid namespace")
	}
	if msgs, ok := l.cache.Get(locale, namespace); ok {
		return msgs, nil
	}

	key := CacheKey(locale, namespace)
	ch := l.group.DoChan(key, func() (interface{}, error) {
		if msgs, ok := l.cache.Get(locale, namespace); ok {
			return msgs, nil
		}
		// Collapsed callers wait on this fetch, so one caller going away
		// must not cancel it for the rest.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		msgs, err := l.resolve(fetchCtx, locale, namespace)
		if err != nil {
			return nil, err
		}
		l.cache.Set(locale, namespace, msgs)
		return msgs, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Messages), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// resolve tries each candidate locale in turn. A failing source does not
// stop the walk: a later candidate may still be served by another source,
// and the failure is only returned when no candidate produced a bundle.
func (l *Loader) resolve(ctx context.Context, locale, namespace string) (Messages, error) {
	var firstErr error
	for _, candidate := range l.candidates(locale) {
		msgs, err := l.source.Load(ctx, candidate, namespace)
		if errors.Is(err, ErrBundleNotFound) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			if firstErr == nil {
				firstErr = err
			}
			l.logger.Warn("translation source failed",
				zap.String("locale", candidate),
				zap.String("namespace", namespace),
				zap.Error(err))
			continue
		}
		if candidate != locale {
			l.logger.Debug("translation fallback",
				zap.String("locale", locale),
				zap.String("served", candidate),
				zap.String("namespace", namespace))
		}
		return msgs, nil
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, apperr.NotFound("translation bundle", CacheKey(locale, namespace))
}

// candidates lists the locales to try: the locale itself, its base
// language ("es" for "es-MX") and the default locale.
func (l *Loader) candidates(locale string) []string {
	out := []string{locale}
	if tag, err := language.Parse(locale); err == nil {
		if base, conf := tag.Base(); conf != language.No && base.String() != locale {
			out = append(out, base.String())
		}
	}
	if l.defaultLocale != locale {
		out = append(out, l.defaultLocale)
	}
	return out
}

// Invalidate forgets every cached bundle that may have been served from
// the given locale's file, including fallbacks cached under other locales.
func (l *Loader) Invalidate(locale, namespace string) {
	l.cache.InvalidateNamespace(namespace)
	l.logger.Debug("translation cache invalidated", zap.String("locale", locale), zap.String("namespace", namespace))
}

func (l *Loader) Clear() {
	l.cache.Clear()
}

// Locales lists the locales the source knows, or just the default locale
// when the source cannot enumerate them.
func (l *Loader) Locales(ctx context.Context) ([]string, error) {
	lister, ok := l.source.(LocaleLister)
	if !ok {
		return []string{l.defaultLocale}, nil
	}
	locales, err := lister.Locales(ctx)
	if err != nil {
		return nil, err
	}
	if len(locales) == 0 {
		return []string{l.defaultLocale}, nil
	}
	return locales, nil
}
