package i18n

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
)

// ErrBundleNotFound is returned when a source has no bundle for a locale
// and namespace.
var ErrBundleNotFound = errors.New("translation bundle not found")

// Source fetches one namespace bundle for one locale.
type Source interface {
	Load(ctx context.Context, locale, namespace string) (Messages, error)
}

// LocaleLister is implemented by sources that can enumerate their locales.
type LocaleLister interface {
	Locales(ctx context.Context) ([]string, error)
}

//go:embed bundles
var embeddedBundles embed.FS

// Embedded returns the bundles compiled into the binary.
func Embedded() *DirSource {
	sub, err := fs.Sub(embeddedBundles, "bundles")
	if err != nil {
		panic(err)
	}
	return NewDirSource(sub)
}

// DirSource reads <locale>/<namespace>.<ext> files from a file system.
type DirSource struct {
	fsys fs.FS
}

func NewDirSource(fsys fs.FS) *DirSource {
	return &DirSource{fsys: fsys}
}

// NewDiskSource reads bundles from a directory on disk.
func NewDiskSource(dir string) *DirSource {
	return NewDirSource(os.DirFS(dir))
}

func (s *DirSource) Load(_ context.Context, locale, namespace string) (Messages, error) {
	for _, ext := range Extensions {
		name := path.Join(locale, namespace+ext)
		data, err := fs.ReadFile(s.fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		msgs, err := Parse(ext, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return msgs, nil
	}
	return nil, ErrBundleNotFound
}

// Locales lists the top-level directories.
func (s *DirSource) Locales(_ context.Context) ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var locales []string
	for _, e := range entries {
		if e.IsDir() {
			locales = append(locales, e.Name())
		}
	}
	return locales, nil
}

// ChainSource asks each source in turn and returns the first bundle found.
// A source that fails for any reason is skipped; if none has the bundle the
// last real error is returned, or ErrBundleNotFound.
type ChainSource struct {
	sources []Source
	onError func(err error)
}

func NewChainSource(onError func(error), sources ...Source) *ChainSource {
	return &ChainSource{sources: sources, onError: onError}
}

func (c *ChainSource) Load(ctx context.Context, locale, namespace string) (Messages, error) {
	var lastErr error
	for _, src := range c.sources {
		msgs, err := src.Load(ctx, locale, namespace)
		if err == nil {
			return msgs, nil
		}
		if errors.Is(err, ErrBundleNotFound) {
			continue
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if c.onError != nil {
			c.onError(err)
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrBundleNotFound
}

// Locales merges the locales of every source that can list them.
func (c *ChainSource) Locales(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	for _, src := range c.sources {
		lister, ok := src.(LocaleLister)
		if !ok {
			continue
		}
		locales, err := lister.Locales(ctx)
		if err != nil {
			if c.onError != nil {
				c.onError(err)
			}
			continue
		}
		for _, l := range locales {
			seen[l] = true
		}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out, nil
}
