// Package source loads the base catalog and base package definition
// datasets. Reads follow a fallback chain (named file, local cache,
// bundled default), and a malformed dataset is logged and skipped, not
// fatal: the app always comes up with some catalog.
package source

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/logging"
)

//go:embed data/*.json
var defaultsFS embed.FS

const (
	// CacheKeyCatalog is the local cache key for the merged catalog.
	CacheKeyCatalog = "catalog"
	// CacheKeyPackages is the local cache key for package definitions.
	CacheKeyPackages = "packages"

	defaultCatalogFile  = "data/default_catalog.json"
	defaultPackagesFile = "data/default_packages.json"
)

// Cache is the subset of the kv cache the loaders need.
type Cache interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
}

// LoadCatalog returns the base catalog: the named file under dataDir
// when present and well-formed, else the cached copy, else the bundled
// default dataset.
func LoadCatalog(dataDir, filename string, cache Cache) []domain.CatalogItem {
	if filename != "" {
		var items []domain.CatalogItem
		if readJSONFile(filepath.Join(dataDir, filename), &items) {
			return items
		}
	}

	if cache != nil {
		if raw, ok, err := cache.Get(CacheKeyCatalog); err == nil && ok {
			var items []domain.CatalogItem
			if unmarshalLogged(CacheKeyCatalog, raw, &items) {
				return items
			}
		}
	}

	var items []domain.CatalogItem
	readEmbedded(defaultCatalogFile, &items)
	return items
}

// LoadPackages returns the base package definitions with the same
// fallback chain as LoadCatalog, ending at the bundled defaults, then
// empty.
func LoadPackages(dataDir, filename string, cache Cache) []*domain.PackageDefinition {
	if filename != "" {
		var defs []*domain.PackageDefinition
		if readJSONFile(filepath.Join(dataDir, filename), &defs) {
			return defs
		}
	}

	if cache != nil {
		if raw, ok, err := cache.Get(CacheKeyPackages); err == nil && ok {
			var defs []*domain.PackageDefinition
			if unmarshalLogged(CacheKeyPackages, raw, &defs) {
				return defs
			}
		}
	}

	var defs []*domain.PackageDefinition
	readEmbedded(defaultPackagesFile, &defs)
	return defs
}

// CacheCatalog stores the merged catalog in the local cache for the
// next cold start.
func CacheCatalog(cache Cache, items []domain.CatalogItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return cache.Put(CacheKeyCatalog, string(data))
}

// CachePackages stores package definitions in the local cache.
func CachePackages(cache Cache, defs []*domain.PackageDefinition) error {
	data, err := json.Marshal(defs)
	if err != nil {
		return fmt.Errorf("failed to marshal packages: %w", err)
	}
	return cache.Put(CacheKeyPackages, string(data))
}

func readJSONFile(path string, v interface{}) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Default().Warn().Str("path", path).Err(err).Msg("failed to read dataset")
		}
		return false
	}
	return unmarshalLogged(path, string(data), v)
}

func readEmbedded(path string, v interface{}) {
	data, err := defaultsFS.ReadFile(path)
	if err != nil {
		return
	}
	if err := json.Unmarshal(data, v); err != nil {
		logging.Default().Error().Str("path", path).Err(err).Msg("bundled dataset is malformed")
	}
}

func unmarshalLogged(name, raw string, v interface{}) bool {
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		logging.Default().Warn().Str("source", name).Err(err).Msg("malformed dataset, falling back")
		return false
	}
	return true
}
