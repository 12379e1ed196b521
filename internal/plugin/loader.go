package plugin

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Discover finds script plugins in the given directories.
//
// Each plugin is a subdirectory holding a plugin.toml manifest. Missing
// directories are skipped. When two directories provide the same name the
// first one wins. Invalid manifests are reported together in the returned
// error alongside the manifests that did load.
func Discover(paths ...string) ([]*Manifest, error) {
	found := make(map[string]*Manifest)
	var errs []error

	for _, basePath := range paths {
		entries, err := os.ReadDir(basePath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			errs = append(errs, err)
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			manifestPath := filepath.Join(basePath, entry.Name(), ManifestFile)
			if _, err := os.Stat(manifestPath); err != nil {
				continue
			}

			m, err := LoadManifest(manifestPath)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", manifestPath, err))
				continue
			}
			if _, exists := found[m.Name]; !exists {
				found[m.Name] = m
			}
		}
	}

	manifests := make([]*Manifest, 0, len(found))
	for _, m := range found {
		manifests = append(manifests, m)
	}
	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].Name < manifests[j].Name
	})

	return manifests, errors.Join(errs...)
}
