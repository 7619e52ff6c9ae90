package source

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/lo"

	"github.com/c360studio/ontoc/config"
)

// ResolvedSource is one concrete file bound to the manifest entry that
// matched it.
type ResolvedSource struct {
	// Name is the slash-separated path relative to files_dir. It is the
	// source name reported in errors and logs.
	Name string

	Entry config.SourceEntry
}

// ResolveManifest expands the manifest sources against filesDir, in
// manifest order. Matches of one glob are sorted by name.
//
// A pattern that matches no file is an error, and so is a file matched by
// two entries, since its kind would be ambiguous.
func ResolveManifest(filesDir string, sources []config.SourceEntry) ([]ResolvedSource, error) {
	return resolveManifest(os.DirFS(filesDir), sources)
}

func resolveManifest(fsys fs.FS, sources []config.SourceEntry) ([]ResolvedSource, error) {
	var resolved []ResolvedSource
	owner := make(map[string]int)

	for i, entry := range sources {
		names, err := resolvePattern(fsys, entry.Path)
		if err != nil {
			return nil, fmt.Errorf("manifest.sources[%d]: %w", i, err)
		}

		for _, name := range names {
			if prev, seen := owner[name]; seen {
				return nil, fmt.Errorf("manifest.sources[%d]: %s is already matched by manifest.sources[%d] (%s)",
					i, name, prev, sources[prev].Path)
			}
			owner[name] = i
			resolved = append(resolved, ResolvedSource{Name: name, Entry: entry})
		}
	}

	return resolved, nil
}

// resolvePattern expands a single pattern to file names.
func resolvePattern(fsys fs.FS, pattern string) ([]string, error) {
	pattern = cleanPattern(pattern)

	if !containsGlob(pattern) {
		info, err := fs.Stat(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", pattern, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("source %s is a directory", pattern)
		}
		return []string{pattern}, nil
	}

	// Use doublestar for ** support
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}

	sort.Strings(matches)
	return matches, nil
}

// FindUnregistered returns the JSON files under filesDir that no resolved
// source covers, sorted by name.
func FindUnregistered(filesDir string, resolved []ResolvedSource) ([]string, error) {
	return findUnregistered(os.DirFS(filesDir), resolved)
}

func findUnregistered(fsys fs.FS, resolved []ResolvedSource) ([]string, error) {
	all, err := doublestar.Glob(fsys, "**/*.json", doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("scan for unregistered sources: %w", err)
	}

	registered := lo.Map(resolved, func(r ResolvedSource, _ int) string { return r.Name })
	missing := lo.Without(all, registered...)
	sort.Strings(missing)
	return missing, nil
}

// containsGlob checks if a pattern contains glob characters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// cleanPattern normalizes a manifest path into an fs.FS-relative pattern.
func cleanPattern(pattern string) string {
	pattern = strings.ReplaceAll(strings.TrimSpace(pattern), "\\", "/")
	pattern = strings.TrimPrefix(pattern, "./")
	if containsGlob(pattern) {
		return pattern
	}
	return path.Clean(pattern)
}
