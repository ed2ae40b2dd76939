// Package scan opens every archive in the configured paths, hashes every
// entry, and builds the lookup structures the resolver verifies against:
// a per-archive name table and a global content-addressed index.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"romscan/internal/dat"
	"romscan/internal/logger"
)

// Entry is one file discovered inside an archive.
type Entry struct {
	Name string
	Hash dat.ContentHash
}

// Location records where matching bytes were first seen.
type Location struct {
	Archive string // archive identity (base filename without extension)
	Path    string // filesystem path of the archive
	File    string // entry name inside the archive
}

// FileIndex maps archive identity to that archive's entry-name table. Built
// for primary archives only.
type FileIndex map[string]map[string]dat.ContentHash

// ContentIndex maps a content hash to the first location seen holding those
// bytes. First occurrence wins; later duplicates are not recorded.
type ContentIndex map[dat.ContentHash]Location

// archiveExts are the recognized container suffixes, lowercase.
var archiveExts = map[string]struct{}{".zip": {}, ".7z": {}}

// ListArchives returns the archive files directly inside dir, sorted
// lexicographically so that the ContentIndex first-wins rule is reproducible
// across runs.
func ListArchives(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%q is not a valid archive path: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := archiveExts[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Identity derives the archive identity from its path: the base filename
// without extension. Games and archives share this naming convention.
func Identity(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// scanResult holds one archive's entries, keyed back to its input position
// so merging can follow path order rather than completion order.
type scanResult struct {
	path    string
	entries []Entry
	err     error
}

// Build scans the primary and auxiliary archives and produces the indices.
// Primary archives populate both the ContentIndex and the FileIndex;
// auxiliary archives contribute bytes to the ContentIndex only. Archives
// are scanned concurrently, but results are merged strictly in input path
// order so the first-wins rule stays deterministic. A corrupt or
// foreign-format archive is skipped, never fatal.
func Build(romPaths, addPaths []string) (ContentIndex, FileIndex) {
	all := make([]string, 0, len(romPaths)+len(addPaths))
	all = append(all, romPaths...)
	all = append(all, addPaths...)

	results := make([]scanResult, len(all))
	p := pool.New().WithMaxGoroutines(workerCount())
	for i, path := range all {
		p.Go(func() {
			entries, err := scanArchive(path)
			results[i] = scanResult{path: path, entries: entries, err: err}
		})
	}
	p.Wait()

	contents := make(ContentIndex)
	files := make(FileIndex, len(romPaths))
	for i, res := range results {
		if res.err != nil {
			logger.Debugf("skipping %s: %v", res.path, res.err)
			continue
		}
		id := Identity(res.path)
		primary := i < len(romPaths)
		if primary && files[id] == nil {
			files[id] = make(map[string]dat.ContentHash, len(res.entries))
		}
		for _, e := range res.entries {
			if primary {
				files[id][e.Name] = e.Hash
			}
			if _, seen := contents[e.Hash]; !seen {
				contents[e.Hash] = Location{Archive: id, Path: res.path, File: e.Name}
			}
		}
	}
	return contents, files
}

func workerCount() int {
	n := runtime.GOMAXPROCS(0)
	if n > 8 {
		n = 8
	}
	if n < 1 {
		n = 1
	}
	return n
}
