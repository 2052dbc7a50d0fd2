package catalog

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jscyril/crossfade_player/api"
	playerrors "github.com/jscyril/crossfade_player/pkg/errors"
)

// Scanner walks a directory and builds catalog entries using a worker pool
type Scanner struct {
	workers    int
	formats    []string
	metaReader *MetadataReader
}

// NewScanner creates a new file scanner
func NewScanner(workers int, formats []string) *Scanner {
	if workers <= 0 {
		workers = 4
	}
	return &Scanner{
		workers:    workers,
		formats:    formats,
		metaReader: NewMetadataReader(),
	}
}

func (s *Scanner) isSupported(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, format := range s.formats {
		if ext == format {
			return true
		}
	}
	return false
}

type scanned struct {
	rel  string
	desc api.TrackDescriptor
}

// Scan walks root and returns a catalog of every supported file, ordered by
// relative path. ResourceID is the path relative to root without extension,
// so the result resolves against root as the tracks directory.
func (s *Scanner) Scan(ctx context.Context, root string) (*Catalog, []error) {
	files := make(chan string, 100)
	results := make(chan scanned, 100)

	var (
		errs  []error
		errMu sync.Mutex
	)
	report := func(err error) {
		errMu.Lock()
		errs = append(errs, err)
		errMu.Unlock()
	}

	go func() {
		defer close(files)
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				report(&playerrors.ScanError{Path: p, Err: err})
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !d.IsDir() && s.isSupported(p) {
				select {
				case files <- p:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
		if err != nil && err != context.Canceled {
			report(&playerrors.ScanError{Path: root, Err: err})
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range files {
				rel, err := filepath.Rel(root, p)
				if err != nil {
					report(&playerrors.ScanError{Path: p, Err: err})
					continue
				}
				ext := filepath.Ext(rel)
				results <- scanned{
					rel: rel,
					desc: api.TrackDescriptor{
						Name:       s.metaReader.Name(p),
						ResourceID: filepath.ToSlash(strings.TrimSuffix(rel, ext)),
						Kind:       strings.ToLower(strings.TrimPrefix(ext, ".")),
					},
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var found []scanned
	for r := range results {
		found = append(found, r)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].rel < found[j].rel })

	tracks := make([]api.TrackDescriptor, len(found))
	for i, f := range found {
		tracks[i] = f.desc
	}
	return &Catalog{Tracks: tracks}, errs
}
