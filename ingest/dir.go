package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/panjf2000/ants/v2"

	"github.com/reglens/reglens/extractor"
	"github.com/reglens/reglens/log"
)

// defaultWorkers is the default concurrency for directory ingestion.
const defaultWorkers = 4

// DefaultPattern matches every file under the directory recursively.
const DefaultPattern = "**/*"

// IngestDir ingests every supported file under dir whose relative path
// matches the doublestar pattern (DefaultPattern when empty). Files are
// processed concurrently on a bounded worker pool. Per-file failures are
// logged and collected; the returned count covers the files that
// succeeded.
func (in *Ingestor) IngestDir(ctx context.Context, dir, pattern string, replace bool) (int, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	matches, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return 0, fmt.Errorf("glob %q in %s: %w", pattern, dir, err)
	}

	var paths []string
	for _, m := range matches {
		full := filepath.Join(dir, m)
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			continue
		}
		if !supportedExtension(strings.ToLower(filepath.Ext(full))) {
			continue
		}
		paths = append(paths, full)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return 0, nil
	}

	pool, err := ants.NewPool(in.workers)
	if err != nil {
		return 0, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu    sync.Mutex
		total int
		errs  []error
		wg    sync.WaitGroup
	)
	for _, path := range paths {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			n, err := in.IngestFile(ctx, path, replace)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warnf("ingest: %s failed: %v", path, err)
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
				return
			}
			total += n
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("%s: %w", path, submitErr))
			mu.Unlock()
		}
	}
	wg.Wait()

	return total, errors.Join(errs...)
}

// supportedExtension reports whether files with the given extension can
// be ingested.
func supportedExtension(ext string) bool {
	if ext == ".csv" {
		return true
	}
	_, ok := extractor.Get(ext)
	return ok
}
