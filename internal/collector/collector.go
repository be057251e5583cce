package collector

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/adfit/internal/log"
	"github.com/ppiankov/adfit/internal/models"
)

// Config holds configuration for the collector
type Config struct {
	MaxConcurrency int
	Timeout        time.Duration
	Logger         *zap.SugaredLogger
}

// Collector turns creative files on disk into analyzed assets
type Collector struct {
	config Config
	log    *zap.SugaredLogger
}

// Result is the outcome of one collection.
type Result struct {
	// Assets are in walk order
	Assets []models.FileAsset
	// Banners holds the structural report of every .zip, keyed by asset path
	Banners map[string]*models.BannerReport
	// Failed lists files that could not be analyzed
	Failed []FileError
}

// FileError records why one file was not analyzed
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// New creates a new collector with the given configuration
func New(config Config) *Collector {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 8
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Minute
	}

	return &Collector{
		config: config,
		log:    log.OrNop(config.Logger),
	}
}

// CollectFromPaths analyzes files and directories. Directories are walked
// recursively in lexical order.
func (c *Collector) CollectFromPaths(ctx context.Context, paths []string) (*Result, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input paths given")
	}

	var files []string
	for _, p := range paths {
		found, err := c.findAssetFiles(p)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no creative files (.jpg .jpeg .png .gif .zip) found in %s", strings.Join(paths, ", "))
	}

	c.log.Infof("Found %d creative file(s) to analyze", len(files))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("collection canceled: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	return c.collectFiles(ctx, files)
}

// findAssetFiles returns the supported files under path
func (c *Collector) findAssetFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", path, err)
	}

	if !info.IsDir() {
		if !IsSupported(path) {
			return nil, fmt.Errorf("unsupported file type: %s", path)
		}
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if (p != path && strings.HasPrefix(d.Name(), ".")) || d.Name() == "__MACOSX" {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSupported(p) {
			c.log.Debugf("Skipping %s: unsupported file type", p)
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", path, err)
	}

	return files, nil
}

// collectResult holds the result of processing a single file
type collectResult struct {
	index  int
	file   string
	asset  models.FileAsset
	banner *models.BannerReport
	err    error
}

type job struct {
	index int
	file  string
}

// collectFiles analyzes files concurrently using a worker pool. Results
// are put back in input order.
func (c *Collector) collectFiles(ctx context.Context, files []string) (*Result, error) {
	jobCh := make(chan job, len(files))
	resultCh := make(chan collectResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < c.config.MaxConcurrency; i++ {
		wg.Add(1)
		go c.worker(ctx, &wg, jobCh, resultCh)
	}

	go func() {
		defer close(jobCh)
		for i, file := range files {
			select {
			case jobCh <- job{index: i, file: file}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]collectResult, 0, len(files))
	for r := range resultCh {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })

	out := &Result{Banners: make(map[string]*models.BannerReport)}
	for _, r := range results {
		if r.err != nil {
			out.Failed = append(out.Failed, FileError{Path: r.file, Err: r.err})
			c.log.Warnf("Error analyzing %s: %v", r.file, r.err)
			continue
		}
		out.Assets = append(out.Assets, r.asset)
		if r.banner != nil {
			out.Banners[r.asset.Path] = r.banner
		}
		c.log.Debugf("Analyzed %s (%s, %s, %dKB)", r.file, r.asset.FileFormat, r.asset.Dimensions, r.asset.SizeKB)
	}

	if err := ctx.Err(); err != nil && len(results) < len(files) {
		return nil, fmt.Errorf("collection interrupted after %d of %d files: %w", len(results), len(files), err)
	}

	// Partial results are fine; only a total failure is an error
	if len(out.Failed) > 0 && len(out.Assets) == 0 {
		return nil, fmt.Errorf("all files failed to process (%d errors)", len(out.Failed))
	}

	if len(out.Failed) > 0 {
		c.log.Warnf("%d file(s) failed to process", len(out.Failed))
	}

	return out, nil
}

// worker processes files from the work channel
func (c *Collector) worker(ctx context.Context, wg *sync.WaitGroup, jobCh <-chan job, resultCh chan<- collectResult) {
	defer wg.Done()

	for {
		select {
		case j, ok := <-jobCh:
			if !ok {
				return
			}
			asset, banner, err := AnalyzeFile(j.file)
			resultCh <- collectResult{
				index:  j.index,
				file:   j.file,
				asset:  asset,
				banner: banner,
				err:    err,
			}

		case <-ctx.Done():
			return
		}
	}
}
