// Package builder expands glob patterns into a manifest of content-hashed
// symbolic links.
//
// A run is a single sequential pass: expand patterns, drop duplicates and
// exclusions, skip symlinks, fingerprint the remaining regular files, create
// "{name}-{hash}{ext}" links beside them and record each pair. Hashing may
// fan out over several workers; linking and recording always happen in match
// order, so the manifest does not depend on the worker count.
package builder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/gobwas/glob"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/jamesainslie/revlink/pkg/revlink/hasher"
	"github.com/jamesainslie/revlink/pkg/revlink/linker"
	"github.com/jamesainslie/revlink/pkg/revlink/logging"
	"github.com/jamesainslie/revlink/pkg/revlink/manifest"
)

// logger is the package-level logger for manifest building.
var logger = logging.Get("builder")

// Options configures a run.
type Options struct {
	// RelativeBase rewrites manifest paths relative to this directory.
	RelativeBase string

	// PrependSlash prefixes every manifest path with "/".
	PrependSlash bool

	// Exclude contains glob patterns (with "/" as separator) for matched
	// paths to leave alone.
	Exclude []string

	// Algorithm selects the content hash. Empty means hasher.DefaultAlgorithm.
	Algorithm hasher.Algorithm

	// HashLength is the number of hex characters kept. 0 means hasher.DefaultLength.
	HashLength int

	// DryRun computes the manifest and checks for link conflicts without
	// writing links.
	DryRun bool

	// Workers is the number of concurrent hashing workers. Values below 1 mean 1.
	Workers int

	// Fs is the filesystem used for reads and links. It must address the same
	// paths as the OS glob. Nil means afero.NewOsFs().
	Fs afero.Fs
}

// Stats contains statistics about a run.
type Stats struct {
	FilesMatched    int
	FilesExcluded   int
	FilesHashed     int
	SymlinksSkipped int
	OtherSkipped    int
	LinksCreated    int
	LinksUnchanged  int
	BytesHashed     int64
	Duration        time.Duration
}

// Report is the outcome of a successful run.
type Report struct {
	Manifest manifest.Manifest
	Stats    Stats
}

// Builder builds manifests. A Builder may be reused for several runs.
type Builder struct {
	opts    Options
	fs      afero.Fs
	linker  *linker.Linker
	hasher  *hasher.Hasher
	exclude []glob.Glob
	display manifest.DisplayOptions
}

// New validates opts and returns a Builder.
func New(opts Options) (*Builder, error) {
	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	l, err := linker.New(fsys)
	if err != nil {
		return nil, err
	}

	h, err := hasher.New(opts.Algorithm, opts.HashLength)
	if err != nil {
		return nil, err
	}

	exclude := make([]glob.Glob, 0, len(opts.Exclude))
	for _, pattern := range opts.Exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, &PatternError{Pattern: pattern, Err: err}
		}
		exclude = append(exclude, g)
	}

	if opts.Workers < 1 {
		opts.Workers = 1
	}

	return &Builder{
		opts:    opts,
		fs:      fsys,
		linker:  l,
		hasher:  h,
		exclude: exclude,
		display: manifest.DisplayOptions{
			RelativeBase: opts.RelativeBase,
			PrependSlash: opts.PrependSlash,
		},
	}, nil
}

// Build is a convenience wrapper that runs a new Builder once and returns
// only the manifest.
func Build(ctx context.Context, patterns []string, opts Options) (manifest.Manifest, error) {
	b, err := New(opts)
	if err != nil {
		return nil, err
	}
	report, err := b.Run(ctx, patterns)
	if err != nil {
		return nil, err
	}
	return report.Manifest, nil
}

// Run expands patterns, creates the hashed links and returns the manifest.
// The first error aborts the run and no manifest is returned.
func (b *Builder) Run(ctx context.Context, patterns []string) (*Report, error) {
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}

	start := time.Now()
	var stats Stats

	candidates, err := b.expand(ctx, patterns)
	if err != nil {
		return nil, err
	}
	stats.FilesMatched = len(candidates)

	files := make([]string, 0, len(candidates))
	for _, path := range candidates {
		if b.isExcluded(path) {
			logger.Debug("excluded", "path", path)
			stats.FilesExcluded++
			continue
		}

		isLink, err := b.linker.IsSymlink(path)
		if err != nil {
			return nil, &FileReadError{Path: path, Err: err}
		}
		if isLink {
			logger.Debug("skipping symlink", "path", path)
			stats.SymlinksSkipped++
			continue
		}

		info, err := b.fs.Stat(path)
		if err != nil {
			return nil, &FileReadError{Path: path, Err: err}
		}
		if !info.Mode().IsRegular() {
			logger.Debug("skipping non-regular file", "path", path, "mode", info.Mode().String())
			stats.OtherSkipped++
			continue
		}
		files = append(files, path)
	}

	sums, bytesHashed, err := b.hashAll(ctx, files)
	if err != nil {
		return nil, err
	}
	stats.FilesHashed = len(files)
	stats.BytesHashed = bytesHashed

	m := make(manifest.Manifest, len(files))
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		revPath := hasher.RevPath(path, sums[i])
		res, err := b.link(path, revPath)
		if err != nil {
			return nil, &LinkCreationError{Path: path, Link: revPath, Err: err}
		}
		switch res {
		case linker.Created:
			stats.LinksCreated++
		case linker.Unchanged:
			stats.LinksUnchanged++
		}

		key, err := manifest.DisplayPath(path, b.display)
		if err != nil {
			return nil, err
		}
		value, err := manifest.DisplayPath(revPath, b.display)
		if err != nil {
			return nil, err
		}
		m[key] = value

		logger.Debug("linked", "path", path, "link", revPath, "result", res.String())
	}

	stats.Duration = time.Since(start)
	logger.Info("manifest built",
		"entries", len(m),
		"created", stats.LinksCreated,
		"unchanged", stats.LinksUnchanged,
		"skipped_symlinks", stats.SymlinksSkipped,
		"hashed", humanize.Bytes(uint64(stats.BytesHashed)),
		"duration", stats.Duration,
		"dry_run", b.opts.DryRun)

	return &Report{Manifest: m, Stats: stats}, nil
}

// expand resolves every pattern in order and drops repeated matches,
// keeping the first occurrence. Matches come back cleaned, so "./css/*.css"
// and "css/*.css" both yield "css/app.css".
func (b *Builder) expand(ctx context.Context, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string

	for _, pattern := range patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			if errors.Is(err, doublestar.ErrBadPattern) {
				return nil, &PatternError{Pattern: pattern, Err: err}
			}
			return nil, &FileReadError{Path: pattern, Err: err}
		}
		logger.Debug("expanded pattern", "pattern", pattern, "matches", len(matches))

		for _, path := range matches {
			key := filepath.Clean(path)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, path)
		}
	}

	return out, nil
}

// isExcluded reports whether path matches any exclude pattern.
func (b *Builder) isExcluded(path string) bool {
	if len(b.exclude) == 0 {
		return false
	}
	slashed := filepath.ToSlash(path)
	cleaned := filepath.ToSlash(filepath.Clean(path))
	for _, g := range b.exclude {
		if g.Match(slashed) || g.Match(cleaned) {
			return true
		}
	}
	return false
}

// hashAll fingerprints files with up to opts.Workers goroutines. sums[i]
// belongs to files[i].
func (b *Builder) hashAll(ctx context.Context, files []string) ([]string, int64, error) {
	sums := make([]string, len(files))
	var total atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sum, n, err := b.hashFile(path)
			if err != nil {
				return err
			}
			sums[i] = sum
			total.Add(n)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return sums, total.Load(), nil
}

// hashFile returns the fingerprint of a single file.
func (b *Builder) hashFile(path string) (string, int64, error) {
	f, err := b.fs.Open(path)
	if err != nil {
		return "", 0, &FileReadError{Path: path, Err: err}
	}
	defer f.Close()

	sum, n, err := b.hasher.Sum(f)
	if err != nil {
		return "", 0, &FileReadError{Path: path, Err: err}
	}
	return sum, n, nil
}

// link creates (or, in dry-run mode, checks) the hashed link.
func (b *Builder) link(path, revPath string) (linker.Result, error) {
	if b.opts.DryRun {
		return b.linker.Check(path, revPath)
	}
	return b.linker.Ensure(path, revPath)
}

// String describes the options for logs.
func (o Options) String() string {
	return fmt.Sprintf("relative=%q slash=%t algorithm=%s length=%d workers=%d dry_run=%t exclude=%v",
		o.RelativeBase, o.PrependSlash, o.Algorithm, o.HashLength, o.Workers, o.DryRun, o.Exclude)
}
