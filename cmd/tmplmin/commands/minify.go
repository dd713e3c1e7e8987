package commands

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/livefir/tmplmin"
	"github.com/livefir/tmplmin/cmd/tmplmin/internal/config"
	"github.com/livefir/tmplmin/cmd/tmplmin/internal/ui"
	"github.com/livefir/tmplmin/internal/cache"
	"github.com/livefir/tmplmin/internal/htmlmin"
	"github.com/livefir/tmplmin/internal/stats"
	"github.com/livefir/tmplmin/internal/tmplparse"
)

type minifyOptions struct {
	write        bool
	outDir       string
	document     bool
	keepComments bool
	useCache     bool
	showStats    bool
	progress     bool
	jobs         int
}

// Minify parses template files, runs the rewrite pass over each, and
// emits the minified text to stdout, in place, or under an output
// directory.
func Minify(args []string) error {
	opts, inputs, err := parseMinifyArgs(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if opts.jobs == 0 {
		opts.jobs = cfg.Jobs
	}
	if opts.jobs == 0 {
		opts.jobs = runtime.NumCPU()
	}
	if cfg.KeepComments {
		opts.keepComments = true
	}

	files, err := collectFiles(inputs, cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no template files found")
	}

	toStdout := !opts.write && opts.outDir == ""
	if toStdout && len(files) > 1 {
		return fmt.Errorf("%d input files: use -w to rewrite in place or -o <dir>", len(files))
	}

	min := htmlmin.New()
	min.KeepComments = opts.keepComments
	r := &runner{
		opts:        opts,
		collector:   stats.NewCollector(),
		rewriter:    tmplmin.NewRewriter(min),
		fingerprint: fmt.Sprintf("document=%t keep-comments=%t", opts.document, opts.keepComments),
	}

	if opts.useCache {
		path := cfg.CachePath
		if path == "" {
			path, err = cache.DefaultPath()
			if err != nil {
				return err
			}
		}
		store, err := cache.New(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Warning: cache disabled: %v\n", err)
		} else {
			r.store = store
			defer store.Close()
		}
	}

	if toStdout {
		out, err := r.processFile(files[0])
		if err != nil {
			r.collector.RecordFailure()
			return err
		}
		fmt.Print(out)
		r.printStats()
		return nil
	}

	if opts.progress {
		events := make(chan ui.Event, 256)
		r.events = events
		go func() {
			r.runPool(files)
			close(events)
		}()
		model := ui.NewProgressModel("Minifying templates", files, events)
		program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run progress display: %w", err)
		}
	} else {
		r.runPool(files)
	}

	sort.Slice(r.failures, func(i, j int) bool { return r.failures[i].path < r.failures[j].path })
	for _, f := range r.failures {
		fmt.Fprintf(os.Stderr, "  %s: %v\n", f.path, f.err)
	}
	r.printStats()

	if len(r.failures) > 0 {
		return fmt.Errorf("%d of %d files failed", len(r.failures), len(files))
	}

	snap := r.collector.Snapshot()
	fmt.Printf("✅ Minified %d files: %d → %d bytes (%.1f%% smaller)\n",
		snap.FilesProcessed, snap.BytesIn, snap.BytesOut, r.collector.SavingsPercent())
	return nil
}

func parseMinifyArgs(args []string) (minifyOptions, []string, error) {
	opts := minifyOptions{useCache: true}
	var inputs []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-w", "--write":
			opts.write = true
		case "-o", "--out":
			if i+1 >= len(args) {
				return opts, nil, fmt.Errorf("-o requires a directory")
			}
			opts.outDir = args[i+1]
			i++
		case "--document":
			opts.document = true
		case "--keep-comments":
			opts.keepComments = true
		case "--cache":
			opts.useCache = true
		case "--no-cache":
			opts.useCache = false
		case "--stats":
			opts.showStats = true
		case "--progress":
			opts.progress = true
		case "--jobs":
			if i+1 >= len(args) {
				return opts, nil, fmt.Errorf("--jobs requires a count")
			}
			n, err := strconv.Atoi(args[i+1])
			if err != nil || n < 1 {
				return opts, nil, fmt.Errorf("invalid job count: %s", args[i+1])
			}
			opts.jobs = n
			i++
		default:
			if strings.HasPrefix(args[i], "-") {
				return opts, nil, fmt.Errorf("unknown flag: %s", args[i])
			}
			inputs = append(inputs, args[i])
		}
	}

	if len(inputs) == 0 {
		return opts, nil, fmt.Errorf("input file or directory required")
	}
	if opts.write && opts.outDir != "" {
		return opts, nil, fmt.Errorf("use either -w or -o <dir>, not both")
	}
	return opts, inputs, nil
}

// collectFiles expands the command-line inputs into a sorted, de-duped
// file list. Directories are scanned recursively for the configured
// extensions; files named directly are always included.
func collectFiles(inputs []string, cfg *config.Config) ([]string, error) {
	paths, err := expandInputs(inputs)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != path && cfg.Excluded(p) {
					return filepath.SkipDir
				}
				return nil
			}
			if !cfg.MatchesExtension(p) || cfg.Excluded(p) {
				return nil
			}
			add(p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", path, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// expandInputs resolves each input to existing paths, falling back to
// glob expansion for patterns the shell did not expand.
func expandInputs(inputs []string) ([]string, error) {
	var out []string
	for _, input := range inputs {
		if _, err := os.Stat(input); err == nil {
			out = append(out, input)
			continue
		}
		matches, err := filepath.Glob(input)
		if err != nil || len(matches) == 0 {
			return nil, fmt.Errorf("no such file or pattern: %s", input)
		}
		out = append(out, matches...)
	}
	return out, nil
}

type fileError struct {
	path string
	err  error
}

type runner struct {
	opts        minifyOptions
	rewriter    *tmplmin.Rewriter
	store       *cache.Cache
	collector   *stats.Collector
	fingerprint string
	events      chan<- ui.Event

	mu       sync.Mutex
	failures []fileError
}

// runPool minifies files on a fixed pool of workers. Per-file errors
// are collected, never fatal to the batch.
func (r *runner) runPool(files []string) {
	workers := r.opts.jobs
	if workers > len(files) {
		workers = len(files)
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				r.runOne(path)
			}
		}()
	}

	for _, path := range files {
		jobs <- path
	}
	close(jobs)
	wg.Wait()
}

func (r *runner) runOne(path string) {
	r.sendEvent(ui.Event{Kind: ui.FileStart, File: path})

	out, err := r.processFile(path)
	if err == nil {
		err = r.writeOutput(path, out)
	}
	if err != nil {
		r.collector.RecordFailure()
		r.mu.Lock()
		r.failures = append(r.failures, fileError{path: path, err: err})
		r.mu.Unlock()
		r.sendEvent(ui.Event{Kind: ui.FileFailed, File: path, Err: err})
		return
	}

	r.sendEvent(ui.Event{Kind: ui.FileDone, File: path})
}

// processFile reads, minifies, and caches one file, returning the
// minified text.
func (r *runner) processFile(path string) (string, error) {
	data, err := readFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	var key string
	if r.store != nil {
		key = cache.Key(r.fingerprint, data)
		if out, ok, err := r.store.Get(key); err == nil && ok {
			r.collector.RecordCacheHit()
			r.collector.RecordFile(len(data), len(out))
			return out, nil
		}
		r.collector.RecordCacheMiss()
	}

	out, spans, symbols, err := r.minifySource(path, string(data))
	if err != nil {
		return "", fmt.Errorf("failed to minify %s: %w", path, err)
	}
	r.collector.RecordRewrite(spans, symbols)
	r.collector.RecordFile(len(data), len(out))

	if key != "" {
		// Cache write failures never fail the run.
		_ = r.store.Put(key, out, len(data), len(out))
	}
	return out, nil
}

// minifySource runs the rewrite pass over one source, returning the
// emitted text plus the span and dropped-symbol counts for stats.
func (r *runner) minifySource(name, source string) (string, int64, int64, error) {
	if r.opts.document {
		out := htmlmin.MinifyDocument(source)
		return out, 0, 0, nil
	}

	trees, err := tmplparse.Parse(name, source)
	if err != nil {
		return "", 0, 0, err
	}

	var spansMinified, symbolsDropped int64
	for _, tree := range trees {
		spansBefore, symbolsBefore := stats.TreeCounts(tree.Root)
		if err := r.rewriter.Rewrite(tree.Root); err != nil {
			return "", 0, 0, err
		}
		_, symbolsAfter := stats.TreeCounts(tree.Root)
		spansMinified += spansBefore
		symbolsDropped += symbolsBefore - symbolsAfter
	}

	out, err := tmplparse.EmitTrees(trees)
	if err != nil {
		return "", 0, 0, err
	}
	return out, spansMinified, symbolsDropped, nil
}

func (r *runner) writeOutput(path, out string) error {
	target := path
	if r.opts.outDir != "" {
		target = outputPath(r.opts.outDir, path)
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(target, []byte(out), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}

// outputPath maps an input path into the -o directory, keeping the
// relative layout when the input sits under the working directory.
func outputPath(outDir, path string) string {
	if rel, err := filepath.Rel(".", path); err == nil && !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel) {
		return filepath.Join(outDir, rel)
	}
	return filepath.Join(outDir, filepath.Base(path))
}

func (r *runner) sendEvent(ev ui.Event) {
	if r.events != nil {
		r.events <- ev
	}
}

func (r *runner) printStats() {
	if !r.opts.showStats {
		return
	}
	snap := r.collector.Snapshot()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return
	}
	fmt.Fprintln(os.Stderr, string(data))
}
