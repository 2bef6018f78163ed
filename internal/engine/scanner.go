// Package engine implements the tiered scan orchestrator: fast-path
// rejection, hash-cache and reputation lookups, the heuristic pass,
// and the conditional deep pass (entropy + deobfuscation + recursive
// re-scan).
package engine

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/icu-sec/icu/internal/obs"
	"github.com/icu-sec/icu/internal/rules"
)

// Depth controls whether the deep pass is forced, skipped, or decided
// automatically from the fast-pass findings.
type Depth string

const (
	DepthAuto Depth = "auto"
	DepthFast Depth = "fast"
	DepthDeep Depth = "deep"
)

// MaxFileSize is the default size cap (in bytes) above which a file is
// skipped rather than read into memory.
const MaxFileSize = 1 << 20 // 1 MiB

var skipExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".ico": true, ".pdf": true, ".zip": true, ".tar": true, ".gz": true,
	".mp3": true, ".mp4": true, ".mov": true, ".avi": true, ".woff": true,
	".woff2": true, ".ttf": true, ".eot": true, ".so": true, ".dylib": true,
	".dll": true, ".exe": true, ".bin": true, ".wasm": true,
}

var skipDirNames = map[string]bool{
	"__pycache__": true, ".git": true, "node_modules": true,
	".venv": true, ".tox": true,
}

// ReputationStore is the subset of internal/reputation.Store the
// orchestrator depends on. Defined here, implemented there, to keep
// internal/engine free of a direct dependency on the SQLite driver.
type ReputationStore interface {
	IsKnownGood(hash string) (bool, error)
	IsKnownBad(hash string) (bool, string, error)
	DynamicSignatures() ([]rules.ThreatSignature, error)
	RecordSignature(hash string, risk rules.RiskLevel, notes string) error
	LogScan(entry ScanLogEntry) error
}

// ScanLogEntry is appended to the reputation store's scan_log table
// after every scan, best-effort.
type ScanLogEntry struct {
	Path      string
	SHA256    string
	RiskLevel rules.RiskLevel
	DeepScan  bool
	Findings  []rules.Finding
}

// Scanner is the tiered orchestrator.
type Scanner struct {
	logger        *slog.Logger
	compiler      *rules.Compiler
	cache         *rules.HashCache
	store         ReputationStore
	entropyThresh float64
	maxFileSize   int64
	metrics       *obs.Metrics
	ruleSet       *rules.RuleSet
}

// Option configures a Scanner at construction time.
type Option func(*Scanner)

// WithReputationStore wires a reputation store into the scanner. Nil
// disables reputation lookups and recording entirely.
func WithReputationStore(store ReputationStore) Option {
	return func(s *Scanner) { s.store = store }
}

// WithMaxFileSize overrides MaxFileSize.
func WithMaxFileSize(n int64) Option {
	return func(s *Scanner) { s.maxFileSize = n }
}

// WithEntropyThreshold overrides rules.DefaultEntropyThreshold.
func WithEntropyThreshold(t float64) Option {
	return func(s *Scanner) { s.entropyThresh = t }
}

// WithMetrics wires Prometheus counters/histograms into the scanner.
func WithMetrics(m *obs.Metrics) Option {
	return func(s *Scanner) { s.metrics = m }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// NewScanner builds a Scanner. If store is non-nil its dynamic
// signatures are merged into the compiled rule set immediately; a
// failure to load them is logged and the scanner falls back to the
// static catalog alone.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		logger:        slog.Default(),
		compiler:      rules.NewCompiler(slog.Default()),
		cache:         rules.NewHashCache(rules.DefaultCacheSize),
		entropyThresh: rules.DefaultEntropyThreshold,
		maxFileSize:   MaxFileSize,
	}
	for _, o := range opts {
		o(s)
	}

	ruleSet := s.compiler.Static()
	if s.store != nil {
		if dyn, err := s.store.DynamicSignatures(); err != nil {
			s.logger.Warn("failed to load dynamic signatures, using static catalog only", "error", err)
		} else {
			ruleSet = s.compiler.Merge(dyn)
		}
	}
	s.ruleSet = ruleSet
	return s
}

// ShouldSkip reports whether path should be skipped by extension or by
// containing a skip-listed directory component.
func ShouldSkip(path string) (bool, string) {
	ext := filepath.Ext(path)
	if skipExtensions[ext] {
		return true, "skipped extension " + ext
	}
	for _, part := range pathParts(path) {
		if skipDirNames[part] {
			return true, "skipped directory " + part
		}
	}
	return false, ""
}

// pathParts splits a path into its individual components.
func pathParts(path string) []string {
	clean := filepath.ToSlash(filepath.Clean(path))
	var parts []string
	for _, p := range splitAll(clean, '/') {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func splitAll(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// ScanFile runs the tiered pipeline against a single file.
func (s *Scanner) ScanFile(ctx context.Context, path string, depth Depth) (result rules.ScanResult, err error) {
	ctx, span := obs.StartSpan(ctx, "engine.ScanFile")
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		result.ScanTimeMs = elapsed.Milliseconds()
		if s.metrics != nil {
			s.metrics.ObserveDuration(elapsed.Seconds())
		}
		span.End()
	}()

	info, err := os.Lstat(path)
	if err != nil {
		return rules.ScanResult{Path: path, Skipped: true, SkipRea: err.Error()}, nil
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return rules.ScanResult{Path: path, Skipped: true, SkipRea: "symlink"}, nil
	}
	if !info.Mode().IsRegular() {
		return rules.ScanResult{Path: path, Skipped: true, SkipRea: "not a regular file"}, nil
	}
	if skip, reason := ShouldSkip(path); skip {
		return rules.ScanResult{Path: path, Skipped: true, SkipRea: reason}, nil
	}
	if info.Size() > s.maxFileSize {
		return rules.ScanResult{Path: path, Skipped: true, SkipRea: "exceeds max file size"}, nil
	}

	hash, err := HashFile(path)
	if err != nil {
		return rules.ScanResult{Path: path, Skipped: true, SkipRea: "read error: " + err.Error()}, nil
	}

	if cached, ok := s.cache.Get(hash); ok {
		if s.metrics != nil {
			s.metrics.CacheHit()
		}
		cached.Path = path
		cached.Cached = true
		return cached, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMiss()
	}

	if s.store != nil {
		if good, err := s.store.IsKnownGood(hash); err == nil && good {
			result := rules.ScanResult{Path: path, SHA256: hash, RiskLevel: rules.RiskClean}
			s.cache.Put(hash, result)
			return result, nil
		}
		if bad, desc, err := s.store.IsKnownBad(hash); err == nil && bad {
			finding := rules.WholeFileFinding("DB-001", rules.CategoryDataExfiltration, rules.SeverityCritical, hash, desc)
			result := rules.ScanResult{
				Path:      path,
				SHA256:    hash,
				Findings:  []rules.Finding{finding},
				RiskLevel: rules.RiskCritical,
			}
			s.cache.Put(hash, result)
			s.recordBestEffort(path, hash, result)
			return result, nil
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return rules.ScanResult{Path: path, Skipped: true, SkipRea: "read error: " + err.Error()}, nil
	}

	result = s.scanContent(ctx, path, hash, string(content), depth)
	s.cache.Put(hash, result)
	s.recordBestEffort(path, hash, result)
	if s.metrics != nil {
		s.metrics.ObserveScan(result.RiskLevel)
	}
	return result, nil
}

func (s *Scanner) scanContent(ctx context.Context, path, hash, content string, depth Depth) rules.ScanResult {
	_, heuristicSpan := obs.StartSpan(ctx, "engine.heuristic")
	scanner := rules.NewScanner(s.ruleSet)
	findings := scanner.Scan(content)
	heuristicSpan.End()

	deep := depth == DepthDeep
	if depth == DepthAuto {
		deep = s.shouldDeepScan(findings)
	}

	if deep && depth != DepthFast {
		_, deepSpan := obs.StartSpan(ctx, "engine.deep")
		findings = append(findings, rules.Entropy(content, s.entropyThresh)...)
		findings = append(findings, rules.ScanDeobfuscation(content, scanner)...)
		deepSpan.End()
	}

	return rules.ScanResult{
		Path:      path,
		SHA256:    hash,
		Findings:  findings,
		RiskLevel: rules.AggregateRiskLevel(findings),
		DeepScan:  deep,
	}
}

// shouldDeepScan decides whether the fast-pass findings warrant the
// more expensive entropy/deobfuscation pass: any obfuscation-category
// hit, or any danger-or-above severity hit.
func (s *Scanner) shouldDeepScan(findings []rules.Finding) bool {
	for _, f := range findings {
		if f.Category == rules.CategoryObfuscation {
			return true
		}
		if !f.Severity.Less(rules.SeverityDanger) {
			return true
		}
	}
	return false
}

func (s *Scanner) recordBestEffort(path, hash string, result rules.ScanResult) {
	if s.store == nil {
		return
	}
	if err := s.store.RecordSignature(hash, result.RiskLevel, ""); err != nil {
		s.logger.Warn("failed to record signature", "path", path, "error", err)
	}
	entry := ScanLogEntry{Path: path, SHA256: hash, RiskLevel: result.RiskLevel, DeepScan: result.DeepScan, Findings: result.Findings}
	if err := s.store.LogScan(entry); err != nil {
		s.logger.Warn("failed to append scan log", "path", path, "error", err)
	}
}

// ScanDirectory walks root in lexicographic order and scans every
// non-skipped file with a bounded worker pool of min(workers,
// GOMAXPROCS) goroutines (GOMAXPROCS when workers <= 0), returning
// results in traversal order regardless of completion order.
func (s *Scanner) ScanDirectory(ctx context.Context, root string, depth Depth, workers int) ([]rules.ScanResult, error) {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDirNames[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	if n := runtime.GOMAXPROCS(0); workers <= 0 || workers > n {
		workers = n
	}
	results := make([]rules.ScanResult, len(paths))
	jobs := make(chan int)
	done := make(chan struct{})

	for w := 0; w < workers; w++ {
		go func() {
			for idx := range jobs {
				r, _ := s.ScanFile(ctx, paths[idx], depth)
				results[idx] = r
			}
			done <- struct{}{}
		}()
	}

	go func() {
		for i := range paths {
			jobs <- i
		}
		close(jobs)
	}()

	for w := 0; w < workers; w++ {
		<-done
	}
	return results, nil
}
