// Package reputation implements ICU's content-addressed reputation
// store: a SQLite-backed database of known-good/known-bad file hashes,
// dynamic threat signatures, and a scan log.
package reputation

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/icu-sec/icu/internal/engine"
	"github.com/icu-sec/icu/internal/rules"
	"github.com/icu-sec/icu/internal/safefile"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS signatures (
	sha256 TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	version TEXT NOT NULL DEFAULT '',
	source_url TEXT NOT NULL DEFAULT '',
	risk_level TEXT NOT NULL,
	flagged INTEGER NOT NULL DEFAULT 0,
	first_seen TEXT NOT NULL,
	last_seen TEXT NOT NULL,
	scan_count INTEGER NOT NULL DEFAULT 1,
	community_votes INTEGER NOT NULL DEFAULT 0,
	notes TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS threat_signatures (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL DEFAULT '',
	pattern TEXT NOT NULL,
	category TEXT NOT NULL,
	severity TEXT NOT NULL,
	description TEXT NOT NULL,
	source TEXT NOT NULL DEFAULT 'local',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS scan_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT NOT NULL,
	sha256 TEXT NOT NULL,
	risk_level TEXT NOT NULL,
	deep_scan INTEGER NOT NULL DEFAULT 0,
	findings_json TEXT NOT NULL DEFAULT '[]',
	timestamp TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scan_log_timestamp ON scan_log(timestamp);
CREATE INDEX IF NOT EXISTS idx_scan_log_sha256 ON scan_log(sha256);

-- Reserved for future behavioral-profile tracking; never written by
-- the current scan pipeline.
CREATE TABLE IF NOT EXISTS behavioral_profiles (
	subject TEXT PRIMARY KEY,
	profile_json TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// Store is the SQLite-backed reputation database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens (or creates) the reputation database at dbPath. If the
// file or its parent directory is a symlink, the open is rejected.
func New(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dbPath != ":memory:" {
		parentDir := filepath.Dir(dbPath)
		if err := os.MkdirAll(parentDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating reputation db directory: %w", err)
		}
		if info, err := os.Lstat(parentDir); err == nil && info.Mode()&os.ModeSymlink != 0 {
			return nil, fmt.Errorf("reputation db parent directory is a symlink: %s", parentDir)
		}
		if _, err := os.Stat(dbPath); err == nil {
			if err := safefile.RejectSymlink(dbPath); err != nil {
				return nil, fmt.Errorf("reputation db: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening reputation db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("setting busy_timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.seedIfEmpty(); err != nil {
		logger.Warn("failed to seed default threat signatures", "error", err)
	}
	return s, nil
}

// DefaultPath returns ~/.config/icu/reputation.db (or the platform
// equivalent via os.UserConfigDir).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "icu", "reputation.db"), nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) seedIfEmpty() error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM threat_signatures").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seeds, err := rules.SeedSignatures()
	if err != nil {
		return err
	}
	for _, sig := range seeds {
		if err := s.AddThreatSignature(sig); err != nil {
			return err
		}
	}
	return nil
}

// IsKnownGood reports whether hash has a recorded clean risk level and
// is not flagged.
func (s *Store) IsKnownGood(hash string) (bool, error) {
	var risk string
	var flagged int
	err := s.db.QueryRow("SELECT risk_level, flagged FROM signatures WHERE sha256 = ?", hash).Scan(&risk, &flagged)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return flagged == 0 && rules.RiskLevel(risk) == rules.RiskClean, nil
}

// IsKnownBad reports whether hash is explicitly flagged, along with a
// description suitable for a DB-001 whole-file finding.
func (s *Store) IsKnownBad(hash string) (bool, string, error) {
	var risk string
	var flagged int
	err := s.db.QueryRow("SELECT risk_level, flagged FROM signatures WHERE sha256 = ?", hash).Scan(&risk, &flagged)
	if err == sql.ErrNoRows {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	if flagged == 0 {
		return false, "", nil
	}
	return true, fmt.Sprintf("file hash matches a previously flagged signature (risk=%s)", risk), nil
}

// RecordSignature upserts the reputation record for hash, bumping
// scan_count and last_seen on conflict and overwriting risk_level,
// flagged, and notes with the values from this scan. flagged is
// derived from risk: high or critical risk levels flag the hash.
func (s *Store) RecordSignature(hash string, risk rules.RiskLevel, notes string) error {
	flagged := 0
	if risk == rules.RiskHigh || risk == rules.RiskCritical {
		flagged = 1
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`
		INSERT INTO signatures (sha256, risk_level, flagged, first_seen, last_seen, scan_count, notes)
		VALUES (?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(sha256) DO UPDATE SET
			risk_level = excluded.risk_level,
			flagged = excluded.flagged,
			last_seen = excluded.last_seen,
			scan_count = scan_count + 1,
			notes = excluded.notes
	`, hash, string(risk), flagged, now, now, notes)
	return err
}

// LogScan appends an entry to the scan log. Findings are persisted
// with credential matches redacted; the caller's in-memory entry is
// untouched.
func (s *Store) LogScan(entry engine.ScanLogEntry) error {
	now := time.Now().UTC().Format(time.RFC3339)
	deep := 0
	if entry.DeepScan {
		deep = 1
	}
	fj, err := findingsJSON(entry.Findings)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"INSERT INTO scan_log (path, sha256, risk_level, deep_scan, findings_json, timestamp) VALUES (?, ?, ?, ?, ?, ?)",
		entry.Path, entry.SHA256, string(entry.RiskLevel), deep, fj, now,
	)
	return err
}

// GetScanHistory returns up to limit scan_log rows for hash, newest
// first. Findings in the returned entries are the redacted,
// durably-stored form, not the original in-memory findings.
func (s *Store) GetScanHistory(hash string, limit int) ([]engine.ScanLogEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		"SELECT path, sha256, risk_level, deep_scan, findings_json FROM scan_log WHERE sha256 = ? ORDER BY timestamp DESC LIMIT ?",
		hash, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.ScanLogEntry
	for rows.Next() {
		var e engine.ScanLogEntry
		var risk, fj string
		var deep int
		if err := rows.Scan(&e.Path, &e.SHA256, &risk, &deep, &fj); err != nil {
			return nil, err
		}
		e.RiskLevel = rules.RiskLevel(risk)
		e.DeepScan = deep == 1
		_ = json.Unmarshal([]byte(fj), &e.Findings)
		out = append(out, e)
	}
	return out, rows.Err()
}

// AddThreatSignature inserts a dynamic threat signature.
func (s *Store) AddThreatSignature(sig rules.ThreatSignature) error {
	source := sig.Source
	if source == "" {
		source = "local"
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		"INSERT INTO threat_signatures (name, pattern, category, severity, description, source, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		sig.Name, sig.Pattern, string(sig.Category), string(sig.Severity), sig.Description, source, now,
	)
	return err
}

// RemoveThreatSignature deletes a dynamic threat signature by id.
func (s *Store) RemoveThreatSignature(id int64) error {
	_, err := s.db.Exec("DELETE FROM threat_signatures WHERE id = ?", id)
	return err
}

// CountThreatSignatures returns the number of dynamic signatures
// currently stored.
func (s *Store) CountThreatSignatures() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM threat_signatures").Scan(&count)
	return count, err
}

// DynamicSignatures loads every stored threat signature in insertion
// (id) order, oldest first.
func (s *Store) DynamicSignatures() ([]rules.ThreatSignature, error) {
	rows, err := s.db.Query("SELECT id, name, pattern, category, severity, description, source FROM threat_signatures ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rules.ThreatSignature
	for rows.Next() {
		var sig rules.ThreatSignature
		var category, severity string
		if err := rows.Scan(&sig.ID, &sig.Name, &sig.Pattern, &category, &severity, &sig.Description, &sig.Source); err != nil {
			return nil, err
		}
		sig.Category = rules.Category(category)
		sig.Severity = rules.Severity(severity)
		out = append(out, sig)
	}
	return out, rows.Err()
}

// findingsJSON renders findings for durable storage with any
// credential-pattern matches redacted — the in-memory Finding keeps
// the raw match (callers/tests depend on it), but nothing we persist
// to disk should carry a live secret.
func findingsJSON(findings []rules.Finding) (string, error) {
	redacted := make([]rules.Finding, len(findings))
	for i, f := range findings {
		f.MatchedText = redactCredential(f.MatchedText)
		redacted[i] = f
	}
	b, err := json.Marshal(redacted)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
