package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFile is a parsed .icuignore: gitignore-style glob patterns,
// blank lines and "#"-comments dropped.
type IgnoreFile struct {
	Patterns []string
}

// LoadIgnoreFile reads .icuignore from dir, if present. A missing file
// is not an error: it returns an empty IgnoreFile.
func LoadIgnoreFile(dir string) (*IgnoreFile, error) {
	path := filepath.Join(dir, ".icuignore")
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return &IgnoreFile{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &IgnoreFile{Patterns: patterns}, nil
}

// Matches reports whether relPath matches any pattern in the ignore
// file. Each pattern is tried with filepath.Match against relPath and
// against its base name, so "*.log" matches "a/b/debug.log"; "*" does
// not cross directory separators and "**" has no special meaning.
func (f *IgnoreFile) Matches(relPath string) bool {
	if f == nil {
		return false
	}
	for _, pat := range f.Patterns {
		if ok, _ := filepath.Match(pat, relPath); ok {
			return true
		}
		if ok, _ := filepath.Match(pat, filepath.Base(relPath)); ok {
			return true
		}
	}
	return false
}
