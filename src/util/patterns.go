package util

import (
	"path"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"code-atlas/src/config"
)

// ExclusionMatcher matches files, functions and languages against exclusion patterns
type ExclusionMatcher struct {
	filePatterns     []string
	files            map[string]bool
	functionPatterns []*regexp.Regexp
	languages        map[string]bool
}

// NewExclusionMatcher creates a new exclusion matcher from config
func NewExclusionMatcher(cfg config.ExclusionsConfig) *ExclusionMatcher {
	m := &ExclusionMatcher{
		filePatterns: cfg.FilePatterns,
		files:        make(map[string]bool, len(cfg.Files)),
		languages:    make(map[string]bool, len(cfg.Languages)),
	}

	for _, f := range cfg.Files {
		m.files[normalizePath(f)] = true
	}
	for _, lang := range cfg.Languages {
		m.languages[strings.ToLower(lang)] = true
	}

	// Invalid patterns are rejected by config validation; skip any that slip through
	for _, p := range cfg.FunctionPatterns {
		if re, err := regexp.Compile(p); err == nil {
			m.functionPatterns = append(m.functionPatterns, re)
		}
	}

	return m
}

// MatchesFile checks if a file path should be excluded
func (m *ExclusionMatcher) MatchesFile(filePath string) bool {
	p := normalizePath(filePath)
	if m.files[p] {
		return true
	}

	for _, pattern := range m.filePatterns {
		if MatchGlob(pattern, p) {
			return true
		}
	}
	return false
}

// MatchesFunction checks if a function name should be excluded
func (m *ExclusionMatcher) MatchesFunction(funcName string) bool {
	if funcName == "" {
		return false
	}
	for _, re := range m.functionPatterns {
		if re.MatchString(funcName) {
			return true
		}
	}
	return false
}

// MatchesLanguage checks if a whole language is excluded
func (m *ExclusionMatcher) MatchesLanguage(lang string) bool {
	return m.languages[strings.ToLower(lang)]
}

// MatchGlob matches a path against a glob pattern. Patterns starting with
// "**/" also match at the root, so "**/vendor/**" excludes "vendor/x.go".
func MatchGlob(pattern, filePath string) bool {
	p := normalizePath(filePath)
	if matched, err := doublestar.Match(pattern, p); err == nil && matched {
		return true
	}
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		if matched, err := doublestar.Match(rest, p); err == nil && matched {
			return true
		}
	}
	return false
}

func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	if p == "" {
		return p
	}
	return strings.TrimPrefix(path.Clean(p), "/")
}
