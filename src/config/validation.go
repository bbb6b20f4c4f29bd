package config

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
)

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Concurrency.Workers < 1 {
		errs = append(errs, fmt.Errorf("concurrency.workers must be positive, got %d", c.Concurrency.Workers))
	}
	if c.Concurrency.FileTimeout <= 0 {
		errs = append(errs, fmt.Errorf("concurrency.file_timeout must be positive, got %v", c.Concurrency.FileTimeout))
	}
	if c.Limits.MaxFileBytes <= 0 || c.Limits.MaxArchiveBytes <= 0 || c.Limits.MaxArchiveEntries <= 0 {
		errs = append(errs, errors.New("limits must be positive"))
	}
	if c.Detectors.Complexity.Threshold < 1 {
		errs = append(errs, fmt.Errorf("detectors.complexity.threshold must be at least 1, got %d", c.Detectors.Complexity.Threshold))
	}
	if c.Detectors.Duplication.MinLines < 2 {
		errs = append(errs, fmt.Errorf("detectors.duplication.min_lines must be at least 2, got %d", c.Detectors.Duplication.MinLines))
	}

	switch c.Refactor.Intent {
	case IntentMaintainability, IntentPerformance, IntentRefactoring:
	default:
		errs = append(errs, fmt.Errorf("refactor.intent %q is not one of %s, %s, %s",
			c.Refactor.Intent, IntentMaintainability, IntentPerformance, IntentRefactoring))
	}

	if !validSeverity(c.Severity.MinSeverity) {
		errs = append(errs, fmt.Errorf("severity.min_severity %q is not low, medium or high", c.Severity.MinSeverity))
	}
	for rule, sev := range c.Severity.Overrides {
		if !validSeverity(sev) {
			errs = append(errs, fmt.Errorf("severity.overrides[%s] %q is not low, medium or high", rule, sev))
		}
	}

	for _, p := range c.Exclusions.FilePatterns {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, fmt.Errorf("exclusions.file_patterns: invalid glob %q", p))
		}
	}
	for _, p := range c.Exclusions.FunctionPatterns {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("exclusions.function_patterns: %w", err))
		}
	}

	return errors.Join(errs...)
}

func validSeverity(s string) bool {
	switch s {
	case "low", "medium", "high":
		return true
	}
	return false
}
