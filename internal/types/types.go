// Package types defines shared data structures (Finding, Severity, ScanResult)
// used across scanner, engine, cache and output packages to prevent import cycles.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Severity represents the severity level of a finding.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityLow:
		return "LOW"
	case SeverityInfo:
		return "INFO"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity converts a string to a Severity level.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CRITICAL":
		return SeverityCritical, nil
	case "HIGH":
		return SeverityHigh, nil
	case "MEDIUM":
		return SeverityMedium, nil
	case "LOW":
		return SeverityLow, nil
	case "INFO":
		return SeverityInfo, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity: %q", s)
	}
}

// Finding is one reported diagnostic. A function missing both parameter
// and return annotations produces two findings, one per rule.
type Finding struct {
	RuleID      string   `json:"rule_id"`
	RuleName    string   `json:"rule_name"`
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
	FilePath    string   `json:"file_path"`
	Line        int      `json:"line"`
	Column      int      `json:"column"`
	Function    string   `json:"function"`
	Message     string   `json:"message"`
	Issues      []string `json:"issues,omitempty"`
	Snippet     string   `json:"snippet,omitempty"`
	Analyzer    string   `json:"analyzer"`
}

// FileError records a file that could not be analyzed.
type FileError struct {
	FilePath string `json:"file_path"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Message  string `json:"message"`
}

// ScanResult holds the complete results of a scan.
type ScanResult struct {
	Findings     []Finding     `json:"findings"`
	Errors       []FileError   `json:"errors,omitempty"`
	FilesScanned int           `json:"files_scanned"`
	RulesLoaded  int           `json:"rules_loaded"`
	CacheHits    int           `json:"cache_hits,omitempty"`
	Duration     time.Duration `json:"-"`
	Target       string        `json:"-"`
}

// MarshalJSON implements custom JSON marshaling so Duration serializes as milliseconds.
func (r ScanResult) MarshalJSON() ([]byte, error) {
	type Alias ScanResult
	return json.Marshal(struct {
		Alias
		DurationMS int64 `json:"duration_ms"`
	}{
		Alias:      Alias(r),
		DurationMS: r.Duration.Milliseconds(),
	})
}

// HasFindingsAtOrAbove reports whether any finding reaches the threshold.
func (r *ScanResult) HasFindingsAtOrAbove(threshold Severity) bool {
	for _, f := range r.Findings {
		if f.Severity >= threshold {
			return true
		}
	}
	return false
}
