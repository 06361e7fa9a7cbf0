package rules

import (
	"github.com/garagon/mancheck/internal/types"
)

// CheckKind selects which kind of annotation issue a rule reports.
type CheckKind string

const (
	CheckParameters CheckKind = "parameters" // unannotated positional parameters
	CheckReturn     CheckKind = "return"     // missing return annotation
)

// RawExamples contains Python snippets for rule self-testing.
type RawExamples struct {
	TruePositive  []string `yaml:"true_positive"`
	FalsePositive []string `yaml:"false_positive"`
}

// RawRule is the YAML representation of a rule.
type RawRule struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Severity    string      `yaml:"severity"`
	Category    string      `yaml:"category"`
	Check       string      `yaml:"check"`
	Targets     []string    `yaml:"targets"`
	Examples    RawExamples `yaml:"examples"`
}

// CompiledRule is a validated rule ready for reporting.
type CompiledRule struct {
	ID          string
	Name        string
	Description string
	Severity    types.Severity
	Category    string
	Check       CheckKind
	Targets     []string
	Examples    RawExamples
}
