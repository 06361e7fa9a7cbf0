package output

import (
	"encoding/json"
	"io"

	"github.com/garagon/mancheck/internal/scanner"
)

// ToolVersion is the mancheck version reported in SARIF and Markdown output.
var ToolVersion = "dev"

// SARIFFormatter outputs findings in SARIF 2.1.0 format for GitHub Code Scanning.
type SARIFFormatter struct{}

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations"`
	Results     []sarifResult     `json:"results"`
	Properties  map[string]any    `json:"properties,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	ShortDescription sarifMessage        `json:"shortDescription"`
	FullDescription  *sarifMessage       `json:"fullDescription,omitempty"`
	DefaultConfig    sarifDefaultConfig  `json:"defaultConfiguration"`
	Properties       sarifRuleProperties `json:"properties"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifRuleProperties struct {
	Tags []string `json:"tags,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifInvocation struct {
	ExecutionSuccessful bool                `json:"executionSuccessful"`
	Notifications       []sarifNotification `json:"toolExecutionNotifications,omitempty"`
}

type sarifNotification struct {
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifResult struct {
	RuleID     string          `json:"ruleId"`
	RuleIndex  int             `json:"ruleIndex"`
	Level      string          `json:"level"`
	Message    sarifMessage    `json:"message"`
	Locations  []sarifLocation `json:"locations"`
	Properties map[string]any  `json:"properties,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

func location(path string, line, col int) sarifLocation {
	return sarifLocation{PhysicalLocation: sarifPhysicalLocation{
		ArtifactLocation: sarifArtifactLocation{URI: path},
		// SARIF columns are 1-based
		Region: sarifRegion{StartLine: max(line, 1), StartColumn: max(col, 0) + 1},
	}}
}

func (f *SARIFFormatter) Format(w io.Writer, result *scanner.ScanResult) error {
	ruleIndex := map[string]int{}
	rules := []sarifRule{}
	for _, finding := range result.Findings {
		if _, ok := ruleIndex[finding.RuleID]; ok {
			continue
		}
		ruleIndex[finding.RuleID] = len(rules)
		r := sarifRule{
			ID:               finding.RuleID,
			Name:             finding.RuleName,
			ShortDescription: sarifMessage{Text: finding.RuleName},
			DefaultConfig:    sarifDefaultConfig{Level: severityToLevel(finding.Severity)},
			Properties:       sarifRuleProperties{Tags: []string{finding.Category}},
		}
		if finding.Description != "" {
			r.FullDescription = &sarifMessage{Text: finding.Description}
		}
		rules = append(rules, r)
	}

	results := []sarifResult{}
	for _, finding := range result.Findings {
		results = append(results, sarifResult{
			RuleID:     finding.RuleID,
			RuleIndex:  ruleIndex[finding.RuleID],
			Level:      severityToLevel(finding.Severity),
			Message:    sarifMessage{Text: finding.Message},
			Locations:  []sarifLocation{location(finding.FilePath, finding.Line, finding.Column)},
			Properties: map[string]any{"function": finding.Function},
		})
	}

	inv := sarifInvocation{ExecutionSuccessful: len(result.Errors) == 0}
	for _, e := range result.Errors {
		inv.Notifications = append(inv.Notifications, sarifNotification{
			Level:     "error",
			Message:   sarifMessage{Text: e.Message},
			Locations: []sarifLocation{location(e.FilePath, e.Line, e.Column)},
		})
	}

	log := sarifLog{
		Schema:  "https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           "mancheck",
						Version:        ToolVersion,
						InformationURI: "https://github.com/garagon/mancheck",
						Rules:          rules,
					},
				},
				Invocations: []sarifInvocation{inv},
				Results:     results,
				Properties:  map[string]any{"duration_ms": result.Duration.Milliseconds()},
			},
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

func severityToLevel(sev scanner.Severity) string {
	switch sev {
	case scanner.SeverityCritical, scanner.SeverityHigh:
		return "error"
	case scanner.SeverityMedium:
		return "warning"
	case scanner.SeverityLow:
		return "note"
	default:
		return "none"
	}
}
