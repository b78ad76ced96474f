// Package types defines the shared data model for plan risk analysis.
package types

import "fmt"

// CriticalityLevel is the ordinal risk classification for a resource change.
type CriticalityLevel string

const (
	CriticalityLow      CriticalityLevel = "low"
	CriticalityMedium   CriticalityLevel = "medium"
	CriticalityHigh     CriticalityLevel = "high"
	CriticalityCritical CriticalityLevel = "critical"
)

// IsValid checks if the criticality level value is valid
func (c CriticalityLevel) IsValid() bool {
	switch c {
	case CriticalityLow, CriticalityMedium, CriticalityHigh, CriticalityCritical:
		return true
	}
	return false
}

// Rank returns the ordinal position of the level: LOW < MEDIUM < HIGH < CRITICAL.
func (c CriticalityLevel) Rank() int {
	switch c {
	case CriticalityLow:
		return 0
	case CriticalityMedium:
		return 1
	case CriticalityHigh:
		return 2
	case CriticalityCritical:
		return 3
	default:
		return -1
	}
}

// Dominates reports whether c is strictly more severe than other.
func (c CriticalityLevel) Dominates(other CriticalityLevel) bool {
	return c.Rank() > other.Rank()
}

func (c CriticalityLevel) String() string {
	return string(c)
}

// Emoji returns the console glyph used for the level in prompts and reports.
func (c CriticalityLevel) Emoji() string {
	switch c {
	case CriticalityCritical:
		return "🚨"
	case CriticalityHigh:
		return "⚠️"
	case CriticalityLow:
		return "✅"
	default:
		return "📋"
	}
}

// DegradedMarker prefixes every placeholder narrative substituted when a
// reasoning call fails. Consumers detect partial failure programmatically by
// checking sections for this prefix instead of diffing report text.
const DegradedMarker = "❌ AI analysis failed"

// Plan actions as they appear in a rendered change set.
const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionReplace = "replace"
	ActionNoOp    = "no-op"
)

// ResourceChange is a single entry from a rendered plan: one resource and the
// action(s) the provisioning tool intends to take on it. Records are built once
// by the extractor and never mutated afterwards.
type ResourceChange struct {
	Address     string           `json:"address" yaml:"address"`
	Type        string           `json:"resource_type" yaml:"resource_type"`
	Actions     []string         `json:"actions" yaml:"actions"`
	Criticality CriticalityLevel `json:"criticality" yaml:"criticality"`
}

// HasAction reports whether the change includes the given action.
func (rc ResourceChange) HasAction(action string) bool {
	for _, a := range rc.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Summary renders the record the way it is embedded into analysis prompts.
func (rc ResourceChange) Summary() string {
	return fmt.Sprintf("%s (%s): %s", rc.Address, rc.Type, joinActions(rc.Actions))
}

func joinActions(actions []string) string {
	if len(actions) == 0 {
		return ""
	}
	out := actions[0]
	for _, a := range actions[1:] {
		out += ", " + a
	}
	return out
}

// BlastRadiusAssessment is the aggregate risk picture for a change set.
// It is built once per run from the extracted records and is read-only after
// construction; no locking is needed because nothing mutates it concurrently.
type BlastRadiusAssessment struct {
	// CriticalChanges is the subset of records classified HIGH or CRITICAL.
	CriticalChanges []ResourceChange `json:"critical_changes" yaml:"critical_changes"`

	// AffectedServices are the service category labels derived from the
	// critical changes (e.g. "EKS", "Database"). Order is deterministic.
	AffectedServices []string `json:"affected_services" yaml:"affected_services"`

	// CriticalityLevel is the dominant level across CriticalChanges, LOW when
	// there are none.
	CriticalityLevel CriticalityLevel `json:"criticality_level" yaml:"criticality_level"`

	// EstimatedDowntime is a band string like "5-15 minutes", empty when no
	// downtime is expected.
	EstimatedDowntime string `json:"estimated_downtime,omitempty" yaml:"estimated_downtime,omitempty"`

	// DownstreamImpacts is an ordered list of narrative impact lines.
	// Duplicates are permitted: two queue deletions produce two lines.
	DownstreamImpacts []string `json:"downstream_impacts" yaml:"downstream_impacts"`
}

// RunMetadata identifies the run being analyzed: the pull request, workspace
// and project the plan belongs to. All fields are plain strings with defaults
// substituted when unset.
type RunMetadata struct {
	RepoOwner   string `json:"repo_owner" yaml:"repo_owner"`
	RepoName    string `json:"repo_name" yaml:"repo_name"`
	PullNum     string `json:"pull_num" yaml:"pull_num"`
	Workspace   string `json:"workspace" yaml:"workspace"`
	ProjectName string `json:"project_name" yaml:"project_name"`
	BaseBranch  string `json:"base_branch" yaml:"base_branch"`
}

// Repo returns the owner/name form used in report headers and prompts.
func (m RunMetadata) Repo() string {
	return m.RepoOwner + "/" + m.RepoName
}
