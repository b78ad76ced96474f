// Package report assembles the final analysis payload and renders it for the
// console and for machine consumption.
package report

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/planrisk/planrisk/internal/types"
)

// Section titles, in the fixed order they appear in every report.
const (
	titleBlastRadius     = "=== 🎯 BLAST RADIUS & IMPACT ASSESSMENT ==="
	titleTechnical       = "=== 🔧 TECHNICAL ANALYSIS ==="
	titleRecommendations = "=== 📋 RECOMMENDATIONS & NEXT STEPS ==="
)

// Report is the final analysis payload: the assessment-derived banner plus the
// three pipeline narratives.
type Report struct {
	RunID       string            `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time         `json:"generated_at" yaml:"generated_at"`
	Run         types.RunMetadata `json:"run" yaml:"run"`

	Assessment *types.BlastRadiusAssessment `json:"assessment" yaml:"assessment"`

	ContextAnalysis   string `json:"context_analysis" yaml:"context_analysis"`
	TechnicalAnalysis string `json:"technical_analysis" yaml:"technical_analysis"`
	Recommendations   string `json:"recommendations" yaml:"recommendations"`
}

// New builds a report. The banner is always derived from the assessment, so
// it stays truthful even when every narrative is degraded.
func New(runID string, run types.RunMetadata, assessment *types.BlastRadiusAssessment,
	contextAnalysis, technicalAnalysis, recommendations string) *Report {
	return &Report{
		RunID:             runID,
		GeneratedAt:       time.Now().UTC(),
		Run:               run,
		Assessment:        assessment,
		ContextAnalysis:   contextAnalysis,
		TechnicalAnalysis: technicalAnalysis,
		Recommendations:   recommendations,
	}
}

// Degraded reports whether any narrative section carries the failure marker,
// meaning at least one reasoning call did not complete.
func (r *Report) Degraded() bool {
	for _, section := range []string{r.ContextAnalysis, r.TechnicalAnalysis, r.Recommendations} {
		if strings.HasPrefix(section, types.DegradedMarker) {
			return true
		}
	}
	return false
}

// Banner is the one-line risk summary. Level is uppercased, services are
// comma-joined or "None", downtime is the estimate or "None".
func (r *Report) Banner() string {
	services := "None"
	if len(r.Assessment.AffectedServices) > 0 {
		services = strings.Join(r.Assessment.AffectedServices, ", ")
	}
	downtime := r.Assessment.EstimatedDowntime
	if downtime == "" {
		downtime = "None"
	}
	return fmt.Sprintf("%s **RISK: %s** | 🎯 **SERVICES: %s** | ⏱️ **DOWNTIME: %s**",
		r.Assessment.CriticalityLevel.Emoji(),
		strings.ToUpper(r.Assessment.CriticalityLevel.String()),
		services,
		downtime)
}

// Body is the banner followed by the three titled sections in fixed order.
func (r *Report) Body() string {
	return fmt.Sprintf(`%s

%s
%s

%s
%s

%s
%s
`,
		r.Banner(),
		titleBlastRadius, strings.TrimSpace(r.ContextAnalysis),
		titleTechnical, strings.TrimSpace(r.TechnicalAnalysis),
		titleRecommendations, strings.TrimSpace(r.Recommendations))
}

// Render produces the full console output: run header, timestamp and the
// ANSI-stripped body, framed the way CI comment capture expects.
func (r *Report) Render() string {
	var b strings.Builder
	rule := strings.Repeat("=", 80)

	b.WriteString(rule + "\n")
	b.WriteString("🤖 AI TERRAFORM PLAN ANALYSIS\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Repository: %s\n", r.Run.Repo())
	fmt.Fprintf(&b, "PR: #%s | Workspace: %s | Project: %s\n", r.Run.PullNum, r.Run.Workspace, r.Run.ProjectName)
	fmt.Fprintf(&b, "Run: %s\n", r.RunID)
	fmt.Fprintf(&b, "Timestamp: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	b.WriteString(strings.Repeat("-", 80) + "\n")
	b.WriteString(StripANSI(r.Body()))
	b.WriteString(rule + "\n")

	return b.String()
}

// JSON marshals the report payload.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// YAML marshals the report payload.
func (r *Report) YAML() ([]byte, error) {
	return yaml.Marshal(r)
}

var ansiEscape = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

// StripANSI removes ANSI control sequences so captured output stays clean in
// PR comments and logs.
func StripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}
