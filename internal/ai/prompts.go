package ai

import (
	"fmt"
	"strings"

	"github.com/planrisk/planrisk/internal/plan"
	"github.com/planrisk/planrisk/internal/types"
)

// Per-stage input budgets, in characters.
const (
	contextCarryBudget   = 40000 // stage A output carried into stage B
	planTextBudget       = 15000
	codeDiffBudget       = 8000
	configTextBudget     = 12000
	synthesisCarryBudget = 30000 // stage A and B outputs carried into stage C

	contextTopChanges   = 10 // records listed in the stage A prompt
	technicalTopChanges = 15 // records listed in the stage B prompt
)

// changeList renders up to limit critical/high records as prompt bullet lines.
func changeList(changes []types.ResourceChange, limit int, withLevel bool) string {
	if len(changes) > limit {
		changes = changes[:limit]
	}
	var b strings.Builder
	for i, rc := range changes {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + rc.Summary())
		if withLevel {
			b.WriteString(fmt.Sprintf(" [%s]", rc.Criticality))
		}
	}
	return b.String()
}

func servicesOrNone(services []string) string {
	if len(services) == 0 {
		return "None"
	}
	return strings.Join(services, ", ")
}

func downtimeOrNone(downtime string) string {
	if downtime == "" {
		return "None expected"
	}
	return downtime
}

// buildContextPrompt is the stage A prompt: run identity, the assessment
// summary and the top critical changes, asking for a blast radius narrative.
func buildContextPrompt(pc *PipelineContext) string {
	a := pc.Assessment
	return fmt.Sprintf(`Role: Principal DevOps Engineer analyzing Terraform infrastructure changes.

Context:
- Repository: %s
- PR: #%s
- Workspace: %s
- Project: %s

Change Summary:
- Total resources: %d
- Critical risk: %d
- High risk: %d
- Risk level: %s
- Affected services: %s
- Estimated downtime: %s

Critical Changes:
%s

Provide analysis focusing on:
1. %s **Blast Radius**: What systems/services will be affected?
2. ⚠️ **Risk Assessment**: Why this risk level and what could go wrong?
3. 🔗 **Dependencies**: Infrastructure dependencies and prerequisites
4. 🚨 **Breaking Changes**: Potential service disruptions

Output: Concise operational impact analysis (15-20 lines), use emojis.`,
		pc.Run.Repo(), pc.Run.PullNum, pc.Run.Workspace, pc.Run.ProjectName,
		len(pc.Changes),
		plan.CountByLevel(pc.Changes, types.CriticalityCritical),
		plan.CountByLevel(pc.Changes, types.CriticalityHigh),
		strings.ToUpper(a.CriticalityLevel.String()),
		servicesOrNone(a.AffectedServices),
		downtimeOrNone(a.EstimatedDowntime),
		changeList(a.CriticalChanges, contextTopChanges, false),
		a.CriticalityLevel.Emoji())
}

// buildTechnicalPrompt is the stage B prompt: the stage A narrative plus the
// raw plan, diff and configuration, each under its own budget.
func buildTechnicalPrompt(pc *PipelineContext) string {
	return fmt.Sprintf(`Role: Continue technical analysis building on context.

Previous Context Analysis:
%s

Technical Details:

Critical Resource Changes:
%s

Plan Output:
%s

Code Changes:
%s

Current Config:
%s

Provide technical analysis focusing on:
1. 🔧 **Implementation**: Specific configuration changes and their effects
2. 🛡️ **Security**: IAM, networking, encryption implications
3. 📊 **Performance**: Capacity, scaling, resource impacts
4. 🔄 **Deployment**: Order of operations and timing

Output: Technical deep-dive (15-20 lines), focus on specific risks.`,
		Budget(pc.ContextAnalysis, contextCarryBudget),
		changeList(pc.Assessment.CriticalChanges, technicalTopChanges, true),
		Budget(pc.PlanText, planTextBudget),
		Budget(orNone(pc.CodeDiff), codeDiffBudget),
		Budget(orNone(pc.ConfigText), configTextBudget))
}

// buildSynthesisPrompt is the stage C prompt: both prior narratives plus the
// assessment's level and services, asking for actionable recommendations.
func buildSynthesisPrompt(pc *PipelineContext) string {
	return fmt.Sprintf(`Role: Synthesize findings into actionable recommendations.

Context Analysis Summary:
%s

Technical Analysis Summary:
%s

Risk Level: %s
Affected Services: %s

Provide synthesis focusing on:
1. 📋 **Executive Summary**: Key findings in 2-3 bullets
2. 🎯 **Pre-deployment**: Required actions before applying
3. 🔍 **Monitoring**: What to watch during/after deployment
4. 🚨 **Rollback Strategy**: Recovery plan if things fail

Output: Actionable recommendations (15-20 lines), specific next steps.`,
		Budget(pc.ContextAnalysis, synthesisCarryBudget),
		Budget(pc.TechnicalAnalysis, synthesisCarryBudget),
		strings.ToUpper(pc.Assessment.CriticalityLevel.String()),
		strings.Join(pc.Assessment.AffectedServices, ", "))
}
