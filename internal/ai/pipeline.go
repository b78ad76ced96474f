package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/planrisk/planrisk/internal/types"
)

// StageMaxTokens is the generation ceiling for each pipeline stage.
const StageMaxTokens = 1500

// Inputs carries everything the pipeline needs for one run. All fields are
// read-only during execution.
type Inputs struct {
	Run        types.RunMetadata
	Changes    []types.ResourceChange
	Assessment *types.BlastRadiusAssessment
	PlanText   string // rendered plan, required
	CodeDiff   string // unified diff, optional
	ConfigText string // labeled configuration bundle, optional
}

// PipelineContext threads the inputs and each stage's narrative forward.
// Every stage reads prior outputs read-only and writes exactly one field.
type PipelineContext struct {
	Inputs

	ContextAnalysis   string // stage A: blast radius and risk rationale
	TechnicalAnalysis string // stage B: implementation, security, deployment
	Recommendations   string // stage C: synthesis and next steps
}

// stageDescriptor names one pipeline stage: how to build its prompt and where
// its narrative lands. The pipeline is a fixed ordered list of these, not a
// workflow engine.
type stageDescriptor struct {
	name  string
	build func(*PipelineContext) string
	store func(*PipelineContext, string)
}

var stages = []stageDescriptor{
	{
		name:  "context-analysis",
		build: buildContextPrompt,
		store: func(pc *PipelineContext, s string) { pc.ContextAnalysis = s },
	},
	{
		name:  "technical-analysis",
		build: buildTechnicalPrompt,
		store: func(pc *PipelineContext, s string) { pc.TechnicalAnalysis = s },
	},
	{
		name:  "synthesis",
		build: buildSynthesisPrompt,
		store: func(pc *PipelineContext, s string) { pc.Recommendations = s },
	},
}

// Pipeline runs the three dependent analysis stages in strict order. Each
// stage's prompt embeds the previous stage's finished text, so no stage may
// start before its dependency completes; there is nothing to parallelize.
type Pipeline struct {
	client ReasoningClient
	logger *zap.Logger
}

// NewPipeline creates a pipeline over the given reasoning client.
func NewPipeline(client ReasoningClient, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{client: client, logger: logger}
}

// Run executes stages A→B→C and returns the populated context.
//
// A failed reasoning call degrades that one stage to a marked placeholder and
// the remaining stages still execute with the placeholder as their input, so
// a transient outage costs one report section, not the whole report. Run only
// returns an error when the surrounding context is canceled outright.
func (p *Pipeline) Run(ctx context.Context, in Inputs) (*PipelineContext, error) {
	if in.Assessment == nil {
		return nil, fmt.Errorf("assessment is required")
	}

	pc := &PipelineContext{Inputs: in}

	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline canceled before %s: %w", st.name, err)
		}

		text, err := p.client.Generate(ctx, st.build(pc), st.name, StageMaxTokens)
		if err != nil {
			p.logger.Warn("stage degraded",
				zap.String("stage", st.name), zap.Error(err))
			text = fmt.Sprintf("%s: %v", types.DegradedMarker, err)
		}
		st.store(pc, strings.TrimSpace(text))
	}

	return pc, nil
}
