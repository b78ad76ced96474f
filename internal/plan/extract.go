// Package plan extracts resource change records from a rendered plan.
package plan

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/planrisk/planrisk/internal/risk"
	"github.com/planrisk/planrisk/internal/types"
)

// planDocument mirrors the slice of the plan JSON we care about. Everything
// else in the document is ignored.
type planDocument struct {
	ResourceChanges []struct {
		Address string `json:"address"`
		Type    string `json:"type"`
		Change  struct {
			Actions []string `json:"actions"`
		} `json:"change"`
	} `json:"resource_changes"`
}

// ExtractChanges parses the JSON rendering of a plan into classified resource
// change records. Missing fields default to empty values.
//
// Absent or malformed input yields an empty list, not an error: downstream
// aggregation is well-defined over zero records, and a report with no
// classified resources is still informative.
func ExtractChanges(planJSON string, logger *zap.Logger) []types.ResourceChange {
	if logger == nil {
		logger = zap.NewNop()
	}
	if planJSON == "" {
		return nil
	}

	var doc planDocument
	if err := json.Unmarshal([]byte(planJSON), &doc); err != nil {
		logger.Warn("plan JSON unparseable, continuing with zero records", zap.Error(err))
		return nil
	}

	changes := make([]types.ResourceChange, 0, len(doc.ResourceChanges))
	for _, rc := range doc.ResourceChanges {
		actions := rc.Change.Actions
		if actions == nil {
			actions = []string{}
		}
		changes = append(changes, types.ResourceChange{
			Address:     rc.Address,
			Type:        rc.Type,
			Actions:     actions,
			Criticality: risk.Classify(rc.Type, actions),
		})
	}

	logger.Debug("extracted resource changes", zap.Int("count", len(changes)))
	return changes
}

// CountByLevel tallies records at the given level; prompt builders use the
// critical and high counts for the change summary.
func CountByLevel(changes []types.ResourceChange, level types.CriticalityLevel) int {
	n := 0
	for _, rc := range changes {
		if rc.Criticality == level {
			n++
		}
	}
	return n
}
