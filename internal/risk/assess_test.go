package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planrisk/planrisk/internal/types"
)

func change(address, resourceType string, actions ...string) types.ResourceChange {
	return types.ResourceChange{
		Address:     address,
		Type:        resourceType,
		Actions:     actions,
		Criticality: Classify(resourceType, actions),
	}
}

func TestAssessEmptyChangeSet(t *testing.T) {
	a := Assess(nil)
	require.NotNil(t, a)

	assert.Equal(t, types.CriticalityLow, a.CriticalityLevel)
	assert.Empty(t, a.CriticalChanges)
	assert.Empty(t, a.AffectedServices)
	assert.Empty(t, a.DownstreamImpacts)
	assert.Empty(t, a.EstimatedDowntime)
}

func TestAssessSingleRDSDelete(t *testing.T) {
	a := Assess([]types.ResourceChange{
		change("aws_rds_instance.main", "aws_rds_instance", "delete"),
	})

	assert.Equal(t, types.CriticalityCritical, a.CriticalityLevel)
	assert.Equal(t, []string{"Database"}, a.AffectedServices)
	assert.Equal(t, DowntimeRDS, a.EstimatedDowntime)
	assert.Equal(t, []string{ImpactDatabase}, a.DownstreamImpacts)
	require.Len(t, a.CriticalChanges, 1)
	assert.Equal(t, "aws_rds_instance.main", a.CriticalChanges[0].Address)
}

// When both database and cluster resources go critical, the database downtime
// band wins because it is checked first.
func TestAssessDowntimeTieBreakRDSBeatsEKS(t *testing.T) {
	a := Assess([]types.ResourceChange{
		change("aws_eks_cluster.main", "aws_eks_cluster", "replace"),
		change("aws_rds_instance.main", "aws_rds_instance", "delete"),
	})

	assert.Equal(t, types.CriticalityCritical, a.CriticalityLevel)
	assert.Equal(t, DowntimeRDS, a.EstimatedDowntime)
	assert.ElementsMatch(t, []string{"EKS", "Database"}, a.AffectedServices)
}

func TestAssessEKSDowntimeWithoutRDS(t *testing.T) {
	a := Assess([]types.ResourceChange{
		change("aws_eks_node_group.workers", "aws_eks_node_group", "replace"),
	})

	assert.Equal(t, DowntimeEKS, a.EstimatedDowntime)
	assert.Equal(t, []string{ImpactEKSDisruption}, a.DownstreamImpacts)
}

// HIGH-only change sets never get a downtime estimate, even for rds types.
func TestAssessNoDowntimeBelowCritical(t *testing.T) {
	a := Assess([]types.ResourceChange{
		change("aws_rds_instance.main", "aws_rds_instance", "update"),
	})

	assert.Equal(t, types.CriticalityHigh, a.CriticalityLevel)
	assert.Empty(t, a.EstimatedDowntime)
	assert.Equal(t, []string{"Database"}, a.AffectedServices)
	assert.Empty(t, a.DownstreamImpacts)
}

// CRITICAL must not be downgraded by a later HIGH record.
func TestAssessCriticalNeverDowngraded(t *testing.T) {
	a := Assess([]types.ResourceChange{
		change("aws_sqs_queue.jobs", "aws_sqs_queue", "delete"),
		change("aws_iam_role.app", "aws_iam_role", "update"),
	})

	assert.Equal(t, types.CriticalityCritical, a.CriticalityLevel)
	assert.Equal(t, []string{"Messaging", "IAM"}, a.AffectedServices)
	assert.Equal(t, []string{ImpactMessaging}, a.DownstreamImpacts)
}

// Impact lines are appended per record without deduplication: deleting two
// queues reports the data-loss line twice.
func TestAssessImpactsNotDeduplicated(t *testing.T) {
	a := Assess([]types.ResourceChange{
		change("aws_sqs_queue.jobs", "aws_sqs_queue", "delete"),
		change("aws_sqs_queue.events", "aws_sqs_queue", "delete"),
	})

	assert.Equal(t, []string{ImpactMessaging, ImpactMessaging}, a.DownstreamImpacts)
	assert.Equal(t, []string{"Messaging"}, a.AffectedServices)
}

// Service attribution is a substring test, not type equality. A resource type
// that merely contains a marker is attributed to that service. This documents
// the known over-matching behavior; tighten only with a migration plan for
// downstream consumers of the services list.
func TestAssessServiceMarkerSubstringOverMatch(t *testing.T) {
	// Not a real security group resource, but the type contains the marker and
	// delete/replace makes it MEDIUM... so force it through as HIGH via a
	// critical-table type that contains "security_group".
	a := Assess([]types.ResourceChange{
		change("aws_security_group_rule.ingress", "aws_security_group_rule", "update"),
	})

	assert.Equal(t, []string{"Networking"}, a.AffectedServices)

	// A hand-built HIGH record with a coincidental marker substring is still
	// attributed to IAM.
	coincidental := types.ResourceChange{
		Address:     "custom.thing",
		Type:        "vendor_iam_adjacent_widget",
		Actions:     []string{"update"},
		Criticality: types.CriticalityHigh,
	}
	a = Assess([]types.ResourceChange{coincidental})
	assert.Equal(t, []string{"IAM"}, a.AffectedServices)
}

// Records below HIGH contribute nothing, whatever their type.
func TestAssessIgnoresMediumAndLow(t *testing.T) {
	a := Assess([]types.ResourceChange{
		change("aws_sqs_queue.new", "aws_sqs_queue", "create"),      // MEDIUM
		change("aws_instance.web", "aws_instance", "create"),        // LOW
		change("aws_s3_bucket.logs", "aws_s3_bucket", "delete"),     // MEDIUM
	})

	assert.Equal(t, types.CriticalityLow, a.CriticalityLevel)
	assert.Empty(t, a.CriticalChanges)
	assert.Empty(t, a.AffectedServices)
	assert.Empty(t, a.DownstreamImpacts)
}

// First matching marker wins per record: an eks type never also counts as iam.
func TestAssessFirstMarkerWins(t *testing.T) {
	rec := types.ResourceChange{
		Address:     "odd.resource",
		Type:        "aws_eks_iam_binding",
		Actions:     []string{"delete"},
		Criticality: types.CriticalityCritical,
	}
	a := Assess([]types.ResourceChange{rec})

	assert.Equal(t, []string{"EKS"}, a.AffectedServices)
	assert.Equal(t, []string{ImpactEKSDisruption}, a.DownstreamImpacts)
}
