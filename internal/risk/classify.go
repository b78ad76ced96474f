// Package risk turns extracted resource changes into a blast radius assessment.
//
// Classification and aggregation are deterministic: the same change set always
// produces the same assessment, with no state carried between runs.
package risk

import (
	"github.com/planrisk/planrisk/internal/types"
)

// criticalResources is the fixed set of resource types with high blast radius:
// cluster orchestration, IAM, network security controls, launch templates,
// secret stores, event routing, queues, and relational databases.
//
// This is static membership data, not behavior. Adding a type here is a code
// change, intentionally: the rule table does not adapt at runtime.
var criticalResources = map[string]struct{}{
	"aws_eks_cluster":                {},
	"aws_eks_node_group":             {},
	"aws_eks_addon":                  {},
	"aws_iam_role":                   {},
	"aws_iam_policy":                 {},
	"aws_iam_role_policy_attachment": {},
	"aws_security_group":             {},
	"aws_security_group_rule":        {},
	"aws_vpc":                        {},
	"aws_subnet":                     {},
	"aws_launch_template":            {},
	"aws_secretsmanager_secret":      {},
	"aws_ssm_parameter":              {},
	"aws_cloudwatch_event_rule":      {},
	"aws_eventbridge_rule":           {},
	"aws_sqs_queue":                  {},
	"aws_sqs_queue_policy":           {},
	"aws_rds_cluster":                {},
	"aws_rds_instance":               {},
	"aws_db_subnet_group":            {},
}

// IsCriticalResource reports whether the resource type is in the fixed
// critical-category set.
func IsCriticalResource(resourceType string) bool {
	_, ok := criticalResources[resourceType]
	return ok
}

// Classify assigns a criticality level to a resource change. It is a pure
// function of (resourceType, actions); records do not influence each other.
//
// Rules, evaluated in order:
//  1. Critical resource type: delete/replace → CRITICAL, update → HIGH,
//     create → MEDIUM.
//  2. Any other type with delete/replace → MEDIUM.
//  3. Everything else → LOW.
func Classify(resourceType string, actions []string) types.CriticalityLevel {
	if IsCriticalResource(resourceType) {
		switch {
		case hasAction(actions, types.ActionDelete) || hasAction(actions, types.ActionReplace):
			return types.CriticalityCritical
		case hasAction(actions, types.ActionUpdate):
			return types.CriticalityHigh
		case hasAction(actions, types.ActionCreate):
			return types.CriticalityMedium
		}
	}

	if hasAction(actions, types.ActionDelete) || hasAction(actions, types.ActionReplace) {
		return types.CriticalityMedium
	}

	return types.CriticalityLow
}

func hasAction(actions []string, action string) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}
