package risk

import (
	"strings"

	"github.com/planrisk/planrisk/internal/types"
)

// Downstream impact narratives. These exact strings surface in reports and are
// matched by golden-output tests; do not reword casually.
const (
	ImpactEKSDisruption  = "EKS workloads may experience disruption"
	ImpactIAMPermissions = "Services may lose access permissions"
	ImpactNetworking     = "Network connectivity may be interrupted"
	ImpactDatabase       = "Database downtime expected"
	ImpactMessaging      = "Message queue data will be lost"
)

// Downtime bands, only produced when the dominant level is CRITICAL.
const (
	DowntimeRDS = "5-15 minutes"
	DowntimeEKS = "2-10 minutes"
)

// Assess folds classified resource changes into a single blast radius
// assessment. Only HIGH and CRITICAL records contribute; everything derived
// here (dominant level, affected services, impact lines, downtime estimate)
// comes from that subset.
//
// Service attribution is a case-sensitive substring match of the resource type
// against fixed markers, first match wins per record. A type that merely
// contains a marker substring is attributed anyway; the over-matching is
// intentional and documented by a test rather than tightened.
func Assess(changes []types.ResourceChange) *types.BlastRadiusAssessment {
	critical := make([]types.ResourceChange, 0, len(changes))
	for _, rc := range changes {
		if rc.Criticality == types.CriticalityHigh || rc.Criticality == types.CriticalityCritical {
			critical = append(critical, rc)
		}
	}

	seen := make(map[string]bool)
	var services []string
	var impacts []string
	level := types.CriticalityLow

	for _, rc := range critical {
		// CRITICAL strictly dominates HIGH; once seen it never downgrades.
		if rc.Criticality == types.CriticalityCritical {
			level = types.CriticalityCritical
		} else if rc.Criticality == types.CriticalityHigh && level != types.CriticalityCritical {
			level = types.CriticalityHigh
		}

		switch {
		case strings.Contains(rc.Type, "eks"):
			if !seen["EKS"] {
				seen["EKS"] = true
				services = append(services, "EKS")
			}
			if rc.HasAction(types.ActionDelete) || rc.HasAction(types.ActionReplace) {
				impacts = append(impacts, ImpactEKSDisruption)
			}
		case strings.Contains(rc.Type, "iam"):
			if !seen["IAM"] {
				seen["IAM"] = true
				services = append(services, "IAM")
			}
			if rc.HasAction(types.ActionDelete) {
				impacts = append(impacts, ImpactIAMPermissions)
			}
		case strings.Contains(rc.Type, "security_group"):
			if !seen["Networking"] {
				seen["Networking"] = true
				services = append(services, "Networking")
			}
			if rc.HasAction(types.ActionDelete) || rc.HasAction(types.ActionReplace) {
				impacts = append(impacts, ImpactNetworking)
			}
		case strings.Contains(rc.Type, "rds"):
			if !seen["Database"] {
				seen["Database"] = true
				services = append(services, "Database")
			}
			if rc.HasAction(types.ActionDelete) || rc.HasAction(types.ActionReplace) {
				impacts = append(impacts, ImpactDatabase)
			}
		case strings.Contains(rc.Type, "sqs"):
			if !seen["Messaging"] {
				seen["Messaging"] = true
				services = append(services, "Messaging")
			}
			if rc.HasAction(types.ActionDelete) {
				impacts = append(impacts, ImpactMessaging)
			}
		}
	}

	// Downtime only applies at CRITICAL. The RDS check runs first so a change
	// set touching both databases and EKS reports the database band.
	var downtime string
	if level == types.CriticalityCritical {
		if anyTypeContains(critical, "rds") {
			downtime = DowntimeRDS
		} else if anyTypeContains(critical, "eks") {
			downtime = DowntimeEKS
		}
	}

	return &types.BlastRadiusAssessment{
		CriticalChanges:   critical,
		AffectedServices:  services,
		CriticalityLevel:  level,
		EstimatedDowntime: downtime,
		DownstreamImpacts: impacts,
	}
}

func anyTypeContains(changes []types.ResourceChange, marker string) bool {
	for _, rc := range changes {
		if strings.Contains(rc.Type, marker) {
			return true
		}
	}
	return false
}
