// Package workspace collects supporting context from the project checkout:
// the version-control diff behind the plan and the configuration files it was
// rendered from. Both inputs are optional; every failure here degrades to an
// empty result because the analysis works without them.
package workspace

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// diffTruncationSuffix marks a diff cut at the collection budget.
const diffTruncationSuffix = "\n... [diff truncated]"

// CollectDiff returns the unified diff of .tf/.tfvars changes between
// origin/<baseBranch> and HEAD, limited to the plan's directory and hard
// truncated at maxChars. Returns "" when there is no diff or git fails.
func CollectDiff(ctx context.Context, planPath, baseBranch string, maxChars int, logger *zap.Logger) string {
	if logger == nil {
		logger = zap.NewNop()
	}

	workDir, err := filepath.Abs(filepath.Dir(planPath))
	if err != nil {
		return ""
	}

	// Best effort; a failed fetch just means we diff against what we have.
	fetch := exec.CommandContext(ctx, "git", "fetch", "--all", "--prune", "-q")
	fetch.Dir = workDir
	_ = fetch.Run()

	repoRoot, err := gitOutput(ctx, workDir, "rev-parse", "--show-toplevel")
	if err != nil {
		logger.Debug("not inside a git repository, skipping diff", zap.String("dir", workDir))
		return ""
	}
	repoRoot = strings.TrimSpace(repoRoot)

	relDir, err := filepath.Rel(repoRoot, workDir)
	if err != nil {
		return ""
	}

	diffRange := "origin/" + baseBranch + "...HEAD"
	names, err := gitOutput(ctx, repoRoot, "diff", diffRange, "--name-only", "--", relDir)
	if err != nil {
		logger.Debug("git diff --name-only failed", zap.Error(err))
		return ""
	}

	var changed []string
	for _, name := range strings.Split(names, "\n") {
		name = strings.TrimSpace(name)
		if strings.HasSuffix(name, ".tf") || strings.HasSuffix(name, ".tfvars") {
			changed = append(changed, name)
		}
	}
	if len(changed) == 0 {
		return ""
	}

	args := append([]string{"diff", diffRange, "--no-color", "--unified=3", "--"}, changed...)
	diff, err := gitOutput(ctx, repoRoot, args...)
	if err != nil {
		logger.Debug("git diff failed", zap.Error(err))
		return ""
	}

	diff = strings.TrimSpace(diff)
	if diff == "" {
		return ""
	}
	if len(diff) > maxChars {
		return diff[:maxChars] + diffTruncationSuffix
	}
	return diff
}

func gitOutput(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
