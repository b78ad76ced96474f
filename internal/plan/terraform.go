package plan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrPlanUnreadable is returned when the plan file cannot be rendered to text.
// This is the hard precondition failure: without plan text there is nothing to
// classify or report on, so the caller must stop before the pipeline starts.
var ErrPlanUnreadable = errors.New("plan file could not be rendered")

// ShowText renders a binary plan file to human-readable text via
// `terraform show -no-color`. The text is what reviewers see in the PR and is
// embedded verbatim (budgeted) into the technical analysis prompt.
func ShowText(ctx context.Context, planPath string, logger *zap.Logger) (string, error) {
	out, err := runShow(ctx, planPath, "-no-color")
	if err != nil {
		if logger != nil {
			logger.Error("terraform show failed", zap.String("plan", planPath), zap.Error(err))
		}
		return "", fmt.Errorf("%w: %v", ErrPlanUnreadable, err)
	}
	return out, nil
}

// ShowJSON renders a binary plan file to its JSON representation for precise
// change extraction. Failure here is recoverable: the analysis proceeds with
// an empty record list.
func ShowJSON(ctx context.Context, planPath string, logger *zap.Logger) string {
	out, err := runShow(ctx, planPath, "-json")
	if err != nil {
		if logger != nil {
			logger.Warn("terraform show -json failed, proceeding without structured changes",
				zap.String("plan", planPath), zap.Error(err))
		}
		return ""
	}
	return out
}

func runShow(ctx context.Context, planPath string, flag string) (string, error) {
	if _, err := os.Stat(planPath); err != nil {
		return "", fmt.Errorf("plan file not accessible: %w", err)
	}

	cmd := exec.CommandContext(ctx, "terraform", "show", flag, planPath)
	cmd.Dir = filepath.Dir(planPath)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("terraform show %s failed: %w (stderr: %s)",
			flag, err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return "", fmt.Errorf("terraform show %s produced no output", flag)
	}
	return stdout.String(), nil
}
