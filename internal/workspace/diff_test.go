package workspace

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gitRepo builds a real repository with an "origin" remote: base branch with
// one commit pushed, then a feature branch checked out locally.
func gitRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	remote := t.TempDir()
	work := t.TempDir()

	git := func(dir string, args ...string) string {
		t.Helper()
		full := append([]string{
			"-c", "user.email=test@example.com",
			"-c", "user.name=test",
			"-c", "init.defaultBranch=main",
		}, args...)
		cmd := exec.Command("git", full...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
		return string(out)
	}

	git(remote, "init", "--bare")
	git(work, "init")
	git(work, "remote", "add", "origin", remote)

	writeFile(t, work, "main.tf", "resource \"aws_instance\" \"web\" {}\n")
	writeFile(t, work, "notes.md", "not terraform\n")
	git(work, "add", ".")
	git(work, "commit", "-m", "base")
	git(work, "push", "-u", "origin", "main")

	git(work, "checkout", "-b", "feature")
	writeFile(t, work, "main.tf", "resource \"aws_instance\" \"web\" {\n  count = 2\n}\n")
	writeFile(t, work, "notes.md", "still not terraform\n")
	git(work, "add", ".")
	git(work, "commit", "-m", "scale out")

	return work
}

func TestCollectDiff(t *testing.T) {
	work := gitRepo(t)
	planPath := filepath.Join(work, "plan.tfplan")

	diff := CollectDiff(context.Background(), planPath, "main", 10000, nil)

	assert.Contains(t, diff, "main.tf")
	assert.Contains(t, diff, "count = 2")
	// Non-terraform files never enter the diff.
	assert.NotContains(t, diff, "notes.md")
}

func TestCollectDiffTruncation(t *testing.T) {
	work := gitRepo(t)
	planPath := filepath.Join(work, "plan.tfplan")

	diff := CollectDiff(context.Background(), planPath, "main", 40, nil)

	require.NotEmpty(t, diff)
	assert.True(t, strings.HasSuffix(diff, diffTruncationSuffix))
	assert.LessOrEqual(t, len(diff), 40+len(diffTruncationSuffix))
}

func TestCollectDiffOutsideRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.tfplan")

	assert.Empty(t, CollectDiff(context.Background(), planPath, "main", 10000, nil))
}

func TestCollectDiffNoTerraformChanges(t *testing.T) {
	work := gitRepo(t)
	planPath := filepath.Join(work, "plan.tfplan")

	git := func(args ...string) {
		t.Helper()
		full := append([]string{
			"-c", "user.email=test@example.com",
			"-c", "user.name=test",
		}, args...)
		cmd := exec.Command("git", full...)
		cmd.Dir = work
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}

	// Rewind terraform files to the base branch state so only notes.md differs.
	git("checkout", "origin/main", "--", "main.tf")
	git("commit", "-am", "revert terraform change")

	assert.Empty(t, CollectDiff(context.Background(), planPath, "main", 10000, nil))
}
