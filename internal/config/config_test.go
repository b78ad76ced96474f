package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{
		"AWS_REGION", "BASE_REPO_OWNER", "BASE_REPO_NAME", "PULL_NUM",
		"WORKSPACE", "PROJECT_NAME", "BASE_BRANCH", "BEDROCK_MODEL_ID",
		"BEDROCK_INFERENCE_PROFILE_ARN", "BEDROCK_INFERENCE_PROFILE_ID",
		"PLANFILE",
	} {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, DefaultModelID, cfg.ModelID)
	assert.Equal(t, "your-org", cfg.Run.RepoOwner)
	assert.Equal(t, "your-repo", cfg.Run.RepoName)
	assert.Equal(t, "unknown", cfg.Run.PullNum)
	assert.Equal(t, "unknown", cfg.Run.Workspace)
	assert.Equal(t, "unknown", cfg.Run.ProjectName)
	assert.Equal(t, "main", cfg.Run.BaseBranch)
	assert.Empty(t, cfg.PlanFile)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("BASE_REPO_OWNER", "acme")
	t.Setenv("BASE_REPO_NAME", "infra")
	t.Setenv("PULL_NUM", "123")
	t.Setenv("WORKSPACE", "production")
	t.Setenv("PROJECT_NAME", "core")
	t.Setenv("BASE_BRANCH", "trunk")
	t.Setenv("PLANFILE", "/tmp/plan.tfplan")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "acme/infra", cfg.Run.Repo())
	assert.Equal(t, "123", cfg.Run.PullNum)
	assert.Equal(t, "production", cfg.Run.Workspace)
	assert.Equal(t, "core", cfg.Run.ProjectName)
	assert.Equal(t, "trunk", cfg.Run.BaseBranch)
	assert.Equal(t, "/tmp/plan.tfplan", cfg.PlanFile)
}

// Target resolution is ordered: profile ARN, then profile id, then model id.
func TestTargetModelPreference(t *testing.T) {
	cfg := &Config{
		ModelID:             "model-default",
		InferenceProfileID:  "profile-id",
		InferenceProfileARN: "arn:aws:bedrock:us-east-1:123:inference-profile/p",
	}
	assert.Equal(t, cfg.InferenceProfileARN, cfg.TargetModel())

	cfg.InferenceProfileARN = ""
	assert.Equal(t, "profile-id", cfg.TargetModel())

	cfg.InferenceProfileID = ""
	assert.Equal(t, "model-default", cfg.TargetModel())
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "planrisk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("region: ap-southeast-2\nmodel_id: custom-model\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ap-southeast-2", cfg.Region)
	assert.Equal(t, "custom-model", cfg.ModelID)
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// Environment overrides the config file.
func TestEnvWinsOverConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("AWS_REGION", "us-west-2")

	path := filepath.Join(t.TempDir(), "planrisk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("region: ap-southeast-2\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "us-west-2", cfg.Region)
}
