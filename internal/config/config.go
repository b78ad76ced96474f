// Package config builds the run configuration once at startup.
//
// Everything the analysis needs from the environment is resolved here into an
// immutable Config value; no other package reads process-wide state during
// execution.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/planrisk/planrisk/internal/types"
)

// DefaultModelID is the model used when no inference profile is configured.
const DefaultModelID = "anthropic.claude-sonnet-4-20250514-v1:0"

// Environment variable names. These match what the CI integration exports, so
// they are bound verbatim rather than through a prefix.
const (
	envRegion       = "AWS_REGION"
	envRepoOwner    = "BASE_REPO_OWNER"
	envRepoName     = "BASE_REPO_NAME"
	envPullNum      = "PULL_NUM"
	envWorkspace    = "WORKSPACE"
	envProjectName  = "PROJECT_NAME"
	envBaseBranch   = "BASE_BRANCH"
	envModelID      = "BEDROCK_MODEL_ID"
	envInferenceARN = "BEDROCK_INFERENCE_PROFILE_ARN"
	envInferenceID  = "BEDROCK_INFERENCE_PROFILE_ID"
	envPlanFile     = "PLANFILE"
)

// Config is the resolved run configuration.
type Config struct {
	// Region is the AWS region hosting the reasoning service.
	Region string `mapstructure:"region"`

	// ModelID is the default model identifier. InferenceProfileARN and
	// InferenceProfileID take precedence, in that order.
	ModelID             string `mapstructure:"model_id"`
	InferenceProfileARN string `mapstructure:"inference_profile_arn"`
	InferenceProfileID  string `mapstructure:"inference_profile_id"`

	// PlanFile is the default plan path when none is given on the command line.
	PlanFile string `mapstructure:"plan_file"`

	Run types.RunMetadata `mapstructure:"-"`
}

// TargetModel resolves which model or profile identifier to send with every
// reasoning call. Resolved once per run: explicit inference-profile ARN wins,
// then inference-profile id, then the default model identifier.
func (c *Config) TargetModel() string {
	if c.InferenceProfileARN != "" {
		return c.InferenceProfileARN
	}
	if c.InferenceProfileID != "" {
		return c.InferenceProfileID
	}
	return c.ModelID
}

// Load builds a Config from the environment, with an optional YAML config file
// layered underneath (explicit env always wins).
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("region", "us-east-1")
	v.SetDefault("model_id", DefaultModelID)
	v.SetDefault("repo_owner", "your-org")
	v.SetDefault("repo_name", "your-repo")
	v.SetDefault("pull_num", "unknown")
	v.SetDefault("workspace", "unknown")
	v.SetDefault("project_name", "unknown")
	v.SetDefault("base_branch", "main")

	bind := map[string]string{
		"region":                envRegion,
		"repo_owner":            envRepoOwner,
		"repo_name":             envRepoName,
		"pull_num":              envPullNum,
		"workspace":             envWorkspace,
		"project_name":          envProjectName,
		"base_branch":           envBaseBranch,
		"model_id":              envModelID,
		"inference_profile_arn": envInferenceARN,
		"inference_profile_id":  envInferenceID,
		"plan_file":             envPlanFile,
	}
	for key, env := range bind {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		Region:              v.GetString("region"),
		ModelID:             v.GetString("model_id"),
		InferenceProfileARN: strings.TrimSpace(v.GetString("inference_profile_arn")),
		InferenceProfileID:  strings.TrimSpace(v.GetString("inference_profile_id")),
		PlanFile:            v.GetString("plan_file"),
		Run: types.RunMetadata{
			RepoOwner:   v.GetString("repo_owner"),
			RepoName:    v.GetString("repo_name"),
			PullNum:     v.GetString("pull_num"),
			Workspace:   v.GetString("workspace"),
			ProjectName: v.GetString("project_name"),
			BaseBranch:  v.GetString("base_branch"),
		},
	}
	return cfg, nil
}
