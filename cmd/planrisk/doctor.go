package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/planrisk/planrisk/internal/config"
)

// minTerraformVersion is the oldest terraform whose `show -json` output the
// extractor understands.
const minTerraformVersion = "v0.12.0"

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the analysis environment",
	Long: `Run health checks for the tools and configuration the analyzer needs.

This command checks for:
- terraform on PATH and a supported version
- git on PATH (used for code diff collection)
- AWS credentials and region configuration
- Bedrock model/profile target resolution

Exit codes:
  0 - All checks passed
  1 - One or more checks failed`,
	Run: func(cmd *cobra.Command, args []string) {
		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()

		fmt.Printf("Running planrisk health checks...\n\n")

		failed := false

		fmt.Printf("%s Terraform\n", cyan("→"))
		if ver, err := terraformVersion(cmd.Context()); err != nil {
			failed = true
			fmt.Printf("  %s terraform not usable: %v\n", red("✗"), err)
		} else if semver.IsValid(ver) && semver.Compare(ver, minTerraformVersion) < 0 {
			failed = true
			fmt.Printf("  %s terraform %s is older than the supported %s\n", red("✗"), ver, minTerraformVersion)
		} else {
			fmt.Printf("  %s terraform %s\n", green("✓"), ver)
		}

		fmt.Printf("%s Git\n", cyan("→"))
		if _, err := exec.LookPath("git"); err != nil {
			// Diff collection degrades without git, so this is a warning.
			fmt.Printf("  %s git not found: code diff collection will be skipped\n", yellow("⚠"))
		} else {
			fmt.Printf("  %s git found\n", green("✓"))
		}

		fmt.Printf("%s AWS / Bedrock\n", cyan("→"))
		cfg, err := config.Load(configFile)
		if err != nil {
			failed = true
			fmt.Printf("  %s failed to load configuration: %v\n", red("✗"), err)
		} else {
			fmt.Printf("  %s region: %s\n", green("✓"), cfg.Region)
			fmt.Printf("  %s target model: %s\n", green("✓"), cfg.TargetModel())
			if !hasAWSCredentialHint() {
				fmt.Printf("  %s no AWS credentials detected (env, profile or shared config)\n", yellow("⚠"))
			} else {
				fmt.Printf("  %s AWS credentials detected\n", green("✓"))
			}
		}

		if failed {
			fmt.Printf("\n%s Some checks failed\n", red("✗"))
			os.Exit(1)
		}
		fmt.Printf("\n%s All checks passed\n", green("✓"))
	},
}

// terraformVersion returns the installed terraform version as a semver string
// like "v1.9.5".
func terraformVersion(ctx context.Context) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	out, err := exec.CommandContext(ctx, "terraform", "version").Output()
	if err != nil {
		return "", fmt.Errorf("terraform not found on PATH: %w", err)
	}
	return parseTerraformVersion(string(out))
}

// parseTerraformVersion extracts "v1.9.5" from output whose first line looks
// like "Terraform v1.9.5".
func parseTerraformVersion(out string) (string, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	fields := strings.Fields(line)
	for _, f := range fields {
		if strings.HasPrefix(f, "v") && semver.IsValid(f) {
			return f, nil
		}
	}
	return "", fmt.Errorf("could not parse terraform version from %q", line)
}

// hasAWSCredentialHint checks the usual places credentials come from. The SDK
// does the real resolution; this is only a preflight hint.
func hasAWSCredentialHint() bool {
	if os.Getenv("AWS_ACCESS_KEY_ID") != "" || os.Getenv("AWS_PROFILE") != "" ||
		os.Getenv("AWS_ROLE_ARN") != "" || os.Getenv("AWS_WEB_IDENTITY_TOKEN_FILE") != "" {
		return true
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return false
	}
	if _, err := os.Stat(home + "/.aws/credentials"); err == nil {
		return true
	}
	if _, err := os.Stat(home + "/.aws/config"); err == nil {
		return true
	}
	return false
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
