// Command planrisk analyzes a Terraform plan and produces an AI-assisted risk
// report: which resources change, how critical each change is, which services
// are affected, and synthesized deployment recommendations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "0.1.0"

// Global flags, bound in init.
var (
	configFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "planrisk",
	Short: "AI-assisted Terraform plan risk analysis",
	Long: `planrisk evaluates a Terraform plan and produces a structured risk report.

It classifies every resource change by blast radius, aggregates the result
into a risk assessment, and drives a three-stage analysis pipeline against
AWS Bedrock to produce impact, technical and recommendation narratives.`,
	Version: version,
}

// newLogger builds the diagnostic logger. Diagnostics go to stderr so stdout
// stays clean for the report, which CI captures verbatim.
func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to build logger: %v\n", err)
		return zap.NewNop()
	}
	return logger
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML config file (environment variables take precedence)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
