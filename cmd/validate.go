package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urbanarchive/submiteval/analytics"
	"github.com/urbanarchive/submiteval/orchestrator"
	"github.com/urbanarchive/submiteval/output"
	"github.com/urbanarchive/submiteval/reference"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var validateFlags struct {
	archivePath  string
	category     int
	rulesVersion string
	serviceURL   string
	rulesFile    string
	reportPath   string
	cacheDir     string
	cacheTTL     time.Duration
	timeout      time.Duration
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a submission archive against the published rule set",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.archivePath, "archive", "", "path to the submission archive (required)")
	validateCmd.Flags().IntVar(&validateFlags.category, "category", 0, "submission category: 1=PUG, 2=PUZ, 3=PUD, 4=CU (required)")
	validateCmd.Flags().StringVar(&validateFlags.rulesVersion, "rules-version", "latest", "rule-table version to fetch")
	validateCmd.Flags().StringVar(&validateFlags.serviceURL, "service-url", "", "reference service base URL (required, also with --rules-file)")
	validateCmd.Flags().StringVar(&validateFlags.rulesFile, "rules-file", "", "path to a local YAML rule list, bypassing the reference service for rules")
	validateCmd.Flags().StringVar(&validateFlags.reportPath, "report", "report.csv", "path to write the CSV report to")
	validateCmd.Flags().StringVar(&validateFlags.cacheDir, "cache-dir", "", "directory to cache reference-service responses in (disabled if empty)")
	validateCmd.Flags().DurationVar(&validateFlags.cacheTTL, "cache-ttl", time.Hour, "how long a cached reference-service response stays valid")
	validateCmd.Flags().DurationVar(&validateFlags.timeout, "timeout", 30*time.Second, "reference-service HTTP timeout")
	_ = validateCmd.MarkFlagRequired("archive")
	_ = validateCmd.MarkFlagRequired("category")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	verbosity := output.VerbosityDefault
	if verboseFlag {
		verbosity = output.VerbosityVerbose
	}
	log := output.NewLogger(verbosity)

	if validateFlags.serviceURL == "" {
		return fmt.Errorf("--service-url is required (R32/R45 need the administrative-polygon lookup even when --rules-file supplies the rule table)")
	}

	ctx := context.Background()

	httpLoader := reference.NewHTTPLoader(validateFlags.serviceURL, validateFlags.timeout)
	if validateFlags.cacheDir != "" {
		if err := httpLoader.WithCacheDir(validateFlags.cacheDir, validateFlags.cacheTTL); err != nil {
			return fmt.Errorf("enable cache: %w", err)
		}
	}
	var loader reference.Loader = httpLoader

	rulesVersion := validateFlags.rulesVersion
	if validateFlags.rulesFile == "" && rulesVersion == "latest" {
		v, err := loader.LatestVersion(ctx)
		if err != nil {
			return fmt.Errorf("resolve latest rules version: %w", err)
		}
		rulesVersion = v
	}

	cfg := orchestrator.Config{
		ArchivePath:    validateFlags.archivePath,
		Category:       validateFlags.category,
		RulesVersion:   rulesVersion,
		ReportPath:     validateFlags.reportPath,
		LocalRulesYAML: validateFlags.rulesFile,
	}

	analytics.ReportEventWithProperties(analytics.ValidateStarted, map[string]interface{}{
		"category": validateFlags.category,
	})

	verdict, err := orchestrator.Run(ctx, cfg, loader, log)
	if err != nil {
		analytics.ReportEventWithProperties(analytics.ValidateFailed, map[string]interface{}{
			"category": validateFlags.category,
			"error":    err.Error(),
		})
		return fmt.Errorf("validate: %w", err)
	}

	analytics.ReportEventWithProperties(analytics.ValidateCompleted, map[string]interface{}{
		"category": validateFlags.category,
		"verdict":  verdict,
	})

	fmt.Printf("report written to %s\n", validateFlags.reportPath)
	if !verdict {
		fmt.Println(color.New(color.FgRed).SprintFunc()("verdict: FAIL"))
		os.Exit(1)
	}
	fmt.Println(color.New(color.FgGreen).SprintFunc()("verdict: PASS"))
	return nil
}
