package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/worklens/worklens/internal/annotate"
	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/correlate"
)

var correlateCmd = &cobra.Command{
	Use:   "correlate <evidence-file>",
	Short: "Correlate an evidence snapshot into work stories",
	Long: `Runs the correlation pipeline over a snapshot of evidence items
(JSON array or JSONL; "-" reads stdin) and prints the resulting work
stories, relationships, and insights.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		items, err := loadEvidence(args[0])
		if err != nil {
			return err
		}

		engine := correlate.New(cfg)
		if cfg.Annotate {
			annotator, err := annotate.NewClaudeAnnotator("", cfg.AnnotateModel)
			if err != nil {
				return fmt.Errorf("annotation requested: %w", err)
			}
			engine.SetAnnotator(annotator)
		}

		out, err := engine.Run(cmd.Context(), items)
		if err != nil {
			return err
		}

		for _, w := range out.Warnings {
			if w.ItemID != "" {
				fmt.Fprintf(os.Stderr, "warning: item %s: %s\n", w.ItemID, w.Reason)
			} else {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w.Reason)
			}
		}

		if jsonOutput {
			return printJSON(out)
		}
		printReport(out)
		return nil
	},
}

func init() {
	correlateCmd.Flags().Float64("threshold", 0, "Minimum confidence to accept a relationship (default from config)")
	correlateCmd.Flags().Int("parallelism", 0, "Pair-scoring workers (default: number of CPUs)")
	correlateCmd.Flags().Duration("timeout", 0, "Abort the run after this duration (0 = no limit)")
	correlateCmd.Flags().Bool("annotate", false, "Rewrite rationales through the Anthropic API (needs ANTHROPIC_API_KEY)")
	rootCmd.AddCommand(correlateCmd)
}

// resolveConfig layers, lowest to highest precedence: defaults, the yaml
// config file, WORKLENS_* env vars, explicit flags.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	v := viper.New()
	v.SetEnvPrefix("WORKLENS")
	v.AutomaticEnv()
	if v.IsSet("accept_threshold") {
		cfg.AcceptThreshold = v.GetFloat64("accept_threshold")
	}
	if v.IsSet("parallelism") {
		cfg.Parallelism = v.GetInt("parallelism")
	}
	if v.IsSet("run_timeout") {
		cfg.RunTimeout = config.Duration(v.GetDuration("run_timeout"))
	}
	if v.IsSet("annotate") {
		cfg.Annotate = v.GetBool("annotate")
	}
	if v.IsSet("annotate_model") {
		cfg.AnnotateModel = v.GetString("annotate_model")
	}

	if cmd.Flags().Changed("threshold") {
		cfg.AcceptThreshold, _ = cmd.Flags().GetFloat64("threshold")
	}
	if cmd.Flags().Changed("parallelism") {
		cfg.Parallelism, _ = cmd.Flags().GetInt("parallelism")
	}
	if cmd.Flags().Changed("timeout") {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		cfg.RunTimeout = config.Duration(timeout)
	}
	if cmd.Flags().Changed("annotate") {
		cfg.Annotate, _ = cmd.Flags().GetBool("annotate")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
