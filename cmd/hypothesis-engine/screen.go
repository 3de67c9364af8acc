// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/hypothesis-engine/internal/annotation"
	"github.com/pdiddy/hypothesis-engine/internal/corpus"
	"github.com/pdiddy/hypothesis-engine/internal/genai"
	"github.com/pdiddy/hypothesis-engine/internal/screening"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

const defaultScreenTimeout = 120 * time.Second

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Run multi-round inspiration screening over the corpus",
	Long: `Screen partitions the inspiration corpus into windows, asks the model to
keep the best candidates per window, and repeats over the survivors for the
configured number of rounds. Each round is scored against the annotated
ground-truth inspirations of the background question.

Use --question-id to screen a single benchmark question, or
--research-background with a [question, survey] JSON file to screen a
custom question (no scoring, the ground truth is unknown).`,
	RunE: runScreen,
}

func init() {
	screenCmd.Flags().String("provider", "openai", "generation provider: openai, azure, or google")
	screenCmd.Flags().String("model", "gpt-4o", "model identifier (deployment name for azure)")
	screenCmd.Flags().String("api-key", "", "provider API key (default: .secrets/<provider>-api-key)")
	screenCmd.Flags().String("base-url", "", "provider endpoint override (required for azure)")
	screenCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 120s)")

	screenCmd.Flags().Int("window-size", 12, "candidates per screening window (minimum 10)")
	screenCmd.Flags().Int("keep-size", 3, "candidates the model keeps per window")
	screenCmd.Flags().Int("rounds", 4, "screening rounds (1-4)")
	screenCmd.Flags().Int("question-id", -1, "annotated question index to screen (-1 = all)")

	screenCmd.Flags().String("corpus", "corpus.json", "inspiration corpus JSON ([[title, abstract], ...])")
	screenCmd.Flags().String("annotation", "annotation.xlsx", "annotation workbook with questions and ground truth")
	screenCmd.Flags().String("research-background", "", "custom [question, survey] JSON file, bypasses the annotation workbook")
	screenCmd.Flags().String("output", "screening-results.json", "results JSON path")
	screenCmd.Flags().Bool("save", true, "write results and the run manifest to disk")

	screenCmd.Flags().Bool("similarity-only", false, "select by semantic similarity instead of inspiration potential")
	screenCmd.Flags().Bool("use-survey", true, "embed the background survey in prompts (false uses a placeholder)")
	screenCmd.Flags().Bool("strict-background", false, "use the strict survey/question variants from the workbook")

	rootCmd.AddCommand(screenCmd)
}

func runScreen(cmd *cobra.Command, args []string) error {
	cfg, err := screenConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.Save {
		// Fail before any model call rather than after an expensive run.
		if _, err := os.Stat(cfg.OutputPath); err == nil {
			return fmt.Errorf("output file %s already exists, refusing to overwrite", cfg.OutputPath)
		}
	}

	c, dropped, err := corpus.Load(cfg.CorpusPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Loaded corpus: %d papers (%d duplicate titles dropped)\n", c.Len(), dropped)

	gateway, err := genai.New(cfg.GenerationConfig)
	if err != nil {
		return err
	}
	engine, err := screening.New(cfg, gateway, c, os.Stderr)
	if err != nil {
		return err
	}

	var out *screening.RunOutput
	backgroundPath, _ := cmd.Flags().GetString("research-background")
	if backgroundPath != "" {
		bg, err := loadResearchBackground(backgroundPath)
		if err != nil {
			return err
		}
		out, err = screening.RunBackground(context.Background(), engine, bg)
		if err != nil {
			return err
		}
	} else {
		ann, err := annotation.Load(types.AnnotationConfig{
			Path:      cfg.AnnotationPath,
			UseStrict: cfg.StrictBackground,
			UseSurvey: cfg.UseSurvey,
		})
		if err != nil {
			return err
		}
		out, err = screening.Run(context.Background(), engine, ann)
		if err != nil {
			return err
		}
	}

	if !cfg.Save {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if err := screening.WriteResults(cfg.OutputPath, out); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Results written to %s\n", cfg.OutputPath)

	manifestPath := manifestPathFor(cfg.OutputPath)
	f, err := os.Create(manifestPath)
	if err != nil {
		return fmt.Errorf("creating run manifest %s: %w", manifestPath, err)
	}
	defer f.Close()
	if err := screening.WriteManifest(f, cfg, out, c.Len()); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Run manifest written to %s\n", manifestPath)
	return nil
}

// screenConfig assembles the screening configuration from flags, falling
// back to the config file for unset string values and to .secrets/ for the
// API key.
func screenConfig(cmd *cobra.Command) (types.ScreeningConfig, error) {
	var cfg types.ScreeningConfig

	cfg.Provider = stringSetting(cmd, "provider", "screen.provider")
	cfg.Model = stringSetting(cmd, "model", "screen.model")
	cfg.BaseURL = stringSetting(cmd, "base-url", "screen.base_url")

	apiKey, _ := cmd.Flags().GetString("api-key")
	cfg.APIKey = secretDefault(cfg.Provider+"-api-key", apiKey)
	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("no API key: pass --api-key or create .secrets/%s-api-key", cfg.Provider)
	}

	cfg.Timeout, _ = cmd.Flags().GetDuration("timeout")
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultScreenTimeout
	}
	cfg.UserAgent = "hypothesis-engine/0.1"

	cfg.WindowSize, _ = cmd.Flags().GetInt("window-size")
	cfg.KeepSize, _ = cmd.Flags().GetInt("keep-size")
	cfg.Rounds, _ = cmd.Flags().GetInt("rounds")
	cfg.QuestionID, _ = cmd.Flags().GetInt("question-id")

	cfg.CorpusPath = stringSetting(cmd, "corpus", "screen.corpus")
	cfg.AnnotationPath = stringSetting(cmd, "annotation", "screen.annotation")
	cfg.OutputPath = stringSetting(cmd, "output", "screen.output")

	cfg.Save, _ = cmd.Flags().GetBool("save")
	cfg.SimilarityOnly, _ = cmd.Flags().GetBool("similarity-only")
	cfg.UseSurvey, _ = cmd.Flags().GetBool("use-survey")
	cfg.StrictBackground, _ = cmd.Flags().GetBool("strict-background")

	return cfg, nil
}

// stringSetting returns the flag value when the user set it, then the
// config-file value, then the flag default.
func stringSetting(cmd *cobra.Command, flag, viperKey string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	if v := viper.GetString(viperKey); v != "" {
		return v
	}
	v, _ := cmd.Flags().GetString(flag)
	return v
}

// loadResearchBackground reads a custom [question, survey] JSON file.
func loadResearchBackground(path string) (types.ResearchBackground, error) {
	var bg types.ResearchBackground

	data, err := os.ReadFile(path)
	if err != nil {
		return bg, fmt.Errorf("reading research background %s: %w", path, err)
	}

	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return bg, fmt.Errorf("parsing research background %s: %w", path, err)
	}
	if len(pair) != 2 {
		return bg, fmt.Errorf("research background %s: want [question, survey], got %d elements", path, len(pair))
	}

	bg.Question = strings.TrimSpace(pair[0])
	bg.Survey = strings.TrimSpace(pair[1])
	if bg.Question == "" {
		return bg, fmt.Errorf("research background %s: question is empty", path)
	}
	return bg, nil
}

// manifestPathFor derives the YAML manifest path from the results path.
func manifestPathFor(outputPath string) string {
	if strings.HasSuffix(outputPath, ".json") {
		return strings.TrimSuffix(outputPath, ".json") + ".yaml"
	}
	return outputPath + ".yaml"
}
