// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/hypothesis-engine/internal/corpus"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Inspect and clean the inspiration corpus",
	Long: `Corpus operates on the inspiration corpus JSON file: a list of
[title, abstract] pairs. Use stats to report its size and duplicate
titles, or clean to normalize text artifacts and write the result out.`,
}

var corpusStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report corpus size and duplicate titles",
	RunE:  runCorpusStats,
}

func runCorpusStats(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("corpus")

	c, dropped, err := corpus.Load(path)
	if err != nil {
		return err
	}

	fmt.Printf("Corpus: %s\n", path)
	fmt.Printf("Papers: %d\n", c.Len())
	fmt.Printf("Duplicate titles dropped: %d\n", dropped)

	empty := 0
	for _, p := range c.Papers {
		if p.Abstract == "" {
			empty++
		}
	}
	if empty > 0 {
		fmt.Printf("Papers with empty abstracts: %d\n", empty)
	}
	return nil
}

var corpusCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Normalize text artifacts and rewrite the corpus",
	Long: `Clean loads the corpus, normalizing encoding artifacts (broken dashes,
smart quotes, stray control characters) in every title and abstract, and
writes the deduplicated result to --output.`,
	RunE: runCorpusClean,
}

func runCorpusClean(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("corpus")
	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		outPath = path
	}

	c, dropped, err := corpus.Load(path)
	if err != nil {
		return err
	}
	if err := corpus.Write(outPath, c.Papers); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Cleaned %d papers (%d duplicates dropped) -> %s\n", c.Len(), dropped, outPath)
	return nil
}

func init() {
	corpusCmd.PersistentFlags().String("corpus", "corpus.json", "inspiration corpus JSON file")
	corpusCleanCmd.Flags().String("output", "", "cleaned corpus path (default: overwrite input)")

	corpusCmd.AddCommand(corpusStatsCmd)
	corpusCmd.AddCommand(corpusCleanCmd)

	rootCmd.AddCommand(corpusCmd)
}
