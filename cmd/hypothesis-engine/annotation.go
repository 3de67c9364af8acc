// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/hypothesis-engine/internal/annotation"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

var annotationCmd = &cobra.Command{
	Use:   "annotation",
	Short: "List the annotated background questions",
	Long: `Annotation reads the benchmark workbook and lists each background
question with its ground-truth inspiration count. The printed indexes are
the values accepted by screen --question-id.`,
	RunE: runAnnotation,
}

func runAnnotation(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("annotation")
	strict, _ := cmd.Flags().GetBool("strict-background")

	ann, err := annotation.Load(types.AnnotationConfig{
		Path:      path,
		UseStrict: strict,
		UseSurvey: true,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%-4s  %-8s  %s\n", "ID", "Insps", "Question")
	for i, q := range ann.Questions {
		question := q
		if len(question) > 100 {
			question = question[:97] + "..."
		}
		fmt.Printf("%-4d  %-8d  %s\n", i, len(ann.Inspirations[q]), question)
	}
	fmt.Printf("\n%d questions\n", len(ann.Questions))
	return nil
}

func init() {
	annotationCmd.Flags().String("annotation", "annotation.xlsx", "annotation workbook (xlsx)")
	annotationCmd.Flags().Bool("strict-background", false, "use the strict survey/question variants")

	rootCmd.AddCommand(annotationCmd)
}
