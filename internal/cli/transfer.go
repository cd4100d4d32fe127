package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var (
		file         string
		instructorID string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create quizzes from a YAML document",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", file, err)
			}
			defer f.Close()

			app, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			result, err := app.serviceManager.ImportExport().ImportQuizzes(cmd.Context(), f, instructorID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "created %d quizzes %v\n", len(result.Created), result.Created)
			for _, failed := range result.Failed {
				fmt.Fprintf(out, "quiz #%d %q: %s\n", failed.Index, failed.Title, failed.Error)
			}
			if len(result.Failed) > 0 {
				return fmt.Errorf("%d of %d quizzes failed to import", len(result.Failed), len(result.Failed)+len(result.Created))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "YAML file with a top level quizzes list")
	cmd.Flags().StringVar(&instructorID, "instructor", "", "ID of the instructor the quizzes are created for")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("instructor")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		quizID uint
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the submissions of a quiz to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if quizID == 0 {
				return fmt.Errorf("--quiz must be a positive quiz ID")
			}

			app, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}

			if err := app.serviceManager.ImportExport().ExportQuizResults(cmd.Context(), quizID, f); err != nil {
				f.Close()
				os.Remove(output)
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().UintVar(&quizID, "quiz", 0, "quiz ID")
	cmd.Flags().StringVar(&output, "out", "results.xlsx", "output file")
	cmd.MarkFlagRequired("quiz")
	return cmd
}
