package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lovable-tutor/internal/catalog"
	"lovable-tutor/internal/progress"
)

func newVocabCmd() *cobra.Command {
	var (
		category   string
		difficulty string
		query      string
		learned    bool
		unlearned  bool
	)
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "List vocabulary words",
		RunE: func(cmd *cobra.Command, args []string) error {
			if learned && unlearned {
				return errors.New("--learned and --unlearned are mutually exclusive")
			}
			f := progress.VocabFilter{
				Category:   catalog.Category(category),
				Difficulty: catalog.Difficulty(difficulty),
				Query:      query,
			}
			if learned || unlearned {
				f.Learned = &learned
			}

			a, err := openProgress(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			printWords(cmd.OutOrStdout(), a.Progress.Vocabulary(f))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Conversational or Corporate")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "Beginner, Intermediate or Advanced")
	cmd.Flags().StringVarP(&query, "query", "q", "", "search word, meaning and example")
	cmd.Flags().BoolVar(&learned, "learned", false, "only learned words")
	cmd.Flags().BoolVar(&unlearned, "unlearned", false, "only words not learned yet")
	return cmd
}

func printWords(out io.Writer, words []catalog.Word) {
	if len(words) == 0 {
		fmt.Fprintln(out, "No words match.")
		return
	}
	for _, w := range words {
		mark := " "
		if w.IsLearned {
			mark = "✓"
		}
		fmt.Fprintf(out, "%s %-4s %s (%s, %s)\n", mark, w.ID, w.Word, w.Category, w.Difficulty)
		fmt.Fprintf(out, "       %s / %s\n", w.MeaningEn, w.MeaningHi)
		fmt.Fprintf(out, "       \"%s\"\n", w.Example)
	}
}

func newLearnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "learn <word-id>",
		Short: "Mark a vocabulary word as learned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openProgress(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			w, newly, err := a.Progress.LearnWord(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, progress.ErrUnknownWord) {
					return fmt.Errorf("no word with id %q", args[0])
				}
				return err
			}
			out := cmd.OutOrStdout()
			if newly {
				fmt.Fprintf(out, "🎉 Learned %s! Words learned: %d\n", w.Word, a.Progress.Stats().WordsLearned)
			} else {
				fmt.Fprintf(out, "%s is already learned.\n", w.Word)
			}
			return nil
		},
	}
}
