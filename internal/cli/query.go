package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"docrag/internal/domain"
)

var (
	queryText  string
	queryTopK  int
	queryJSON  bool
	directives string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Ask a question over the ingested documents",
	Long: `Retrieves the most relevant chunks for the question and asks the
language model to answer using them as context.

Example:
  docrag query -q "What were the quarterly results?"
  docrag query -q "Summarize the findings" -k 8 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		question := queryText
		if question == "" && len(args) > 0 {
			question = strings.Join(args, " ")
		}
		if question == "" {
			return fmt.Errorf("no question given, use -q or pass it as an argument")
		}

		p, err := buildPipeline(cfg, rootDir, true)
		if err != nil {
			return err
		}
		defer p.Close()

		answer, err := p.answer.Answer(question, queryTopK, directives)
		if err != nil {
			return err
		}

		if queryJSON {
			out := struct {
				Response string          `json:"response"`
				Sources  []domain.Source `json:"sources,omitempty"`
				Error    string          `json:"error,omitempty"`
			}{answer.Text, answer.Sources, answer.Error}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		fmt.Println(answer.Text)
		if len(answer.Sources) > 0 {
			fmt.Println("\nSources:")
			for _, src := range answer.Sources {
				fmt.Printf("  %s (page %d, score %.3f)\n", src.Filename, src.Page, src.Score)
			}
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "question to ask")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the answer as JSON")
	queryCmd.Flags().StringVar(&directives, "directives", "", "extra instructions appended to the prompt")
	rootCmd.AddCommand(queryCmd)
}
