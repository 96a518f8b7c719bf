package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Ingest a PDF file or a directory of PDFs",
	Long: `Ingests PDF documents into the vector store. The argument may be a
single PDF file or a directory, in which case every file matching the
configured include patterns is ingested.

Re-ingesting a file with the same name replaces its previous chunks.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPipeline(cfg, rootDir, true)
		if err != nil {
			return err
		}
		defer p.Close()

		path := args[0]
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}

		if !info.IsDir() {
			result, err := p.ingest.IngestFile(path)
			if err != nil {
				return err
			}
			fmt.Printf("Ingested %s: %d pages, %d chunks (doc %s)\n",
				result.Filename, result.Pages, result.Chunks, result.DocID)
			return nil
		}

		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Ingesting"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		result, err := p.ingest.IngestDir(path, func(processed, total int) {
			bar.ChangeMax(total)
			bar.Set(processed)
		})
		if err != nil {
			return err
		}
		bar.Finish()

		fmt.Printf("Ingested %d files, %d chunks\n", result.FilesProcessed, result.ChunksCreated)
		for _, e := range result.Errors {
			log.Warn("ingestion error", "err", e)
		}
		if len(result.Errors) > 0 {
			return fmt.Errorf("%d files failed", len(result.Errors))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
