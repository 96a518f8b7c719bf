package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPipeline(cfg, rootDir, false)
		if err != nil {
			return err
		}
		defer p.Close()

		docs, authoritative, err := p.documents.List()
		if err != nil {
			return err
		}

		if len(docs) == 0 {
			fmt.Println("No documents found")
			return nil
		}

		for _, doc := range docs {
			when := "-"
			if !doc.UploadTime.IsZero() {
				when = doc.UploadTime.Format(time.RFC3339)
			}
			fmt.Printf("%-16s  %-40s  %5d chunks  %s\n", doc.ID, doc.Filename, doc.ChunkCount, when)
		}
		if !authoritative {
			fmt.Println("\n(listing reconstructed from vector store, upload times unavailable)")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
