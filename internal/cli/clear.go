package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var clearForce bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all documents and vectors",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearForce {
			fmt.Print("This removes every ingested document. Continue? [y/N] ")
			reader := bufio.NewReader(os.Stdin)
			line, _ := reader.ReadString('\n')
			if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
				fmt.Println("Aborted")
				return nil
			}
		}

		p, err := buildPipeline(cfg, rootDir, false)
		if err != nil {
			return err
		}
		defer p.Close()

		if err := p.documents.Clear(); err != nil {
			return err
		}
		fmt.Println("Successfully cleared all documents")
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}
