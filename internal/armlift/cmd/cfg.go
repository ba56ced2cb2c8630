package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"armlift/internal/cfgviz"
)

var cfgCmd = &cobra.Command{
	Use:   "cfg [layout.json]",
	Short: "Compute a CFG visual layout",
	Long: `Read a CFG layout request document, measure and place its nodes,
and write the layout response document to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read layout input: %w", err)
		}
		var in cfgviz.InputGraph
		if err := json.Unmarshal(data, &in); err != nil {
			return fmt.Errorf("parse layout input: %w", err)
		}
		out, err := cfgviz.Layout(&in)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(cfgCmd)
}
