package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"armlift/internal/cfgviz"
)

var schemaCmd = &cobra.Command{
	Use:    "schema",
	Short:  "Generate JSON schema for the CFG layout documents",
	Long:   "Generate JSON schema for the CFG layout input and output documents",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		reflector := new(jsonschema.Reflector)
		doc := map[string]interface{}{
			"input":  reflector.Reflect(&cfgviz.InputGraph{}),
			"output": reflector.Reflect(&cfgviz.OutputGraph{}),
		}
		bts, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal schema: %w", err)
		}
		fmt.Println(string(bts))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
