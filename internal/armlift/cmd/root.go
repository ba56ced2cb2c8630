package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"armlift/internal/armlift/log"
)

var rootCmd = &cobra.Command{
	Use:   "armlift",
	Short: "Lift ARM32 machine code to IR",
	Long: `armlift translates decoded ARM/Thumb instructions into a low-level
intermediate representation: explicit register reads and writes, typed
memory accesses, arithmetic expression trees, and intra-instruction
control flow. Downstream data-flow and decompilation stages consume the
output.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		jsonLog, _ := cmd.Flags().GetBool("log-json")
		log.Setup(log.Options{Debug: debug, JSON: jsonLog})
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON records")
}

// Execute runs the root command through fang for the enhanced CLI
// experience.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
