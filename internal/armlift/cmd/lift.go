package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ianlancetaylor/demangle"
	"github.com/spf13/cobra"

	"armlift/internal/arm32"
	"armlift/internal/disasm"
	"armlift/internal/elfx"
	"armlift/internal/logging"
)

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// liftJSONInst is one instruction in --json output.
type liftJSONInst struct {
	Address    uint64   `json:"address"`
	Bytes      int      `json:"bytes"`
	Disasm     string   `json:"disasm"`
	Symbol     string   `json:"symbol,omitempty"`
	Statements []string `json:"statements,omitempty"`
	Error      string   `json:"error,omitempty"`
}

var liftCmd = &cobra.Command{
	Use:   "lift [file]",
	Short: "Decode and lift ARM machine code to IR",
	Long: `Decode ARM machine code from an ELF binary or a raw byte file and
print the lifted IR statements for each instruction.`,
	Example: `
# Lift the .text section of an ELF binary
armlift lift ./a.out

# Lift a raw dump loaded at a chosen origin
armlift lift --raw --org 0x8000 dump.bin

# Lift a Thumb-mode code region
armlift lift --thumb --raw --org 0x8001 dump.bin

# Emit JSON for tooling
armlift lift --json ./a.out
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		org, _ := cmd.Flags().GetUint64("org")
		count, _ := cmd.Flags().GetInt("count")
		raw, _ := cmd.Flags().GetBool("raw")
		thumb, _ := cmd.Flags().GetBool("thumb")
		asJSON, _ := cmd.Flags().GetBool("json")

		mode := arm32.ModeARM
		if thumb {
			mode = arm32.ModeThumb
			// A Thumb entry address may carry the interworking bit.
			org &^= 1
		}

		code, va, img, err := readCode(args[0], raw, org)
		if err != nil {
			return err
		}
		if img != nil {
			defer img.Close()
		}

		logs := logging.FromEnv()
		defer logs.Close()
		lg := logs.Component("lift")

		ctx := arm32.NewContext(mode)
		stream, infos := disasm.DecodeStream(code, va, mode, count)
		slog.Debug("decoded instruction stream", "count", len(stream), "mode", mode.String())

		var out []liftJSONInst
		for i, inst := range stream {
			entry := liftJSONInst{Address: inst.VA, Bytes: inst.Len, Disasm: inst.Text}
			if img != nil {
				if sym, ok := img.SymAt(inst.VA); ok && sym.Addr == inst.VA {
					entry.Symbol = demangle.Filter(sym.Name)
				}
			}
			if infos[i] == nil {
				logging.Instruction(lg, inst.VA, inst.Text).Warn("unsupported encoding")
				entry.Error = "unsupported encoding"
			} else if stmts, err := arm32.Translate(infos[i], ctx); err != nil {
				logging.Instruction(lg, inst.VA, inst.Text).Warn("lift failed", "err", err)
				entry.Error = err.Error()
			} else {
				for _, s := range stmts {
					entry.Statements = append(entry.Statements, s.String())
				}
			}
			out = append(out, entry)
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}
		for _, entry := range out {
			if entry.Symbol != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s:\n", entry.Symbol)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%8x  %s\n", entry.Address, entry.Disasm)
			if entry.Error != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "          ! %s\n", entry.Error)
				continue
			}
			for _, s := range entry.Statements {
				fmt.Fprintf(cmd.OutOrStdout(), "          | %s\n", s)
			}
		}
		return nil
	},
}

// readCode loads the bytes to lift: the .text of an ELF image, or the
// whole file when --raw is given or no ELF magic is found.
func readCode(path string, raw bool, org uint64) ([]byte, uint64, *elfx.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("read input: %w", err)
	}
	if raw || !bytes.HasPrefix(data, elfMagic) {
		return data, org, nil, nil
	}
	img, err := elfx.Open(path)
	if err != nil {
		return nil, 0, nil, err
	}
	text, ok := img.TextBytes()
	if !ok {
		img.Close()
		return nil, 0, nil, errors.New("no executable section found")
	}
	return text, img.Text.VA, img, nil
}

func init() {
	liftCmd.Flags().Uint64("org", 0, "Load address for raw input")
	liftCmd.Flags().Bool("thumb", false, "Decode and lift in Thumb mode")
	liftCmd.Flags().Int("count", 0, "Stop after N instructions (0 = all)")
	liftCmd.Flags().Bool("raw", false, "Treat input as raw machine code")
	liftCmd.Flags().Bool("json", false, "Emit JSON instead of text")
	rootCmd.AddCommand(liftCmd)
}
