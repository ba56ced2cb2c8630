// Package disasm decodes raw ARM machine code into the lifter's
// instruction representation using golang.org/x/arch. It is the bridge
// between bytes on disk and arm32.InstructionInfo; encodings the
// converter does not map surface as arm32.ErrNotImplemented so callers
// can report and skip them.
package disasm

// Inst is a simplified decoded instruction.
type Inst struct {
	VA   uint64 // virtual address of instruction
	Text string // formatted disassembly string
	Op   string // mnemonic in lowercase
	Enc  uint32 // raw encoding
	Len  int    // encoding length in bytes
}

// Stream is a linear sequence of instructions.
type Stream []Inst
