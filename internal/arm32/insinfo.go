package arm32

import "fmt"

// Mode is the instruction-set operating mode.
type Mode int

const (
	ModeARM Mode = iota
	ModeThumb
)

func (m Mode) String() string {
	if m == ModeThumb {
		return "Thumb"
	}
	return "ARM"
}

// Condition is an ARM condition code.
type Condition int

const (
	CondAL Condition = iota
	CondEQ
	CondNE
	CondCS
	CondCC
	CondMI
	CondPL
	CondVS
	CondVC
	CondHI
	CondLS
	CondGE
	CondLT
	CondGT
	CondLE
	CondUN // unconditional (NV slot on ARMv7)
)

var condNames = [...]string{
	CondAL: "AL", CondEQ: "EQ", CondNE: "NE", CondCS: "CS",
	CondCC: "CC", CondMI: "MI", CondPL: "PL", CondVS: "VS",
	CondVC: "VC", CondHI: "HI", CondLS: "LS", CondGE: "GE",
	CondLT: "LT", CondGT: "GT", CondLE: "LE", CondUN: "UN",
}

func (c Condition) String() string {
	if int(c) < len(condNames) {
		return condNames[c]
	}
	return fmt.Sprintf("Cond(%d)", int(c))
}

// ShiftKind enumerates the shift/rotate operators attached to register
// operands.
type ShiftKind int

const (
	ShiftLSL ShiftKind = iota
	ShiftLSR
	ShiftASR
	ShiftROR
	ShiftRRX
)

var shiftNames = [...]string{"LSL", "LSR", "ASR", "ROR", "RRX"}

func (s ShiftKind) String() string {
	if int(s) < len(shiftNames) {
		return shiftNames[s]
	}
	return fmt.Sprintf("Shift(%d)", int(s))
}

// Sign is the direction of a memory offset.
type Sign int

const (
	Plus Sign = iota
	Minus
)

// Operand is one decoded operand. The closed set of implementations is
// OprReg, OprSpecReg, OprImm, OprRegList, OprShift, OprRegShift,
// OprMemory, and OprSIMD.
type Operand interface{ operand() }

func (OprReg) operand()      {}
func (OprSpecReg) operand()  {}
func (OprImm) operand()      {}
func (OprRegList) operand()  {}
func (OprShift) operand()    {}
func (OprRegShift) operand() {}
func (OprMemory) operand()   {}
func (OprSIMD) operand()     {}

// OprReg is a plain register operand.
type OprReg struct{ Reg Register }

// OprSpecReg is a status register operand with an optional field mask
// suffix (the "_fsxc" part of MSR operands).
type OprSpecReg struct {
	Reg   Register
	Flags string
}

// OprImm is an immediate operand.
type OprImm struct{ Val int64 }

// OprRegList is a register list for block transfers.
type OprRegList struct{ Regs []Register }

// OprShift is a shift of the preceding register operand by a constant
// amount.
type OprShift struct {
	Kind   ShiftKind
	Amount uint8
}

// OprRegShift is a shift of the preceding register operand by the low
// byte of Reg.
type OprRegShift struct {
	Kind ShiftKind
	Reg  Register
}

// AddrMode distinguishes the load/store addressing forms.
type AddrMode int

const (
	// OffsetMode accesses base±offset without changing the base.
	OffsetMode AddrMode = iota
	// PreIdxMode accesses base±offset and writes it back to the base.
	PreIdxMode
	// PostIdxMode accesses the base and then writes base±offset back.
	PostIdxMode
	// LiteralMode is a PC-relative access.
	LiteralMode
)

// OprMemory is a memory addressing operand.
type OprMemory struct {
	Mode AddrMode

	// Literal address offset, used when Mode == LiteralMode.
	Literal int64

	Base Register
	Sign Sign

	// Exactly one of the following offset forms applies; HasImm selects
	// the immediate form.
	HasImm bool
	Imm    int64
	Index  Register
	Shift  *OprShift // optional shift of Index
}

// OprSIMD is a SIMD/VFP register operand.
type OprSIMD struct{ Reg Register }

// InstructionInfo is the decoder's output for one instruction. It is
// borrowed read-only by the lifter.
type InstructionInfo struct {
	Addr     uint64
	NumBytes int
	Opcode   Opcode
	Mode     Mode
	Cond     Condition
	Operands []Operand // zero to four

	// WriteBack is the W bit of block transfers; PUSH and POP set it
	// implicitly.
	WriteBack bool
}

func (ins *InstructionInfo) String() string {
	if ins.Cond == CondAL || ins.Cond == CondUN {
		return fmt.Sprintf("%x: %s", ins.Addr, ins.Opcode)
	}
	return fmt.Sprintf("%x: %s.%s", ins.Addr, ins.Opcode, ins.Cond)
}
