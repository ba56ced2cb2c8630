package arm32

import "fmt"

// Register identifies an architectural register.
type Register int

const (
	R0 Register = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	SB // R9
	SL // R10
	FP // R11
	IP // R12
	SP
	LR
	PC
	APSR
	CPSR
	SPSR
	FPSCR
	S0 // VFP single-precision registers S0-S31
	S31 = S0 + 31
)

const (
	D0  = S31 + 1 + iota // VFP double-precision registers D0-D15
	D15 = D0 + 15
)

const numRegisters = int(D15) + 1

var regNames = map[Register]string{
	R0: "R0", R1: "R1", R2: "R2", R3: "R3", R4: "R4", R5: "R5",
	R6: "R6", R7: "R7", R8: "R8", SB: "SB", SL: "SL", FP: "FP",
	IP: "IP", SP: "SP", LR: "LR", PC: "PC",
	APSR: "APSR", CPSR: "CPSR", SPSR: "SPSR", FPSCR: "FPSCR",
}

func (r Register) String() string {
	if n, ok := regNames[r]; ok {
		return n
	}
	if r >= S0 && r <= S31 {
		return fmt.Sprintf("S%d", int(r-S0))
	}
	if r >= D0 && r <= D15 {
		return fmt.Sprintf("D%d", int(r-D0))
	}
	return fmt.Sprintf("Register(%d)", int(r))
}

// Number returns the ARM register number used in register-list masks:
// R0..R7 = 0..7, R8 = 8, SB = 9, SL = 10, FP = 11, IP = 12, SP = 13,
// LR = 14, PC = 15. Other registers have no number.
func (r Register) Number() (int, bool) {
	if r >= R0 && r <= PC {
		return int(r), true
	}
	return 0, false
}

// IsGPR reports whether r is one of the sixteen core registers.
func (r Register) IsGPR() bool { return r >= R0 && r <= PC }

// IsSingle reports whether r is a single-precision VFP register.
func (r Register) IsSingle() bool { return r >= S0 && r <= S31 }

// IsDouble reports whether r is a double-precision VFP register.
func (r Register) IsDouble() bool { return r >= D0 && r <= D15 }

// BitWidth returns the architectural width of r.
func (r Register) BitWidth() int {
	if r.IsDouble() {
		return 64
	}
	return 32
}

// RegFromNumber maps an ARM register number back to a Register.
func RegFromNumber(n int) (Register, error) {
	if n < 0 || n > 15 {
		return 0, fmt.Errorf("%w: number %d", ErrInvalidRegister, n)
	}
	return Register(n), nil
}
