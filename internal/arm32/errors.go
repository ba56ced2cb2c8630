package arm32

import "errors"

// Lifting errors. Architecturally UNPREDICTABLE or UNDEFINED inputs are
// not errors; those emit SideEffect or Undefined IR so the output itself
// carries the flag.
var (
	ErrInvalidOperand        = errors.New("arm32: operand tuple does not match opcode")
	ErrInvalidRegister       = errors.New("arm32: register outside the supported set")
	ErrInvalidOpcode         = errors.New("arm32: inconsistent opcode")
	ErrInvalidShiftAmount    = errors.New("arm32: invalid shift amount")
	ErrInvalidTargetArchMode = errors.New("arm32: branch target mode mismatch")
	ErrNotImplemented        = errors.New("arm32: opcode not implemented")
)
