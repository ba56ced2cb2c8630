package arm32

import (
	"fmt"

	"armlift/internal/ir"
)

// PSRField names a field of a 32-bit program status register.
type PSRField int

const (
	PSRN PSRField = iota
	PSRZ
	PSRC
	PSRV
	PSRQ
	PSRIT10
	PSRJ
	PSRGE
	PSRIT72
	PSRE
	PSRA
	PSRI
	PSRF
	PSRT
	PSRM
	PSRCond // N..V as one 4-bit field
)

// psrLayout gives the low bit position and width of each field.
var psrLayout = map[PSRField]struct{ pos, width int }{
	PSRN:    {31, 1},
	PSRZ:    {30, 1},
	PSRC:    {29, 1},
	PSRV:    {28, 1},
	PSRQ:    {27, 1},
	PSRIT10: {25, 2},
	PSRJ:    {24, 1},
	PSRGE:   {16, 4},
	PSRIT72: {10, 6},
	PSRE:    {9, 1},
	PSRA:    {8, 1},
	PSRI:    {7, 1},
	PSRF:    {6, 1},
	PSRT:    {5, 1},
	PSRM:    {0, 5},
	PSRCond: {28, 4},
}

var psrFieldNames = [...]string{
	PSRN: "N", PSRZ: "Z", PSRC: "C", PSRV: "V", PSRQ: "Q",
	PSRIT10: "IT10", PSRJ: "J", PSRGE: "GE", PSRIT72: "IT72",
	PSRE: "E", PSRA: "A", PSRI: "I", PSRF: "F", PSRT: "T", PSRM: "M",
	PSRCond: "Cond",
}

func (f PSRField) String() string {
	if int(f) < len(psrFieldNames) {
		return psrFieldNames[f]
	}
	return fmt.Sprintf("PSRField(%d)", int(f))
}

// Pos returns the low bit position of f.
func (f PSRField) Pos() int { return psrLayout[f].pos }

// Mask returns the in-register mask of f as a 32-bit constant.
func (f PSRField) Mask() uint32 {
	l := psrLayout[f]
	return ((uint32(1) << uint(l.width)) - 1) << uint(l.pos)
}

// getPSR masks field f out of r, keeping it in place within 32 bits.
func getPSR(r *ir.Var, f PSRField) ir.Expr {
	return ir.And(r, ir.NumU64(uint64(f.Mask()), 32))
}

// psrBit extracts a single-bit field of r as a 1-bit expression.
func psrBit(r *ir.Var, f PSRField) ir.Expr {
	return ir.ExtractE(r, 1, f.Pos())
}

// enablePSR sets field f in r.
func enablePSR(b *ir.Builder, r *ir.Var, f PSRField) {
	b.Put(r, ir.Or(r, ir.NumU64(uint64(f.Mask()), 32)))
}

// disablePSR clears field f in r.
func disablePSR(b *ir.Builder, r *ir.Var, f PSRField) {
	b.Put(r, ir.And(r, ir.NumU64(uint64(^f.Mask()), 32)))
}

// setPSR stores e into field f of r: the field is cleared first, then
// the zero-extended value is shifted into position and OR-ed in.
func setPSR(b *ir.Builder, r *ir.Var, f PSRField, e ir.Expr) {
	cleared := ir.And(r, ir.NumU64(uint64(^f.Mask()), 32))
	moved := ir.Shl(ir.ZExt(32, e), ir.NumU64(uint64(f.Pos()), 32))
	b.Put(r, ir.Or(cleared, moved))
}
