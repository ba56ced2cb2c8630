package arm32

import (
	"strings"
	"testing"

	"armlift/internal/ir"
)

var shiftTestVal = &ir.Var{ID: 1, Name: "R1", Width: 32}
var shiftTestCarry = ir.Expr(&ir.Var{ID: 99, Name: "Cin", Width: 1})

func TestShiftCByZeroKeepsCarry(t *testing.T) {
	for _, kind := range []ShiftKind{ShiftLSL, ShiftLSR, ShiftASR} {
		res, carry, err := shiftC(shiftTestVal, 32, kind, 0, shiftTestCarry)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if res != ir.Expr(shiftTestVal) {
			t.Errorf("%s by zero should pass the value through, got %v", kind, res)
		}
		if carry != shiftTestCarry {
			t.Errorf("%s by zero should keep the carry-in, got %v", kind, carry)
		}
	}
}

func TestShiftCCarryPositions(t *testing.T) {
	tests := []struct {
		name   string
		kind   ShiftKind
		amount uint8
		carry  string
	}{
		// LSL by k takes bit (width-k); LSR/ASR by k take bit (k-1).
		{"LSL 1", ShiftLSL, 1, "extract:1@31(R1)"},
		{"LSL 4", ShiftLSL, 4, "extract:1@28(R1)"},
		{"LSR 1", ShiftLSR, 1, "extract:1@0(R1)"},
		{"LSR 8", ShiftLSR, 8, "extract:1@7(R1)"},
		{"ASR 3", ShiftASR, 3, "extract:1@2(R1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, carry, err := shiftC(shiftTestVal, 32, tt.kind, tt.amount, shiftTestCarry)
			if err != nil {
				t.Fatal(err)
			}
			if got := carry.String(); got != tt.carry {
				t.Errorf("carry = %q, want %q", got, tt.carry)
			}
		})
	}
}

func TestShiftCRorCarryIsTopBit(t *testing.T) {
	res, carry, err := shiftC(shiftTestVal, 32, ShiftROR, 8, shiftTestCarry)
	if err != nil {
		t.Fatal(err)
	}
	want := ir.ExtractE(res, 1, 31).String()
	if carry.String() != want {
		t.Errorf("ROR carry = %q, want top bit of result %q", carry, want)
	}
}

func TestShiftCRRX(t *testing.T) {
	res, carry, err := shiftC(shiftTestVal, 32, ShiftRRX, 1, shiftTestCarry)
	if err != nil {
		t.Fatal(err)
	}
	if got := ir.WidthOf(res); got != 32 {
		t.Errorf("RRX result width = %d, want 32", got)
	}
	if !strings.HasPrefix(res.String(), "concat(Cin") {
		t.Errorf("RRX result %q should rotate the carry in at the top", res)
	}
	if got, want := carry.String(), "extract:1@0(R1)"; got != want {
		t.Errorf("RRX carry = %q, want bit 0 of input %q", got, want)
	}
}

func TestShiftCOverWidth(t *testing.T) {
	if _, _, err := shiftC(shiftTestVal, 32, ShiftLSL, 33, shiftTestCarry); err == nil {
		t.Error("LSL beyond the width should fail")
	}
}

func TestShiftRegAmountGuards(t *testing.T) {
	amount := ir.Expr(&ir.Var{ID: 2, Name: "R2", Width: 32})
	res, carry, err := shiftCForRegAmount(shiftTestVal, 32, ShiftLSR, amount, shiftTestCarry)
	if err != nil {
		t.Fatal(err)
	}
	// Outer guard: amount == 0 passes the value and carry through.
	s := res.String()
	if !strings.HasPrefix(s, "ite((R2 == 0x0:32), R1,") {
		t.Errorf("result %q should guard amount == 0", s)
	}
	// Inner guard: positive amounts shift, anything else is undefined.
	if !strings.Contains(s, "undef:32") {
		t.Errorf("result %q should guard non-positive amounts with undef", s)
	}
	// Runtime LSR carry is bit (amount-1), expressed as a shift.
	cs := carry.String()
	if !strings.Contains(cs, "(R1 >> (R2 - 0x1:32))") {
		t.Errorf("carry %q should take bit (amount-1)", cs)
	}
	if !strings.HasPrefix(cs, "ite((R2 == 0x0:32), Cin,") {
		t.Errorf("carry %q should keep carry-in for amount zero", cs)
	}
}

func TestShiftRegAmountRRXRejected(t *testing.T) {
	amount := ir.Num1(32)
	if _, _, err := shiftCForRegAmount(shiftTestVal, 32, ShiftRRX, amount, shiftTestCarry); err == nil {
		t.Error("RRX with a register amount should fail")
	}
}

func TestShiftDiscardsCarry(t *testing.T) {
	got, err := shift(shiftTestVal, 32, ShiftLSL, 2, shiftTestCarry)
	if err != nil {
		t.Fatal(err)
	}
	want, _, err := shiftC(shiftTestVal, 32, ShiftLSL, 2, shiftTestCarry)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != want.String() {
		t.Errorf("shift = %q, want %q", got, want)
	}
}
