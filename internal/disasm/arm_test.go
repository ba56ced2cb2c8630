package disasm

import (
	"strings"
	"testing"

	"golang.org/x/arch/arm/armasm"

	"armlift/internal/arm32"
)

func TestSplitOp(t *testing.T) {
	tests := []struct {
		in   string
		base string
		cond arm32.Condition
	}{
		{"ADD", "ADD", arm32.CondAL},
		{"ADD.EQ", "ADD", arm32.CondEQ},
		{"ADD.S", "ADD.S", arm32.CondAL},
		{"ADD.S.NE", "ADD.S", arm32.CondNE},
		{"SUB.GT.S", "SUB.S", arm32.CondGT},
		{"B.LS", "B", arm32.CondLS},
		{"MOV.HS", "MOV", arm32.CondCS},
		{"MOV.LO", "MOV", arm32.CondCC},
	}
	for _, tt := range tests {
		base, cond := splitOp(tt.in)
		if base != tt.base || cond != tt.cond {
			t.Errorf("splitOp(%q) = (%q, %v), want (%q, %v)",
				tt.in, base, cond, tt.base, tt.cond)
		}
	}
}

func TestOpcodeNameTable(t *testing.T) {
	tests := []struct {
		key  string
		want arm32.Opcode
	}{
		{"ADD", arm32.OpADD},
		{"ADD.S", arm32.OpADDS},
		{"LDMIA", arm32.OpLDM},
		{"STMDB", arm32.OpSTMDB},
		{"VLDR", arm32.OpVLDR},
	}
	for _, tt := range tests {
		if got := opcodeNames[tt.key]; got != tt.want {
			t.Errorf("opcodeNames[%q] = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestConvReg(t *testing.T) {
	r, err := convReg(armasm.R7)
	if err != nil || r != arm32.R7 {
		t.Errorf("convReg(R7) = %v, %v", r, err)
	}
	sp, err := convReg(armasm.SP)
	if err != nil || sp != arm32.SP {
		t.Errorf("convReg(SP) = %v, %v", sp, err)
	}
}

func TestConvRegList(t *testing.T) {
	l := convRegList(armasm.RegList(1<<4 | 1<<5 | 1<<14))
	want := []arm32.Register{arm32.R4, arm32.R5, arm32.LR}
	if len(l.Regs) != len(want) {
		t.Fatalf("got %v, want %v", l.Regs, want)
	}
	for i := range want {
		if l.Regs[i] != want[i] {
			t.Errorf("reg %d = %v, want %v", i, l.Regs[i], want[i])
		}
	}
}

func TestConvMem(t *testing.T) {
	m, err := convMem(armasm.Mem{
		Base: armasm.R1, Mode: armasm.AddrPreIndex, Offset: -8,
	}, 0x8000, arm32.ModeARM)
	if err != nil {
		t.Fatal(err)
	}
	if m.Mode != arm32.PreIdxMode || m.Base != arm32.R1 ||
		!m.HasImm || m.Imm != 8 || m.Sign != arm32.Minus {
		t.Errorf("convMem = %+v", m)
	}

	lit, err := convMem(armasm.Mem{
		Base: armasm.PC, Mode: armasm.AddrOffset, Offset: 12,
	}, 0x8000, arm32.ModeARM)
	if err != nil {
		t.Fatal(err)
	}
	if lit.Mode != arm32.LiteralMode {
		t.Errorf("PC-relative load should be literal mode, got %+v", lit)
	}
	// align(0x8000,4) + literal must equal PC read (0x8008) + 12.
	if lit.Literal != 8+12 {
		t.Errorf("literal = %d, want 20", lit.Literal)
	}

	// Thumb reads PC only four bytes ahead.
	litT, err := convMem(armasm.Mem{
		Base: armasm.PC, Mode: armasm.AddrOffset, Offset: 12,
	}, 0x8000, arm32.ModeThumb)
	if err != nil {
		t.Fatal(err)
	}
	if litT.Literal != 4+12 {
		t.Errorf("thumb literal = %d, want 16", litT.Literal)
	}

	idx, err := convMem(armasm.Mem{
		Base: armasm.R2, Mode: armasm.AddrOffset, Sign: 1,
		Index: armasm.R3, Shift: armasm.ShiftLeft, Count: 2,
	}, 0x8000, arm32.ModeARM)
	if err != nil {
		t.Fatal(err)
	}
	if idx.Index != arm32.R3 || idx.Shift == nil ||
		idx.Shift.Kind != arm32.ShiftLSL || idx.Shift.Amount != 2 {
		t.Errorf("convMem register offset = %+v", idx)
	}
}

func TestDecodeAddInstruction(t *testing.T) {
	// E0810002 = ADD R0, R1, R2 (condition AL).
	code := []byte{0x02, 0x00, 0x81, 0xE0}
	inst, info, err := Decode(code, 0x8000, arm32.ModeARM)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if inst.Len != 4 || inst.VA != 0x8000 {
		t.Errorf("inst = %+v", inst)
	}
	if info.Opcode != arm32.OpADD {
		t.Errorf("opcode = %v, want ADD", info.Opcode)
	}
	if info.Cond != arm32.CondAL {
		t.Errorf("cond = %v, want AL", info.Cond)
	}
	if info.Mode != arm32.ModeARM {
		t.Errorf("mode = %v, want ARM", info.Mode)
	}
	if len(info.Operands) != 3 {
		t.Fatalf("operands = %v", info.Operands)
	}
}

func TestPCReadOffset(t *testing.T) {
	if got := pcReadOffset(arm32.ModeARM); got != 8 {
		t.Errorf("ARM pc read offset = %d, want 8", got)
	}
	if got := pcReadOffset(arm32.ModeThumb); got != 4 {
		t.Errorf("Thumb pc read offset = %d, want 4", got)
	}
}

func TestRawDataInst(t *testing.T) {
	word := rawDataInst([]byte{0x0D, 0xF0, 0xFE, 0xCA}, 0x100, 4)
	if word.Len != 4 || word.Enc != 0xCAFEF00D || word.Text != ".word 0xcafef00d" {
		t.Errorf("word entry = %+v", word)
	}
	half := rawDataInst([]byte{0x34, 0x12}, 0x200, 2)
	if half.Len != 2 || half.Enc != 0x1234 || half.Text != ".hword 0x1234" {
		t.Errorf("hword entry = %+v", half)
	}
}

func TestDecodeStreamStride(t *testing.T) {
	// Two ARM ADDs back to back advance by four each.
	code := []byte{
		0x02, 0x00, 0x81, 0xE0,
		0x02, 0x00, 0x81, 0xE0,
	}
	stream, infos := DecodeStream(code, 0x8000, arm32.ModeARM, 0)
	if len(stream) != 2 || len(infos) != 2 {
		t.Fatalf("got %d entries, want 2", len(stream))
	}
	if stream[1].VA != 0x8004 {
		t.Errorf("second VA = %#x, want 0x8004", stream[1].VA)
	}

	// Thumb streams never silently drop bytes: undecodable halfwords
	// come back as raw data entries on a two-byte stride.
	tstream, tinfos := DecodeStream(code[:4], 0x9000, arm32.ModeThumb, 0)
	if len(tstream) == 0 {
		t.Fatal("thumb stream should not be empty")
	}
	total := 0
	for i, inst := range tstream {
		if inst.Len != 2 && inst.Len != 4 {
			t.Errorf("entry %d length = %d, want 2 or 4", i, inst.Len)
		}
		if tinfos[i] == nil && !strings.HasPrefix(inst.Op, ".") {
			t.Errorf("entry %d has no info but is not raw data: %+v", i, inst)
		}
		total += inst.Len
	}
	if total != 4 {
		t.Errorf("thumb stream covered %d bytes, want 4", total)
	}
}
