package disasm

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/arch/arm/armasm"

	"armlift/internal/arm32"
)

// pcReadOffset is how far ahead of the instruction the PC reads:
// eight bytes in ARM mode, four in Thumb. PC-relative arguments are
// resolved against it.
func pcReadOffset(mode arm32.Mode) int64 {
	if mode == arm32.ModeThumb {
		return 4
	}
	return 8
}

// condSuffixes maps the mnemonic suffix tokens of armasm to condition
// codes.
var condSuffixes = map[string]arm32.Condition{
	"EQ": arm32.CondEQ, "NE": arm32.CondNE, "CS": arm32.CondCS,
	"HS": arm32.CondCS, "CC": arm32.CondCC, "LO": arm32.CondCC,
	"MI": arm32.CondMI, "PL": arm32.CondPL, "VS": arm32.CondVS,
	"VC": arm32.CondVC, "HI": arm32.CondHI, "LS": arm32.CondLS,
	"GE": arm32.CondGE, "LT": arm32.CondLT, "GT": arm32.CondGT,
	"LE": arm32.CondLE,
}

// opcodeNames maps the base mnemonic (with any .S folded in) to the
// lifter opcode.
var opcodeNames = map[string]arm32.Opcode{
	"ADC": arm32.OpADC, "ADC.S": arm32.OpADCS,
	"ADD": arm32.OpADD, "ADD.S": arm32.OpADDS,
	"ADR": arm32.OpADR,
	"AND": arm32.OpAND, "AND.S": arm32.OpANDS,
	"ASR": arm32.OpASR, "ASR.S": arm32.OpASRS,
	"B": arm32.OpB, "BL": arm32.OpBL, "BLX": arm32.OpBLX,
	"BX": arm32.OpBX, "BKPT": arm32.OpBKPT,
	"BFC": arm32.OpBFC, "BFI": arm32.OpBFI,
	"BIC": arm32.OpBIC, "BIC.S": arm32.OpBICS,
	"CBZ": arm32.OpCBZ, "CBNZ": arm32.OpCBNZ,
	"CLZ": arm32.OpCLZ,
	"CMN": arm32.OpCMN, "CMP": arm32.OpCMP,
	"EOR": arm32.OpEOR, "EOR.S": arm32.OpEORS,
	"LDM": arm32.OpLDM, "LDMIA": arm32.OpLDM,
	"LDMIB": arm32.OpLDMIB, "LDMDA": arm32.OpLDMDA,
	"LDMDB": arm32.OpLDMDB,
	"LDR": arm32.OpLDR, "LDRB": arm32.OpLDRB, "LDRD": arm32.OpLDRD,
	"LDRH": arm32.OpLDRH, "LDRSB": arm32.OpLDRSB,
	"LDRSH": arm32.OpLDRSH,
	"LSL": arm32.OpLSL, "LSL.S": arm32.OpLSLS,
	"LSR": arm32.OpLSR, "LSR.S": arm32.OpLSRS,
	"MLA": arm32.OpMLA, "MLA.S": arm32.OpMLAS, "MLS": arm32.OpMLS,
	"MOV": arm32.OpMOV, "MOV.S": arm32.OpMOVS,
	"MOVT": arm32.OpMOVT, "MOVW": arm32.OpMOVW,
	"MRS": arm32.OpMRS, "MSR": arm32.OpMSR,
	"MUL": arm32.OpMUL, "MUL.S": arm32.OpMULS,
	"MVN": arm32.OpMVN, "MVN.S": arm32.OpMVNS,
	"NOP": arm32.OpNOP,
	"ORR": arm32.OpORR, "ORR.S": arm32.OpORRS,
	"POP": arm32.OpPOP, "PUSH": arm32.OpPUSH,
	"RBIT": arm32.OpRBIT,
	"REV": arm32.OpREV, "REV16": arm32.OpREV16, "REVSH": arm32.OpREVSH,
	"ROR": arm32.OpROR, "ROR.S": arm32.OpRORS,
	"RRX": arm32.OpRRX, "RRX.S": arm32.OpRRXS,
	"RSB": arm32.OpRSB, "RSB.S": arm32.OpRSBS,
	"RSC": arm32.OpRSC, "RSC.S": arm32.OpRSCS,
	"SBC": arm32.OpSBC, "SBC.S": arm32.OpSBCS,
	"SBFX": arm32.OpSBFX, "UBFX": arm32.OpUBFX,
	"SEV": arm32.OpSEV,
	"SMLAL": arm32.OpSMLAL, "SMULL": arm32.OpSMULL,
	"SMULL.S": arm32.OpSMULLS,
	"STM": arm32.OpSTM, "STMIA": arm32.OpSTM,
	"STMIB": arm32.OpSTMIB, "STMDA": arm32.OpSTMDA,
	"STMDB": arm32.OpSTMDB,
	"STR": arm32.OpSTR, "STRB": arm32.OpSTRB, "STRD": arm32.OpSTRD,
	"STRH": arm32.OpSTRH,
	"SVC": arm32.OpSVC,
	"SXTAB": arm32.OpSXTAB, "SXTAH": arm32.OpSXTAH,
	"SXTB": arm32.OpSXTB, "SXTH": arm32.OpSXTH,
	"TBB": arm32.OpTBB, "TBH": arm32.OpTBH,
	"TEQ": arm32.OpTEQ, "TST": arm32.OpTST,
	"UMLAL": arm32.OpUMLAL, "UMULL": arm32.OpUMULL,
	"UMULL.S": arm32.OpUMULLS,
	"UXTAB": arm32.OpUXTAB, "UXTAH": arm32.OpUXTAH,
	"UXTB": arm32.OpUXTB, "UXTH": arm32.OpUXTH,
	"VLDR": arm32.OpVLDR, "VSTR": arm32.OpVSTR,
	"VPOP": arm32.OpVPOP, "VPUSH": arm32.OpVPUSH,
	"VADD": arm32.OpVADD, "VSUB": arm32.OpVSUB, "VMUL": arm32.OpVMUL,
	"VDIV": arm32.OpVDIV, "VMOV": arm32.OpVMOV, "VCMP": arm32.OpVCMP,
	"VCVT": arm32.OpVCVT, "VMLA": arm32.OpVMLA, "VMLS": arm32.OpVMLS,
	"WFE": arm32.OpWFE, "WFI": arm32.OpWFI, "YIELD": arm32.OpYIELD,
}

// splitOp takes an armasm op string like "ADD.S.EQ" apart into the
// lookup key and the condition.
func splitOp(op string) (string, arm32.Condition) {
	parts := strings.Split(op, ".")
	base := parts[0]
	cond := arm32.CondAL
	setFlags := false
	for _, p := range parts[1:] {
		if p == "S" {
			setFlags = true
			continue
		}
		if c, ok := condSuffixes[p]; ok {
			cond = c
		}
	}
	if setFlags {
		base += ".S"
	}
	return base, cond
}

// convReg maps an armasm register by name; the core registers map by
// value.
func convReg(r armasm.Reg) (arm32.Register, error) {
	if r <= armasm.R15 {
		return arm32.Register(r), nil
	}
	name := r.String()
	switch name {
	case "APSR":
		return arm32.APSR, nil
	case "CPSR":
		return arm32.CPSR, nil
	case "SPSR":
		return arm32.SPSR, nil
	case "FPSCR":
		return arm32.FPSCR, nil
	}
	if len(name) > 1 {
		n, err := strconv.Atoi(name[1:])
		if err == nil {
			switch name[0] {
			case 'S':
				if n <= 31 {
					return arm32.S0 + arm32.Register(n), nil
				}
			case 'D':
				if n <= 15 {
					return arm32.D0 + arm32.Register(n), nil
				}
			}
		}
	}
	return 0, fmt.Errorf("%w: %s", arm32.ErrInvalidRegister, name)
}

func convShift(s armasm.Shift) arm32.ShiftKind {
	switch s {
	case armasm.ShiftRight:
		return arm32.ShiftLSR
	case armasm.ShiftRightSigned:
		return arm32.ShiftASR
	case armasm.RotateRight:
		return arm32.ShiftROR
	case armasm.RotateRightExt:
		return arm32.ShiftRRX
	default:
		return arm32.ShiftLSL
	}
}

// convMem lowers an armasm memory argument. LDM-style modes are
// handled by the caller.
func convMem(m armasm.Mem, va uint64, mode arm32.Mode) (arm32.OprMemory, error) {
	var amode arm32.AddrMode
	switch m.Mode {
	case armasm.AddrOffset:
		amode = arm32.OffsetMode
	case armasm.AddrPreIndex:
		amode = arm32.PreIdxMode
	case armasm.AddrPostIndex:
		amode = arm32.PostIdxMode
	default:
		return arm32.OprMemory{}, fmt.Errorf("%w: addressing mode %d",
			arm32.ErrInvalidOperand, int(m.Mode))
	}
	base, err := convReg(m.Base)
	if err != nil {
		return arm32.OprMemory{}, err
	}
	if m.Sign == 0 {
		// Immediate offset. PC-relative loads become literal-mode
		// addresses resolved against the PC read value.
		if base == arm32.PC && amode == arm32.OffsetMode {
			return arm32.OprMemory{
				Mode:    arm32.LiteralMode,
				Literal: int64(va%4) + pcReadOffset(mode) + int64(m.Offset),
			}, nil
		}
		out := arm32.OprMemory{Mode: amode, Base: base, HasImm: true}
		if m.Offset < 0 {
			out.Sign = arm32.Minus
			out.Imm = int64(-m.Offset)
		} else {
			out.Imm = int64(m.Offset)
		}
		return out, nil
	}
	idx, err := convReg(m.Index)
	if err != nil {
		return arm32.OprMemory{}, err
	}
	out := arm32.OprMemory{Mode: amode, Base: base, Index: idx}
	if m.Sign < 0 {
		out.Sign = arm32.Minus
	}
	if m.Shift != armasm.ShiftLeft || m.Count != 0 {
		out.Shift = &arm32.OprShift{Kind: convShift(m.Shift), Amount: m.Count}
	}
	return out, nil
}

// convRegList expands the armasm bitmask list.
func convRegList(l armasm.RegList) arm32.OprRegList {
	var regs []arm32.Register
	for i := 0; i < 16; i++ {
		if l&(1<<uint(i)) != 0 {
			regs = append(regs, arm32.Register(i))
		}
	}
	return arm32.OprRegList{Regs: regs}
}

// convArg lowers one armasm argument.
func convArg(a armasm.Arg, va uint64, mode arm32.Mode, op arm32.Opcode) (arm32.Operand, error) {
	switch a := a.(type) {
	case armasm.Reg:
		r, err := convReg(a)
		if err != nil {
			return nil, err
		}
		switch {
		case r.IsSingle() || r.IsDouble():
			return arm32.OprSIMD{Reg: r}, nil
		case r >= arm32.APSR && r <= arm32.FPSCR:
			return arm32.OprSpecReg{Reg: r}, nil
		default:
			return arm32.OprReg{Reg: r}, nil
		}
	case armasm.Imm:
		return arm32.OprImm{Val: int64(a)}, nil
	case armasm.ImmAlt:
		return arm32.OprImm{Val: int64(a.Imm())}, nil
	case armasm.PCRel:
		// Branch targets are absolute by the time the lifter sees
		// them.
		return arm32.OprImm{Val: int64(va) + pcReadOffset(mode) + int64(a)}, nil
	case armasm.RegList:
		return convRegList(a), nil
	case armasm.RegShift:
		return nil, fmt.Errorf("%w: bare RegShift for %s",
			arm32.ErrInvalidOperand, op)
	case armasm.Mem:
		m, err := convMem(a, va, mode)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: argument %T", arm32.ErrInvalidOperand, a)
	}
}

// Decode decodes one instruction at va in the given operating mode and
// converts it for the lifter.
func Decode(mem []byte, va uint64, mode arm32.Mode) (Inst, *arm32.InstructionInfo, error) {
	amode := armasm.ModeARM
	if mode == arm32.ModeThumb {
		amode = armasm.ModeThumb
	}
	raw, err := armasm.Decode(mem, amode)
	if err != nil {
		return Inst{}, nil, fmt.Errorf("decode at %#x: %w", va, err)
	}
	text := raw.String()
	inst := Inst{
		VA:   va,
		Text: text,
		Op:   strings.ToLower(strings.SplitN(text, " ", 2)[0]),
		Enc:  raw.Enc,
		Len:  raw.Len,
	}
	base, cond := splitOp(raw.Op.String())
	op, ok := opcodeNames[base]
	if !ok {
		return inst, nil, fmt.Errorf("%w: %s", arm32.ErrNotImplemented, base)
	}

	info := &arm32.InstructionInfo{
		Addr:     va,
		NumBytes: raw.Len,
		Opcode:   op,
		Mode:     mode,
		Cond:     cond,
	}
	for _, a := range raw.Args {
		if a == nil {
			break
		}
		// Shifted-register data-processing operands split into the
		// register and a trailing shift operand.
		switch a := a.(type) {
		case armasm.RegShift:
			r, err := convReg(a.Reg)
			if err != nil {
				return inst, nil, err
			}
			if a.Shift == armasm.RotateRightExt {
				info.Operands = append(info.Operands,
					arm32.OprReg{Reg: r},
					arm32.OprShift{Kind: arm32.ShiftRRX, Amount: 1})
				continue
			}
			info.Operands = append(info.Operands,
				arm32.OprReg{Reg: r},
				arm32.OprShift{Kind: convShift(a.Shift), Amount: a.Count})
		case armasm.RegShiftReg:
			r, err := convReg(a.Reg)
			if err != nil {
				return inst, nil, err
			}
			rc, err := convReg(a.RegCount)
			if err != nil {
				return inst, nil, err
			}
			info.Operands = append(info.Operands,
				arm32.OprReg{Reg: r},
				arm32.OprRegShift{Kind: convShift(a.Shift), Reg: rc})
		case armasm.Mem:
			if a.Mode == armasm.AddrLDM || a.Mode == armasm.AddrLDM_WB {
				base, err := convReg(a.Base)
				if err != nil {
					return inst, nil, err
				}
				info.Operands = append(info.Operands, arm32.OprReg{Reg: base})
				info.WriteBack = a.Mode == armasm.AddrLDM_WB
				continue
			}
			o, err := convArg(a, va, mode, op)
			if err != nil {
				return inst, nil, err
			}
			info.Operands = append(info.Operands, o)
		default:
			o, err := convArg(a, va, mode, op)
			if err != nil {
				return inst, nil, err
			}
			info.Operands = append(info.Operands, o)
		}
	}
	return inst, info, nil
}

// rawDataInst formats an undecodable word so the stream stays visible
// instead of silently skipping bytes.
func rawDataInst(mem []byte, va uint64, stride int) Inst {
	if stride > len(mem) {
		stride = len(mem)
	}
	switch {
	case stride >= 4:
		enc := binary.LittleEndian.Uint32(mem)
		return Inst{VA: va, Text: fmt.Sprintf(".word 0x%08x", enc), Op: ".word", Enc: enc, Len: 4}
	case stride >= 2:
		enc := binary.LittleEndian.Uint16(mem)
		return Inst{VA: va, Text: fmt.Sprintf(".hword 0x%04x", enc), Op: ".hword", Enc: uint32(enc), Len: 2}
	default:
		return Inst{VA: va, Text: fmt.Sprintf(".byte 0x%02x", mem[0]), Op: ".byte", Enc: uint32(mem[0]), Len: 1}
	}
}

// DecodeStream decodes up to count instructions starting at va,
// advancing by each instruction's encoded length: always four bytes in
// ARM mode, two or four in Thumb. Undecodable words appear as raw data
// entries with no lifter info. A count of zero means the whole buffer.
func DecodeStream(mem []byte, va uint64, mode arm32.Mode, count int) (Stream, []*arm32.InstructionInfo) {
	stride := 4
	if mode == arm32.ModeThumb {
		stride = 2
	}
	var stream Stream
	var infos []*arm32.InstructionInfo
	for off := 0; off+stride <= len(mem); {
		if count > 0 && len(stream) >= count {
			break
		}
		inst, info, err := Decode(mem[off:], va+uint64(off), mode)
		if err != nil && inst.Len == 0 {
			inst = rawDataInst(mem[off:], va+uint64(off), stride)
			info = nil
		}
		stream = append(stream, inst)
		infos = append(infos, info) // nil when unconverted
		off += inst.Len
	}
	return stream, infos
}
