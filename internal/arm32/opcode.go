package arm32

import "fmt"

// Opcode enumerates the ARM/Thumb instructions the lifter understands.
// S-suffixed opcodes are the flag-setting forms.
type Opcode int

const (
	OpInvalid Opcode = iota

	// Data processing.
	OpADC
	OpADCS
	OpADD
	OpADDS
	OpADR
	OpAND
	OpANDS
	OpASR
	OpASRS
	OpBIC
	OpBICS
	OpCMN
	OpCMP
	OpEOR
	OpEORS
	OpLSL
	OpLSLS
	OpLSR
	OpLSRS
	OpMOV
	OpMOVS
	OpMOVT
	OpMOVW
	OpMVN
	OpMVNS
	OpORN
	OpORNS
	OpORR
	OpORRS
	OpROR
	OpRORS
	OpRRX
	OpRRXS
	OpRSB
	OpRSBS
	OpRSC
	OpRSCS
	OpSBC
	OpSBCS
	OpSUB
	OpSUBS
	OpTEQ
	OpTST

	// Multiply.
	OpMLA
	OpMLAS
	OpMLS
	OpMUL
	OpMULS
	OpSMLAL
	OpSMULL
	OpSMULLS
	OpUMLAL
	OpUMULL
	OpUMULLS

	// Miscellaneous.
	OpBKPT
	OpCLZ
	OpNOP
	OpRBIT
	OpREV
	OpREV16
	OpREVSH
	OpSEV
	OpSVC
	OpWFE
	OpWFI
	OpYIELD

	// Extension.
	OpSXTAB
	OpSXTAH
	OpSXTB
	OpSXTH
	OpUXTAB
	OpUXTAH
	OpUXTB
	OpUXTH

	// Bit field.
	OpBFC
	OpBFI
	OpSBFX
	OpUBFX

	// Status register transfer.
	OpMRS
	OpMSR

	// Branch.
	OpB
	OpBL
	OpBLX
	OpBX
	OpCBNZ
	OpCBZ
	OpTBB
	OpTBH

	// Load/store.
	OpLDR
	OpLDRB
	OpLDRD
	OpLDRH
	OpLDRSB
	OpLDRSH
	OpSTR
	OpSTRB
	OpSTRD
	OpSTRH

	// Block transfer.
	OpLDM
	OpLDMDA
	OpLDMDB
	OpLDMIB
	OpPOP
	OpPUSH
	OpSTM
	OpSTMDA
	OpSTMDB
	OpSTMIB

	// VFP transfer.
	OpVLDR
	OpVPOP
	OpVPUSH
	OpVSTR

	// Floating point lifted as opaque side effects.
	OpVADD
	OpVCMP
	OpVCVT
	OpVDIV
	OpVMLA
	OpVMLS
	OpVMOV
	OpVMUL
	OpVSUB

	numOpcodes
)

var opcodeNames = map[Opcode]string{
	OpADC: "ADC", OpADCS: "ADCS", OpADD: "ADD", OpADDS: "ADDS",
	OpADR: "ADR", OpAND: "AND", OpANDS: "ANDS", OpASR: "ASR",
	OpASRS: "ASRS", OpBIC: "BIC", OpBICS: "BICS", OpCMN: "CMN",
	OpCMP: "CMP", OpEOR: "EOR", OpEORS: "EORS", OpLSL: "LSL",
	OpLSLS: "LSLS", OpLSR: "LSR", OpLSRS: "LSRS", OpMOV: "MOV",
	OpMOVS: "MOVS", OpMOVT: "MOVT", OpMOVW: "MOVW", OpMVN: "MVN",
	OpMVNS: "MVNS", OpORN: "ORN", OpORNS: "ORNS", OpORR: "ORR",
	OpORRS: "ORRS", OpROR: "ROR", OpRORS: "RORS", OpRRX: "RRX",
	OpRRXS: "RRXS", OpRSB: "RSB", OpRSBS: "RSBS", OpRSC: "RSC",
	OpRSCS: "RSCS", OpSBC: "SBC", OpSBCS: "SBCS", OpSUB: "SUB",
	OpSUBS: "SUBS", OpTEQ: "TEQ", OpTST: "TST",
	OpMLA: "MLA", OpMLAS: "MLAS", OpMLS: "MLS", OpMUL: "MUL",
	OpMULS: "MULS", OpSMLAL: "SMLAL", OpSMULL: "SMULL",
	OpSMULLS: "SMULLS", OpUMLAL: "UMLAL", OpUMULL: "UMULL",
	OpUMULLS: "UMULLS",
	OpBKPT: "BKPT", OpCLZ: "CLZ", OpNOP: "NOP", OpRBIT: "RBIT",
	OpREV: "REV", OpREV16: "REV16", OpREVSH: "REVSH", OpSEV: "SEV",
	OpSVC: "SVC", OpWFE: "WFE", OpWFI: "WFI", OpYIELD: "YIELD",
	OpSXTAB: "SXTAB", OpSXTAH: "SXTAH", OpSXTB: "SXTB", OpSXTH: "SXTH",
	OpUXTAB: "UXTAB", OpUXTAH: "UXTAH", OpUXTB: "UXTB", OpUXTH: "UXTH",
	OpBFC: "BFC", OpBFI: "BFI", OpSBFX: "SBFX", OpUBFX: "UBFX",
	OpMRS: "MRS", OpMSR: "MSR",
	OpB: "B", OpBL: "BL", OpBLX: "BLX", OpBX: "BX", OpCBNZ: "CBNZ",
	OpCBZ: "CBZ", OpTBB: "TBB", OpTBH: "TBH",
	OpLDR: "LDR", OpLDRB: "LDRB", OpLDRD: "LDRD", OpLDRH: "LDRH",
	OpLDRSB: "LDRSB", OpLDRSH: "LDRSH", OpSTR: "STR", OpSTRB: "STRB",
	OpSTRD: "STRD", OpSTRH: "STRH",
	OpLDM: "LDM", OpLDMDA: "LDMDA", OpLDMDB: "LDMDB", OpLDMIB: "LDMIB",
	OpPOP: "POP", OpPUSH: "PUSH", OpSTM: "STM", OpSTMDA: "STMDA",
	OpSTMDB: "STMDB", OpSTMIB: "STMIB",
	OpVLDR: "VLDR", OpVPOP: "VPOP", OpVPUSH: "VPUSH", OpVSTR: "VSTR",
	OpVADD: "VADD", OpVCMP: "VCMP", OpVCVT: "VCVT", OpVDIV: "VDIV",
	OpVMLA: "VMLA", OpVMLS: "VMLS", OpVMOV: "VMOV", OpVMUL: "VMUL",
	OpVSUB: "VSUB",
}

func (op Opcode) String() string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}
