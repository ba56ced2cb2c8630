package ir

import (
	"armlift/internal/bitvector"
)

// Builder accumulates the statement sequence for one instruction. Its
// only mutation is append; statement order is exactly emission order.
// The builder also owns the per-translation label and temporary-variable
// counters, so sharing a translation context across goroutines is safe
// as long as each translation gets its own builder.
type Builder struct {
	stmts     []Stmt
	nextLabel int
	nextTemp  int
}

// NewBuilder returns a builder with the given capacity hint.
func NewBuilder(hint int) *Builder {
	return &Builder{stmts: make([]Stmt, 0, hint)}
}

// Append adds one statement.
func (b *Builder) Append(s Stmt) { b.stmts = append(b.stmts, s) }

// Len returns the number of statements emitted so far.
func (b *Builder) Len() int { return len(b.stmts) }

// Finish returns the accumulated statements. The builder must not be
// used afterwards.
func (b *Builder) Finish() []Stmt { return b.stmts }

// NewLabel issues a label unique within this builder.
func (b *Builder) NewLabel(name string) Label {
	l := Label{Name: name, ID: b.nextLabel}
	b.nextLabel++
	return l
}

// NewTemp issues a fresh temporary of width w.
func (b *Builder) NewTemp(w int) *Temp {
	t := &Temp{ID: b.nextTemp, Width: w}
	b.nextTemp++
	return t
}

// Statement emission helpers. Each appends one statement.

func (b *Builder) ISMark(addr uint64, length int) { b.Append(&ISMark{Addr: addr, Len: length}) }
func (b *Builder) IEMark(addr uint64)             { b.Append(&IEMark{Addr: addr}) }
func (b *Builder) Put(dst, src Expr)              { b.Append(&Put{Dst: dst, Src: src}) }
func (b *Builder) Store(addr, src Expr)           { b.Append(&Store{Addr: addr, Src: src}) }
func (b *Builder) LMark(l Label)                  { b.Append(&LMark{Label: l}) }
func (b *Builder) Jmp(l Label)                    { b.Append(&Jmp{Target: l}) }
func (b *Builder) CJmp(cond Expr, t, f Label)     { b.Append(&CJmp{Cond: cond, True: t, False: f}) }
func (b *Builder) InterJmp(pc *Var, target Expr)  { b.Append(&InterJmp{PC: pc, Target: target}) }
func (b *Builder) SideEffect(k SideEffectKind)    { b.Append(&SideEffect{Kind: k}) }

// Expression constructors. These are free functions; they never touch
// builder state.

// Num wraps a bit-vector constant.
func Num(v bitvector.BitVector) *Const { return &Const{Val: v} }

// NumU64 builds a constant from the low bits of v. The width must be
// valid; callers in the lifter only use architecturally fixed widths.
func NumU64(v uint64, w int) *Const {
	bv, err := bitvector.OfUint64(v, w)
	if err != nil {
		panic(err)
	}
	return &Const{Val: bv}
}

// NumI64 builds a sign-extended constant.
func NumI64(v int64, w int) *Const {
	bv, err := bitvector.OfInt64(v, w)
	if err != nil {
		panic(err)
	}
	return &Const{Val: bv}
}

// Num0 is the zero constant of width w.
func Num0(w int) *Const { return NumU64(0, w) }

// Num1 is the one constant of width w.
func Num1(w int) *Const { return NumU64(1, w) }

// B0 and B1 are the 1-bit false and true constants.
func B0() *Const { return &Const{Val: bitvector.F} }
func B1() *Const { return &Const{Val: bitvector.T} }

func Add(a, b Expr) Expr  { return &BinOp{Op: ADD, L: a, R: b} }
func Sub(a, b Expr) Expr  { return &BinOp{Op: SUB, L: a, R: b} }
func Mul(a, b Expr) Expr  { return &BinOp{Op: MUL, L: a, R: b} }
func UDiv(a, b Expr) Expr { return &BinOp{Op: UDIV, L: a, R: b} }
func SDiv(a, b Expr) Expr { return &BinOp{Op: SDIV, L: a, R: b} }
func URem(a, b Expr) Expr { return &BinOp{Op: UREM, L: a, R: b} }
func SRem(a, b Expr) Expr { return &BinOp{Op: SREM, L: a, R: b} }
func And(a, b Expr) Expr  { return &BinOp{Op: AND, L: a, R: b} }
func Or(a, b Expr) Expr   { return &BinOp{Op: OR, L: a, R: b} }
func Xor(a, b Expr) Expr  { return &BinOp{Op: XOR, L: a, R: b} }
func Shl(a, b Expr) Expr  { return &BinOp{Op: SHL, L: a, R: b} }
func Shr(a, b Expr) Expr  { return &BinOp{Op: SHR, L: a, R: b} }
func Sar(a, b Expr) Expr  { return &BinOp{Op: SAR, L: a, R: b} }

func Eq(a, b Expr) Expr  { return &RelOp{Op: EQ, L: a, R: b} }
func Ne(a, b Expr) Expr  { return &RelOp{Op: NE, L: a, R: b} }
func Gt(a, b Expr) Expr  { return &RelOp{Op: GT, L: a, R: b} }
func Ge(a, b Expr) Expr  { return &RelOp{Op: GE, L: a, R: b} }
func Lt(a, b Expr) Expr  { return &RelOp{Op: LT, L: a, R: b} }
func Le(a, b Expr) Expr  { return &RelOp{Op: LE, L: a, R: b} }
func SGt(a, b Expr) Expr { return &RelOp{Op: SGT, L: a, R: b} }
func SGe(a, b Expr) Expr { return &RelOp{Op: SGE, L: a, R: b} }
func SLt(a, b Expr) Expr { return &RelOp{Op: SLT, L: a, R: b} }
func SLe(a, b Expr) Expr { return &RelOp{Op: SLE, L: a, R: b} }

func Neg(x Expr) Expr { return &UnOp{Op: NEG, X: x} }
func Not(x Expr) Expr { return &UnOp{Op: NOT, X: x} }

// ZExt zero-extends x to width w. Extending to the same width is the
// identity.
func ZExt(w int, x Expr) Expr {
	if WidthOf(x) == w {
		return x
	}
	return &Cast{Kind: ZeroExt, Width: w, X: x}
}

// SExt sign-extends x to width w.
func SExt(w int, x Expr) Expr {
	if WidthOf(x) == w {
		return x
	}
	return &Cast{Kind: SignExt, Width: w, X: x}
}

// ExtractE takes w bits of x starting at bit pos.
func ExtractE(x Expr, w, pos int) Expr {
	if pos == 0 && WidthOf(x) == w {
		return x
	}
	return &Extract{X: x, Width: w, Pos: pos}
}

// ExtractLow takes the low w bits of x.
func ExtractLow(w int, x Expr) Expr { return ExtractE(x, w, 0) }

// ExtractHigh takes the high w bits of x.
func ExtractHigh(w int, x Expr) Expr { return ExtractE(x, w, WidthOf(x)-w) }

// ConcatE joins hi over lo.
func ConcatE(hi, lo Expr) Expr { return &Concat{Hi: hi, Lo: lo} }

// IteE selects on a 1-bit condition.
func IteE(cond, then, els Expr) Expr { return &Ite{Cond: cond, Then: then, Else: els} }

// LoadLE is a little-endian load of w bits at addr.
func LoadLE(w int, addr Expr) Expr { return &Load{Width: w, Addr: addr} }

// Undef is an architecturally-unpredictable value.
func Undef(w int, reason string) Expr {
	return &Undefined{Width: w, Kind: UndefUnpredictable, Reason: reason}
}

// Unimpl is a placeholder for subsemantics the lifter does not model.
func Unimpl(w int, reason string) Expr {
	return &Undefined{Width: w, Kind: UndefUnimplemented, Reason: reason}
}
