package ir

import (
	"testing"
)

func TestWidthOf(t *testing.T) {
	r0 := &Var{ID: 0, Name: "R0", Width: 32}
	tests := []struct {
		name string
		expr Expr
		want int
	}{
		{"const", Num0(32), 32},
		{"var", r0, 32},
		{"temp", &Temp{ID: 1, Width: 64}, 64},
		{"binop", Add(r0, Num1(32)), 32},
		{"relop", Eq(r0, Num0(32)), 1},
		{"unop", Not(r0), 32},
		{"zext", ZExt(64, r0), 64},
		{"sext", SExt(64, r0), 64},
		{"extract", ExtractE(r0, 8, 8), 8},
		{"extract low", ExtractLow(16, r0), 16},
		{"extract high", ExtractHigh(1, r0), 1},
		{"concat", ConcatE(r0, r0), 64},
		{"ite", IteE(B1(), r0, Num0(32)), 32},
		{"load", LoadLE(16, r0), 16},
		{"undef", Undef(32, "x"), 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WidthOf(tt.expr); got != tt.want {
				t.Errorf("WidthOf = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExtIdentity(t *testing.T) {
	r0 := &Var{ID: 0, Name: "R0", Width: 32}
	if ZExt(32, r0) != Expr(r0) {
		t.Error("ZExt to the same width should be the identity")
	}
	if SExt(32, r0) != Expr(r0) {
		t.Error("SExt to the same width should be the identity")
	}
	if ExtractE(r0, 32, 0) != Expr(r0) {
		t.Error("full-width extract at zero should be the identity")
	}
}

func TestBuilderOrdering(t *testing.T) {
	b := NewBuilder(4)
	r0 := &Var{ID: 0, Name: "R0", Width: 32}
	b.ISMark(0x1000, 4)
	b.Put(r0, Num0(32))
	b.Store(r0, Num1(32))
	b.IEMark(0x1004)

	stmts := b.Finish()
	if len(stmts) != 4 {
		t.Fatalf("got %d statements, want 4", len(stmts))
	}
	if _, ok := stmts[0].(*ISMark); !ok {
		t.Errorf("first statement is %T, want *ISMark", stmts[0])
	}
	if _, ok := stmts[1].(*Put); !ok {
		t.Errorf("second statement is %T, want *Put", stmts[1])
	}
	if _, ok := stmts[2].(*Store); !ok {
		t.Errorf("third statement is %T, want *Store", stmts[2])
	}
	if _, ok := stmts[3].(*IEMark); !ok {
		t.Errorf("last statement is %T, want *IEMark", stmts[3])
	}
}

func TestBuilderLabelsUnique(t *testing.T) {
	b := NewBuilder(0)
	l1 := b.NewLabel("x")
	l2 := b.NewLabel("x")
	if l1.ID == l2.ID {
		t.Error("labels with the same name must still get distinct ids")
	}
}

func TestBuilderTempsUnique(t *testing.T) {
	b := NewBuilder(0)
	seen := map[int]bool{}
	for i := 0; i < 10; i++ {
		tmp := b.NewTemp(32)
		if seen[tmp.ID] {
			t.Fatalf("temporary id %d issued twice", tmp.ID)
		}
		seen[tmp.ID] = true
	}
}

func TestTempsIndependentAcrossBuilders(t *testing.T) {
	// Each translation owns its temp counter; two builders may reuse
	// ids without interfering.
	a := NewBuilder(0)
	b := NewBuilder(0)
	ta := a.NewTemp(32)
	tb := b.NewTemp(32)
	if ta.ID != tb.ID {
		t.Errorf("fresh builders should start temp ids alike: %d vs %d", ta.ID, tb.ID)
	}
}

func TestStmtStrings(t *testing.T) {
	r0 := &Var{ID: 0, Name: "R0", Width: 32}
	put := &Put{Dst: r0, Src: NumU64(5, 32)}
	if got, want := put.String(), "R0 := 0x5:32"; got != want {
		t.Errorf("Put.String() = %q, want %q", got, want)
	}
	se := &SideEffect{Kind: SideUnsupportedFP}
	if got, want := se.String(), "sideeffect UnsupportedFP"; got != want {
		t.Errorf("SideEffect.String() = %q, want %q", got, want)
	}
}

func TestUndefKinds(t *testing.T) {
	u := Undef(32, "base in register list").(*Undefined)
	if u.Kind != UndefUnpredictable {
		t.Error("Undef should tag UndefUnpredictable")
	}
	n := Unimpl(32, "saturation").(*Undefined)
	if n.Kind != UndefUnimplemented {
		t.Error("Unimpl should tag UndefUnimplemented")
	}
}
