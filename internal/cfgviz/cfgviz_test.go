package cfgviz

import (
	"encoding/json"
	"testing"
)

func TestMeasure(t *testing.T) {
	n := InputNode{
		Address: 0x8000,
		Disassembly: []DisasmLine{
			{Disasm: "mov r0, #5"},
			{Disasm: "bx lr"},
		},
	}
	w, h := measure(n)
	// Longest line is 10 characters.
	if want := 10*7.5 + 8; w != want {
		t.Errorf("width = %v, want %v", w, want)
	}
	if want := 2*14.0 + 4 + 8; h != want {
		t.Errorf("height = %v, want %v", h, want)
	}
}

func TestMeasureCountsComment(t *testing.T) {
	n := InputNode{Disassembly: []DisasmLine{
		{Disasm: "bl 0x8100", Comment: "call helper"},
	}}
	w, _ := measure(n)
	// "bl 0x8100 ; call helper" is 23 characters.
	if want := 23*7.5 + 8; w != want {
		t.Errorf("width = %v, want %v", w, want)
	}
}

func TestLineTerms(t *testing.T) {
	terms := lineTerms(DisasmLine{Disasm: "add r0, r1, r2", Comment: "sum"})
	want := []Term{
		{Text: "add", Tag: TagMnemonic},
		{Text: "r0", Tag: TagOperand0},
		{Text: "r1", Tag: TagOperand1},
		{Text: "r2", Tag: TagOperand2},
		{Text: "sum", Tag: TagComment},
	}
	if len(terms) != len(want) {
		t.Fatalf("got %d terms, want %d: %v", len(terms), len(want), terms)
	}
	for i := range want {
		if terms[i] != want[i] {
			t.Errorf("term %d = %v, want %v", i, terms[i], want[i])
		}
	}
}

func TestTermJSONRoundtrip(t *testing.T) {
	in := Term{Text: "mov", Tag: TagMnemonic}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `["mov","Mnemonic"]`; got != want {
		t.Errorf("marshal = %s, want %s", got, want)
	}
	var out Term
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("roundtrip = %v, want %v", out, in)
	}
}

func TestLayoutPlacesRowsAndBackEdges(t *testing.T) {
	in := &InputGraph{
		Root: 0x1000,
		Nodes: []InputNode{
			{Address: 0x1000, Disassembly: []DisasmLine{{Disasm: "cmp r0, #0"}}},
			{Address: 0x1008, Disassembly: []DisasmLine{{Disasm: "add r0, r0, #1"}}},
			{Address: 0x1010, Disassembly: []DisasmLine{{Disasm: "bx lr"}}},
		},
		Edges: []InputEdge{
			{From: 0x1000, To: 0x1008, Type: "CondTrue"},
			{From: 0x1000, To: 0x1010, Type: "CondFalse"},
			{From: 0x1008, To: 0x1000, Type: "Loop"},
		},
	}
	out, err := Layout(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Nodes) != 3 || len(out.Edges) != 3 {
		t.Fatalf("got %d nodes, %d edges", len(out.Nodes), len(out.Edges))
	}
	// Root on the first row, successors below it.
	if out.Nodes[0].Pos.Y != 0 {
		t.Errorf("root Y = %v, want 0", out.Nodes[0].Pos.Y)
	}
	if out.Nodes[1].Pos.Y <= out.Nodes[0].Pos.Y {
		t.Error("successor should be placed below the root")
	}
	// The loop edge climbs back up.
	for i, e := range out.Edges {
		wantBack := in.Edges[i].Type == "Loop"
		if e.IsBackEdge != wantBack {
			t.Errorf("edge %d IsBackEdge = %v, want %v", i, e.IsBackEdge, wantBack)
		}
		if len(e.Points) != 2 {
			t.Errorf("edge %d has %d points, want 2", i, len(e.Points))
		}
	}
}

func TestLayoutUnknownRoot(t *testing.T) {
	in := &InputGraph{Root: 0x9999, Nodes: []InputNode{{Address: 1}}}
	if _, err := Layout(in); err == nil {
		t.Error("unknown root should fail")
	}
}

func TestLayoutEmpty(t *testing.T) {
	out, err := Layout(&InputGraph{})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Nodes) != 0 || len(out.Edges) != 0 {
		t.Error("empty input should produce empty output")
	}
}
