// Package cfgviz holds the JSON data model of the CFG visualization
// boundary and computes node metrics and a simple layered layout. The
// lifter side of the pipeline supplies the addresses; rendering happens
// elsewhere.
package cfgviz

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TermTag classifies one colored span of a disassembly line.
type TermTag string

const (
	TagMnemonic TermTag = "Mnemonic"
	TagOperand0 TermTag = "Operand0"
	TagOperand1 TermTag = "Operand1"
	TagOperand2 TermTag = "Operand2"
	TagComment  TermTag = "Comment"
)

// DisasmLine is one input line of a node's disassembly.
type DisasmLine struct {
	Disasm  string `json:"Disasm" jsonschema:"description=Formatted disassembly text"`
	Comment string `json:"Comment,omitempty" jsonschema:"description=Optional trailing comment"`
}

// InputNode is a basic block as the producer hands it over.
type InputNode struct {
	Address     uint64       `json:"Address"`
	Disassembly []DisasmLine `json:"Disassembly"`
}

// InputEdge connects two basic blocks by address.
type InputEdge struct {
	From uint64 `json:"From"`
	To   uint64 `json:"To"`
	Type string `json:"Type"`
}

// InputGraph is the layout request document.
type InputGraph struct {
	Nodes []InputNode `json:"Nodes"`
	Edges []InputEdge `json:"Edges"`
	Root  uint64      `json:"Root"`
}

// Term is one tagged span, serialized as the pair [text, tag].
type Term struct {
	Text string
	Tag  TermTag
}

// MarshalJSON emits the ["text","tag"] pair form.
func (t Term) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{t.Text, string(t.Tag)})
}

// UnmarshalJSON reads the pair form back.
func (t *Term) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("term: %w", err)
	}
	t.Text, t.Tag = pair[0], TermTag(pair[1])
	return nil
}

// Pos is a point in layout coordinates.
type Pos struct {
	X float64 `json:"X"`
	Y float64 `json:"Y"`
}

// OutputNode is a measured, placed basic block.
type OutputNode struct {
	Address uint64   `json:"Address"`
	Terms   [][]Term `json:"Terms"`
	Width   float64  `json:"Width"`
	Height  float64  `json:"Height"`
	Pos     Pos      `json:"Pos"`
}

// OutputEdge is a routed edge.
type OutputEdge struct {
	Type       string `json:"Type"`
	Points     []Pos  `json:"Points"`
	IsBackEdge bool   `json:"IsBackEdge"`
}

// OutputGraph is the layout response document.
type OutputGraph struct {
	Nodes []OutputNode `json:"Nodes"`
	Edges []OutputEdge `json:"Edges"`
}

// Node metric constants: an approximated glyph width, a per-line
// height, and the box padding.
const (
	charWidth  = 7.5
	lineHeight = 14.0
	padding    = 4.0
)

// lineText is the full plain text of a disassembly line including the
// comment.
func lineText(l DisasmLine) string {
	if l.Comment != "" {
		return l.Disasm + " ; " + l.Comment
	}
	return l.Disasm
}

// measure computes the box size of a node from its line texts.
func measure(n InputNode) (w, h float64) {
	maxLen := 0
	for _, l := range n.Disassembly {
		if len(lineText(l)) > maxLen {
			maxLen = len(lineText(l))
		}
	}
	w = float64(maxLen)*charWidth + padding*2
	h = float64(len(n.Disassembly))*lineHeight + 4 + padding*2
	return w, h
}

// lineTerms splits one disassembly line into tagged spans: the
// mnemonic, up to three comma-separated operands, and the comment.
func lineTerms(l DisasmLine) []Term {
	terms := []Term{}
	fields := strings.SplitN(strings.TrimSpace(l.Disasm), " ", 2)
	if fields[0] != "" {
		terms = append(terms, Term{Text: fields[0], Tag: TagMnemonic})
	}
	if len(fields) == 2 {
		operandTags := []TermTag{TagOperand0, TagOperand1, TagOperand2}
		for i, op := range strings.SplitN(fields[1], ",", 3) {
			terms = append(terms, Term{Text: strings.TrimSpace(op), Tag: operandTags[i]})
		}
	}
	if l.Comment != "" {
		terms = append(terms, Term{Text: l.Comment, Tag: TagComment})
	}
	return terms
}
