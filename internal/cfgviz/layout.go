package cfgviz

import (
	"fmt"
	"sort"
)

// Layered layout: nodes are assigned depths by breadth-first traversal
// from the root, each depth becomes a row, and rows are placed top to
// bottom. Edges pointing to an equal or shallower depth are back edges.
// Nodes and edges stay plain records indexed by position; there is no
// vertex object graph.

const (
	rowGap = 40.0
	colGap = 24.0
)

// Layout measures and places the input graph.
func Layout(in *InputGraph) (*OutputGraph, error) {
	if len(in.Nodes) == 0 {
		return &OutputGraph{Nodes: []OutputNode{}, Edges: []OutputEdge{}}, nil
	}
	idx := make(map[uint64]int, len(in.Nodes))
	for i, n := range in.Nodes {
		idx[n.Address] = i
	}
	if _, ok := idx[in.Root]; !ok {
		return nil, fmt.Errorf("cfgviz: root %#x not among nodes", in.Root)
	}
	succ := make([][]int, len(in.Nodes))
	for _, e := range in.Edges {
		f, okF := idx[e.From]
		t, okT := idx[e.To]
		if !okF || !okT {
			return nil, fmt.Errorf("cfgviz: edge %#x -> %#x references unknown node", e.From, e.To)
		}
		succ[f] = append(succ[f], t)
	}

	// Depth assignment by BFS; disconnected nodes go below everything
	// reached from the root.
	depth := make([]int, len(in.Nodes))
	for i := range depth {
		depth[i] = -1
	}
	queue := []int{idx[in.Root]}
	depth[idx[in.Root]] = 0
	maxDepth := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, s := range succ[cur] {
			if depth[s] == -1 {
				depth[s] = depth[cur] + 1
				if depth[s] > maxDepth {
					maxDepth = depth[s]
				}
				queue = append(queue, s)
			}
		}
	}
	for i := range depth {
		if depth[i] == -1 {
			maxDepth++
			depth[i] = maxDepth
		}
	}

	// Measure every node, then place rows.
	out := &OutputGraph{Nodes: make([]OutputNode, len(in.Nodes))}
	for i, n := range in.Nodes {
		w, h := measure(n)
		terms := make([][]Term, len(n.Disassembly))
		for j, l := range n.Disassembly {
			terms[j] = lineTerms(l)
		}
		out.Nodes[i] = OutputNode{Address: n.Address, Terms: terms, Width: w, Height: h}
	}

	rows := make(map[int][]int)
	for i, d := range depth {
		rows[d] = append(rows[d], i)
	}
	y := 0.0
	for d := 0; d <= maxDepth; d++ {
		row := rows[d]
		if len(row) == 0 {
			continue
		}
		sort.Slice(row, func(a, b int) bool {
			return in.Nodes[row[a]].Address < in.Nodes[row[b]].Address
		})
		x := 0.0
		rowHeight := 0.0
		for _, i := range row {
			out.Nodes[i].Pos = Pos{X: x, Y: y}
			x += out.Nodes[i].Width + colGap
			if out.Nodes[i].Height > rowHeight {
				rowHeight = out.Nodes[i].Height
			}
		}
		y += rowHeight + rowGap
	}

	// Route edges bottom-center to top-center; an edge that does not
	// descend is a back edge.
	out.Edges = make([]OutputEdge, len(in.Edges))
	for i, e := range in.Edges {
		f, t := idx[e.From], idx[e.To]
		fn, tn := out.Nodes[f], out.Nodes[t]
		out.Edges[i] = OutputEdge{
			Type: e.Type,
			Points: []Pos{
				{X: fn.Pos.X + fn.Width/2, Y: fn.Pos.Y + fn.Height},
				{X: tn.Pos.X + tn.Width/2, Y: tn.Pos.Y},
			},
			IsBackEdge: depth[t] <= depth[f],
		}
	}
	return out, nil
}
