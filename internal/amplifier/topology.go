package amplifier

import (
	"errors"
	"fmt"
	"slices"
)

// External is the edge target of a stage whose output leaves the network.
const External = -1

// Edge is a directed stream from one stage's output to another stage's
// input, or to External.
type Edge struct {
	From int
	To   int
}

// Topology describes how amplifier stages are wired. Every stage has exactly
// one outgoing edge; its input stream is the one its predecessor writes to.
type Topology struct {
	stages int
	edges  []Edge // edges[i].From == i
}

// Chain wires n stages in an open line: stage i feeds stage i+1 and the last
// stage feeds External.
func Chain(n int) (Topology, error) {
	if n < 1 {
		return Topology{}, fmt.Errorf("stage count must be at least 1, got %d", n)
	}
	t := Topology{stages: n, edges: make([]Edge, n)}
	for i := 0; i < n; i++ {
		t.edges[i] = Edge{From: i, To: i + 1}
	}
	t.edges[n-1].To = External
	return t, nil
}

// Ring wires n stages in a closed loop: the last stage feeds stage 0.
func Ring(n int) (Topology, error) {
	if n < 1 {
		return Topology{}, fmt.Errorf("stage count must be at least 1, got %d", n)
	}
	t := Topology{stages: n, edges: make([]Edge, n)}
	for i := 0; i < n; i++ {
		t.edges[i] = Edge{From: i, To: (i + 1) % n}
	}
	return t, nil
}

// NewTopology returns a Ring when feedback is set and a Chain otherwise.
func NewTopology(n int, feedback bool) (Topology, error) {
	if feedback {
		return Ring(n)
	}
	return Chain(n)
}

// Stages returns the number of stages.
func (t Topology) Stages() int {
	return t.stages
}

// Edges returns a copy of the topology's edges, indexed by source stage.
func (t Topology) Edges() []Edge {
	return slices.Clone(t.edges)
}

// Output returns the stage fed by stage i, or External.
func (t Topology) Output(i int) int {
	return t.edges[i].To
}

// Feedback reports whether the topology contains a cycle.
func (t Topology) Feedback() bool {
	return t.HasCycle()
}

// PhaseRange returns the phase values of the topology: [0, n) for an open
// chain and [n, 2n) for a feedback loop.
func (t Topology) PhaseRange() []int64 {
	base := int64(0)
	if t.HasCycle() {
		base = int64(t.stages)
	}
	values := make([]int64, t.stages)
	for i := range values {
		values[i] = base + int64(i)
	}
	return values
}

// HasCycle reports whether any stage's output eventually feeds back into
// its own input.
func (t Topology) HasCycle() bool {
	return len(t.Cycles()) > 0
}

// Cycles returns every cycle as the list of stages in its strongly
// connected component, in ascending order.
//
// Uses Tarjan's algorithm; a single stage is a cycle only if it feeds
// itself.
func (t Topology) Cycles() [][]int {
	var (
		index   = 0
		stack   []int
		indices = make(map[int]int)
		lowlink = make(map[int]int)
		onStack = make(map[int]bool)
		cycles  [][]int
	)

	var strongConnect func(int)
	strongConnect = func(v int) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		if w := t.Output(v); w != External {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			if len(scc) > 1 || t.Output(v) == v {
				slices.Sort(scc)
				cycles = append(cycles, scc)
			}
		}
	}

	for v := 0; v < t.stages; v++ {
		if _, visited := indices[v]; !visited {
			strongConnect(v)
		}
	}
	return cycles
}

// Order returns the stages in dependency order (Kahn's algorithm). A stage
// appears only after every stage feeding it. Cyclic topologies have no
// such order.
func (t Topology) Order() ([]int, error) {
	inDegree := make([]int, t.stages)
	for _, e := range t.edges {
		if e.To != External {
			inDegree[e.To]++
		}
	}

	var ready, order []int
	for v, d := range inDegree {
		if d == 0 {
			ready = append(ready, v)
		}
	}
	for len(ready) > 0 {
		v := ready[0]
		ready = ready[1:]
		order = append(order, v)
		if w := t.Output(v); w != External {
			inDegree[w]--
			if inDegree[w] == 0 {
				ready = append(ready, w)
			}
		}
	}

	if len(order) != t.stages {
		return nil, errors.New("topology has a cycle")
	}
	return order, nil
}
