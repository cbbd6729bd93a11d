package audio

import (
	"testing"
)

func indexOf(order []NodeID, n NodeID) int {
	for i, m := range order {
		if m == n {
			return i
		}
	}
	return -1
}

func TestDefaultTopology(t *testing.T) {
	order, err := DefaultTopology().Validate()
	if err != nil {
		t.Fatal(err)
	}
	if want, got := int(numNodes), len(order); want != got {
		t.Fatalf("want %v nodes in order, got %v", want, got)
	}
	for _, e := range DefaultTopology().Edges {
		if indexOf(order, e.From) > indexOf(order, e.To) {
			t.Errorf("%v is processed after %v", e.From, e.To)
		}
	}
	if want, got := NodeOutput, order[len(order)-1]; want != got {
		t.Errorf("want %v last, got %v", want, got)
	}
}

func TestTopologyErrors(t *testing.T) {
	withEdge := func(e Edge) Topology {
		topo := DefaultTopology()
		topo.Edges = append(topo.Edges, e)
		return topo
	}
	for name, topo := range map[string]Topology{
		"feedback":        withEdge(Edge{NodeVCO2, NodeVCO1, PortFrequency}),
		"output loop":     withEdge(Edge{NodeOutput, NodeMixer, PortAudio}),
		"self":            withEdge(Edge{NodeMixer, NodeMixer, PortAudio}),
		"duplicate edge":  withEdge(Edge{NodeMixer, NodeFilter, PortAudio}),
		"fm into filter":  withEdge(Edge{NodeFMDepth, NodeFilter, PortFrequency}),
		"sync from noise": withEdge(Edge{NodeNoise, NodeVCO2, PortSync}),
		"duplicate node":  {Nodes: []NodeID{NodeOutput, NodeOutput}},
		"unknown node":    {Nodes: []NodeID{NodeOutput, numNodes}},
		"no output":       {Nodes: []NodeID{NodeVCO1}},
		"missing node":    {Nodes: []NodeID{NodeOutput}, Edges: []Edge{{NodeVCO1, NodeOutput, PortAudio}}},
	} {
		if _, err := topo.Validate(); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestGraphTick(t *testing.T) {
	var procs [numNodes]processor
	constant := func(x float64) processor {
		return processorFunc(func(_, _ float64) float64 { return x })
	}
	gain := func(g float64) processor {
		return processorFunc(func(in, _ float64) float64 { return in * g })
	}
	procs[NodeVCO1] = constant(1)
	procs[NodeVCO2] = processorFunc(func(_, fm float64) float64 { return fm })
	procs[NodeNoise] = constant(0.5)
	procs[NodeVCO1Level] = gain(1)
	procs[NodeVCO2Level] = gain(1)
	procs[NodeNoiseLevel] = gain(2)
	procs[NodeFMDepth] = gain(10)
	procs[NodeMixer] = gain(1)
	procs[NodeFilter] = gain(1)
	procs[NodeVCA] = gain(0.5)
	procs[NodeMaster] = gain(1)
	procs[NodeOutput] = gain(1)

	vco1, vco2 := &osc{}, &osc{}
	g, err := newGraph(DefaultTopology(), procs, map[NodeID]*osc{NodeVCO1: vco1, NodeVCO2: vco2})
	if err != nil {
		t.Fatal(err)
	}
	// (1 + fm 10 + 0.5*2) * 0.5
	if want, got := 6.0, g.tick(); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	if vco2.sync != vco1 {
		t.Errorf("sync edge not wired")
	}
}
