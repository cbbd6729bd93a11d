package audio

import (
	"fmt"
	"strconv"
)

// NodeID names a node of the signal graph.
type NodeID int

const (
	NodeVCO1 NodeID = iota
	NodeVCO2
	NodeNoise
	NodeVCO1Level
	NodeVCO2Level
	NodeNoiseLevel
	NodeFMDepth
	NodeMixer
	NodeFilter
	NodeVCA
	NodeMaster
	NodeOutput

	numNodes
)

var nodeNames = [numNodes]string{
	NodeVCO1:       "vco1",
	NodeVCO2:       "vco2",
	NodeNoise:      "noise",
	NodeVCO1Level:  "vco1_level",
	NodeVCO2Level:  "vco2_level",
	NodeNoiseLevel: "noise_level",
	NodeFMDepth:    "fm_depth",
	NodeMixer:      "mixer",
	NodeFilter:     "vcf",
	NodeVCA:        "vca",
	NodeMaster:     "master",
	NodeOutput:     "output",
}

func (n NodeID) String() string {
	if n < 0 || n >= numNodes {
		return "node(" + strconv.Itoa(int(n)) + ")"
	}
	return nodeNames[n]
}

func (n NodeID) isOscillator() bool { return n == NodeVCO1 || n == NodeVCO2 }

// Port is the input of the destination node an edge feeds.
type Port int

const (
	// PortAudio sums the source into the destination's signal input.
	PortAudio Port = iota
	// PortFrequency adds the source, in Hz, to an oscillator's frequency.
	PortFrequency
	// PortSync resets an oscillator's phase when the source oscillator wraps.
	PortSync
)

func (p Port) String() string {
	switch p {
	case PortFrequency:
		return "freq"
	case PortSync:
		return "sync"
	default:
		return "audio"
	}
}

type Edge struct {
	From, To NodeID
	Port     Port
}

// Topology is a declarative description of the signal graph.
type Topology struct {
	Nodes []NodeID
	Edges []Edge
}

// DefaultTopology is the fixed patch of the instrument. The VCO1 → VCO2
// modulation edges are one-way inputs, not feedback.
func DefaultTopology() Topology {
	return Topology{
		Nodes: []NodeID{
			NodeVCO1, NodeVCO2, NodeNoise,
			NodeVCO1Level, NodeVCO2Level, NodeNoiseLevel, NodeFMDepth,
			NodeMixer, NodeFilter, NodeVCA, NodeMaster, NodeOutput,
		},
		Edges: []Edge{
			{NodeVCO1, NodeVCO1Level, PortAudio},
			{NodeVCO1, NodeFMDepth, PortAudio},
			{NodeFMDepth, NodeVCO2, PortFrequency},
			{NodeVCO1, NodeVCO2, PortSync},
			{NodeVCO2, NodeVCO2Level, PortAudio},
			{NodeNoise, NodeNoiseLevel, PortAudio},
			{NodeVCO1Level, NodeMixer, PortAudio},
			{NodeVCO2Level, NodeMixer, PortAudio},
			{NodeNoiseLevel, NodeMixer, PortAudio},
			{NodeMixer, NodeFilter, PortAudio},
			{NodeFilter, NodeVCA, PortAudio},
			{NodeVCA, NodeMaster, PortAudio},
			{NodeMaster, NodeOutput, PortAudio},
		},
	}
}

// Validate checks the topology and returns the processing order. Every edge
// kind counts toward cycle detection.
func (t Topology) Validate() ([]NodeID, error) {
	present := make(map[NodeID]bool, len(t.Nodes))
	for _, n := range t.Nodes {
		if n < 0 || n >= numNodes {
			return nil, fmt.Errorf("graph: unknown node %v", n)
		}
		if present[n] {
			return nil, fmt.Errorf("graph: duplicate node %v", n)
		}
		present[n] = true
	}
	if !present[NodeOutput] {
		return nil, fmt.Errorf("graph: no %v node", NodeOutput)
	}

	seen := make(map[Edge]bool, len(t.Edges))
	indegree := make(map[NodeID]int, len(t.Nodes))
	out := make(map[NodeID][]NodeID, len(t.Nodes))
	for _, e := range t.Edges {
		if !present[e.From] || !present[e.To] {
			return nil, fmt.Errorf("graph: edge %v -> %v references a missing node", e.From, e.To)
		}
		if e.From == e.To {
			return nil, fmt.Errorf("graph: %v feeds itself", e.From)
		}
		if seen[e] {
			return nil, fmt.Errorf("graph: duplicate edge %v -> %v (%v)", e.From, e.To, e.Port)
		}
		seen[e] = true
		if e.Port != PortAudio && !e.To.isOscillator() {
			return nil, fmt.Errorf("graph: %v input on %v, which is not an oscillator", e.Port, e.To)
		}
		if e.Port == PortSync && !e.From.isOscillator() {
			return nil, fmt.Errorf("graph: sync source %v is not an oscillator", e.From)
		}
		indegree[e.To]++
		out[e.From] = append(out[e.From], e.To)
	}

	// Kahn's algorithm, visiting nodes in declaration order for a stable result.
	order := make([]NodeID, 0, len(t.Nodes))
	var queue []NodeID
	for _, n := range t.Nodes {
		if indegree[n] == 0 {
			queue = append(queue, n)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, m := range out[n] {
			indegree[m]--
			if indegree[m] == 0 {
				queue = append(queue, m)
			}
		}
	}
	if len(order) != len(t.Nodes) {
		var stuck []NodeID
		for _, n := range t.Nodes {
			if indegree[n] > 0 {
				stuck = append(stuck, n)
			}
		}
		return nil, fmt.Errorf("graph: cycle through %v", stuck)
	}
	return order, nil
}

// processor computes one output sample of a node from the summed audio and
// frequency inputs.
type processor interface {
	process(in, fm float64) float64
}

type processorFunc func(in, fm float64) float64

func (f processorFunc) process(in, fm float64) float64 { return f(in, fm) }

// graph runs a validated topology one sample at a time.
type graph struct {
	order  []NodeID
	procs  [numNodes]processor
	audio  [numNodes][]NodeID
	freq   [numNodes][]NodeID
	out    [numNodes]float64
	output NodeID
}

// newGraph wires procs according to t. Sync edges are resolved once through
// the oscillators map.
func newGraph(t Topology, procs [numNodes]processor, oscs map[NodeID]*osc) (*graph, error) {
	order, err := t.Validate()
	if err != nil {
		return nil, err
	}
	g := &graph{order: order, procs: procs, output: NodeOutput}
	for _, n := range order {
		if procs[n] == nil {
			return nil, fmt.Errorf("graph: no processor for %v", n)
		}
	}
	for _, e := range t.Edges {
		switch e.Port {
		case PortAudio:
			g.audio[e.To] = append(g.audio[e.To], e.From)
		case PortFrequency:
			g.freq[e.To] = append(g.freq[e.To], e.From)
		case PortSync:
			src, dst := oscs[e.From], oscs[e.To]
			if src == nil || dst == nil {
				return nil, fmt.Errorf("graph: sync edge %v -> %v has no oscillator", e.From, e.To)
			}
			dst.sync = src
		}
	}
	return g, nil
}

func (g *graph) tick() float64 {
	for _, n := range g.order {
		var in, fm float64
		for _, src := range g.audio[n] {
			in += g.out[src]
		}
		for _, src := range g.freq[n] {
			fm += g.out[src]
		}
		g.out[n] = g.procs[n].process(in, fm)
	}
	return g.out[g.output]
}
