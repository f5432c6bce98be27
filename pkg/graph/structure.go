package graph

// StructureNode is one vertex in a graph description.
type StructureNode struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// StructureEdge is one edge in a graph description.
type StructureEdge struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Conditional bool   `json:"conditional"`
	Label       string `json:"label,omitempty"`
}

// Structure describes a graph's topology for visualization.
type Structure struct {
	Nodes []StructureNode `json:"nodes"`
	Edges []StructureEdge `json:"edges"`
}

// PlanStructure returns the topology of the planned execution graph.
func PlanStructure() Structure {
	return Structure{
		Nodes: []StructureNode{
			{ID: "__start__", Type: "start", Label: "__start__"},
			{ID: string(NodeQuery), Type: "node", Label: string(NodeQuery)},
			{ID: string(NodeMain), Type: "node", Label: string(NodeMain)},
			{ID: string(NodeTool), Type: "node", Label: string(NodeTool)},
			{ID: "__end__", Type: "end", Label: "__end__"},
		},
		Edges: []StructureEdge{
			{Source: "__start__", Target: string(NodeQuery)},
			{Source: string(NodeQuery), Target: string(NodeMain)},
			{Source: string(NodeMain), Target: string(NodeTool), Conditional: true, Label: "continue"},
			{Source: string(NodeTool), Target: string(NodeMain)},
			{Source: string(NodeMain), Target: "__end__", Conditional: true, Label: "end"},
		},
	}
}

// ReactStructure returns the topology of the basic execution graph.
func ReactStructure() Structure {
	return Structure{
		Nodes: []StructureNode{
			{ID: "__start__", Type: "start", Label: "__start__"},
			{ID: string(NodeReason), Type: "node", Label: string(NodeReason)},
			{ID: string(NodeAct), Type: "node", Label: string(NodeAct)},
			{ID: "__end__", Type: "end", Label: "__end__"},
		},
		Edges: []StructureEdge{
			{Source: "__start__", Target: string(NodeReason)},
			{Source: string(NodeReason), Target: string(NodeAct), Conditional: true, Label: "continue"},
			{Source: string(NodeAct), Target: string(NodeReason)},
			{Source: string(NodeReason), Target: "__end__", Conditional: true, Label: "end"},
		},
	}
}
