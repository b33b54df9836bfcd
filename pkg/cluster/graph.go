package cluster

import "fmt"

// Node kinds and edge kinds for the exported funding graph.
const (
	NodeToken  = "TOKEN"
	NodeFunder = "FUNDER"
	NodeHolder = "HOLDER"

	EdgeFunded = "FUNDED"
	EdgeHolds  = "HOLDS"
)

type Node struct {
	ID       string  `json:"id"`
	Kind     string  `json:"kind"`
	Label    string  `json:"label"`
	SharePct float64 `json:"share_pct,omitempty"`
	IsCabal  bool    `json:"is_cabal,omitempty"`
}

type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Kind   string  `json:"kind"`
	Weight float64 `json:"weight,omitempty"`
}

type GraphStats struct {
	Nodes   int     `json:"nodes"`
	Edges   int     `json:"edges"`
	Density float64 `json:"density"`
}

// Graph is the cluster result as a directed graph, ready for JSON export
// into a visualization frontend.
type Graph struct {
	Nodes []Node     `json:"nodes"`
	Edges []Edge     `json:"edges"`
	Stats GraphStats `json:"stats"`
}

// BuildGraph flattens a cluster result into nodes and edges. Funders point
// at the holders they funded; cabal holders point at the token with their
// supply share as the edge weight.
func BuildGraph(r *Result) *Graph {
	g := &Graph{}
	seen := map[string]bool{}

	addNode := func(n Node) {
		if seen[n.ID] {
			return
		}
		seen[n.ID] = true
		g.Nodes = append(g.Nodes, n)
	}

	addNode(Node{ID: r.Token, Kind: NodeToken, Label: abbrev(r.Token)})

	for _, c := range r.Clusters {
		addNode(Node{ID: c.Funder, Kind: NodeFunder, Label: abbrev(c.Funder), IsCabal: true})
		for _, m := range c.Members {
			addNode(Node{
				ID:       m.Holder,
				Kind:     NodeHolder,
				Label:    abbrev(m.Holder),
				SharePct: m.SharePct,
				IsCabal:  true,
			})
			g.Edges = append(g.Edges, Edge{From: c.Funder, To: m.Holder, Kind: EdgeFunded})
			g.Edges = append(g.Edges, Edge{From: m.Holder, To: r.Token, Kind: EdgeHolds, Weight: m.SharePct})
		}
	}

	g.Stats = GraphStats{Nodes: len(g.Nodes), Edges: len(g.Edges)}
	if n := len(g.Nodes); n > 1 {
		g.Stats.Density = float64(len(g.Edges)) / float64(n*(n-1))
	}
	return g
}

// Summary renders a compact one-line description for logs and alerts.
func (g *Graph) Summary() string {
	return fmt.Sprintf("%d nodes, %d edges, density %.3f", g.Stats.Nodes, g.Stats.Edges, g.Stats.Density)
}
