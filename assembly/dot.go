// Optional debug export of the pruned assembly graph as Graphviz DOT, using
// the same library a De Bruijn graph assembler in the retrieval pack uses
// for its own graph dump (mudesheng-ga/constructdbg.go).
package assembly

import (
	"fmt"
	"sort"

	"github.com/awalterschulze/gographviz"
)

// DOT renders the pruned view of g as a Graphviz DOT document, vertices
// labeled with their k-mer and edges labeled with count/score.
func (g *Graph) DOT() string {
	graph := gographviz.NewGraph()
	if err := graph.SetName("assembly"); err != nil {
		panic(err)
	}
	if err := graph.SetDir(true); err != nil {
		panic(err)
	}

	ids := make([]int32, 0, len(g.vertices))
	for id := range g.vertices {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		v := g.vertices[id]
		name := fmt.Sprintf("v%d", id)
		label := fmt.Sprintf(`"%s"`, v.bases)
		if err := graph.AddNode("assembly", name, map[string]string{"label": label}); err != nil {
			panic(err)
		}
	}
	for _, id := range ids {
		for _, e := range g.keptOutgoing(id) {
			attrs := map[string]string{
				"label": fmt.Sprintf(`"count=%d score=%.3f"`, e.count, e.score),
			}
			if err := graph.AddEdge(fmt.Sprintf("v%d", id), fmt.Sprintf("v%d", e.to), true, attrs); err != nil {
				panic(err)
			}
		}
	}
	return graph.String()
}
