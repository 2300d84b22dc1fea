// The k-mer de Bruijn graph (SPEC_FULL.md §4.3), adapted from the teacher's
// filters/assemble-reads.go: arena-style int32 vertex/edge handles owned
// exclusively by the graph, a pruned view expressed as a predicate over
// edges rather than a second physical graph, and a DFS cycle detector with
// explicit processing/done vertex state. Dangling-tail/head recovery,
// diamond-merge and tail-merge (present in the teacher) are not carried
// forward: SPEC_FULL.md's assembler has no such step.
package assembly

import (
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/cespare/xxhash/v2"
)

// vertex is a k-mer node. bases is a borrowed slice into the reference or a
// read segment buffer owned by the region worker; the graph must not
// outlive that buffer.
type vertex struct {
	id    int32
	bases string
}

// edge carries the evidence count, reference-walk flag, and (once scoring
// has run) the path membership and log10 score of SPEC_FULL.md §4.3.
type edge struct {
	to           int32
	count        int32
	isRef        bool
	isOnPath     bool
	score        float64
}

// Graph is the arena-owned k-mer de Bruijn graph. All external references
// to vertices/edges go through int32 handles; nothing outside this package
// ever holds a *vertex or *edge.
type Graph struct {
	k          int32
	nextID     int32
	vertices   map[int32]*vertex
	byBases    map[string]int32 // unique-kmer -> vertex id
	duplicate  map[string]bool  // duplicate-kmer set, never collapses to one vertex
	outgoing   map[int32][]*edge
	incoming   map[int32][]*edge
	source     int32
	sink       int32
}

func newGraph(k int32) *Graph {
	return &Graph{
		k:         k,
		vertices:  make(map[int32]*vertex),
		byBases:   make(map[string]int32),
		duplicate: make(map[string]bool),
		outgoing:  make(map[int32][]*edge),
		incoming:  make(map[int32][]*edge),
	}
}

func (g *Graph) addVertex(bases string) int32 {
	g.nextID++
	id := g.nextID
	g.vertices[id] = &vertex{id: id, bases: bases}
	return id
}

func (g *Graph) addEdge(from, to int32, isRef bool) *edge {
	for _, e := range g.outgoing[from] {
		if e.to == to {
			return e
		}
	}
	e := &edge{to: to, isRef: isRef}
	g.outgoing[from] = append(g.outgoing[from], e)
	g.incoming[to] = append(g.incoming[to], &edge{to: from, isRef: isRef})
	return e
}

func (g *Graph) incomingFrom(to int32) []int32 {
	var froms []int32
	for id, edges := range g.outgoing {
		for _, e := range edges {
			if e.to == to {
				froms = append(froms, id)
			}
		}
	}
	return froms
}

// UniqueKmerCount is the number of distinct (non-duplicate) k-mer vertices.
func (g *Graph) UniqueKmerCount() int {
	return len(g.byBases)
}

// hashKmer hashes a k-mer with xxhash, for the duplicate-k-mer detection of
// SPEC_FULL.md §4.3 ("Duplicate-k-mer set"), rather than
// hashing raw Go strings through the runtime's map implementation -- the
// way a k-mer-heavy assembler in the domain keys its own structures.
func hashKmer(bases string) uint64 {
	return xxhash.Sum64String(bases)
}

// duplicateKmersIn returns the set of k-mers that occur more than once
// within seq, per SPEC_FULL.md §4.3's "Duplicate-k-mer set" definition.
func duplicateKmersIn(seq string, k int32) map[string]bool {
	seen := make(map[uint64][]string)
	dup := make(map[string]bool)
	for i := 0; i+int(k) <= len(seq); i++ {
		km := seq[i : i+int(k)]
		h := hashKmer(km)
		for _, prior := range seen[h] {
			if prior == km {
				dup[km] = true
				break
			}
		}
		seen[h] = append(seen[h], km)
	}
	return dup
}

// hasDuplicateKmer reports whether seq contains any repeated k-mer, per
// SPEC_FULL.md §4.3 step 2 (the non-final-k duplicate-ref rejection).
func hasDuplicateKmer(seq string, k int32) bool {
	seen := make(map[uint64][]string)
	for i := 0; i+int(k) <= len(seq); i++ {
		km := seq[i : i+int(k)]
		h := hashKmer(km)
		for _, prior := range seen[h] {
			if prior == km {
				return true
			}
		}
		seen[h] = append(seen[h], km)
	}
	return false
}

// getOrCreateVertex returns the vertex id for a k-mer, creating one if the
// k-mer has not been seen and is not a duplicate; duplicate k-mers always
// get a fresh vertex (SPEC_FULL.md §4.3: "Duplicate k-mers never collapse
// to a single vertex").
func (g *Graph) getOrCreateVertex(bases string) int32 {
	if g.duplicate[bases] {
		return g.addVertex(bases)
	}
	if id, ok := g.byBases[bases]; ok {
		return id
	}
	id := g.addVertex(bases)
	g.byBases[bases] = id
	return id
}

// addWalk threads a single sequence's k-mers through the graph. When isRef
// is true every traversed edge is marked is_ref and the first/last vertex
// become the graph's source/sink (the reference walk is always added
// first). For non-reference segments, increaseCountsBackwards attributes
// the first k-mer's evidence backwards along any unique predecessor chain
// whose trailing base keeps matching, per SPEC_FULL.md §4.3's "Graph
// construction" rule.
func (g *Graph) addWalk(seq string, isRef bool) {
	k := int(g.k)
	if len(seq) < k {
		return
	}
	firstID := g.getOrCreateVertex(seq[:k])
	if isRef {
		g.source = firstID
	} else {
		g.increaseCountsBackwards(firstID, seq[:k-1])
	}
	prevID := firstID
	for i := 1; i+k <= len(seq); i++ {
		km := seq[i : i+k]
		nextID, found := g.findOutgoingByLastBase(prevID, km[k-1])
		if !found {
			nextID = g.getOrCreateVertex(km)
			e := g.addEdge(prevID, nextID, isRef)
			e.count++
		} else {
			g.incrementEdgeCount(prevID, nextID)
			if isRef {
				g.setEdgeRef(prevID, nextID)
			}
		}
		prevID = nextID
	}
	if isRef {
		g.sink = prevID
	}
}

func (g *Graph) findOutgoingByLastBase(from int32, lastBase byte) (int32, bool) {
	for _, e := range g.outgoing[from] {
		v := g.vertices[e.to]
		if v != nil && len(v.bases) > 0 && v.bases[len(v.bases)-1] == lastBase {
			return e.to, true
		}
	}
	return 0, false
}

func (g *Graph) incrementEdgeCount(from, to int32) {
	for _, e := range g.outgoing[from] {
		if e.to == to {
			e.count++
			return
		}
	}
}

func (g *Graph) setEdgeRef(from, to int32) {
	for _, e := range g.outgoing[from] {
		if e.to == to {
			e.isRef = true
			return
		}
	}
}

// increaseCountsBackwards walks start's unique predecessor (the vertex is
// its sole in-edge's source) while that predecessor's trailing base matches
// kmer's trailing byte, incrementing the connecting edge's count at each
// step and shrinking kmer by one byte off the right before recursing, so the
// compared byte moves one position earlier at every hop. Grounded on
// original_source/src/haplotypecaller/assembler/graph_wrapper.hpp's
// increase_counts_backwards/add_seq (lines 98-113, 132-136): the first call
// compares against seq[k-2] (kmer is seq's first k-1 bytes), not seq[k-1].
func (g *Graph) increaseCountsBackwards(start int32, kmer string) {
	if len(kmer) == 0 {
		return
	}
	preds := g.incomingFrom(start)
	if len(preds) != 1 {
		return
	}
	pred := preds[0]
	pv := g.vertices[pred]
	if pv == nil || len(pv.bases) == 0 || pv.bases[len(pv.bases)-1] != kmer[len(kmer)-1] {
		return
	}
	g.incrementEdgeCount(pred, start)
	g.increaseCountsBackwards(pred, kmer[:len(kmer)-1])
}

// kept is the pruning-view predicate of SPEC_FULL.md §4.3: an edge is kept
// iff it is on the reference walk, has count >= 2, or its source has
// out-degree 1. This is expressed as a predicate rather than a second
// physical graph, per SPEC_FULL.md §11.
func (g *Graph) kept(from int32, e *edge) bool {
	return e.isRef || e.count >= 2 || len(g.outgoing[from]) == 1
}

func (g *Graph) keptOutgoing(from int32) []*edge {
	var out []*edge
	for _, e := range g.outgoing[from] {
		if g.kept(from, e) {
			out = append(out, e)
		}
	}
	return out
}

// vertexIndex assigns a dense [0,n) index to every vertex id, for use with
// bitset.BitSet, which is indexed by uint not by (possibly sparse) int32
// handle.
func (g *Graph) vertexIndex() map[int32]uint {
	idx := make(map[int32]uint, len(g.vertices))
	var i uint
	for id := range g.vertices {
		idx[id] = i
		i++
	}
	return idx
}

// HasCycle runs a DFS from the source over the pruned view; a back-edge
// (an edge into a vertex still on the current DFS stack) signals a cycle.
// Visited/processing state is tracked with bits-and-blooms/bitset, mirroring
// the teacher's own preference for compact per-vertex traversal state.
func (g *Graph) HasCycle() bool {
	idx := g.vertexIndex()
	processing := bitset.New(uint(len(g.vertices)))
	done := bitset.New(uint(len(g.vertices)))

	var visit func(v int32) bool
	visit = func(v int32) bool {
		vi := idx[v]
		processing.Set(vi)
		for _, e := range g.keptOutgoing(v) {
			ti := idx[e.to]
			if processing.Test(ti) {
				return true
			}
			if done.Test(ti) {
				continue
			}
			if visit(e.to) {
				return true
			}
		}
		processing.Clear(vi)
		done.Set(vi)
		return false
	}
	return visit(g.source)
}

// Path is a sequence of vertex ids from source to sink, paired with the
// edges traversed.
type Path struct {
	Vertices []int32
	Edges    []*edge
}

// Bases reconstructs the sequence represented by a path: the first
// vertex's full k-mer, then the trailing base of every subsequent vertex.
func (g *Graph) Bases(p Path) string {
	if len(p.Vertices) == 0 {
		return ""
	}
	b := []byte(g.vertices[p.Vertices[0]].bases)
	for _, id := range p.Vertices[1:] {
		v := g.vertices[id]
		b = append(b, v.bases[len(v.bases)-1])
	}
	return string(b)
}

// EnumeratePaths performs a DFS from source to sink over the pruned view.
// Revisiting a vertex within the current path is forbidden, per
// SPEC_FULL.md §4.3 "Path enumeration".
func (g *Graph) EnumeratePaths() []Path {
	var paths []Path
	onPath := make(map[int32]bool)
	var verts []int32
	var edges []*edge

	var dfs func(v int32)
	dfs = func(v int32) {
		verts = append(verts, v)
		onPath[v] = true
		if v == g.sink {
			paths = append(paths, Path{Vertices: append([]int32(nil), verts...), Edges: append([]*edge(nil), edges...)})
		} else {
			for _, e := range g.keptOutgoing(v) {
				if !onPath[e.to] {
					edges = append(edges, e)
					dfs(e.to)
					edges = edges[:len(edges)-1]
				}
			}
		}
		onPath[v] = false
		verts = verts[:len(verts)-1]
	}
	dfs(g.source)
	return paths
}

// HasNonReferencePath reports whether any enumerable path differs from the
// pure reference walk -- the "low complexity" predicate resolved in
// DESIGN.md's Open Question 1: a region is not low-complexity iff at least
// one non-reference haplotype is enumerable and the graph has no cycle.
func (g *Graph) HasNonReferencePath(paths []Path) bool {
	for _, p := range paths {
		for _, e := range p.Edges {
			if !e.isRef {
				return true
			}
		}
	}
	return false
}

// ScorePaths assigns each on-path edge score = log10(count(e)/S), where S
// is the sum of counts over a vertex's outgoing on-path edges, per
// SPEC_FULL.md §4.3 "Scoring". Returns each path's total score (sum of its
// edge scores).
func ScorePaths(g *Graph, paths []Path) []float64 {
	outSum := make(map[int32]int32)
	counted := make(map[*edge]bool)
	for _, p := range paths {
		for i, e := range p.Edges {
			e.isOnPath = true
			if !counted[e] {
				counted[e] = true
				outSum[p.Vertices[i]] += e.count
			}
		}
	}
	scores := make([]float64, len(paths))
	for pi, p := range paths {
		var total float64
		for i, e := range p.Edges {
			s := outSum[p.Vertices[i]]
			if s <= 0 {
				total = math.Inf(-1)
				continue
			}
			e.score = math.Log10(float64(e.count) / float64(s))
			total += e.score
		}
		scores[pi] = total
	}
	return scores
}
