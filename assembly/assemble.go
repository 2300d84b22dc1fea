// Package assembly implements the assembler component of SPEC_FULL.md §4.3:
// read segmentation, k-escalation, de Bruijn graph construction, cycle
// detection, path enumeration, edge scoring, and haplotype-to-reference
// Smith-Waterman alignment.
package assembly

import (
	"sort"

	"github.com/elvariant/varcall/cigar"
	"github.com/elvariant/varcall/samrec"
)

// k-escalation schedule, per SPEC_FULL.md §4.3: start at 25, step 10, six
// escalations beyond the first attempt -- the "stricter variant" of
// DESIGN.md's Open Question 3.
const (
	startK         = 25
	kStep          = 10
	maxEscalations = 6
	maxUniqueKmers = 1000
	maxHaplotypes  = 128
	minQualForAssembly = 10 // raw quality; phred33 threshold is 10+33=43
)

// Haplotype is a candidate sequence for the region, per SPEC_FULL.md §3.
type Haplotype struct {
	Bases                string
	Cigar                cigar.Cigar
	AlignmentBeginWrtRef int32
	Score                float64
	IsRef                bool
	Rank                 int
}

// Segments splits a read's SEQ into maximal runs where base != 'N' and raw
// quality >= 10 (phred33 >= 43), keeping only runs of length >= k, per
// SPEC_FULL.md §4.3 "Read segmentation".
func Segments(seq, qual string, k int32) []string {
	var segs []string
	start := -1
	for i := 0; i < len(seq); i++ {
		usable := seq[i] != 'N' && int(qual[i])-33 >= minQualForAssembly
		if !usable {
			if start != -1 && int32(i-start) >= k {
				segs = append(segs, seq[start:i])
			}
			start = -1
		} else if start == -1 {
			start = i
		}
	}
	if start != -1 && int32(len(seq)-start) >= k {
		segs = append(segs, seq[start:])
	}
	return segs
}

// Outcome is the result of one Assemble call.
type Outcome struct {
	Haplotypes   []Haplotype
	TooManyKmers bool   // true if the last attempted k had more than maxUniqueKmers unique k-mers
	Graph        *Graph // the pruned graph that produced Haplotypes, for optional DOT debug dumps; nil on failure
}

// Assemble runs the full k-escalation + graph-construction + path
// enumeration + scoring pipeline of SPEC_FULL.md §4.3 over paddedRef and the
// read segments recruited for the region, returning the scored, ranked
// haplotypes (reference haplotype always included on success).
func Assemble(paddedRef string, readSegments []string) Outcome {
	for i := 0; i <= maxEscalations; i++ {
		k := int32(startK + i*kStep)
		isFinal := i == maxEscalations

		if int32(len(paddedRef)) < k {
			return Outcome{}
		}
		if !isFinal && hasDuplicateKmer(paddedRef, k) {
			continue
		}

		g := newGraph(k)
		g.precomputeDuplicates(paddedRef, readSegments)
		g.addWalk(paddedRef, true)
		for _, seg := range readSegments {
			if int32(len(seg)) >= k {
				g.addWalk(seg, false)
			}
		}

		if g.UniqueKmerCount() > maxUniqueKmers {
			return Outcome{TooManyKmers: true}
		}
		if g.HasCycle() {
			continue
		}
		paths := g.EnumeratePaths()
		if !g.HasNonReferencePath(paths) {
			continue
		}

		return Outcome{Haplotypes: buildHaplotypes(g, paths, paddedRef), Graph: g}
	}
	return Outcome{}
}

// AssembleReads segments each prepared read's SEQ/QUAL at the starting
// k-mer size and runs Assemble over the combined segment set, sparing the
// region sweeper from reaching into this package's k-escalation schedule.
func AssembleReads(paddedRef string, reads []*samrec.SAMRecord) Outcome {
	var segments []string
	for _, r := range reads {
		segments = append(segments, Segments(r.SEQ, r.QUAL, startK)...)
	}
	return Assemble(paddedRef, segments)
}

// precomputeDuplicates computes the duplicate-k-mer set across the
// reference and every read segment, per SPEC_FULL.md §4.3 "Duplicate-k-mer
// set": each sequence is considered independently.
func (g *Graph) precomputeDuplicates(ref string, segments []string) {
	for km := range duplicateKmersIn(ref, g.k) {
		g.duplicate[km] = true
	}
	for _, seg := range segments {
		for km := range duplicateKmersIn(seg, g.k) {
			g.duplicate[km] = true
		}
	}
}

func buildHaplotypes(g *Graph, paths []Path, paddedRef string) []Haplotype {
	ScorePaths(g, paths)

	type scored struct {
		bases string
		score float64
		isRef bool
	}
	seen := make(map[string]bool)
	var all []scored
	for _, p := range paths {
		bases := g.Bases(p)
		if seen[bases] {
			continue
		}
		seen[bases] = true
		var total float64
		for _, e := range p.Edges {
			total += e.score
		}
		all = append(all, scored{bases: bases, score: total, isRef: bases == paddedRef})
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })
	if len(all) > maxHaplotypes {
		// Always keep the reference haplotype even if its generic score
		// would otherwise fall outside the truncation window.
		kept := all[:maxHaplotypes]
		hasRef := false
		for _, s := range kept {
			if s.isRef {
				hasRef = true
				break
			}
		}
		if !hasRef {
			for _, s := range all[maxHaplotypes:] {
				if s.isRef {
					kept = append(kept[:maxHaplotypes-1], s)
					break
				}
			}
		}
		all = kept
	}

	haps := make([]Haplotype, len(all))
	for i, s := range all {
		if s.isRef {
			haps[i] = Haplotype{
				Bases:                paddedRef,
				Cigar:                cigar.Cigar{{Length: int32(len(paddedRef)), Op: cigar.Match}},
				AlignmentBeginWrtRef: 0,
				Score:                0,
				IsRef:                true,
				Rank:                 i,
			}
			continue
		}
		c, offset := AlignHaplotype(paddedRef, s.bases)
		haps[i] = Haplotype{
			Bases:                s.bases,
			Cigar:                c,
			AlignmentBeginWrtRef: offset,
			Score:                s.score,
			Rank:                 i,
		}
	}
	return haps
}
