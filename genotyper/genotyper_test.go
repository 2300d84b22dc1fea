package genotyper

import (
	"testing"

	"github.com/elvariant/varcall/assembly"
	"github.com/elvariant/varcall/cigar"
	"github.com/elvariant/varcall/interval"
	"github.com/elvariant/varcall/pairhmm"
)

func TestExtractEventsSNV(t *testing.T) {
	ref := "AAAAACCCCC"
	hap := assembly.Haplotype{
		Bases:                "AAAAATCCCC",
		Cigar:                cigar.Cigar{{Length: 10, Op: cigar.Match}},
		AlignmentBeginWrtRef: 0,
	}
	events := ExtractEvents(hap, ref, "chr1", 100)
	e, ok := events[105]
	if !ok {
		t.Fatalf("expected an event at absolute position 105")
	}
	if e.Ref != "C" || e.Alt != "T" {
		t.Errorf("event = REF=%q ALT=%q, want REF=C ALT=T", e.Ref, e.Alt)
	}
}

func TestExtractEventsDeletion(t *testing.T) {
	ref := "AAAAACCCCC"
	hap := assembly.Haplotype{
		Bases:                "AAAAACCCC",
		Cigar:                cigar.Cigar{{Length: 5, Op: cigar.Match}, {Length: 1, Op: cigar.Deletion}, {Length: 4, Op: cigar.Match}},
		AlignmentBeginWrtRef: 0,
	}
	events := ExtractEvents(hap, ref, "chr1", 0)
	e, ok := events[4]
	if !ok {
		t.Fatalf("expected a deletion event anchored at position 4")
	}
	if e.Ref != "AC" || e.Alt != "A" {
		t.Errorf("deletion event = REF=%q ALT=%q, want REF=AC ALT=A", e.Ref, e.Alt)
	}
}

func TestAssembleSiteUnifiesAlleles(t *testing.T) {
	ref := "AAAAACCCCC"
	refHap := assembly.Haplotype{Bases: ref, Cigar: cigar.Cigar{{Length: 10, Op: cigar.Match}}, IsRef: true}
	altHap := assembly.Haplotype{
		Bases: "AAAAATCCCC",
		Cigar: cigar.Cigar{{Length: 10, Op: cigar.Match}},
	}
	haps := []assembly.Haplotype{refHap, altHap}
	eventMaps := []HaplotypeEvents{
		ExtractEvents(haps[0], ref, "chr1", 0),
		ExtractEvents(haps[1], ref, "chr1", 0),
	}

	site, ok := AssembleSite(5, "chr1", ref, 0, eventMaps, len(haps))
	if !ok {
		t.Fatalf("expected a callable site at position 5")
	}
	if site.Alleles[0] != "C" {
		t.Errorf("site REF = %q, want C", site.Alleles[0])
	}
	if len(site.Alleles) != 2 || site.Alleles[1] != "T" {
		t.Errorf("site alleles = %v, want [C T]", site.Alleles)
	}
	if site.AlleleIdx[0] != 0 {
		t.Errorf("reference haplotype should map to allele 0, got %d", site.AlleleIdx[0])
	}
	if site.AlleleIdx[1] != 1 {
		t.Errorf("alt haplotype should map to allele 1, got %d", site.AlleleIdx[1])
	}
}

func TestCallEmitsNonReferenceSite(t *testing.T) {
	contig := "chr1"
	site := Site{
		Location:  interval.New(contig, 5, 6),
		Alleles:   []string{"C", "T"},
		AlleleIdx: []int{0, 1},
	}

	mat := &pairhmm.Matrix{
		Haplotypes: []string{"ref", "alt"},
	}
	for i := 0; i < 10; i++ {
		mat.Reads = append(mat.Reads, pairhmm.Read{Interval: interval.New(contig, 0, 20)})
		mat.Values = append(mat.Values, []float64{-3.0, -0.01})
	}

	v, ok := Call(site, mat)
	if !ok {
		t.Fatalf("expected the site to pass the quality gate")
	}
	if v.GQ < 10 {
		t.Errorf("GQ = %d, want >= 10", v.GQ)
	}
	if v.GT[1] >= len(v.Alleles) {
		t.Errorf("GT = %v out of range for alleles %v", v.GT, v.Alleles)
	}
}

func TestCallDropsHomozygousRef(t *testing.T) {
	contig := "chr1"
	site := Site{
		Location:  interval.New(contig, 5, 6),
		Alleles:   []string{"C", "T"},
		AlleleIdx: []int{0, 1},
	}
	mat := &pairhmm.Matrix{Haplotypes: []string{"ref", "alt"}}
	for i := 0; i < 10; i++ {
		mat.Reads = append(mat.Reads, pairhmm.Read{Interval: interval.New(contig, 0, 20)})
		mat.Values = append(mat.Values, []float64{-0.01, -5.0})
	}
	if _, ok := Call(site, mat); ok {
		t.Errorf("expected the homozygous-REF call to be dropped")
	}
}

func TestCallDropsReadsOutsideWindow(t *testing.T) {
	contig := "chr1"
	site := Site{
		Location:  interval.New(contig, 100, 101),
		Alleles:   []string{"C", "T"},
		AlleleIdx: []int{0, 1},
	}
	mat := &pairhmm.Matrix{Haplotypes: []string{"ref", "alt"}}
	mat.Reads = append(mat.Reads, pairhmm.Read{Interval: interval.New(contig, 0, 10)})
	mat.Values = append(mat.Values, []float64{-0.01, -5.0})

	if _, ok := Call(site, mat); ok {
		t.Errorf("expected no call when no read overlaps the site window")
	}
}
