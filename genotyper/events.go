// Package genotyper implements SPEC_FULL.md §4.5: event extraction from a
// haplotype's CIGAR, site-level allele unification, the allele mapper,
// marginalization of read-haplotype likelihoods onto alleles, diploid
// genotype likelihoods, and the final call/GQ gate.
//
// Grounded on the teacher's filters/call-region.go orchestration shape
// (assemble -> build event maps -> PairHMM -> genotype); its GVCF/
// ref-confidence/trimming/flanking branches are not carried forward, since
// SPEC_FULL.md has no GVCF/BP_RESOLUTION concept.
package genotyper

import (
	"log"

	"github.com/elvariant/varcall/assembly"
	"github.com/elvariant/varcall/cigar"
	"github.com/elvariant/varcall/interval"
	"github.com/elvariant/varcall/variant"
)

// HaplotypeEvents is a haplotype's event map: absolute coordinate -> event.
type HaplotypeEvents map[int32]variant.Variant

// ExtractEvents walks hap's CIGAR against paddedRef, turning
// mismatches/insertions/deletions into events keyed by their absolute
// reference coordinate, per SPEC_FULL.md §4.5 "Event extraction". contig is
// the region's contig, paddedBegin the absolute 0-based start of paddedRef.
func ExtractEvents(hap assembly.Haplotype, paddedRef, contig string, paddedBegin int32) HaplotypeEvents {
	events := make(HaplotypeEvents)
	refPos := hap.AlignmentBeginWrtRef
	hapPos := int32(0)

	for _, elem := range hap.Cigar {
		switch elem.Op {
		case cigar.Match:
			for off := int32(0); off < elem.Length; off++ {
				r := paddedRef[refPos+off]
				h := hap.Bases[hapPos+off]
				if r != h {
					loc := interval.New(contig, paddedBegin+refPos+off, paddedBegin+refPos+off+1)
					events[paddedBegin+refPos+off] = variant.Variant{
						Location: loc,
						Ref:      string(r),
						Alt:      string(h),
					}
				}
			}
			refPos += elem.Length
			hapPos += elem.Length
		case cigar.Insertion:
			if refPos > 0 {
				anchor := paddedBegin + refPos - 1
				ref := string(paddedRef[refPos-1])
				alt := ref + hap.Bases[hapPos:hapPos+elem.Length]
				events[anchor] = variant.Variant{
					Location: interval.New(contig, anchor, anchor+1),
					Ref:      ref,
					Alt:      alt,
				}
			}
			hapPos += elem.Length
		case cigar.Deletion:
			if refPos > 0 {
				anchor := paddedBegin + refPos - 1
				ref := paddedRef[refPos-1 : refPos-1+elem.Length+1]
				alt := string(ref[0])
				events[anchor] = variant.Variant{
					Location: interval.New(contig, anchor, anchor+elem.Length+1),
					Ref:      ref,
					Alt:      alt,
				}
			}
			refPos += elem.Length
		case cigar.SoftClip:
			hapPos += elem.Length
		default:
			log.Panicf("genotyper: contract violation, CIGAR operator %q reached the genotyper", byte(elem.Op))
		}
	}
	return events
}

// overlaps reports whether e's location straddles the absolute position
// begin: e.Location.End > begin && e.Location.Begin <= begin, per
// SPEC_FULL.md §4.5 "Site assembly" step 1.
func overlaps(e variant.Variant, begin int32) bool {
	return e.Location.End > begin && e.Location.Begin <= begin
}

// eventAt returns the overlapping event in events for position begin, if any.
func eventAt(events HaplotypeEvents, begin int32) (variant.Variant, bool) {
	if e, ok := events[begin]; ok {
		return e, true
	}
	for _, e := range events {
		if overlaps(e, begin) {
			return e, true
		}
	}
	return variant.Variant{}, false
}

// candidateBegins collects every distinct absolute coordinate covered by at
// least one haplotype's events, restricted to origin.
func candidateBegins(allEvents []HaplotypeEvents, origin interval.Interval) []int32 {
	seen := make(map[int32]bool)
	for _, events := range allEvents {
		for begin, e := range events {
			if begin >= origin.Begin && begin < origin.End {
				seen[begin] = true
			}
			// A straddling deletion's own key equals its start, which may
			// fall before origin.Begin while still covering positions
			// inside origin; record every covered position too.
			for p := e.Location.Begin; p < e.Location.End; p++ {
				if p >= origin.Begin && p < origin.End {
					seen[p] = true
				}
			}
		}
	}
	begins := make([]int32, 0, len(seen))
	for b := range seen {
		begins = append(begins, b)
	}
	return begins
}
