package genotyper

import (
	"sort"

	"github.com/elvariant/varcall/assembly"
	"github.com/elvariant/varcall/interval"
	"github.com/elvariant/varcall/pairhmm"
	"github.com/elvariant/varcall/variant"
)

// Genotype runs event extraction, site assembly and diploid calling over
// every candidate position in origin, per SPEC_FULL.md §4.5. haps must be in
// the same order as the haplotype bases passed to pairhmm.Fill that produced
// mat, since Site.AlleleIdx is indexed by haplotype position. Returns the
// emitted variants sorted by (location, REF, ALT).
func Genotype(contig string, origin interval.Interval, paddedRef string, paddedBegin int32, haps []assembly.Haplotype, mat *pairhmm.Matrix) []variant.Variant {
	eventMaps := make([]HaplotypeEvents, len(haps))
	for i, h := range haps {
		eventMaps[i] = ExtractEvents(h, paddedRef, contig, paddedBegin)
	}

	begins := candidateBegins(eventMaps, origin)
	sort.Slice(begins, func(i, j int) bool { return begins[i] < begins[j] })

	var calls []variant.Variant
	for _, begin := range begins {
		site, ok := AssembleSite(begin, contig, paddedRef, paddedBegin, eventMaps, len(haps))
		if !ok {
			continue
		}
		v, ok := Call(site, mat)
		if !ok {
			continue
		}
		calls = append(calls, v)
	}

	sort.Slice(calls, func(i, j int) bool { return variant.Less(calls[i], calls[j]) })
	return calls
}
