package genotyper

import (
	"github.com/elvariant/varcall/interval"
	"github.com/elvariant/varcall/variant"
)

// Site is the unified allele set at one candidate position, per SPEC_FULL.md
// §4.5 "Site assembly".
type Site struct {
	Location  interval.Interval // [begin, begin+len(REF))
	Alleles   []string          // Alleles[0] is REF
	AlleleIdx []int             // AlleleIdx[haplotype index] = allele index at this site
}

// maxAlleles is the allele-count ceiling of SPEC_FULL.md §4.5 step 5.
const maxAlleles = 10

// AssembleSite unifies every haplotype's event at begin into a single allele
// set, following SPEC_FULL.md §4.5 "Site assembly" steps 1-5 and the
// "Allele mapper" paragraph. nHaplotypes is the total haplotype count (so
// that haplotypes carrying no event at begin can be defaulted to the
// reference allele). ok is false when no haplotype carries an event here, or
// when unification would need more than 10 alleles.
func AssembleSite(begin int32, contig string, paddedRef string, paddedBegin int32, eventMaps []HaplotypeEvents, nHaplotypes int) (Site, bool) {
	type overlap struct {
		hapIdx        int
		event         variant.Variant
		startsAtBegin bool
	}

	var overlaps []overlap
	for h := 0; h < nHaplotypes; h++ {
		e, found := eventAt(eventMaps[h], begin)
		if !found {
			continue
		}
		startsAtBegin := e.Location.Begin == begin
		replaced := e
		if !startsAtBegin {
			// Step 2: spanning-deletion placeholder.
			replaced = variant.Variant{
				Location: interval.New(contig, begin, begin+1),
				Ref:      string(paddedRef[begin-paddedBegin]),
				Alt:      variant.SpanningDeletion,
			}
		}
		overlaps = append(overlaps, overlap{hapIdx: h, event: replaced, startsAtBegin: startsAtBegin})
	}
	if len(overlaps) == 0 {
		return Site{}, false
	}

	// Step 3: the reference allele is the longest REF among collected events.
	siteRefLen := int32(1)
	for _, o := range overlaps {
		if l := int32(len(o.event.Ref)); l > siteRefLen {
			siteRefLen = l
		}
	}
	siteRef := paddedRef[begin-paddedBegin : begin-paddedBegin+siteRefLen]

	alleles := []string{siteRef}
	alleleOf := map[string]int{siteRef: 0}
	alleleIdx := make([]int, nHaplotypes) // defaults to 0 (REF) for every haplotype

	for _, o := range overlaps {
		// Step 4: compatible ALT against the site REF.
		var alt string
		switch {
		case o.event.Ref == siteRef:
			alt = o.event.Alt
		case o.event.Alt == variant.SpanningDeletion:
			alt = variant.SpanningDeletion
		default:
			alt = o.event.Alt + siteRef[len(o.event.Ref):]
		}
		idx, seen := alleleOf[alt]
		if !seen {
			idx = len(alleles)
			alleles = append(alleles, alt)
			alleleOf[alt] = idx
		}
		alleleIdx[o.hapIdx] = idx
	}

	if len(alleles) < 2 {
		return Site{}, false
	}
	if len(alleles) > maxAlleles {
		return Site{}, false
	}

	return Site{
		Location:  interval.New(contig, begin, begin+siteRefLen),
		Alleles:   alleles,
		AlleleIdx: alleleIdx,
	}, true
}
