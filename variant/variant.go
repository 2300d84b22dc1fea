// Package variant defines the event/call record shared by the assembler's
// event maps, the genotyper's site model, and the VCF sink.
package variant

import "github.com/elvariant/varcall/interval"

// Variant is an event (pre-genotyping, on a single haplotype) or a call
// (post-genotyping, site-level), per SPEC_FULL.md §3.
type Variant struct {
	Location interval.Interval
	Ref      string
	Alt      string
	Alleles  []string // set once this event has been promoted to a site call; Alleles[0] is REF
	GT       [2]int
	GQ       int
}

// Less orders variants by (Location, Ref, Alt), per SPEC_FULL.md §3.
func Less(a, b Variant) bool {
	if a.Location.Contig != b.Location.Contig {
		return a.Location.Contig < b.Location.Contig
	}
	if a.Location.Begin != b.Location.Begin {
		return a.Location.Begin < b.Location.Begin
	}
	if a.Location.End != b.Location.End {
		return a.Location.End < b.Location.End
	}
	if a.Ref != b.Ref {
		return a.Ref < b.Ref
	}
	return a.Alt < b.Alt
}

// SpanningDeletion is the placeholder ALT used when a haplotype carries a
// deletion spanning a site without starting at it.
const SpanningDeletion = "*"
