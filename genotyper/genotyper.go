package genotyper

import (
	"math"

	"github.com/elvariant/varcall/mathutil"
	"github.com/elvariant/varcall/pairhmm"
	"github.com/elvariant/varcall/variant"
)

// marginalize computes allele_LL[r][a] = max over haplotypes mapped to a of
// the read's haplotype likelihood, restricted to reads whose interval
// overlaps site.Location padded by 2 on both sides, per SPEC_FULL.md §4.5
// "Marginalization". Returns the restricted read indices (into mat.Reads)
// and the allele_LL table indexed in the same order.
func marginalize(mat *pairhmm.Matrix, site Site) (readIdx []int, alleleLL [][]float64) {
	window := site.Location.Pad(2)
	nAlleles := len(site.Alleles)

	for r, read := range mat.Reads {
		if !read.Interval.Overlaps(window) {
			continue
		}
		row := make([]float64, nAlleles)
		for a := range row {
			row[a] = math.Inf(-1)
		}
		for h, ll := range mat.Values[r] {
			a := site.AlleleIdx[h]
			if ll > row[a] {
				row[a] = ll
			}
		}
		readIdx = append(readIdx, r)
		alleleLL = append(alleleLL, row)
	}
	return readIdx, alleleLL
}

// Call computes diploid genotype likelihoods at site from mat and emits a
// Variant if it clears the quality gate, per SPEC_FULL.md §4.5 "Genotype
// likelihoods (diploid)" and "Call".
func Call(site Site, mat *pairhmm.Matrix) (variant.Variant, bool) {
	_, alleleLL := marginalize(mat, site)
	nReads := len(alleleLL)
	if nReads == 0 {
		return variant.Variant{}, false
	}

	genotypes := mathutil.GenotypesFor(len(site.Alleles))
	gls := make([]float64, len(genotypes))
	for gi, gt := range genotypes {
		var sum float64
		for r := 0; r < nReads; r++ {
			var perRead float64
			if gt.A1 == gt.A2 {
				perRead = alleleLL[r][gt.A1] + mathutil.Log10Ploidy
			} else {
				perRead = mathutil.ApproximateLog10SumLog10(alleleLL[r][gt.A1], alleleLL[r][gt.A2])
			}
			sum += perRead
		}
		gls[gi] = sum - float64(nReads)*mathutil.Log10Ploidy
	}

	// Seeded two-phase max/second-max scan, ported literally from
	// original_source/genetyper.hpp's get_genotype_quality_and_max_genotype_index
	// (lines 326-354): seed from the first two genotypes, then for i>=2 a tying
	// or new max displaces the running max into second_max rather than being
	// compared against it, so a plateau at the running max's value is tracked
	// correctly instead of silently pinning second_max to the seed.
	var best int
	var m1, m2 float64
	if gls[0] > gls[1] {
		m2, m1, best = gls[1], gls[0], 0
	} else {
		m2, m1, best = gls[0], gls[1], 1
	}
	for i := 2; i < len(gls); i++ {
		switch {
		case gls[i] >= m1:
			m2, m1, best = m1, gls[i], i
		case gls[i] > m2:
			m2 = gls[i]
		}
	}
	gq := int(math.Round(10 * (m1 - m2)))
	if gq > 99 {
		gq = 99
	}

	winner := genotypes[best]
	if (winner.A1 == 0 && winner.A2 == 0) || gq < 10 {
		return variant.Variant{}, false
	}

	return variant.Variant{
		Location: site.Location,
		Ref:      site.Alleles[0],
		Alt:      joinAlt(site.Alleles),
		Alleles:  site.Alleles,
		GT:       [2]int{winner.A1, winner.A2},
		GQ:       gq,
	}, true
}

func joinAlt(alleles []string) string {
	if len(alleles) < 2 {
		return ""
	}
	alt := alleles[1]
	for _, a := range alleles[2:] {
		alt += "," + a
	}
	return alt
}
