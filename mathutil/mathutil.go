// Package mathutil provides the shared numeric primitives used by the
// PairHMM and the genotyper: the Jacobian-log lookup table behind
// ApproximateLog10SumLog10, the quality-to-error-probability conversion, and
// the canonical diploid genotype-index cache.
package mathutil

import "math"

const (
	// Log10One is log10(1.0).
	Log10One = 0.0
	// Log10Ploidy is log10(2), the ploidy term added per SPEC_FULL.md §4.5.
	Log10Ploidy = 0.3010299956639812

	// jacobianLogTableStep/MaxTolerance follow SPEC_FULL.md §11's Jacobian-log
	// table spec exactly: step 0.0001 over [0, 8].
	jacobianLogTableStep         = 0.0001
	jacobianLogTableInvStep      = 1.0 / jacobianLogTableStep
	jacobianLogTableMaxTolerance = 8.0
)

var jacobianLogTable []float64

func init() {
	n := int(jacobianLogTableMaxTolerance/jacobianLogTableStep) + 1
	jacobianLogTable = make([]float64, n)
	for i := range jacobianLogTable {
		jacobianLogTable[i] = math.Log10(1.0 + math.Pow(10.0, -float64(i)*jacobianLogTableStep))
	}
}

// jacobianLog returns log10(1+10^-difference), read from a lookup table
// built at package init with step 0.0001 over [0,8]; difference must be >= 0.
func jacobianLog(difference float64) float64 {
	idx := int(difference*jacobianLogTableInvStep + 0.5)
	if idx >= len(jacobianLogTable) {
		return 0.0
	}
	return jacobianLogTable[idx]
}

// ApproximateLog10SumLog10 computes log10(10^a + 10^b) via the Jacobian-log
// table, grounded on the teacher's own approximateLog10SumLog10
// (filters/haploutils.go), which matches SPEC_FULL.md §4.5's formula exactly:
// max(a,b) + (|a-b| < 8 ? J(|a-b|) : 0).
func ApproximateLog10SumLog10(a, b float64) float64 {
	if a > b {
		a, b = b, a
	}
	if a == math.Inf(-1) {
		return b
	}
	diff := b - a
	if diff < jacobianLogTableMaxTolerance {
		return b + jacobianLog(diff)
	}
	return b
}

// MinInt returns the smaller of a and b.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// MaxInt returns the larger of a and b.
func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// MinInt32 returns the smaller of a and b.
func MinInt32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// MaxInt32 returns the larger of a and b.
func MaxInt32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// AbsInt32 returns the absolute value of a.
func AbsInt32(a int32) int32 {
	if a < 0 {
		return -a
	}
	return a
}

// GenotypePair is one canonical (a1,a2) unordered diploid genotype, a1 <= a2.
type GenotypePair struct {
	A1, A2 int
}

// genotypeCache[n] lists every canonical (a1,a2) pair for n alleles, in the
// exact order used to address a per-site genotype-likelihood vector, per
// SPEC_FULL.md §4.5 "Genotype indexing".
var genotypeCache [11][]GenotypePair

func init() {
	for n := 0; n <= 10; n++ {
		var pairs []GenotypePair
		for a2 := 0; a2 < n; a2++ {
			for a1 := 0; a1 <= a2; a1++ {
				pairs = append(pairs, GenotypePair{A1: a1, A2: a2})
			}
		}
		genotypeCache[n] = pairs
	}
}

// GenotypesFor returns the canonical genotype ordering for nAlleles alleles
// (0 <= nAlleles <= 10).
func GenotypesFor(nAlleles int) []GenotypePair {
	return genotypeCache[nAlleles]
}

// QualityToErrorProbability converts a phred-scaled quality score to a
// linear error probability: 10^(-q/10).
func QualityToErrorProbability(q float64) float64 {
	return math.Pow(10.0, -q/10.0)
}
