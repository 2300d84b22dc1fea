// Package pairhmm implements the three-state (Match/Insertion/Deletion)
// pair hidden Markov model of SPEC_FULL.md §4.4: a fixed transition
// probability vector, quality-capped emission, an INITIAL=2^1020 scale
// factor removed in log10 at the end, and the post-processing pass that
// caps per-read likelihoods and drops poorly-modeled reads.
//
// Matrix pooling mirrors the teacher's own filters/pairhmm.go
// (float64Matrix / pairHMMMatrices via sync.Pool); the fixed transition
// vector replaces the teacher's tandem-repeat-adaptive transition
// probabilities, which SPEC_FULL.md's PairHMM does not call for.
package pairhmm

import (
	"math"
	"sync"

	"github.com/elvariant/varcall/interval"
	"github.com/exascience/pargo/parallel"
)

// Transition probabilities, per SPEC_FULL.md §4.4.
const (
	matchToMatch     = 0.9998
	matchToInsertion = 0.0001
	matchToDeletion  = 0.0001
	insertionToMatch = 0.9
	insertionToIns   = 0.1
	deletionToMatch  = 0.9
	deletionToDel    = 0.1
)

// initial is the 2^1020 scale factor used to keep intermediate probabilities
// in double range; removed in log10 at the end.
var (
	initial        = math.Pow(2, 1020)
	initialLog10   = math.Log10(initial)
)

type floatMatrix struct {
	cols  int32
	array []float64
}

// ensureSize grows m to rows*cols if needed, reporting whether a fresh
// backing array was allocated (in which case any cached row contents are
// gone, not just stale).
func (m *floatMatrix) ensureSize(rows, cols int32) (reallocated bool) {
	m.cols = cols
	total := rows * cols
	if total <= int32(cap(m.array)) {
		m.array = m.array[:total]
		return false
	}
	m.array = make([]float64, total)
	return true
}

func (m *floatMatrix) rowView(row int32) []float64 {
	off := row * m.cols
	return m.array[off : off+m.cols]
}

type matrices struct {
	match, insertion, deletion floatMatrix
	lastHapLen                 int32
}

var pool = sync.Pool{New: func() interface{} { return &matrices{lastHapLen: -1} }}

// qualToError caches 10^(-(q-33)/10) for every representable phred+33 byte.
var qualToError [256]float64

func init() {
	for q := 0; q < 256; q++ {
		qualToError[q] = math.Pow(10, -float64(q-33)/10.0)
	}
}

// cappedQuality clips read base quality from above by 33+MAPQ, per
// SPEC_FULL.md §4.4 "Quality capping".
func cappedQuality(qualByte byte, mapq byte) byte {
	cap := 33 + mapq
	if qualByte > cap {
		return cap
	}
	return qualByte
}

// emission returns p[i+1][j+1] for read base x (already quality-capped) with
// phred+33 quality qualByte against haplotype base y, per SPEC_FULL.md §4.4
// "Emission (priors)".
func emission(x byte, qualByte byte, y byte) float64 {
	e := qualToError[qualByte]
	if x == y || x == 'N' || y == 'N' {
		return 1 - e
	}
	return e / 3
}

// Read is the subset of a prepared read the PairHMM needs: bases, the
// quality-capped phred+33 string, and its alignment interval (carried through
// for the genotyper's marginalization step, untouched by the likelihood
// math). Raw read lengths for the post-processing threshold are passed to
// PostProcess separately.
type Read struct {
	Bases    string
	Qual     string // already capped at 33+MAPQ by the caller
	Interval interval.Interval
}

// NewRead builds a Read from raw SEQ/QUAL, a MAPQ and the read's alignment
// interval, applying the quality-capping rule of SPEC_FULL.md §4.4.
func NewRead(seq, qual string, mapq byte, iv interval.Interval) Read {
	capped := make([]byte, len(qual))
	for i := 0; i < len(qual); i++ {
		capped[i] = cappedQuality(qual[i], mapq)
	}
	return Read{Bases: seq, Qual: string(capped), Interval: iv}
}

// Likelihood computes log10 P(read | haplotype) via the forward recursion of
// SPEC_FULL.md §4.4.
func Likelihood(read Read, hap string) float64 {
	m := pool.Get().(*matrices)
	defer pool.Put(m)

	rLen, hLen := int32(len(read.Bases)), int32(len(hap))
	m.match.ensureSize(rLen+1, hLen+1)
	m.insertion.ensureSize(rLen+1, hLen+1)
	dRealloc := m.deletion.ensureSize(rLen+1, hLen+1)

	// D[0][j] = INITIAL / n for all j, recomputed only when the haplotype
	// length changes or the deletion matrix's backing array was just
	// reallocated (so row 0 holds zeros, not a prior call's D[0]), per
	// SPEC_FULL.md §4.4; M[0] and I[0] are always zero but must be rewritten
	// every call since ensureSize may hand back a reused buffer carrying a
	// previous call's values past its old length.
	if m.lastHapLen != hLen || dRealloc {
		d0 := initial / float64(hLen)
		row0D := m.deletion.rowView(0)
		for j := int32(0); j <= hLen; j++ {
			row0D[j] = d0
		}
		m.lastHapLen = hLen
	}
	row0M := m.match.rowView(0)
	row0I := m.insertion.rowView(0)
	for j := int32(0); j <= hLen; j++ {
		row0M[j] = 0
		row0I[j] = 0
	}

	for i := int32(1); i <= rLen; i++ {
		x := read.Bases[i-1]
		q := read.Qual[i-1]
		mRow, iRow, dRow := m.match.rowView(i), m.insertion.rowView(i), m.deletion.rowView(i)
		prevM, prevI, prevD := m.match.rowView(i-1), m.insertion.rowView(i-1), m.deletion.rowView(i-1)
		mRow[0] = 0
		iRow[0] = prevM[0]*matchToInsertion + prevI[0]*insertionToIns
		dRow[0] = 0
		for j := int32(1); j <= hLen; j++ {
			y := hap[j-1]
			p := emission(x, q, y)
			mRow[j] = p * (prevM[j-1]*matchToMatch + prevI[j-1]*insertionToMatch + prevD[j-1]*deletionToMatch)
			iRow[j] = prevM[j]*matchToInsertion + prevI[j]*insertionToIns
			dRow[j] = mRow[j-1]*matchToDeletion + dRow[j-1]*deletionToDel
		}
	}

	mRowFinal := m.match.rowView(rLen)
	dRowFinal := m.deletion.rowView(rLen)
	var sum float64
	for j := int32(0); j <= hLen; j++ {
		sum += mRowFinal[j] + dRowFinal[j]
	}
	if sum <= 0 {
		return math.Inf(-1)
	}
	return math.Log10(sum) - initialLog10
}

// bestMinusCap is the per-read likelihood-capping offset of SPEC_FULL.md §4.4.
const bestMinusCap = 4.5

// Matrix holds the per-region read x haplotype likelihood matrix; rows are
// indexed by surviving-read index, columns by haplotype index.
type Matrix struct {
	Reads      []Read
	Haplotypes []string
	Values     [][]float64 // Values[r][h]
}

// Fill computes Values for every (read, haplotype) pair, in parallel across
// read indices via pargo, matching the teacher's own use of pargo to
// parallelize per-read work within a region worker (SPEC_FULL.md §4.4
// "Parallel dispatch").
func Fill(reads []Read, haps []string) *Matrix {
	mat := &Matrix{Reads: reads, Haplotypes: haps, Values: make([][]float64, len(reads))}
	parallel.Range(0, len(reads), 0, func(low, high int) {
		for r := low; r < high; r++ {
			row := make([]float64, len(haps))
			for h, hapBases := range haps {
				row[h] = Likelihood(reads[r], hapBases)
			}
			mat.Values[r] = row
		}
	})
	return mat
}

// PostProcess caps each read's row at best-4.5 and drops reads whose best
// likelihood is below min(2.0, ceil(|SEQ|*0.02)) * -4.0, per SPEC_FULL.md
// §4.4 "Post-processing". Returns the surviving reads together with the
// matrix, in original column order, preserving the invariant that each
// returned likelihood is <= 0 and max-min <= 4.5 per row.
func PostProcess(mat *Matrix, rawSeqLens []int) *Matrix {
	var survivingReads []Read
	var survivingRows [][]float64

	for r, row := range mat.Values {
		best := math.Inf(-1)
		for _, v := range row {
			if v > best {
				best = v
			}
		}
		if best > 0 {
			best = 0
		}
		threshold := math.Min(2.0, math.Ceil(float64(rawSeqLens[r])*0.02)) * -4.0
		if best < threshold {
			continue
		}
		capped := make([]float64, len(row))
		floor := best - bestMinusCap
		for h, v := range row {
			if v < floor {
				v = floor
			}
			if v > 0 {
				v = 0
			}
			capped[h] = v
		}
		survivingReads = append(survivingReads, mat.Reads[r])
		survivingRows = append(survivingRows, capped)
	}
	return &Matrix{Reads: survivingReads, Haplotypes: mat.Haplotypes, Values: survivingRows}
}
