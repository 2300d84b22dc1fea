// Smith-Waterman affine-gap alignment (SPEC_FULL.md §4.3.1), adapted
// directly from the teacher's filters/sw.go: same matrix layout, same
// running-best-gap bookkeeping, same tie-break priority (diag > down >
// right) and the same bottom-row/right-column traceback-origin selection.
package assembly

import (
	"math"
	"sync"

	"github.com/elvariant/varcall/cigar"
	"github.com/elvariant/varcall/mathutil"
)

// OverhangStrategy controls how the DP chooses its traceback origin and how
// leftover bases at the alignment's ends are represented.
type OverhangStrategy int32

const (
	SoftClip OverhangStrategy = iota
	Indel
	LeadingIndel
	Ignore
)

// SWParams is one of the four named parameter sets of SPEC_FULL.md §4.3.1.
type SWParams struct {
	Match, Mismatch, Open, Extend int32
}

var (
	OriginalDefault   = SWParams{Match: 3, Mismatch: -1, Open: -4, Extend: -3}
	StandardNGS       = SWParams{Match: 25, Mismatch: -50, Open: -110, Extend: -6}
	NewSWParameters   = SWParams{Match: 200, Mismatch: -150, Open: -260, Extend: -11}
	AlignToBestHap    = SWParams{Match: 10, Mismatch: -15, Open: -30, Extend: -5}
)

type int32Matrix struct {
	cols  int32
	array []int32
}

func (m *int32Matrix) ensureSize(rows, cols int32) {
	m.cols = cols
	total := rows * cols
	if total <= int32(cap(m.array)) {
		m.array = m.array[:total]
		for i := range m.array {
			m.array[i] = 0
		}
	} else {
		m.array = make([]int32, total)
	}
}

func (m *int32Matrix) at(row, col int32) int32      { return m.array[row*m.cols+col] }
func (m *int32Matrix) setAt(row, col, v int32)      { m.array[row*m.cols+col] = v }
func (m *int32Matrix) rowView(row int32) []int32 {
	off := row * m.cols
	return m.array[off : off+m.cols]
}

type swMatrices struct {
	sw, backtrack                          int32Matrix
	bestGapV, bestGapH, gapSizeV, gapSizeH []int32
}

var swMatricesPool = sync.Pool{New: func() interface{} { return &swMatrices{} }}

func ensureVector(v []int32, sz, initValue int32) []int32 {
	var result []int32
	if sz <= int32(cap(v)) {
		result = v[:sz]
	} else {
		result = make([]int32, sz)
	}
	for i := range result {
		result[i] = initValue
	}
	return result
}

func lastIndex(ref, alt string) int32 {
	n := int32(len(alt))
	for r := int32(len(ref)) - n; r >= 0; r-- {
		q := int32(0)
		for q < n && ref[r+q] == alt[q] {
			q++
		}
		if q == n {
			return r
		}
	}
	return -1
}

const (
	matrixMinCutoff = -1.0e8
	lowInitValue    = math.MinInt32 / 2
)

// Align runs the affine-gap DP of SPEC_FULL.md §4.3.1 and returns the CIGAR
// (ref-relative) and alignment offset into ref.
func Align(ref, alt string, p SWParams, strategy OverhangStrategy) (cigar.Cigar, int32) {
	switch strategy {
	case SoftClip, Ignore:
		if offset := lastIndex(ref, alt); offset >= 0 {
			return cigar.Cigar{{Length: int32(len(alt)), Op: cigar.Match}}, offset
		}
	}

	m := swMatricesPool.Get().(*swMatrices)
	defer swMatricesPool.Put(m)

	refLen, altLen := int32(len(ref)), int32(len(alt))
	nrow, ncol := refLen+1, altLen+1
	m.sw.ensureSize(nrow, ncol)
	m.backtrack.ensureSize(nrow, ncol)

	m.bestGapV = ensureVector(m.bestGapV, ncol+1, lowInitValue)
	m.gapSizeV = ensureVector(m.gapSizeV, ncol+1, 0)
	m.bestGapH = ensureVector(m.bestGapH, nrow+1, lowInitValue)
	m.gapSizeH = ensureVector(m.gapSizeH, nrow+1, 0)

	if strategy == Indel || strategy == LeadingIndel {
		topRow := m.sw.rowView(0)
		topRow[1] = p.Open
		cur := p.Open
		for i := 2; i < len(topRow); i++ {
			cur += p.Extend
			topRow[i] = cur
		}
		m.sw.setAt(1, 0, p.Open)
		cur = p.Open
		for i := int32(2); i < nrow; i++ {
			cur += p.Extend
			m.sw.setAt(i, 0, cur)
		}
	}

	curRow := m.sw.rowView(0)
	for i := int32(1); i < nrow; i++ {
		aBase := ref[i-1]
		lastRow := curRow
		curRow = m.sw.rowView(i)
		btRow := m.backtrack.rowView(i)

		for j := int32(1); j < ncol; j++ {
			bBase := alt[j-1]
			stepDiag := lastRow[j-1]
			if aBase == bBase {
				stepDiag += p.Match
			} else {
				stepDiag += p.Mismatch
			}

			prevGap := lastRow[j] + p.Open
			m.bestGapV[j] += p.Extend
			if prevGap > m.bestGapV[j] {
				m.bestGapV[j] = prevGap
				m.gapSizeV[j] = 1
			} else {
				m.gapSizeV[j]++
			}
			stepDown := m.bestGapV[j]
			kd := m.gapSizeV[j]

			prevGap = curRow[j-1] + p.Open
			m.bestGapH[i] += p.Extend
			if prevGap > m.bestGapH[i] {
				m.bestGapH[i] = prevGap
				m.gapSizeH[i] = 1
			} else {
				m.gapSizeH[i]++
			}
			stepRight := m.bestGapH[i]
			ki := m.gapSizeH[i]

			switch {
			case stepDiag >= stepDown && stepDiag >= stepRight:
				curRow[j] = maxI32(matrixMinCutoff, stepDiag)
				btRow[j] = 0
			case stepDown >= stepRight:
				curRow[j] = maxI32(matrixMinCutoff, stepDown)
				btRow[j] = kd
			default:
				curRow[j] = maxI32(matrixMinCutoff, stepRight)
				btRow[j] = -ki
			}
		}
	}

	maxScore := math.MinInt32
	var segmentLength int32
	var p1 int32
	p2 := altLen

	if strategy == Indel {
		p1 = refLen
	} else {
		for i := int32(1); i < nrow; i++ {
			if s := int(m.sw.at(i, altLen)); s >= maxScore {
				p1 = i
				maxScore = s
			}
		}
		if strategy != LeadingIndel {
			bottomRow := m.sw.rowView(refLen)
			for j := int32(1); j < ncol; j++ {
				if s := int(bottomRow[j]); s > maxScore || (s == maxScore && mathutil.AbsInt32(refLen-j) < mathutil.AbsInt32(p1-p2)) {
					p1, p2 = refLen, j
					maxScore = s
					segmentLength = altLen - j
				}
			}
		}
	}

	lce := make([]cigar.Element, 0, 5)
	if segmentLength > 0 && strategy == SoftClip {
		lce = append(lce, cigar.Element{Length: segmentLength, Op: cigar.SoftClip})
		segmentLength = 0
	}

	state := cigar.Match
	for {
		stepLength := int32(1)
		btr := m.backtrack.at(p1, p2)
		var newState cigar.Op
		switch {
		case btr > 0:
			newState = cigar.Deletion
			stepLength = btr
			p1 -= btr
		case btr < 0:
			newState = cigar.Insertion
			stepLength = -btr
			p2 += btr
		default:
			newState = cigar.Match
			p1--
			p2--
		}

		if newState == state {
			segmentLength += stepLength
		} else {
			lce = append(lce, cigar.Element{Length: segmentLength, Op: state})
			segmentLength = stepLength
			state = newState
		}
		if p1 <= 0 || p2 <= 0 {
			break
		}
	}

	var offset int32
	switch strategy {
	case SoftClip:
		lce = append(lce, cigar.Element{Length: segmentLength, Op: state})
		if p2 > 0 {
			lce = append(lce, cigar.Element{Length: p2, Op: cigar.SoftClip})
		}
		offset = p1
	case Ignore:
		lce = append(lce, cigar.Element{Length: segmentLength + p2, Op: state})
		offset = p1 - p2
	default:
		lce = append(lce, cigar.Element{Length: segmentLength, Op: state})
		switch {
		case p1 > 0:
			lce = append(lce, cigar.Element{Length: p1, Op: cigar.Deletion})
		case p2 > 0:
			lce = append(lce, cigar.Element{Length: p2, Op: cigar.Insertion})
		}
		offset = 0
	}

	for i, j := 0, len(lce)-1; i < j; i, j = i+1, j-1 {
		lce[i], lce[j] = lce[j], lce[i]
	}
	return cigar.Coalesce(lce), offset
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// AlignHaplotype aligns hap against paddedRef with NEW_SW_PARAMETERS and the
// soft-clip overhang strategy, the way the assembler seeds a haplotype's
// event map (SPEC_FULL.md §4.3). A fast path bypasses SW entirely when the
// two strings are the same length and differ by at most 2 bases.
func AlignHaplotype(paddedRef, hap string) (cigar.Cigar, int32) {
	if len(paddedRef) == len(hap) {
		mismatches := 0
		for i := 0; i < len(paddedRef); i++ {
			if paddedRef[i] != hap[i] {
				mismatches++
				if mismatches > 2 {
					break
				}
			}
		}
		if mismatches <= 2 {
			return cigar.Cigar{{Length: int32(len(paddedRef)), Op: cigar.Match}}, 0
		}
	}
	return Align(paddedRef, hap, NewSWParameters, SoftClip)
}
