// Package readprep implements the read preparer (SPEC_FULL.md §4.2): the
// closed set of read filters, soft-clip and padded-window hard-clipping, the
// minimum-length filter, and cap-driven subsampling.
package readprep

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"

	"github.com/elvariant/varcall/cigar"
	"github.com/elvariant/varcall/interval"
	"github.com/elvariant/varcall/samrec"
)

// MinMappingQuality is the MAPQ floor below which a read is dropped.
const MinMappingQuality = 20

// MinReadLength is the minimum surviving SEQ length; shorter reads are dropped.
const MinReadLength = 25

// Filter is one of the closed set of stateless read-rejection predicates.
// Modeled as a tagged value rather than an interface, following the
// reference implementation's own small enumerable filter set.
type Filter int

const (
	FilterMappingQuality Filter = iota
	FilterDuplicate
	FilterSecondary
	FilterMateOnSameContig
)

// Reject reports whether r fails this filter (and should be dropped).
func (f Filter) Reject(r *samrec.SAMRecord) bool {
	switch f {
	case FilterMappingQuality:
		return r.MAPQ < MinMappingQuality
	case FilterDuplicate:
		return r.IsSet(samrec.Duplicate)
	case FilterSecondary:
		return r.IsSet(samrec.Secondary)
	case FilterMateOnSameContig:
		return r.RNEXT != "="
	}
	return false
}

var allFilters = []Filter{FilterMappingQuality, FilterDuplicate, FilterSecondary, FilterMateOnSameContig}

// Passes reports whether r survives every filter.
func Passes(r *samrec.SAMRecord) bool {
	for _, f := range allFilters {
		if f.Reject(r) {
			return false
		}
	}
	return true
}

// ClipSoftClips removes leading/trailing soft-clipped bases from SEQ/QUAL and
// drops the corresponding CIGAR elements. It does not otherwise rewrite the
// CIGAR.
func ClipSoftClips(r *samrec.SAMRecord) {
	c := r.CIGAR
	if len(c) == 0 {
		return
	}
	seqOff := int32(0)
	if c[0].Op == cigar.SoftClip {
		seqOff = c[0].Length
		c = c[1:]
	}
	seqEnd := int32(len(r.SEQ))
	if n := len(c); n > 0 && c[n-1].Op == cigar.SoftClip {
		seqEnd -= c[n-1].Length
		c = c[:n-1]
	}
	if seqOff > seqEnd {
		seqOff = seqEnd
	}
	r.SEQ = r.SEQ[seqOff:seqEnd]
	r.QUAL = r.QUAL[seqOff:seqEnd]
	r.CIGAR = c
}

// ClipToPadded hard-clips r's SEQ/QUAL so the record does not extend past
// padded on either side, per SPEC_FULL.md §4.2.
func ClipToPadded(r *samrec.SAMRecord, padded interval.Interval) {
	begin, end := r.AlignmentBegin(), r.AlignmentEnd()
	if begin < padded.Begin {
		n := padded.Begin - begin
		if n > int32(len(r.SEQ)) {
			n = int32(len(r.SEQ))
		}
		r.SEQ = r.SEQ[n:]
		r.QUAL = r.QUAL[n:]
	}
	if end > padded.End {
		n := end - padded.End
		l := int32(len(r.SEQ))
		if n > l {
			n = l
		}
		r.SEQ = r.SEQ[:l-n]
		r.QUAL = r.QUAL[:l-n]
	}
}

// newSeed draws a seed from a non-deterministic entropy source, per
// SPEC_FULL.md §4.2 ("The RNG is seeded from a non-deterministic entropy
// source"), unlike the teacher's own makeRandom which defaults to a fixed
// reproducible seed when no seed file is supplied.
func newSeed() uint64 {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		panic(err) // crypto/rand.Read failing is not a recoverable condition
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// Subsample uniformly samples without replacement down to cap, if len(reads)
// exceeds cap. The order of the surviving reads is not meaningful.
func Subsample(reads []*samrec.SAMRecord, cap int) []*samrec.SAMRecord {
	if len(reads) <= cap {
		return reads
	}
	rng := rand.New(rand.NewPCG(newSeed(), newSeed()))
	// Partial Fisher-Yates: shuffle the first `cap` positions against the
	// full slice, giving each read an equal chance of ending up selected.
	shuffled := make([]*samrec.SAMRecord, len(reads))
	copy(shuffled, reads)
	for i := 0; i < cap; i++ {
		j := i + rng.IntN(len(shuffled)-i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:cap]
}

// Prepare runs the full read preparer pipeline over raw reads recruited for
// padded, returning the surviving, clipped reads.
func Prepare(reads []*samrec.SAMRecord, padded interval.Interval, readCap int) []*samrec.SAMRecord {
	var out []*samrec.SAMRecord
	for _, r := range reads {
		if !Passes(r) {
			continue
		}
		rc := *r
		ClipSoftClips(&rc)
		ClipToPadded(&rc, padded)
		if len(rc.SEQ) < MinReadLength {
			continue
		}
		out = append(out, &rc)
	}
	return Subsample(out, readCap)
}
