// Package samrec defines the SAMRecord value type the core consumes, and the
// SAM flag bits used by the read preparer's filters. The BGZF/BAI decoding
// that produces these records lives in bamio; this package knows nothing
// about BAM's on-disk representation.
package samrec

import "github.com/elvariant/varcall/cigar"

// Flag bits, following the SAM specification.
const (
	Multiple      uint16 = 0x1
	Proper        uint16 = 0x2
	Unmapped      uint16 = 0x4
	NextUnmapped  uint16 = 0x8
	Reversed      uint16 = 0x10
	NextReversed  uint16 = 0x20
	First         uint16 = 0x40
	Last          uint16 = 0x80
	Secondary     uint16 = 0x100
	QCFailed      uint16 = 0x200
	Duplicate     uint16 = 0x400
	Supplementary uint16 = 0x800
)

// SAMRecord is the subset of a SAM/BAM alignment record this core needs.
// POS is 1-based, matching the SAM text representation; AlignmentBegin below
// converts to the 0-based coordinate this core's Interval type uses.
type SAMRecord struct {
	QNAME string
	FLAG  uint16
	RNAME string
	POS   int32
	MAPQ  byte
	CIGAR cigar.Cigar
	RNEXT string
	PNEXT int32
	TLEN  int32
	SEQ   string
	QUAL  string // phred+33 per base
}

// IsSet reports whether every bit in mask is set in the record's flag.
func (r *SAMRecord) IsSet(mask uint16) bool {
	return r.FLAG&mask == mask
}

// AlignmentBegin is the 0-based position of the first aligned reference base.
func (r *SAMRecord) AlignmentBegin() int32 {
	return r.POS - 1
}

// AlignmentEnd is the 0-based, exclusive end of the aligned reference span.
func (r *SAMRecord) AlignmentEnd() int32 {
	return r.AlignmentBegin() + r.CIGAR.ReferenceLength()
}

// Len returns the number of bases in SEQ.
func (r *SAMRecord) Len() int {
	return len(r.SEQ)
}
