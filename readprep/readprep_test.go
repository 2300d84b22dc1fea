package readprep

import (
	"testing"

	"github.com/elvariant/varcall/cigar"
	"github.com/elvariant/varcall/interval"
	"github.com/elvariant/varcall/samrec"
)

func baseRead() *samrec.SAMRecord {
	return &samrec.SAMRecord{
		QNAME: "r1",
		FLAG:  0,
		RNAME: "chr1",
		POS:   101,
		MAPQ:  40,
		CIGAR: cigar.Cigar{{Length: 30, Op: cigar.Match}},
		RNEXT: "=",
		SEQ:   "ACGTACGTACGTACGTACGTACGTACGTAA",
		QUAL:  "IIIIIIIIIIIIIIIIIIIIIIIIIIIIII",
	}
}

func TestPassesRejectsLowMappingQuality(t *testing.T) {
	r := baseRead()
	r.MAPQ = 10
	if Passes(r) {
		t.Error("expected a read with MAPQ < 20 to be rejected")
	}
}

func TestPassesRejectsDuplicateAndSecondary(t *testing.T) {
	dup := baseRead()
	dup.FLAG = samrec.Duplicate
	if Passes(dup) {
		t.Error("expected a duplicate-flagged read to be rejected")
	}
	sec := baseRead()
	sec.FLAG = samrec.Secondary
	if Passes(sec) {
		t.Error("expected a secondary-flagged read to be rejected")
	}
}

func TestPassesRejectsMateOnDifferentContig(t *testing.T) {
	r := baseRead()
	r.RNEXT = "chr2"
	if Passes(r) {
		t.Error("expected a read whose mate is on a different contig to be rejected")
	}
}

func TestPassesAcceptsCleanRead(t *testing.T) {
	if !Passes(baseRead()) {
		t.Error("expected a clean read to pass every filter")
	}
}

func TestClipSoftClipsTrimsLeadingAndTrailing(t *testing.T) {
	r := baseRead()
	r.SEQ = "NNNACGTACGTACGTACGTACGTACGTNNN"
	r.QUAL = r.SEQ
	r.CIGAR = cigar.Cigar{{Length: 3, Op: cigar.SoftClip}, {Length: 24, Op: cigar.Match}, {Length: 3, Op: cigar.SoftClip}}
	ClipSoftClips(r)
	if r.SEQ != "ACGTACGTACGTACGTACGTACGT" {
		t.Errorf("SEQ after clip = %q", r.SEQ)
	}
	if len(r.CIGAR) != 1 || r.CIGAR[0].Op != cigar.Match {
		t.Errorf("CIGAR after clip = %v, want a single M element", r.CIGAR)
	}
}

func TestClipToPaddedHardClipsOverhang(t *testing.T) {
	r := baseRead() // AlignmentBegin = 100, AlignmentEnd = 130
	padded := interval.New("chr1", 110, 120)
	ClipToPadded(r, padded)
	if len(r.SEQ) != 10 {
		t.Errorf("SEQ length after clip = %d, want 10 (only the overlap with padded survives)", len(r.SEQ))
	}
}

func TestSubsampleRespectsCap(t *testing.T) {
	reads := make([]*samrec.SAMRecord, 50)
	for i := range reads {
		reads[i] = baseRead()
	}
	out := Subsample(reads, 10)
	if len(out) != 10 {
		t.Fatalf("len(out) = %d, want 10", len(out))
	}
}

func TestSubsampleNoopUnderCap(t *testing.T) {
	reads := []*samrec.SAMRecord{baseRead(), baseRead()}
	out := Subsample(reads, 10)
	if len(out) != 2 {
		t.Errorf("expected no subsampling when under cap, got %d reads", len(out))
	}
}

func TestPrepareDropsShortReads(t *testing.T) {
	r := baseRead()
	r.SEQ = "ACGTACGTAC"
	r.QUAL = "IIIIIIIIII"
	r.CIGAR = cigar.Cigar{{Length: 10, Op: cigar.Match}}
	out := Prepare([]*samrec.SAMRecord{r}, interval.New("chr1", 0, 1000), 200)
	if len(out) != 0 {
		t.Errorf("expected the short read to be dropped, got %d surviving", len(out))
	}
}
