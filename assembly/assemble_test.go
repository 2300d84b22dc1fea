package assembly

import "testing"

func TestSegmentsDropsLowQualityAndN(t *testing.T) {
	seq := "ACGTNACGTACGTACGTACGTACGTACGT"
	qual := make([]byte, len(seq))
	for i := range qual {
		qual[i] = 40 // phred33 40, raw quality 7, below the raw-10 threshold
	}
	for i := 5; i < len(seq); i++ {
		qual[i] = 43 + 10 // comfortably above threshold
	}
	segs := Segments(seq, string(qual), 10)
	for _, s := range segs {
		if len(s) < 10 {
			t.Errorf("segment %q shorter than k", s)
		}
	}
}

func TestAssembleIdentityHaplotype(t *testing.T) {
	ref := "ACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGT"
	out := Assemble(ref, nil)
	if len(out.Haplotypes) == 0 {
		t.Fatal("expected at least the reference haplotype")
	}
	foundRef := false
	for _, h := range out.Haplotypes {
		if h.IsRef {
			foundRef = true
			if h.Score != 0 {
				t.Errorf("reference haplotype score = %v, want 0", h.Score)
			}
			if h.AlignmentBeginWrtRef != 0 {
				t.Errorf("reference haplotype alignment_begin = %v, want 0", h.AlignmentBeginWrtRef)
			}
			if h.Bases != ref {
				t.Errorf("reference haplotype bases mismatch")
			}
		}
	}
	if !foundRef {
		t.Error("reference haplotype not present")
	}
}

func TestAssembleRejectsTooShortReference(t *testing.T) {
	out := Assemble("ACGT", nil)
	if len(out.Haplotypes) != 0 {
		t.Errorf("expected no haplotypes for a reference shorter than k")
	}
}

func TestHaplotypeInvariants(t *testing.T) {
	ref := "AAACCCCCGGGGTTTTAAACCCCCGGGGTTTTAAACCCCCGGGGTTTTAAACCCCCGGGGTTTTAAACCCCCGGGGTTTT"
	out := Assemble(ref, []string{"AAACCCCCGGGGATTTAAACCCCCGGGGTTTTAAACCCCCGGGGTTTTAAACCCCCGGGGTTTTAAACCCCCGGGGTTTT"})
	for _, h := range out.Haplotypes {
		if h.Cigar.ReadLength() != int32(len(h.Bases)) {
			t.Errorf("cigar read length %d != bases length %d", h.Cigar.ReadLength(), len(h.Bases))
		}
		if h.AlignmentBeginWrtRef+h.Cigar.ReferenceLength() > int32(len(ref)) {
			t.Errorf("alignment exceeds padded reference bounds")
		}
		if !h.IsRef && h.Score > 0 {
			t.Errorf("non-reference haplotype score %v > 0", h.Score)
		}
	}
}
