package assembly

import "testing"

func TestAlignScenarios(t *testing.T) {
	cases := []struct {
		name           string
		ref, alt       string
		params         SWParams
		strategy       OverhangStrategy
		wantOffset     int32
		wantCigar      string
	}{
		{"1", "AAACCCCC", "CCCCC", OriginalDefault, SoftClip, 3, "5M"},
		{"2", "TGTGTGTGTGTGTGACAGAGAGAGAGAGAGAGAGAGAGAGAGAGA",
			"ACAGAGAGAGAGAGAGAGAGAGAGAGAGAGAGAGAGAGAGAGAGAGAGAGA",
			StandardNGS, SoftClip, 14, "31M20S"},
		{"3", "AAACCCCC", "CCCCCGGG", OriginalDefault, SoftClip, 3, "5M3S"},
		{"4", "AAAGACTACTG", "AACGGACACTG", SWParams{50, -100, -220, -12}, Indel, 1, "2M2I3M1D4M"},
		{"5", "AAAGACTACTG", "AACGGACACTG", SWParams{200, -50, -300, -22}, Indel, 0, "11M"},
		{"6", "AAAGGACTGACTG", "ACTGACTGACTG", OriginalDefault, SoftClip, 1, "12M"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			gotCigar, gotOffset := Align(c.ref, c.alt, c.params, c.strategy)
			if gotOffset != c.wantOffset {
				t.Errorf("offset = %d, want %d", gotOffset, c.wantOffset)
			}
			if got := gotCigar.String(); got != c.wantCigar {
				t.Errorf("cigar = %q, want %q", got, c.wantCigar)
			}
		})
	}
}

func TestAlignEqualStringsFastPath(t *testing.T) {
	cigar, offset := AlignHaplotype("ACGTACGT", "ACGTACGT")
	if offset != 0 {
		t.Errorf("offset = %d, want 0", offset)
	}
	if got := cigar.String(); got != "8M" {
		t.Errorf("cigar = %q, want 8M", got)
	}
}
