package pairhmm

import (
	"math"
	"testing"
)

func highQual(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 33 + 30 // phred 30
	}
	return string(b)
}

func TestLikelihoodIsNonPositive(t *testing.T) {
	read := Read{Bases: "ACGTACGTAC", Qual: highQual(10)}
	ll := Likelihood(read, "ACGTACGTAC")
	if ll > 1e-9 {
		t.Errorf("likelihood = %v, want <= 0", ll)
	}
}

func TestLikelihoodPerfectMatchBeatsMismatch(t *testing.T) {
	read := Read{Bases: "ACGTACGTAC", Qual: highQual(10)}
	match := Likelihood(read, "ACGTACGTAC")
	mismatch := Likelihood(read, "TTTTTTTTTT")
	if match <= mismatch {
		t.Errorf("expected perfect match likelihood %v > mismatch likelihood %v", match, mismatch)
	}
}

func TestPostProcessCapsSurvivingRead(t *testing.T) {
	mat := &Matrix{
		Reads:      []Read{{Bases: "ACGTACGTACGTACGTACGTACGTAC", Qual: highQual(26)}},
		Haplotypes: []string{"h0", "h1"},
		Values:     [][]float64{{-1.0, -10.0}},
	}
	out := PostProcess(mat, []int{26})
	if len(out.Values) != 1 {
		t.Fatalf("expected 1 surviving read, got %d", len(out.Values))
	}
	row := out.Values[0]
	maxV, minV := row[0], row[0]
	for _, v := range row {
		if v > maxV {
			maxV = v
		}
		if v < minV {
			minV = v
		}
	}
	if maxV-minV > 4.5+1e-9 {
		t.Errorf("max-min = %v, want <= 4.5", maxV-minV)
	}
}

func TestPostProcessDropsPoorlyModeledRead(t *testing.T) {
	mat := &Matrix{
		Reads:      []Read{{Bases: "AC", Qual: highQual(2)}},
		Haplotypes: []string{"h0"},
		Values:     [][]float64{{-100.0}},
	}
	out := PostProcess(mat, []int{2})
	if len(out.Values) != 0 {
		t.Errorf("expected the poorly-modeled read to be dropped")
	}
}

func TestCappedQualityClipsToMapq(t *testing.T) {
	if got := cappedQuality(60, 20); got != 33+20 {
		t.Errorf("cappedQuality = %d, want %d", got, 33+20)
	}
	if got := cappedQuality(30, 40); got != 30 {
		t.Errorf("cappedQuality = %d, want 30 (no clip needed)", got)
	}
}

func TestEmissionNBase(t *testing.T) {
	p := emission('N', 33+30, 'A')
	if math.Abs(p-(1-qualToError[33+30])) > 1e-12 {
		t.Errorf("emission with N base should treat as match")
	}
}
