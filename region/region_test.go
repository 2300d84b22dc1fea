package region

import (
	"testing"

	"github.com/elvariant/varcall/interval"
)

func TestWindowsTilesAndPads(t *testing.T) {
	p := interval.New("chr1", 0, 500)
	wins := windows(p)

	if len(wins) != 3 {
		t.Fatalf("expected ceil(500/245)=3 windows, got %d", len(wins))
	}
	if wins[0].origin.Begin != 0 || wins[0].origin.End != 245 {
		t.Errorf("window 0 origin = %v, want [0,245)", wins[0].origin)
	}
	if wins[0].padded.Begin != 0 {
		t.Errorf("window 0 padded begin = %d, want 0 (saturated)", wins[0].padded.Begin)
	}
	if wins[0].padded.End != 245+AssemblyRegionPadding {
		t.Errorf("window 0 padded end = %d, want %d", wins[0].padded.End, 245+AssemblyRegionPadding)
	}
	if wins[2].origin.End != 490+AssemblyRegionSize {
		t.Errorf("last window should span a full region size from its begin, got %v", wins[2].origin)
	}
}

func TestWindowsSinglePartialTile(t *testing.T) {
	p := interval.New("chr1", 1000, 1100)
	wins := windows(p)
	if len(wins) != 1 {
		t.Fatalf("expected 1 window for a span shorter than the region size, got %d", len(wins))
	}
	if wins[0].origin.Begin != 1000 || wins[0].origin.End != 1000+AssemblyRegionSize {
		t.Errorf("origin = %v, want [1000,%d)", wins[0].origin, 1000+AssemblyRegionSize)
	}
	if wins[0].padded.Begin != 1000-AssemblyRegionPadding {
		t.Errorf("padded begin = %d, want %d", wins[0].padded.Begin, 1000-AssemblyRegionPadding)
	}
}
