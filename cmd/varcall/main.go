// Command varcall is the CLI entry point of SPEC_FULL.md §6: it wires the
// BAM and FASTA collaborators, the region sweeper and the VCF sink together
// behind a small flag surface.
//
// Grounded on mudesheng-ga/ga.go's cli.New/DefineStringFlag pattern (the
// only command/flag framework in the retrieval pack) and the overall
// dispatch-and-exit-code shape of ExaScience-elprep/main.go.
package main

import (
	"io"
	"log"
	"os"

	"github.com/jwaldrip/odin/cli"

	"github.com/elvariant/varcall/fastaio"
	"github.com/elvariant/varcall/interval"
	"github.com/elvariant/varcall/region"
	"github.com/elvariant/varcall/vcfio"
)

var app = cli.New("1.0.0", "short-variant caller from aligned sequencing reads", run)

func init() {
	app.DefineStringFlag("I", "", "input BAM file (required)")
	app.DefineStringFlag("O", "", "output VCF file (required)")
	app.DefineStringFlag("R", "", "reference FASTA file (required)")
	app.DefineIntFlag("region-size", region.AssemblyRegionSize, "assembly region size (accepted but not applied; windows are always region.AssemblyRegionSize)")
	app.DefineIntFlag("region-padding", region.AssemblyRegionPadding, "assembly region padding (accepted but not applied; padding is always region.AssemblyRegionPadding)")
	app.DefineIntFlag("read-cap", region.MaxReadsOnAssemblyRegion, "max reads kept per assembly region (accepted but not applied; the cap is always region.MaxReadsOnAssemblyRegion)")
	app.DefineBoolFlag("dot", false, "dump every window's pruned assembly graph as Graphviz DOT to stderr")
}

func run(c cli.Command) {
	bamPath := c.Flag("I").String()
	vcfPath := c.Flag("O").String()
	refPath := c.Flag("R").String()
	if bamPath == "" || vcfPath == "" || refPath == "" {
		log.Fatal("varcall: -I, -O and -R are all required")
	}

	contig, refBases, err := fastaio.Load(refPath)
	if err != nil {
		log.Fatalf("varcall: %v", err)
	}

	out, err := os.Create(vcfPath)
	if err != nil {
		log.Fatalf("varcall: %v", err)
	}
	defer out.Close()

	writer, err := vcfio.NewWriter(out)
	if err != nil {
		log.Fatalf("varcall: %v", err)
	}

	var dot io.Writer
	if c.Flag("dot").Get().(bool) {
		dot = os.Stderr
	}

	p := interval.New(contig, 0, int32(len(refBases)))
	if err := region.Sweep(bamPath, refBases, p, writer, dot); err != nil {
		log.Fatalf("varcall: %v", err)
	}
}

func main() {
	app.Start()
}
