// Package vcfio is the minimal VCF v4.2 sink of SPEC_FULL.md §6. It is
// deliberately not a port of the teacher's own vcf package: that package's
// Info maps, multi-type FORMAT fields and Number/Type enums exist to
// round-trip arbitrary VCFs, which this core's fixed GT:GQ output never
// needs. What is kept is the teacher's buffering idiom: every one of its own
// text-format writers wraps its destination in a bufio.Writer.
package vcfio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/elvariant/varcall/variant"
)

const header = `##fileformat=VCFv4.2
##FORMAT=<ID=GQ,Number=1,Type=Integer,Description="Genotype Quality">
##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	NA12878
`

// Writer serializes calls to a minimal VCF v4.2 stream, per SPEC_FULL.md §6.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps dst in a buffered VCF writer and emits the header.
func NewWriter(dst io.Writer) (*Writer, error) {
	w := &Writer{w: bufio.NewWriter(dst)}
	if _, err := w.w.WriteString(header); err != nil {
		return nil, fmt.Errorf("vcfio: writing header: %w", err)
	}
	return w, nil
}

// WriteVariant appends one variant record, per SPEC_FULL.md §6's row layout.
func (w *Writer) WriteVariant(v variant.Variant) error {
	_, err := fmt.Fprintf(w.w, "%s\t%d\t.\t%s\t%s\t.\t.\t.\tGT:GQ\t%d/%d:%d\n",
		v.Location.Contig, v.Location.Begin+1, v.Ref, v.Alt, v.GT[0], v.GT[1], v.GQ)
	if err != nil {
		return fmt.Errorf("vcfio: writing variant at %s: %w", v.Location, err)
	}
	return nil
}

// Flush flushes the underlying buffer; callers must call this before closing
// the destination.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("vcfio: flush: %w", err)
	}
	return nil
}
