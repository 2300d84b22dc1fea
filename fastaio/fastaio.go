// Package fastaio is the FASTA collaborator of SPEC_FULL.md §6: Load hands
// the core a plain (name, bases) pair with case preserved, and Slice returns
// an uppercased window of those bases.
//
// Grounded on the retrieval pack's mudesheng-ga/mapDBG/mapDBG.go, which
// reads records the same way:
// fasta.NewReader(file, linear.NewSeq("", nil, alphabet.DNA)) followed by
// Read() and a *linear.Seq type assertion.
package fastaio

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Load reads the first record of the FASTA file at path, returning its name
// and bases with case preserved; the core uppercases the slice it uses.
func Load(path string) (name string, bases []byte, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("fastaio: %w", err)
	}
	defer f.Close()

	rd := fasta.NewReader(f, linear.NewSeq("", nil, alphabet.DNA))
	s, err := rd.Read()
	if err != nil {
		if err == io.EOF {
			return "", nil, fmt.Errorf("fastaio: %s is empty", path)
		}
		return "", nil, fmt.Errorf("fastaio: reading %s: %w", path, err)
	}
	seq := s.(*linear.Seq)

	out := make([]byte, len(seq.Seq))
	for i, l := range seq.Seq {
		out[i] = byte(l)
	}
	return seq.ID, out, nil
}

// Slice returns the uppercased subsequence bases[begin:end], clamped to
// bases' bounds, for the padded window the region sweeper requests.
func Slice(bases []byte, begin, end int32) string {
	if begin < 0 {
		begin = 0
	}
	if end > int32(len(bases)) {
		end = int32(len(bases))
	}
	if begin >= end {
		return ""
	}
	return strings.ToUpper(string(bases[begin:end]))
}
