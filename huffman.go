// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ./LICENSE.md.

/*
Package hpack binds the canonical Huffman codec to the HPACK alphabet of
RFC 7541.  It carries the Appendix B symbol listing and a process-wide table
built from it once on first use.
*/
package hpack

import (
	"sync"

	"github.com/op/go-logging"

	"github.com/ferrule/hpack/huffman"
)

var log = logging.MustGetLogger("hpack")

var (
	tableOnce   sync.Once
	sharedTable *huffman.Table
)

// HuffmanTable returns the shared table for the HPACK alphabet.  The table
// is immutable once built and safe for concurrent use; only sinks and
// sources are per-operation state.
func HuffmanTable() *huffman.Table {
	tableOnce.Do(func() {
		t := new(huffman.Table)
		if err := t.Initialize(HuffmanCode()); err != nil {
			// The bundled listing is a constant; rejection means the
			// program itself is broken.
			panic("hpack: RFC 7541 Huffman code rejected: " + err.Error())
		}
		log.Debugf("built shared HPACK Huffman table")
		sharedTable = t
	})
	return sharedTable
}

// EncodeHuffman returns the HPACK Huffman encoding of input: the
// concatenated codewords, padded to a byte boundary with leading bits of
// the EOS codeword.
func EncodeHuffman(input []byte) []byte {
	sink := huffman.NewBitSink()
	HuffmanTable().EncodeString(input, sink)
	return sink.TakeString()
}

// EncodedSize returns the number of bytes EncodeHuffman will produce for
// input without encoding it.
func EncodedSize(input []byte) int {
	return HuffmanTable().EncodedSize(input)
}

// DecodeHuffman decodes an HPACK Huffman bit-stream, producing at most
// maxLen bytes.  On failure the bytes decoded before the error are returned
// alongside it.
func DecodeHuffman(encoded []byte, maxLen int) ([]byte, error) {
	src := huffman.NewBitSource(encoded)
	var out []byte
	err := HuffmanTable().DecodeString(src, maxLen, &out)
	return out, err
}
