// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

package huffman

// EncodedSize returns the number of bytes EncodeString will emit for input.
func (t *Table) EncodedSize(input []byte) int {
	if !t.initialized {
		panic("huffman: table not initialized")
	}
	bits := 0
	for _, b := range input {
		bits += int(t.lengthByID[b])
	}
	return (bits + 7) / 8
}

// EncodeString appends the codeword of every input byte to sink, then pads
// the final byte with the high bits of the EOS codeword.
func (t *Table) EncodeString(input []byte, sink *BitSink) {
	if !t.initialized {
		panic("huffman: table not initialized")
	}
	for _, b := range input {
		sink.AppendBits(t.codeByID[b], t.lengthByID[b])
	}
	sink.PadToByte(t.padBits)
}
