// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

package huffman

// DecodeString decodes codewords from src into *out until capacity bytes
// have been produced or the source is exhausted.  *out is truncated before
// decoding begins; on failure it holds the bytes decoded so far.
//
// Decoding succeeds when the source ends exactly on a codeword boundary, or
// when the bits past the last full codeword number at most seven and match
// the high bits of the EOS codeword.  Reaching capacity with more than seven
// bits left over, or with a trailer that is not EOS padding, fails with
// ErrTrailingGarbage, as does a final remainder of at most seven bits that
// completes no codeword and is not EOS padding.  Otherwise a prefix that
// selects no codeword, or input that ends inside one, fails with
// ErrInvalidCode.  A codeword naming the EOS symbol
// itself fails with ErrEOSEmitted.
func (t *Table) DecodeString(src *BitSource, capacity int, out *[]byte) error {
	if !t.initialized {
		panic("huffman: table not initialized")
	}
	*out = (*out)[:0]

	for {
		if len(*out) == capacity {
			return t.checkTrailer(src)
		}

		start := src.BitsRemaining()
		if start == 0 {
			return nil
		}

		sym, ok := t.decodeSymbol(src)
		if !ok {
			// The root table indexes more bits than any partial
			// trailer holds, so a failed walk here cannot have
			// moved the cursor: the remainder is either EOS
			// padding or garbage.
			if start < 8 {
				if src.MatchesPrefix(t.padBits, uint8(start)) {
					return nil
				}
				return ErrTrailingGarbage
			}
			return ErrInvalidCode
		}
		if sym >= 256 {
			return ErrEOSEmitted
		}
		*out = append(*out, byte(sym))
	}
}

// decodeSymbol walks the table chain for one codeword and consumes its bits.
// It returns false when the source cannot resolve a terminal entry, leaving
// the cursor wherever the walk stopped.
func (t *Table) decodeSymbol(src *BitSource) (uint16, bool) {
	ti := uint8(0)
	for {
		table := t.decodeTables[ti]
		word, avail := src.PeekBits(table.indexedLength)
		e := t.decodeEntries[table.entriesOffset+int(word>>(32-table.indexedLength))]

		if e.length == 0 {
			return 0, false
		}

		if e.length <= table.prefixLength+table.indexedLength {
			// Terminal.
			need := e.length - table.prefixLength
			if avail < need {
				return 0, false
			}
			src.ConsumeBits(need)
			return e.symbolID, true
		}

		// Pointer: descend after consuming this table's stride.
		if avail < table.indexedLength {
			return 0, false
		}
		src.ConsumeBits(table.indexedLength)
		ti = e.nextTableIndex
	}
}

// checkTrailer applies the end-of-input rules once the output cap is
// reached: at most seven bits may remain and they must be EOS padding.
func (t *Table) checkTrailer(src *BitSource) error {
	r := src.BitsRemaining()
	switch {
	case r == 0:
		return nil
	case r > 7:
		return ErrTrailingGarbage
	case src.MatchesPrefix(t.padBits, uint8(r)):
		return nil
	default:
		return ErrTrailingGarbage
	}
}
