// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

package huffman

import (
	"sort"
)

const (
	// rootIndexedBits is the width of the root decode table.
	rootIndexedBits = 9

	// minIndexedBits and maxIndexedBits bound the width of child decode
	// tables.
	minIndexedBits = 3
	maxIndexedBits = 9
)

// Table maps between byte symbols and the codewords of a canonical prefix
// code.  The zero value is an uninitialized table; Initialize may be called
// on it exactly once.  Once initialized the table is immutable.
type Table struct {
	codeByID   []uint32
	lengthByID []uint8

	// decodeTables[0] is the root; child links within decodeEntries are
	// indices into decodeTables.  All tables share the one entry pool.
	decodeTables  []decodeTable
	decodeEntries []decodeEntry

	// padBits is the first eight bits of the longest codeword, used both
	// to pad encoder output and to validate decoder trailers.
	padBits uint8

	initialized    bool
	used           bool
	failedSymbolID uint16
}

// IsInitialized reports whether Initialize has succeeded on this table.
func (t *Table) IsInitialized() bool {
	return t.initialized
}

// Initialize validates a canonical code listing and builds the encoding
// arrays and decode-table chain.  The listing must present symbol ids in
// ascending order starting from zero; ranked by (length, code) the codewords
// must form a canonical sequence; and the longest codeword must be at least
// eight bits so that the pad byte is fully defined.  On
// failure an *InitError carrying the offending symbol id is returned and the
// table stays unusable.  Initialize may be called at most once.
func (t *Table) Initialize(symbols []Symbol) error {
	if t.used {
		panic("huffman: table may only be initialized once")
	}
	t.used = true

	if len(symbols) == 0 {
		return t.fail(0)
	}

	for i := range symbols {
		if int(symbols[i].ID) != i {
			return t.fail(uint16(i))
		}
		if symbols[i].Length < 1 || symbols[i].Length > 32 {
			return t.fail(symbols[i].ID)
		}
	}

	// Canonical checks run over (length, code) rank, not id order.
	canonical := make([]Symbol, len(symbols))
	copy(canonical, symbols)
	sort.Slice(canonical, func(i, j int) bool {
		if canonical[i].Length != canonical[j].Length {
			return canonical[i].Length < canonical[j].Length
		}
		return canonical[i].Code < canonical[j].Code
	})

	// next is the integer value, in length-bit width, that the upcoming
	// codeword must take.  Kept in 64 bits so exhaustion of the code space
	// shows up as next reaching 1<<length.
	var next uint64
	var length uint8
	for i, s := range canonical {
		if i == 0 {
			if s.Code>>(32-uint(s.Length)) != 0 {
				return t.fail(s.ID)
			}
			next, length = 1, s.Length
			continue
		}
		next <<= uint(s.Length - length)
		length = s.Length
		if next >= 1<<uint(length) {
			return t.fail(s.ID)
		}
		if uint64(s.Code>>(32-uint(length))) != next {
			return t.fail(s.ID)
		}
		next++
	}

	// The pad byte is the first eight bits of the longest codeword, so the
	// longest codeword must supply at least eight.
	if length < 8 {
		return t.fail(canonical[len(canonical)-1].ID)
	}

	t.codeByID = make([]uint32, len(symbols))
	t.lengthByID = make([]uint8, len(symbols))
	for i, s := range symbols {
		t.codeByID[i] = s.Code
		t.lengthByID[i] = s.Length
	}

	t.buildDecodeTables(canonical)
	t.padBits = uint8(canonical[len(canonical)-1].Code >> 24)
	t.initialized = true

	log.Debugf("initialized %d-symbol table: %d decode tables over %d entries, pad bits %#02x",
		len(symbols), len(t.decodeTables), len(t.decodeEntries), t.padBits)
	return nil
}

func (t *Table) fail(id uint16) error {
	t.failedSymbolID = id
	log.Debugf("code listing rejected at symbol %d", id)
	return &InitError{SymbolID: id}
}

func (t *Table) addDecodeTable(prefix, indexed uint8) uint8 {
	if len(t.decodeTables) == 255 {
		panic("huffman: decode table index space exhausted")
	}
	table := decodeTable{
		prefixLength:  prefix,
		indexedLength: indexed,
		entriesOffset: len(t.decodeEntries),
	}
	t.decodeEntries = append(t.decodeEntries, make([]decodeEntry, table.size())...)
	t.decodeTables = append(t.decodeTables, table)
	return uint8(len(t.decodeTables) - 1)
}

// longestSharingPrefix returns the longest code length among symbols whose
// top prefixBits bits equal those of code.  At least one such symbol exists
// at every call site (the one being installed).
func longestSharingPrefix(canonical []Symbol, code uint32, prefixBits uint8) uint8 {
	mask := ^uint32(0) << (32 - uint(prefixBits))
	var longest uint8
	for _, s := range canonical {
		if s.Code&mask == code&mask && s.Length > longest {
			longest = s.Length
		}
	}
	return longest
}

// buildDecodeTables installs every symbol into the table chain.  A symbol
// short enough for the current table fills the contiguous run of slots its
// codeword selects; a longer symbol routes through a pointer entry, creating
// the child table on first use.  Child widths are fixed at creation from the
// longest codeword sharing the child's prefix, so construction never revisits
// an installed entry.
func (t *Table) buildDecodeTables(canonical []Symbol) {
	t.addDecodeTable(0, rootIndexedBits)

	for _, s := range canonical {
		ti := uint8(0)
		for {
			table := t.decodeTables[ti]
			idx := int((s.Code << table.prefixLength) >> (32 - table.indexedLength))

			if s.Length <= table.prefixLength+table.indexedLength {
				span := 1 << (table.prefixLength + table.indexedLength - s.Length)
				for k := 0; k < span; k++ {
					t.decodeEntries[table.entriesOffset+idx+k] = decodeEntry{
						nextTableIndex: ti,
						length:         s.Length,
						symbolID:       s.ID,
					}
				}
				break
			}

			if t.decodeEntries[table.entriesOffset+idx].length == 0 {
				childPrefix := table.prefixLength + table.indexedLength
				longest := longestSharingPrefix(canonical, s.Code, childPrefix)
				indexed := longest - childPrefix
				if indexed < minIndexedBits {
					indexed = minIndexedBits
				}
				if indexed > maxIndexedBits {
					indexed = maxIndexedBits
				}
				child := t.addDecodeTable(childPrefix, indexed)
				t.decodeEntries[table.entriesOffset+idx] = decodeEntry{
					nextTableIndex: child,
					length:         longest,
					symbolID:       0,
				}
			}
			ti = t.decodeEntries[table.entriesOffset+idx].nextTableIndex
		}
	}
}
