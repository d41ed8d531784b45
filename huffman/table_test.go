// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

package huffman

import (
	"bytes"
	"errors"
	"strconv"
	"testing"
)

// bits32 parses a binary string of up to 32 digits into a left-aligned code
// word.  bits8 does the same for a single byte.
func bits32(s string) uint32 {
	v, err := strconv.ParseUint(s, 2, 32)
	if err != nil {
		panic(err)
	}
	return uint32(v) << (32 - uint(len(s)))
}

func bits8(s string) uint8 {
	v, err := strconv.ParseUint(s, 2, 8)
	if err != nil {
		panic(err)
	}
	return uint8(v) << (8 - uint(len(s)))
}

func mustInitialize(t *testing.T, code []Symbol) *Table {
	t.Helper()
	table := new(Table)
	if err := table.Initialize(code); err != nil {
		t.Fatalf("valid listing rejected: %v", err)
	}
	if !table.IsInitialized() {
		t.Fatalf("initialized table does not report so")
	}
	return table
}

func assertRejected(t *testing.T, code []Symbol, id uint16) {
	t.Helper()
	table := new(Table)
	err := table.Initialize(code)
	if err == nil {
		t.Fatalf("invalid listing accepted")
	}
	var ie *InitError
	if !errors.As(err, &ie) {
		t.Fatalf("rejection error %v is not an InitError", err)
	}
	if ie.SymbolID != id {
		t.Fatalf("rejected at symbol %d, want %d", ie.SymbolID, id)
	}
	if table.failedSymbolID != id {
		t.Fatalf("table retains failed symbol %d, want %d", table.failedSymbolID, id)
	}
	if table.IsInitialized() {
		t.Fatalf("failed table reports initialized")
	}
}

func TestInitializeEdgeCases(t *testing.T) {
	t.Run("seven 3-bit codes and an 8-bit tail fit", func(t *testing.T) {
		mustInitialize(t, []Symbol{
			{bits32("000"), 3, 0},
			{bits32("001"), 3, 1},
			{bits32("010"), 3, 2},
			{bits32("011"), 3, 3},
			{bits32("100"), 3, 4},
			{bits32("101"), 3, 5},
			{bits32("110"), 3, 6},
			{bits32("11100000"), 8, 7},
		})
	})

	t.Run("a 2-bit code among them overflows", func(t *testing.T) {
		assertRejected(t, []Symbol{
			{bits32("010"), 3, 0},
			{bits32("011"), 3, 1},
			{bits32("00"), 2, 2},
			{bits32("100"), 3, 3},
			{bits32("101"), 3, 4},
			{bits32("110"), 3, 5},
			{bits32("111"), 3, 6},
			{bits32("00000000"), 8, 7},
		}, 7)
	})

	t.Run("incremental lengths fit", func(t *testing.T) {
		mustInitialize(t, []Symbol{
			{bits32("0"), 1, 0},
			{bits32("10"), 2, 1},
			{bits32("110"), 3, 2},
			{bits32("11100000"), 8, 3},
		})
	})

	t.Run("repeating a length overflows", func(t *testing.T) {
		assertRejected(t, []Symbol{
			{bits32("0"), 1, 0},
			{bits32("10"), 2, 1},
			{bits32("11"), 2, 2},
			{bits32("00000000"), 8, 3},
		}, 3)
	})

	t.Run("ids must be sequential", func(t *testing.T) {
		assertRejected(t, []Symbol{
			{bits32("0"), 1, 0},
			{bits32("10"), 2, 1},
			{bits32("110"), 3, 1},
			{bits32("11100000"), 8, 3},
		}, 2)
	})

	t.Run("first code must be zero", func(t *testing.T) {
		assertRejected(t, []Symbol{
			{bits32("1000"), 4, 0},
			{bits32("1001"), 4, 1},
			{bits32("1010"), 4, 2},
			{bits32("10110000"), 8, 3},
		}, 0)
	})

	t.Run("codes must follow the canonical sequence", func(t *testing.T) {
		assertRejected(t, []Symbol{
			{bits32("00"), 2, 0},
			{bits32("01"), 2, 1},
			{bits32("11"), 2, 2},
			{bits32("10000000"), 8, 3},
		}, 2)
	})

	t.Run("the longest code must reach eight bits", func(t *testing.T) {
		table := new(Table)
		err := table.Initialize([]Symbol{
			{bits32("0"), 1, 0},
			{bits32("10"), 2, 1},
			{bits32("110"), 3, 2},
			{bits32("1110000"), 7, 3},
		})
		if err == nil {
			t.Fatalf("listing without an 8-bit code accepted")
		}
	})

	t.Run("empty listing is rejected", func(t *testing.T) {
		assertRejected(t, nil, 0)
	})
}

// smallCode is an 8-symbol canonical code whose ids deliberately do not
// follow code order.
func smallCode() []Symbol {
	return []Symbol{
		{bits32("0110"), 4, 0},
		{bits32("0111"), 4, 1},
		{bits32("00"), 2, 2},
		{bits32("010"), 3, 3},
		{bits32("10000"), 5, 4},
		{bits32("10001"), 5, 5},
		{bits32("10011000"), 8, 6},
		{bits32("10010"), 5, 7},
	}
}

func fillTo(entries []decodeEntry, n int, e decodeEntry) []decodeEntry {
	for len(entries) < n {
		entries = append(entries, e)
	}
	return entries
}

func checkEntries(t *testing.T, table *Table, dt decodeTable, expected []decodeEntry) {
	t.Helper()
	if dt.size() != len(expected) {
		t.Fatalf("table holds %d entries, want %d", dt.size(), len(expected))
	}
	got := table.decodeEntries[dt.entriesOffset : dt.entriesOffset+dt.size()]
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("entry %d is %+v, want %+v", i, got[i], expected[i])
		}
	}
}

func TestSmallCodeInternals(t *testing.T) {
	code := smallCode()
	table := mustInitialize(t, code)

	for i, s := range code {
		if table.codeByID[i] != s.Code || table.lengthByID[i] != s.Length {
			t.Fatalf("symbol %d stored as (%#x, %d), want (%#x, %d)",
				i, table.codeByID[i], table.lengthByID[i], s.Code, s.Length)
		}
	}

	if len(table.decodeTables) != 1 {
		t.Fatalf("built %d decode tables, want 1", len(table.decodeTables))
	}

	expected := fillTo(nil, 128, decodeEntry{0, 2, 2})
	expected = fillTo(expected, 192, decodeEntry{0, 3, 3})
	expected = fillTo(expected, 224, decodeEntry{0, 4, 0})
	expected = fillTo(expected, 256, decodeEntry{0, 4, 1})
	expected = fillTo(expected, 272, decodeEntry{0, 5, 4})
	expected = fillTo(expected, 288, decodeEntry{0, 5, 5})
	expected = fillTo(expected, 304, decodeEntry{0, 5, 7})
	expected = fillTo(expected, 306, decodeEntry{0, 8, 6})
	expected = fillTo(expected, 512, decodeEntry{})
	checkEntries(t, table, table.decodeTables[0], expected)

	if table.padBits != bits8("10011000") {
		t.Fatalf("pad bits %#02x, want %#02x", table.padBits, bits8("10011000"))
	}

	// By symbol: (2) 00 (3) 010 (2) 00 (7) 10010 (4) 10000 (6 as pad) 1001100.
	input := []byte{2, 3, 2, 7, 4}
	expect := []byte{bits8("00010001"), bits8("00101000"), bits8("01001100")}

	sink := NewBitSink()
	table.EncodeString(input, sink)
	encoded := sink.TakeString()
	if !bytes.Equal(encoded, expect) {
		t.Fatalf("encoded % x, want % x", encoded, expect)
	}
	if table.EncodedSize(input) != len(expect) {
		t.Fatalf("EncodedSize %d, want %d", table.EncodedSize(input), len(expect))
	}

	var out []byte
	if err := table.DecodeString(NewBitSource(encoded), len(input), &out); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !bytes.Equal(out, input) {
		t.Fatalf("decoded % x, want % x", out, input)
	}
}

func TestMultiLevelDecodeTables(t *testing.T) {
	table := mustInitialize(t, []Symbol{
		{bits32("000000"), 6, 0},
		{bits32("000001"), 6, 1},
		{bits32("00001000000"), 11, 2},
		{bits32("00001000001"), 11, 3},
		{bits32("000010000100"), 12, 4},
	})

	if len(table.decodeTables) != 2 {
		t.Fatalf("built %d decode tables, want 2", len(table.decodeTables))
	}

	root := table.decodeTables[0]
	if root.prefixLength != 0 || root.indexedLength != 9 {
		t.Fatalf("root table is (%d, %d), want (0, 9)", root.prefixLength, root.indexedLength)
	}
	expected := fillTo(nil, 8, decodeEntry{0, 6, 0})
	expected = fillTo(expected, 16, decodeEntry{0, 6, 1})
	expected = fillTo(expected, 17, decodeEntry{1, 12, 0}) // Pointer.
	expected = fillTo(expected, 512, decodeEntry{})
	checkEntries(t, table, root, expected)

	child := table.decodeTables[1]
	if child.prefixLength != 9 || child.indexedLength != 3 {
		t.Fatalf("child table is (%d, %d), want (9, 3)", child.prefixLength, child.indexedLength)
	}
	expected = fillTo(nil, 2, decodeEntry{1, 11, 2})
	expected = fillTo(expected, 4, decodeEntry{1, 11, 3})
	expected = fillTo(expected, 5, decodeEntry{1, 12, 4})
	expected = fillTo(expected, 8, decodeEntry{})
	checkEntries(t, table, child, expected)

	if table.padBits != bits8("00001000") {
		t.Fatalf("pad bits %#02x, want %#02x", table.padBits, bits8("00001000"))
	}
}

func TestDecodeWithBadInput(t *testing.T) {
	table := mustInitialize(t, []Symbol{
		{bits32("0110"), 4, 0},
		{bits32("0111"), 4, 1},
		{bits32("00"), 2, 2},
		{bits32("010"), 3, 3},
		{bits32("10000"), 5, 4},
		{bits32("10001"), 5, 5},
		{bits32("100110"), 6, 6},
		{bits32("10010"), 5, 7},
		{bits32("1001110000000000"), 16, 8},
	})

	const capacity = 4
	var out []byte

	// This one works: (2) 00 (3) 010 (2) 00 (6) 100110 (pad) 100.
	input := []byte{bits8("00010001"), bits8("00110100")}
	if err := table.DecodeString(NewBitSource(input), capacity, &out); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !bytes.Equal(out, []byte{2, 3, 2, 6}) {
		t.Fatalf("decoded % x", out)
	}

	// An unassigned prefix: (2) 00 (3) 010 (2) 00 (vacant) 101000 (pad) 111.
	input = []byte{bits8("00010001"), bits8("01000111")}
	if err := table.DecodeString(NewBitSource(input), capacity, &out); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("decode of vacant prefix returned %v", err)
	}
	if !bytes.Equal(out, []byte{2, 3, 2}) {
		t.Fatalf("partial output % x", out)
	}

	// Repeating the shortest code overflows the cap with a full byte left.
	input = []byte{0, 0}
	if err := table.DecodeString(NewBitSource(input), capacity, &out); !errors.Is(err, ErrTrailingGarbage) {
		t.Fatalf("decode past cap returned %v", err)
	}
	if !bytes.Equal(out, []byte{2, 2, 2, 2}) {
		t.Fatalf("partial output % x", out)
	}

	// Input ends inside the 16-bit code: (6) 100110 then 1001110000.
	input = []byte{bits8("10011010"), bits8("01110000")}
	if err := table.DecodeString(NewBitSource(input), capacity, &out); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("decode of truncated code returned %v", err)
	}
	if !bytes.Equal(out, []byte{6}) {
		t.Fatalf("partial output % x", out)
	}
}

func TestInitializeOnlyOnce(t *testing.T) {
	table := mustInitialize(t, smallCode())

	defer func() {
		if recover() == nil {
			t.Fatalf("second Initialize did not panic")
		}
	}()
	_ = table.Initialize(smallCode())
}
