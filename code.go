// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ./LICENSE.md.

package hpack

import (
	"github.com/ferrule/hpack/huffman"
)

// hpackHuffmanCode is the canonical Huffman code for the HPACK alphabet
// defined by RFC 7541 Appendix B.  Codewords are left-aligned in the high
// bits.  Id 256 is the EOS marker; its code is the longest and supplies the
// padding bits.
var hpackHuffmanCode = [257]huffman.Symbol{
	{Code: 0xffc00000, Length: 13, ID: 0},
	{Code: 0xffffb000, Length: 23, ID: 1},
	{Code: 0xfffffe20, Length: 28, ID: 2},
	{Code: 0xfffffe30, Length: 28, ID: 3},
	{Code: 0xfffffe40, Length: 28, ID: 4},
	{Code: 0xfffffe50, Length: 28, ID: 5},
	{Code: 0xfffffe60, Length: 28, ID: 6},
	{Code: 0xfffffe70, Length: 28, ID: 7},
	{Code: 0xfffffe80, Length: 28, ID: 8},
	{Code: 0xffffea00, Length: 24, ID: 9},
	{Code: 0xfffffff0, Length: 30, ID: 10},
	{Code: 0xfffffe90, Length: 28, ID: 11},
	{Code: 0xfffffea0, Length: 28, ID: 12},
	{Code: 0xfffffff4, Length: 30, ID: 13},
	{Code: 0xfffffeb0, Length: 28, ID: 14},
	{Code: 0xfffffec0, Length: 28, ID: 15},
	{Code: 0xfffffed0, Length: 28, ID: 16},
	{Code: 0xfffffee0, Length: 28, ID: 17},
	{Code: 0xfffffef0, Length: 28, ID: 18},
	{Code: 0xffffff00, Length: 28, ID: 19},
	{Code: 0xffffff10, Length: 28, ID: 20},
	{Code: 0xffffff20, Length: 28, ID: 21},
	{Code: 0xfffffff8, Length: 30, ID: 22},
	{Code: 0xffffff30, Length: 28, ID: 23},
	{Code: 0xffffff40, Length: 28, ID: 24},
	{Code: 0xffffff50, Length: 28, ID: 25},
	{Code: 0xffffff60, Length: 28, ID: 26},
	{Code: 0xffffff70, Length: 28, ID: 27},
	{Code: 0xffffff80, Length: 28, ID: 28},
	{Code: 0xffffff90, Length: 28, ID: 29},
	{Code: 0xffffffa0, Length: 28, ID: 30},
	{Code: 0xffffffb0, Length: 28, ID: 31},
	{Code: 0x50000000, Length: 6, ID: 32},
	{Code: 0xfe000000, Length: 10, ID: 33},
	{Code: 0xfe400000, Length: 10, ID: 34},
	{Code: 0xffa00000, Length: 12, ID: 35},
	{Code: 0xffc80000, Length: 13, ID: 36},
	{Code: 0x54000000, Length: 6, ID: 37},
	{Code: 0xf8000000, Length: 8, ID: 38},
	{Code: 0xff400000, Length: 11, ID: 39},
	{Code: 0xfe800000, Length: 10, ID: 40},
	{Code: 0xfec00000, Length: 10, ID: 41},
	{Code: 0xf9000000, Length: 8, ID: 42},
	{Code: 0xff600000, Length: 11, ID: 43},
	{Code: 0xfa000000, Length: 8, ID: 44},
	{Code: 0x58000000, Length: 6, ID: 45},
	{Code: 0x5c000000, Length: 6, ID: 46},
	{Code: 0x60000000, Length: 6, ID: 47},
	{Code: 0x00000000, Length: 5, ID: 48},
	{Code: 0x08000000, Length: 5, ID: 49},
	{Code: 0x10000000, Length: 5, ID: 50},
	{Code: 0x64000000, Length: 6, ID: 51},
	{Code: 0x68000000, Length: 6, ID: 52},
	{Code: 0x6c000000, Length: 6, ID: 53},
	{Code: 0x70000000, Length: 6, ID: 54},
	{Code: 0x74000000, Length: 6, ID: 55},
	{Code: 0x78000000, Length: 6, ID: 56},
	{Code: 0x7c000000, Length: 6, ID: 57},
	{Code: 0xb8000000, Length: 7, ID: 58},
	{Code: 0xfb000000, Length: 8, ID: 59},
	{Code: 0xfff80000, Length: 15, ID: 60},
	{Code: 0x80000000, Length: 6, ID: 61},
	{Code: 0xffb00000, Length: 12, ID: 62},
	{Code: 0xff000000, Length: 10, ID: 63},
	{Code: 0xffd00000, Length: 13, ID: 64},
	{Code: 0x84000000, Length: 6, ID: 65},
	{Code: 0xba000000, Length: 7, ID: 66},
	{Code: 0xbc000000, Length: 7, ID: 67},
	{Code: 0xbe000000, Length: 7, ID: 68},
	{Code: 0xc0000000, Length: 7, ID: 69},
	{Code: 0xc2000000, Length: 7, ID: 70},
	{Code: 0xc4000000, Length: 7, ID: 71},
	{Code: 0xc6000000, Length: 7, ID: 72},
	{Code: 0xc8000000, Length: 7, ID: 73},
	{Code: 0xca000000, Length: 7, ID: 74},
	{Code: 0xcc000000, Length: 7, ID: 75},
	{Code: 0xce000000, Length: 7, ID: 76},
	{Code: 0xd0000000, Length: 7, ID: 77},
	{Code: 0xd2000000, Length: 7, ID: 78},
	{Code: 0xd4000000, Length: 7, ID: 79},
	{Code: 0xd6000000, Length: 7, ID: 80},
	{Code: 0xd8000000, Length: 7, ID: 81},
	{Code: 0xda000000, Length: 7, ID: 82},
	{Code: 0xdc000000, Length: 7, ID: 83},
	{Code: 0xde000000, Length: 7, ID: 84},
	{Code: 0xe0000000, Length: 7, ID: 85},
	{Code: 0xe2000000, Length: 7, ID: 86},
	{Code: 0xe4000000, Length: 7, ID: 87},
	{Code: 0xfc000000, Length: 8, ID: 88},
	{Code: 0xe6000000, Length: 7, ID: 89},
	{Code: 0xfd000000, Length: 8, ID: 90},
	{Code: 0xffd80000, Length: 13, ID: 91},
	{Code: 0xfffe0000, Length: 19, ID: 92},
	{Code: 0xffe00000, Length: 13, ID: 93},
	{Code: 0xfff00000, Length: 14, ID: 94},
	{Code: 0x88000000, Length: 6, ID: 95},
	{Code: 0xfffa0000, Length: 15, ID: 96},
	{Code: 0x18000000, Length: 5, ID: 97},
	{Code: 0x8c000000, Length: 6, ID: 98},
	{Code: 0x20000000, Length: 5, ID: 99},
	{Code: 0x90000000, Length: 6, ID: 100},
	{Code: 0x28000000, Length: 5, ID: 101},
	{Code: 0x94000000, Length: 6, ID: 102},
	{Code: 0x98000000, Length: 6, ID: 103},
	{Code: 0x9c000000, Length: 6, ID: 104},
	{Code: 0x30000000, Length: 5, ID: 105},
	{Code: 0xe8000000, Length: 7, ID: 106},
	{Code: 0xea000000, Length: 7, ID: 107},
	{Code: 0xa0000000, Length: 6, ID: 108},
	{Code: 0xa4000000, Length: 6, ID: 109},
	{Code: 0xa8000000, Length: 6, ID: 110},
	{Code: 0x38000000, Length: 5, ID: 111},
	{Code: 0xac000000, Length: 6, ID: 112},
	{Code: 0xec000000, Length: 7, ID: 113},
	{Code: 0xb0000000, Length: 6, ID: 114},
	{Code: 0x40000000, Length: 5, ID: 115},
	{Code: 0x48000000, Length: 5, ID: 116},
	{Code: 0xb4000000, Length: 6, ID: 117},
	{Code: 0xee000000, Length: 7, ID: 118},
	{Code: 0xf0000000, Length: 7, ID: 119},
	{Code: 0xf2000000, Length: 7, ID: 120},
	{Code: 0xf4000000, Length: 7, ID: 121},
	{Code: 0xf6000000, Length: 7, ID: 122},
	{Code: 0xfffc0000, Length: 15, ID: 123},
	{Code: 0xff800000, Length: 11, ID: 124},
	{Code: 0xfff40000, Length: 14, ID: 125},
	{Code: 0xffe80000, Length: 13, ID: 126},
	{Code: 0xffffffc0, Length: 28, ID: 127},
	{Code: 0xfffe6000, Length: 20, ID: 128},
	{Code: 0xffff4800, Length: 22, ID: 129},
	{Code: 0xfffe7000, Length: 20, ID: 130},
	{Code: 0xfffe8000, Length: 20, ID: 131},
	{Code: 0xffff4c00, Length: 22, ID: 132},
	{Code: 0xffff5000, Length: 22, ID: 133},
	{Code: 0xffff5400, Length: 22, ID: 134},
	{Code: 0xffffb200, Length: 23, ID: 135},
	{Code: 0xffff5800, Length: 22, ID: 136},
	{Code: 0xffffb400, Length: 23, ID: 137},
	{Code: 0xffffb600, Length: 23, ID: 138},
	{Code: 0xffffb800, Length: 23, ID: 139},
	{Code: 0xffffba00, Length: 23, ID: 140},
	{Code: 0xffffbc00, Length: 23, ID: 141},
	{Code: 0xffffeb00, Length: 24, ID: 142},
	{Code: 0xffffbe00, Length: 23, ID: 143},
	{Code: 0xffffec00, Length: 24, ID: 144},
	{Code: 0xffffed00, Length: 24, ID: 145},
	{Code: 0xffff5c00, Length: 22, ID: 146},
	{Code: 0xffffc000, Length: 23, ID: 147},
	{Code: 0xffffee00, Length: 24, ID: 148},
	{Code: 0xffffc200, Length: 23, ID: 149},
	{Code: 0xffffc400, Length: 23, ID: 150},
	{Code: 0xffffc600, Length: 23, ID: 151},
	{Code: 0xffffc800, Length: 23, ID: 152},
	{Code: 0xfffee000, Length: 21, ID: 153},
	{Code: 0xffff6000, Length: 22, ID: 154},
	{Code: 0xffffca00, Length: 23, ID: 155},
	{Code: 0xffff6400, Length: 22, ID: 156},
	{Code: 0xffffcc00, Length: 23, ID: 157},
	{Code: 0xffffce00, Length: 23, ID: 158},
	{Code: 0xffffef00, Length: 24, ID: 159},
	{Code: 0xffff6800, Length: 22, ID: 160},
	{Code: 0xfffee800, Length: 21, ID: 161},
	{Code: 0xfffe9000, Length: 20, ID: 162},
	{Code: 0xffff6c00, Length: 22, ID: 163},
	{Code: 0xffff7000, Length: 22, ID: 164},
	{Code: 0xffffd000, Length: 23, ID: 165},
	{Code: 0xffffd200, Length: 23, ID: 166},
	{Code: 0xfffef000, Length: 21, ID: 167},
	{Code: 0xffffd400, Length: 23, ID: 168},
	{Code: 0xffff7400, Length: 22, ID: 169},
	{Code: 0xffff7800, Length: 22, ID: 170},
	{Code: 0xfffff000, Length: 24, ID: 171},
	{Code: 0xfffef800, Length: 21, ID: 172},
	{Code: 0xffff7c00, Length: 22, ID: 173},
	{Code: 0xffffd600, Length: 23, ID: 174},
	{Code: 0xffffd800, Length: 23, ID: 175},
	{Code: 0xffff0000, Length: 21, ID: 176},
	{Code: 0xffff0800, Length: 21, ID: 177},
	{Code: 0xffff8000, Length: 22, ID: 178},
	{Code: 0xffff1000, Length: 21, ID: 179},
	{Code: 0xffffda00, Length: 23, ID: 180},
	{Code: 0xffff8400, Length: 22, ID: 181},
	{Code: 0xffffdc00, Length: 23, ID: 182},
	{Code: 0xffffde00, Length: 23, ID: 183},
	{Code: 0xfffea000, Length: 20, ID: 184},
	{Code: 0xffff8800, Length: 22, ID: 185},
	{Code: 0xffff8c00, Length: 22, ID: 186},
	{Code: 0xffff9000, Length: 22, ID: 187},
	{Code: 0xffffe000, Length: 23, ID: 188},
	{Code: 0xffff9400, Length: 22, ID: 189},
	{Code: 0xffff9800, Length: 22, ID: 190},
	{Code: 0xffffe200, Length: 23, ID: 191},
	{Code: 0xfffff800, Length: 26, ID: 192},
	{Code: 0xfffff840, Length: 26, ID: 193},
	{Code: 0xfffeb000, Length: 20, ID: 194},
	{Code: 0xfffe2000, Length: 19, ID: 195},
	{Code: 0xffff9c00, Length: 22, ID: 196},
	{Code: 0xffffe400, Length: 23, ID: 197},
	{Code: 0xffffa000, Length: 22, ID: 198},
	{Code: 0xfffff600, Length: 25, ID: 199},
	{Code: 0xfffff880, Length: 26, ID: 200},
	{Code: 0xfffff8c0, Length: 26, ID: 201},
	{Code: 0xfffff900, Length: 26, ID: 202},
	{Code: 0xfffffbc0, Length: 27, ID: 203},
	{Code: 0xfffffbe0, Length: 27, ID: 204},
	{Code: 0xfffff940, Length: 26, ID: 205},
	{Code: 0xfffff100, Length: 24, ID: 206},
	{Code: 0xfffff680, Length: 25, ID: 207},
	{Code: 0xfffe4000, Length: 19, ID: 208},
	{Code: 0xffff1800, Length: 21, ID: 209},
	{Code: 0xfffff980, Length: 26, ID: 210},
	{Code: 0xfffffc00, Length: 27, ID: 211},
	{Code: 0xfffffc20, Length: 27, ID: 212},
	{Code: 0xfffff9c0, Length: 26, ID: 213},
	{Code: 0xfffffc40, Length: 27, ID: 214},
	{Code: 0xfffff200, Length: 24, ID: 215},
	{Code: 0xffff2000, Length: 21, ID: 216},
	{Code: 0xffff2800, Length: 21, ID: 217},
	{Code: 0xfffffa00, Length: 26, ID: 218},
	{Code: 0xfffffa40, Length: 26, ID: 219},
	{Code: 0xffffffd0, Length: 28, ID: 220},
	{Code: 0xfffffc60, Length: 27, ID: 221},
	{Code: 0xfffffc80, Length: 27, ID: 222},
	{Code: 0xfffffca0, Length: 27, ID: 223},
	{Code: 0xfffec000, Length: 20, ID: 224},
	{Code: 0xfffff300, Length: 24, ID: 225},
	{Code: 0xfffed000, Length: 20, ID: 226},
	{Code: 0xffff3000, Length: 21, ID: 227},
	{Code: 0xffffa400, Length: 22, ID: 228},
	{Code: 0xffff3800, Length: 21, ID: 229},
	{Code: 0xffff4000, Length: 21, ID: 230},
	{Code: 0xffffe600, Length: 23, ID: 231},
	{Code: 0xffffa800, Length: 22, ID: 232},
	{Code: 0xffffac00, Length: 22, ID: 233},
	{Code: 0xfffff700, Length: 25, ID: 234},
	{Code: 0xfffff780, Length: 25, ID: 235},
	{Code: 0xfffff400, Length: 24, ID: 236},
	{Code: 0xfffff500, Length: 24, ID: 237},
	{Code: 0xfffffa80, Length: 26, ID: 238},
	{Code: 0xffffe800, Length: 23, ID: 239},
	{Code: 0xfffffac0, Length: 26, ID: 240},
	{Code: 0xfffffcc0, Length: 27, ID: 241},
	{Code: 0xfffffb00, Length: 26, ID: 242},
	{Code: 0xfffffb40, Length: 26, ID: 243},
	{Code: 0xfffffce0, Length: 27, ID: 244},
	{Code: 0xfffffd00, Length: 27, ID: 245},
	{Code: 0xfffffd20, Length: 27, ID: 246},
	{Code: 0xfffffd40, Length: 27, ID: 247},
	{Code: 0xfffffd60, Length: 27, ID: 248},
	{Code: 0xffffffe0, Length: 28, ID: 249},
	{Code: 0xfffffd80, Length: 27, ID: 250},
	{Code: 0xfffffda0, Length: 27, ID: 251},
	{Code: 0xfffffdc0, Length: 27, ID: 252},
	{Code: 0xfffffde0, Length: 27, ID: 253},
	{Code: 0xfffffe00, Length: 27, ID: 254},
	{Code: 0xfffffb80, Length: 26, ID: 255},
	{Code: 0xfffffffc, Length: 30, ID: 256},
}

// HuffmanCode returns a fresh copy of the RFC 7541 Appendix B symbol listing
// in the form Table.Initialize expects: ids 0 through 255 are the byte
// values, id 256 is EOS.
func HuffmanCode() []huffman.Symbol {
	code := make([]huffman.Symbol, len(hpackHuffmanCode))
	copy(code, hpackHuffmanCode[:])
	return code
}
