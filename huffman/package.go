// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../LICENSE.md.

/*
Package huffman implements the canonical prefix-code codec used by HPACK
header compression (RFC 7541 section 5.2).

A Table is constructed empty and initialized exactly once from a symbol
listing; initialization validates that the listing forms a canonical prefix
code and builds both the encoding arrays and a chain of fixed-width decode
tables.  A successfully initialized Table is immutable and may be shared
freely between goroutines.  BitSink and BitSource instances are per-operation
state and must not be shared.
*/
package huffman

import (
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("hpack/huffman")
