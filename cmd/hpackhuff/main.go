// Copyright © 2015 Drake Wilson.  Copying, distribution, and modification of this software is governed by
// the MIT-style license in the file ../../LICENSE.md.

package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
	"github.com/pkg/errors"

	"github.com/ferrule/hpack"
)

var log = logging.MustGetLogger("hpack/tool")

const progName = "hpackhuff"
const usageMessageRaw = `
Usage: hpackhuff OPTIONS SUBCOMMAND [DATA...]

Subcommands:
  encode [STRING...]
	Huffman-encode the argument strings joined by nothing, or standard
	input if no arguments are given, and write the encoding to standard
	output as lowercase hex.

  decode [HEX...]
	Decode the argument hex strings, or hex from standard input, and
	write the decoded bytes to standard output.

Options:
  --max N, -m N
	Cap the decoded length at N bytes (default 65536).
  --debug, -d
	Spew decoding diagnostics to standard error.
`

type nullWriter struct{}

func (n *nullWriter) Write(p []byte) (int, error) {
	return len(p), nil
}

var ourFlags *flag.FlagSet
var userMaxLen int

func usageMessage() string {
	return strings.TrimLeft(usageMessageRaw, "\n")
}

func usageErrorf(detailFmt string, detailArgs ...interface{}) {
	detail := fmt.Sprintf(detailFmt, detailArgs...)
	fmt.Fprintf(os.Stderr, "%s: %s\n%s", progName, detail, usageMessage())
	os.Exit(64)
}

func exitError(err error) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", progName, err.Error())
	os.Exit(1)
}

var leveledLogBackend logging.Leveled

func startLogging() {
	backend := logging.NewLogBackend(os.Stderr, progName+": ", 0)
	formatSpec := "%{level:8s} %{module:-16s} | %{message}"
	formatter := logging.MustStringFormatter(formatSpec)
	formatted := logging.NewBackendFormatter(backend, formatter)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(logging.INFO, "")
	logging.SetBackend(leveled)
	leveledLogBackend = leveled
}

func gatherInput(args []string) ([]byte, error) {
	if len(args) > 0 {
		return []byte(strings.Join(args, "")), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, errors.Wrap(err, "read standard input")
	}
	return data, nil
}

func runEncode(args []string) error {
	input, err := gatherInput(args)
	if err != nil {
		return err
	}

	encoded := hpack.EncodeHuffman(input)
	log.Debugf("%d bytes in, %d bytes out", len(input), len(encoded))

	_, err = fmt.Println(hex.EncodeToString(encoded))
	return errors.Wrap(err, "write standard output")
}

func runDecode(args []string) error {
	raw, err := gatherInput(args)
	if err != nil {
		return err
	}

	compact := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			return -1
		}
		return r
	}, string(raw))

	encoded, err := hex.DecodeString(compact)
	if err != nil {
		return errors.Wrap(err, "parse hex input")
	}

	decoded, err := hpack.DecodeHuffman(encoded, userMaxLen)
	if err != nil {
		return errors.Wrapf(err, "decode failed after %d bytes", len(decoded))
	}
	log.Debugf("%d bytes in, %d bytes out", len(encoded), len(decoded))

	_, err = os.Stdout.Write(decoded)
	return errors.Wrap(err, "write standard output")
}

func main() {
	startLogging()

	ourFlags = flag.NewFlagSet(progName, flag.ContinueOnError)
	ourFlags.Usage = func() {}
	ourFlags.SetOutput(&nullWriter{})

	// Usage strings are hardcoded above.

	var debugLogging bool
	ourFlags.IntVar(&userMaxLen, "max", 65536, "")
	ourFlags.IntVar(&userMaxLen, "m", 65536, "")
	ourFlags.BoolVar(&debugLogging, "debug", false, "")
	ourFlags.BoolVar(&debugLogging, "d", false, "")

	argErr := ourFlags.Parse(os.Args[1:])
	if argErr == flag.ErrHelp {
		io.WriteString(os.Stdout, usageMessage())
		os.Exit(0)
	} else if argErr != nil {
		usageErrorf("%s", argErr.Error())
	}

	if debugLogging {
		leveledLogBackend.SetLevel(logging.DEBUG, "")
	}

	args := ourFlags.Args()
	if len(args) == 0 {
		usageErrorf("missing subcommand")
	}

	var err error
	switch args[0] {
	default:
		usageErrorf("bad subcommand \"%s\"", args[0])
	case "encode":
		err = runEncode(args[1:])
	case "decode":
		err = runDecode(args[1:])
	}

	if err != nil {
		exitError(err)
	}
}
