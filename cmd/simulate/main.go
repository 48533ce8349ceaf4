// Command simulate prints exactly one simulation result JSON document to
// stdout and nothing else. It has no toolchain dependency, which makes it
// both the fallback process for the server and the single-shot deployment
// variant for environments without a compiler.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/particlelab/tracksim/internal/simulate"
)

var seed = flag.Int64("seed", -1, "Generator seed; negative derives one from the current time")

func main() {
	flag.Parse()

	if err := emit(os.Stdout, *seed); err != nil {
		fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
		os.Exit(1)
	}
}

// emit writes one JSON document for the given seed, deriving a time-based
// seed when negative.
func emit(w io.Writer, seed int64) error {
	s := uint64(seed)
	if seed < 0 {
		s = simulate.RandomSeed()
	}

	data, err := json.Marshal(simulate.Generate(s))
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
