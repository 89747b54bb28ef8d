// Command fmpart is the command-line entry point for the FM hypergraph
// partitioner: a one-shot local runner, a queue-driven worker daemon, and a
// run-history browser, all built on the same core partition engine.
package main

import (
	"github.com/fmcut/partitioner/cmd/fmpart/cmd"
)

func main() {
	cmd.Execute()
}
