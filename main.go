// neo-fullnode keeps a local block store in sync with the NEO chain by
// polling a mesh of remote JSON-RPC nodes.
package main

import (
	"fmt"
	"os"

	"github.com/marcosrachid/go-neo-fullnode/cmd"
)

var version string

func main() {
	if version != "" {
		cmd.Version = version
	}
	if err := cmd.Cmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
