// Command thriftsplit is a demo host for the thriftsplit codec: it
// drives the core's encode/decode entry points against files on disk,
// standing in for the compression framework the core is normally
// embedded in.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "thriftsplit",
		Short: "Split and reassemble Thrift messages into configured streams",
	}
	rootCmd.AddCommand(newSplitCmd())
	rootCmd.AddCommand(newUnsplitCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
