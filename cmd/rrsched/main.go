// rrsched runs task scenarios on the priority and round robin scheduler.
package main

import (
	"os"

	"rrsched/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
