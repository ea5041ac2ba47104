package main

import (
	"fmt"
	"os"

	"github.com/jdfalk/fund-discovery/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
