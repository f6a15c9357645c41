package main

import (
	"os"

	kincmder "github.com/papercomputeco/kin/cmd/kin"
)

func main() {
	cmd := kincmder.NewKinCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
