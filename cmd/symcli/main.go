package main

import (
	"github.com/robotalks/symmetry/pkg/cli/sh"
	"github.com/robotalks/symmetry/pkg/env"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
