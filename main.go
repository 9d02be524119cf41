package main

import (
	"os"

	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/bayleafwalker/bindery/internal/cli"
)

func main() {
	if err := cli.Execute(ctrl.SetupSignalHandler()); err != nil {
		os.Exit(1)
	}
}
