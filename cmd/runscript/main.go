package main

import (
	"context"
	"os"
)

func main() {
	a := newApp()
	if err := newRootCmd(a).ExecuteContext(context.Background()); err != nil {
		a.toolkit.SetFailed(err)
	}
	os.Exit(a.toolkit.ExitCode())
}
