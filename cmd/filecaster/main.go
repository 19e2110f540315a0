package main

import "github.com/cmmoran/filecaster/cmd"

var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
