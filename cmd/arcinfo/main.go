package main

import "arcinfo/cmd"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main starts the arcinfo cli
func main() {
	cmd.Run(version, commit, date)
}
