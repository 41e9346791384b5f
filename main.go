package main

import (
	"github.com/amigo-insight/surveydash/cmd"

	// Subcommands register themselves on the root command via init().
	_ "github.com/amigo-insight/surveydash/cmd/cli"
	_ "github.com/amigo-insight/surveydash/cmd/server"
)

func main() {
	cmd.Execute()
}
