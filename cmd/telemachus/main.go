// Command telemachus indexes public lobbying registers and answers
// "who met whom about what" queries across them.
package main

import (
	"os"

	"github.com/custodia-labs/telemachus/internal/adapters/driving/cli"
	"github.com/custodia-labs/telemachus/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	app, err := wire()
	if err != nil {
		logger.Error("startup failed: %v", err)
		os.Exit(1)
	}
	defer app.Close()

	cli.SetVersion(version)
	cli.SetServices(app.services)

	if err := cli.Execute(); err != nil {
		app.Close()
		os.Exit(1)
	}
}
