// Command imitator learns how users write and imitates them.
//
// Usage:
//
//	imitator [flags] [command]
//
// Commands:
//
//	serve       - HTTP API (default when no command is given)
//	ingest-csv  - bulk-load a header-less user_name,message CSV file
//	worker      - consume the ingest queue
//
// Configuration is read from the environment and an optional .env file.
package main

import (
	"fmt"
	"os"

	"github.com/suPer8Hu/imitator/cmd/imitator/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
