package main

import (
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitInvalidArgs      = 2
	ExitInputError       = 3
	ExitPartialFailure   = 4
	ExitStorageError     = 5
	ExitValidationFailed = 6
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "run":
		return runBatch(cmdArgs)
	case "split":
		return runSplit(cmdArgs)
	case "join":
		return runJoin(cmdArgs)
	case "validate":
		return runValidate(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: finbatch <command> [options]

Commands:
  run       Fetch documents from a CSV manifest, archive them, split if needed
  split     Split an existing archive into parts under a size ceiling
  join      Reconstruct an archive from its parts
  validate  Verify that all parts exist and match the part manifest

Run 'finbatch <command> -h' for command-specific help.`)
}
