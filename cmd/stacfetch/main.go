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
	ExitInvalidSelection = 3
	ExitResolution       = 4
	ExitTransfer         = 5
	ExitPersistence      = 6
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
	case "template":
		return runTemplate(cmdArgs)
	case "plan":
		return runPlan(cmdArgs)
	case "execute":
		return runExecute(cmdArgs)
	case "run":
		return runRun(cmdArgs)
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
	fmt.Fprintln(os.Stderr, `Usage: stacfetch <command> [options]

Commands:
  template  Write a selection template for a provider
  plan      Resolve a selection into a download plan
  execute   Download every task of a plan, resuming partial files
  run       Plan and execute in one step

Run 'stacfetch <command> -h' for command-specific help.`)
}
