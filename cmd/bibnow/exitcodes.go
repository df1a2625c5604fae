package main

import "fmt"

// Exit codes
const (
	ExitSuccess        = 0 // Success
	ExitError          = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError    = 2 // Missing or invalid configuration
	ExitDataError      = 3 // Nothing could be parsed from the input
	ExitPartialFailure = 4 // At least one entry of a commit failed
)

// exitCodeError carries an exit code out of RunE after output is written.
type exitCodeError int

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}
