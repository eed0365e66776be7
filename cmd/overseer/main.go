package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess   = 0 // Everything reachable
	ExitUnhealthy = 1 // A probed service reported an error
	ExitError     = 2 // Configuration or runtime error
)

// UnhealthyError indicates the probes ran but at least one service is down.
type UnhealthyError struct {
	Message string
}

func (e *UnhealthyError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var unhealthy *UnhealthyError
		if errors.As(err, &unhealthy) {
			os.Exit(ExitUnhealthy)
		}
		os.Exit(ExitError)
	}
}
