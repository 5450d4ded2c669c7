// SPDX-License-Identifier: MPL-2.0

package cmd

import "fmt"

// ExitError makes the process exit with Code. Commands return it instead of
// calling os.Exit so tests can observe the status. A nil Err means the
// command already printed everything the user needs.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }
