package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/tOgg1/ralph/internal/ralph"
	"github.com/tOgg1/ralph/internal/state"
)

// ErrorEnvelope is the JSON error response shape.
type ErrorEnvelope struct {
	Error ErrorPayload `json:"error"`
}

// ErrorPayload carries structured error details.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// ExitError carries an exit code and whether output was already printed.
type ExitError struct {
	Code    int
	Err     error
	Printed bool
}

func (e *ExitError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func handleCLIError(err error) error {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Printed {
			return exitErr
		}
		if exitErr.Err != nil {
			err = exitErr.Err
		}
	}

	exitCode := 1
	if exitErr != nil && exitErr.Code != 0 {
		exitCode = exitErr.Code
	}

	if jsonOutput {
		_ = writeJSON(os.Stdout, buildErrorEnvelope(err))
	} else {
		fmt.Fprintln(os.Stderr, colorError("Error: ")+err.Error())
	}

	return &ExitError{
		Code:    exitCode,
		Err:     err,
		Printed: true,
	}
}

func buildErrorEnvelope(err error) ErrorEnvelope {
	code := "internal"
	hint := ""

	switch {
	case errors.Is(err, ralph.ErrNoActiveLoop):
		code = "no_active_loop"
		hint = "start a loop with 'ralph start' first"
	case errors.Is(err, state.ErrNotFound):
		code = "state_not_found"
	case errors.Is(err, state.ErrPersist):
		code = "state_persist_failed"
		hint = "check that the project's .claude directory is writable"
	}

	return ErrorEnvelope{Error: ErrorPayload{
		Code:    code,
		Message: err.Error(),
		Hint:    hint,
	}}
}
