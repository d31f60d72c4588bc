package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ericfisherdev/hiddenote/internal/application"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0   // Successful execution
	ExitFailure      = 1   // Operation failed (storage error, unreadable note, etc.)
	ExitCommandError = 2   // Bad invocation (invalid title, missing terminal, etc.)
	ExitAuthFailure  = 3   // Wrong password
	ExitInterrupted  = 130 // Cancelled by SIGINT/SIGTERM
)

// Error codes reported in CLIError.Code.
const (
	ErrCodeAuth        = "E_AUTH"
	ErrCodeTitle       = "E_TITLE"
	ErrCodeExists      = "E_EXISTS"
	ErrCodeDecryption  = "E_DECRYPT"
	ErrCodeStorage     = "E_STORAGE"
	ErrCodePassword    = "E_PASSWORD"
	ErrCodeInterrupted = "E_INTERRUPTED"
	ErrCodeGeneric     = "E_GENERIC"
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON reports whether output is machine-readable.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success writes data. In text mode text is printed instead, when non-empty.
func (f *OutputFormatter) Success(data any, text string) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	if text != "" {
		_, err := fmt.Fprintln(f.Writer, text)
		return err
	}
	return nil
}

// Notice prints a diagnostic line to ErrWriter in text mode only.
func (f *OutputFormatter) Notice(format string, args ...any) {
	if f.JSON() || f.ErrWriter == nil {
		return
	}
	fmt.Fprintf(f.ErrWriter, format+"\n", args...)
}

// Fail reports err in the configured format and returns it as an ExitError
// carrying the matching exit code.
func (f *OutputFormatter) Fail(err error) error {
	code, exit, message := classify(err)

	if f.JSON() {
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message},
		})
	} else if f.ErrWriter != nil {
		fmt.Fprintf(f.ErrWriter, "Error [%s]: %s\n", code, message)
	}

	return WrapExitError(exit, message, err)
}

// classify maps the application error taxonomy to CLI codes. Messages for
// authentication failures stay generic.
func classify(err error) (code string, exit int, message string) {
	var exitErr *ExitError
	switch {
	case errors.As(err, &exitErr):
		return ErrCodeGeneric, exitErr.Code, exitErr.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrCodeInterrupted, ExitInterrupted, "interrupted"
	case errors.Is(err, application.ErrAuthFailure):
		return ErrCodeAuth, ExitAuthFailure, "wrong password"
	case errors.Is(err, application.ErrEmptyPassword), errors.Is(err, ErrPasswordMismatch), errors.Is(err, ErrNoTerminal):
		return ErrCodePassword, ExitCommandError, err.Error()
	case errors.Is(err, application.ErrInvalidTitle):
		return ErrCodeTitle, ExitCommandError, err.Error()
	case errors.Is(err, application.ErrNoteExists):
		return ErrCodeExists, ExitFailure, "a note with that title already exists"
	case errors.Is(err, application.ErrDecryption):
		return ErrCodeDecryption, ExitFailure, "note is unreadable: it is corrupted or was written with a different key"
	case application.IsStorageError(err):
		return ErrCodeStorage, ExitFailure, err.Error()
	default:
		return ErrCodeGeneric, ExitFailure, err.Error()
	}
}
