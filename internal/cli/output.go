package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/roach88/gauntlet/internal/domain"
)

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

func newFormatter(opts *RootOptions, out, errOut io.Writer) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   opts.Verbose,
	}
}

// Response is the standard JSON envelope for CLI output.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError carries the domain error code alongside the message.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(Response{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Fail outputs err in the configured format and returns it so cobra
// reports a non-zero exit. Domain error codes are preserved in JSON
// output.
func (f *OutputFormatter) Fail(err error) error {
	code := string(domain.CodeOf(err))
	if code == "" {
		code = "ERROR"
	}
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		_ = enc.Encode(Response{
			Status: "error",
			Error:  &ResponseError{Code: code, Message: err.Error()},
		})
		return err
	}
	fmt.Fprintf(f.Writer, "error [%s]: %v\n", code, err)
	return err
}

// VerboseLog writes a diagnostic line when verbose mode is enabled.
// Diagnostics go to ErrWriter so JSON output stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
