package dispatch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"

	"github.com/cappuccinotm/slogx"
)

// ReadFile serves the contents of a file at the substituted path.
type ReadFile struct {
	PathTemplate string

	// Binary endpoints respond with application/octet-stream instead of
	// text/plain. The classification is static, the content is never
	// sniffed.
	Binary bool
}

// Kind returns the name of the action kind.
func (a ReadFile) Kind() string {
	if a.Binary {
		return "read_bin_file"
	}
	return "read_file"
}

// Methods returns the HTTP methods the action answers to.
func (a ReadFile) Methods() []string { return []string{http.MethodGet} }

// Execute reads the file at the substituted path in full.
func (a ReadFile) Execute(ctx context.Context, params Params, _ io.Reader) (Result, error) {
	path, err := Substitute(a.PathTemplate, params)
	if err != nil {
		return nil, err
	}

	bts, err := os.ReadFile(path)
	if err != nil {
		slog.WarnContext(ctx, "file read failed",
			slog.String("path", path), slogx.Error(err))
		return nil, &FileError{Op: "read", Path: path, Err: err}
	}

	ct := "text/plain"
	if a.Binary {
		ct = "application/octet-stream"
	}

	slog.DebugContext(ctx, "file read",
		slog.String("path", path), slog.Int("size", len(bts)))
	return FileContent{Bytes: bts, ContentType: ct}, nil
}

func (ReadFile) action() {}

// WriteFile stores the request body at the substituted path.
type WriteFile struct {
	PathTemplate string
}

// Kind returns the name of the action kind.
func (a WriteFile) Kind() string { return "write_file" }

// Methods returns the HTTP methods the action answers to.
func (a WriteFile) Methods() []string {
	return []string{http.MethodPost, http.MethodPut}
}

// Execute writes the whole body to the substituted path, truncating or
// creating the file as needed. The write is not atomic: a failure
// mid-copy can leave a truncated file behind.
func (a WriteFile) Execute(ctx context.Context, params Params, body io.Reader) (Result, error) {
	path, err := Substitute(a.PathTemplate, params)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		slog.WarnContext(ctx, "file write failed",
			slog.String("path", path), slogx.Error(err))
		return nil, &FileError{Op: "write", Path: path, Err: err}
	}

	n, err := io.Copy(f, body)
	if clErr := f.Close(); err == nil {
		err = clErr
	}
	if err != nil {
		slog.WarnContext(ctx, "file write failed",
			slog.String("path", path), slogx.Error(err))
		return nil, &FileError{Op: "write", Path: path, Err: err}
	}

	slog.DebugContext(ctx, "file written",
		slog.String("path", path), slog.Int64("size", n))
	return Written{}, nil
}

func (WriteFile) action() {}

// Shell runs the substituted command line through "sh -c".
//
// Parameter values are interpolated into the command line as-is: once a
// request has passed the auth guard, its parameters are trusted shell
// text. Escaping them would change which commands a given request runs,
// so there is none.
type Shell struct {
	CommandTemplate string
}

// Kind returns the name of the action kind.
func (a Shell) Kind() string { return "shell" }

// Methods returns the HTTP methods the action answers to.
func (a Shell) Methods() []string { return []string{http.MethodGet} }

// Execute runs the command, buffering stdout and stderr in full. There
// is no timeout, and the command is deliberately detached from ctx: a
// client disconnect does not kill a command that is already running.
func (a Shell) Execute(ctx context.Context, params Params, _ io.Reader) (Result, error) {
	cmdline, err := Substitute(a.CommandTemplate, params)
	if err != nil {
		return nil, err
	}

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := exec.Command("sh", "-c", cmdline)
	cmd.Stdout, cmd.Stderr = stdout, stderr

	var exitErr *exec.ExitError
	switch err = cmd.Run(); {
	case err == nil, errors.As(err, &exitErr):
	default:
		slog.WarnContext(ctx, "command spawn failed",
			slog.String("command", cmdline), slogx.Error(err))
		return nil, &SpawnError{Command: cmdline, Err: err}
	}

	code := cmd.ProcessState.ExitCode()
	if code < 0 { // terminated by a signal, no exit code to report
		code = 0
	}

	slog.DebugContext(ctx, "command finished",
		slog.String("command", cmdline),
		slog.Int("retcode", code),
		slog.Int("stdout_size", stdout.Len()),
		slog.Int("stderr_size", stderr.Len()))

	return ShellOutcome{
		Retcode: code,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}, nil
}

func (Shell) action() {}
