// Package dispatch provides the endpoint model: the three action kinds,
// parameter substitution and action execution.
package dispatch

import (
	"context"
	"io"
	"strconv"
	"strings"
)

// Params is the set of request parameters used to fill placeholders in
// path and command templates. It is built fresh for every request from
// the URL query string; a duplicated key keeps its last value.
type Params map[string]string

// Endpoint binds an URL path to a single action.
type Endpoint struct {
	// Path is the exact URL path of the endpoint, e.g. "/testread".
	Path string

	// Action defines what the endpoint does when hit.
	Action Action
}

// String returns a short description of the endpoint.
func (e Endpoint) String() string {
	sb := &strings.Builder{}
	_, _ = sb.WriteString("(")
	_, _ = sb.WriteString(e.Path)
	_, _ = sb.WriteString("; ")
	_, _ = sb.WriteString(e.Action.Kind())
	_, _ = sb.WriteString("; ")
	_, _ = sb.WriteString(strconv.Itoa(len(e.Action.Methods())))
	_, _ = sb.WriteString(" methods)")
	return sb.String()
}

// Action is one of ReadFile, WriteFile or Shell.
type Action interface {
	// Kind returns the name of the action kind.
	Kind() string

	// Methods returns the HTTP methods the action answers to.
	Methods() []string

	// Execute resolves the action's template against params and runs it.
	// The body is the raw request payload; it is only consumed by write
	// actions. Substitution failures abort the action before any I/O.
	Execute(ctx context.Context, params Params, body io.Reader) (Result, error)

	action()
}

// Result is produced by an action and consumed once by the HTTP layer.
type Result interface{ result() }

// FileContent is the result of a file read.
type FileContent struct {
	Bytes       []byte
	ContentType string
}

// ShellOutcome is the result of a shell command run. A non-zero Retcode
// is a completed run, not a failure.
type ShellOutcome struct {
	Retcode int    `json:"retcode"`
	Stdout  string `json:"stdout"`
	Stderr  string `json:"stderr"`
}

// Written is the result of a completed file write.
type Written struct{}

func (FileContent) result()  {}
func (ShellOutcome) result() {}
func (Written) result()      {}
