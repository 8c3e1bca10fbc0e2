// Package engine builds the container-engine command line (`podman run
// ...`, `podman network create ...`, etc.) that a generated service unit's
// ExecStart= invokes.
package engine

import (
	"strconv"
	"strings"
)

// DefaultBinary is the container engine binary quadlet-gen assumes when
// none is configured, matching the teacher's own default.
const DefaultBinary = "/usr/bin/podman"

// Command accumulates the argv of one engine invocation, in the order
// translators add them, mirroring PodmanCommand's append-only builder.
type Command struct {
	Args []string
}

// New starts a Command for the given subcommand ("run", "network create",
// "volume create", "kube play", ...) against binary (DefaultBinary if
// empty).
func New(binary, subcommand string) *Command {
	if binary == "" {
		binary = DefaultBinary
	}
	c := &Command{Args: make([]string, 0, 16)}
	c.Add(binary)
	for _, tok := range strings.Fields(subcommand) {
		c.Add(tok)
	}
	return c
}

// Add appends a single argument.
func (c *Command) Add(arg string) { c.Args = append(c.Args, arg) }

// AddSlice appends every element of args in order.
func (c *Command) AddSlice(args []string) { c.Args = append(c.Args, args...) }

// AddFlag appends flag then value, skipping entirely when value is empty.
func (c *Command) AddFlag(flag, value string) {
	if value == "" {
		return
	}
	c.Add(flag)
	c.Add(value)
}

// AddBool appends flag=true or flag=false, the way boolean container-run
// options are rendered (--read-only=true, --privileged=false, ...).
func (c *Command) AddBool(flag string, value bool) {
	c.Add(flag + "=" + strconv.FormatBool(value))
}

// AddKeyVals appends flag/value pairs for every k=v token, used for
// Environment=/Label=/Annotation=-style multi-valued keys.
func (c *Command) AddKeyVals(flag string, pairs [][2]string) {
	for _, kv := range pairs {
		c.Add(flag)
		c.Add(kv[0] + "=" + kv[1])
	}
}

// AddAll appends flag/value for every value in values, in order.
func (c *Command) AddAll(flag string, values []string) {
	for _, v := range values {
		c.Add(flag)
		c.Add(v)
	}
}

// ExecLine renders the command as a single systemd ExecStart= value: each
// argument is C-quoted if it contains whitespace or a character systemd's
// own word splitter would otherwise treat specially, so the line round
// trips through pkg/wordsplit.Split unchanged. A '$' is quoted but not
// escaped, so systemd still expands $VAR/${VAR} references at start time.
func ExecLine(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = quoteIfNeeded(a)
	}
	return strings.Join(quoted, " ")
}

func quoteIfNeeded(arg string) string {
	if arg == "" {
		return `""`
	}
	if !strings.ContainsAny(arg, " \t\n\"'\\$") {
		return arg
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range arg {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
