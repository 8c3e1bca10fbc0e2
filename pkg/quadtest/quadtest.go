// Package quadtest implements the "## directive" mini-DSL (§6) used by
// pkg/translate's fixture tests: each fixture unit carries assertions in
// its leading comment block, parsed and evaluated the way the teacher's
// pkg/testutils/assertions package parses "##"-prefixed assertion lines
// ahead of a parsed unit file.
package quadtest

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"github.com/qgen/quadlet-gen/pkg/unitfile"
)

const directivePrefix = "## "

// Directive is one parsed "## ..." assertion line.
type Directive struct {
	Negate bool
	Name   string
	Args   []string
}

// ParseDirectives reads every leading "## "-prefixed comment line from a
// fixture file's raw text, stopping at the first non-comment, non-blank
// line, mirroring ParseAndReadAssertions's leading-comment-block scan.
func ParseDirectives(data []byte) ([]Directive, error) {
	var directives []Directive
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "##") {
			break
		}
		d, err := parseDirectiveLine(line)
		if err != nil {
			return nil, err
		}
		directives = append(directives, d)
	}
	return directives, scanner.Err()
}

func parseDirectiveLine(line string) (Directive, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "##"))
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return Directive{}, fmt.Errorf("quadtest: empty directive line %q", line)
	}

	name := fields[0]
	negate := false
	if strings.HasPrefix(name, "!") {
		negate = true
		name = strings.TrimPrefix(name, "!")
	}

	return Directive{Negate: negate, Name: name, Args: fields[1:]}, nil
}

// Run evaluates every directive against the translated output unit's
// generated ExecStart= line(s) and section contents, returning a
// description of the first failure or "" if every directive holds.
func Run(directives []Directive, out *unitfile.Unit) string {
	for _, d := range directives {
		if msg := evalOne(d, out); msg != "" {
			return msg
		}
	}
	return ""
}

func evalOne(d Directive, out *unitfile.Unit) string {
	switch d.Name {
	case "assert-podman-args":
		return evalAssertPodmanArgs(d, out)
	case "assert-podman-args-key-val":
		return evalAssertKeyVal(d, out, false)
	case "assert-podman-args-key-val-regex":
		return evalAssertKeyVal(d, out, true)
	case "assert-key-is":
		return evalAssertKeyIs(d, out)
	case "depends-on":
		return "" // resolved by the fixture loader before Run is called
	default:
		return fmt.Sprintf("quadtest: unrecognized directive %q", d.Name)
	}
}

func execStartTokens(out *unitfile.Unit) []string {
	var tokens []string
	for _, v := range out.LookupAll("Service", "ExecStart") {
		tokens = append(tokens, strings.Fields(v)...)
	}
	return tokens
}

// containsSubsequence reports whether needle appears in haystack as a
// contiguous, in-order subsequence.
func containsSubsequence(haystack, needle []string) bool {
	if len(needle) == 0 {
		return true
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, want := range needle {
			if haystack[i+j] != want {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func evalAssertPodmanArgs(d Directive, out *unitfile.Unit) string {
	found := containsSubsequence(execStartTokens(out), d.Args)
	if d.Negate && found {
		return fmt.Sprintf("assert-podman-args: expected ExecStart= to NOT contain %v", d.Args)
	}
	if !d.Negate && !found {
		return fmt.Sprintf("assert-podman-args: expected ExecStart= to contain %v", d.Args)
	}
	return ""
}

// evalAssertKeyVal implements `assert-podman-args-key-val KEY SEP VALUE`:
// find the flag KEY in the ExecStart= token stream (either "KEY value" as
// two tokens or "KEY=value" as one), then require its value equal (or
// match, in regex mode) VALUE, treating a SEP-joined value as a
// reorderable set of subkeys.
func evalAssertKeyVal(d Directive, out *unitfile.Unit, asRegex bool) string {
	if len(d.Args) < 3 {
		return fmt.Sprintf("assert-podman-args-key-val: expected KEY SEP VALUE, got %v", d.Args)
	}
	key, sep, want := d.Args[0], d.Args[1], strings.Join(d.Args[2:], " ")

	got, ok := findFlagValue(execStartTokens(out), key)
	if !ok {
		return fmt.Sprintf("assert-podman-args-key-val: flag %q not found in ExecStart=", key)
	}
	if matchKeyVal(got, want, sep, asRegex) {
		return ""
	}
	return fmt.Sprintf("assert-podman-args-key-val: %s: want %q, got %q", key, want, got)
}

// findFlagValue locates key in tokens, either as an exact token followed
// by a value token ("--mount", "type=bind,...") or as a single
// "key=value" token ("--tls-verify=false").
func findFlagValue(tokens []string, key string) (string, bool) {
	for i, tok := range tokens {
		if tok == key && i+1 < len(tokens) {
			return tokens[i+1], true
		}
		if strings.HasPrefix(tok, key+"=") {
			return strings.TrimPrefix(tok, key+"="), true
		}
	}
	return "", false
}

// matchKeyVal compares got to want either exactly (as a SEP-joined set of
// reorderable subkeys) or, in regex mode, as a whole-string regex match.
func matchKeyVal(got, want, sep string, asRegex bool) bool {
	if asRegex {
		re, err := regexp.Compile("^" + want + "$")
		if err != nil {
			return false
		}
		return re.MatchString(got)
	}
	if !strings.Contains(want, sep) {
		return got == want
	}
	gotParts := strings.Split(got, sep)
	wantParts := strings.Split(want, sep)
	if len(gotParts) != len(wantParts) {
		return false
	}
	seen := make(map[string]bool, len(gotParts))
	for _, p := range gotParts {
		seen[p] = true
	}
	for _, p := range wantParts {
		if !seen[p] {
			return false
		}
	}
	return true
}

func evalAssertKeyIs(d Directive, out *unitfile.Unit) string {
	if len(d.Args) < 2 {
		return fmt.Sprintf("assert-key-is: expected SECTION KEY VALUES..., got %v", d.Args)
	}
	section, key, want := d.Args[0], d.Args[1], d.Args[2:]
	got := out.LookupAll(section, key)
	if len(got) != len(want) {
		return fmt.Sprintf("assert-key-is: %s/%s: want %v, got %v", section, key, want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Sprintf("assert-key-is: %s/%s: want %v, got %v", section, key, want, got)
		}
	}
	return ""
}

// DependsOn extracts every "depends-on <unit>" directive's argument, so a
// fixture loader can parse and index sibling units before translating the
// unit under test.
func DependsOn(directives []Directive) []string {
	var deps []string
	for _, d := range directives {
		if d.Name == "depends-on" && len(d.Args) > 0 {
			deps = append(deps, d.Args[0])
		}
	}
	return deps
}
