package unitfile

import (
	"strconv"
	"strings"

	"github.com/qgen/quadlet-gen/pkg/wordsplit"
)

// LookupBool interprets section/key using systemd's boolean vocabulary:
// 1|yes|true|on and 0|no|false|off, case-insensitive. Any other non-empty
// value is treated as false but reported via the second return so callers
// can log the "ambiguous boolean value" warning required by §7.
func (s *Section) LookupBool(key string) (value bool, ambiguous bool, present bool) {
	raw, ok := s.LookupLast(key)
	if !ok {
		return false, false, false
	}
	switch {
	case strings.EqualFold(raw, "1"), strings.EqualFold(raw, "yes"), strings.EqualFold(raw, "true"), strings.EqualFold(raw, "on"):
		return true, false, true
	case strings.EqualFold(raw, "0"), strings.EqualFold(raw, "no"), strings.EqualFold(raw, "false"), strings.EqualFold(raw, "off"):
		return false, false, true
	default:
		return false, true, true
	}
}

func (u *Unit) LookupBool(section, key string) (value, ambiguous, present bool) {
	s, ok := u.byName[section]
	if !ok {
		return false, false, false
	}
	return s.LookupBool(key)
}

// LookupInt mimics systemd's strtol-based numeric parsing: an optional
// sign, then 0x-hex, 0-octal, or decimal.
func (s *Section) LookupInt(key string) (int64, bool) {
	raw, ok := s.LookupLast(key)
	if !ok {
		return 0, false
	}
	v, err := parseSystemdInt(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseSystemdInt(v string) (int64, error) {
	neg := false
	switch {
	case strings.HasPrefix(v, "+"):
		v = v[1:]
	case strings.HasPrefix(v, "-"):
		v = v[1:]
		neg = true
	}
	var n int64
	var err error
	switch {
	case strings.HasPrefix(v, "0x"), strings.HasPrefix(v, "0X"):
		n, err = strconv.ParseInt(v[2:], 16, 64)
	case strings.HasPrefix(v, "0") && len(v) > 1:
		n, err = strconv.ParseInt(v, 8, 64)
	default:
		n, err = strconv.ParseInt(v, 10, 64)
	}
	if err != nil {
		return 0, err
	}
	if neg {
		n = -n
	}
	return n, nil
}

// LookupLastArgs splits the last value of section/key exec-style: quotes
// are unquoted and C escapes are applied, as used for ExecStart-like keys.
func (u *Unit) LookupLastArgs(section, key string) ([]string, error) {
	raw, ok := u.LookupLast(section, key)
	if !ok {
		return nil, nil
	}
	return wordsplit.Split(raw, wordsplit.WhitespaceSeparators, wordsplit.Relax|wordsplit.Unquote|wordsplit.CUnescape)
}

// LookupAllArgs is LookupLastArgs applied to every value of section/key and
// flattened into one slice, in source order.
func (u *Unit) LookupAllArgs(section, key string) ([]string, error) {
	var out []string
	for _, raw := range u.LookupAll(section, key) {
		words, err := wordsplit.Split(raw, wordsplit.WhitespaceSeparators, wordsplit.Relax|wordsplit.Unquote|wordsplit.CUnescape)
		if err != nil {
			return nil, err
		}
		out = append(out, words...)
	}
	return out, nil
}

// LookupAllStrv splits every value of section/key the way systemd's
// config_parse_strv does: whitespace/quote-aware but without C escapes,
// used for keys like RequiredBy/Aliases-alikes (here: UIDMap, GIDMap,
// RemapUid, RemapGid, RemapUidRanges, ImageTag, ConfigMap, ...).
func (u *Unit) LookupAllStrv(section, key string) []string {
	var out []string
	for _, raw := range u.LookupAll(section, key) {
		words, err := wordsplit.Split(raw, wordsplit.WhitespaceSeparators, wordsplit.Relax|wordsplit.Unquote)
		if err != nil {
			continue
		}
		out = append(out, words...)
	}
	return out
}

// KeyVal is one decoded "KEY=VALUE" token, as produced by
// LookupAllKeyVal for Environment=/Label=/Annotation=-style keys.
type KeyVal struct {
	Key, Value string
}

// LookupAllKeyVal splits every value of section/key exec-style, then cuts
// each resulting token on its first '='.
func (u *Unit) LookupAllKeyVal(section, key string) []KeyVal {
	var out []KeyVal
	args, err := u.LookupAllArgs(section, key)
	if err != nil {
		return nil
	}
	for _, tok := range args {
		k, v, found := strings.Cut(tok, "=")
		if !found {
			continue
		}
		out = append(out, KeyVal{Key: k, Value: v})
	}
	return out
}
