// Package unitfile implements the ordered, multi-valued unit-file model
// described in §3/§4.B of the design: sections keep insertion order, keys
// may repeat, and lookup semantics distinguish "last value wins" settings
// from "all values concatenate" settings.
package unitfile

import "strings"

// Entry is a single key/value pair inside a Section. Value is the raw,
// continuation-folded line; quotes are stored verbatim and are only
// stripped by the wordsplit package when a consumer needs argv tokens.
type Entry struct {
	Key      string
	Value    string
	Line     int
	Column   int
	Comments []string
}

// Section is a named bag of Entries.
type Section struct {
	Name     string
	Entries  []Entry
	Comments []string

	byKey map[string][]int
}

func newSection(name string) *Section {
	return &Section{Name: name, byKey: make(map[string][]int)}
}

// Append records an insertion of key=value, preserving prior occurrences.
func (s *Section) Append(key, value string) {
	s.AppendEntry(Entry{Key: key, Value: value})
}

// AppendEntry is like Append but lets the caller set line/column/comments.
func (s *Section) AppendEntry(e Entry) {
	idx := len(s.Entries)
	s.Entries = append(s.Entries, e)
	s.byKey[e.Key] = append(s.byKey[e.Key], idx)
}

// Set removes every prior occurrence of key, then appends value.
func (s *Section) Set(key, value string) {
	s.removeAll(key)
	s.Append(key, value)
}

// Prepend inserts key=value before this section's first existing
// occurrence of key (or at the end if key isn't present yet), so a later
// LookupAll(key) sees value first.
func (s *Section) Prepend(key, value string) {
	insertAt := len(s.Entries)
	if idxs, ok := s.byKey[key]; ok && len(idxs) > 0 {
		insertAt = idxs[0]
	}
	s.Entries = append(s.Entries[:insertAt:insertAt], append([]Entry{{Key: key, Value: value}}, s.Entries[insertAt:]...)...)
	s.reindex()
}

// Remove deletes every occurrence of key.
func (s *Section) Remove(key string) {
	s.removeAll(key)
}

func (s *Section) removeAll(key string) {
	if _, ok := s.byKey[key]; !ok {
		return
	}
	kept := s.Entries[:0]
	for _, e := range s.Entries {
		if e.Key != key {
			kept = append(kept, e)
		}
	}
	s.Entries = kept
	delete(s.byKey, key)
	s.reindex()
}

func (s *Section) reindex() {
	s.byKey = make(map[string][]int, len(s.byKey))
	for i, e := range s.Entries {
		s.byKey[e.Key] = append(s.byKey[e.Key], i)
	}
}

// LookupLastRaw returns the last occurrence of key, continuations already
// folded but with surrounding whitespace and quoting untouched.
func (s *Section) LookupLastRaw(key string) (Entry, bool) {
	idxs, ok := s.byKey[key]
	if !ok || len(idxs) == 0 {
		return Entry{}, false
	}
	return s.Entries[idxs[len(idxs)-1]], true
}

// LookupLast returns the last value for key with surrounding double-quotes
// trimmed, matching last-wins settings such as Image=.
func (s *Section) LookupLast(key string) (string, bool) {
	e, ok := s.LookupLastRaw(key)
	if !ok {
		return "", false
	}
	return trimQuotes(e.Value), true
}

// LookupAll returns every value for key in insertion order, for
// multi-valued settings such as Mount=, PublishPort=, Environment=.
//
// An empty value clears every prior occurrence of the key that precedes it
// (systemd's "reset the list" convention for Environment=-style keys).
func (s *Section) LookupAll(key string) []string {
	idxs := s.byKey[key]
	values := make([]string, 0, len(idxs))
	for _, i := range idxs {
		v := s.Entries[i].Value
		if v == "" {
			values = values[:0]
			continue
		}
		values = append(values, v)
	}
	return values
}

// HasKey reports whether key was ever assigned in this section.
func (s *Section) HasKey(key string) bool {
	idxs, ok := s.byKey[key]
	return ok && len(idxs) > 0
}

// Keys lists the distinct keys assigned in this section, first-seen order.
func (s *Section) Keys() []string {
	seen := make(map[string]struct{}, len(s.Entries))
	keys := make([]string, 0, len(s.Entries))
	for _, e := range s.Entries {
		if _, ok := seen[e.Key]; !ok {
			seen[e.Key] = struct{}{}
			keys = append(keys, e.Key)
		}
	}
	return keys
}

// Unit is an ordered list of Sections, per §3. Sections that share a name
// are merged by append: re-opening "[Container]" later in the file
// continues the same logical Section rather than creating a second one.
type Unit struct {
	Path     string
	Sections []*Section

	byName map[string]*Section
}

// New returns an empty Unit ready to be populated by a parser or a
// translator building an output unit from scratch.
func New(path string) *Unit {
	return &Unit{Path: path, byName: make(map[string]*Section)}
}

// AddSection returns the Section named name, creating and appending it if
// this is the first time it is seen.
func (u *Unit) AddSection(name string) *Section {
	if s, ok := u.byName[name]; ok {
		return s
	}
	s := newSection(name)
	u.Sections = append(u.Sections, s)
	u.byName[name] = s
	return s
}

// Section returns the named section, or nil if the unit has none.
func (u *Unit) Section(name string) *Section {
	return u.byName[name]
}

// HasSection reports whether the unit declares the named section at all.
func (u *Unit) HasSection(name string) bool {
	_, ok := u.byName[name]
	return ok
}

// RenameSection moves a section's identity (used to hide a Quadlet-only
// section like [Container] behind an [X-Container] name so systemd itself
// ignores it, per §4.F).
func (u *Unit) RenameSection(from, to string) {
	s, ok := u.byName[from]
	if !ok {
		return
	}
	delete(u.byName, from)
	s.Name = to
	if existing, ok := u.byName[to]; ok && existing != s {
		existing.Entries = append(existing.Entries, s.Entries...)
		existing.reindex()
		for i, sec := range u.Sections {
			if sec == s {
				u.Sections = append(u.Sections[:i], u.Sections[i+1:]...)
				break
			}
		}
		return
	}
	u.byName[to] = s
}

// Append is a convenience for AddSection(section).Append(key, value).
func (u *Unit) Append(section, key, value string) {
	u.AddSection(section).Append(key, value)
}

// Set is a convenience for AddSection(section).Set(key, value).
func (u *Unit) Set(section, key, value string) {
	u.AddSection(section).Set(key, value)
}

// Prepend is a convenience for AddSection(section).Prepend(key, value).
func (u *Unit) Prepend(section, key, value string) {
	u.AddSection(section).Prepend(key, value)
}

// LookupLast looks up section/key, returning ("", false) if either is
// absent.
func (u *Unit) LookupLast(section, key string) (string, bool) {
	s, ok := u.byName[section]
	if !ok {
		return "", false
	}
	return s.LookupLast(key)
}

// LookupAll looks up every value of section/key in insertion order.
func (u *Unit) LookupAll(section, key string) []string {
	s, ok := u.byName[section]
	if !ok {
		return nil
	}
	return s.LookupAll(key)
}

// HasKey reports whether section/key was ever assigned.
func (u *Unit) HasKey(section, key string) bool {
	s, ok := u.byName[section]
	return ok && s.HasKey(key)
}

// trimQuotes mirrors systemd's config_parse_string behavior for lookups
// that go through lookup_base: trailing whitespace is stripped, then any
// run of '"' characters at either end is stripped (not just matched
// pairs).
func trimQuotes(v string) string {
	v = strings.TrimRightFunc(v, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' })
	return strings.Trim(v, "\"")
}
