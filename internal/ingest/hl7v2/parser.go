// Package hl7v2 parses pipe-delimited HL7 v2.x messages and normalizes them
// into the canonical clinical graph. ADT, ORU, and VXU message types are
// supported; unrecognized segments are skipped rather than rejected.
package hl7v2

import (
	"fmt"
	"strings"
)

// Message is a parsed HL7v2 message.
type Message struct {
	Type      string // MSH-9, e.g. "ADT^A01"
	ControlID string // MSH-10
	Version   string // MSH-12
	Timestamp string // MSH-7, raw HL7 timestamp
	Segments  []Segment
}

// Segment is one segment line. Field values are stored raw; component and
// repetition splitting happens in the accessors.
type Segment struct {
	Name   string
	fields []string
}

// Field returns the raw value of a field by its 1-based HL7 index. For MSH
// the field separator itself counts as MSH-1, matching the standard's
// numbering.
func (s *Segment) Field(i int) string {
	i--
	if i < 0 || i >= len(s.fields) {
		return ""
	}
	return s.fields[i]
}

// Component returns component c of field i (both 1-based). Repetitions
// resolve to the first repeat.
func (s *Segment) Component(i, c int) string {
	v := s.Field(i)
	if r := strings.Split(v, "~"); len(r) > 0 {
		v = r[0]
	}
	comps := strings.Split(v, "^")
	if c < 1 || c > len(comps) {
		return ""
	}
	return comps[c-1]
}

// Repeats returns the repetitions of field i, raw.
func (s *Segment) Repeats(i int) []string {
	v := s.Field(i)
	if v == "" {
		return nil
	}
	return strings.Split(v, "~")
}

// component splits a single repetition into its components.
func component(rep string, c int) string {
	comps := strings.Split(rep, "^")
	if c < 1 || c > len(comps) {
		return ""
	}
	return comps[c-1]
}

// First returns the first segment with the given name, or nil.
func (m *Message) First(name string) *Segment {
	for i := range m.Segments {
		if m.Segments[i].Name == name {
			return &m.Segments[i]
		}
	}
	return nil
}

// All returns every segment with the given name.
func (m *Message) All(name string) []*Segment {
	var out []*Segment
	for i := range m.Segments {
		if m.Segments[i].Name == name {
			out = append(out, &m.Segments[i])
		}
	}
	return out
}

// Parse parses a raw HL7v2 message. Segment separators may be \r, \n, or
// \r\n; the first segment must be MSH.
func Parse(raw []byte) (*Message, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("hl7v2: empty message")
	}

	text := strings.ReplaceAll(string(raw), "\r\n", "\r")
	text = strings.ReplaceAll(text, "\n", "\r")

	var lines []string
	for _, line := range strings.Split(text, "\r") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("hl7v2: no segments")
	}
	if !strings.HasPrefix(lines[0], "MSH") {
		return nil, fmt.Errorf("hl7v2: message must start with MSH")
	}

	msg := &Message{}
	for _, line := range lines {
		seg, err := parseSegment(line)
		if err != nil {
			return nil, err
		}
		msg.Segments = append(msg.Segments, seg)
	}

	msh := msg.First("MSH")
	msg.Timestamp = msh.Field(7)
	msg.Type = msh.Field(9)
	msg.ControlID = msh.Field(10)
	msg.Version = msh.Field(12)
	return msg, nil
}

func parseSegment(line string) (Segment, error) {
	if len(line) < 3 {
		return Segment{}, fmt.Errorf("hl7v2: segment too short: %q", line)
	}
	name := line[:3]

	// MSH-1 is the field separator character itself, so the fields slice for
	// MSH starts with "|" followed by everything after "MSH|".
	if name == "MSH" {
		if len(line) < 5 {
			return Segment{}, fmt.Errorf("hl7v2: truncated MSH segment")
		}
		sep := string(line[3])
		fields := append([]string{sep}, strings.Split(line[4:], sep)...)
		return Segment{Name: name, fields: fields}, nil
	}

	parts := strings.Split(line, "|")
	return Segment{Name: parts[0], fields: parts[1:]}, nil
}
