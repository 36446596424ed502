package hl7v2

import (
	"strings"
	"testing"
)

const adtMessage = "MSH|^~\\&|EPIC|WESTSIDE|RHAPSODY|CENTRAL|20230515143000||ADT^A01|MSG00001|P|2.5.1\r" +
	"PID|1||12345^^^WESTSIDE^MR~999551111^^^SSA^SS||SMITH^JANE||19800312|F|||123 MAIN ST^^NEW YORK^NY^10001^USA\r" +
	"AL1|1|DA|70618^Penicillin^RxNorm|SV|Hives\r" +
	"DG1|1||E11.9^Type 2 diabetes mellitus^ICD-10||20230101"

func TestParse(t *testing.T) {
	msg, err := Parse([]byte(adtMessage))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if msg.Type != "ADT^A01" {
		t.Errorf("Type = %q, want ADT^A01", msg.Type)
	}
	if msg.ControlID != "MSG00001" {
		t.Errorf("ControlID = %q", msg.ControlID)
	}
	if msg.Version != "2.5.1" {
		t.Errorf("Version = %q", msg.Version)
	}
	if msg.Timestamp != "20230515143000" {
		t.Errorf("Timestamp = %q", msg.Timestamp)
	}
	if len(msg.Segments) != 4 {
		t.Fatalf("want 4 segments, got %d", len(msg.Segments))
	}

	pid := msg.First("PID")
	if pid == nil {
		t.Fatal("PID segment not found")
	}
	if got := pid.Component(3, 1); got != "12345" {
		t.Errorf("PID-3.1 = %q, want 12345", got)
	}
	if got := pid.Field(8); got != "F" {
		t.Errorf("PID-8 = %q, want F", got)
	}
	if reps := pid.Repeats(3); len(reps) != 2 || component(reps[1], 5) != "SS" {
		t.Errorf("PID-3 repeats = %v", reps)
	}
	if got := pid.Component(11, 4); got != "NY" {
		t.Errorf("PID-11.4 = %q, want NY", got)
	}
}

func TestParseLineEndings(t *testing.T) {
	for _, sep := range []string{"\r", "\n", "\r\n"} {
		msg, err := Parse([]byte(strings.ReplaceAll(adtMessage, "\r", sep)))
		if err != nil {
			t.Fatalf("separator %q: %v", sep, err)
		}
		if len(msg.Segments) != 4 {
			t.Errorf("separator %q: got %d segments", sep, len(msg.Segments))
		}
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Error("empty input accepted")
	}
	if _, err := Parse([]byte("PID|1|2")); err == nil {
		t.Error("message without MSH accepted")
	}
	if _, err := Parse([]byte("  \r\n  ")); err == nil {
		t.Error("blank message accepted")
	}
}

func TestFieldOutOfRange(t *testing.T) {
	msg, err := Parse([]byte(adtMessage))
	if err != nil {
		t.Fatal(err)
	}
	al1 := msg.First("AL1")
	if got := al1.Field(99); got != "" {
		t.Errorf("out-of-range field = %q, want empty", got)
	}
	if got := al1.Component(3, 99); got != "" {
		t.Errorf("out-of-range component = %q, want empty", got)
	}
	if msg.First("ZZZ") != nil {
		t.Error("First should return nil for missing segment")
	}
}
