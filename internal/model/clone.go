package model

import (
	"encoding/json"
	"fmt"
)

// Clone returns a deep, independent copy of the graph. The copy shares no
// memory with the receiver, so mutating it never touches caller-owned data.
func (c *ClinicalContent) Clone() (*ClinicalContent, error) {
	out := &ClinicalContent{}
	if err := deepCopy(c, out); err != nil {
		return nil, fmt.Errorf("clone clinical content: %w", err)
	}
	return out, nil
}

// Clone returns a deep, independent copy of the graph.
func (c *OperationalContent) Clone() (*OperationalContent, error) {
	out := &OperationalContent{}
	if err := deepCopy(c, out); err != nil {
		return nil, fmt.Errorf("clone operational content: %w", err)
	}
	return out, nil
}

// deepCopy round-trips src through JSON into dst. The canonical models are
// plain data with JSON tags on every field, so the round trip is lossless.
func deepCopy(src, dst any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
