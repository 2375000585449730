package skills

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Flexible decodes a skills field that may arrive in either catalog
// shape: a legacy flat list (JSON array of names, or a single delimited
// string) or a weighted mapping of name to importance. Whatever the wire
// shape, the decoded value is a normalized WeightedSkillSet; legacy lists
// get DefaultWeight across the board.
type Flexible struct {
	weighted WeightedSkillSet
}

// NewFlexible wraps an already-built weighted set for encoding.
func NewFlexible(w WeightedSkillSet) Flexible {
	return Flexible{weighted: NormalizeWeighted(w)}
}

// Weighted returns the decoded set. The result is never nil.
func (f Flexible) Weighted() WeightedSkillSet {
	if f.weighted == nil {
		return WeightedSkillSet{}
	}
	return f.weighted
}

// UnmarshalJSON accepts an array of skill names, an object of
// name-to-weight pairs, or a delimited string. Null decodes to an empty
// set. Any other shape is a malformed document and is rejected.
func (f *Flexible) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		f.weighted = WeightedSkillSet{}
		return nil
	}

	switch trimmed[0] {
	case '[':
		var entries []any
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return fmt.Errorf("failed to parse skills list: %w", err)
		}
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			if name, ok := entry.(string); ok {
				names = append(names, name)
			}
		}
		f.weighted = Uniform(NewSet(names...))
		return nil
	case '{':
		var raw map[string]any
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("failed to parse skill weights: %w", err)
		}
		f.weighted = FromRaw(raw)
		return nil
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return fmt.Errorf("failed to parse skills string: %w", err)
		}
		f.weighted = Uniform(ParseLegacy(text))
		return nil
	default:
		return fmt.Errorf("skills must be a list, mapping, or delimited string")
	}
}

// MarshalJSON always writes the weighted object form.
func (f Flexible) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Weighted())
}
