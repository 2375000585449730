// Package skills defines normalized skill identifiers and the set types
// the matching engine scores over. A skill is identified by its normalized
// form (lowercase, trimmed, aliases collapsed); two spellings that
// normalize to the same identifier are the same skill everywhere in the
// system.
package skills

import (
	"encoding/json"
	"sort"
)

// SkillSet is an unweighted collection of normalized skill identifiers.
// Legacy catalog entries and user-claimed skills arrive in this shape.
type SkillSet map[string]struct{}

// NewSet builds a SkillSet from raw skill names. Names are normalized on
// the way in; entries that normalize to the empty string are dropped.
func NewSet(names ...string) SkillSet {
	set := make(SkillSet, len(names))
	for _, name := range names {
		key := Normalize(name)
		if key == "" {
			continue
		}
		set[key] = struct{}{}
	}
	return set
}

// NormalizeSet re-normalizes an existing set. Useful when a SkillSet was
// built by hand or decoded from storage written by an older version.
func NormalizeSet(s SkillSet) SkillSet {
	out := make(SkillSet, len(s))
	for name := range s {
		key := Normalize(name)
		if key == "" {
			continue
		}
		out[key] = struct{}{}
	}
	return out
}

// Contains reports whether the set holds the skill, normalizing the
// argument first so callers can pass raw user input.
func (s SkillSet) Contains(name string) bool {
	_, ok := s[Normalize(name)]
	return ok
}

// Add inserts a skill, normalizing it first. Empty-normalizing names are
// ignored.
func (s SkillSet) Add(name string) {
	key := Normalize(name)
	if key == "" {
		return
	}
	s[key] = struct{}{}
}

// Union returns a new set containing every skill in either operand.
func (s SkillSet) Union(other SkillSet) SkillSet {
	out := make(SkillSet, len(s)+len(other))
	for name := range s {
		out[name] = struct{}{}
	}
	for name := range other {
		out[name] = struct{}{}
	}
	return out
}

// Slice returns the skills in sorted order for stable display and storage.
func (s SkillSet) Slice() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted JSON array of identifiers.
func (s SkillSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON decodes a JSON array of skill names, normalizing each.
func (s *SkillSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = NewSet(names...)
	return nil
}

// Uniform lifts an unweighted set into a weighted one at DefaultWeight,
// the bridge from legacy flat skill lists to weighted scoring.
func Uniform(s SkillSet) WeightedSkillSet {
	out := make(WeightedSkillSet, len(s))
	for name := range s {
		key := Normalize(name)
		if key == "" {
			continue
		}
		out[key] = DefaultWeight
	}
	return out
}
