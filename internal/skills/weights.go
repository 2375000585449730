package skills

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// DefaultWeight is assigned to skills whose weight is missing or
// malformed, and to every skill lifted from a legacy flat list.
const DefaultWeight = 1.0

// WeightedSkillSet maps normalized skill identifiers to positive
// importance weights. Entries with zero or negative weight are never
// stored; a skill a posting does not care about is simply absent.
type WeightedSkillSet map[string]float64

// NormalizeWeighted rebuilds a weighted set with normalized keys and
// sanitized weights. When two raw names collapse to the same identifier
// the larger weight wins. Entries whose weight sanitizes to zero are
// dropped.
func NormalizeWeighted(w WeightedSkillSet) WeightedSkillSet {
	out := make(WeightedSkillSet, len(w))
	for name, weight := range w {
		key := Normalize(name)
		if key == "" {
			continue
		}
		weight = sanitizeWeight(weight)
		if existing, ok := out[key]; !ok || weight > existing {
			out[key] = weight
		}
	}
	for key, weight := range out {
		if weight <= 0 {
			delete(out, key)
		}
	}
	return out
}

// FromRaw builds a weighted set from a decoded JSON object whose values
// may be numbers, numeric strings, or garbage. Unparseable weights fall
// back to DefaultWeight rather than failing the whole set.
func FromRaw(raw map[string]any) WeightedSkillSet {
	w := make(WeightedSkillSet, len(raw))
	for name, value := range raw {
		key := Normalize(name)
		if key == "" {
			continue
		}
		weight := sanitizeWeight(coerceWeight(value))
		if existing, ok := w[key]; !ok || weight > existing {
			w[key] = weight
		}
	}
	for key, weight := range w {
		if weight <= 0 {
			delete(w, key)
		}
	}
	return w
}

// Set returns the plain-set view of the weighted skills.
func (w WeightedSkillSet) Set() SkillSet {
	out := make(SkillSet, len(w))
	for name := range w {
		out[name] = struct{}{}
	}
	return out
}

// Total returns the sum of all weights.
func (w WeightedSkillSet) Total() float64 {
	var total float64
	for _, weight := range w {
		total += weight
	}
	return total
}

// sanitizeWeight maps out-of-domain weights into the valid range:
// NaN and +Inf fall back to DefaultWeight, negative values (including
// -Inf) count as zero.
func sanitizeWeight(weight float64) float64 {
	switch {
	case math.IsNaN(weight):
		return DefaultWeight
	case math.IsInf(weight, 1):
		return DefaultWeight
	case weight < 0:
		return 0
	default:
		return weight
	}
}

// coerceWeight converts a decoded JSON value to a float64 weight.
// Anything that is not a number and does not parse as one yields
// DefaultWeight.
func coerceWeight(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return DefaultWeight
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return DefaultWeight
		}
		return f
	default:
		return DefaultWeight
	}
}
