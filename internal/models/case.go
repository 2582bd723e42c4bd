package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Case is one declarative unit of work loaded from a case file: a command to
// run and the output it should produce.
type Case struct {
	Name    string  `json:"case_name"`
	Command string  `json:"command"`
	Args    Args    `json:"args"`
	Answer  string  `json:"answer"`
	IsFile  bool    `json:"isfile"`
	Score   float64 `json:"score"`

	// Mode optionally overrides the run-wide comparison mode ("exact" or "fuzzy").
	Mode string `json:"mode,omitempty"`

	// Timeout optionally overrides the run-wide per-case timeout (Go duration string).
	Timeout string `json:"timeout,omitempty"`
}

// TimeoutDuration parses the per-case timeout override.
// Returns (0, false) when the case does not set one.
func (c Case) TimeoutDuration() (time.Duration, bool, error) {
	if c.Timeout == "" {
		return 0, false, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, false, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	return d, true, nil
}

// Args holds a case's "args" value while remembering whether the file gave a
// single scalar or a sequence. The distinction matters to command assembly.
type Args struct {
	values   []string
	sequence bool
	raw      json.RawMessage
}

// ScalarArgs builds a scalar Args value.
func ScalarArgs(v string) Args {
	raw, _ := json.Marshal(v)
	return Args{values: []string{v}, raw: raw}
}

// SequenceArgs builds a sequence Args value.
func SequenceArgs(vs ...string) Args {
	if vs == nil {
		vs = []string{}
	}
	raw, _ := json.Marshal(vs)
	return Args{values: vs, sequence: true, raw: raw}
}

// IsSequence reports whether args was given as a JSON array.
func (a Args) IsSequence() bool {
	return a.sequence
}

// Len returns the number of values (1 for a scalar).
func (a Args) Len() int {
	return len(a.values)
}

// Values returns the argument values rendered as text, in file order.
func (a Args) Values() []string {
	out := make([]string, len(a.values))
	copy(out, a.values)
	return out
}

// Raw returns the argument value as a single text item: the scalar itself, or
// the compact JSON text of a sequence.
func (a Args) Raw() string {
	if !a.sequence && len(a.values) == 1 {
		return a.values[0]
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, a.raw); err != nil {
		return string(a.raw)
	}
	return buf.String()
}

// UnmarshalJSON accepts a JSON scalar or an array of scalars.
func (a *Args) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("args must not be null")
	}

	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("args: %w", err)
		}
		values := make([]string, 0, len(items))
		for i, item := range items {
			v, err := scalarText(item)
			if err != nil {
				return fmt.Errorf("args[%d]: %w", i, err)
			}
			values = append(values, v)
		}
		a.values = values
		a.sequence = true
		a.raw = append(json.RawMessage(nil), trimmed...)
		return nil
	}

	v, err := scalarText(trimmed)
	if err != nil {
		return fmt.Errorf("args: %w", err)
	}
	a.values = []string{v}
	a.sequence = false
	a.raw = append(json.RawMessage(nil), trimmed...)
	return nil
}

// MarshalJSON writes args back in the shape it was read.
func (a Args) MarshalJSON() ([]byte, error) {
	if a.raw != nil {
		return a.raw, nil
	}
	if a.sequence {
		return json.Marshal(a.values)
	}
	if len(a.values) == 1 {
		return json.Marshal(a.values[0])
	}
	return []byte("null"), nil
}

// scalarText renders a JSON string, number or bool as argument text.
func scalarText(data json.RawMessage) (string, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	case nil:
		return "", fmt.Errorf("null is not a valid argument")
	default:
		return "", fmt.Errorf("unsupported argument type %T", v)
	}
}

// Suite is the ordered list of cases read from one case file.
// Order defines both execution and report order.
type Suite struct {
	Path  string
	Cases []Case
}

// TotalScore returns the sum of every case's declared score.
func (s *Suite) TotalScore() float64 {
	var total float64
	for _, c := range s.Cases {
		total += c.Score
	}
	return total
}
