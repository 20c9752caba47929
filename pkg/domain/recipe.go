package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Recipe is the record produced or stored by the backend.
// The engine never mutates a Recipe once received; it only moves a cursor over Steps.
type Recipe struct {
	Name        string       `json:"recipe_name"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []Step       `json:"steps"`
}

// Ingredient is a single line of the ingredient list.
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
}

// UnmarshalJSON accepts both the object form and a bare string (name only).
func (i *Ingredient) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*i = Ingredient{Name: name}
		return nil
	}
	type raw struct {
		Name     string          `json:"name"`
		Quantity json.RawMessage `json:"quantity,omitempty"`
	}
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	i.Name = r.Name
	i.Quantity = looseString(r.Quantity)
	return nil
}

// Step is one ordered instruction of a recipe.
type Step struct {
	Number      int      `json:"step_number"`
	Instruction string   `json:"instruction"`
	Minutes     Minutes  `json:"estimated_time,omitempty"`
	KeyItems    []string `json:"key_ingredients_or_tools,omitempty"`
}

// Minutes is an estimated duration. Generated recipes carry either a number or a short string.
type Minutes float64

// UnmarshalJSON accepts numbers, numeric strings and strings like "5 min".
func (m *Minutes) UnmarshalJSON(data []byte) error {
	s := looseString(data)
	if s == "" {
		*m = 0
		return nil
	}
	fields := strings.Fields(s)
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		// Unparseable estimates are informational only.
		*m = 0
		return nil
	}
	*m = Minutes(v)
	return nil
}

// Label renders the step the way it is narrated to the user.
func (s Step) Label(index int) string {
	n := s.Number
	if n == 0 {
		n = index + 1
	}
	return fmt.Sprintf("Step %d: %s", n, s.Instruction)
}

// StepAt returns the step at the zero-based index.
func (r *Recipe) StepAt(i int) (Step, bool) {
	if r == nil || i < 0 || i >= len(r.Steps) {
		return Step{}, false
	}
	return r.Steps[i], true
}

func looseString(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return ""
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			return strings.TrimSpace(s)
		}
	}
	return string(data)
}
