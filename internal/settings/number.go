package settings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Num is a numeric setting. Hand-edited settings files often quote numbers,
// so both 16 and "16" decode to the same value.
type Num float64

// Float returns the value as float64
func (n Num) Float() float64 {
	return float64(n)
}

// Int returns the value truncated to int
func (n Num) Int() int {
	return int(n)
}

func parseNum(s string) (Num, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return Num(f), nil
}

// UnmarshalJSON accepts a JSON number or a string holding one
func (n *Num) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := parseNum(s)
		if err != nil {
			return err
		}
		*n = v
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Num(f)
	return nil
}

// UnmarshalYAML accepts a YAML scalar, quoted or not
func (n *Num) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", value.Line)
	}
	v, err := parseNum(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*n = v
	return nil
}

// MarshalYAML writes the plain number
func (n Num) MarshalYAML() (interface{}, error) {
	return float64(n), nil
}

// Int is a whole-number setting (counts, indexes, pixels). It accepts the
// same forms as Num and drops any fractional part.
type Int int

// UnmarshalJSON accepts a JSON number or a string holding one
func (i *Int) UnmarshalJSON(data []byte) error {
	var n Num
	if err := n.UnmarshalJSON(data); err != nil {
		return err
	}
	*i = Int(n.Int())
	return nil
}

// UnmarshalYAML accepts a YAML scalar, quoted or not
func (i *Int) UnmarshalYAML(value *yaml.Node) error {
	var n Num
	if err := n.UnmarshalYAML(value); err != nil {
		return err
	}
	*i = Int(n.Int())
	return nil
}
