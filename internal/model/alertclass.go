package model

import "fmt"

// AlertClass is a closed, totally-ordered qualitative severity label.
type AlertClass int

const (
	AlertNo AlertClass = iota
	AlertMin
	AlertMed
	AlertMax
)

var alertClassNames = map[AlertClass]string{
	AlertNo:  "no",
	AlertMin: "min",
	AlertMed: "med",
	AlertMax: "max",
}

func (c AlertClass) String() string {
	if name, ok := alertClassNames[c]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON renders the class using its wire name, not the int ordinal.
func (c AlertClass) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON rejects unknown alert class strings rather than defaulting.
func (c *AlertClass) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return err
	}
	parsed, err := ParseAlertClass(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseAlertClass converts a wire string into an AlertClass, rejecting anything
// outside the closed {no,min,med,max} set.
func ParseAlertClass(s string) (AlertClass, error) {
	for c, name := range alertClassNames {
		if name == s {
			return c, nil
		}
	}
	return AlertNo, fmt.Errorf("%w: unknown alert class %q", ErrPolicyInvalid, s)
}

// AllAlertClassesAscending returns the classes in ascending severity order,
// the order the classification state machine walks.
func AllAlertClassesAscending() []AlertClass {
	return []AlertClass{AlertNo, AlertMin, AlertMed, AlertMax}
}

func unquote(data []byte) (string, error) {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return "", fmt.Errorf("%w: alert class must be a JSON string", ErrPolicyInvalid)
	}
	return string(data[1 : len(data)-1]), nil
}
