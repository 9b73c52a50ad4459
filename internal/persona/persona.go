// Package persona defines Aura's two interpretive stances and the prompt
// selection that frames every organ's inference call. Main is analytic and
// fact-oriented; Inner is intuitive and affect-oriented. The same input
// perceived under different personas must route through different preambles.
package persona

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Persona selects which interpretive stance frames an inference call.
type Persona int

const (
	// Main is the primary, analytic stance.
	Main Persona = iota
	// Inner is the secondary, intuitive stance.
	Inner
)

// String returns the wire name of the persona.
func (p Persona) String() string {
	switch p {
	case Inner:
		return "inner"
	default:
		return "main"
	}
}

// Tag returns the delivery prefix used when handing a question to a
// sibling AI application.
func (p Persona) Tag() string {
	switch p {
	case Inner:
		return "[Inner Aura]"
	default:
		return "[Main Aura]"
	}
}

// Parse resolves a wire name into a Persona. Both the current names and
// the neutral primary/secondary aliases are accepted. Unknown names
// default to Main.
func Parse(s string) Persona {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inner", "secondary":
		return Inner
	default:
		return Main
	}
}

// MarshalJSON encodes the persona by wire name.
func (p Persona) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a wire name, tolerating unknown values.
func (p *Persona) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = Parse(s)
	return nil
}

// ParseStrict is like Parse but rejects unknown names.
func ParseStrict(s string) (Persona, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "main", "primary":
		return Main, nil
	case "inner", "secondary":
		return Inner, nil
	default:
		return Main, fmt.Errorf("unknown persona %q", s)
	}
}
