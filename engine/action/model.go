package action

import "fmt"

// PropType enumerates the parameter types an action can declare.
type PropType string

const (
	TypeString       PropType = "string"
	TypeInteger      PropType = "integer"
	TypeBoolean      PropType = "boolean"
	TypeStringArray  PropType = "string[]"
	TypeIntegerArray PropType = "integer[]"
	TypeObject       PropType = "object"
	// TypeApp is the authenticated-account binding. Never shown to the
	// user as a configurable field; always present in the compiled
	// static configuration.
	TypeApp PropType = "app"
)

func (t PropType) IsArray() bool {
	return t == TypeStringArray || t == TypeIntegerArray
}

// JSONType maps the prop type onto the JSON Schema type the agent sees.
func (t PropType) JSONType() string {
	switch t {
	case TypeInteger:
		return "number"
	case TypeBoolean:
		return "boolean"
	case TypeObject:
		return "object"
	case TypeStringArray, TypeIntegerArray:
		return "array"
	default:
		return "string"
	}
}

// ItemJSONType is the JSON Schema type of one array element.
func (t PropType) ItemJSONType() string {
	if t == TypeIntegerArray {
		return "number"
	}
	return "string"
}

// Option is one allowed value of a prop, static or remotely resolved.
type Option struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// ConfigurableProp is one parameter of an action.
type ConfigurableProp struct {
	Name          string   `json:"name"`
	Type          PropType `json:"type"`
	Label         string   `json:"label,omitempty"`
	Description   string   `json:"description,omitempty"`
	Optional      bool     `json:"optional,omitempty"`
	Hidden        bool     `json:"hidden,omitempty"`
	Disabled      bool     `json:"disabled,omitempty"`
	Default       any      `json:"default,omitempty"`
	Options       []Option `json:"options,omitempty"`
	RemoteOptions bool     `json:"remoteOptions,omitempty"`
}

// Visible reports whether the prop may be presented for configuration.
func (p *ConfigurableProp) Visible() bool {
	return !p.Hidden && !p.Disabled && p.Type != TypeApp
}

func (p *ConfigurableProp) Required() bool {
	return !p.Optional
}

// DisplayName is the best human-readable identification of the prop.
func (p *ConfigurableProp) DisplayName() string {
	if p.Label != "" {
		return p.Label
	}
	return p.Name
}

// Definition is an external capability fetched from the catalog.
// Immutable once fetched; the catalog owns it.
type Definition struct {
	Key         string             `json:"key"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	App         string             `json:"app,omitempty"`
	Props       []ConfigurableProp `json:"configurableProps"`
}

// VisibleProps returns the ordered subset of props that can ever be
// presented to the user.
func (d *Definition) VisibleProps() []ConfigurableProp {
	out := make([]ConfigurableProp, 0, len(d.Props))
	for i := range d.Props {
		if d.Props[i].Visible() {
			out = append(out, d.Props[i])
		}
	}
	return out
}

// AppProps returns the account-binding props of the action.
func (d *Definition) AppProps() []ConfigurableProp {
	out := make([]ConfigurableProp, 0, 1)
	for i := range d.Props {
		if d.Props[i].Type == TypeApp {
			out = append(out, d.Props[i])
		}
	}
	return out
}

func (d *Definition) FindProp(name string) (*ConfigurableProp, error) {
	for i := range d.Props {
		if d.Props[i].Name == name {
			return &d.Props[i], nil
		}
	}
	return nil, fmt.Errorf("prop %q not found in action %q", name, d.Key)
}
