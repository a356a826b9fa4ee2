package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/toolforge-ai/toolforge/engine/action"
)

// Mode is the authoring choice for one prop: agent-decided, author-fixed
// or unused.
type Mode string

const (
	ModeAI    Mode = "ai"
	ModeFixed Mode = "fixed"
	ModeEmpty Mode = "empty"
)

// ArrayItem is one entry of an array prop: either a literal base value
// or an agent-generated slot.
type ArrayItem struct {
	Value    any    `json:"value,omitempty"`
	IsAI     bool   `json:"isAi,omitempty"`
	AIPrompt string `json:"aiPrompt,omitempty"`
}

// PropConfig is the authoring state of one prop. Use the Fixed, AI and
// Empty constructors; Validate rejects combinations the constructors
// cannot produce (an aiDescription on a fixed prop, items on a scalar).
type PropConfig struct {
	Mode            Mode        `json:"mode"`
	Value           any         `json:"value,omitempty"`
	AIDescription   string      `json:"aiDescription,omitempty"`
	Items           []ArrayItem `json:"arrayItems,omitempty"`
	AICanAddMore    bool        `json:"aiCanAddMore,omitempty"`
	AIAddMorePrompt string      `json:"aiAddMorePrompt,omitempty"`
	ForceRequired   bool        `json:"forceRequired,omitempty"`
}

// Fixed returns a config holding an author-chosen value.
func Fixed(value any) PropConfig {
	return PropConfig{Mode: ModeFixed, Value: value}
}

// FixedItems returns a fixed config for an array prop.
func FixedItems(items ...ArrayItem) PropConfig {
	return PropConfig{Mode: ModeFixed, Items: items}
}

// AI returns a config delegating the value to the agent.
func AI(description string) PropConfig {
	return PropConfig{Mode: ModeAI, AIDescription: description}
}

// Empty returns the unused state.
func Empty() PropConfig {
	return PropConfig{Mode: ModeEmpty}
}

// WithAddMore marks a fixed value as a base the agent may extend.
func (c PropConfig) WithAddMore(prompt string) PropConfig {
	c.AICanAddMore = true
	c.AIAddMorePrompt = prompt
	return c
}

// WithForceRequired makes an otherwise-optional field mandatory for the
// agent.
func (c PropConfig) WithForceRequired() PropConfig {
	c.ForceRequired = true
	return c
}

// IsConfigured reports whether the prop holds a usable fixed value.
// This is the "configured" test the visibility cutoff walks on.
func (c PropConfig) IsConfigured() bool {
	if c.Mode != ModeFixed {
		return false
	}
	if !isEmptyValue(c.Value) {
		return true
	}
	return len(c.BaseValues()) > 0
}

// BaseValues collects the non-AI item values that are set.
func (c PropConfig) BaseValues() []any {
	out := make([]any, 0, len(c.Items))
	for _, item := range c.Items {
		if !item.IsAI && !isEmptyValue(item.Value) {
			out = append(out, item.Value)
		}
	}
	return out
}

// Validate checks mode/field consistency against the prop's type.
func (c PropConfig) Validate(propType action.PropType) error {
	switch c.Mode {
	case ModeAI:
		if !isEmptyValue(c.Value) || len(c.Items) > 0 {
			return fmt.Errorf("ai mode carries no fixed value")
		}
	case ModeFixed:
		if c.AIDescription != "" {
			return fmt.Errorf("aiDescription is only valid in ai mode")
		}
		if len(c.Items) > 0 && !propType.IsArray() {
			return fmt.Errorf("array items on non-array prop")
		}
	case ModeEmpty:
		if !isEmptyValue(c.Value) || c.AIDescription != "" || len(c.Items) > 0 {
			return fmt.Errorf("empty mode carries no configuration")
		}
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	return nil
}

// ConfigMap holds the authoring state of every prop, keyed by prop name.
type ConfigMap map[string]PropConfig

// Document is the persisted form of a ConfigMap. The async flag rides
// inside the same JSON object under the private "_isAsync" key, matching
// the stored propsConfig shape.
type Document struct {
	Props   ConfigMap
	IsAsync bool
}

const asyncKey = "_isAsync"

func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Props)+1)
	for name, cfg := range d.Props {
		out[name] = cfg
	}
	if d.IsAsync {
		out[asyncKey] = true
	}
	return json.Marshal(out)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode props config document: %w", err)
	}
	d.Props = make(ConfigMap, len(raw))
	for name, msg := range raw {
		if name == asyncKey {
			if err := json.Unmarshal(msg, &d.IsAsync); err != nil {
				return fmt.Errorf("failed to decode %s flag: %w", asyncKey, err)
			}
			continue
		}
		var cfg PropConfig
		if err := json.Unmarshal(msg, &cfg); err != nil {
			return fmt.Errorf("failed to decode config for prop %q: %w", name, err)
		}
		d.Props[name] = cfg
	}
	return nil
}

// isEmptyValue treats nil and the empty string as unset. Zero numbers
// and false are deliberate values.
func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}
