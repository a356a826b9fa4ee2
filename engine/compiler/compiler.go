package compiler

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonschema"
	"github.com/toolforge-ai/toolforge/engine/action"
	"github.com/toolforge-ai/toolforge/engine/core"
)

// Property is one JSON Schema fragment in the compiled parameters object.
type Property struct {
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

// Parameters is the JSON-Schema-shaped contract the agent must satisfy.
type Parameters struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// FunctionSchema is the function-calling schema visible to the agent.
type FunctionSchema struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Parameters  Parameters `json:"parameters"`
}

// CompileParameters compiles the parameters object into a validating
// schema. Used as a self-check after compilation and to validate agent
// arguments at call time.
func (s *FunctionSchema) CompileParameters() (*jsonschema.Schema, error) {
	raw, err := json.Marshal(s.Parameters)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parameters: %w", err)
	}
	compiled, err := jsonschema.NewCompiler().Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to compile parameters schema: %w", err)
	}
	return compiled, nil
}

// ValidateArguments checks an agent-supplied argument object against the
// compiled parameters.
func (s *FunctionSchema) ValidateArguments(args map[string]any) error {
	compiled, err := s.CompileParameters()
	if err != nil {
		return err
	}
	result := compiled.Validate(args)
	if !result.Valid {
		return fmt.Errorf("arguments do not match schema: %v", result.Errors)
	}
	return nil
}

// StaticConfig holds parameters resolved at authoring time, hidden from
// the agent at call time.
type StaticConfig map[string]any

// Metadata carries the authoring inputs that are not per-prop.
type Metadata struct {
	Label       string
	Description string
	AccountID   string
}

// ValidateRequired checks that every visible required prop reached a
// usable state. Offending props are reported by display name.
func ValidateRequired(props []action.ConfigurableProp, cfg ConfigMap) error {
	var missing []string
	for i := range props {
		p := &props[i]
		if !p.Visible() || !p.Required() {
			continue
		}
		if !propSatisfied(p, cfg) {
			missing = append(missing, p.DisplayName())
		}
	}
	if len(missing) > 0 {
		return core.NewValidationError(missing...)
	}
	return nil
}

func propSatisfied(p *action.ConfigurableProp, cfg ConfigMap) bool {
	c, ok := cfg[p.Name]
	if !ok || c.Mode == ModeEmpty {
		return false
	}
	if c.Mode == ModeAI {
		return true
	}
	// Fixed: a value, base items, or an agent extension slot will do.
	return c.IsConfigured() || c.AICanAddMore
}

// Compile turns the action's props plus the completed authoring choices
// into the agent-visible function schema and the hidden static config.
// App-typed props are bound to the account identifier up front; visible
// props are walked in declared order.
func Compile(props []action.ConfigurableProp, cfg ConfigMap, meta Metadata) (*FunctionSchema, StaticConfig, error) {
	static := StaticConfig{}
	params := Parameters{
		Type:       "object",
		Properties: map[string]Property{},
		Required:   make([]string, 0),
	}
	for i := range props {
		if props[i].Type == action.TypeApp {
			static[props[i].Name] = meta.AccountID
		}
	}
	for i := range props {
		p := &props[i]
		if !p.Visible() {
			continue
		}
		c, ok := cfg[p.Name]
		if !ok || c.Mode == ModeEmpty {
			continue
		}
		if err := c.Validate(p.Type); err != nil {
			return nil, nil, fmt.Errorf("invalid config for prop %q: %w", p.Name, err)
		}
		if p.Type.IsArray() {
			compileArrayProp(p, c, &params, static)
			continue
		}
		compileScalarProp(p, c, &params, static)
	}
	schema := &FunctionSchema{
		Name:        GenerateName(meta.Label),
		Description: meta.Description,
		Parameters:  params,
	}
	if _, err := schema.CompileParameters(); err != nil {
		return nil, nil, err
	}
	return schema, static, nil
}

func compileScalarProp(p *action.ConfigurableProp, c PropConfig, params *Parameters, static StaticConfig) {
	switch c.Mode {
	case ModeAI:
		params.Properties[p.Name] = Property{
			Type:        p.Type.JSONType(),
			Description: fallbackDescription(c.AIDescription, p),
		}
		if p.Required() || c.ForceRequired {
			params.Required = append(params.Required, p.Name)
		}
	case ModeFixed:
		if !c.AICanAddMore {
			static[p.Name] = c.Value
			return
		}
		desc := fallbackDescription(c.AIAddMorePrompt, p)
		hasBase := !isEmptyValue(c.Value)
		if hasBase {
			desc = fmt.Sprintf("%s Base value: %v", desc, c.Value)
		}
		params.Properties[p.Name] = Property{
			Type:        p.Type.JSONType(),
			Description: strings.TrimSpace(desc),
		}
		if c.ForceRequired || (p.Required() && !hasBase) {
			params.Required = append(params.Required, p.Name)
		}
	}
}

func compileArrayProp(p *action.ConfigurableProp, c PropConfig, params *Parameters, static StaticConfig) {
	if c.Mode == ModeAI {
		params.Properties[p.Name] = Property{
			Type:        "array",
			Description: fallbackDescription(c.AIDescription, p),
			Items:       &Property{Type: p.Type.ItemJSONType()},
		}
		if p.Required() || c.ForceRequired {
			params.Required = append(params.Required, p.Name)
		}
		return
	}
	base := c.BaseValues()
	if !c.AICanAddMore {
		static[p.Name] = base
		return
	}
	desc := fallbackDescription(c.AIAddMorePrompt, p)
	if len(base) > 0 {
		desc = fmt.Sprintf("%s Base values: [%s]", desc, joinValues(base))
	}
	params.Properties[p.Name] = Property{
		Type:        "array",
		Description: strings.TrimSpace(desc),
		Items:       &Property{Type: p.Type.ItemJSONType()},
	}
	if c.ForceRequired || (p.Required() && len(base) == 0) {
		params.Required = append(params.Required, p.Name)
	}
}

func fallbackDescription(preferred string, p *action.ConfigurableProp) string {
	if preferred != "" {
		return preferred
	}
	if p.Description != "" {
		return p.Description
	}
	if p.Label != "" {
		return p.Label
	}
	return p.Name
}

func joinValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
