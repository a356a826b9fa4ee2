package visibility

import (
	"github.com/toolforge-ai/toolforge/engine/action"
	"github.com/toolforge-ai/toolforge/engine/compiler"
)

// FieldsToShow computes the ordered subset of props that is currently
// safe to present. A required remote-backed prop whose options depend on
// earlier answers must not be rendered before those answers exist, so
// the walk stops at the first unconfigured required remote-backed prop
// (the cutoff) and shows everything up to and including it. Only
// required props are withheld past the cutoff; an optional prop the
// user explicitly added stays visible wherever it sits.
func FieldsToShow(props []action.ConfigurableProp, cfg compiler.ConfigMap) []action.ConfigurableProp {
	visible := visibleProps(props)
	cutoff := -1
	for i := range visible {
		p := &visible[i]
		if p.Required() && p.RemoteOptions && !cfg[p.Name].IsConfigured() {
			cutoff = i
			break
		}
	}
	if cutoff >= 0 {
		out := make([]action.ConfigurableProp, 0, len(visible))
		out = append(out, visible[:cutoff+1]...)
		for i := cutoff + 1; i < len(visible); i++ {
			p := visible[i]
			if p.Required() {
				continue
			}
			if c, ok := cfg[p.Name]; ok && c.Mode != compiler.ModeEmpty {
				out = append(out, p)
			}
		}
		return out
	}
	// Every remote-backed requirement is satisfied: show all required
	// props plus any optional prop the user has put into a non-empty
	// state, wherever it sits in the list.
	out := make([]action.ConfigurableProp, 0, len(visible))
	for i := range visible {
		p := visible[i]
		if p.Required() {
			out = append(out, p)
			continue
		}
		if c, ok := cfg[p.Name]; ok && c.Mode != compiler.ModeEmpty {
			out = append(out, p)
		}
	}
	return out
}

// SeedConfig builds the initial config map when an action is first
// selected: required props start fixed with their defaults; optional
// props positioned before the first required remote-backed prop start
// fixed (visible), the rest start empty and can be added later.
func SeedConfig(props []action.ConfigurableProp) compiler.ConfigMap {
	visible := visibleProps(props)
	firstRemote := -1
	for i := range visible {
		if visible[i].Required() && visible[i].RemoteOptions {
			firstRemote = i
			break
		}
	}
	cfg := make(compiler.ConfigMap, len(visible))
	for i := range visible {
		p := &visible[i]
		switch {
		case p.Required():
			cfg[p.Name] = compiler.Fixed(p.Default)
		case firstRemote == -1 || i < firstRemote:
			cfg[p.Name] = compiler.Fixed(p.Default)
		default:
			cfg[p.Name] = compiler.Empty()
		}
	}
	return cfg
}

func visibleProps(props []action.ConfigurableProp) []action.ConfigurableProp {
	out := make([]action.ConfigurableProp, 0, len(props))
	for i := range props {
		if props[i].Visible() {
			out = append(out, props[i])
		}
	}
	return out
}
