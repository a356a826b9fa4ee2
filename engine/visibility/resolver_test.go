package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolforge-ai/toolforge/engine/action"
	"github.com/toolforge-ai/toolforge/engine/compiler"
)

// sheetProps mirrors a spreadsheet action: drive feeds the spreadsheet
// option list, which feeds the worksheet option list.
func sheetProps() []action.ConfigurableProp {
	return []action.ConfigurableProp{
		{Name: "googleSheets", Type: action.TypeApp},
		{Name: "drive", Type: action.TypeString, RemoteOptions: true},
		{Name: "sheetId", Type: action.TypeString, RemoteOptions: true},
		{Name: "worksheetId", Type: action.TypeString, RemoteOptions: true},
		{Name: "cells", Type: action.TypeStringArray},
		{Name: "note", Type: action.TypeString, Optional: true},
	}
}

func names(props []action.ConfigurableProp) []string {
	out := make([]string, len(props))
	for i := range props {
		out[i] = props[i].Name
	}
	return out
}

func TestFieldsToShow(t *testing.T) {
	t.Run("Should stop at the first unconfigured remote-backed prop", func(t *testing.T) {
		fields := FieldsToShow(sheetProps(), compiler.ConfigMap{})
		assert.Equal(t, []string{"drive"}, names(fields))
	})
	t.Run("Should advance the cutoff as dependencies resolve", func(t *testing.T) {
		cfg := compiler.ConfigMap{"drive": compiler.Fixed("drive_1")}
		fields := FieldsToShow(sheetProps(), cfg)
		assert.Equal(t, []string{"drive", "sheetId"}, names(fields))
	})
	t.Run("Should keep a user-added optional visible past the cutoff", func(t *testing.T) {
		cfg := compiler.ConfigMap{
			"drive": compiler.Fixed("drive_1"),
			"note":  compiler.AI("summarize the call"),
		}
		fields := FieldsToShow(sheetProps(), cfg)
		assert.Equal(t, []string{"drive", "sheetId", "note"}, names(fields))
	})
	t.Run("Should show all required props once the remote chain is configured", func(t *testing.T) {
		cfg := compiler.ConfigMap{
			"drive":       compiler.Fixed("drive_1"),
			"sheetId":     compiler.Fixed("1abc"),
			"worksheetId": compiler.Fixed("ws_1"),
		}
		fields := FieldsToShow(sheetProps(), cfg)
		assert.Equal(t, []string{"drive", "sheetId", "worksheetId", "cells"}, names(fields))
	})
	t.Run("Should include optional props the user put into a non-empty state", func(t *testing.T) {
		cfg := compiler.ConfigMap{
			"drive":       compiler.Fixed("drive_1"),
			"sheetId":     compiler.Fixed("1abc"),
			"worksheetId": compiler.Fixed("ws_1"),
			"note":        compiler.AI("summarize the call"),
		}
		fields := FieldsToShow(sheetProps(), cfg)
		assert.Contains(t, names(fields), "note")
	})
	t.Run("Should keep untouched optional props hidden", func(t *testing.T) {
		cfg := compiler.ConfigMap{
			"drive":       compiler.Fixed("drive_1"),
			"sheetId":     compiler.Fixed("1abc"),
			"worksheetId": compiler.Fixed("ws_1"),
			"note":        compiler.Empty(),
		}
		fields := FieldsToShow(sheetProps(), cfg)
		assert.NotContains(t, names(fields), "note")
	})
	t.Run("Should never surface hidden, disabled or app props", func(t *testing.T) {
		props := append(sheetProps(), action.ConfigurableProp{
			Name: "internal", Type: action.TypeString, Hidden: true,
		})
		fields := FieldsToShow(props, compiler.ConfigMap{})
		assert.NotContains(t, names(fields), "googleSheets")
		assert.NotContains(t, names(fields), "internal")
	})
	t.Run("Should never return a required remote prop after an unconfigured one", func(t *testing.T) {
		// the ordering invariant, probed over several config states
		states := []compiler.ConfigMap{
			{},
			{"drive": compiler.Fixed("d")},
			{"sheetId": compiler.Fixed("s")},
			{"drive": compiler.Fixed("d"), "worksheetId": compiler.Fixed("w")},
		}
		for _, cfg := range states {
			fields := FieldsToShow(sheetProps(), cfg)
			sawUnconfigured := false
			for i := range fields {
				p := &fields[i]
				if !p.Required() || !p.RemoteOptions {
					continue
				}
				require.False(t, sawUnconfigured, "remote prop %q shown after unconfigured one", p.Name)
				if !cfg[p.Name].IsConfigured() {
					sawUnconfigured = true
				}
			}
		}
	})
	t.Run("Should show everything when no prop is remote-backed", func(t *testing.T) {
		props := []action.ConfigurableProp{
			{Name: "a", Type: action.TypeString},
			{Name: "b", Type: action.TypeInteger},
		}
		fields := FieldsToShow(props, compiler.ConfigMap{})
		assert.Equal(t, []string{"a", "b"}, names(fields))
	})
}

func TestSeedConfig(t *testing.T) {
	t.Run("Should seed required props fixed with their defaults", func(t *testing.T) {
		props := []action.ConfigurableProp{
			{Name: "drive", Type: action.TypeString, RemoteOptions: true, Default: "My Drive"},
		}
		cfg := SeedConfig(props)
		assert.Equal(t, compiler.ModeFixed, cfg["drive"].Mode)
		assert.Equal(t, "My Drive", cfg["drive"].Value)
	})
	t.Run("Should seed optional props before the first remote prop as fixed", func(t *testing.T) {
		props := []action.ConfigurableProp{
			{Name: "title", Type: action.TypeString, Optional: true},
			{Name: "drive", Type: action.TypeString, RemoteOptions: true},
			{Name: "note", Type: action.TypeString, Optional: true},
		}
		cfg := SeedConfig(props)
		assert.Equal(t, compiler.ModeFixed, cfg["title"].Mode)
		assert.Equal(t, compiler.ModeEmpty, cfg["note"].Mode)
	})
	t.Run("Should seed all optional props fixed when nothing is remote-backed", func(t *testing.T) {
		props := []action.ConfigurableProp{
			{Name: "a", Type: action.TypeString, Optional: true},
			{Name: "b", Type: action.TypeString},
		}
		cfg := SeedConfig(props)
		assert.Equal(t, compiler.ModeFixed, cfg["a"].Mode)
		assert.Equal(t, compiler.ModeFixed, cfg["b"].Mode)
	})
	t.Run("Should not seed app props", func(t *testing.T) {
		cfg := SeedConfig(sheetProps())
		assert.NotContains(t, cfg, "googleSheets")
	})
}
