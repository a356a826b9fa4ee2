package sequencer

import (
	"context"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolforge-ai/toolforge/engine/action"
	"github.com/toolforge-ai/toolforge/engine/catalog"
	"github.com/toolforge-ai/toolforge/engine/compiler"
)

type fakeResolver struct {
	mu       sync.Mutex
	calls    []*catalog.ResolveOptionsRequest
	options  map[string][]action.Option
	blocking chan struct{}
}

func (f *fakeResolver) ResolveOptions(_ context.Context, req *catalog.ResolveOptionsRequest) ([]action.Option, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.blocking != nil {
		<-f.blocking
	}
	return f.options[req.PropName], nil
}

func sheetAction() *action.Definition {
	return &action.Definition{
		Key: "google_sheets-add-single-row",
		Props: []action.ConfigurableProp{
			{Name: "googleSheets", Type: action.TypeApp},
			{Name: "drive", Type: action.TypeString, RemoteOptions: true},
			{Name: "sheetId", Type: action.TypeString, RemoteOptions: true},
			{Name: "worksheetId", Type: action.TypeString, RemoteOptions: true},
		},
	}
}

func TestSequencer_ResolveNext(t *testing.T) {
	t.Run("Should resolve the first pending visible prop", func(t *testing.T) {
		resolver := &fakeResolver{options: map[string][]action.Option{
			"drive": {{Label: "My Drive", Value: "d1"}, {Label: "Shared", Value: "d2"}},
		}}
		seq := New(resolver, sheetAction(), "apn_1", "client_1")
		cfg := compiler.ConfigMap{}
		res, err := seq.ResolveNext(context.Background(), cfg)
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, "drive", res.PropName)
		assert.False(t, res.AutoAssigned)
		options, ok := seq.Options("drive")
		require.True(t, ok)
		assert.Len(t, options, 2)
	})
	t.Run("Should include the account binding and fixed siblings in the dependency context", func(t *testing.T) {
		resolver := &fakeResolver{options: map[string][]action.Option{
			"sheetId": {{Label: "A", Value: "1"}, {Label: "B", Value: "2"}},
		}}
		seq := New(resolver, sheetAction(), "apn_1", "client_1")
		cfg := compiler.ConfigMap{"drive": compiler.Fixed("d1")}
		res, err := seq.ResolveNext(context.Background(), cfg)
		require.NoError(t, err)
		require.NotNil(t, res)
		// drive options cache is empty, so drive itself is the first pending prop
		assert.Equal(t, "drive", res.PropName)
		req := resolver.calls[0]
		assert.Equal(t, "apn_1", req.ResolvedValues["googleSheets"])
		assert.NotContains(t, req.ResolvedValues, "drive")
	})
	t.Run("Should auto-assign a singleton result as the fixed value", func(t *testing.T) {
		resolver := &fakeResolver{options: map[string][]action.Option{
			"drive": {{Label: "My Drive", Value: "d1"}},
		}}
		seq := New(resolver, sheetAction(), "apn_1", "client_1")
		cfg := compiler.ConfigMap{}
		res, err := seq.ResolveNext(context.Background(), cfg)
		require.NoError(t, err)
		require.True(t, res.AutoAssigned)
		assert.Equal(t, compiler.Fixed("d1"), cfg["drive"])
	})
	t.Run("Should return nil when nothing is pending", func(t *testing.T) {
		resolver := &fakeResolver{options: map[string][]action.Option{}}
		def := &action.Definition{Key: "k", Props: []action.ConfigurableProp{
			{Name: "plain", Type: action.TypeString},
		}}
		seq := New(resolver, def, "apn_1", "client_1")
		res, err := seq.ResolveNext(context.Background(), compiler.ConfigMap{})
		require.NoError(t, err)
		assert.Nil(t, res)
		assert.Empty(t, resolver.calls)
	})
	t.Run("Should reject a second resolution while one is in flight", func(t *testing.T) {
		resolver := &fakeResolver{
			options:  map[string][]action.Option{"drive": {{Label: "A", Value: "a"}, {Label: "B", Value: "b"}}},
			blocking: make(chan struct{}),
		}
		seq := New(resolver, sheetAction(), "apn_1", "client_1")
		cfg := compiler.ConfigMap{}
		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err := seq.ResolveNext(context.Background(), cfg)
			assert.NoError(t, err)
		}()
		// wait for the first call to be registered
		for {
			resolver.mu.Lock()
			started := len(resolver.calls) > 0
			resolver.mu.Unlock()
			if started {
				break
			}
			runtime.Gosched()
		}
		_, err := seq.ResolveNext(context.Background(), cfg)
		assert.ErrorIs(t, err, ErrResolutionInFlight)
		close(resolver.blocking)
		<-done
	})
}

func TestSequencer_ResolveAll(t *testing.T) {
	t.Run("Should walk a dependency chain of singletons in order", func(t *testing.T) {
		resolver := &fakeResolver{options: map[string][]action.Option{
			"drive":       {{Label: "My Drive", Value: "d1"}},
			"sheetId":     {{Label: "Budget", Value: "s1"}},
			"worksheetId": {{Label: "Sheet1", Value: "w1"}, {Label: "Sheet2", Value: "w2"}},
		}}
		seq := New(resolver, sheetAction(), "apn_1", "client_1")
		cfg := compiler.ConfigMap{}
		resolutions, err := seq.ResolveAll(context.Background(), cfg)
		require.NoError(t, err)
		require.Len(t, resolutions, 3)
		assert.Equal(t, "drive", resolutions[0].PropName)
		assert.Equal(t, "sheetId", resolutions[1].PropName)
		assert.Equal(t, "worksheetId", resolutions[2].PropName)
		// the chain auto-assigned its singletons and fed them forward
		assert.Equal(t, "d1", resolver.calls[1].ResolvedValues["drive"])
		assert.Equal(t, "s1", resolver.calls[2].ResolvedValues["sheetId"])
		// the final field has two options, so the user still chooses
		assert.False(t, resolutions[2].AutoAssigned)
		assert.NotContains(t, cfg, "worksheetId")
	})
}

func TestSequencer_SetSearchQuery(t *testing.T) {
	t.Run("Should invalidate only the queried prop's cache", func(t *testing.T) {
		resolver := &fakeResolver{options: map[string][]action.Option{
			"drive":   {{Label: "A", Value: "a"}, {Label: "B", Value: "b"}},
			"sheetId": {{Label: "S", Value: "s"}, {Label: "T", Value: "t"}},
		}}
		seq := New(resolver, sheetAction(), "apn_1", "client_1")
		cfg := compiler.ConfigMap{"drive": compiler.Fixed("a")}
		_, err := seq.ResolveNext(context.Background(), cfg) // drive
		require.NoError(t, err)
		_, err = seq.ResolveNext(context.Background(), cfg) // sheetId
		require.NoError(t, err)

		seq.SetSearchQuery("sheetId", "budget")
		_, stillCached := seq.Options("drive")
		assert.True(t, stillCached)
		_, cached := seq.Options("sheetId")
		assert.False(t, cached)

		res, err := seq.ResolveNext(context.Background(), cfg)
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, "sheetId", res.PropName)
		last := resolver.calls[len(resolver.calls)-1]
		assert.Equal(t, "budget", last.SearchQuery)
	})
	t.Run("Should keep the cache when the query is unchanged", func(t *testing.T) {
		resolver := &fakeResolver{options: map[string][]action.Option{
			"drive": {{Label: "A", Value: "a"}, {Label: "B", Value: "b"}},
		}}
		seq := New(resolver, sheetAction(), "apn_1", "client_1")
		cfg := compiler.ConfigMap{}
		_, err := seq.ResolveNext(context.Background(), cfg)
		require.NoError(t, err)
		seq.SetSearchQuery("drive", "")
		_, cached := seq.Options("drive")
		assert.True(t, cached)
	})
}

func TestSequencer_ResolveProp(t *testing.T) {
	t.Run("Should re-fetch a specific prop with its search query", func(t *testing.T) {
		resolver := &fakeResolver{options: map[string][]action.Option{
			"sheetId": {{Label: "Budget", Value: "s1"}, {Label: "Roster", Value: "s2"}},
		}}
		seq := New(resolver, sheetAction(), "apn_1", "client_1")
		cfg := compiler.ConfigMap{"drive": compiler.Fixed("d1")}
		seq.SetSearchQuery("sheetId", "bud")
		res, err := seq.ResolveProp(context.Background(), "sheetId", cfg)
		require.NoError(t, err)
		assert.Equal(t, "sheetId", res.PropName)
		req := resolver.calls[0]
		assert.Equal(t, "bud", req.SearchQuery)
		assert.Equal(t, "d1", req.ResolvedValues["drive"])
		options, ok := seq.Options("sheetId")
		require.True(t, ok)
		assert.Len(t, options, 2)
	})
	t.Run("Should reject a prop without remote options", func(t *testing.T) {
		seq := New(&fakeResolver{}, sheetAction(), "apn_1", "client_1")
		_, err := seq.ResolveProp(context.Background(), "googleSheets", compiler.ConfigMap{})
		assert.Error(t, err)
	})
	t.Run("Should reject an unknown prop", func(t *testing.T) {
		seq := New(&fakeResolver{}, sheetAction(), "apn_1", "client_1")
		_, err := seq.ResolveProp(context.Background(), "nope", compiler.ConfigMap{})
		assert.Error(t, err)
	})
}
