package sequencer

import (
	"context"
	"errors"
	"sync"

	"github.com/toolforge-ai/toolforge/engine/action"
	"github.com/toolforge-ai/toolforge/engine/catalog"
	"github.com/toolforge-ai/toolforge/engine/compiler"
	"github.com/toolforge-ai/toolforge/engine/visibility"
	"github.com/toolforge-ai/toolforge/pkg/logger"
)

// ErrResolutionInFlight is returned when a second resolution is started
// while one is still running. Option lists are resolved strictly one at
// a time so dependent fields never read partially-resolved sibling state.
var ErrResolutionInFlight = errors.New("option resolution already in flight")

// OptionsResolver is the catalog seam the sequencer drives.
type OptionsResolver interface {
	ResolveOptions(ctx context.Context, req *catalog.ResolveOptionsRequest) ([]action.Option, error)
}

// Resolution reports one completed fetch.
type Resolution struct {
	PropName     string
	Options      []action.Option
	AutoAssigned bool
}

// Sequencer fetches remote option lists one dependency step at a time
// for a single editing session of one action.
type Sequencer struct {
	resolver  OptionsResolver
	def       *action.Definition
	accountID string
	clientID  string

	mu       sync.Mutex
	inFlight string
	resolved map[string][]action.Option
	queries  map[string]string
}

func New(resolver OptionsResolver, def *action.Definition, accountID string, clientID string) *Sequencer {
	return &Sequencer{
		resolver:  resolver,
		def:       def,
		accountID: accountID,
		clientID:  clientID,
		resolved:  make(map[string][]action.Option),
		queries:   make(map[string]string),
	}
}

// Options returns the cached option list for a prop, if resolved.
func (s *Sequencer) Options(prop string) ([]action.Option, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	options, ok := s.resolved[prop]
	return options, ok
}

// SetSearchQuery records a search query for one prop. A change drops
// that prop's cached options so the next step re-fetches it; siblings
// keep their caches.
func (s *Sequencer) SetSearchQuery(prop string, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queries[prop] == query {
		return
	}
	s.queries[prop] = query
	delete(s.resolved, prop)
}

// NextPending returns the first currently visible remote-backed prop
// that has no resolved options yet.
func (s *Sequencer) NextPending(cfg compiler.ConfigMap) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextPendingLocked(cfg)
}

func (s *Sequencer) nextPendingLocked(cfg compiler.ConfigMap) (string, bool) {
	fields := visibility.FieldsToShow(s.def.Props, cfg)
	for i := range fields {
		if !fields[i].RemoteOptions {
			continue
		}
		if _, ok := s.resolved[fields[i].Name]; !ok {
			return fields[i].Name, true
		}
	}
	return "", false
}

// ResolveNext fetches options for the next pending prop. When the
// catalog returns exactly one option it is assigned into cfg as the
// prop's fixed value, which may unlock the next field in the chain.
func (s *Sequencer) ResolveNext(ctx context.Context, cfg compiler.ConfigMap) (*Resolution, error) {
	s.mu.Lock()
	if s.inFlight != "" {
		s.mu.Unlock()
		return nil, ErrResolutionInFlight
	}
	prop, ok := s.nextPendingLocked(cfg)
	if !ok {
		s.mu.Unlock()
		return nil, nil
	}
	query := s.queries[prop]
	s.inFlight = prop
	s.mu.Unlock()

	options, err := s.resolver.ResolveOptions(ctx, &catalog.ResolveOptionsRequest{
		ActionKey:      s.def.Key,
		PropName:       prop,
		ResolvedValues: s.resolvedValues(cfg, prop),
		SearchQuery:    query,
		ClientID:       s.clientID,
	})

	s.mu.Lock()
	s.inFlight = ""
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.resolved[prop] = options
	s.mu.Unlock()

	resolution := &Resolution{PropName: prop, Options: options}
	if len(options) == 1 {
		cfg[prop] = compiler.Fixed(options[0].Value)
		resolution.AutoAssigned = true
		logger.FromContext(ctx).Debug("auto-assigned singleton option",
			"action", s.def.Key, "prop", prop, "value", options[0].Value)
	}
	return resolution, nil
}

// ResolveProp fetches options for one named prop regardless of its
// position in the chain, using the same in-flight guard and dependency
// context as ResolveNext. Used when the caller re-fetches a specific
// field, typically after a search query change.
func (s *Sequencer) ResolveProp(ctx context.Context, prop string, cfg compiler.ConfigMap) (*Resolution, error) {
	p, err := s.def.FindProp(prop)
	if err != nil {
		return nil, err
	}
	if !p.RemoteOptions {
		return nil, errors.New("prop has no remote options: " + prop)
	}
	s.mu.Lock()
	if s.inFlight != "" {
		s.mu.Unlock()
		return nil, ErrResolutionInFlight
	}
	query := s.queries[prop]
	s.inFlight = prop
	s.mu.Unlock()

	options, err := s.resolver.ResolveOptions(ctx, &catalog.ResolveOptionsRequest{
		ActionKey:      s.def.Key,
		PropName:       prop,
		ResolvedValues: s.resolvedValues(cfg, prop),
		SearchQuery:    query,
		ClientID:       s.clientID,
	})

	s.mu.Lock()
	s.inFlight = ""
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.resolved[prop] = options
	s.mu.Unlock()

	resolution := &Resolution{PropName: prop, Options: options}
	if len(options) == 1 {
		cfg[prop] = compiler.Fixed(options[0].Value)
		resolution.AutoAssigned = true
	}
	return resolution, nil
}

// ResolveAll steps the sequencer until no visible prop lacks options.
// Auto-assigned singletons extend visibility mid-loop, so one call can
// walk an entire dependency chain of effectively-constant fields.
func (s *Sequencer) ResolveAll(ctx context.Context, cfg compiler.ConfigMap) ([]Resolution, error) {
	var out []Resolution
	for {
		resolution, err := s.ResolveNext(ctx, cfg)
		if err != nil {
			return out, err
		}
		if resolution == nil {
			return out, nil
		}
		out = append(out, *resolution)
	}
}

// resolvedValues builds the dependency context for one fetch: the bound
// account identifier for every app prop plus each other prop currently
// holding a usable fixed value.
func (s *Sequencer) resolvedValues(cfg compiler.ConfigMap, excluding string) map[string]any {
	values := make(map[string]any)
	for i := range s.def.Props {
		p := &s.def.Props[i]
		if p.Type == action.TypeApp {
			values[p.Name] = s.accountID
			continue
		}
		if p.Name == excluding {
			continue
		}
		if c, ok := cfg[p.Name]; ok && c.Mode == compiler.ModeFixed && c.IsConfigured() {
			values[p.Name] = c.Value
		}
	}
	return values
}
