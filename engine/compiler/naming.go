package compiler

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/toolforge-ai/toolforge/engine/core"
)

// ExternalNamePrefix marks identifiers registered on the agent platform.
const ExternalNamePrefix = "custom_tool_"

var (
	externalNameSanitizer = regexp.MustCompile(`[^A-Za-z0-9_]`)
	underscoreRuns        = regexp.MustCompile(`_{2,}`)
)

// Scope bounds name uniqueness to one agent of one client.
type Scope struct {
	ClientID string
	AgentID  string
}

// NameIndex answers whether a name is already taken within a scope.
// excludeID skips the record being edited so a tool can keep its own name.
type NameIndex interface {
	NameExists(ctx context.Context, name string, scope Scope, excludeID core.ID) (bool, error)
}

// GenerateName lowercases the label and collapses every run of
// non-alphanumeric characters into a single underscore, trimming the
// ends. slug.Make keeps underscores as-is, so runs that mix underscores
// with other separators need a second collapse pass.
func GenerateName(label string) string {
	s := slug.Make(label)
	s = strings.ReplaceAll(s, "-", "_")
	s = underscoreRuns.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// EnsureUnique finds the first free name derived from label within scope,
// appending _2, _3, ... on collision. The check is a best-effort
// pre-check only: two concurrent submissions can both observe a name as
// free. The storage layer's uniqueness constraint is authoritative.
func EnsureUnique(ctx context.Context, idx NameIndex, label string, scope Scope, excludeID core.ID) (string, error) {
	base := GenerateName(label)
	if base == "" {
		return "", core.NewValidationError("label")
	}
	name := base
	for i := 2; ; i++ {
		exists, err := idx.NameExists(ctx, name, scope, excludeID)
		if err != nil {
			return "", core.NewPersistenceError("name lookup", err)
		}
		if !exists {
			return name, nil
		}
		name = fmt.Sprintf("%s_%d", base, i)
	}
}

// NextSuffix returns the follow-up candidate after a storage-level
// uniqueness violation slipped past the pre-check.
func NextSuffix(base string, attempt int) string {
	return fmt.Sprintf("%s_%d", base, attempt)
}

// SuffixAttempt recovers the collision counter a name carries, so a
// storage-level retry continues past the suffixes the pre-check already
// saw taken instead of restarting at base_2. The bare base counts as
// attempt 1.
func SuffixAttempt(base, name string) int {
	tail, ok := strings.CutPrefix(name, base+"_")
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(tail)
	if err != nil || n < 2 {
		return 1
	}
	return n
}

// ExternalName derives the identifier registered on the agent platform.
// Re-sanitized to [A-Za-z0-9_] so the platform's constraints hold even
// if the internal name alphabet ever changes.
func ExternalName(name string) string {
	return ExternalNamePrefix + externalNameSanitizer.ReplaceAllString(name, "_")
}
