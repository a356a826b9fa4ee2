package compiler

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolforge-ai/toolforge/engine/core"
)

type fakeNameIndex struct {
	taken map[string]bool
}

func (f *fakeNameIndex) NameExists(_ context.Context, name string, _ Scope, _ core.ID) (bool, error) {
	return f.taken[name], nil
}

func TestGenerateName(t *testing.T) {
	t.Run("Should slugify labels into lowercase underscore names", func(t *testing.T) {
		assert.Equal(t, "create_google_sheet_row", GenerateName("Create Google Sheet Row!!"))
	})
	t.Run("Should collapse runs of separators into one underscore", func(t *testing.T) {
		assert.Equal(t, "send_email", GenerateName("  Send -- @@ Email  "))
	})
	t.Run("Should collapse runs that contain literal underscores", func(t *testing.T) {
		assert.Equal(t, "my_tool_name", GenerateName("My Tool _ Name"))
		assert.Equal(t, "my_tool", GenerateName("my__tool"))
		assert.Equal(t, "a_b", GenerateName("a _-_ b"))
	})
	t.Run("Should trim leading and trailing underscores", func(t *testing.T) {
		name := GenerateName("!!Urgent Alert!!")
		assert.Equal(t, "urgent_alert", name)
	})
	t.Run("Should only emit lowercase alphanumerics and underscores", func(t *testing.T) {
		pattern := regexp.MustCompile(`^[a-z0-9_]+$`)
		for _, label := range []string{"Add Row", "Café Menu", "v2.0 Launch", "a  b"} {
			assert.Regexp(t, pattern, GenerateName(label))
		}
	})
}

func TestEnsureUnique(t *testing.T) {
	scope := Scope{ClientID: "client_1", AgentID: "agent_1"}
	t.Run("Should return the base name when free", func(t *testing.T) {
		idx := &fakeNameIndex{taken: map[string]bool{}}
		name, err := EnsureUnique(context.Background(), idx, "Create Row", scope, "")
		require.NoError(t, err)
		assert.Equal(t, "create_row", name)
	})
	t.Run("Should append _2 on the first collision", func(t *testing.T) {
		idx := &fakeNameIndex{taken: map[string]bool{"create_row": true}}
		name, err := EnsureUnique(context.Background(), idx, "Create Row", scope, "")
		require.NoError(t, err)
		assert.Equal(t, "create_row_2", name)
	})
	t.Run("Should keep counting until a free suffix is found", func(t *testing.T) {
		idx := &fakeNameIndex{taken: map[string]bool{
			"create_row":   true,
			"create_row_2": true,
			"create_row_3": true,
		}}
		name, err := EnsureUnique(context.Background(), idx, "Create Row", scope, "")
		require.NoError(t, err)
		assert.Equal(t, "create_row_4", name)
	})
	t.Run("Should reject labels that slugify to nothing", func(t *testing.T) {
		idx := &fakeNameIndex{taken: map[string]bool{}}
		_, err := EnsureUnique(context.Background(), idx, "!!!", scope, "")
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
	})
}

func TestSuffixAttempt(t *testing.T) {
	t.Run("Should count the bare base as attempt one", func(t *testing.T) {
		assert.Equal(t, 1, SuffixAttempt("create_row", "create_row"))
	})
	t.Run("Should recover the counter from a suffixed name", func(t *testing.T) {
		assert.Equal(t, 4, SuffixAttempt("create_row", "create_row_4"))
	})
	t.Run("Should ignore tails that are not collision counters", func(t *testing.T) {
		assert.Equal(t, 1, SuffixAttempt("create_row", "create_row_v2"))
		assert.Equal(t, 1, SuffixAttempt("create_row", "create_row_0"))
		assert.Equal(t, 1, SuffixAttempt("create", "create_row"))
	})
}

func TestExternalName(t *testing.T) {
	t.Run("Should prefix and keep the safe alphabet intact", func(t *testing.T) {
		assert.Equal(t, "custom_tool_create_row", ExternalName("create_row"))
	})
	t.Run("Should sanitize anything outside the platform alphabet", func(t *testing.T) {
		assert.Equal(t, "custom_tool_a_b_c", ExternalName("a-b.c"))
	})
}
