package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseProviderKind tests provider name parsing
func TestParseProviderKind(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ProviderKind
		wantErr  bool
	}{
		{name: "gdrive", input: "gdrive", expected: ProviderGoogleDrive},
		{name: "notion", input: "notion", expected: ProviderNotion},
		{name: "slack", input: "slack", expected: ProviderSlack},
		{name: "confluence", input: "confluence", expected: ProviderConfluence},
		{name: "upper case", input: "GDrive", expected: ProviderGoogleDrive},
		{name: "surrounding whitespace", input: "  notion ", expected: ProviderNotion},
		{name: "unknown", input: "sharepoint", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := ParseProviderKind(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownProvider))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}
}

// TestProviderKind_ReadScope tests the provider-to-scope lookup table
func TestProviderKind_ReadScope(t *testing.T) {
	assert.Equal(t, ScopeDriveRead, ProviderGoogleDrive.ReadScope())
	assert.Equal(t, ScopeNotionRead, ProviderNotion.ReadScope())
	assert.Equal(t, ScopeSlackRead, ProviderSlack.ReadScope())
	assert.Equal(t, ScopeConfluenceRead, ProviderConfluence.ReadScope())
}

// TestSplitCompositeID tests "source:id" parsing
func TestSplitCompositeID(t *testing.T) {
	t.Run("valid composite id", func(t *testing.T) {
		kind, id, err := SplitCompositeID("gdrive:1A2b3C")
		require.NoError(t, err)
		assert.Equal(t, ProviderGoogleDrive, kind)
		assert.Equal(t, "1A2b3C", id)
	})

	t.Run("id containing colons", func(t *testing.T) {
		kind, id, err := SplitCompositeID("slack:C123:1699999999.000100")
		require.NoError(t, err)
		assert.Equal(t, ProviderSlack, kind)
		assert.Equal(t, "C123:1699999999.000100", id)
	})

	t.Run("missing separator", func(t *testing.T) {
		_, _, err := SplitCompositeID("justanid")
		assert.True(t, errors.Is(err, ErrInvalidDocumentID))
	})

	t.Run("empty id part", func(t *testing.T) {
		_, _, err := SplitCompositeID("notion:")
		assert.True(t, errors.Is(err, ErrInvalidDocumentID))
	})

	t.Run("unknown provider prefix", func(t *testing.T) {
		_, _, err := SplitCompositeID("jira:ABC-1")
		assert.True(t, errors.Is(err, ErrUnknownProvider))
	})
}

// TestProviderKind_CompositeID tests round-tripping composite ids
func TestProviderKind_CompositeID(t *testing.T) {
	composite := ProviderNotion.CompositeID("page-42")
	assert.Equal(t, "notion:page-42", composite)

	kind, id, err := SplitCompositeID(composite)
	require.NoError(t, err)
	assert.Equal(t, ProviderNotion, kind)
	assert.Equal(t, "page-42", id)
}
