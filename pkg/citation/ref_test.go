package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemKeyShapes(t *testing.T) {
	cases := map[string]string{
		"https://zotero.org/users/42/items/ABC123":       "ABC123",
		"https://www.zotero.org/groups/99/items/DEF456":  "DEF456",
		"http://zotero.org/users/local/xyz/items/GHI789": "GHI789",
		"zotero://select/library/items/JKL012":           "JKL012",
		"zotero://select/items/1_MNO345":                 "MNO345",
	}
	for uri, want := range cases {
		key, err := ItemKey(uri)
		require.NoError(t, err, uri)
		assert.Equal(t, want, key, uri)
	}
}

func TestItemKeyRejectsNonItemURIs(t *testing.T) {
	for _, uri := range []string{
		"https://zotero.org/users/42",
		"https://example.com/whatever",
		"https://zotero.org/users/42/items/",
		"",
	} {
		_, err := ItemKey(uri)
		assert.Error(t, err, uri)
	}
}

func TestCanonicalizeOriginal(t *testing.T) {
	ref, err := Canonicalize("https://zotero.org/users/42/items/ABC123", LinkOriginal, "")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", ref.Key)
	assert.Equal(t, "https://zotero.org/users/42/items/ABC123", ref.URI)
	assert.Equal(t, "zotero.org/users/42/items/ABC123", LookupKey(ref.URI))
}

func TestCanonicalizeApp(t *testing.T) {
	ref, err := Canonicalize("https://zotero.org/users/42/items/ABC123", LinkApp, "")
	require.NoError(t, err)
	assert.Equal(t, "zotero://select/library/items/ABC123", ref.URI)
}

func TestCanonicalizeWeb(t *testing.T) {
	ref, err := Canonicalize("zotero://select/items/1_ABC123", LinkWeb, "jane")
	require.NoError(t, err)
	assert.Equal(t, "https://www.zotero.org/jane/items/ABC123", ref.URI)

	_, err = Canonicalize("zotero://select/items/1_ABC123", LinkWeb, "")
	assert.Error(t, err, "web format without a username")
}

func TestLookupKeyStripsScheme(t *testing.T) {
	assert.Equal(t, "zotero.org/users/42/items/ABC123",
		LookupKey("https://zotero.org/users/42/items/ABC123"))
	assert.Equal(t, "select/library/items/ABC123",
		LookupKey("zotero://select/library/items/ABC123"))
	assert.Equal(t, "already/schemeless",
		LookupKey("already/schemeless"))
}
