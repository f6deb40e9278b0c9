package citation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zotroam/pkg/graph"
)

type fakeGraph struct {
	nodes map[string]*graph.Node

	opened  []*graph.Node
	created []createdNote
	findErr error
}

type createdNote struct {
	template string
	title    string
}

func (f *fakeGraph) FindNodeByRef(ref string) (*graph.Node, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.nodes[ref], nil
}

func (f *fakeGraph) FindRefOwner(ref string) (string, error) {
	if n := f.nodes[ref]; n != nil {
		return n.ID, nil
	}
	return "", nil
}

func (f *fakeGraph) CreateNode(template, title string) error {
	f.created = append(f.created, createdNote{template, title})
	return nil
}

func (f *fakeGraph) OpenNode(n *graph.Node) error {
	f.opened = append(f.opened, n)
	return nil
}

// TestResolveCreatesMissingNode tests the create path: a cited item with no
// node yields exactly one CreateNode carrying the title and stripped ref.
func TestResolveCreatesMissingNode(t *testing.T) {
	g := &fakeGraph{nodes: map[string]*graph.Node{}}
	r := NewResolver(g, LinkOriginal, "")

	code := `ITEM CSL_CITATION {"citationItems":[{"uris":["https://zotero.org/users/1/items/XYZ"],"itemData":{"title":"T"}}]}`
	require.NoError(t, r.ResolveFieldCode(code))

	require.Len(t, g.created, 1)
	assert.Empty(t, g.opened)
	assert.Equal(t, "T", g.created[0].title)
	assert.Contains(t, g.created[0].template, "#+title: T\n")
	assert.Contains(t, g.created[0].template, ":ROAM_REFS:  zotero.org/users/1/items/XYZ\n")
}

// TestResolveOpensExistingNode tests the open path: a matching node is
// focused and nothing is created.
func TestResolveOpensExistingNode(t *testing.T) {
	existing := &graph.Node{ID: "id-1", File: "/notes/t.org", Pos: 17, Title: "T"}
	g := &fakeGraph{nodes: map[string]*graph.Node{
		"zotero.org/users/1/items/XYZ": existing,
	}}
	r := NewResolver(g, LinkOriginal, "")

	code := `ITEM CSL_CITATION {"citationItems":[{"uris":["https://zotero.org/users/1/items/XYZ"],"itemData":{"title":"T"}}]}`
	require.NoError(t, r.ResolveFieldCode(code))

	require.Len(t, g.opened, 1)
	assert.Empty(t, g.created)
	assert.Same(t, existing, g.opened[0])
}

// TestResolveAppFormatChangesLookupKey tests that the configured link format
// drives which ref is stored and looked up.
func TestResolveAppFormatChangesLookupKey(t *testing.T) {
	g := &fakeGraph{nodes: map[string]*graph.Node{}}
	r := NewResolver(g, LinkApp, "")

	code := `I {"citationItems":[{"uris":["https://zotero.org/users/1/items/XYZ"],"itemData":{"title":"T"}}]}`
	require.NoError(t, r.ResolveFieldCode(code))

	require.Len(t, g.created, 1)
	assert.Contains(t, g.created[0].template, ":ROAM_REFS:  select/library/items/XYZ\n")
}

// TestResolveErrors tests that parse and graph failures surface.
func TestResolveErrors(t *testing.T) {
	g := &fakeGraph{nodes: map[string]*graph.Node{}}
	r := NewResolver(g, LinkOriginal, "")

	assert.Error(t, r.ResolveFieldCode("no braces here"))
	assert.Error(t, r.ResolveFieldCode(`I {"citationItems":[{"uris":["https://example.com/nope"],"itemData":{}}]}`))

	g.findErr = errors.New("db locked")
	code := `I {"citationItems":[{"uris":["https://zotero.org/users/1/items/XYZ"],"itemData":{"title":"T"}}]}`
	assert.ErrorContains(t, r.ResolveFieldCode(code), "db locked")
	assert.Empty(t, g.created)
}
