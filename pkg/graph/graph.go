// Package graph is the org-roam side of the bridge: lookups against the
// org-roam database and the file/editor actions that open or create notes.
package graph

// Node is one org-roam node as stored in the database.
type Node struct {
	ID    string
	File  string
	Pos   int
	Title string
}

// Graph is the knowledge-graph collaborator the citation resolver talks to.
type Graph interface {
	// FindNodeByRef returns the node owning the given ref, or nil when no
	// node carries it.
	FindNodeByRef(ref string) (*Node, error)

	// FindRefOwner returns the id of the node owning the given ref, or ""
	// when no node carries it.
	FindRefOwner(ref string) (string, error)

	// CreateNode materializes a new note from a rendered template.
	CreateNode(template, title string) error

	// OpenNode focuses an existing note in the editor.
	OpenNode(n *Node) error
}
