package citation

import (
	"log/slog"

	"zotroam/pkg/graph"
)

// Resolver resolves field codes against the knowledge graph. It implements
// the dispatcher's Resolver interface.
type Resolver struct {
	graph    graph.Graph
	format   LinkFormat
	username string
}

// NewResolver builds a resolver. username is only consulted when format is
// LinkWeb.
func NewResolver(g graph.Graph, format LinkFormat, username string) *Resolver {
	if format == "" {
		format = LinkOriginal
	}
	return &Resolver{graph: g, format: format, username: username}
}

// ResolveFieldCode parses the citation payload, canonicalizes its item URI
// and either opens the existing note for it or creates a new one. It blocks
// until the graph action completes.
func (r *Resolver) ResolveFieldCode(code string) error {
	rec, err := Parse(code)
	if err != nil {
		return err
	}
	ref, err := Canonicalize(rec.URI, r.format, r.username)
	if err != nil {
		return err
	}
	key := LookupKey(ref.URI)

	node, err := r.graph.FindNodeByRef(key)
	if err != nil {
		return err
	}
	if node != nil {
		slog.Info("opening note", "ref", key, "file", node.File)
		return r.graph.OpenNode(node)
	}

	slog.Info("creating note", "ref", key, "title", rec.Title)
	return r.graph.CreateNode(RenderNote(rec, key), rec.Title)
}
