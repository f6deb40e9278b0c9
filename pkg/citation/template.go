package citation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"
)

const (
	doiBase        = "https://doi.org/"
	abstractWidth  = 78
	containerField = "container-title"
)

// fieldRenames maps item-data field names to the label used in the note's
// metadata block.
var fieldRenames = map[string]string{
	containerField: "from",
}

// RenderNote builds the org-roam note body for a record that has no node
// yet. lookupRef is the schemeless ref stored in ROAM_REFS so later lookups
// find this node.
func RenderNote(rec *Record, lookupRef string) string {
	var b strings.Builder

	fmt.Fprintf(&b, ":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID:         %s\n", uuid.NewString())
	fmt.Fprintf(&b, ":ROAM_REFS:  %s\n", lookupRef)
	fmt.Fprintf(&b, ":END:\n")
	fmt.Fprintf(&b, "#+title: %s\n\n", rec.Title)

	fmt.Fprintf(&b, "* Metadata\n")
	for _, name := range rec.ExtraNames() {
		fmt.Fprintf(&b, "%s: %s\n", metadataLabel(name), rec.Extra[name])
	}

	if len(rec.Authors) > 0 {
		fmt.Fprintf(&b, "\n* Authors\n")
		for _, a := range rec.Authors {
			fmt.Fprintf(&b, "%s\n", authorLine(a))
		}
	}

	if len(rec.DateParts) > 0 {
		fmt.Fprintf(&b, "\n* Date\n%s\n", strings.Join(rec.DateParts, "/"))
	}

	b.WriteString("\n")
	if rec.Abstract != "" {
		fmt.Fprintf(&b, "* Abstract\n")
		if rec.DOI != "" {
			fmt.Fprintf(&b, "[[%s%s]]\n", doiBase, rec.DOI)
		}
		fmt.Fprintf(&b, "%s\n\n* Notes\n", wordwrap.String(rec.Abstract, abstractWidth))
	} else {
		if rec.DOI != "" {
			fmt.Fprintf(&b, "[[%s%s]]\n\n", doiBase, rec.DOI)
		}
		fmt.Fprintf(&b, "* Notes\n")
	}

	return b.String()
}

// metadataLabel normalizes an item-data field name for the metadata block:
// renames first, then uppercase with dashes folded to underscores.
func metadataLabel(name string) string {
	if renamed, ok := fieldRenames[name]; ok {
		name = renamed
	}
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// authorLine renders one creator as "given, family", dropping whichever part
// is missing.
func authorLine(a Author) string {
	switch {
	case a.Given == "":
		return a.Family
	case a.Family == "":
		return a.Given
	default:
		return a.Given + ", " + a.Family
	}
}
