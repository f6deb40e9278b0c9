// Package citation turns the field-code payload Zotero pushes through
// Field_setCode into knowledge-graph actions: look the cited item up by its
// ref and open the matching note, or render a fresh note for it.
package citation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// placeholderTitle stands in when the item data carries no usable title.
const placeholderTitle = "unknown title"

// Record is the bibliographic data of one cited item, parsed out of a
// Field_setCode payload. It lives for a single resolution.
type Record struct {
	URI       string
	Title     string
	Authors   []Author
	DateParts []string
	DOI       string
	Abstract  string

	// Extra holds every other item-data field, stringified. Rendered into
	// the note's metadata block.
	Extra map[string]string
}

// Author is one creator from the item data. Either name part may be empty.
type Author struct {
	Given  string
	Family string
}

// fieldCode mirrors the JSON object embedded in a Field_setCode payload.
// The payload text starts with a non-JSON marker ("ITEM CSL_CITATION ");
// parsing begins at the first brace.
type fieldCode struct {
	CitationItems []struct {
		URIs     []string                   `json:"uris"`
		ItemData map[string]json.RawMessage `json:"itemData"`
	} `json:"citationItems"`
}

// handledFields are item-data keys consumed by dedicated Record fields or
// deliberately left out of the metadata block.
var handledFields = map[string]bool{
	"id":                   true,
	"title":                true,
	"title-short":          true,
	"abstract":             true,
	"author":               true,
	"citation-key":         true,
	"issued":               true,
	"note":                 true,
	"source":               true,
	"journal-abbreviation": true,
}

// Parse extracts the first cited item from a raw field-code payload.
func Parse(code string) (*Record, error) {
	start := strings.IndexByte(code, '{')
	if start < 0 {
		return nil, fmt.Errorf("citation: no JSON object in field code")
	}
	var fc fieldCode
	if err := json.Unmarshal([]byte(code[start:]), &fc); err != nil {
		return nil, fmt.Errorf("citation: parse field code: %w", err)
	}
	if len(fc.CitationItems) == 0 {
		return nil, fmt.Errorf("citation: field code has no citation items")
	}
	item := fc.CitationItems[0]
	if len(item.URIs) == 0 {
		return nil, fmt.Errorf("citation: cited item has no uris")
	}

	rec := &Record{
		URI:   item.URIs[0],
		Title: stringField(item.ItemData, "title"),
		Extra: map[string]string{},
	}
	if rec.Title == "" {
		rec.Title = stringField(item.ItemData, "title-short")
	}
	if rec.Title == "" {
		rec.Title = placeholderTitle
	}
	rec.DOI = stringField(item.ItemData, "DOI")
	rec.Abstract = stringField(item.ItemData, "abstract")
	rec.Authors = parseAuthors(item.ItemData["author"])
	rec.DateParts = parseDateParts(item.ItemData["issued"])

	for name, raw := range item.ItemData {
		if handledFields[strings.ToLower(name)] {
			continue
		}
		rec.Extra[name] = stringifyValue(raw)
	}
	return rec, nil
}

// ExtraNames returns the metadata field names in stable order.
func (r *Record) ExtraNames() []string {
	names := make([]string, 0, len(r.Extra))
	for name := range r.Extra {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func stringField(data map[string]json.RawMessage, name string) string {
	raw, ok := data[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func parseAuthors(raw json.RawMessage) []Author {
	if raw == nil {
		return nil
	}
	var creators []struct {
		Given  string `json:"given"`
		Family string `json:"family"`
	}
	if err := json.Unmarshal(raw, &creators); err != nil {
		return nil
	}
	authors := make([]Author, 0, len(creators))
	for _, c := range creators {
		authors = append(authors, Author{Given: c.Given, Family: c.Family})
	}
	return authors
}

// parseDateParts reads the CSL issued field: {"date-parts": [[year, month,
// day]]}; only the first (and in practice only) entry matters.
func parseDateParts(raw json.RawMessage) []string {
	if raw == nil {
		return nil
	}
	var issued struct {
		DateParts [][]json.Number `json:"date-parts"`
	}
	if err := json.Unmarshal(raw, &issued); err != nil || len(issued.DateParts) == 0 {
		return nil
	}
	parts := make([]string, 0, len(issued.DateParts[0]))
	for _, p := range issued.DateParts[0] {
		parts = append(parts, p.String())
	}
	return parts
}

// stringifyValue flattens an item-data value for the metadata block: strings
// verbatim, anything else as its compact JSON text.
func stringifyValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
