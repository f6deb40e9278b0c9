package citation

import (
	"fmt"
	"strings"
)

// LinkFormat selects how a canonicalized ref renders its URI.
type LinkFormat string

const (
	// LinkOriginal keeps the URI exactly as the citation payload carried it.
	LinkOriginal LinkFormat = "original"
	// LinkApp renders a zotero://select app link that opens the item in the
	// local Zotero client.
	LinkApp LinkFormat = "app"
	// LinkWeb renders a zotero.org web link under a configured username.
	LinkWeb LinkFormat = "web"
)

// Ref is a canonicalized reference to one Zotero item.
type Ref struct {
	// Key is the opaque item identifier, e.g. "ABC123".
	Key string
	// URI is the rendering selected by the link format.
	URI string
}

// Canonicalize derives a Ref from an item URI found in a citation payload.
// Three input shapes are accepted: a user-scoped web link
// (https://zotero.org/users/42/items/KEY), a generic web link
// (https://zotero.org/<path>/items/KEY), and the app-link scheme
// (zotero://select/items/N_KEY or zotero://select/library/items/KEY).
func Canonicalize(uri string, format LinkFormat, username string) (Ref, error) {
	key, err := ItemKey(uri)
	if err != nil {
		return Ref{}, err
	}
	ref := Ref{Key: key, URI: uri}
	switch format {
	case LinkApp:
		ref.URI = "zotero://select/library/items/" + key
	case LinkWeb:
		if username == "" {
			return Ref{}, fmt.Errorf("citation: web link format needs a username")
		}
		ref.URI = "https://www.zotero.org/" + username + "/items/" + key
	}
	return ref, nil
}

// ItemKey extracts the opaque item identifier from any accepted URI shape.
func ItemKey(uri string) (string, error) {
	marker := "/items/"
	idx := strings.LastIndex(uri, marker)
	if idx < 0 {
		return "", fmt.Errorf("citation: no item key in uri %q", uri)
	}
	key := strings.Trim(uri[idx+len(marker):], "/")
	// App links embed the library number as an N_ prefix on the key.
	if strings.HasPrefix(uri, "zotero://") {
		if und := strings.IndexByte(key, '_'); und >= 0 {
			key = key[und+1:]
		}
	}
	if key == "" {
		return "", fmt.Errorf("citation: empty item key in uri %q", uri)
	}
	return key, nil
}

// LookupKey strips the scheme from a ref URI. org-roam stores ROAM_REFS
// without the scheme, so the schemeless form is the join key against the
// graph.
func LookupKey(uri string) string {
	if idx := strings.Index(uri, "://"); idx >= 0 {
		return uri[idx+3:]
	}
	return uri
}
