package rpc

// Constants presented to Zotero for the document we pretend to edit. The
// values only need to be stable and plausible; no real document exists.
const (
	// APIVersion is the document API version reported to Zotero's
	// integration validator.
	APIVersion = 3

	// DocumentID identifies the one synthetic document.
	DocumentID = 1

	// FieldID identifies the one synthetic citation field.
	FieldID = 1
)

// defaultDocumentData is the document-data blob before Zotero stores its
// own. It mimics the XML prefs string a real word-processor document would
// carry after Zotero initializes it.
const defaultDocumentData = `<data data-version="3" zotero-version="5.0"><session id="zotroam"/><style id="http://www.zotero.org/styles/chicago-author-date" locale="en-US" hasBibliography="1" bibliographyStyleHasBeenSet="0"/><prefs><pref name="fieldType" value="ReferenceMark"/><pref name="noteType" value="0"/></prefs></data>`

// Document is the mutable fake-document state. Zotero writes its preference
// blob through Document_setDocumentData and expects to read the same text
// back for the rest of the session; nothing here is persisted.
type Document struct {
	data string
}

// NewDocument returns document state with the default data blob.
func NewDocument() *Document {
	return &Document{data: defaultDocumentData}
}

// Data returns the current document-data blob.
func (d *Document) Data() string { return d.data }

// SetData overwrites the document-data blob.
func (d *Document) SetData(data string) { d.data = data }

// fieldDescriptor is the synthetic [id, code, noteIndex] triple reported for
// the one field this document claims to contain.
func fieldDescriptor() []any {
	return []any{FieldID, "", 0}
}
