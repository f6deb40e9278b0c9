package rpc

import (
	"log/slog"

	"zotroam/pkg/wire"
)

// Wire command identifiers of the Zotero document API.
const (
	CommandGetActiveDocument    = "Application_getActiveDocument"
	CommandDisplayAlert         = "Document_displayAlert"
	CommandActivate             = "Document_activate"
	CommandCanInsertField       = "Document_canInsertField"
	CommandGetDocumentData      = "Document_getDocumentData"
	CommandSetDocumentData      = "Document_setDocumentData"
	CommandCursorInField        = "Document_cursorInField"
	CommandInsertField          = "Document_insertField"
	CommandInsertText           = "Document_insertText"
	CommandGetFields            = "Document_getFields"
	CommandConvert              = "Document_convert"
	CommandConvertPlaceholders  = "Document_convertPlaceholdersToFields"
	CommandSetBibliographyStyle = "Document_setBibliographyStyle"
	CommandImportDocument       = "Document_importDocument"
	CommandExportDocument       = "Document_exportDocument"
	CommandComplete             = "Document_complete"
	CommandFieldDelete          = "Field_delete"
	CommandFieldSelect          = "Field_select"
	CommandFieldRemoveCode      = "Field_removeCode"
	CommandFieldSetText         = "Field_setText"
	CommandFieldGetText         = "Field_getText"
	CommandFieldSetCode         = "Field_setCode"
	CommandFieldConvert         = "Field_convert"
)

// errUnknownCommand is the protocol error message for any call outside the
// supported set.
const errUnknownCommand = "unknown command"

// EncodeInitiation frames a call this side originates. Initiations always
// carry transaction id 0; Zotero replies by calling back, not by echoing.
func EncodeInitiation(payload any) ([]byte, error) {
	return wire.Encode(0, payload)
}

// Resolver handles a citation field code: the payload Zotero sets on a field
// via Field_setCode. It runs synchronously; the dispatch loop blocks until
// it returns.
type Resolver interface {
	ResolveFieldCode(code string) error
}

// Alerter presents Document_displayAlert to the user and returns the button
// code for the selected choice.
type Alerter interface {
	Alert(text string, icon, buttons int) int
}

// Dispatcher answers Zotero's document API calls against fake document
// state. It holds no per-call state: every call is independent given the
// current Document.
type Dispatcher struct {
	doc      *Document
	resolver Resolver
	alerter  Alerter
}

// NewDispatcher wires a dispatcher to its collaborators.
func NewDispatcher(doc *Document, resolver Resolver, alerter Alerter) *Dispatcher {
	return &Dispatcher{doc: doc, resolver: resolver, alerter: alerter}
}

// HandleFrame decodes a frame payload as a call and dispatches it, returning
// the encoded reply frame (echoing the caller's transaction id) and whether
// the exchange is complete.
func (d *Dispatcher) HandleFrame(transactionID uint32, payload string) (reply []byte, done bool, err error) {
	call, err := wire.DecodeCall(transactionID, payload)
	if err != nil {
		return nil, false, err
	}
	return d.Dispatch(call)
}

// Dispatch executes one call. Unsupported commands are reported to the
// remote as protocol errors; the exchange continues.
func (d *Dispatcher) Dispatch(call *wire.Call) (reply []byte, done bool, err error) {
	txn := call.TransactionID
	slog.Debug("dispatch", "command", call.Command, "txn", txn)

	var result any
	switch call.Command {
	case CommandGetActiveDocument:
		result = []any{APIVersion, DocumentID}

	case CommandDisplayAlert:
		// Params: documentID, dialogText, icon, buttons.
		result = d.alerter.Alert(call.String(1), call.Int(2), call.Int(3))

	case CommandCanInsertField:
		result = true

	case CommandGetDocumentData:
		result = d.doc.Data()

	case CommandSetDocumentData:
		d.doc.SetData(call.String(1))

	case CommandCursorInField:
		result = fieldDescriptor()

	case CommandGetFields:
		result = []any{fieldDescriptor()}

	case CommandFieldGetText:
		result = ""

	case CommandFieldSetCode:
		// Params: documentID, fieldID, code. The code carries the citation
		// JSON this whole emulation exists to intercept. A payload that does
		// not parse is answered as a protocol error rather than killing the
		// exchange.
		if rerr := d.resolver.ResolveFieldCode(call.String(2)); rerr != nil {
			slog.Warn("field code rejected", "error", rerr)
			return wire.EncodeError(txn, rerr.Error()), false, nil
		}

	case CommandActivate, CommandSetBibliographyStyle,
		CommandFieldDelete, CommandFieldSelect, CommandFieldRemoveCode,
		CommandFieldSetText, CommandFieldConvert:
		// Acknowledged no-ops: there is no document to act on.

	case CommandComplete:
		done = true

	default:
		// Covers Document_insertField, Document_insertText,
		// Document_convert, Document_convertPlaceholdersToFields,
		// Document_importDocument, Document_exportDocument and anything
		// else: this editor cannot do it.
		return wire.EncodeError(txn, errUnknownCommand), false, nil
	}

	frame, err := wire.Encode(txn, result)
	if err != nil {
		return nil, false, err
	}
	return frame, done, nil
}
