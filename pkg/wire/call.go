package wire

import (
	"encoding/json"
	"fmt"
)

// Call is one decoded remote procedure call: the inner payload of a frame,
// a two-element JSON array of command name and parameter list. It lives for
// a single dispatch cycle.
type Call struct {
	TransactionID uint32
	Command       string
	Params        []json.RawMessage
}

// DecodeCall parses a frame payload as a call envelope.
func DecodeCall(transactionID uint32, payload string) (*Call, error) {
	var envelope []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		return nil, fmt.Errorf("wire: call payload is not a JSON array: %w", err)
	}
	if len(envelope) != 2 {
		return nil, fmt.Errorf("wire: call envelope has %d elements, want 2", len(envelope))
	}
	var name string
	if err := json.Unmarshal(envelope[0], &name); err != nil {
		return nil, fmt.Errorf("wire: call name: %w", err)
	}
	var params []json.RawMessage
	if err := json.Unmarshal(envelope[1], &params); err != nil {
		return nil, fmt.Errorf("wire: call params: %w", err)
	}
	return &Call{TransactionID: transactionID, Command: name, Params: params}, nil
}

// String returns a string parameter at index i, or "" when absent.
func (c *Call) String(i int) string {
	if i >= len(c.Params) {
		return ""
	}
	var s string
	if err := json.Unmarshal(c.Params[i], &s); err != nil {
		return ""
	}
	return s
}

// Int returns an integer parameter at index i, or 0 when absent.
func (c *Call) Int(i int) int {
	if i >= len(c.Params) {
		return 0
	}
	var n int
	if err := json.Unmarshal(c.Params[i], &n); err != nil {
		return 0
	}
	return n
}
