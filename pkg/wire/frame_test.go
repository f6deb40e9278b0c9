package wire

import (
	"encoding/json"
	"testing"
)

// TestEncodeDecodeRoundTrip tests that decoding an encoded frame recovers the
// transaction id and payload.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		txn   uint32
		value any
		want  string
	}{
		{"null", 0, nil, "null"},
		{"string", 7, "hello", `"hello"`},
		{"array", 1, []any{"Application_getActiveDocument", []any{}}, `["Application_getActiveDocument",[]]`},
		{"object", 42, map[string]any{"command": "addEditCitation"}, `{"command":"addEditCitation"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frame, err := Encode(tc.txn, tc.value)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			txn, payload, err := Decode(frame)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if txn != tc.txn {
				t.Errorf("transaction id = %d, want %d", txn, tc.txn)
			}
			if payload != tc.want {
				t.Errorf("payload = %q, want %q", payload, tc.want)
			}
		})
	}
}

// TestEncodeErrorRoundTrip tests the ERR: payload convention.
func TestEncodeErrorRoundTrip(t *testing.T) {
	frame := EncodeError(3, "X")
	txn, payload, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if txn != 3 {
		t.Errorf("transaction id = %d, want 3", txn)
	}
	if payload != "ERR:X" {
		t.Errorf("payload = %q, want %q", payload, "ERR:X")
	}

	msg, ok := IsError(payload)
	if !ok || msg != "X" {
		t.Errorf("IsError(%q) = %q, %v", payload, msg, ok)
	}
	if _, ok := IsError("null"); ok {
		t.Error("IsError misclassified a null payload")
	}
}

// TestEncodeMultibyteLength tests that the header length counts bytes, not
// characters.
func TestEncodeMultibyteLength(t *testing.T) {
	frame, err := Encode(1, "citè")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	hdr, err := PeekHeader(frame)
	if err != nil {
		t.Fatalf("PeekHeader: %v", err)
	}
	// "citè" marshals to `"citè"`: six runes but seven bytes.
	if want := uint32(len(`"citè"`)); hdr.Length != want {
		t.Errorf("length = %d, want %d", hdr.Length, want)
	}
	if len(frame) != HeaderSize+int(hdr.Length) {
		t.Errorf("frame size = %d, want %d", len(frame), HeaderSize+int(hdr.Length))
	}
}

// TestDecodeRejectsLengthMismatch tests that a frame with trailing or missing
// bytes is refused.
func TestDecodeRejectsLengthMismatch(t *testing.T) {
	frame, err := Encode(1, true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, _, err := Decode(frame[:len(frame)-1]); err == nil {
		t.Error("Decode accepted a truncated frame")
	}
	if _, _, err := Decode(append(frame, 'x')); err == nil {
		t.Error("Decode accepted trailing bytes")
	}
	if _, err := PeekHeader(frame[:HeaderSize-1]); err == nil {
		t.Error("PeekHeader accepted a short header")
	}
}

// TestDecodeCall tests the call envelope decoding and parameter accessors.
func TestDecodeCall(t *testing.T) {
	payload := `["Document_displayAlert",[1,"sure?",2,3]]`
	call, err := DecodeCall(9, payload)
	if err != nil {
		t.Fatalf("DecodeCall: %v", err)
	}
	if call.Command != "Document_displayAlert" {
		t.Errorf("command = %q", call.Command)
	}
	if call.TransactionID != 9 {
		t.Errorf("transaction id = %d", call.TransactionID)
	}
	if got := call.Int(0); got != 1 {
		t.Errorf("Int(0) = %d, want 1", got)
	}
	if got := call.String(1); got != "sure?" {
		t.Errorf("String(1) = %q", got)
	}
	if got := call.Int(3); got != 3 {
		t.Errorf("Int(3) = %d, want 3", got)
	}
	// Absent and mistyped params yield zero values.
	if got := call.String(0); got != "" {
		t.Errorf("String(0) = %q, want empty", got)
	}
	if got := call.Int(99); got != 0 {
		t.Errorf("Int(99) = %d, want 0", got)
	}
}

// TestDecodeCallRejectsBadEnvelopes tests malformed call payloads.
func TestDecodeCallRejectsBadEnvelopes(t *testing.T) {
	for _, payload := range []string{
		"null",
		`{"command":"x"}`,
		`["only-name"]`,
		`["name",[],"extra"]`,
		`[1,[]]`,
	} {
		if _, err := DecodeCall(0, payload); err == nil {
			t.Errorf("DecodeCall accepted %q", payload)
		}
	}
}

// TestEncodePreservesJSONValue tests that encoded payloads are valid JSON for
// non-error frames.
func TestEncodePreservesJSONValue(t *testing.T) {
	frame, err := Encode(0, []any{3, 1})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, payload, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	var got []int
	if err := json.Unmarshal([]byte(payload), &got); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if len(got) != 2 || got[0] != 3 || got[1] != 1 {
		t.Errorf("payload = %v", got)
	}
}
