// Package wire implements the binary frame format of Zotero's word-processor
// integration protocol: a 4-byte transaction id, a 4-byte payload length
// (both big-endian uint32), then exactly length payload bytes. The payload is
// UTF-8 text: the literal "null", an "ERR:"-prefixed error message, or JSON.
package wire

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// HeaderSize is the fixed size of a frame header in bytes.
const HeaderSize = 8

// errPrefix marks an error payload on the wire.
const errPrefix = "ERR:"

// Header is the decoded fixed-size frame prefix.
type Header struct {
	TransactionID uint32
	Length        uint32
}

// PeekHeader decodes only the frame header. The caller uses Length to decide
// how many more bytes must be buffered before the frame is complete.
func PeekHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("wire: need %d header bytes, have %d", HeaderSize, len(data))
	}
	return Header{
		TransactionID: binary.BigEndian.Uint32(data[0:4]),
		Length:        binary.BigEndian.Uint32(data[4:8]),
	}, nil
}

// Encode builds a frame carrying the JSON serialization of value, or the
// literal text "null" when value is nil. The length field counts payload
// bytes, not characters, so multi-byte text is measured after encoding.
func Encode(transactionID uint32, value any) ([]byte, error) {
	var payload []byte
	if value == nil {
		payload = []byte("null")
	} else {
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("wire: marshal payload: %w", err)
		}
		payload = data
	}
	return encodeRaw(transactionID, payload), nil
}

// EncodeError builds a frame carrying a protocol error payload.
func EncodeError(transactionID uint32, message string) []byte {
	return encodeRaw(transactionID, []byte(errPrefix+message))
}

func encodeRaw(transactionID uint32, payload []byte) []byte {
	frame := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint32(frame[0:4], transactionID)
	binary.BigEndian.PutUint32(frame[4:8], uint32(len(payload)))
	copy(frame[HeaderSize:], payload)
	return frame
}

// Decode unpacks one complete frame. The input must be exactly header plus
// payload; trailing bytes belong to the next frame and are rejected here.
func Decode(data []byte) (transactionID uint32, payload string, err error) {
	hdr, err := PeekHeader(data)
	if err != nil {
		return 0, "", err
	}
	want := HeaderSize + int(hdr.Length)
	if len(data) != want {
		return 0, "", fmt.Errorf("wire: frame is %d bytes, header declares %d", len(data), want)
	}
	return hdr.TransactionID, string(data[HeaderSize:]), nil
}

// IsError reports whether a payload text is a protocol error, and if so
// returns the message following the prefix.
func IsError(payload string) (string, bool) {
	if len(payload) >= len(errPrefix) && payload[:len(errPrefix)] == errPrefix {
		return payload[len(errPrefix):], true
	}
	return "", false
}
