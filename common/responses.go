package common

import (
	"fmt"

	"github.com/google/uuid"
)

// RawResponse is the envelope the server replies with, and the message a
// monitor subscriber receives unsolicited when a facility's bookings change.
type RawResponse struct {
	RequestID uuid.UUID
	IsError   bool
	Message   string
}

// EncodeResponse serializes a RawResponse per the wire protocol. It fails if
// Message exceeds the wire format's u16 length prefix.
func EncodeResponse(resp RawResponse) ([]byte, error) {
	e := NewEncoder()
	e.UUID(resp.RequestID)
	e.Bool(resp.IsError)
	if err := e.String(resp.Message); err != nil {
		return nil, fmt.Errorf("encoding response message: %w", err)
	}
	return e.Bytes(), nil
}

// DecodeResponse deserializes a RawResponse.
func DecodeResponse(data []byte) (RawResponse, error) {
	d := NewDecoder(data)
	id, err := d.UUID()
	if err != nil {
		return RawResponse{}, newDecodeError("response.request_id", err)
	}
	isError, err := d.Bool()
	if err != nil {
		return RawResponse{}, newDecodeError("response.is_error", err)
	}
	message, err := d.String()
	if err != nil {
		return RawResponse{}, newDecodeError("response.message", err)
	}
	return RawResponse{RequestID: id, IsError: isError, Message: message}, nil
}
