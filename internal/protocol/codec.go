package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownMessageType is returned when a decoded line carries a
	// tag outside the protocol. Callers drop the line and keep reading.
	ErrUnknownMessageType = errors.New("unknown message type")

	// ErrEmptyLine is returned for blank input lines
	ErrEmptyLine = errors.New("empty line")
)

var knownTypes = map[MessageType]bool{
	TypeJoinTable:   true,
	TypePlaceBet:    true,
	TypeHit:         true,
	TypeStand:       true,
	TypeDouble:      true,
	TypeSurrender:   true,
	TypeGetRecords:  true,
	TypeTableState:  true,
	TypeHandResult:  true,
	TypeRecordsList: true,
}

// EncodeLine serializes a message to a single LF-terminated line.
// Payloads never contain newlines; json.Marshal does not emit them.
func EncodeLine(msg *Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DecodeLine parses one line into a message envelope. A line that is
// not valid JSON, or whose tag is not part of the protocol, returns an
// error; per the wire contract that is a soft failure and must never
// terminate the connection.
func DecodeLine(line []byte) (*Message, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, ErrEmptyLine
	}
	var msg Message
	if err := json.Unmarshal(line, &msg); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}
	if !knownTypes[msg.Type] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, msg.Type)
	}
	return &msg, nil
}

// DecodeData unmarshals the envelope payload into v
func DecodeData(msg *Message, v interface{}) error {
	if len(msg.Data) == 0 {
		return nil
	}
	return json.Unmarshal(msg.Data, v)
}
