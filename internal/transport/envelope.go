// Package transport implements the wire envelope shared by client sessions
// and the device bridge: a line holding the message type, a newline, then a
// JSON object repeating the type and carrying the payload. The dual encoding
// is redundant but the deployed desktop client depends on both halves.
package transport

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is one decoded wire message.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decode parses a raw inbound message. Anything before the first '{' is
// treated as routing prefix and ignored; the JSON "type" field is
// authoritative, with the prefix line as fallback for senders that omit it.
func Decode(raw string) (Envelope, error) {
	brace := strings.IndexByte(raw, '{')
	if brace < 0 {
		return Envelope{}, fmt.Errorf("decode message: no JSON object in %q", truncate(raw))
	}

	var env Envelope
	if err := json.Unmarshal([]byte(raw[brace:]), &env); err != nil {
		return Envelope{}, fmt.Errorf("decode message: %w", err)
	}

	if env.Type == "" {
		prefix, _, _ := strings.Cut(raw[:brace], "\n")
		env.Type = strings.TrimSpace(prefix)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("decode message: missing type")
	}
	return env, nil
}

// Encode builds an outbound message in the dual encoding.
func Encode(msgType string, payload any) (string, error) {
	body, err := json.MarshalIndent(struct {
		Type    string `json:"type"`
		Payload any    `json:"payload"`
	}{msgType, payload}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", msgType, err)
	}
	return msgType + "\n" + string(body), nil
}

// Bind unmarshals the envelope payload into dst.
func (e Envelope) Bind(dst any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("bind %s: empty payload", e.Type)
	}
	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return fmt.Errorf("bind %s: %w", e.Type, err)
	}
	return nil
}

func truncate(s string) string {
	if len(s) > 64 {
		return s[:64] + "…"
	}
	return s
}
