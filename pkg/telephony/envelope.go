// Package telephony unwraps vendor streaming envelopes into the raw audio
// bytes the onset detector consumes.
//
// Twilio Media Streams deliver μ-law audio as base64 payloads inside JSON
// websocket messages. This package parses those messages and extracts the
// payload; it knows nothing about detection.
//
// Reference: https://www.twilio.com/docs/voice/media-streams

package telephony

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Media Streams event names.
const (
	EventConnected = "connected"
	EventStart     = "start"
	EventMedia     = "media"
	EventStop      = "stop"
	EventMark      = "mark"
	EventDTMF      = "dtmf"
)

// MediaMessage represents a Twilio Media Streams websocket message.
type MediaMessage struct {
	Event          string        `json:"event"`
	SequenceNumber string        `json:"sequenceNumber,omitempty"`
	StreamSid      string        `json:"streamSid,omitempty"`
	Protocol       string        `json:"protocol,omitempty"`
	Version        string        `json:"version,omitempty"`
	Start          *StartPayload `json:"start,omitempty"`
	Media          *MediaPayload `json:"media,omitempty"`
	Stop           *StopPayload  `json:"stop,omitempty"`
	Mark           *MarkPayload  `json:"mark,omitempty"`
	DTMF           *DTMFPayload  `json:"dtmf,omitempty"`
}

// StartPayload contains stream initialization data.
type StartPayload struct {
	AccountSid       string            `json:"accountSid"`
	StreamSid        string            `json:"streamSid"`
	CallSid          string            `json:"callSid"`
	Tracks           []string          `json:"tracks"`
	MediaFormat      MediaFormat       `json:"mediaFormat"`
	CustomParameters map[string]string `json:"customParameters,omitempty"`
}

// MediaFormat describes the audio format of a stream.
type MediaFormat struct {
	Encoding   string `json:"encoding"`   // "audio/x-mulaw"
	SampleRate int    `json:"sampleRate"` // 8000
	Channels   int    `json:"channels"`   // 1
}

// MediaPayload contains one chunk of audio data.
type MediaPayload struct {
	Track     string `json:"track,omitempty"` // "inbound" or "outbound"
	Chunk     string `json:"chunk,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   string `json:"payload"` // Base64 encoded μ-law audio
}

// StopPayload contains stream termination data.
type StopPayload struct {
	AccountSid string `json:"accountSid"`
	CallSid    string `json:"callSid"`
}

// MarkPayload contains mark event data.
type MarkPayload struct {
	Name string `json:"name"`
}

// DTMFPayload contains DTMF digit data.
type DTMFPayload struct {
	Track string `json:"track"`
	Digit string `json:"digit"`
}

// ParseMessage decodes one raw websocket message into a MediaMessage.
func ParseMessage(data []byte) (*MediaMessage, error) {
	var msg MediaMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse media message: %w", err)
	}
	if msg.Event == "" {
		return nil, fmt.Errorf("media message missing event field")
	}
	return &msg, nil
}

// Decode returns the raw audio bytes carried by a media payload.
func (p *MediaPayload) Decode() ([]byte, error) {
	audio, err := base64.StdEncoding.DecodeString(p.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode media payload: %w", err)
	}
	return audio, nil
}

// EncodeMedia builds an outbound media message carrying the given audio
// bytes, base64 encoded.
func EncodeMedia(streamSid string, audio []byte) *MediaMessage {
	return &MediaMessage{
		Event:     EventMedia,
		StreamSid: streamSid,
		Media: &MediaPayload{
			Payload: base64.StdEncoding.EncodeToString(audio),
		},
	}
}
