package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"manjaword/pkg/apperr"
)

const (
	// SchemaVersion is stamped on every envelope written by this backend.
	SchemaVersion = "1.0.0"
	// Extension is the compound suffix every document file must carry.
	Extension = ".manjaword.json"
	// DefaultName is suggested by the save dialog.
	DefaultName = "untitled" + Extension
	// AutosaveName is the fixed file name of the autosave snapshot.
	AutosaveName = "autosave" + Extension
)

// Envelope is the unit of persistence. Content is the editor's delta and is
// never interpreted here.
type Envelope struct {
	Version   string    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
	Content   any       `json:"content"`
}

// OpenedDocument is returned to the UI after a successful open.
type OpenedDocument struct {
	Path    string `json:"path"`
	Content any    `json:"content"`
}

// Wrap stamps content with the schema version and now.
func Wrap(content any, now time.Time) Envelope {
	return Envelope{
		Version:   SchemaVersion,
		UpdatedAt: now.UTC(),
		Content:   content,
	}
}

// Unwrap returns the payload.
func (e Envelope) Unwrap() any {
	return e.Content
}

// Encode serializes the envelope as indented JSON.
func Encode(env Envelope) ([]byte, error) {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, &apperr.SerializationError{Err: err}
	}
	return data, nil
}

// wireEnvelope detects missing fields, which a plain Envelope would zero-fill.
type wireEnvelope struct {
	Version   *string         `json:"version"`
	UpdatedAt *time.Time      `json:"updated_at"`
	Content   json.RawMessage `json:"content"`
}

// Decode parses stored bytes. Missing fields, wrong types and corrupt
// encoding all fail with a DeserializationError.
func Decode(raw []byte) (*Envelope, error) {
	var wire wireEnvelope
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &apperr.DeserializationError{Err: err}
	}
	switch {
	case wire.Version == nil:
		return nil, &apperr.DeserializationError{Err: errors.New("missing field `version`")}
	case wire.UpdatedAt == nil:
		return nil, &apperr.DeserializationError{Err: errors.New("missing field `updated_at`")}
	case wire.Content == nil:
		return nil, &apperr.DeserializationError{Err: errors.New("missing field `content`")}
	}

	var content any
	dec := json.NewDecoder(bytes.NewReader(wire.Content))
	if err := dec.Decode(&content); err != nil {
		return nil, &apperr.DeserializationError{Err: err}
	}

	return &Envelope{
		Version:   *wire.Version,
		UpdatedAt: *wire.UpdatedAt,
		Content:   content,
	}, nil
}

type OpenDocRequest struct {
	Path string `json:"path"`
}

// Content fields stay raw so that an explicit null is a valid payload and
// only a missing key is rejected.
type SaveDocRequest struct {
	Path    string          `json:"path"`
	Content json.RawMessage `json:"content" validate:"required"`
}

type SaveDocResponse struct {
	Path string `json:"path"`
}

type AutosaveRequest struct {
	Content json.RawMessage `json:"content" validate:"required"`
}

type RecoverResponse struct {
	Document *Envelope `json:"document"`
}

// DecodeContent turns a raw request payload into the generic value stored in
// an envelope. It does not look at the shape.
func DecodeContent(raw json.RawMessage) (any, error) {
	var content any
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, err
	}
	return content, nil
}
