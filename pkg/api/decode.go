package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/me/kitlend/pkg/model"
)

// errListShape reports a payload that is neither an array nor a wrapper
// holding one.
var errListShape = errors.New("payload is not a list")

// isNull reports whether raw is empty or the JSON literal null.
func isNull(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// unwrapData removes a top-level {data: ...} envelope. Bodies without a data
// key are returned unchanged.
func unwrapData(body []byte) json.RawMessage {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return body
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return body
	}
	if data, ok := fields["data"]; ok {
		return data
	}
	return body
}

// Decode unmarshals the response payload into T. ok is false when the
// payload is empty or null.
func Decode[T any](resp *Response) (value T, ok bool, err error) {
	raw := resp.Payload()
	if isNull(raw) {
		return value, false, nil
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, false, fmt.Errorf("decode payload: %w", err)
	}
	return value, true, nil
}

// DecodeList unmarshals a list payload. It accepts a bare array or an array
// nested under data and/or content at any depth, e.g. {data: {content: [...]}}.
func DecodeList[T any](resp *Response) ([]T, error) {
	if !resp.JSON {
		if len(bytes.TrimSpace(resp.Body)) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("decode list: %w", errListShape)
	}
	items, err := decodeList[T](resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return items, nil
}

func decodeList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return nil, nil
	}
	switch raw[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	case '{':
		var env model.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, err
		}
		if len(env.Content) > 0 {
			return decodeList[T](env.Content)
		}
		if len(env.Data) > 0 {
			return decodeList[T](env.Data)
		}
	}
	return nil, errListShape
}
