// Package render turns backend replies into the text shown in an output region.
package render

import (
	"encoding/json"
	"errors"

	"cybersandbox/internal/backend"
	"cybersandbox/internal/codec"
)

// ErrorPrefix starts every failure rendered into an output region.
const ErrorPrefix = "Error: "

// Error renders err as "Error: <message>". Application errors show the response body text
// (or status line), transport errors show the transport description.
func Error(err error) string {
	if err == nil {
		return ""
	}
	var ae *backend.ApplicationError
	if errors.As(err, &ae) {
		return ErrorPrefix + ae.Message
	}
	var te *backend.TransportError
	if errors.As(err, &te) {
		return ErrorPrefix + te.Error()
	}
	return ErrorPrefix + err.Error()
}

// JSON pretty-prints raw with two-space indentation in source key order. A body that cannot be
// re-indented renders as the invalid-format error.
func JSON(raw json.RawMessage) string {
	out, err := codec.Pretty(raw)
	if err != nil {
		return ErrorPrefix + backend.MsgInvalidResponse
	}
	return out
}
