package render

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"cybersandbox/internal/backend"
)

func TestError(t *testing.T) {
	app := &backend.ApplicationError{Op: "chat", StatusCode: 500, Message: "boom"}
	assert.Equal(t, "Error: boom", Error(app))
	assert.Equal(t, "Error: boom", Error(fmt.Errorf("wrapped: %w", app)))

	tr := &backend.TransportError{Op: "chat", Err: errors.New("dial tcp 127.0.0.1:1: connect: connection refused")}
	assert.Equal(t, "Error: dial tcp 127.0.0.1:1: connect: connection refused", Error(tr))

	assert.Equal(t, "Error: open x: no such file", Error(errors.New("open x: no such file")))
	assert.Equal(t, "", Error(nil))
}

func TestJSON(t *testing.T) {
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    true\n  ]\n}", JSON([]byte(`{"b":1,"a":[true]}`)))
	assert.Equal(t, "Error: invalid response format", JSON([]byte(`{"b":`)))
}

func TestDecorator_LeavesPlainTextAlone(t *testing.T) {
	d := NewDecorator(0, true)
	assert.Equal(t, "hello", d.Markdown("hello"))
	assert.Equal(t, "Select a file first.", d.JSON("Select a file first."))

	var nilDec *Decorator
	assert.Equal(t, "x", nilDec.Markdown("x"))
	assert.Equal(t, "{}", nilDec.JSON("{}"))
}

func TestDecorator_HighlightsJSON(t *testing.T) {
	d := NewDecorator(0, true)
	out := d.JSON("{\n  \"a\": 1\n}")
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "a")
}
