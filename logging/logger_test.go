package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapturingLoggerKeepsMessagesInOrder(t *testing.T) {
	var l CapturingLogger
	l.Printf("first %d", 1)
	l.Printf("second %s", "two")

	out := l.Output()
	require.Len(t, out, 2)
	assert.Equal(t, "first 1", out[0].Message)
	assert.Equal(t, "second two", out[1].Message)

	var buf bytes.Buffer
	out.Dump(&buf, "  DEBUG ")
	assert.Contains(t, buf.String(), "  DEBUG [")
	assert.Contains(t, buf.String(), "] second two\n")
}

func TestStructuredLoggerHidesDebugUnlessEnabled(t *testing.T) {
	var buf bytes.Buffer
	l := NewStructuredLogger(&buf, "run-1", false)
	l.Printf("hidden %d", 1)
	assert.Empty(t, buf.String())

	l.Info("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "run-1")
}

func TestStructuredLoggerWithTest(t *testing.T) {
	var buf bytes.Buffer
	l := NewStructuredLogger(&buf, "run-2", true).WithTest("7")
	l.Printf("checking %s", "dst7")
	l.Error(errors.New("boom"), "failed")

	s := buf.String()
	assert.Contains(t, s, "checking dst7")
	assert.Contains(t, s, "test_id=7")
	assert.Contains(t, s, "boom")
}

func TestForTestTagsStructuredLoggerOnly(t *testing.T) {
	var buf bytes.Buffer
	ForTest(NewStructuredLogger(&buf, "run-3", true), "12").Printf("hello")
	assert.Contains(t, buf.String(), "test_id=12")
	assert.Contains(t, buf.String(), "hello")

	var c CapturingLogger
	l := ForTest(&c, "12")
	assert.Same(t, &c, l)
}

func TestInfofIsShownWithoutDebug(t *testing.T) {
	var buf bytes.Buffer
	Infof(NewStructuredLogger(&buf, "run-4", false), "Good run, deleting logs in %s", "/tmp/x")
	assert.Contains(t, buf.String(), "Good run, deleting logs in /tmp/x")

	var c CapturingLogger
	Infof(&c, "count %d", 2)
	require.Len(t, c.Output(), 1)
	assert.Equal(t, "count 2", c.Output()[0].Message)
}
