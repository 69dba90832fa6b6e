package httpapi

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenWriter accepts ok writes and fails every later one.
type brokenWriter struct {
	ok     int
	writes int
	buf    bytes.Buffer
}

func (w *brokenWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.writes > w.ok {
		return 0, errors.New("connection reset")
	}
	return w.buf.Write(p)
}

func TestWriteEvent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeEvent(&buf, []byte(`{"stage":"idle"}`)))
	assert.Equal(t, "event: reply\ndata: {\"stage\":\"idle\"}\n\n", buf.String())
}

func TestWriteEventStopsOnError(t *testing.T) {
	for ok := 0; ok < 3; ok++ {
		w := &brokenWriter{ok: ok}
		err := writeEvent(w, []byte(`{}`))
		require.Error(t, err, "ok=%d", ok)
		assert.Equal(t, ok+1, w.writes, "ok=%d", ok)
	}
}
