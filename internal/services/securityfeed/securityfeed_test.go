package securityfeed

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlePassCreated(t *testing.T) {
	var buf bytes.Buffer
	svc := NewService(slog.New(slog.NewTextHandler(&buf, nil)))

	body := []byte(`{"pass_id":"p1","device_id":"d1","owner":"alice@corp.example","label":"PASS-AB12CD34","start_date":"2025-02-01","end_date":"2025-03-01"}`)
	require.NoError(t, svc.HandlePassCreated(body))

	out := buf.String()
	assert.Contains(t, out, "pass issued")
	assert.Contains(t, out, "PASS-AB12CD34")
	assert.Contains(t, out, "alice@corp.example")
}

func TestHandlePassCreated_BadPayload(t *testing.T) {
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := svc.HandlePassCreated([]byte(`not json`))
	require.Error(t, err)
}
