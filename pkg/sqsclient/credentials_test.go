package sqsclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretRedactsItselfWhenFormatted(t *testing.T) {
	s := Secret("hunter2")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%s", s))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%#v", s))
}

func TestSecretRedactsItselfInJSON(t *testing.T) {
	creds := Credentials{
		AccessKeyID:     "AKIAEXAMPLE",
		SecretAccessKey: Secret("hunter2"),
	}

	out, err := json.Marshal(creds)

	require.NoError(t, err)
	assert.NotContains(t, string(out), "hunter2")
	assert.Contains(t, string(out), "[REDACTED]")
}

func TestSecretRedactedInStructuredLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	creds := Credentials{
		AccessKeyID:     "AKIAEXAMPLE",
		SecretAccessKey: Secret("hunter2"),
	}
	logger.Info().Interface("credentials", creds).Msg("client configured")

	assert.NotContains(t, buf.String(), "hunter2")
}

func TestSecretExposeReturnsRawValue(t *testing.T) {
	assert.Equal(t, "hunter2", Secret("hunter2").Expose())
}
