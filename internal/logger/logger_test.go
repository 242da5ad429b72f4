package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supercrm/internal/config"
	"supercrm/internal/logger"
)

func TestSetupWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, logger.SetupWriter(config.LogConfig{Level: "info", Format: "json"}, &buf))

	l := logger.WithComponent("invoice")
	l.Info().Str("invoice_number", "INV/2024-25/00001").Msg("created")
	l.Debug().Msg("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "invoice", entry["component"])
	assert.Equal(t, "INV/2024-25/00001", entry["invoice_number"])
	assert.Equal(t, "created", entry["message"])
}

func TestSetupWriter_BadLevel(t *testing.T) {
	assert.Error(t, logger.SetupWriter(config.LogConfig{Level: "loud"}, &bytes.Buffer{}))
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	scoped := zerolog.New(&buf).With().Str("request_id", "abc").Logger()
	ctx := scoped.WithContext(context.Background())

	logger.FromContext(ctx).Warn().Msg("hello")
	assert.Contains(t, buf.String(), `"request_id":"abc"`)

	assert.NotNil(t, logger.FromContext(context.Background()))
}
