package logger_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cerveceria-ancestral/inventario-api/pkg/logger"
)

func TestNew_NivelYLoggerGlobal(t *testing.T) {
	l := logger.New(logger.Config{Env: "production", Level: "warn", Service: "inventario-api"})
	require.NotNil(t, l)

	assert.Equal(t, zerolog.WarnLevel, log.Logger.GetLevel(), "New instala el logger global con el nivel pedido")
}

func TestNew_NivelInvalidoCaeEnInfo(t *testing.T) {
	logger.New(logger.Config{Env: "production", Level: "verboso"})
	assert.Equal(t, zerolog.InfoLevel, log.Logger.GetLevel())
}

func TestNew_EstampaElServicio(t *testing.T) {
	logger.New(logger.Config{Env: "production", Level: "info", Service: "inventario-api"})

	var buf bytes.Buffer
	sub := log.Logger.Output(&buf)
	sub.Info().Msg("arranque")

	assert.Contains(t, buf.String(), `"servicio":"inventario-api"`)
	assert.Contains(t, buf.String(), `"arranque"`)
}
