package bootstrap

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/grocerybot/core/config"
	coredatabase "github.com/m3rciful/grocerybot/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunWithoutDatabase(t *testing.T) {
	connected := false
	res, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			connected = true
			return nil, nil
		},
	})
	require.NoError(t, err)
	assert.Nil(t, res.DB)
	assert.False(t, connected)
}

func TestRunReportsConnectFailure(t *testing.T) {
	_, err := Run(Options{
		Config:     &coreconfig.Config{},
		Database:   &coredatabase.Config{Host: "db"},
		LoggerInit: noLogger,
		Connect: func(cfg coredatabase.Config) (*sqlx.DB, error) {
			assert.Equal(t, "db", cfg.Host)
			return nil, errors.New("refused")
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database initialization failed")
}

func TestRunRequiresConfig(t *testing.T) {
	_, err := Run(Options{})
	assert.Error(t, err)
}
