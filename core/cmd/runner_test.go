package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/grocerybot/core/config"
	coretelegram "github.com/m3rciful/grocerybot/core/telegram"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type fakeApp struct {
	calls *[]string
}

func (a fakeApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{
		OnStart: func(context.Context, coretelegram.Runtime) error {
			*a.calls = append(*a.calls, "start")
			return nil
		},
		OnStop: func(context.Context, coretelegram.Runtime) error {
			*a.calls = append(*a.calls, "stop")
			return nil
		},
	}, nil
}

func TestRunWiresLifecycleHooks(t *testing.T) {
	var calls []string
	var loadedFrom string
	err := Run(Options{
		ConfigEnvVar:      "GROCERYBOT_TEST_CONFIG_UNSET",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			loadedFrom = path
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(ConfigCarrier) (TelegramApp, error) {
			return fakeApp{calls: &calls}, nil
		},
		ShutdownLogger: func() error {
			calls = append(calls, "logger")
			return nil
		},
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			require.NoError(t, opts.OnStart(ctx, coretelegram.Runtime{}))
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", loadedFrom)
	assert.Equal(t, []string{"start", "stop", "logger"}, calls)
}

func TestRunFlushesLoggerWhenBootstrapFails(t *testing.T) {
	flushed := false
	boom := errors.New("db down")
	err := Run(Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) {
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap:      func(ConfigCarrier) (TelegramApp, error) { return nil, boom },
		ShutdownLogger: func() error { flushed = true; return nil },
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, flushed)
}

func TestRunRequiresLoaders(t *testing.T) {
	assert.ErrorContains(t, Run(Options{}), "LoadConfig is required")
}
