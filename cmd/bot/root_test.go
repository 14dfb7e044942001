package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shlee-lab/telegram-simple-llm-bot/internal/domain"
)

func TestVersionCommand(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	req.NoError(rootCmd.Execute())
	req.Equal("telegram-llm-bot dev\n", out.String())
}

func TestRun_FailsFastWithoutCredentials(t *testing.T) {
	req := require.New(t)
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("GEMINI_API_KEY", "")
	envFile = t.TempDir() + "/absent.env"
	t.Cleanup(func() { envFile = ".env" })

	err := run(t.Context())

	var cfgErr *domain.ConfigError
	req.ErrorAs(err, &cfgErr)
	req.Equal("TELEGRAM_TOKEN", cfgErr.Key)
}
