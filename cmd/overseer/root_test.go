package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OVERSEER_VARIANT",
		"OVERSEER_SUPERVISOR_URL",
		"OVERSEER_ORCHESTRATOR_URL",
		"OVERSEER_MONITOR_URL",
		"OVERSEER_MONITOR_HEALTH_PATH",
		"OVERSEER_REFRESH_STRATEGY",
		"OVERSEER_REFRESH_DELAY",
		"OVERSEER_LOG_LIMIT",
		"OVERSEER_HTTP_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

// services starts a fake supervisor, orchestrator and monitor and writes a
// config file pointing at them.
func services(t *testing.T, variant string) (configPath string, lastLimit func() string) {
	t.Helper()
	clearEnv(t)

	var limit atomic.Value
	limit.Store("")
	supervisor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusOK)
			return
		}
		_, _ = w.Write([]byte(`{"agent1":"done","agent2":"pending"}`))
	}))
	orchestrator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	monitor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit.Store(r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[{"id":1,"user_prompt":"status report","summary":"two agents reported","ai_outputs":{"agent1":"done"},"timestamp":"2026-10-15T09:00:00Z"}]`))
	}))
	t.Cleanup(supervisor.Close)
	t.Cleanup(orchestrator.Close)
	t.Cleanup(monitor.Close)

	content := fmt.Sprintf(`variant: %s
endpoints:
  supervisor:
    url: %s
  orchestrator:
    url: %s
  monitor:
    url: %s
`, variant, supervisor.URL, orchestrator.URL, monitor.URL)
	configPath = filepath.Join(t.TempDir(), ".overseer.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath, func() string { return limit.Load().(string) }
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetIn(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return output.String(), err
}

func TestStatusCommandHealthy(t *testing.T) {
	configPath, _ := services(t, "log")

	out, err := run(t, "status", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "supervisor")
	assert.Contains(t, out, "orchestrator")
	assert.Contains(t, out, "monitor")
	assert.NotContains(t, out, "error")
}

func TestStatusCommandUnhealthy(t *testing.T) {
	configPath, _ := services(t, "log")
	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()

	out, err := run(t, "status", "--config", configPath, "--orchestrator-url", down.URL)
	require.Error(t, err)

	var unhealthy *UnhealthyError
	require.True(t, errors.As(err, &unhealthy))
	assert.Equal(t, "1 of 3 services unhealthy", unhealthy.Message)
	assert.Contains(t, out, "error")
}

func TestStatusCommandResponseVariantProbesSupervisorOnly(t *testing.T) {
	configPath, _ := services(t, "log")

	out, err := run(t, "status", "--config", configPath, "--variant", "response")
	require.NoError(t, err)
	assert.Contains(t, out, "supervisor")
	assert.NotContains(t, out, "orchestrator")
}

func TestSubmitCommand(t *testing.T) {
	t.Run("response variant prints outputs", func(t *testing.T) {
		configPath, _ := services(t, "response")
		out, err := run(t, "submit", "--config", configPath, "status", "report")
		require.NoError(t, err)
		assert.Equal(t, "agent1: done\nagent2: pending\n", out)
	})

	t.Run("log variant confirms", func(t *testing.T) {
		configPath, _ := services(t, "log")
		out, err := run(t, "submit", "--config", configPath, "status report")
		require.NoError(t, err)
		assert.Equal(t, "submitted\n", out)
	})

	t.Run("blank prompt rejected", func(t *testing.T) {
		configPath, _ := services(t, "log")
		_, err := run(t, "submit", "--config", configPath, "   ")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "prompt is empty")
	})

	t.Run("no arguments without a terminal", func(t *testing.T) {
		configPath, _ := services(t, "log")
		_, err := run(t, "submit", "--config", configPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a terminal")
	})

	t.Run("no arguments reads interactively", func(t *testing.T) {
		configPath, _ := services(t, "response")
		orig := readPrompt
		t.Cleanup(func() { readPrompt = orig })
		readPrompt = func(io.Reader, io.Writer) (string, error) { return "status report", nil }

		out, err := run(t, "submit", "--config", configPath)
		require.NoError(t, err)
		assert.Equal(t, "agent1: done\nagent2: pending\n", out)
	})
}

func TestConsoleRequiresTerminal(t *testing.T) {
	configPath, _ := services(t, "log")
	_, err := run(t, "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")

	_, err = run(t, "console", "--config", configPath)
	require.Error(t, err)
}

func TestLogsCommand(t *testing.T) {
	configPath, limit := services(t, "log")

	out, err := run(t, "logs", "--config", configPath, "--limit", "3")
	require.NoError(t, err)
	assert.Equal(t, "3", limit())
	assert.Contains(t, out, "status report")
	assert.Contains(t, out, "two agents reported")

	_, err = run(t, "logs", "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, "10", limit())

	_, err = run(t, "logs", "--config", configPath, "--limit", "0")
	require.Error(t, err)
}

func TestInvalidConfiguration(t *testing.T) {
	configPath, _ := services(t, "log")

	_, err := run(t, "status", "--config", configPath, "--variant", "holographic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	var unhealthy *UnhealthyError
	assert.False(t, errors.As(err, &unhealthy))

	_, err = run(t, "status", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLogFileReceivesDebugOutput(t *testing.T) {
	configPath, _ := services(t, "log")
	logPath := filepath.Join(t.TempDir(), "overseer.log")

	_, err := run(t, "submit", "--config", configPath, "--log-file", logPath, "--debug", "hello")
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "configuration resolved")
}
