package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
}

func TestSetupFromEnvMissingConfig(t *testing.T) {
	chdir(t, t.TempDir())

	tel, err := SetupFromEnv(context.Background(), "test:telemetry")
	require.NoError(t, err)
	// exporting stays disabled; Shutdown is a no-op
	require.Nil(t, tel.TracerProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestSetupFromEnvBadConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "telemetry.json5"),
		[]byte(`{otlp: {traces: `),
		0o644,
	))
	chdir(t, dir)

	_, err := SetupFromEnv(context.Background(), "test:telemetry")
	require.Error(t, err)
}
