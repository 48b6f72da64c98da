package telemetry

import "log/slog"

var setupTestEnvironments = map[string]bool{}

// SetupForTesting enables debug logging once per named test environment.
// Tests run on the no-op otel providers, so there is nothing to tear
// down; the returned cleanup exists to mirror the production setup shape.
func SetupForTesting(serviceName string) func() {
	if setupTestEnvironments[serviceName] {
		return func() {}
	}
	setupTestEnvironments[serviceName] = true

	InitSlog(true)
	slog.Debug("telemetry test environment ready", "service", serviceName)
	return func() {}
}
