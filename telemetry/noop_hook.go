package telemetry

import "context"

// NoopHook is a no operation telemetry hook.
func NoopHook(ctx context.Context, d *Data) {
	// noop
}
