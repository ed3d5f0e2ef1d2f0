package telemetry

import (
	"fmt"
	"runtime"

	"github.com/grafana/pyroscope-go"
)

// ProfilingConfig contains configuration for Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled bool

	// ServiceName is the application name shown in Pyroscope
	ServiceName string

	ServiceVersion string

	// Node is the server identity; profiles of several apiserve instances
	// feeding one Pyroscope are told apart by it.
	Node string

	// Secure reports whether the listener serves TLS.
	Secure bool

	// Endpoint is the Pyroscope server URL (e.g., "http://localhost:4040")
	Endpoint string

	// ProfileTypes lists the profiles to collect, by their config names.
	ProfileTypes []string
}

// profileTypes maps config names to Pyroscope profile types.
var profileTypes = map[string]pyroscope.ProfileType{
	"cpu":            pyroscope.ProfileCPU,
	"alloc_objects":  pyroscope.ProfileAllocObjects,
	"alloc_space":    pyroscope.ProfileAllocSpace,
	"inuse_objects":  pyroscope.ProfileInuseObjects,
	"inuse_space":    pyroscope.ProfileInuseSpace,
	"goroutines":     pyroscope.ProfileGoroutines,
	"mutex_count":    pyroscope.ProfileMutexCount,
	"mutex_duration": pyroscope.ProfileMutexDuration,
	"block_count":    pyroscope.ProfileBlockCount,
	"block_duration": pyroscope.ProfileBlockDuration,
}

// sampling rate handed to the runtime for mutex and block profiles
const contentionRate = 5

var (
	profiler         *pyroscope.Profiler
	profilingEnabled bool
)

// InitProfiling starts Pyroscope continuous profiling. The returned
// function stops the profiler.
func InitProfiling(cfg ProfilingConfig) (shutdown func() error, err error) {
	profilingEnabled = false
	if !cfg.Enabled {
		return func() error { return nil }, nil
	}

	types := make([]pyroscope.ProfileType, 0, len(cfg.ProfileTypes))
	for _, name := range cfg.ProfileTypes {
		pt, err := parseProfileType(name)
		if err != nil {
			return nil, fmt.Errorf("invalid profile type %q: %w", name, err)
		}
		types = append(types, pt)
	}

	mutex, block := contentionProfiles(types)
	if mutex {
		runtime.SetMutexProfileFraction(contentionRate)
	}
	if block {
		runtime.SetBlockProfileRate(contentionRate)
	}

	profiler, err = pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ServiceName,
		ServerAddress:   cfg.Endpoint,
		Tags:            profileTags(cfg),
		ProfileTypes:    types,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}
	profilingEnabled = true

	return func() error {
		if profiler != nil {
			return profiler.Stop()
		}
		return nil
	}, nil
}

// IsProfilingEnabled returns whether profiling is enabled
func IsProfilingEnabled() bool {
	return profilingEnabled
}

// profileTags labels every uploaded profile.
func profileTags(cfg ProfilingConfig) map[string]string {
	tags := map[string]string{
		"service": "apiserve",
		"version": cfg.ServiceVersion,
		"scheme":  "http",
	}
	if cfg.Secure {
		tags["scheme"] = "https"
	}
	if cfg.Node != "" {
		tags["node"] = cfg.Node
	}
	return tags
}

// contentionProfiles reports whether mutex or block profiles were requested;
// the runtime records neither unless a rate is set.
func contentionProfiles(types []pyroscope.ProfileType) (mutex, block bool) {
	for _, pt := range types {
		switch pt {
		case pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration:
			mutex = true
		case pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration:
			block = true
		}
	}
	return mutex, block
}

// parseProfileType converts a config name to a Pyroscope ProfileType.
func parseProfileType(name string) (pyroscope.ProfileType, error) {
	pt, ok := profileTypes[name]
	if !ok {
		return "", fmt.Errorf("unknown profile type: %s", name)
	}
	return pt, nil
}
