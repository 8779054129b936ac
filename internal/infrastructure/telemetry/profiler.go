package telemetry

import (
	"fmt"
	"os"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilingConfig holds Pyroscope continuous profiling settings
type ProfilingConfig struct {
	Enabled       bool
	ServerAddress string // e.g. http://pyroscope:4040
	BasicAuthUser string
	BasicAuthPass string
}

// profileTypes covers CPU, heap and goroutines. Mutex and block profiles need
// runtime sampling rates that cost too much on the workflow hot path.
var profileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseObjects,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
}

func startProfiler(cfg ProfilingConfig, application string, logger *zap.Logger) (*pyroscope.Profiler, error) {
	if cfg.ServerAddress == "" {
		return nil, fmt.Errorf("profiling server address is required when profiling is enabled")
	}

	tags := map[string]string{}
	if host := os.Getenv("HOSTNAME"); host != "" {
		tags["hostname"] = host
	}
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   application,
		ServerAddress:     cfg.ServerAddress,
		BasicAuthUser:     cfg.BasicAuthUser,
		BasicAuthPassword: cfg.BasicAuthPass,
		Logger:            pyroscopeLogger{logger.Named("pyroscope").Sugar()},
		Tags:              tags,
		ProfileTypes:      profileTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start profiler: %w", err)
	}
	logger.Info("Continuous profiling started",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("application", application),
	)
	return profiler, nil
}

type pyroscopeLogger struct {
	log *zap.SugaredLogger
}

func (l pyroscopeLogger) Infof(format string, args ...any)  { l.log.Infof(format, args...) }
func (l pyroscopeLogger) Debugf(format string, args ...any) { l.log.Debugf(format, args...) }
func (l pyroscopeLogger) Errorf(format string, args ...any) { l.log.Errorf(format, args...) }
