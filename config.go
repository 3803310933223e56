package timewatch

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/timewatch/internal/constants"
	"github.com/hyp3rd/timewatch/internal/sentinel"
	"github.com/hyp3rd/timewatch/monitor"
)

// Config wraps the configuration options to set up the timing pipeline: the
// monitor exposure, the coalescing window and the optional HTTP surfaces.
type Config struct {
	// MonitorName is the object name the statistics monitor registers under.
	MonitorName string `yaml:"monitorName"`
	// TagNamesToExpose is the comma-separated list of tag names whose
	// statistic values are exposed as monitor attributes. Required.
	TagNamesToExpose string `yaml:"tagNamesToExpose"`
	// NotificationThresholds is the comma-separated list of acceptable range
	// configurations, e.g. "dbCallMean(<100),fileWriteMean(5-200)".
	NotificationThresholds string `yaml:"notificationThresholds"`
	// TimeSlice is the aggregation window for grouped statistics.
	TimeSlice time.Duration `yaml:"timeSlice"`
	// QueueSize is the coalescing queue capacity.
	QueueSize int `yaml:"queueSize"`
	// LoggerName is the timing logger category.
	LoggerName string `yaml:"loggerName"`
	// Level is the severity-level name for timing log records. Unrecognized
	// names silently fall back to info.
	Level string `yaml:"level"`
	// ManagementAddr is the bind address of the management HTTP server,
	// empty disables it.
	ManagementAddr string `yaml:"managementAddr"`
	// MetricsAddr is the bind address of the Prometheus exposition server,
	// empty disables it.
	MetricsAddr string `yaml:"metricsAddr"`
}

// NewConfig returns a new Config with default values:
//   - MonitorName set to the default monitor object name
//   - TimeSlice set to 30 seconds
//   - QueueSize set to 1024
//   - LoggerName set to the default timing logger category
//
// Each of the above can be overridden in the YAML file or on the struct.
func NewConfig() *Config {
	return &Config{
		MonitorName: constants.DefaultMonitorName,
		TimeSlice:   constants.DefaultTimeSlice,
		QueueSize:   constants.DefaultQueueSize,
		LoggerName:  constants.DefaultLoggerName,
	}
}

// UnmarshalYAML decodes the configuration, parsing the time slice from its
// duration string form ("30s", "1m"). yaml.v3 has no native duration support.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type alias Config

	aux := struct {
		TimeSlice string `yaml:"timeSlice"`
		*alias
	}{alias: (*alias)(c)}

	err := node.Decode(&aux)
	if err != nil {
		return err
	}

	if aux.TimeSlice != "" {
		duration, err := time.ParseDuration(aux.TimeSlice)
		if err != nil {
			return ewrap.Wrap(err, "parsing time slice")
		}

		c.TimeSlice = duration
	}

	return nil
}

// LoadConfig reads a YAML configuration file over the defaults and validates
// the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ewrap.Wrap(err, "reading config file")
	}

	cfg := NewConfig()

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, ewrap.Wrap(err, "parsing config file")
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate applies the activation rules: tag names are required, the time
// slice must be positive and every notification threshold must parse.
func (c *Config) Validate() error {
	if c.TagNamesToExpose == "" {
		return ewrap.Wrap(sentinel.ErrNoTagNames, "tagNamesToExpose")
	}

	if c.TimeSlice <= 0 {
		return sentinel.ErrInvalidTimeSlice
	}

	_, err := monitor.ParseThresholds(c.NotificationThresholds)

	return err
}
