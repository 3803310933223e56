package monitor

import (
	"context"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/timewatch/internal/constants"
	"github.com/hyp3rd/timewatch/internal/sentinel"
	"github.com/hyp3rd/timewatch/stats"
)

// MonitorAppender republishes each sealed statistics slice through a
// registered monitor. It holds no threshold logic of its own: range checks
// run inside the monitor, reusing the parsed configurations.
type MonitorAppender struct {
	// configuration options
	monitorName            string
	tagNamesToExpose       string
	notificationThresholds string
	registry               *Registry

	// state
	monitor *Monitor
}

// MonitorOption configures a MonitorAppender.
type MonitorOption func(*MonitorAppender)

// WithMonitorName sets the object name the monitor registers under.
// Defaults to "timewatch:type=StatisticsMonitor,name=Timewatch".
func WithMonitorName(name string) MonitorOption {
	return func(ma *MonitorAppender) { ma.monitorName = name }
}

// WithTagNamesToExpose sets the comma-separated list of tag names whose
// statistic values (mean, min, max, ...) are exposed as monitor attributes.
// Required.
func WithTagNamesToExpose(tagNames string) MonitorOption {
	return func(ma *MonitorAppender) { ma.tagNamesToExpose = tagNames }
}

// WithNotificationThresholds sets the comma-separated list of acceptable
// range configurations, each of the form attrName(<value), attrName(>value)
// or attrName(min-max). A notification is raised when an attribute falls
// outside its range, e.g.:
//
//	dbCallMean(<100),dbCallMax(<1000),fileWriteMean(5-200),fileWriteTPS(>1)
func WithNotificationThresholds(thresholds string) MonitorOption {
	return func(ma *MonitorAppender) { ma.notificationThresholds = thresholds }
}

// WithRegistry sets the registry the monitor registers with. Defaults to the
// process-wide DefaultRegistry.
func WithRegistry(registry *Registry) MonitorOption {
	return func(ma *MonitorAppender) { ma.registry = registry }
}

// NewMonitorAppender creates an unstarted monitor appender with the given
// options. Configuration is validated on Start.
func NewMonitorAppender(opts ...MonitorOption) *MonitorAppender {
	ma := &MonitorAppender{
		monitorName: constants.DefaultMonitorName,
		registry:    DefaultRegistry,
	}
	for _, opt := range opts {
		opt(ma)
	}

	return ma
}

// Start validates the configuration, builds the monitor and registers it.
// It fails before any registration attempt when no tag names are configured,
// and propagates threshold parse errors and registration failures.
func (ma *MonitorAppender) Start() error {
	tagNames := splitAndTrim(ma.tagNamesToExpose)
	if len(tagNames) == 0 {
		return ewrap.Wrap(sentinel.ErrNoTagNames, "set the tag names to expose before starting this appender")
	}

	ranges, err := ParseThresholds(ma.notificationThresholds)
	if err != nil {
		return err
	}

	ma.monitor = New(ma.monitorName, tagNames, ranges)

	err = ma.registry.Register(ma.monitorName, ma.monitor)
	if err != nil {
		return ewrap.Wrap(err, "registering statistics monitor")
	}

	return nil
}

// Append updates the monitor's current values with the sealed slice.
// A no-op before Start.
func (ma *MonitorAppender) Append(_ context.Context, slice *stats.Grouped) error {
	if ma.monitor != nil {
		ma.monitor.Update(slice)
	}

	return nil
}

// Stop unregisters the monitor, best effort. If we can't unregister it's not
// a big deal.
func (ma *MonitorAppender) Stop(_ context.Context) error {
	_ = ma.registry.Unregister(ma.monitorName)

	return nil
}

// Monitor returns the registered monitor, nil before Start.
func (ma *MonitorAppender) Monitor() *Monitor {
	return ma.monitor
}
