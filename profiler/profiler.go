// Package profiler assembles the timing pipeline behind a single handle:
// stop watch factory, coalescing appender, statistics monitor and the
// optional management and metrics HTTP surfaces.
package profiler

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/timewatch"
	"github.com/hyp3rd/timewatch/appender"
	"github.com/hyp3rd/timewatch/monitor"
)

// Profiler wires the whole timing pipeline behind one handle: stop watches
// started from it log through the timing logger and feed the coalescing
// appender, whose sealed slices update the registered statistics monitor and
// any extra downstream appenders. The management and metrics HTTP surfaces
// start when their bind addresses are configured.
type Profiler struct {
	cfg      *timewatch.Config
	logger   *logrus.Logger
	registry *monitor.Registry

	extraDownstreams []appender.Appender

	monitorAppender *monitor.MonitorAppender
	coalescing      *appender.AsyncCoalescing
	mgmt            *timewatch.ManagementHTTPServer
	metrics         *timewatch.MetricsHTTPServer
	factory         *timewatch.Factory
}

// Option configures a Profiler.
type Option func(*Profiler)

// WithLogger sets the logger the timing and statistics records go through.
// Defaults to the logrus standard logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(p *Profiler) { p.logger = logger }
}

// WithMonitorRegistry sets the registry the statistics monitor registers
// with. Defaults to the process-wide monitor.DefaultRegistry.
func WithMonitorRegistry(registry *monitor.Registry) Option {
	return func(p *Profiler) { p.registry = registry }
}

// WithAppenders adds downstream appenders receiving every sealed slice
// alongside the monitor and the statistics log.
func WithAppenders(appenders ...appender.Appender) Option {
	return func(p *Profiler) { p.extraDownstreams = append(p.extraDownstreams, appenders...) }
}

// New validates the configuration, registers the statistics monitor
// and starts the coalescing pipeline plus the configured HTTP surfaces.
func New(ctx context.Context, cfg *timewatch.Config, opts ...Option) (*Profiler, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	p := &Profiler{
		cfg:      cfg,
		registry: monitor.DefaultRegistry,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = logrus.StandardLogger()
	}

	p.monitorAppender = monitor.NewMonitorAppender(
		monitor.WithMonitorName(cfg.MonitorName),
		monitor.WithTagNamesToExpose(cfg.TagNamesToExpose),
		monitor.WithNotificationThresholds(cfg.NotificationThresholds),
		monitor.WithRegistry(p.registry),
	)

	err = p.monitorAppender.Start()
	if err != nil {
		return nil, err
	}

	downstreams := append([]appender.Appender{
		p.monitorAppender,
		appender.NewLog(p.logger, cfg.LoggerName, cfg.Level),
	}, p.extraDownstreams...)

	p.coalescing, err = appender.NewAsyncCoalescing(
		appender.WithTimeSlice(cfg.TimeSlice),
		appender.WithQueueSize(cfg.QueueSize),
		appender.WithDownstream(downstreams...),
	)
	if err != nil {
		_ = p.monitorAppender.Stop(ctx)

		return nil, err
	}

	p.coalescing.Start(ctx)

	err = p.startHTTP(ctx)
	if err != nil {
		// the management server may already be listening
		if p.mgmt != nil {
			_ = p.mgmt.Shutdown(ctx)
		}

		_ = p.coalescing.Stop(ctx)

		return nil, err
	}

	p.factory = timewatch.NewFactory(timewatch.NewMultiRecorder(
		timewatch.NewLogRecorder(p.logger, cfg.LoggerName, cfg.Level),
		p.coalescing,
	))

	return p, nil
}

// startHTTP brings up the management and metrics servers for the addresses
// configured; an empty address disables the surface.
func (p *Profiler) startHTTP(ctx context.Context) error {
	if p.cfg.ManagementAddr != "" {
		p.mgmt = timewatch.NewManagementHTTPServer(p.cfg.ManagementAddr)

		err := p.mgmt.Start(ctx, p.registry)
		if err != nil {
			return err
		}
	}

	if p.cfg.MetricsAddr != "" {
		p.metrics = timewatch.NewMetricsHTTPServer(p.cfg.MetricsAddr, p.monitorAppender.Monitor())

		err := p.metrics.Start(ctx)
		if err != nil {
			return err
		}
	}

	return nil
}

// Start creates a started stop watch under the given tag, bound to the
// pipeline.
func (p *Profiler) Start(tag string) *timewatch.StopWatch {
	return p.factory.Start(tag)
}

// Factory returns the stop watch factory bound to the pipeline, for handing
// to timing decorators.
func (p *Profiler) Factory() *timewatch.Factory {
	return p.factory
}

// Monitor returns the registered statistics monitor.
func (p *Profiler) Monitor() *monitor.Monitor {
	return p.monitorAppender.Monitor()
}

// ManagementHTTPAddress returns the bound management address, empty when the
// surface is disabled or not started.
func (p *Profiler) ManagementHTTPAddress() string {
	if p.mgmt == nil {
		return ""
	}

	return p.mgmt.Address()
}

// MetricsHTTPAddress returns the bound metrics address, empty when the
// surface is disabled or not started.
func (p *Profiler) MetricsHTTPAddress() string {
	if p.metrics == nil {
		return ""
	}

	return p.metrics.Address()
}

// Stop drains and flushes the pipeline, unregisters the monitor and shuts
// down the HTTP surfaces.
func (p *Profiler) Stop(ctx context.Context) error {
	group := ewrap.NewErrorGroup()

	err := p.coalescing.Stop(ctx)
	if err != nil {
		group.Add(err)
	}

	if p.metrics != nil {
		err = p.metrics.Shutdown(ctx)
		if err != nil {
			group.Add(err)
		}
	}

	if p.mgmt != nil {
		err = p.mgmt.Shutdown(ctx)
		if err != nil {
			group.Add(err)
		}
	}

	return group.ErrorOrNil()
}
