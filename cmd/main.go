package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hyp3rd/timewatch"
	"github.com/hyp3rd/timewatch/middleware"
	"github.com/hyp3rd/timewatch/profiler"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := timewatch.NewConfig()
	cfg.TagNamesToExpose = "dbCall,fileWrite"
	cfg.NotificationThresholds = "dbCallMean(<100),fileWriteTPS(>1)"
	cfg.TimeSlice = 5 * time.Second
	cfg.ManagementAddr = ":6060"
	cfg.MetricsAddr = ":6061"

	err := run(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *timewatch.Config) error {
	logger := logrus.New()

	prof, err := profiler.New(ctx, cfg, profiler.WithLogger(logger))
	if err != nil {
		return err
	}

	logger.Infof("management http on %s, metrics on %s",
		prof.ManagementHTTPAddress(), prof.MetricsHTTPAddress())

	notifications := prof.Monitor().Subscribe()
	go func() {
		for n := range notifications {
			logger.Warnf("threshold violation: %s=%.1f outside %s", n.Attribute, n.Value, n.Range)
		}
	}()

	simulate(ctx, prof.Factory())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return prof.Stop(shutdownCtx)
}

// simulate produces timed work under the exposed tags until the context is
// canceled.
func simulate(ctx context.Context, factory *timewatch.Factory) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_ = middleware.Timed(ctx, factory, "dbCall", func(_ context.Context) error {
			time.Sleep(time.Duration(rand.Intn(40)+10) * time.Millisecond)

			return nil
		})

		_ = middleware.Timed(ctx, factory, "fileWrite", func(_ context.Context) error {
			time.Sleep(time.Duration(rand.Intn(15)+5) * time.Millisecond)

			return nil
		})
	}
}
