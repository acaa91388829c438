// SPDX-License-Identifier: LGPL-2.1-or-later

//go:build linux

// elogind-core is the reference daemon wiring the core library together:
// config, persistence, the udev and evdev sources, the inhibitor fifos,
// Prometheus metrics and the single-threaded event loop. Bus method
// dispatch stays out; bus glue embeds the manager the same way this
// binary does.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/markhindley/elogind/internal/busnames"
	"github.com/markhindley/elogind/internal/config"
	"github.com/markhindley/elogind/internal/dock/sysfsdrm"
	"github.com/markhindley/elogind/internal/elog"
	"github.com/markhindley/elogind/internal/eventloop"
	"github.com/markhindley/elogind/internal/evdevsource"
	"github.com/markhindley/elogind/internal/hotplug"
	"github.com/markhindley/elogind/internal/inhibit"
	"github.com/markhindley/elogind/internal/manager"
	"github.com/markhindley/elogind/internal/metrics"
	"github.com/markhindley/elogind/internal/persist"
	"github.com/markhindley/elogind/internal/powerops"
	"github.com/markhindley/elogind/internal/procsession"
	"github.com/markhindley/elogind/internal/registry"
	"github.com/markhindley/elogind/internal/sdnotify"
	"github.com/markhindley/elogind/internal/seatmodel"
	"github.com/markhindley/elogind/internal/udevsource"
	"github.com/markhindley/elogind/internal/vtprobe"
)

var version = "dev"

type options struct {
	Config     string `short:"c" long:"config" description:"path to config file (YAML)" default:"/etc/elogind/elogind.yaml"`
	RuntimeDir string `long:"runtime-dir" description:"override the runtime state directory"`
	Version    bool   `short:"V" long:"version" description:"print version and exit"`
}

// logOnlyRunner stands in for the privileged sleep/poweroff helper, which
// is an external collaborator. It records the decision; nothing powers
// off under the reference binary.
type logOnlyRunner struct{}

func (logOnlyRunner) Run(action config.HandleAction) error {
	elog.WithComponent("daemon").Info().Str("action", string(action)).Msg("power action delegated to helper")
	return nil
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "elogind-core: %v\n", err)
		os.Exit(1)
	}
	if opts.RuntimeDir != "" {
		cfg.RuntimeDir = opts.RuntimeDir
	}

	elog.Configure(elog.Config{Level: cfg.LogLevel, Version: version})
	log := elog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := &persist.Store{Dir: cfg.RuntimeDir}
	if err := store.EnsureLayout(); err != nil {
		log.Error().Err(err).Msg("cannot create runtime directory")
		os.Exit(1)
	}

	holder := config.NewHolder(cfg, opts.Config)
	reg := registry.New(registry.Limits{})
	names := busnames.New()

	resolver := &procsession.Resolver{
		Classifier: &procsession.ProcCGroupClassifier{},
		Reg:        reg,
	}
	engine := inhibit.New(resolver)

	m := metrics.New()
	if err := m.Register(prometheus.DefaultRegisterer); err != nil {
		log.Warn().Err(err).Msg("metrics registration failed")
	}

	opener := &buttonOpener{inner: &evdevsource.Opener{}}
	disp := hotplug.New(reg, seatLogger{}, opener)

	fifos := &manager.FifoMaker{Dir: cfg.RuntimeDir}
	mgr := manager.New(holder, reg, engine, names, disp, store, m, fifos)
	mgr.Gate = powerops.New(engine, powerops.Config{
		InhibitDelayMax: cfg.InhibitDelayMax(),
		HoldoffTimeout:  cfg.HoldoffTimeout(),
	})
	mgr.DRM = &sysfsdrm.Enumerator{}
	mgr.Actions = logOnlyRunner{}
	mgr.VT = &vtprobe.Prober{Querier: &vtprobe.TTYQuerier{}}

	loop := eventloop.New(mgr, 10*time.Second)

	g, ctx := errgroup.WithContext(ctx)

	// Late-bind the button-event pump: every evdev fd the dispatcher opens
	// gets a reader feeding key and switch events back through the loop.
	opener.start = func(sysname string, fd seatmodel.ButtonFd) {
		reader := &evdevsource.Reader{Submit: loop.Submit, Sink: mgr}
		g.Go(func() error {
			reader.Run(ctx, sysname, fd)
			return nil
		})
	}

	g.Go(func() error { return loop.Run(ctx) })
	g.Go(func() error { return holder.Watch(ctx) })
	g.Go(func() error {
		sdnotify.Watchdog(ctx)
		return nil
	})

	monitor, err := udevsource.NewMonitor()
	if err != nil {
		log.Warn().Err(err).Msg("udev monitor unavailable, running without hot-plug events")
	} else {
		defer monitor.Close()
		g.Go(func() error { return monitor.Run(ctx, loop.SubmitEvent) })
	}

	// Restore persisted state on the loop before announcing readiness.
	restored := make(chan struct{})
	loop.Submit(func() {
		mgr.RestoreState(fifos.Reopen)
		for _, inh := range engine.All() {
			if r, ok := inh.Fifo.(io.Reader); ok {
				loop.WatchFifo(ctx, inh.ID, r)
			}
		}
		close(restored)
	})
	select {
	case <-restored:
	case <-ctx.Done():
	}
	sdnotify.Ready()

	log.Info().Str("version", version).Str("runtime_dir", cfg.RuntimeDir).Msg("elogind-core running")

	err = g.Wait()
	sdnotify.Stopping()
	if err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("daemon exited with error")
		os.Exit(1)
	}
	log.Info().Msg("daemon stopped")
}

// buttonOpener wraps the evdev opener so every successfully opened button
// fd also gets an event reader attached.
type buttonOpener struct {
	inner *evdevsource.Opener
	start func(sysname string, fd seatmodel.ButtonFd)
}

func (o *buttonOpener) Open(sysname string) (seatmodel.ButtonFd, error) {
	fd, err := o.inner.Open(sysname)
	if err != nil {
		return nil, err
	}
	if o.start != nil {
		o.start(sysname, fd)
	}
	return fd, nil
}

// seatLogger is the reference SeatStarter: starting greeters is session
// management outside the core, so the reference binary only logs it.
type seatLogger struct{}

func (seatLogger) StartSeat(seatID string) {
	elog.WithComponent("daemon").Info().Str("seat", seatID).Msg("seat started")
}
