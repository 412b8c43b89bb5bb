// Command rc-lights reads RC receiver channels from GPIO and drives lights
// from them, falling back to safe outputs when the signal is lost.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sweeney/rc-lights/internal/actuator"
	"github.com/sweeney/rc-lights/internal/channel"
	"github.com/sweeney/rc-lights/internal/clock"
	"github.com/sweeney/rc-lights/internal/config"
	"github.com/sweeney/rc-lights/internal/gpio"
	"github.com/sweeney/rc-lights/internal/logic"
	"github.com/sweeney/rc-lights/internal/mqtt"
	"github.com/sweeney/rc-lights/internal/report"
	"github.com/sweeney/rc-lights/internal/sched"
	"github.com/sweeney/rc-lights/internal/status"
	"github.com/sweeney/rc-lights/internal/web"
)

type options struct {
	tick         time.Duration
	timeout      time.Duration
	report       time.Duration
	heartbeat    time.Duration
	broker       string
	clientID     string
	httpAddr     string
	chip         string
	roles        string
	glitchFilter bool
	validLow     uint
	validHigh    uint
	serialPort   string
	baud         int
	printRoles   bool
}

func main() {
	var o options
	flag.DurationVar(&o.tick, "tick", 10*time.Millisecond, "Actuation interval")
	flag.DurationVar(&o.timeout, "timeout", 500*time.Millisecond, "Failsafe after this long without a valid pulse")
	flag.DurationVar(&o.report, "report", time.Second, "Diagnostic line interval (0 to disable)")
	flag.DurationVar(&o.heartbeat, "heartbeat", 15*time.Minute, "MQTT heartbeat interval (0 to disable)")
	flag.StringVar(&o.broker, "broker", "", "MQTT broker address (empty to disable)")
	flag.StringVar(&o.clientID, "client-id", "rc-lights", "MQTT client ID")
	flag.StringVar(&o.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.StringVar(&o.chip, "chip", gpio.DefaultChip, "GPIO chip name")
	flag.StringVar(&o.roles, "roles", "", "Path to JSON role table (built-in table if empty)")
	flag.BoolVar(&o.glitchFilter, "glitch-filter", true, "Reject pulses outside --valid-low..--valid-high")
	flag.UintVar(&o.validLow, "valid-low", 900, "Shortest accepted pulse in µs")
	flag.UintVar(&o.validHigh, "valid-high", 2100, "Longest accepted pulse in µs")
	flag.StringVar(&o.serialPort, "serial", "", "Serial port for diagnostic lines (stdout if empty)")
	flag.IntVar(&o.baud, "baud", 115200, "Serial port baud rate")
	flag.BoolVar(&o.printRoles, "print-roles", false, "Print the effective role table and exit")

	flag.Parse()

	if err := run(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func (o options) validate() error {
	if o.tick <= 0 {
		return fmt.Errorf("--tick must be positive, got %v", o.tick)
	}
	if o.timeout <= 0 {
		return fmt.Errorf("--timeout must be positive, got %v", o.timeout)
	}
	if o.report < 0 || o.heartbeat < 0 {
		return errors.New("--report and --heartbeat must not be negative")
	}
	if o.glitchFilter && o.validLow >= o.validHigh {
		return fmt.Errorf("--valid-low (%d) must be below --valid-high (%d)", o.validLow, o.validHigh)
	}
	return nil
}

func (o options) filter() channel.Filter {
	return channel.Filter{Enabled: o.glitchFilter, Low: uint32(o.validLow), High: uint32(o.validHigh)}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFile(path)
}

func run(o options) error {
	if err := o.validate(); err != nil {
		return err
	}
	cfg, err := loadConfig(o.roles)
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	roles, err := cfg.Mapping()
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}

	if o.printRoles {
		return cfg.Write(os.Stdout)
	}

	store := channel.NewStore(cfg.Centers())
	capture := channel.NewCapture(store, o.filter())
	cycle := logic.NewCycle(roles, store, o.timeout)

	// Outputs start at their failsafe state before any edge is captured.
	bank, err := openBank(cfg, o.chip)
	if err != nil {
		return fmt.Errorf("init outputs: %w", err)
	}
	defer bank.Close()
	if err := bank.ApplyAll(cycle.SafeCommands()); err != nil {
		log.Printf("initial failsafe: %v", err)
	}

	edges := gpio.NewRealEdgeSource(o.chip, cfg.Inputs)
	if err := edges.Start(capture.HandleEdge); err != nil {
		return fmt.Errorf("init receiver inputs: %w", err)
	}
	defer edges.Close()

	var publisher mqtt.Publisher = mqtt.NopPublisher{}
	var mqttStatus mqtt.ConnectionStatus = mqtt.NopPublisher{}
	if o.broker != "" {
		p, err := mqtt.NewRealPublisher(o.broker, o.clientID)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		publisher, mqttStatus = p, p
	}
	defer publisher.Close()

	var reporter *report.Reporter
	if o.report > 0 {
		reporter = report.New(os.Stdout)
		if o.serialPort != "" {
			sink, err := report.OpenSerial(o.serialPort, o.baud)
			if err != nil {
				return err
			}
			defer sink.Close()
			reporter = sink.Reporter
		}
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:       o.tick.Milliseconds(),
		TimeoutMs:    o.timeout.Milliseconds(),
		ReportMs:     o.report.Milliseconds(),
		HeartbeatMs:  o.heartbeat.Milliseconds(),
		Broker:       o.broker,
		HTTPAddr:     o.httpAddr,
		GlitchFilter: o.glitchFilter,
		ValidLow:     uint32(o.validLow),
		ValidHigh:    uint32(o.validHigh),
	})

	log.Printf("started: tick=%v timeout=%v roles=%d channels=%d broker=%q filter=%v",
		o.tick, o.timeout, len(roles), store.Len(), o.broker, o.filter())

	ticker := time.NewTicker(o.tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	deps := loopDeps{
		cycle:      cycle,
		store:      store,
		bank:       bank,
		publisher:  publisher,
		mqttStatus: mqttStatus,
		tracker:    tracker,
		reporter:   reporter,
	}
	iv := intervals{tick: o.tick, report: o.report, heartbeat: o.heartbeat}

	g, ctx := errgroup.WithContext(context.Background())

	var srv *web.Server
	if o.httpAddr != "" {
		rolesJSON, err := encodeRoles(cfg)
		if err != nil {
			return err
		}
		srv = web.New(o.httpAddr, tracker, rolesJSON)
		g.Go(func() error {
			log.Printf("http status server listening on %s", o.httpAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		err := runLoop(deps, iv, clock.Monotonic, time.Now, ticker.C, sigCh, ctx.Done())
		if srv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}
		return err
	})

	return g.Wait()
}

// loopDeps is everything the run loop reads from or drives.
type loopDeps struct {
	cycle      *logic.Cycle
	store      *channel.Store
	bank       *actuator.Bank
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	reporter   *report.Reporter // nil disables diagnostic lines
}

type intervals struct {
	tick      time.Duration
	report    time.Duration
	heartbeat time.Duration
}

// runLoop drives the cooperative scheduler from tick until a signal arrives
// or done is closed. mono must share the time base of the edge timestamps.
func runLoop(d loopDeps, iv intervals, mono clock.Func, wall func() time.Time, tick <-chan time.Time, sig <-chan os.Signal, done <-chan struct{}) error {
	s := sched.New()
	s.SetSlack(iv.tick / 2)
	start := mono()

	publishSystem(d, wall, "STARTUP", "")

	s.Every("actuate", iv.tick, start, func(now time.Duration) {
		actuate(d, now, wall)
	})

	if d.reporter != nil && iv.report > 0 {
		var buf []channel.Sample
		s.Every("report", iv.report, start, func(time.Duration) {
			buf = d.store.Snapshot(buf[:0])
			d.reporter.Report(buf, d.cycle.Mode())
		})
	}

	if iv.heartbeat > 0 {
		s.Every("heartbeat", iv.heartbeat, start+iv.heartbeat, func(time.Duration) {
			c := d.cycle.Counts()
			log.Printf("heartbeat: mode=%s ticks=%d failsafe_entries=%d", d.cycle.Mode(), c.Ticks, c.FailsafeEntries)
			publishSystem(d, wall, "HEARTBEAT", "")
		})
	}

	for {
		select {
		case sg := <-sig:
			shutdown(d, wall, signalName(sg))
			return nil

		case <-done:
			shutdown(d, wall, "STOPPED")
			return nil

		case <-tick:
			s.Execute(mono())
		}
	}
}

// actuate runs one actuation cycle and reports its outcome.
func actuate(d loopDeps, now time.Duration, wall func() time.Time) {
	frame := d.cycle.Step(now)

	if tr := frame.Transition; tr != nil {
		log.Printf("signal: %s -> %s (mode %s)", tr.From, tr.To, frame.Mode)
		if ev, ok := mqtt.NewSignalEvent(wall(), *tr, frame.Mode, frame.Samples); ok {
			if err := d.publisher.PublishSignal(ev); err != nil {
				log.Printf("signal publish error: %v", err)
			}
		}
	}

	// Failures are logged by the bank when an output starts or stops failing.
	d.bank.ApplyAll(frame.Commands)

	if d.tracker == nil {
		return
	}
	mon := d.cycle.Monitor()
	chans := status.Channels(frame.Samples, d.store.AllCounts(), func(s channel.Sample) bool {
		return mon.SampleFresh(s.Captured, s.At, now)
	})
	d.tracker.Update(frame, d.cycle.Health(), d.cycle.Counts(), chans)
	d.tracker.SetFailing(d.bank.Failing())
	if d.mqttStatus != nil {
		d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
	}
}

// shutdown leaves every actuator at its failsafe state and announces the stop.
func shutdown(d loopDeps, wall func() time.Time, reason string) {
	log.Printf("shutting down: %s", reason)
	if err := d.bank.ApplyAll(d.cycle.SafeCommands()); err != nil {
		log.Printf("failsafe on shutdown: %v", err)
	}
	publishSystem(d, wall, "SHUTDOWN", reason)
}

// publishSystem sends a retained lifecycle event carrying a status snapshot.
func publishSystem(d loopDeps, wall func() time.Time, name, reason string) {
	event := mqtt.SystemEvent{
		Timestamp: wall(),
		Event:     name,
		Reason:    reason,
		Retained:  true,
	}
	if d.tracker != nil {
		if d.mqttStatus != nil {
			d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
		}
		event.RawPayload = status.FormatStatusEvent(d.tracker.Snapshot(), name, reason)
	}
	if err := d.publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish %s event: %v", name, err)
		return
	}
	log.Printf("published %s event", name)
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
