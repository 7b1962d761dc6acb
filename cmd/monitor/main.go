// cmd/monitor/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/inverter-monitor/internal/alerts"
	"github.com/tamzrod/inverter-monitor/internal/config"
	"github.com/tamzrod/inverter-monitor/internal/dashboard"
	"github.com/tamzrod/inverter-monitor/internal/logger"
	"github.com/tamzrod/inverter-monitor/internal/mqtt"
	"github.com/tamzrod/inverter-monitor/internal/poller"
	"github.com/tamzrod/inverter-monitor/internal/render"
	"github.com/tamzrod/inverter-monitor/internal/status"
	"github.com/tamzrod/inverter-monitor/internal/telemetry"
	"github.com/tamzrod/inverter-monitor/internal/writer"
)

// alertQueue buffers fired alerts between the poll loop and the MQTT publisher.
const alertQueue = 32

func main() {
	if len(os.Args) > 2 {
		fmt.Fprintln(os.Stderr, "usage: monitor [config.yaml]")
		os.Exit(2)
	}

	var cfgPath string
	if len(os.Args) == 2 {
		cfgPath = os.Args[1]
	}

	if err := run(cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "monitor: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath string) error {
	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	m := cfg.Monitor

	// the console owns stdout while it is drawing
	logOutput := cfg.Log.Output
	if m.Console.ConsoleEnabled() {
		logOutput = "stderr"
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		Debug:      cfg.Log.Debug,
		Output:     logOutput,
		TimeFormat: cfg.Log.TimeFormat,
	}); err != nil {
		return fmt.Errorf("logger init failed: %w", err)
	}

	log := logger.WithComponent("monitor")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Telemetry source
	// --------------------

	loc, err := time.LoadLocation(m.Timestamp.Location)
	if err != nil {
		return fmt.Errorf("timestamp location: %w", err)
	}

	fetcher, err := telemetry.NewClient(telemetry.Config{
		Endpoint: m.Endpoint,
		Timeout:  time.Duration(m.FetchTimeoutMs) * time.Millisecond,
		Parser:   telemetry.TimeParser{Layouts: m.Timestamp.Layouts, Location: loc},
	}, logger.WithComponent("telemetry"))
	if err != nil {
		return err
	}

	// --------------------
	// Renderers
	// --------------------

	mem := render.NewMemory(nil)
	renderers := render.Tee{mem}

	if m.Console.ConsoleEnabled() {
		renderers = append(renderers, render.NewConsole(os.Stdout, nil, m.Console.ClearScreen()))
	}

	var hub *render.Hub
	if m.WebSocket.Listen != "" {
		hub = render.NewHub(mem, logger.WithComponent("render.ws"))
		renderers = append(renderers, hub)
	}

	monitor := status.NewMonitor(nil, status.Thresholds{
		Slow: time.Duration(m.Connection.SlowAfterMs) * time.Millisecond,
		Lost: time.Duration(m.Connection.LostAfterMs) * time.Millisecond,
	})
	presenter := dashboard.NewPresenter(renderers, monitor)

	// --------------------
	// Poll loop
	// --------------------

	loop, err := poller.New(poller.Config{
		Tick:             time.Duration(m.Poll.TickMs) * time.Millisecond,
		InitialCountdown: m.Poll.InitialCountdown,
		RefreshCountdown: m.Poll.RefreshCountdown,
	}, fetcher, presenter, poller.WithLogger(logger.WithComponent("poller")))
	if err != nil {
		return err
	}

	// ---- alerts (optional) ----
	if m.Alerts.Enabled {
		closeAlerts, err := startAlerts(ctx, m.Alerts, loop)
		if err != nil {
			return err
		}
		defer closeAlerts()
	}

	// ---- status mirror (optional) ----
	if m.StatusMemory.Enabled {
		mirror, closeMirror, err := writer.Build(m.StatusMemory, logger.WithComponent("writer"))
		if err != nil {
			return fmt.Errorf("status memory: %w", err)
		}
		defer func() { _ = closeMirror() }()
		loop.OnFrame(mirror.Observe)
	}

	// ---- websocket endpoint (optional) ----
	var srv *http.Server
	if hub != nil {
		hub.Start(ctx)
		srv = serve(m.WebSocket, hub, mem, log)
	}

	if err := loop.Start(ctx); err != nil {
		return err
	}

	// SIGHUP re-arms the countdown and fetches sooner
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go restartOn(ctx, hup, loop, log)

	log.Info().
		Str("endpoint", m.Endpoint).
		Bool("alerts", m.Alerts.Enabled).
		Bool("status_memory", m.StatusMemory.Enabled).
		Str("websocket", m.WebSocket.Listen).
		Msg("monitor started")

	// --------------------
	// Run until signalled
	// --------------------

	<-ctx.Done()
	log.Info().Msg("shutting down")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("http shutdown")
		}
		hub.Wait()
	}

	loop.Wait()
	return nil
}

func startAlerts(ctx context.Context, ac config.AlertsConfig, loop *poller.Loop) (func(), error) {
	client, err := mqtt.NewClient(mqtt.ClientConfig{
		Broker:         ac.Broker,
		ClientID:       ac.ClientID,
		Username:       ac.Username,
		Password:       ac.Password,
		ConnectTimeout: time.Duration(ac.ConnectTimeoutMs) * time.Millisecond,
	}, logger.WithComponent("mqtt"))
	if err != nil {
		return nil, err
	}

	queue := make(chan alerts.Alert, alertQueue)

	engine := alerts.NewEngine(alerts.Config{
		Cooldown: time.Duration(ac.CooldownMs) * time.Millisecond,
	}, queue, logger.WithComponent("alerts"))
	loop.OnFrame(engine.Observe)

	pub := mqtt.NewPublisher(client.Native(), mqtt.PublisherConfig{
		Topic: ac.Topic,
		QoS:   ac.QoS,
	}, queue, logger.WithComponent("mqtt"))

	// the publisher has its own context so a failed startup can stop it
	// before the signal context is released
	pctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		pub.Start(pctx)
	}()

	return func() {
		cancel()
		<-done
		client.Close()
	}, nil
}

type restarter interface {
	Restart()
}

// restartOn restarts the poll loop on every signal until ctx is done.
func restartOn(ctx context.Context, sig <-chan os.Signal, r restarter, log zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-sig:
			log.Info().Str("signal", s.String()).Msg("poll loop restart requested")
			r.Restart()
		}
	}
}

func serve(wc config.WebSocketConfig, hub *render.Hub, mem *render.Memory, log zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(wc.Path, hub)
	mux.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(mem.State()); err != nil {
			log.Warn().Err(err).Msg("state encode failed")
		}
	})

	srv := &http.Server{
		Addr:              wc.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("listen", wc.Listen).Msg("http server failed")
		}
	}()

	return srv
}
