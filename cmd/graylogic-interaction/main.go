// Gray Logic Interaction - door animation service
//
// This is the main entry point for the interaction service. It loads a
// scene stage, discovers and classifies the doors in every room, and
// animates them on request from the REST API, WebSocket clients or MQTT.
//
// For configuration, see: configs/config.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/gray-logic-interaction/internal/animation"
	"github.com/nerrad567/gray-logic-interaction/internal/api"
	"github.com/nerrad567/gray-logic-interaction/internal/audit"
	"github.com/nerrad567/gray-logic-interaction/internal/core"
	"github.com/nerrad567/gray-logic-interaction/internal/frame"
	"github.com/nerrad567/gray-logic-interaction/internal/history"
	"github.com/nerrad567/gray-logic-interaction/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-interaction/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-interaction/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-interaction/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-interaction/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-interaction/internal/notify"
	"github.com/nerrad567/gray-logic-interaction/internal/stage"
	"github.com/nerrad567/gray-logic-interaction/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

const (
	pruneInterval  = time.Hour
	reportInterval = 30 * time.Second
	eventQueueSize = 256
)

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Logic Interaction",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	applied, err := db.Migrate(ctx, migrations.FS)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations complete", "applied", applied)
	historyRepo := history.NewSQLiteRepository(db.DB)
	auditRepo := audit.NewSQLiteRepository(db.DB)

	// Load the stage and build the door inventory
	c, err := core.Load(cfg, log)
	if err != nil {
		return err
	}
	log.Info("stage loaded",
		"file", cfg.Stage.File,
		"doors", len(c.Inventory.Doors()),
		"light_root", c.Lights.Root(),
	)

	if cfg.Stage.Watch {
		watcher, watchErr := startWatcher(ctx, cfg, c, log)
		if watchErr != nil {
			return fmt.Errorf("starting stage watcher: %w", watchErr)
		}
		defer func() {
			if closeErr := watcher.Close(); closeErr != nil {
				log.Error("error closing stage watcher", "error", closeErr)
			}
		}()
	}

	dispatcher := notify.NewDispatcher(eventQueueSize)
	dispatcher.SetLogger(log.Component("notify"))
	dispatcher.Add("history", notify.NewHistorySink(historyRepo))

	checks := map[string]api.HealthCheck{"database": db.HealthCheck}

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.Component("mqtt"))
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		dispatcher.Add("mqtt", notify.NewStatePublisher(mqttClient, c.Lights))

		recorder := audit.NewRecorder(c.Commands, auditRepo, audit.SourceMQTT)
		recorder.SetLogger(log.Component("audit"))
		listener := notify.NewCommandListener(mqttClient, recorder, byte(cfg.MQTT.QoS))
		listener.SetLogger(log.Component("commands"))
		if startErr := listener.Start(); startErr != nil {
			return fmt.Errorf("subscribing to door commands: %w", startErr)
		}
		defer func() {
			if stopErr := listener.Stop(); stopErr != nil {
				log.Warn("error unsubscribing door commands", "error", stopErr)
			}
		}()
		checks["mqtt"] = mqttClient.HealthCheck
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		dispatcher.Add("influxdb", notify.NewMetricsSink(influxClient))
		checks["influxdb"] = influxClient.HealthCheck
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start the API server with an externally run hub so events can be
	// broadcast before the first client connects.
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)
	dispatcher.Add("websocket", notify.NewBroadcastSink(hub, c.Lights))

	server, err := api.New(api.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Security:  cfg.Security,
		Logger:    log.Component("api"),
		Inventory: c.Inventory,
		Commands:  c.Commands,
		Sessions:  c.Controller,
		Lights:    c.Lights,
		History:   historyRepo,
		Audit:     auditRepo,
		Checks:    checks,
		Hub:       hub,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Event fan-out, then the frame loop that produces the events
	c.Controller.AddObserver(dispatcher)
	if startErr := dispatcher.Start(ctx); startErr != nil {
		return fmt.Errorf("starting event dispatcher: %w", startErr)
	}
	defer dispatcher.Stop()

	loop := frame.New(c.Controller, cfg.GetFrameInterval())
	if startErr := loop.Start(ctx); startErr != nil {
		return fmt.Errorf("starting frame loop: %w", startErr)
	}
	defer loop.Stop()
	log.Info("frame loop started", "interval", loop.Interval())

	m := &maintenance{
		log:       log.Component("maintenance"),
		history:   historyRepo,
		retention: time.Duration(cfg.Database.HistoryRetention) * 24 * time.Hour,
		sessions:  c.Controller,
		frames:    loop.Frames,
		site:      cfg.Site.ID,
	}
	if influxClient != nil {
		m.metrics = influxClient
	}
	go m.run(ctx, pruneInterval, reportInterval)

	// Verify all connections are healthy
	if err := healthCheck(ctx, checks); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order: frame loop, dispatcher (drains
	// queued events), API, InfluxDB, MQTT, stage watcher, database.

	log.Info("Gray Logic Interaction stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// startWatcher reloads the stage on file changes and refreshes the
// inventory and light root after each successful reload.
func startWatcher(ctx context.Context, cfg *config.Config, c *core.Core, log *logging.Logger) (*stage.Watcher, error) {
	w, err := stage.NewWatcher(cfg.Stage.File, c.Stage, cfg.GetWatchDebounce())
	if err != nil {
		return nil, err
	}
	w.SetLogger(log.Component("watcher"))
	w.OnReload(func() {
		doors := c.Refresh()
		log.Info("stage reloaded", "doors", doors, "light_root", c.Lights.Root())
	})

	go func() {
		if runErr := w.Run(ctx); runErr != nil && ctx.Err() == nil {
			log.Error("stage watcher stopped", "error", runErr)
		}
	}()
	log.Info("watching stage file", "path", cfg.Stage.File)
	return w, nil
}

// healthCheck runs every named check and returns the first failure.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - checks: Named component checks (database, mqtt, influxdb)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, checks map[string]api.HealthCheck) error {
	for _, name := range []string{"database", "mqtt", "influxdb"} {
		check, ok := checks[name]
		if !ok {
			continue
		}
		if err := check(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// runtimeWriter records periodic runtime figures.
type runtimeWriter interface {
	WriteRuntime(site string, activeSessions int, frames uint64)
}

// sessionLister reports the controller's current sessions.
type sessionLister interface {
	Sessions() []animation.Session
}

// maintenance prunes old door history and reports runtime metrics.
type maintenance struct {
	log       *logging.Logger
	history   history.Repository
	retention time.Duration // 0 keeps history forever
	metrics   runtimeWriter // nil when InfluxDB is disabled
	sessions  sessionLister
	frames    func() uint64
	site      string
}

func (m *maintenance) run(ctx context.Context, pruneEvery, reportEvery time.Duration) {
	pruneTicker := time.NewTicker(pruneEvery)
	defer pruneTicker.Stop()
	reportTicker := time.NewTicker(reportEvery)
	defer reportTicker.Stop()

	m.prune(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-pruneTicker.C:
			m.prune(ctx)
		case <-reportTicker.C:
			m.report()
		}
	}
}

// prune deletes history older than the retention window.
func (m *maintenance) prune(ctx context.Context) {
	if m.retention <= 0 {
		return
	}
	n, err := m.history.Prune(ctx, m.retention)
	if err != nil {
		m.log.Warn("pruning door history failed", "error", err)
		return
	}
	if n > 0 {
		m.log.Info("door history pruned", "deleted", n)
	}
}

// report writes the number of moving doors and the frame count.
func (m *maintenance) report() {
	if m.metrics == nil {
		return
	}
	active := 0
	for _, s := range m.sessions.Sessions() {
		if s.State.Locked() {
			active++
		}
	}
	m.metrics.WriteRuntime(m.site, active, m.frames())
}
