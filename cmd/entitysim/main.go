package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/l1jgo/entitycore/internal/config"
	"github.com/l1jgo/entitycore/internal/data"
	gonet "github.com/l1jgo/entitycore/internal/net"
	"github.com/l1jgo/entitycore/internal/persist"
	"github.com/l1jgo/entitycore/internal/sim"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            entitysim  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, value any) {
	fmt.Printf("  %-24s \033[1m%v\033[0m\n", label, value)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func run() error {
	// 1. Load config
	cfgPath := "config/entitysim.toml"
	if p := os.Getenv("ENTITYSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner()

	// 3. Optional profiling
	if stop := startProfile(cfg.Profile); stop != nil {
		defer stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Optional snapshot store
	var store sim.SnapshotStore
	if cfg.Database.Enabled {
		printSection("Database")
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if err := db.Migrate(dbCtx); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")
		store = persist.NewSnapshotRepo(db)
		fmt.Println()
	}

	// 5. Optional digest feed
	var feed sim.Publisher
	if cfg.Feed.Enabled {
		printSection("Feed")
		srv, err := gonet.NewServer(cfg.Feed.Bind, "entitysim", cfg.Feed.OutQueue, log)
		if err != nil {
			return fmt.Errorf("feed: %w", err)
		}
		defer srv.Shutdown()
		go srv.AcceptLoop()
		printOK(fmt.Sprintf("listening on %s", srv.Addr()))
		feed = srv
		fmt.Println()
	}

	// 6. Load templates
	printSection("Data")
	templates, err := data.LoadTemplateTable(cfg.Data.Templates)
	if err != nil {
		return fmt.Errorf("templates: %w", err)
	}
	printStat("templates", templates.Count())
	if cfg.Scripting.Enabled {
		printStat("scripts", cfg.Scripting.Dir)
	}
	fmt.Println()

	// 7. Run worlds
	printSection("Simulation")
	printStat("worlds", cfg.Simulation.Worlds)
	if cfg.Simulation.Ticks > 0 {
		printStat("ticks", cfg.Simulation.Ticks)
	} else {
		printStat("ticks", "until interrupted")
	}
	fmt.Println()

	start := time.Now()
	results, err := sim.RunWorlds(ctx, cfg, templates, store, feed, log)
	if err != nil {
		return fmt.Errorf("simulation: %w", err)
	}

	printSection("Results")
	for _, r := range results {
		fmt.Printf("  %-10s ticks=%-6d entities=%-6d merged=%-6d removed=%-6d saved=%-4d digest=%016x\n",
			r.Name, r.Ticks, r.Entities, r.Stats.Merged, r.Stats.Removed, r.Saved, r.Digest)
	}
	fmt.Println()
	log.Info("simulation finished", zap.Duration("elapsed", time.Since(start)), zap.Int("worlds", len(results)))
	return nil
}

// startProfile starts the configured profiler and returns its stop func, or
// nil when profiling is off.
func startProfile(cfg config.ProfileConfig) func() {
	var mode func(*profile.Profile)
	switch cfg.Mode {
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	case "allocs":
		mode = profile.MemProfileAllocs
	case "block":
		mode = profile.BlockProfile
	case "mutex":
		mode = profile.MutexProfile
	case "trace":
		mode = profile.TraceProfile
	default:
		return nil
	}
	path := cfg.Path
	if path == "" {
		path = "."
	}
	return profile.Start(mode, profile.ProfilePath(path), profile.NoShutdownHook).Stop
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
