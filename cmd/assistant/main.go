// Command assistant runs the shopping assistant from the terminal.
//
// Usage:
//
//	assistant ask -q "price of Samsung Galaxy S25"
//	assistant ask --config assistant.yaml -q "..."
//	assistant repl --config assistant.yaml
//	assistant history --config assistant.yaml
//	assistant version
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	assistant "github.com/AyushPoddar351/E-Commerce-Assistant"
	"github.com/AyushPoddar351/E-Commerce-Assistant/config"
	"github.com/AyushPoddar351/E-Commerce-Assistant/history"
	"github.com/AyushPoddar351/E-Commerce-Assistant/internal/metrics"
	"github.com/AyushPoddar351/E-Commerce-Assistant/internal/telemetry"
	"github.com/AyushPoddar351/E-Commerce-Assistant/types"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "ask":
		runAsk(os.Args[2:])
	case "repl":
		runRepl(os.Args[2:])
	case "history":
		runHistory(os.Args[2:])
	case "version":
		fmt.Printf("assistant %s (built %s)\n", Version, BuildTime)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runAsk(args []string) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	query := fs.String("q", "", "Query to answer")
	fs.Parse(args)

	if *query == "" {
		fmt.Fprintln(os.Stderr, "ask requires -q <query>")
		os.Exit(1)
	}

	a, logger, cleanup := setup(*configPath, "")
	defer cleanup()

	resp, err := a.Answer(context.Background(), *query)
	if err != nil {
		logger.Error("answer failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printResponse(resp)
}

func runRepl(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	metricsAddr := fs.String("metrics-addr", "", "Address for the Prometheus /metrics endpoint (empty disables)")
	fs.Parse(args)

	a, logger, cleanup := setup(*configPath, *metricsAddr)
	defer cleanup()

	fmt.Println("Shopping assistant. Type a question, or \"exit\" to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "exit" || line == "quit" {
			break
		}

		resp, err := a.Answer(context.Background(), line)
		if err != nil {
			if types.IsCode(err, types.ErrInvalidQuery) {
				continue
			}
			logger.Error("answer failed", zap.Error(err))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		printResponse(resp)
	}
}

func runHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	limit := fs.Int("n", 20, "Number of runs to show")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	store, err := history.Open(cfg.History.Path, zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open history: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	runs, err := store.Recent(context.Background(), *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list runs: %v\n", err)
		os.Exit(1)
	}

	for _, r := range runs {
		fmt.Printf("%s  %-16s  rewrites=%d  evidence=%d  %-5s  %s\n",
			r.CreatedAt.Format(time.RFC3339), r.Route, r.Rewrites, r.EvidenceUsed, r.Status, r.Query)
	}
}

// setup loads config and assembles the assistant with logging, telemetry,
// and optionally a metrics endpoint. The returned cleanup flushes and closes
// everything.
func setup(configPath, metricsAddr string) (*assistant.Assistant, *zap.Logger, func()) {
	cfg := loadConfig(configPath)

	logger := initLogger(cfg.Log)

	otelProviders, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	opts := []assistant.Option{assistant.WithLogger(logger)}

	if metricsAddr != "" {
		registry := prometheus.NewRegistry()
		opts = append(opts, assistant.WithMetrics(metrics.NewCollector("assistant", registry, logger)))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Warn("metrics endpoint failed", zap.Error(err))
			}
		}()
		logger.Info("metrics endpoint listening", zap.String("addr", metricsAddr))
	}

	a, err := assistant.New(cfg, opts...)
	if err != nil {
		logger.Error("failed to assemble assistant", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cleanup := func() {
		if err := a.Close(); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelProviders.Shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
		logger.Sync()
	}

	return a, logger, cleanup
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func printResponse(resp *types.Response) {
	fmt.Println(resp.Answer)
	if resp.Grounded() {
		fmt.Println("\nSources:")
		for _, item := range resp.Evidence {
			fmt.Printf("  [%s] %s\n", item.Source, item.SourceID)
		}
	}
	fmt.Println()
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoding = "console"
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      encoding == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapConfig.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

func printUsage() {
	fmt.Println(`assistant - natural-language shopping assistant

Usage:
  assistant <command> [options]

Commands:
  ask       Answer a single query
  repl      Interactive question loop
  history   Show recent answering runs
  version   Show version information
  help      Show this help message

Options:
  --config <path>        Path to configuration file (YAML)
  -q <query>             Query for 'ask'
  --metrics-addr <addr>  Prometheus endpoint for 'repl'
  -n <count>             Run count for 'history'

Examples:
  assistant ask -q "price of Samsung Galaxy S25"
  assistant repl --config assistant.yaml --metrics-addr :9090
  assistant history -n 50`)
}
