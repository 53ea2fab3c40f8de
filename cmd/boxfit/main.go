package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/boxfit/internal/application"
	"github.com/eugenenazirov/boxfit/internal/config"
	"github.com/eugenenazirov/boxfit/internal/fit"
	"github.com/eugenenazirov/boxfit/internal/form"
	"github.com/eugenenazirov/boxfit/internal/logging"
	"github.com/eugenenazirov/boxfit/internal/render"
)

var signalNotify = signal.Notify

// server is the part of the application the shutdown sequence needs.
type server interface {
	Shutdown(ctx context.Context) error
	Close() error
}

func main() {
	kingpinApp := kingpin.New("boxfit", "Box Fitting Checker - reports which products fit which shipping boxes")

	serveCmd := kingpinApp.Command("serve", "Run the web form and JSON API").Default()
	configFile := serveCmd.Flag("config", "Path to YAML or JSONC configuration file").String()
	port := serveCmd.Flag("port", "HTTP port exposed by the service").String()
	logLevel := serveCmd.Flag("log-level", "Log level (debug, info, warn, error)").String()
	rateLimitRPSFlag := serveCmd.Flag("rate-limit-rps", "Requests per second allowed per client (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	checkCmd := kingpinApp.Command("check", "Check products against boxes and print the results")
	products := checkCmd.Flag("product", "Product as NAME=LxWxH (repeatable)").Short('p').Strings()
	boxes := checkCmd.Flag("box", "Box as NAME=LxWxH (repeatable)").Short('b').Strings()

	switch kingpin.MustParse(kingpinApp.Parse(os.Args[1:])) {
	case checkCmd.FullCommand():
		if err := runCheck(os.Stdout, *products, *boxes); err != nil {
			kingpinApp.Fatalf("%v", err)
		}
		return
	case serveCmd.FullCommand():
	}

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
	}

	if *port != "" {
		overrides.Port = port
	}

	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app, cfg.ShutdownGracePeriod, logger)
}

func shutdown(srv server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := srv.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}

// runCheck evaluates NAME=LxWxH arguments and writes the text report to w.
func runCheck(w io.Writer, products, boxes []string) error {
	productEntries, err := parseEntries("product", products)
	if err != nil {
		return err
	}
	boxEntries, err := parseEntries("box", boxes)
	if err != nil {
		return err
	}

	results := fit.New().Evaluate(productEntries, boxEntries)
	return render.Text(w, results)
}

func parseEntries(kind string, args []string) ([]form.Entry, error) {
	entries := make([]form.Entry, 0, len(args))
	for _, arg := range args {
		i := strings.LastIndex(arg, "=")
		if i < 0 {
			return nil, fmt.Errorf("%s %q: expected NAME=LxWxH", kind, arg)
		}
		entries = append(entries, form.Entry{Name: arg[:i], Dimensions: arg[i+1:]})
	}
	return entries, nil
}
