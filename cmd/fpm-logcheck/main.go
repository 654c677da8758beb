package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/Veraticus/fpm-logcheck/pkg/config"
	"github.com/Veraticus/fpm-logcheck/pkg/scenario"
)

func main() {
	var (
		configPath   string
		scenarioPath string
		logPath      string
		timeout      time.Duration
		limit        int
		trace        bool
		help         bool
	)

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVarP(&scenarioPath, "scenario", "s", "", "Path to scenario file (required)")
	flag.StringVarP(&logPath, "log", "l", "", "Follow this log file instead of stdin")
	flag.DurationVar(&timeout, "timeout", 0, "Time to wait for each expected line")
	flag.IntVar(&limit, "limit", 0, "Default log line limit")
	flag.BoolVar(&trace, "trace", false, "Log every inspected line")
	flag.BoolVarP(&help, "help", "h", false, "Show help message")
	flag.Parse()

	if help {
		printUsage()
		os.Exit(0)
	}
	if scenarioPath == "" {
		fatalf("--scenario is required")
	}

	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fatalf("loading config: %v", err)
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	if limit > 0 {
		cfg.Limit = limit
	}
	if trace {
		cfg.Trace = true
	}

	logger := newLogger(os.Stderr, cfg.Trace)

	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		fatalf("%v", err)
	}

	src := Source{LogPath: logPath, Command: flag.Args()}
	if logPath == "" && len(src.Command) == 0 {
		src.Stdin = stdinSource()
	}
	if logPath != "" && len(src.Command) > 0 {
		fatalf("--log and a daemon command are mutually exclusive")
	}

	deps, err := NewDependencies(cfg, src, logger)
	if err != nil {
		fatalf("%v", err)
	}

	app := NewApplication(deps, src.Command)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		if err := app.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "fpm-logcheck: stopping daemon: %v\n", err)
		}
		os.Exit(130)
	}()

	logger.Debug("checking", "source", describe(src), "scenario", scenarioPath,
		"timeout", cfg.Timeout, "limit", cfg.Limit)

	if err := app.Run(sc); err != nil {
		fmt.Fprintf(os.Stderr, "fpm-logcheck: %v\n", err)
	}

	deps.Close()
	os.Exit(app.ExitCode())
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fpm-logcheck: "+format+"\n", args...)
	os.Exit(2)
}

func printUsage() {
	fmt.Println("fpm-logcheck - verify the log output of a FastCGI process manager")
	fmt.Println()
	fmt.Println("Usage: fpm-logcheck --scenario FILE [OPTIONS] [-- DAEMON ARGS...]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Log lines come from --log, from the daemon command after --, or from stdin.")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  FPM_LOGCHECK_CONFIG   Path to config file")
	fmt.Println("  FPM_LOGCHECK_TIMEOUT  Time to wait for each expected line (default: 3s)")
	fmt.Println("  FPM_LOGCHECK_LIMIT    Default log line limit (default: 1024)")
	fmt.Println("  FPM_LOGCHECK_LEVEL    Level of wrapped message lines (default: WARNING)")
	fmt.Println("  FPM_LOGCHECK_POOL     Pool name in worker lines (default: unconfined)")
	fmt.Println("  FPM_LOGCHECK_TRACE    Log every inspected line (true/false)")
	fmt.Println()
	fmt.Println("Configuration file: ~/.config/fpm-logcheck/config.yaml")
}
