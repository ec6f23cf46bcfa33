package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/vidmetrics"
	"github.com/fwojciec/vidmetrics/goquery"
	"github.com/fwojciec/vidmetrics/rod"
	vmslog "github.com/fwojciec/vidmetrics/slog"
	"github.com/fwojciec/vidmetrics/sqlite"
	"github.com/fwojciec/vidmetrics/track"
	"github.com/fwojciec/vidmetrics/xlsx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Renderer replaces the headless browser. Set before calling Run().
	Renderer vidmetrics.Renderer

	// NewTicker replaces the wall-clock tick source.
	NewTicker func(time.Duration) track.Ticker

	// ConfigPaths are JSON files read for flag defaults, first match wins.
	ConfigPaths []string
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	paths := []string{"~/.config/vidmetrics.json"}
	if p := os.Getenv("VIDMETRICS_CONFIG"); p != "" {
		paths = append([]string{p}, paths...)
	}
	return &Main{ConfigPaths: paths}
}

// Run parses the arguments and runs the scheduler until ctx is canceled,
// or a single tick with --once.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("vidmetrics"),
		kong.Description("Periodically record video engagement counters into a spreadsheet"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Configuration(kong.JSON, m.ConfigPaths...),
		vars(),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	logger := newLogger(stderr, cli.LogLevel, cli.LogFormat)

	sel := cli.Selectors()
	if err := sel.Validate(); err != nil {
		return err
	}
	if cli.Store == "xlsx" && cli.Sheet == "" {
		return vidmetrics.Errorf(vidmetrics.EINVALID, "sheet name required")
	}
	for _, u := range cli.URLs {
		if _, err := vidmetrics.ParseTarget(u); err != nil {
			return err
		}
	}

	renderer := m.Renderer
	if renderer == nil {
		renderer = rod.NewRenderer(
			rod.WithNavigationTimeout(cli.NavTimeout),
			rod.WithElementTimeout(cli.ElementTimeout),
			rod.WithWaitSelector(cli.WaitSelector),
			rod.WithBrowserBin(cli.BrowserBin),
			rod.WithNoSandbox(cli.NoSandbox),
		)
	}
	renderer = vmslog.NewLoggingRenderer(renderer, logger)

	store, closeStore, err := openStore(cli, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	sched := &track.Scheduler{
		Targets:   cli.URLs,
		Extractor: vmslog.NewLoggingExtractor(track.NewExtractor(renderer, goquery.NewParser(), sel), logger),
		Store:     vmslog.NewLoggingStore(store, logger),
		Limiter:   track.NewDomainLimiter(cli.Rate),
		Interval:  cli.Interval,
		NewTicker: m.NewTicker,
		Logger:    logger,
	}
	if err := sched.Validate(); err != nil {
		return err
	}

	if cli.Once {
		result := sched.Tick(ctx)
		if result.Err != nil {
			return result.Err
		}
		if len(result.Records) == 0 {
			return fmt.Errorf("no target produced a record")
		}
		return nil
	}

	return sched.Run(ctx)
}

// openStore opens the configured store. The returned func releases it.
func openStore(cli *CLI, logger *slog.Logger) (vidmetrics.MetricsStore, func(), error) {
	path := cli.OutputPath()
	switch cli.Store {
	case "sqlite":
		db := sqlite.NewDB(path)
		if err := db.Open(); err != nil {
			return nil, nil, fmt.Errorf("failed to open database at %q: %w", path, err)
		}
		return sqlite.NewMetricsStore(db), func() { db.Close() }, nil
	default:
		store := xlsx.NewStore(path,
			xlsx.WithSheet(cli.Sheet),
			xlsx.WithLogger(logger),
		)
		return store, func() {}, nil
	}
}
