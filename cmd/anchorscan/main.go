package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rodaine/table"

	"github.com/anchorscan/anchorscan/classifier"
	"github.com/anchorscan/anchorscan/config"
	"github.com/anchorscan/anchorscan/export"
	"github.com/anchorscan/anchorscan/models"
	"github.com/anchorscan/anchorscan/results"
	"github.com/anchorscan/anchorscan/runner"
	"github.com/anchorscan/anchorscan/tui"
)

func main() {
	defaultCfg := config.DefaultConfig()
	outputDefault := defaultCfg.OutputFile
	if value, ok := config.EnvString("ANCHORSCAN_OUTPUT"); ok {
		outputDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("ANCHORSCAN_METRICS_ADDR"); ok {
		metricsDefault = value
	}
	maxURLsDefault := defaultCfg.MaxBatchSize
	if value, ok, err := config.EnvInt("ANCHORSCAN_MAX_URLS"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid ANCHORSCAN_MAX_URLS: %v\n", err)
		os.Exit(1)
	} else if ok {
		maxURLsDefault = value
	}
	cacheDefault := defaultCfg.CacheSize
	if value, ok, err := config.EnvInt("ANCHORSCAN_CACHE_SIZE"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid ANCHORSCAN_CACHE_SIZE: %v\n", err)
		os.Exit(1)
	} else if ok {
		cacheDefault = value
	}

	input := flag.String("input", "", "File of URLs, one per line (- for stdin; empty on a terminal opens the interactive interface)")
	brand := flag.String("brand", config.AllBrands, "Brand to extract anchors for")
	perBrandColumns := flag.Bool("per-brand-columns", false, "Add one column per brand to the combined view")
	output := flag.String("output", outputDefault, "Output file path")
	format := flag.String("format", "csv", "Output format: csv, json, or dual")
	filter := flag.String("filter", "Show all", "Row filter applied before writing")
	timeout := flag.Duration("timeout", defaultCfg.Timeout, "HTTP request timeout")
	cacheSize := flag.Int("cache-size", cacheDefault, "Classification cache entries (0 disables)")
	maxURLs := flag.Int("max-urls", maxURLsDefault, "Maximum URLs accepted per run")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	interactive := flag.Bool("tui", false, "Force the interactive terminal interface")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := buildConfigFromFlags(*brand, *perBrandColumns, *output, *format, *timeout, *cacheSize, *maxURLs, *metricsAddr, *verbose)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	view, ok := results.ViewByName(*filter)
	if !ok {
		slog.Error("unknown filter", slog.String("filter", *filter))
		os.Exit(1)
	}

	c, err := classifier.New(cfg)
	if err != nil {
		slog.Error("initialising classifier", slog.Any("error", err))
		os.Exit(1)
	}
	run := runner.New(c, cfg)
	store := results.NewStore()

	if *interactive || (*input == "" && isTerminal(os.Stdout)) {
		runInteractive(cfg, run, store, *verbose)
		return
	}

	urls, err := readURLs(*input)
	if err != nil {
		slog.Error("reading input", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting extraction",
		slog.String("brand", cfg.Brand),
		slog.Int("urls", len(urls)),
		slog.Duration("timeout", cfg.Timeout),
	)

	writer, err := createWriter(cfg.OutputFormat, cfg.OutputFile)
	if err != nil {
		slog.Error("creating writer", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			slog.Error("close writer", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, remaining URLs will be marked as errors")
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" && c.Metrics != nil {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(c.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	progressFn, stopProgress := newProgressReporter()

	startTime := time.Now()
	full, err := run.Run(ctx, urls, cfg.Brand, progressFn)
	stopProgress()
	if err != nil {
		slog.Error("extraction failed", slog.Any("error", err))
		os.Exit(1)
	}
	store.Set(full)

	filtered := results.Apply(full, view)
	if err := writer.Write(filtered); err != nil {
		slog.Error("writing output", slog.Any("error", err))
		os.Exit(1)
	}
	if err := writer.Validate(); err != nil {
		slog.Error("output validation failed", slog.Any("error", err))
		os.Exit(1)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	if isTerminal(os.Stdout) {
		printTable(filtered)
	}

	summary := buildSummary(full, urls, startTime, c.CacheHits(), cfg.OutputFile)
	printSummary(summary, view.Name, filtered.Len())
}

func buildConfigFromFlags(brand string, perBrandColumns bool, output, format string, timeout time.Duration, cacheSize, maxURLs int, metricsAddr string, verbose bool) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Brand = brand
	cfg.PerBrandColumns = perBrandColumns
	cfg.OutputFile = output
	cfg.OutputFormat = strings.ToLower(format)
	cfg.Timeout = timeout
	cfg.CacheSize = cacheSize
	cfg.MaxBatchSize = maxURLs
	cfg.MetricsAddr = metricsAddr
	cfg.Verbose = verbose
	return cfg
}

func runInteractive(cfg *config.Config, run *runner.Runner, store *results.Store, verbose bool) {
	// The alternate screen owns stdout, so logs either go to a file or nowhere.
	if verbose {
		f, err := tea.LogToFile("anchorscan-debug.log", "anchorscan")
		if err == nil {
			defer f.Close()
			opts := &slog.HandlerOptions{Level: slog.LevelDebug}
			slog.SetDefault(slog.New(slog.NewJSONHandler(f, opts)))
		}
	} else {
		slog.SetDefault(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	}

	p := tea.NewProgram(tui.New(cfg, run, store), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error running program: %v\n", err)
		os.Exit(1)
	}
}

func readURLs(input string) ([]string, error) {
	var data []byte
	var err error
	if input == "" || input == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return nil, err
	}
	return runner.ParseURLList(string(data)), nil
}

// newProgressReporter shows a live spinner on a terminal and stays quiet
// otherwise.
func newProgressReporter() (runner.ProgressFunc, func()) {
	if !isTerminal(os.Stderr) {
		fn := func(completed, total int) {
			slog.Debug("progress", slog.Int("completed", completed), slog.Int("total", total))
		}
		return fn, func() {}
	}

	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	sp.Suffix = " processing"
	sp.Start()
	fn := func(completed, total int) {
		sp.Suffix = fmt.Sprintf(" processing %d/%d", completed, total)
	}
	return fn, sp.Stop
}

func createWriter(format, filename string) (export.RowWriter, error) {
	switch format {
	case "json":
		return export.NewJSONWriter(filename)
	case "csv":
		return export.NewCSVWriter(filename)
	case "dual":
		jsonFilename := strings.TrimSuffix(filename, ".csv") + ".json"
		return export.NewDualWriter(filename, jsonFilename)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func printTable(t *models.ResultTable) {
	if t.Len() == 0 {
		fmt.Println("⚠️ No data extracted.")
		return
	}

	headers := make([]interface{}, 0, len(t.Columns())+1)
	for _, name := range t.Columns() {
		headers = append(headers, name)
	}
	headers = append(headers, "Status")

	out := table.New(headers...)
	for _, row := range t.Rows {
		values := make([]interface{}, 0, len(headers))
		values = append(values, row.SourceURL, row.PageTitle)
		for _, b := range t.BrandColumns {
			values = append(values, row.BrandAnchors[b])
		}
		values = append(values, row.AnchorText, string(results.Tag(row)))
		out.AddRow(values...)
	}
	out.Print()
}

func buildSummary(full *models.ResultTable, urls []string, startTime time.Time, cacheHits int64, outputFile string) models.RunSummary {
	sum := results.Summarize(full)
	return models.RunSummary{
		StartTime:   startTime,
		EndTime:     time.Now(),
		URLCount:    len(urls),
		Live:        sum.ByTag[models.StatusHasLinks] + sum.ByTag[models.StatusNoLinks] + sum.ByTag[models.StatusNoBrandLink],
		Removed:     sum.ByTag[models.StatusRemoved],
		FetchErrors: sum.ByTag[models.StatusError],
		CacheHits:   cacheHits,
		OutputFile:  outputFile,
	}
}

func printSummary(s models.RunSummary, filterName string, written int) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Extraction complete")
	fmt.Printf("  URLs processed: %d\n", s.URLCount)
	fmt.Printf("  Live pages:     %d\n", s.Live)
	fmt.Printf("  Removed pages:  %d\n", s.Removed)
	fmt.Printf("  Fetch errors:   %d\n", s.FetchErrors)
	fmt.Printf("  Cache hits:     %d\n", s.CacheHits)
	if filterName != "Show all" {
		fmt.Printf("  Filter:         %s (%d rows written)\n", filterName, written)
	}
	fmt.Printf("  Duration:       %v\n", s.Duration())
	fmt.Printf("  Output file:    %s\n", s.OutputFile)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
