package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/handiism/ranksim/internal/audio"
	"github.com/handiism/ranksim/internal/compare"
	"github.com/handiism/ranksim/internal/config"
	"github.com/handiism/ranksim/internal/http"
	"github.com/handiism/ranksim/internal/logging"
	"github.com/handiism/ranksim/internal/report"
	"github.com/handiism/ranksim/internal/scoring"
	"github.com/handiism/ranksim/internal/spotify"
	"github.com/handiism/ranksim/internal/store"
	"github.com/handiism/ranksim/internal/tui"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Command line flags
	var (
		configFlag   = flag.String("config", "", "Path to YAML config file")
		inputFlag    = flag.String("input", "", "Album table (YAML)")
		outputFlag   = flag.String("output", "", "Output directory (overrides config)")
		providerFlag = flag.String("provider", "", "Metadata provider: spotify or local")
		trialsFlag   = flag.Int("trials", 0, "Monte Carlo trials per universe size")
		seedFlag     = flag.Uint64("seed", 0, "Calibration seed")
		topNFlag     = flag.Int("top-n", 0, "Ranking length")
		dryRunFlag   = flag.Bool("dry-run", false, "Score and print the summary without writing files")
		verboseFlag  = flag.Bool("verbose", false, "Debug logging")
	)

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "ranksim - compare album track rankings against each other and popularity")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  ranksim -input albums.yaml [options]")
		fmt.Fprintln(os.Stderr, "  ranksim albums.yaml [options]")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "To browse results, use: ranksim-tui <output dir>")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	// A missing .env is fine; credentials may come from the environment.
	_ = godotenv.Load()

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	// Apply flags that were set explicitly
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			settings.Input = *inputFlag
		case "output":
			settings.OutputDir = *outputFlag
		case "provider":
			settings.Provider = *providerFlag
		case "trials":
			settings.Trials = *trialsFlag
		case "seed":
			settings.Seed = *seedFlag
		case "top-n":
			settings.TopN = *topNFlag
		}
	})
	if settings.Input == "" && flag.NArg() > 0 {
		settings.Input = flag.Arg(0)
	}
	if *verboseFlag {
		settings.Log.Level = logging.LevelDebug
	}

	if settings.Input == "" {
		flag.Usage()
		return 1
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log, err := logging.New(settings.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Handle interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runBatch(ctx, settings, *dryRunFlag, log); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn().Msg("Interrupted")
			return 130
		}
		log.Error().Err(err).Msg("Run failed")
		return 1
	}
	return 0
}

func runBatch(ctx context.Context, settings *config.Settings, dryRun bool, log *zerolog.Logger) error {
	rows, err := compare.LoadTable(settings.Input, settings.TopN)
	if err != nil {
		return err
	}
	log.Info().
		Str("input", settings.Input).
		Int("albums", len(rows)).
		Str("provider", settings.Provider).
		Int("top_n", settings.TopN).
		Int("trials", settings.Trials).
		Uint64("seed", settings.Seed).
		Msg("Loaded album table")

	var baselines scoring.BaselineStore
	if settings.CacheDir != "" {
		db, err := store.Open(settings.CacheDir, log)
		if err != nil {
			return err
		}
		defer db.Close()
		baselines = db
	}

	provider, err := newProvider(ctx, settings, log)
	if err != nil {
		return err
	}

	runner, err := compare.NewRunner(settings, provider, baselines, log)
	if err != nil {
		return err
	}
	batch, err := runner.Run(ctx, rows)
	if err != nil {
		return err
	}

	var idx *report.Index
	if dryRun {
		log.Info().Msg("Dry run, not writing files")
		idx = report.BuildIndex(batch)
	} else {
		opts := report.Options{
			Dir:             settings.OutputDir,
			Index:           settings.Report.Index,
			CoverArt:        settings.Report.CoverArt,
			CoverArtMaxSize: settings.Report.CoverArtMaxSize,
		}
		if settings.Report.Playlists {
			opts.Playlist = audio.NewPlaylistCreator(settings.ToPlaylistFormat(), settings.Report.M3UExtended)
		}
		covers := http.NewClient(http.ClientConfig{Timeout: settings.Spotify.Timeout})

		idx, err = report.NewWriter(opts, covers, log).Write(ctx, batch)
		if err != nil {
			return err
		}
	}

	fmt.Println(tui.RenderSummary(idx))
	return nil
}

func newProvider(ctx context.Context, settings *config.Settings, log *zerolog.Logger) (compare.Provider, error) {
	switch settings.Provider {
	case config.ProviderSpotify:
		return spotify.NewProvider(ctx, settings.Spotify, log), nil
	case config.ProviderLocal:
		return audio.NewLibrary(settings.LibraryDir, log), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", settings.Provider)
	}
}
