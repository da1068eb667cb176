package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wallgrab/internal/downloader"
	"wallgrab/pkg/config"
	"wallgrab/pkg/connectivity"
	"wallgrab/pkg/dispatch"
	errs "wallgrab/pkg/errors"
	"wallgrab/pkg/fetch"
	"wallgrab/pkg/harvester"
	"wallgrab/pkg/ledger"
	"wallgrab/pkg/logger"
	"wallgrab/pkg/ratelimit"
	"wallgrab/pkg/storage"
	"wallgrab/pkg/ui"
)

var (
	// Download command flags
	useLinks    bool
	outputDir   string
	linksFile   string
	sourcesFile string
	failedFile  string
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Harvest links from the configured sources and download them",
	Long: `Harvest candidate links from every source listed in the sources file, then
download each one into the wallpapers directory.

Harvesting opens a browser window on the origin site and waits while you log
in by hand; logged-in listings show more posts per page. The harvested links
are written to the links cache so that a later run can skip the browser with
--use-links.

Each link is handled by the first matching strategy:
  - posts on the origin site are resolved with the media extractor (yt-dlp)
  - gallery host links have every image on the page saved
  - anything else is fetched and decoded as an image

Failed links are appended to the failure ledger.`,
	Example: `  # Harvest fresh links and download them
  wallgrab download

  # Re-download from the links cache without opening a browser
  wallgrab download --use-links

  # Use a different sources file and output directory
  wallgrab download --sources-file my-subs.txt --output ./walls`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().BoolVar(&useLinks, "use-links", false, "use the links cache instead of harvesting new links")
	downloadCmd.Flags().StringVarP(&outputDir, "output", "o", "", "wallpapers directory (default: ./wallpapers)")
	downloadCmd.Flags().StringVar(&linksFile, "links-file", "", "links cache (default: ./links.txt)")
	downloadCmd.Flags().StringVar(&sourcesFile, "sources-file", "", "sources file (default: ./subreddits.txt)")
	downloadCmd.Flags().StringVar(&failedFile, "failed-file", "", "failure ledger (default: ./failed.txt)")
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(map[string]interface{}{
		"output":       outputDir,
		"links-file":   linksFile,
		"sources-file": sourcesFile,
		"failed-file":  failedFile,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pacer := ratelimit.NewRandomDelay(cfg.Pacing.MinSeconds, cfg.Pacing.MaxSeconds)
	pacer.OnTick = console.Countdown

	var links []string
	if useLinks {
		links, err = harvester.ReadLinks(cfg.Sources.LinksFile)
		if err != nil {
			return err
		}
		console.PrintInfo("Links cache", fmt.Sprintf("%s (%d links)", cfg.Sources.LinksFile, len(links)))
	} else {
		links, err = harvestLinks(ctx, cfg, pacer, log)
		if err != nil {
			return err
		}
	}

	summary, err := downloadLinks(ctx, cfg, pacer, links, log)
	if summary != nil {
		printSummary(summary, cfg.Output.FailedFile)
	}
	return err
}

// harvestLinks drives the browser through login and pagination and caches the result
func harvestLinks(ctx context.Context, cfg *config.Config, pacer ratelimit.Pacer, log logger.Logger) ([]string, error) {
	sources, err := config.LoadSources(cfg.Sources.File)
	if err != nil {
		return nil, err
	}
	for _, src := range sources {
		console.PrintInfo(src.Name, fmt.Sprintf("%d page(s)", src.Pages))
	}

	browser, err := harvester.Launch(ctx, &cfg.Harvester)
	if err != nil {
		return nil, err
	}

	gate := &harvester.ConsoleGate{In: os.Stdin, Out: os.Stdout}
	session := harvester.NewSession(browser, gate, cfg.Harvester.OriginURL, log)
	defer session.Close()

	if err := session.Login(ctx); err != nil {
		return nil, err
	}

	h := harvester.New(session, pacer, &cfg.Harvester, log)
	h.SetNotifier(console.Println)

	links, err := h.Harvest(ctx, sources)
	if err != nil {
		return nil, err
	}

	if err := session.Close(); err != nil {
		log.WithError(err).Warn("failed to close browser")
	}

	if err := harvester.WriteLinks(cfg.Sources.LinksFile, links); err != nil {
		return nil, err
	}
	console.PrintInfo("Links cache", fmt.Sprintf("%s (%d links)", cfg.Sources.LinksFile, len(links)))
	return links, nil
}

// downloadLinks wires the pipeline and runs it over links
func downloadLinks(ctx context.Context, cfg *config.Config, pacer ratelimit.Pacer, links []string, log logger.Logger) (*downloader.Summary, error) {
	store, err := storage.NewManager(cfg.Output.WallpapersDir)
	if err != nil {
		return nil, err
	}

	client := fetch.NewClient(cfg.Download.Timeout, cfg.Download.UserAgent, log)
	if rpm := cfg.RateLimit.RequestsPerMinute; rpm > 0 {
		client.SetLimiter(ratelimit.NewTokenBucket(rpm, time.Minute))
	}

	failures, err := ledger.Open(cfg.Output.FailedFile)
	if err != nil {
		return nil, err
	}
	defer failures.Close()

	probe := connectivity.NewHTTPProbe(cfg.Connectivity.ProbeURL, cfg.Connectivity.Timeout, cfg.Download.UserAgent, log)
	guard := connectivity.NewGuard(probe, &cfg.Connectivity, log)
	guard.SetNotifier(console.PrintNotice)

	logger.LogComponentStart(log, "downloader", map[string]interface{}{
		"links":      len(links),
		"output_dir": store.GetOutputDir(),
		"ledger":     failures.Path(),
	})

	d := downloader.NewDriver(dispatch.NewDefault(&cfg.Download, client, store, log), failures, guard, pacer, log)
	d.SetReporter(console)
	return d.Run(ctx, links)
}

func printSummary(s *downloader.Summary, ledgerPath string) {
	stats := []ui.Stat{
		{Label: "Links", Value: s.Total},
		{Label: "Saved", Value: s.Saved},
		{Label: "Failed", Value: s.Failed},
		{Label: "Files", Value: s.Files},
	}

	kinds := make([]string, 0, len(s.FailuresByKind))
	for k := range s.FailuresByKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		stats = append(stats, ui.Stat{Label: "  " + k, Value: s.FailuresByKind[errs.Kind(k)]})
	}

	console.Println("")
	console.PrintStats("Download summary", stats)
	if p := console.Progress(); p != nil {
		console.PrintInfo("Progress", fmt.Sprintf("%s in %s (%.1f links/min)",
			p.Bar(20), p.Elapsed().Round(time.Second), p.Rate()))
	}
	if s.Failed > 0 {
		console.PrintWarning("Failed links were appended to " + ledgerPath)
	}
}
