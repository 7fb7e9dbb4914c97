// Command nsockg rebuilds the Not Scared of Chemistry knowledge graph from
// its four upstream sources and optionally publishes the artifacts.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"nsockg/internal/config"
	"nsockg/internal/fetch"
	"nsockg/internal/pipeline"
	"nsockg/internal/zenodo"
)

func main() {
	verbose := flag.Bool("v", false, "debug logging; affects progress output only, never the artifacts")
	configPath := flag.String("config", "", "optional YAML file with per-source options")
	skipUpload := flag.Bool("skip-upload", false, "do not publish the artifacts to Zenodo")
	flag.Parse()

	_ = godotenv.Load(".env")
	cfg := config.Load()
	if *configPath != "" {
		if err := cfg.ApplyFile(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	ctx := context.Background()
	runner := &pipeline.Runner{
		Config:   cfg,
		Resolver: newResolver(cfg),
		Cache:    &fetch.Cache{Root: cfg.CacheRoot, Log: log},
		Log:      log,
	}
	res, err := runner.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}

	printSummary(os.Stdout, res.Metadata)

	if *skipUpload {
		return
	}
	if cfg.ZenodoToken == "" {
		log.Warn().Msg("no zenodo token configured, skipping upload")
		return
	}
	client := &zenodo.Client{BaseURL: cfg.ZenodoBase, Token: cfg.ZenodoToken, Log: log}
	record, err := client.Publish(ctx, zenodo.KGDeposition(), res.TriplesPath, res.MetadataPath)
	if err != nil {
		// The local artifacts stay valid; only the upload failed.
		log.Error().Err(err).Msg("zenodo upload failed")
		return
	}
	log.Info().Str("record", record).Msg("published")
}

// newResolver prefers a version service when one is configured and falls
// back to versions pinned per source.
func newResolver(cfg config.Config) fetch.Resolver {
	if cfg.VersionsURL != "" {
		return fetch.HTTPResolver{Base: cfg.VersionsURL}
	}
	static := fetch.StaticResolver{}
	for name, sc := range cfg.Sources {
		if sc.Version != "" {
			static[name] = sc.Version
		}
	}
	return static
}

func printSummary(w io.Writer, md pipeline.Metadata) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Source\tVersion\tEdges")
	names := make([]string, 0, len(md.Versions))
	for name := range md.Versions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", name, md.Versions[name], md.Statistics[name])
	}
	fmt.Fprintf(tw, "total\t\t%d\n", md.Statistics["total"])
	_ = tw.Flush()
}
