// Command wxreader is a debugging aid for the weather-archive reading
// core: it opens a reader against a domain registry and an archive
// root, reads one variable over a time window, and prints the result.
// It is not the production HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/metio-grid/wxreader/archive"
	"github.com/metio-grid/wxreader/domain"
	"github.com/metio-grid/wxreader/reader"
	"github.com/metio-grid/wxreader/service"
	"github.com/metio-grid/wxreader/timerange"
)

var log = logrus.New()

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wxreader",
		Short: "Inspect the weather-archive reading core.",
		Long: `wxreader opens a reader against a domain registry and a chunked
archive root, reads a variable over a time window, and prints the
decoded values to stdout.`,
		DisableAutoGenTag: true,
	}

	var (
		registryPath     string
		archiveRoot      string
		modelToken       string
		variableName     string
		lat, lon         float64
		elevation        float64
		hasElevation     bool
		startRFC3339     string
		endRFC3339       string
		dtSeconds        int64
		terrainOptimised bool
		chunkCacheSize   int
		staticCacheSize  int
		verbose          bool
	)

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Read one variable over a time window at a coordinate.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}

			start, err := time.Parse(time.RFC3339, startRFC3339)
			if err != nil {
				return fmt.Errorf("parsing --start: %w", err)
			}
			end, err := time.Parse(time.RFC3339, endRFC3339)
			if err != nil {
				return fmt.Errorf("parsing --end: %w", err)
			}

			ctx := context.Background()

			log.WithField("registry", registryPath).Debug("loading domain registry")
			registry, err := domain.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("loading domain registry: %w", err)
			}

			log.WithField("root", archiveRoot).Debug("opening archive store")
			store, err := archive.OpenStore(ctx, archiveRoot)
			if err != nil {
				return fmt.Errorf("opening archive store: %w", err)
			}
			defer store.Close()

			chunks := archive.NewChunkReader(store, chunkCacheSize)
			static := archive.NewStaticCache(store, staticCacheSize)
			svc := service.New(registry, chunks, static)

			selection := reader.Nearest
			if terrainOptimised {
				selection = reader.TerrainOptimised
			}
			var elevPtr *float64
			if hasElevation {
				elevPtr = &elevation
			}

			r, err := svc.OpenReader(ctx, modelToken, lat, lon, elevPtr, selection)
			if err != nil {
				return fmt.Errorf("opening reader: %w", err)
			}

			tr := timerange.New(start.Unix(), end.Unix(), dtSeconds)
			values, unit, err := r.Get(ctx, variableName, tr)
			if err != nil {
				return fmt.Errorf("reading %s: %w", variableName, err)
			}

			for i, v := range values {
				fmt.Printf("%s\t%g %s\n", time.Unix(tr.At(i), 0).UTC().Format(time.RFC3339), v, unit.Label)
			}
			return nil
		},
	}

	flags := getCmd.Flags()
	flags.StringVar(&registryPath, "registry", "", "path to the domain registry TOML file")
	flags.StringVar(&archiveRoot, "archive-root", "", "archive root URL (file://, gs://, or s3://)")
	flags.StringVar(&modelToken, "model", "best_match", "model token: best_match, icon_seamless, gfs_seamless, arome_seamless, or an explicit domain key")
	flags.StringVar(&variableName, "variable", "temperature_2m", "canonical variable name")
	flags.Float64Var(&lat, "lat", 0, "latitude")
	flags.Float64Var(&lon, "lon", 0, "longitude")
	flags.Float64Var(&elevation, "elevation", 0, "target elevation override, metres")
	flags.BoolVar(&hasElevation, "elevation-set", false, "use --elevation instead of the model's own terrain height")
	flags.StringVar(&startRFC3339, "start", "", "window start, RFC3339")
	flags.StringVar(&endRFC3339, "end", "", "window end, RFC3339 (exclusive)")
	flags.Int64Var(&dtSeconds, "dt", 3600, "requested step, seconds")
	flags.BoolVar(&terrainOptimised, "terrain-optimised", false, "use terrain-optimised gridpoint selection instead of nearest")
	flags.IntVar(&chunkCacheSize, "chunk-cache-size", 512, "decoded-chunk in-memory cache size")
	flags.IntVar(&staticCacheSize, "static-cache-size", 64, "static-file in-memory cache size")
	flags.BoolVar(&verbose, "verbose", false, "enable debug logging")
	_ = getCmd.MarkFlagRequired("registry")
	_ = getCmd.MarkFlagRequired("archive-root")
	_ = getCmd.MarkFlagRequired("start")
	_ = getCmd.MarkFlagRequired("end")

	root.AddCommand(getCmd)
	return root
}
