package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/jscyril/crossfade_player/internal/audio"
	"github.com/jscyril/crossfade_player/internal/catalog"
	"github.com/jscyril/crossfade_player/internal/logger"
	"github.com/spf13/cobra"
)

var (
	scanDir   string
	writePath string
)

// catalogCmd lists a catalog, or builds one from a directory scan
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the track catalog",
	Long: `List the tracks of the configured catalog in playback order.

With --scan, the directory is walked for supported audio files instead and
the result can be written out with --write.`,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().StringVar(&scanDir, "scan", "", "build the catalog from audio files under this directory")
	catalogCmd.Flags().StringVar(&writePath, "write", "", "save the scanned catalog to this file (.json, .yaml)")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	var cat *catalog.Catalog
	if scanDir != "" {
		var errs []error
		cat, errs = catalog.NewScanner(cfg.LoadWorkers, audio.SupportedFormats()).Scan(cmd.Context(), scanDir)
		for _, e := range errs {
			log.Warn("scan", "error", e)
		}
		if writePath != "" {
			if err := cat.Save(writePath); err != nil {
				return err
			}
			log.Info("catalog written", "path", writePath, "tracks", cat.Len())
		}
	} else {
		cat, err = catalog.Load(cfg.CatalogPath)
		if err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tFILE\tQUEUED")
	for i, t := range cat.Tracks {
		queued := ""
		if i < cfg.QueueLength {
			queued = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, t.Name, t.FileName(), queued)
	}
	return w.Flush()
}
