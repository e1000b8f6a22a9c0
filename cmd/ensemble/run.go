package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/ensemble"
	"github.com/hupe1980/ensemble/assets"
	"github.com/hupe1980/ensemble/core"
	"github.com/hupe1980/ensemble/engine"
	"github.com/hupe1980/ensemble/participant"
	"github.com/hupe1980/ensemble/render"
	"github.com/hupe1980/ensemble/store"
	badgerstore "github.com/hupe1980/ensemble/store/badger"
)

type runFlags struct {
	mode        string
	category    string
	description string
	assetsDir   string
	resultsDir  string
	noColor     bool
	quiet       bool
}

func newRunCmd(a *app) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a pipeline for one product category",
		Example: `  ensemble run --mode advanced --category TShirt --description "modern casual clothing"
  ensemble run --mode groupchat --category Jeans --assets ./clothes`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.run(ctx, cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.mode, "mode", string(ensemble.ModeAdvanced), "Pipeline mode (advanced, process, groupchat)")
	cmd.Flags().StringVar(&f.category, "category", "TShirt", "Product category; also the asset sub-folder")
	cmd.Flags().StringVar(&f.description, "description", "modern casual clothing", "Base product description")
	cmd.Flags().StringVar(&f.assetsDir, "assets", "", "Asset root folder (defaults to ENSEMBLE_ASSETS_DIR)")
	cmd.Flags().StringVar(&f.resultsDir, "results", "", "Report folder (defaults to ENSEMBLE_RESULTS_DIR)")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&f.quiet, "quiet", false, "Only print the final results")
	return cmd
}

func (a *app) run(ctx context.Context, cmd *cobra.Command, f *runFlags) error {
	mode, err := ensemble.ParseMode(f.mode)
	if err != nil {
		return err
	}

	assetsDir := a.cfg.AssetsDir
	if f.assetsDir != "" {
		assetsDir = f.assetsDir
	}
	resultsDir := a.cfg.ResultsDir
	if f.resultsDir != "" {
		resultsDir = f.resultsDir
	}

	printer := render.New(cmd.OutOrStdout(), func(o *render.Options) { o.Colors = a.cfg.Colors && !f.noColor })

	reg, lineup := participant.DefaultRegistry(), participant.DefaultLineup()
	if a.cfg.CatalogPath != "" {
		reg, lineup, err = participant.LoadCatalog(a.cfg.CatalogPath)
		if err != nil {
			return err
		}
	}

	st, closeStore, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	m, err := newModel(a.cfg, a.logger)
	if err != nil {
		return err
	}

	observers := core.MultiObserver{engine.NewLoggingObserver(a.logger)}
	if !f.quiet {
		observers = append(observers, printer.Observer(reg.DisplayTag))
	}

	ens, err := ensemble.New(m, func(o *ensemble.Options) {
		o.EngineConfig = a.cfg.EngineConfig()
		o.Registry = reg
		o.Lineup = lineup
		o.Concurrency = a.cfg.Concurrency
		o.GroupChatRounds = a.cfg.GroupChatRounds
		o.Store = st
		o.Observer = observers
		o.Logger = a.logger
	})
	if err != nil {
		return err
	}

	assetContext := assets.Describe(filepath.Join(assetsDir, f.category))
	printer.Info("Analyzing %s folder: %s", f.category, assetContext)

	out, err := ens.Run(ctx, mode, core.Brief{
		Category:    f.category,
		Description: f.description,
		Context:     assetContext,
	})
	if out == nil {
		return err
	}
	if err != nil {
		printer.Error("Error saving results: %v", err)
	}

	fmt.Fprintln(cmd.OutOrStdout())
	printer.Results(out.Results)
	printer.Timing(store.ProcessType(string(out.Mode)), out.Duration)
	printer.Summary(render.SummaryRow{
		Mode:       string(out.Mode),
		Category:   out.Brief.Category,
		Reason:     out.Reason,
		Iterations: out.Iterations,
		Results:    len(out.Results),
		Duration:   out.Duration,
	})

	path, err := store.SaveReport(resultsDir, out.Record())
	if err != nil {
		printer.Error("Error saving results: %v", err)
		return nil
	}
	printer.Info("Results saved to: %s", path)
	return nil
}

// openStore opens the badger store when a path is configured, otherwise an
// in-memory store.
func (a *app) openStore() (store.Store, func(), error) {
	if a.cfg.StorePath == "" {
		return store.NewInMemoryStore(), func() {}, nil
	}
	s, err := badgerstore.Open(a.cfg.StorePath, func(o *badgerstore.Options) { o.Logger = a.logger })
	if err != nil {
		return nil, nil, err
	}
	return s, func() {
		if err := s.Close(); err != nil {
			a.logger.Warn("Closing store failed", "error", err)
		}
	}, nil
}
