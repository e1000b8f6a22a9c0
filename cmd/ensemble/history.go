package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/hupe1980/ensemble/render"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		category string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored runs, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.StorePath == "" {
				return errors.New("history needs ENSEMBLE_STORE_PATH to point at a badger store")
			}
			st, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			records, err := st.List(cmd.Context(), category, limit)
			if err != nil {
				return err
			}
			render.New(cmd.OutOrStdout(), func(o *render.Options) { o.Colors = a.cfg.Colors }).Records(records)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only list runs of this category")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs")
	return cmd
}
