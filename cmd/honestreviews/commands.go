package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/honestreviews/config"
	"github.com/spacesedan/honestreviews/internal/faults"
	"github.com/spacesedan/honestreviews/internal/models"
	"github.com/spacesedan/honestreviews/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort       string
	analyzeCategory string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, appConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		port := servePort
		if port == "" {
			port = a.cfg.Server.Port
		}
		return server.New(a.pipeline, a.cfg.RequestTimeout).ListenAndServe(ctx, port)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <product name>",
	Short: "Analyse one product and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, appConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		resp, err := a.pipeline.Analyze(ctx, models.AnalyzeRequest{
			ProductName: args[0],
			Category:    analyzeCategory,
		})
		if err != nil {
			return fmt.Errorf("%s (%s)", faults.PublicMessage(err), faults.KindOf(err))
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories accepted by --category",
	RunE: func(cmd *cobra.Command, args []string) error {
		categories, err := config.LoadCategories(appConfig.CategoriesFile)
		if err != nil {
			return err
		}
		for _, name := range categories.Names() {
			subs, _ := categories.Subreddits(name)
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d subreddits)\n", name, len(subs))
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "port to listen on (default $PORT or 8000)")
	analyzeCmd.Flags().StringVarP(&analyzeCategory, "category", "c", "", "restrict the search to a category's subreddits")
}
