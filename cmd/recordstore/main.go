/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/suparena/recordstore"
	"github.com/suparena/recordstore/config"
	"github.com/suparena/recordstore/datastore/ddb"
	"github.com/suparena/recordstore/http"
	"github.com/suparena/recordstore/logger"
	"github.com/suparena/recordstore/model"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recordstore",
		Short: "REST CRUD for Person and Book records on DynamoDB",
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(
		newServeCommand(),
		newCreateTablesCommand(),
		newTablesCommand(),
		newVersionCommand(),
	)
	return cmd
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API",
		Args:  cobra.NoArgs,
	}
	cfg := config.Load(cmd)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	}
	return cmd
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return logger.NewWithConfig(os.Stdout, cfg.LoggerConfig())
}

func serve(ctx context.Context, cfg *config.Config) error {
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	client, err := ddb.NewDynamoDBClient(ctx, cfg.ClientConfig(), log)
	if err != nil {
		return err
	}

	storeOpts := cfg.StoreOptions(log)
	people, err := recordstore.NewVariants[model.Person](client, model.PersonCodec{}, cfg.AsyncConcurrency, storeOpts...)
	if err != nil {
		return err
	}
	books, err := recordstore.NewVariants[model.Book](client, model.BookCodec{}, cfg.AsyncConcurrency, storeOpts...)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler, err := http.NewHandler(http.Backend{
		Log:      log,
		Registry: reg,
		People:   people,
		Books:    books,

		StreamOptions: cfg.StreamOptions(),
	})
	if err != nil {
		return err
	}

	httpServer := &nethttp.Server{
		Addr:              cfg.HTTPBindAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("Listening", zap.String("transport", "http"), zap.String("addr", cfg.HTTPBindAddress))
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			log.Error("unable to start http server", zap.Error(err))
			return err
		}
	}

	log.Info("Shutting down")
	cctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(cctx)
}

func newCreateTablesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-tables",
		Short: "Create the record tables, skipping those that exist",
		Args:  cobra.NoArgs,
	}
	cfg := config.Load(cmd)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		schemas, err := config.LoadTablesFile(cfg.TablesFile)
		if err != nil {
			return err
		}
		client, err := ddb.NewDynamoDBClient(cmd.Context(), cfg.ClientConfig(), log)
		if err != nil {
			return err
		}
		return ddb.CreateTables(cmd.Context(), client, schemas, log)
	}
	return cmd
}

func newTablesCommand() *cobra.Command {
	var tablesFile string
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Print the table definitions as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schemas, err := config.LoadTablesFile(tablesFile)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(config.DefinitionsOf(schemas))
		},
	}
	cmd.Flags().StringVar(&tablesFile, "tables-file", "", "YAML table definitions; defaults to the built-in person and book tables")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := recordstore.GetVersionInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "recordstore %s (git: %s, built: %s, %s)\n",
				info.Version, info.GitCommit, info.BuildDate, info.GoVersion)
		},
	}
}
