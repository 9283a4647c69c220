package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	pkgkafka "github.com/daffodeal/marketplace/pkg/kafka"
	"github.com/daffodeal/marketplace/pkg/logger"

	"github.com/daffodeal/marketplace/internal/app"
	"github.com/daffodeal/marketplace/internal/config"
	"github.com/daffodeal/marketplace/internal/event"
	"github.com/daffodeal/marketplace/internal/repository/postgres"
	"github.com/daffodeal/marketplace/internal/service"
)

// opener builds the import service and returns a function releasing its
// connections.
type opener func(ctx context.Context, log *slog.Logger) (*service.ImportService, func(), error)

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "importer",
		Short:         "Daffodeal catalog importer",
		Long:          "Imports CSV and XLSX product files into a shop's catalog.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL")
	root.AddCommand(newProductsCmd(open), newTemplateCmd())
	return root
}

func commandLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	return logger.NewWithWriter("catalog-importer", level, cmd.ErrOrStderr())
}

// connectImporter wires the import service against the configured Postgres
// and Kafka.
func connectImporter(ctx context.Context, log *slog.Logger) (*service.ImportService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	pool, err := app.ConnectPostgres(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), log)

	svc := service.NewImportService(
		postgres.NewProductRepository(pool),
		postgres.NewShopRepository(pool),
		event.NewProducer(producer, log),
		log,
	)
	closeFn := func() {
		if err := producer.Close(); err != nil {
			log.Error("kafka producer close error", slog.String("error", err.Error()))
		}
		pool.Close()
	}
	return svc, closeFn, nil
}

func requireFlag(cmd *cobra.Command, name string) (string, error) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return "", fmt.Errorf("--%s is required", name)
	}
	return v, nil
}
