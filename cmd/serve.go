package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/arnavj/consultmatch/internal/logger"
	"github.com/arnavj/consultmatch/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the consultmatch HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting consultmatch", zap.String("version", version))

	st, err := newStore(ctx, config.MongoDB, logger)
	if err != nil {
		logger.Fatal("connecting to document store", zap.Error(err))
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			logger.Warn("closing document store", zap.Error(err))
		}
	}()

	pipe, err := newPipeline(ctx, config, st, logger)
	if err != nil {
		logger.Fatal("building pipeline", zap.Error(err))
	}

	listen := ""
	if config.Server != nil {
		listen = config.Server.Listen
	}

	srv := server.New(server.Config{Listen: listen}, pipe, st, logger)
	if err := srv.Start(ctx); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}
