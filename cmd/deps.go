package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/arnavj/consultmatch/internal/ai"
	"github.com/arnavj/consultmatch/internal/ai/gemini"
	"github.com/arnavj/consultmatch/internal/mail"
	"github.com/arnavj/consultmatch/internal/matching"
	"github.com/arnavj/consultmatch/internal/pipeline"
	"github.com/arnavj/consultmatch/internal/secrets"
	"github.com/arnavj/consultmatch/internal/store"
)

func newComparator(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Comparator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ai configuration is required")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, logger)
	if err != nil {
		return nil, err
	}

	return gemini.NewComparator(generator, cfg.Gemini.MaxLogLength, logger), nil
}

func newMailer(cfg *SMTPConfig, logger *zap.Logger) (*mail.Sender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("smtp configuration is required")
	}

	password := cfg.Password
	if cfg.PasswordFile != "" || password == "" {
		loaded, err := secrets.Load(secrets.Source{
			Name:  "smtp password",
			Value: cfg.Password,
			File:  cfg.PasswordFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set smtp.password-file or SMTP_PASSWORD_FILE)", err)
		}
		password = loaded
	}

	return mail.NewSender(mail.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: password,
		From:     cfg.From,
		Timeout:  cfg.Timeout,
	}, logger)
}

func newPolicy(cfg *MatchingConfig) *matching.Policy {
	if cfg == nil {
		return matching.NewPolicy(0, 0)
	}
	return matching.NewPolicy(cfg.Threshold, cfg.TopK)
}

func newStore(ctx context.Context, cfg *MongoDBConfig, logger *zap.Logger) (*store.Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mongodb configuration is required")
	}
	return store.Connect(ctx, cfg.URI, cfg.Database, logger)
}

func newPipeline(ctx context.Context, config *Config, st *store.Store, logger *zap.Logger) (*pipeline.Pipeline, error) {
	comparator, err := newComparator(ctx, config.AI, logger)
	if err != nil {
		return nil, fmt.Errorf("building comparator: %w", err)
	}

	mailer, err := newMailer(config.SMTP, logger)
	if err != nil {
		return nil, fmt.Errorf("building mail sender: %w", err)
	}

	return pipeline.New(
		comparator,
		matching.NewRanker(logger),
		newPolicy(config.Matching),
		matching.NewResolver(st, logger),
		mailer,
		st,
		logger,
	), nil
}
