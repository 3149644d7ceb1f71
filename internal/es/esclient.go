package es

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/storefront/internal/config"
)

// NewClient connects and checks the cluster answers before returning.
func NewClient(ctx context.Context, cfg config.ESConfig, logger *slog.Logger) (*elasticsearch.Client, error) {
	logger.Info("connecting to elasticsearch", "url", cfg.URL, "user", cfg.User)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}

	logger.Info("connected to elasticsearch")
	return client, nil
}
