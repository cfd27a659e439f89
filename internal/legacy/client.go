package legacy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carelink-sync/internal/config"
	"carelink-sync/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrDataAbsent legacy endpoint answered but carried no decodable payload
var ErrDataAbsent = errors.New("legacy response body absent")

// Client legacy clinic system API client
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient creates a legacy API client
func NewClient(cfg *config.LegacyConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: client,
		logger:     logger,
	}
}

// FetchClients pulls the full client roster. Connectivity failures and absent
// bodies are errors: the whole run aborts without this data.
func (c *Client) FetchClients(ctx context.Context) ([]models.ClientRecord, error) {
	var clients []models.ClientRecord
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&clients).
		Post("/api/v1/clients")
	if err != nil {
		c.logger.Error("Legacy system connection error on client fetch", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch clients: %w", err)
	}
	if resp.IsError() {
		c.logger.Error("Legacy system rejected client fetch",
			zap.Int("status_code", resp.StatusCode()),
		)
		return nil, fmt.Errorf("failed to fetch clients: status %d", resp.StatusCode())
	}
	if len(resp.Body()) == 0 {
		c.logger.Error("Legacy client fetch returned no payload")
		return nil, ErrDataAbsent
	}
	return clients, nil
}

// FetchComments pulls comments for one client guid scoped by agency and a
// date window. Errors propagate; the caller decides whether to degrade.
func (c *Client) FetchComments(ctx context.Context, query models.CommentQuery) ([]models.CommentRecord, error) {
	var comments []models.CommentRecord
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(query).
		SetResult(&comments).
		Post("/api/v1/notes")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments for client %s: %w", query.ClientGuid, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch comments for client %s: status %d",
			query.ClientGuid, resp.StatusCode())
	}
	if len(resp.Body()) == 0 {
		return nil, ErrDataAbsent
	}
	return comments, nil
}
