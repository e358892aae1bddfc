// Package scraper fetches candidate posts from an Apify-style scraping API.
// Failures never propagate: the pipeline treats an empty result as "nothing
// found this round" and decides itself whether to try again.
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ifuryst/museos/internal/config"
	"github.com/ifuryst/museos/internal/models"
)

const (
	modeKeyword = "keyword"
	modeCreator = "creator"
)

type Fetcher interface {
	FetchByKeywords(ctx context.Context, queries []string, limitPerQuery int) []models.RawPost
	FetchByCreators(ctx context.Context, profileURLs []string, limitTotal int) []models.RawPost
}

// Unconfigured is used when no API token is set. It always returns nothing.
type Unconfigured struct{}

func (Unconfigured) FetchByKeywords(context.Context, []string, int) []models.RawPost {
	return []models.RawPost{}
}

func (Unconfigured) FetchByCreators(context.Context, []string, int) []models.RawPost {
	return []models.RawPost{}
}

type Client struct {
	baseURL        string
	token          string
	keywordActorID string
	profileActorID string
	logger         *zap.Logger
	client         *http.Client
}

// New returns a Client, or Unconfigured when the token or both actor ids
// are missing.
func New(cfg config.ScraperConfig, logger *zap.Logger) Fetcher {
	if cfg.Token == "" || (cfg.KeywordActorID == "" && cfg.ProfileActorID == "") {
		logger.Warn("Scraper is not configured, fetches will return no posts")
		return Unconfigured{}
	}
	return NewClient(cfg, logger)
}

func NewClient(cfg config.ScraperConfig, logger *zap.Logger) *Client {
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 120 * time.Second
	}

	tr := &http.Transport{
		IdleConnTimeout:       120 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   10,
		TLSHandshakeTimeout:   20 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		token:          cfg.Token,
		keywordActorID: cfg.KeywordActorID,
		profileActorID: cfg.ProfileActorID,
		logger:         logger,
		client: &http.Client{
			Transport: tr,
			Timeout:   timeout,
		},
	}
}

func (c *Client) FetchByKeywords(ctx context.Context, queries []string, limitPerQuery int) []models.RawPost {
	if len(queries) == 0 || c.keywordActorID == "" {
		return []models.RawPost{}
	}
	input := map[string]any{
		"searchQueries": queries,
		"maxResults":    max(limitPerQuery, 1),
	}
	return c.fetch(ctx, modeKeyword, c.keywordActorID, input)
}

func (c *Client) FetchByCreators(ctx context.Context, profileURLs []string, limitTotal int) []models.RawPost {
	if len(profileURLs) == 0 || c.profileActorID == "" {
		return []models.RawPost{}
	}
	input := map[string]any{
		"profileUrls": profileURLs,
		"maxResults":  max(limitTotal, 1),
	}
	return c.fetch(ctx, modeCreator, c.profileActorID, input)
}

func (c *Client) fetch(ctx context.Context, mode, actorID string, input map[string]any) []models.RawPost {
	start := time.Now()
	posts, err := c.runActor(ctx, actorID, input)
	scraperDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	if err != nil {
		scraperRequestsTotal.WithLabelValues(mode, "error").Inc()
		c.logger.Error("Scraper request failed",
			zap.String("mode", mode),
			zap.String("actor", actorID),
			zap.Error(err))
		return []models.RawPost{}
	}

	scraperRequestsTotal.WithLabelValues(mode, "success").Inc()
	scraperPostsTotal.WithLabelValues(mode).Add(float64(len(posts)))
	c.logger.Info("Scraper returned posts",
		zap.String("mode", mode),
		zap.Int("count", len(posts)),
		zap.Duration("duration", time.Since(start)))
	return posts
}

// runActor starts the actor synchronously and returns its dataset items.
func (c *Client) runActor(ctx context.Context, actorID string, input map[string]any) ([]models.RawPost, error) {
	endpoint := fmt.Sprintf("%s/acts/%s/run-sync-get-dataset-items?token=%s",
		c.baseURL, url.PathEscape(actorID), url.QueryEscape(c.token))

	jsonBody, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal actor input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("scraper API returned status %d: %s", resp.StatusCode, string(body))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var items []models.RawPost
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode dataset items: %w", err)
	}
	if items == nil {
		items = []models.RawPost{}
	}
	return items, nil
}
