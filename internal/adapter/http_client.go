package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/config"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

type httpServerAdapter struct {
	client *resty.Client

	mu    sync.RWMutex
	token string
}

// NewHTTPServerAdapter builds the REST transport from the agent adapter
// settings. Zero-value fields fall back to localhost and a 15 second timeout.
func NewHTTPServerAdapter(cfg config.ClientAdapter) ServerAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.RequestTimeout)

	return &httpServerAdapter{client: cli}
}

func (h *httpServerAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *httpServerAdapter) Login(ctx context.Context, username, password string) (string, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.LoginRequest{Username: username, Password: password}).
		Post("/api/login")
	if err != nil {
		return "", fmt.Errorf("login request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	token, err := parseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		// older deployments only return the token in the body
		var body struct {
			Token string `json:"token"`
		}
		if jsonErr := json.Unmarshal(resp.Body(), &body); jsonErr != nil || body.Token == "" {
			return "", fmt.Errorf("login parse bearer token: %w", err)
		}
		token = body.Token
	}

	h.SetToken(token)
	return token, nil
}

func (h *httpServerAdapter) Me(ctx context.Context) error {
	resp, err := h.authedRequest(ctx).Get("/api/me")
	if err != nil {
		return fmt.Errorf("me request: %w", err)
	}
	return mapHTTPError(resp)
}

func (h *httpServerAdapter) Export(ctx context.Context) (models.Export, error) {
	resp, err := h.authedRequest(ctx).Get("/api/export")
	if err != nil {
		return models.Export{}, fmt.Errorf("export request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Export{}, err
	}

	var export models.Export
	if err = json.Unmarshal(resp.Body(), &export); err != nil {
		return models.Export{}, fmt.Errorf("decode export response: %w", err)
	}

	return export, nil
}

func (h *httpServerAdapter) Save(ctx context.Context, key string, value json.RawMessage, intentHeader string) error {
	req := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.SaveRequest{Key: key, Value: value})
	if intentHeader != "" {
		req.SetHeader(models.DeleteIntentHeader, intentHeader)
	}

	resp, err := req.Post("/api/save")
	if err != nil {
		return fmt.Errorf("save request: %w", err)
	}

	return mapHTTPError(resp)
}

func (h *httpServerAdapter) Delete(ctx context.Context, key, intentHeader string) error {
	req := h.authedRequest(ctx).SetQueryParam("key", key)
	if intentHeader != "" {
		req.SetHeader(models.DeleteIntentHeader, intentHeader)
	}

	resp, err := req.Delete("/api/delete")
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}

	return mapHTTPError(resp)
}

func (h *httpServerAdapter) AppendItem(ctx context.Context, data json.RawMessage) (int64, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(data).
		Post("/api/item")
	if err != nil {
		return 0, fmt.Errorf("append item request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return 0, err
	}

	var ok models.OKResponse
	if err = json.Unmarshal(resp.Body(), &ok); err != nil {
		return 0, fmt.Errorf("decode append item response: %w", err)
	}

	return ok.ID, nil
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func parseBearerToken(value string) (string, error) {
	parts := strings.Split(strings.TrimSpace(value), " ")
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}
