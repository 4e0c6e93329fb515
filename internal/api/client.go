// Package api talks to the advisory backend over JSON HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/dyike/WealthGo/internal/models"
)

// ErrMalformedBody is returned when a reply that must carry an envelope is not JSON.
var ErrMalformedBody = errors.New("backend returned a non-JSON body")

// Error is a non-2xx response. Detail is the server's own message when it sent one.
type Error struct {
	StatusCode int
	Detail     string
	Body       string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend error %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend error %d", e.StatusCode)
}

// Client is safe for concurrent use.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

type Option func(*Client)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")

	c := &Client{http: client, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}

	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		c.logger.Debug("backend response",
			zap.String("method", resp.Request.Method),
			zap.String("url", resp.Request.URL),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("elapsed", resp.Time()))
		return nil
	})
	return c
}

// SetBaseURL re-points the client, e.g. after a config reload.
func (c *Client) SetBaseURL(baseURL string) {
	c.http.SetBaseURL(strings.TrimRight(baseURL, "/"))
}

func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// Welcome opens a backend session and returns its id.
func (c *Client) Welcome(ctx context.Context) (string, error) {
	resp, err := c.http.R().SetContext(ctx).Post("/welcome")
	if err != nil {
		return "", fmt.Errorf("post /welcome: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return "", err
	}

	var welcome models.WelcomeResponse
	if err := json.Unmarshal(resp.Body(), &welcome); err != nil {
		return "", fmt.Errorf("parse welcome response: %w", err)
	}
	if welcome.SessionID == "" {
		return "", fmt.Errorf("welcome response has no session_id")
	}
	return welcome.SessionID, nil
}

// Chat sends one user turn. A body that is JSON but not a usable reply comes
// back as EnvelopeUnparsed with a nil error.
func (c *Client) Chat(ctx context.Context, text, sessionID string) (Envelope, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(models.ChatRequest{Text: text, SessionID: sessionID}).
		Post("/chat")
	if err != nil {
		return nil, fmt.Errorf("post /chat: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return decodeReply(resp.Body())
}

// Decide posts an advisory decision. Save replies are returned as decoded but
// callers usually ignore them; rerun replies must be JSON.
func (c *Client) Decide(ctx context.Context, req models.DecisionRequest) (Envelope, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post("/advisory/decision")
	if err != nil {
		return nil, fmt.Errorf("post /advisory/decision: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	if req.Action == models.ActionRerun {
		return decodeReply(resp.Body())
	}
	return DecodeEnvelope(resp.Body()), nil
}

func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(models.SessionRequest{SessionID: sessionID}).
		Post("/session/delete")
	if err != nil {
		return fmt.Errorf("post /session/delete: %w", err)
	}
	return checkResponse(resp)
}

// ListHNWI accepts a bare array or a {people} / {hnwi} wrapper.
func (c *Client) ListHNWI(ctx context.Context) ([]models.HNWI, error) {
	body, err := c.get(ctx, "/db/hnwi/all", nil)
	if err != nil {
		return nil, err
	}

	items, ok := extractArray(body, "people", "hnwi")
	if !ok {
		return nil, fmt.Errorf("parse hnwi list: unexpected response shape")
	}
	people := make([]models.HNWI, 0, len(items))
	for _, item := range items {
		if s, ok := asString(item); ok {
			people = append(people, models.HNWI{Person: s})
			continue
		}
		var p models.HNWI
		if err := json.Unmarshal(item, &p); err == nil && p.Person != "" {
			people = append(people, p)
		}
	}
	return people, nil
}

type ArticleQuery struct {
	Search string
	Limit  int
	Skip   int
}

// ListArticles returns Total only when the backend paginates server-side.
func (c *Client) ListArticles(ctx context.Context, person string, q ArticleQuery) (models.ArticlePage, error) {
	params := map[string]string{}
	if s := strings.TrimSpace(q.Search); s != "" {
		params["search"] = s
	}
	if q.Limit > 0 {
		params["limit"] = strconv.Itoa(q.Limit)
	}
	if q.Skip > 0 {
		params["skip"] = strconv.Itoa(q.Skip)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("person", person).
		SetQueryParams(params).
		Get("/db/articles/{person}")
	if err != nil {
		return models.ArticlePage{}, fmt.Errorf("get articles for %s: %w", person, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return models.ArticlePage{Articles: []models.DBArticle{}}, nil
	}
	if err := checkResponse(resp); err != nil {
		return models.ArticlePage{}, err
	}

	var page models.ArticlePage
	if err := json.Unmarshal(resp.Body(), &page); err != nil {
		return models.ArticlePage{}, fmt.Errorf("parse articles response: %w", err)
	}
	if page.Articles == nil {
		page.Articles = []models.DBArticle{}
	}
	return page, nil
}

// GetFinancials returns nil without error when the symbol has no stored statement.
func (c *Client) GetFinancials(ctx context.Context, symbol string) (*models.FinancialStatement, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("symbol", strings.ToUpper(strings.TrimSpace(symbol))).
		Get("/db/financials/{symbol}")
	if err != nil {
		return nil, fmt.Errorf("get financials for %s: %w", symbol, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	var wrapper struct {
		FinancialData struct {
			Results []struct {
				Data *models.FinancialStatement `json:"data"`
			} `json:"results"`
		} `json:"financial_data"`
	}
	if err := json.Unmarshal(resp.Body(), &wrapper); err != nil {
		return nil, fmt.Errorf("parse financials response: %w", err)
	}
	if len(wrapper.FinancialData.Results) == 0 {
		return nil, nil
	}
	stmt := wrapper.FinancialData.Results[0].Data
	if stmt != nil && stmt.Symbol == "" {
		stmt.Symbol = strings.ToUpper(symbol)
	}
	return stmt, nil
}

// ListFinancials returns the symbols that have stored statements.
func (c *Client) ListFinancials(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, "/db/financials/all", nil)
	if err != nil {
		return nil, err
	}

	items, ok := extractArray(body, "symbols", "financials", "results", "data")
	if !ok {
		return nil, fmt.Errorf("parse financials list: unexpected response shape")
	}
	seen := map[string]bool{}
	symbols := make([]string, 0, len(items))
	for _, item := range items {
		symbol, _ := asString(item)
		if symbol == "" {
			var rec struct {
				Symbol string `json:"symbol"`
				Data   struct {
					Symbol string `json:"symbol"`
				} `json:"data"`
			}
			if err := json.Unmarshal(item, &rec); err == nil {
				symbol = rec.Symbol
				if symbol == "" {
					symbol = rec.Data.Symbol
				}
			}
		}
		if symbol != "" && !seen[symbol] {
			seen[symbol] = true
			symbols = append(symbols, symbol)
		}
	}
	return symbols, nil
}

// ListInsights returns the raw body; its shape varies between deployments.
func (c *Client) ListInsights(ctx context.Context) (json.RawMessage, error) {
	body, err := c.get(ctx, "/db/insights", nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) Notifications(ctx context.Context, clientID string) (models.NotificationList, error) {
	body, err := c.get(ctx, "/notifications", map[string]string{"client_id": clientID})
	if err != nil {
		return models.NotificationList{}, err
	}
	var list models.NotificationList
	if err := json.Unmarshal(body, &list); err != nil {
		return models.NotificationList{}, fmt.Errorf("parse notifications: %w", err)
	}
	return list, nil
}

func (c *Client) MarkNotificationsRead(ctx context.Context, clientID string, ids []string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(models.MarkReadRequest{ClientID: clientID, IDs: ids}).
		Post("/notifications/mark-read")
	if err != nil {
		return fmt.Errorf("post /notifications/mark-read: %w", err)
	}
	return checkResponse(resp)
}

func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	resp, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func decodeReply(body []byte) (Envelope, error) {
	env := DecodeEnvelope(body)
	if u, ok := env.(EnvelopeUnparsed); ok && u.NotJSON {
		return nil, ErrMalformedBody
	}
	return env, nil
}

func checkResponse(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	return newError(resp.StatusCode(), resp.Body())
}

// newError pulls the message out of {detail}, {error} or {message}, falling
// back to the body text.
func newError(status int, body []byte) *Error {
	e := &Error{StatusCode: status, Body: string(body)}

	var fields map[string]json.RawMessage
	if json.Unmarshal(body, &fields) == nil {
		for _, key := range []string{"detail", "error", "message"} {
			raw, ok := fields[key]
			if !ok {
				continue
			}
			if s, ok := asString(raw); ok {
				e.Detail = s
			} else if string(raw) != "null" {
				e.Detail = string(raw)
			}
			if e.Detail != "" {
				return e
			}
		}
	}

	e.Detail = strings.TrimSpace(string(body))
	if e.Detail == "" {
		e.Detail = http.StatusText(status)
	}
	return e
}

// extractArray accepts a bare JSON array or an object wrapping one under any of keys.
func extractArray(body []byte, keys ...string) ([]json.RawMessage, bool) {
	if items := rawArray(body); items != nil {
		return items, true
	}
	obj := rawObject(body)
	if obj == nil {
		return nil, false
	}
	for _, k := range keys {
		if items := rawArray(obj[k]); items != nil {
			return items, true
		}
	}
	return []json.RawMessage{}, true
}
