// Package churchapi — клиент внешнего REST API церкви, из которого берутся
// записи посещаемости, пожертвований, мероприятий и число членов общины.
package churchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/church-dashboard/internal/config"
)

// maxPages ограничивает обход страниц, если сервер игнорирует пагинацию.
const maxPages = 1000

// APIError — ответ API с кодом вне диапазона 2xx.
type APIError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Endpoint, e.Status, e.Message)
}

// Meta — метаданные постраничного ответа.
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type page[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

// Client ходит во внешний API с сервисным токеном.
type Client struct {
	baseURL    string
	token      string
	pageSize   int
	httpClient *http.Client
}

// NewClient создаёт клиент по настройкам из конфига.
func NewClient(cfg config.ChurchAPI) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	timeout := cfg.APITimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.ServiceToken,
		pageSize:   pageSize,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u, &buf)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Endpoint: method + " " + path, Status: resp.StatusCode, Message: readMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// readMessage достаёт поле message из тела ошибки, если оно есть.
func readMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

// listAll проходит по страницам, пока не соберёт meta.total записей
// или не получит неполную страницу.
func listAll[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	if query == nil {
		query = url.Values{}
	}
	var out []T
	for n := 1; n <= maxPages; n++ {
		query.Set("page", strconv.Itoa(n))
		query.Set("limit", strconv.Itoa(c.pageSize))

		var p page[T]
		if err := c.do(ctx, http.MethodGet, path, query, nil, &p); err != nil {
			return nil, err
		}
		out = append(out, p.Data...)

		switch {
		case len(p.Data) < c.pageSize:
			return out, nil
		case p.Meta.Total > 0 && len(out) >= p.Meta.Total:
			return out, nil
		case p.Meta.TotalPages > 0 && n >= p.Meta.TotalPages:
			return out, nil
		}
	}
	return nil, fmt.Errorf("%s: more than %d pages", path, maxPages)
}

func rangeQuery(from, to time.Time) url.Values {
	q := url.Values{}
	q.Set("startDate", from.UTC().Format(time.RFC3339))
	q.Set("endDate", to.UTC().Format(time.RFC3339))
	return q
}
