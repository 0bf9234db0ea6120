package platform

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rflorenc/tackle-migrator/internal/apperrors"
	"github.com/rflorenc/tackle-migrator/internal/models"
)

// DefaultTimeout bounds every request when the config does not set one.
const DefaultTimeout = 60 * time.Second

// PageSize is requested from paginated origin collections.
const PageSize = 1000

// Client is a bearer-token JSON client for one target system.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a Client for a target. A zero timeout means DefaultTimeout.
func NewClient(target *models.Target, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if target.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Client{
		baseURL: target.BaseURL(),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// SetToken sets the bearer token sent on every request. An empty token sends
// an empty Authorization header, for targets that allow anonymous access.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Page is the page metadata of a Spring Data REST collection.
type Page struct {
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Number        int `json:"number"`
}

// collectionEnvelope is the legacy origin wrapper:
// {"_embedded": {"<resource>": [...]}, "page": {...}}.
type collectionEnvelope struct {
	Embedded map[string][]json.RawMessage `json:"_embedded"`
	Page     *Page                        `json:"page"`
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload interface{}) ([]byte, int, error) {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("marshaling body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		u += sep + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s %s: %v", apperrors.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, resp.StatusCode, &apperrors.HTTPError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   truncate(string(body), 200),
		}
	}
	return body, resp.StatusCode, nil
}

// Get performs an authenticated GET request and returns the response body.
func (c *Client) Get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	body, _, err := c.do(ctx, http.MethodGet, path, params, nil)
	return body, err
}

// GetJSON performs an authenticated GET and unmarshals the response into dest.
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values, dest interface{}) error {
	body, err := c.Get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// GetCollection fetches every item of a collection endpoint. Bare JSON arrays
// and the legacy "_embedded" envelope are both accepted; paged envelopes are
// followed until the last page.
func (c *Client) GetCollection(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error) {
	var all []json.RawMessage
	for page := 0; ; page++ {
		q := url.Values{}
		for k, v := range params {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(page))
		q.Set("size", strconv.Itoa(PageSize))

		body, err := c.Get(ctx, path, q)
		if err != nil {
			return nil, err
		}
		items, pg, err := UnwrapCollection(body, path)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if pg == nil || pg.Number+1 >= pg.TotalPages || len(items) == 0 {
			return all, nil
		}
	}
}

// List fetches a collection with a single unpaged request. The destination
// returns whole collections as bare arrays.
func (c *Client) List(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error) {
	body, err := c.Get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	items, _, err := UnwrapCollection(body, path)
	return items, err
}

// UnwrapCollection decodes a collection body. For the envelope form, the
// items are keyed by the final segment of path.
func UnwrapCollection(body []byte, path string) ([]json.RawMessage, *Page, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil, nil
	}
	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return items, nil, nil
	}

	var env collectionEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if env.Embedded == nil && env.Page == nil {
		return nil, nil, fmt.Errorf("parsing %s: unexpected collection envelope", path)
	}
	return env.Embedded[lastSegment(path)], env.Page, nil
}

// Post performs an authenticated POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, payload interface{}) ([]byte, int, error) {
	return c.do(ctx, http.MethodPost, path, nil, payload)
}

// PostJSON performs a POST and unmarshals the response into dest.
func (c *Client) PostJSON(ctx context.Context, path string, payload, dest interface{}) error {
	body, _, err := c.Post(ctx, path, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// Patch performs an authenticated PATCH request.
func (c *Client) Patch(ctx context.Context, path string, payload interface{}) ([]byte, int, error) {
	return c.do(ctx, http.MethodPatch, path, nil, payload)
}

// Delete performs an authenticated DELETE request. A 404 is treated as
// already deleted.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, status, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if status == http.StatusNotFound {
		return nil
	}
	return err
}

func lastSegment(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
