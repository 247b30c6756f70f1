package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Client talks to a shotsearch server. It is safe for concurrent use.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	obs       *observer
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: DefaultTimeout, userAgent: "shotsearch-go"}
	for _, o := range opts {
		o.apply(cfg)
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("shotsearch: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("shotsearch: base url %q must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("shotsearch: base url %q has no host", baseURL)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return &Client{base: u, http: hc, userAgent: cfg.userAgent, obs: obs}, nil
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string { return c.base.String() }

// Search runs a relevance search over the library.
func (c *Client) Search(ctx context.Context, query string, opts ...SearchOption) (resp SearchResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	var p searchParams
	for _, o := range opts {
		o(&p)
	}
	q := url.Values{"q": {query}}
	if p.limit != nil {
		q.Set("limit", strconv.Itoa(*p.limit))
	}
	_, err = c.do(ctx, http.MethodGet, "/api/search", q, nil, "", &resp)
	return resp, err
}

// Upload sends one batch of files. The call succeeds when the server
// accepted the batch, even if some files were rejected; see Errors.
func (c *Client) Upload(ctx context.Context, files []File) (resp UploadResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("upload", start, err) }()

	body, contentType, err := encodeMultipart(files)
	if err != nil {
		return UploadResponse{}, err
	}
	hdr, err := c.do(ctx, http.MethodPost, "/api/upload", nil, body, contentType, &resp)
	if err != nil {
		return UploadResponse{}, err
	}
	resp.VisionTokens, _ = strconv.Atoi(hdr.Get("X-Vision-Tokens"))
	return resp, nil
}

// UploadPaths reads the files at paths and uploads them as one batch.
func (c *Client) UploadPaths(ctx context.Context, paths ...string) (UploadResponse, error) {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return UploadResponse{}, fmt.Errorf("shotsearch: read %s: %w", p, err)
		}
		files = append(files, File{Name: filepath.Base(p), Data: data})
	}
	return c.Upload(ctx, files)
}

// List returns every screenshot, newest first.
func (c *Client) List(ctx context.Context) (shots []Screenshot, err error) {
	start := time.Now()
	defer func() { c.obs.observe("list", start, err) }()

	var resp struct {
		Screenshots []Screenshot `json:"screenshots"`
	}
	if _, err = c.do(ctx, http.MethodGet, "/api/screenshots", nil, nil, "", &resp); err != nil {
		return nil, err
	}
	return resp.Screenshots, nil
}

// Get returns one screenshot.
func (c *Client) Get(ctx context.Context, id string) (shot Screenshot, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get", start, err) }()

	_, err = c.do(ctx, http.MethodGet, "/api/screenshots/"+url.PathEscape(id), nil, nil, "", &shot)
	return shot, err
}

// Delete removes a screenshot and its image.
func (c *Client) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete", start, err) }()

	_, err = c.do(ctx, http.MethodDelete, "/api/screenshots/"+url.PathEscape(id), nil, nil, "", nil)
	return err
}

// Preview returns the screenshot text highlighted for query.
func (c *Client) Preview(ctx context.Context, id, query string) (p Preview, err error) {
	start := time.Now()
	defer func() { c.obs.observe("preview", start, err) }()

	q := url.Values{"q": {query}}
	_, err = c.do(ctx, http.MethodGet, "/api/screenshots/"+url.PathEscape(id)+"/preview", q, nil, "", &p)
	return p, err
}

// File downloads the stored image bytes and their content type.
func (c *Client) File(ctx context.Context, id string) (data []byte, contentType string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("file", start, err) }()

	res, err := c.send(ctx, http.MethodGet, "/api/files/"+url.PathEscape(id), nil, nil, "")
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return nil, "", decodeError(res)
	}
	data, err = io.ReadAll(res.Body)
	if err != nil {
		return nil, "", fmt.Errorf("shotsearch: read file: %w", err)
	}
	return data, res.Header.Get("Content-Type"), nil
}

// Stats returns the library summary.
func (c *Client) Stats(ctx context.Context) (st Stats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("stats", start, err) }()

	_, err = c.do(ctx, http.MethodGet, "/api/stats", nil, nil, "", &st)
	return st, err
}

// Searches returns up to limit recent searches, newest first. A
// non-positive limit means the server default.
func (c *Client) Searches(ctx context.Context, limit int) (entries []SearchLogEntry, err error) {
	start := time.Now()
	defer func() { c.obs.observe("searches", start, err) }()

	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	var resp struct {
		Searches []SearchLogEntry `json:"searches"`
	}
	if _, err = c.do(ctx, http.MethodGet, "/api/searches", q, nil, "", &resp); err != nil {
		return nil, err
	}
	return resp.Searches, nil
}

// Usage returns the vision token report for period.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) (r UsageReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, err) }()

	var q url.Values
	if period != "" {
		q = url.Values{"period": {string(period)}}
	}
	_, err = c.do(ctx, http.MethodGet, "/api/usage", q, nil, "", &r)
	return r, err
}

// Health returns the server health. A degraded or failing server still
// yields a status; the error is reserved for transport failures.
func (c *Client) Health(ctx context.Context) (h HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	res, err := c.send(ctx, http.MethodGet, "/health", nil, nil, "")
	if err != nil {
		return HealthStatus{}, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusServiceUnavailable {
		return HealthStatus{}, decodeError(res)
	}
	if err := json.NewDecoder(res.Body).Decode(&h); err != nil {
		return HealthStatus{}, fmt.Errorf("shotsearch: decode health: %w", err)
	}
	return h, nil
}

// do sends a request and decodes a 2xx JSON body into out (nil skips it).
func (c *Client) do(
	ctx context.Context, method, path string, q url.Values,
	body io.Reader, contentType string, out any,
) (http.Header, error) {
	res, err := c.send(ctx, method, path, q, body, contentType)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, decodeError(res)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return res.Header, nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("shotsearch: decode %s %s: %w", method, path, err)
	}
	return res.Header, nil
}

func (c *Client) send(
	ctx context.Context, method, path string, q url.Values,
	body io.Reader, contentType string,
) (*http.Response, error) {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("shotsearch: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shotsearch: %s %s: %w", method, path, err)
	}
	return res, nil
}

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

func decodeError(res *http.Response) error {
	apiErr := &APIError{StatusCode: res.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	if err != nil {
		return apiErr
	}
	var body errorBody
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Message = body.text()
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func encodeMultipart(files []File) (io.Reader, string, error) {
	if len(files) == 0 {
		return nil, "", errors.New("shotsearch: no files to upload")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		ct := f.ContentType
		if ct == "" {
			ct = mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Name)))
		}
		if ct == "" {
			ct = "application/octet-stream"
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="files"; filename="%s"`, quoteEscaper.Replace(f.Name)))
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("shotsearch: encode %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("shotsearch: encode %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("shotsearch: encode upload: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
