package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	api "github.com/kubev2v/pcap-query/api/v1alpha1"
	"github.com/kubev2v/pcap-query/pkg/requestid"
)

const apiPrefix = "/api/v1/pcap"

var ErrNotFound = errors.New("not found")

type ClientOption func(c *Client)

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// WithToken sends the token as a bearer token on every request.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// Client talks to the pcap query api.
type Client struct {
	server string
	token  string
	http   *http.Client
}

func NewClient(server string, opts ...ClientOption) *Client {
	c := &Client{
		server: strings.TrimSuffix(server, "/"),
		http:   &http.Client{Timeout: 5 * time.Minute},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Fixed(ctx context.Context, req api.FixedPcapRequest) (*api.PcapStatus, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var status api.PcapStatus
	if err := c.doJSON(ctx, http.MethodPost, apiPrefix+"/fixed", bytes.NewReader(body), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) Status(ctx context.Context, jobID string) (*api.PcapStatus, error) {
	var status api.PcapStatus
	if err := c.doJSON(ctx, http.MethodGet, apiPrefix+"/"+url.PathEscape(jobID), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// List returns the jobs of the caller. An empty state returns every job.
func (c *Client) List(ctx context.Context, state string) ([]api.PcapStatus, error) {
	path := apiPrefix
	if state != "" {
		path += "?state=" + url.QueryEscape(state)
	}
	var statuses []api.PcapStatus
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (c *Client) Kill(ctx context.Context, jobID string) (*api.PcapStatus, error) {
	var status api.PcapStatus
	if err := c.doJSON(ctx, http.MethodDelete, apiPrefix+"/kill/"+url.PathEscape(jobID), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) Configuration(ctx context.Context, jobID string) (*api.PcapConfiguration, error) {
	var cfg api.PcapConfiguration
	if err := c.doJSON(ctx, http.MethodGet, apiPrefix+"/"+url.PathEscape(jobID)+"/config", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Client) Pdml(ctx context.Context, jobID string, page int) (*api.Pdml, error) {
	var doc api.Pdml
	if err := c.doJSON(ctx, http.MethodGet, pagePath(jobID, "pdml", page), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Raw streams a result page. The caller closes the reader.
func (c *Client) Raw(ctx context.Context, jobID string, page int) (io.ReadCloser, error) {
	resp, err := c.do(ctx, http.MethodGet, pagePath(jobID, "raw", page), nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func pagePath(jobID, kind string, page int) string {
	return fmt.Sprintf("%s/%s/%s?page=%d", apiPrefix, url.PathEscape(jobID), kind, page)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body io.Reader, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// do returns the response of a successful request. Any other response is turned into an error.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.server+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set(requestid.HeaderName, requestid.Generate())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	var apiErr api.Error
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
	}
	return nil, fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, apiErr.Message)
}
