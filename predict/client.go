package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

var (
	// ErrStatus is returned for non-2xx responses.
	ErrStatus = errors.New("predict: unexpected status")
	// ErrMalformed is returned when a 2xx body is not {"prediction": label}.
	ErrMalformed = errors.New("predict: malformed response")
)

// DefaultEndpoint is where the reference service listens.
const DefaultEndpoint = "http://localhost:5000/predict"

const maxResponseBytes = 1 << 20

// Client posts images to a prediction endpoint.
type Client struct {
	url    *url.URL
	client *http.Client
}

// NewClient validates endpoint and returns a Client. A nil client means
// http.DefaultClient.
func NewClient(endpoint string, client *http.Client) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid url %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid url %q: missing host", endpoint)
	}

	if client == nil {
		client = http.DefaultClient
	}

	return &Client{url: u, client: client}, nil
}

// Endpoint returns the configured URL.
func (c *Client) Endpoint() string { return c.url.String() }

func (c *Client) Predict(ctx context.Context, req *Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	request.Header.Set("X-Request-Id", uuid.NewString())

	response, err := c.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		resp, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return nil, fmt.Errorf("%w: %d, body: %s", ErrStatus, response.StatusCode, bytes.TrimSpace(resp))
	}

	var resp Response
	if err = json.NewDecoder(io.LimitReader(response.Body, maxResponseBytes)).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if resp.Prediction == nil {
		return nil, fmt.Errorf("%w: missing prediction", ErrMalformed)
	}

	return &resp, nil
}
