package httpclient

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// Client wraps resty for calls to external payment providers. No automatic
// retries: resubmitting a charge must always be an explicit caller action,
// otherwise a slow gateway response can turn into a duplicate authorization.
type Client struct {
	r *resty.Client
}

// New creates a new HTTP client with a default timeout.
func New() *Client {
	r := resty.New().SetTimeout(30 * time.Second)
	return &Client{r: r}
}

// WithTimeout sets a custom timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.r.SetTimeout(d)
	return c
}

// WithHeader sets a header on every request.
func (c *Client) WithHeader(key, value string) *Client {
	c.r.SetHeader(key, value)
	return c
}

// Get sends a GET request and returns the response body.
func (c *Client) Get(url string) ([]byte, error) {
	resp, err := c.r.R().Get(url)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// Post sends a POST request with a JSON body and returns the response body.
func (c *Client) Post(url string, body interface{}) ([]byte, error) {
	req := c.r.R().SetHeader("Content-Type", "application/json")
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Post(url)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// Request returns a new resty Request for callers that need the full
// response (status code, multipart forms, custom headers).
func (c *Client) Request() *resty.Request {
	return c.r.R()
}
