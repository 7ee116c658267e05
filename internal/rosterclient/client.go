package rosterclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/atenjiha/MAHSA-LEARN/internal/app"
)

var ErrNotLoggedIn = errors.New("not logged in")

// Client drives the roster import and export endpoints as an educator.
type Client struct {
	http  *resty.Client
	token string
}

func New(baseURL string, timeout time.Duration) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: client}
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func responseError(resp *resty.Response) error {
	if apiErr, ok := resp.Error().(*apiError); ok && apiErr.Error != "" {
		if apiErr.Message != "" {
			return fmt.Errorf("%s: %s (%d)", apiErr.Error, apiErr.Message, resp.StatusCode())
		}
		return fmt.Errorf("%s (%d)", apiErr.Error, resp.StatusCode())
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode())
}

func (c *Client) Login(ctx context.Context, id, pin string) error {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"id": id, "pin": pin}).
		SetResult(&out).
		SetError(&apiError{}).
		Post("/api/auth/login")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return responseError(resp)
	}
	c.token = out.AccessToken
	return nil
}

// Import uploads a roster CSV and returns the server's merge summary.
func (c *Client) Import(ctx context.Context, roster io.Reader) (app.ImportSummary, error) {
	if c.token == "" {
		return app.ImportSummary{}, ErrNotLoggedIn
	}
	body, err := io.ReadAll(roster)
	if err != nil {
		return app.ImportSummary{}, err
	}
	var summary app.ImportSummary
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetHeader("Content-Type", "text/csv").
		SetBody(body).
		SetResult(&summary).
		SetError(&apiError{}).
		Post("/api/users/import")
	if err != nil {
		return app.ImportSummary{}, err
	}
	if resp.IsError() {
		return app.ImportSummary{}, responseError(resp)
	}
	return summary, nil
}

// Export writes the server's roster CSV to w.
func (c *Client) Export(ctx context.Context, w io.Writer) error {
	if c.token == "" {
		return ErrNotLoggedIn
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetHeader("Accept", "text/csv").
		SetError(&apiError{}).
		Get("/api/users/export")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return responseError(resp)
	}
	_, err = w.Write(resp.Body())
	return err
}
