// Package control issues lifecycle commands to the Wumpus World agent
// process over its HTTP API: reset, start, step, and environment upload.
//
// The control surface is deliberately dumb. Requests are one-shot POSTs, no
// retries, no response body parsing; the authoritative outcome always arrives
// on the websocket channel as a fresh snapshot.
package control

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"wumpuswatch/internal/logging"
)

// Pauser is the autoplay control surface the client drives as a side effect
// of lifecycle commands. A nil Pauser (one-shot CLI use) skips those effects.
type Pauser interface {
	Start()
	Pause()
}

// Client talks to the agent process's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	driver  Pauser
}

// New builds a control client for http://host:port. The driver may be nil.
func New(host string, port int, driver Pauser) *Client {
	return &Client{
		baseURL: fmt.Sprintf("http://%s:%d", host, port),
		http:    &http.Client{Timeout: 10 * time.Second},
		driver:  driver,
	}
}

// SetPauser installs the autoplay driver after construction. The control
// client and the driver reference each other, so one side has to bind late.
func (c *Client) SetPauser(driver Pauser) {
	c.driver = driver
}

// Reset puts the agent process back into its initial configuration. Autoplay
// is forced off first, unconditionally: even when the request fails, the
// console must not keep stepping a world it believes was reset.
func (c *Client) Reset(ctx context.Context) error {
	c.pause()
	if err := c.post(ctx, "/api/reset"); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	logging.Control("reset accepted")
	return nil
}

// Start begins autonomous play. The driver is started optimistically and
// rolled back on failure so a refused start leaves no phantom running state.
func (c *Client) Start(ctx context.Context) error {
	c.start()
	if err := c.post(ctx, "/api/start"); err != nil {
		c.pause()
		return fmt.Errorf("start: %w", err)
	}
	logging.Control("start accepted")
	return nil
}

// Step requests a single action. Fire-and-forget: the error is returned for
// logging only, never retried, and does not touch the autoplay state.
func (c *Client) Step(ctx context.Context) error {
	if err := c.post(ctx, "/api/step"); err != nil {
		return fmt.Errorf("step: %w", err)
	}
	return nil
}

// UploadEnvironment sends a world definition as a multipart form with the
// single field "file". Whatever the outcome, autoplay is forced off: after a
// successful upload the world has been replaced, and after a failed one the
// operator has an alert to deal with.
func (c *Client) UploadEnvironment(ctx context.Context, filename string, contents io.Reader) error {
	defer c.pause()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("upload %s: %w", filename, err)
	}
	if _, err := io.Copy(part, contents); err != nil {
		return fmt.Errorf("upload %s: %w", filename, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("upload %s: %w", filename, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload_env", &body)
	if err != nil {
		return fmt.Errorf("upload %s: %w", filename, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", filename, err)
	}
	defer drain(resp)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("upload %s: server returned %s", filename, resp.Status)
	}
	logging.Control("environment %s uploaded", filename)
	return nil
}

// post issues a bare POST with no body and checks only the status class.
func (c *Client) post(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}

// drain empties and closes the body so the connection can be reused.
func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func (c *Client) start() {
	if c.driver != nil {
		c.driver.Start()
	}
}

func (c *Client) pause() {
	if c.driver != nil {
		c.driver.Pause()
	}
}
