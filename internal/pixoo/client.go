package pixoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"
)

// DefaultPort is the default Pixoo HTTP API port.
const DefaultPort = 80

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 5 * time.Second

// Client is an HTTP client for communicating with Pixoo devices.
type Client struct {
	IP         string
	Port       int
	HTTPClient *http.Client
	testURL    string // For testing with httptest
}

// NewClient creates a new Pixoo client with default settings.
func NewClient(ip string) *Client {
	return &Client{
		IP:   ip,
		Port: DefaultPort,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// NewClientWithPort creates a new Pixoo client with a custom port.
func NewClientWithPort(ip string, port int) *Client {
	return &Client{
		IP:   ip,
		Port: port,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Endpoint returns the full API endpoint URL.
func (c *Client) Endpoint() string {
	if c.testURL != "" {
		return c.testURL
	}
	return fmt.Sprintf("http://%s:%d/post", c.IP, c.Port)
}

// sendCommand sends a command to the Pixoo device.
func (c *Client) sendCommand(ctx context.Context, command any) ([]byte, error) {
	data, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.Endpoint(), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// SendImage sends a single image to the Pixoo device.
func (c *Client) SendImage(ctx context.Context, img image.Image) error {
	return c.SendImageWithOptions(ctx, img, nil)
}

// SendImageWithOptions sends an image with custom options.
func (c *Client) SendImageWithOptions(ctx context.Context, img image.Image, opts *FrameCommandOptions) error {
	cmd := CreatePixooFrameCommand(img, opts)
	if _, err := c.sendCommand(ctx, cmd); err != nil {
		return fmt.Errorf("failed to send frame: %w", err)
	}
	return nil
}

// SendAnimation resets the device's picture ID counter and uploads every
// frame under a fresh ID.
func (c *Client) SendAnimation(ctx context.Context, frames []image.Image, durations []time.Duration) error {
	cmds, err := CreateAnimationCommands(frames, durations, 1)
	if err != nil {
		return err
	}
	if err := c.ResetGifID(ctx); err != nil {
		return err
	}
	for _, cmd := range cmds {
		if _, err := c.sendCommand(ctx, cmd); err != nil {
			return fmt.Errorf("failed to send frame %d/%d: %w", cmd.PicOffset+1, cmd.PicNum, err)
		}
	}
	return nil
}

// ResetGifID resets the picture ID counter used by Draw/SendHttpGif.
func (c *Client) ResetGifID(ctx context.Context) error {
	if _, err := c.sendCommand(ctx, CreateResetGifIDCommand()); err != nil {
		return fmt.Errorf("failed to reset gif id: %w", err)
	}
	return nil
}

// GetDeviceTime queries the device time.
func (c *Client) GetDeviceTime(ctx context.Context) ([]byte, error) {
	cmd := CreateDeviceTimeCommand()
	return c.sendCommand(ctx, cmd)
}

// SetBrightness sets the display brightness (0-100).
func (c *Client) SetBrightness(ctx context.Context, brightness int) error {
	cmd := CreateBrightnessCommand(brightness)
	_, err := c.sendCommand(ctx, cmd)
	return err
}

// IsReachable checks if the device is reachable.
func (c *Client) IsReachable(ctx context.Context) bool {
	_, err := c.GetDeviceTime(ctx)
	return err == nil
}
