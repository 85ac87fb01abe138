package pixoo

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client := NewClient("192.168.1.100")

	assert.Equal(t, "192.168.1.100", client.IP)
	assert.Equal(t, DefaultPort, client.Port)
	assert.NotNil(t, client.HTTPClient)
}

func TestNewClientWithPort(t *testing.T) {
	client := NewClientWithPort("192.168.1.100", 8080)

	assert.Equal(t, "192.168.1.100", client.IP)
	assert.Equal(t, 8080, client.Port)
}

func TestClientEndpoint(t *testing.T) {
	client := NewClient("192.168.1.100")
	assert.Equal(t, "http://192.168.1.100:80/post", client.Endpoint())

	clientCustomPort := NewClientWithPort("192.168.1.100", 8080)
	assert.Equal(t, "http://192.168.1.100:8080/post", clientCustomPort.Endpoint())
}

func TestClientSendImage(t *testing.T) {
	var receivedCommand FrameCommand
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		err := json.NewDecoder(r.Body).Decode(&receivedCommand)
		require.NoError(t, err)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"error_code":0}`))
	}))
	defer server.Close()

	// Extract host and port from test server
	client := newTestClient(server)

	img := newTestImage(64, 64, color.NRGBA{255, 0, 0, 255})
	err := client.SendImage(context.Background(), img)

	require.NoError(t, err)
	assert.Equal(t, "Draw/SendHttpGif", receivedCommand.Command)
	assert.Equal(t, 64, receivedCommand.PicWidth)
	assert.NotEmpty(t, receivedCommand.PicData)
}

func TestClientSendImageError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server)
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))

	err := client.SendImage(context.Background(), img)
	assert.ErrorContains(t, err, "failed to send frame")
}

func TestClientSendImageTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server)
	client.HTTPClient.Timeout = 50 * time.Millisecond

	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	ctx := context.Background()

	err := client.SendImage(ctx, img)
	assert.Error(t, err)
}

func TestClientGetDeviceTime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cmd PixooCommand
		_ = json.NewDecoder(r.Body).Decode(&cmd)
		assert.Equal(t, "Device/GetDeviceTime", cmd.Command)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"error_code":0,"UTCTime":1706000000}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	resp, err := client.GetDeviceTime(context.Background())

	require.NoError(t, err)
	assert.Contains(t, string(resp), "UTCTime")
}

func TestClientSetBrightness(t *testing.T) {
	var receivedCommand BrightnessCommand
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := json.NewDecoder(r.Body).Decode(&receivedCommand)
		require.NoError(t, err)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"error_code":0}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	err := client.SetBrightness(context.Background(), 75)

	require.NoError(t, err)
	assert.Equal(t, "Channel/SetBrightness", receivedCommand.Command)
	assert.Equal(t, 75, receivedCommand.Brightness)
}

func TestClientIsReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"error_code":0}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	reachable := client.IsReachable(context.Background())

	assert.True(t, reachable)
}

func TestClientIsReachableFailure(t *testing.T) {
	// Use a closed server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server)
	client.HTTPClient.Timeout = 100 * time.Millisecond

	reachable := client.IsReachable(context.Background())
	assert.False(t, reachable)
}

func TestClientSendAnimation(t *testing.T) {
	var mu sync.Mutex
	var commands []string
	var frames []FrameCommand
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cmd FrameCommand
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cmd))

		mu.Lock()
		commands = append(commands, cmd.Command)
		if cmd.Command == "Draw/SendHttpGif" {
			frames = append(frames, cmd)
		}
		mu.Unlock()

		_, _ = w.Write([]byte(`{"error_code":0}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	imgs := []image.Image{
		newTestImage(64, 64, color.NRGBA{255, 0, 0, 255}),
		newTestImage(64, 64, color.NRGBA{0, 255, 0, 255}),
		newTestImage(64, 64, color.NRGBA{0, 0, 255, 255}),
	}
	durations := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}

	require.NoError(t, client.SendAnimation(context.Background(), imgs, durations))

	assert.Equal(t, []string{"Draw/ResetHttpGifId", "Draw/SendHttpGif", "Draw/SendHttpGif", "Draw/SendHttpGif"}, commands)
	require.Len(t, frames, 3)
	for i, f := range frames {
		assert.Equal(t, 3, f.PicNum)
		assert.Equal(t, i, f.PicOffset)
		assert.Equal(t, int(durations[i].Milliseconds()), f.PicSpeed)
	}
}

func TestClientSendAnimationStopsOnError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"error_code":0}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	imgs := []image.Image{
		image.NewNRGBA(image.Rect(0, 0, 64, 64)),
		image.NewNRGBA(image.Rect(0, 0, 64, 64)),
		image.NewNRGBA(image.Rect(0, 0, 64, 64)),
	}

	err := client.SendAnimation(context.Background(), imgs, make([]time.Duration, 3))

	assert.ErrorContains(t, err, "failed to send frame 2/3")
	assert.Equal(t, 3, calls)
}

func TestScannerFindsDevice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cmd PixooCommand
		_ = json.NewDecoder(r.Body).Decode(&cmd)
		assert.Equal(t, "Channel/GetIndex", cmd.Command)
		_, _ = w.Write([]byte(`{"error_code":0,"SelectIndex":1}`))
	}))
	defer server.Close()

	_, portStr, ok := strings.Cut(strings.TrimPrefix(server.URL, "http://"), ":")
	require.True(t, ok)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	var progress []int
	s := &Scanner{
		Port:        port,
		Timeout:     time.Second,
		Concurrency: 1,
		OnProgress:  func(current, total int) { progress = append(progress, current) },
	}

	devices, err := s.Scan(context.Background(), []string{"127.0.0.1", "127.0.0.2"})
	require.NoError(t, err)

	require.Len(t, devices, 1)
	assert.Equal(t, "127.0.0.1", devices[0].IP)
	assert.Equal(t, []int{1, 2}, progress)
}

func TestScannerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	devices, err := NewScanner().Scan(ctx, SubnetHosts("10.255.255"))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, devices)
}

func TestSubnetHosts(t *testing.T) {
	hosts := SubnetHosts("192.168.1")

	require.Len(t, hosts, 254)
	assert.Equal(t, "192.168.1.1", hosts[0])
	assert.Equal(t, "192.168.1.254", hosts[253])
}

// newTestClient creates a client configured to use a test server
func newTestClient(server *httptest.Server) *Client {
	// Parse the test server URL to get host and port
	url := server.URL
	// Remove http:// prefix and split by :
	host := url[7:] // skip "http://"

	client := &Client{
		IP:         host,
		Port:       0, // Will be ignored since we use the full URL
		HTTPClient: server.Client(),
		testURL:    server.URL + "/post",
	}
	return client
}
