package pixoo

import (
	"context"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DiscoveredDevice represents a found Pixoo device.
type DiscoveredDevice struct {
	Name string
	IP   string
}

// ProgressFunc is called during scanning to report progress.
type ProgressFunc func(current, total int)

// Scanner probes hosts for a Pixoo HTTP API.
type Scanner struct {
	Port        int
	Timeout     time.Duration
	Concurrency int
	OnProgress  ProgressFunc
}

// NewScanner returns a scanner with the default port, a short probe timeout
// and 50 concurrent probes.
func NewScanner() *Scanner {
	return &Scanner{
		Port:        DefaultPort,
		Timeout:     500 * time.Millisecond,
		Concurrency: 50,
	}
}

// ScanForDevices scans the local /24 subnet for Pixoo devices.
func ScanForDevices(ctx context.Context, onProgress ProgressFunc) ([]DiscoveredDevice, error) {
	subnet, err := getLocalSubnet()
	if err != nil {
		return nil, err
	}
	s := NewScanner()
	s.OnProgress = onProgress
	return s.Scan(ctx, SubnetHosts(subnet))
}

// SubnetHosts lists .1 through .254 of a three-octet prefix like "192.168.1".
func SubnetHosts(subnet string) []string {
	hosts := make([]string, 0, 254)
	for i := 1; i <= 254; i++ {
		hosts = append(hosts, fmt.Sprintf("%s.%d", subnet, i))
	}
	return hosts
}

// Scan probes every host and returns the responders sorted by IP. A cancelled
// context stops the scan and returns what was found so far.
func (s *Scanner) Scan(ctx context.Context, hosts []string) ([]DiscoveredDevice, error) {
	var (
		mu      sync.Mutex
		devices []DiscoveredDevice
		done    int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.Concurrency))
	for _, ip := range hosts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			device := s.probe(gctx, ip)

			mu.Lock()
			defer mu.Unlock()
			if device != nil {
				devices = append(devices, *device)
			}
			done++
			if s.OnProgress != nil {
				s.OnProgress(done, len(hosts))
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(devices, func(i, j int) bool { return devices[i].IP < devices[j].IP })
	return devices, ctx.Err()
}

// getLocalSubnet returns the local subnet (e.g., "192.168.1").
func getLocalSubnet() (string, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("failed to get network interfaces: %w", err)
	}

	for _, iface := range interfaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipNet.IP.To4()
			if ip == nil || ip.IsLoopback() {
				continue
			}
			return fmt.Sprintf("%d.%d.%d", ip[0], ip[1], ip[2]), nil
		}
	}

	return "", fmt.Errorf("could not determine local network")
}

// probe checks if an IP hosts a Pixoo device.
func (s *Scanner) probe(ctx context.Context, ip string) *DiscoveredDevice {
	client := NewClientWithPort(ip, s.Port)
	client.HTTPClient.Timeout = s.Timeout

	probeCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	if _, err := client.sendCommand(probeCtx, map[string]string{"Command": "Channel/GetIndex"}); err != nil {
		return nil
	}

	return &DiscoveredDevice{
		Name: "Pixoo",
		IP:   ip,
	}
}
