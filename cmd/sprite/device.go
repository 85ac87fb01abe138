package main

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jwulff/sprite-go/internal/logging"
	"github.com/jwulff/sprite-go/internal/pixoo"
	"github.com/jwulff/sprite-go/internal/render"
	"github.com/jwulff/sprite-go/internal/storage"
)

func cmdPush(ctx context.Context, a *app, args []string) error {
	if err := requireArgs(args, 1); err != nil {
		return err
	}
	p, err := a.resolveProject(ctx, args[0])
	if err != nil {
		return err
	}
	ip, err := a.pixooIP(ctx, args[1:])
	if err != nil {
		return err
	}

	frames := p.Animation.Frames()
	if len(frames) == 0 {
		return fmt.Errorf("project %q has no frames", p.Name)
	}
	if len(frames) > pixoo.MaxFrames {
		logging.Logger().Warn("truncating animation", "frames", len(frames), "max", pixoo.MaxFrames)
		frames = frames[:pixoo.MaxFrames]
	}

	images := make([]image.Image, len(frames))
	durations := make([]time.Duration, len(frames))
	for i, f := range frames {
		flat := render.Flatten(f, p.Width, p.Height)
		images[i] = pixoo.FitToDisplay(flat, pixoo.DisplaySize)
		render.PutImage(flat)
		durations[i] = f.Duration
	}

	client := pixoo.NewClientWithPort(ip, a.cfg.Pixoo.Port)
	fmt.Printf("Sending %d frame(s) of %q to Pixoo at %s...\n", len(images), p.Name, ip)

	if err := client.SetBrightness(ctx, a.cfg.Pixoo.Brightness); err != nil {
		return fmt.Errorf("failed to set brightness: %w", err)
	}
	if len(images) == 1 {
		err = client.SendImage(ctx, images[0])
	} else {
		err = client.SendAnimation(ctx, images, durations)
	}
	if err != nil {
		return err
	}

	if err := a.store.SetConfig(ctx, "last_pixoo_ip", ip); err != nil {
		logging.Logger().Warn("failed to remember device", "ip", ip, "error", err)
	}
	fmt.Println("Sent successfully!")
	return nil
}

// pixooIP picks the target device: the argument, the configured IP, the last
// device pushed to, then the first stored device.
func (a *app) pixooIP(ctx context.Context, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if a.cfg.Pixoo.IP != "" {
		return a.cfg.Pixoo.IP, nil
	}
	if ip, err := a.store.GetConfig(ctx, "last_pixoo_ip"); err == nil && ip != "" {
		return ip, nil
	} else if err != nil && !storage.IsNotFound(err) {
		return "", err
	}
	devices, err := a.store.GetDevices(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get devices: %w", err)
	}
	if len(devices) == 0 {
		return "", fmt.Errorf("no Pixoo IP given; pass one, set it in config, or run: sprite devices scan")
	}
	return devices[0].IP, nil
}

func cmdDevices(ctx context.Context, a *app, args []string) error {
	if len(args) > 0 && args[0] == "scan" {
		return scanDevices(ctx, a)
	}

	devices, err := a.store.GetDevices(ctx)
	if err != nil {
		return fmt.Errorf("failed to get devices: %w", err)
	}
	if len(devices) == 0 {
		fmt.Println("No stored devices. Find some with: sprite devices scan")
		return nil
	}
	fmt.Printf("%d device(s):\n\n", len(devices))
	for i, d := range devices {
		fmt.Printf("  %d. %s - %s (last seen %s)\n", i+1, d.Name, d.IP, humanize.Time(d.LastSeen))
	}
	return nil
}

func scanDevices(ctx context.Context, a *app) error {
	fmt.Println("Scanning for Pixoo devices on local network...")
	fmt.Println()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	devices, err := pixoo.ScanForDevices(ctx, func(current, total int) {
		pct := current * 100 / total
		bar := strings.Repeat("█", pct/5) + strings.Repeat("░", 20-pct/5)
		fmt.Printf("\r  [%s] %d%% (%d/%d)", bar, pct, current, total)
	})
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Println()
	if len(devices) == 0 {
		fmt.Println("No Pixoo devices found.")
		fmt.Println()
		fmt.Println("Make sure your Pixoo is:")
		fmt.Println("  1. Powered on")
		fmt.Println("  2. Connected to the same WiFi network")
		fmt.Println("  3. Not in sleep mode")
		return nil
	}

	fmt.Printf("Found %d device(s):\n", len(devices))
	fmt.Println()
	for i, d := range devices {
		fmt.Printf("  %d. %s - %s\n", i+1, d.Name, d.IP)
		if err := a.store.SaveDevice(ctx, storage.NewDevice(d.IP, d.IP, d.Name, "pixoo64")); err != nil {
			return fmt.Errorf("failed to save device: %w", err)
		}
	}
	fmt.Println()
	fmt.Println("To push a project:")
	fmt.Printf("  sprite push <project> %s\n", devices[0].IP)
	return nil
}
