package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/jwulff/sprite-go/internal/config"
	"github.com/jwulff/sprite-go/internal/pixoo"
	"github.com/jwulff/sprite-go/internal/render"
	"github.com/jwulff/sprite-go/internal/storage/sqlite"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: debug <project-id> [IP]")
		os.Exit(1)
	}
	ctx := context.Background()

	cfg, err := config.Load(os.Getenv("SPRITE_CONFIG"))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	store, err := sqlite.NewFileStore(cfg.Storage.Path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	p, err := store.GetProject(ctx, os.Args[1])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	frames := p.Animation.Frames()
	if len(frames) == 0 {
		fmt.Println("Project has no frames")
		return
	}

	img := pixoo.FitToDisplay(render.Flatten(frames[0], p.Width, p.Height), pixoo.DisplaySize)
	cmd := pixoo.CreatePixooFrameCommand(img, &pixoo.FrameCommandOptions{
		PicID:  1,
		Speed:  int(frames[0].Duration.Milliseconds()),
		PicNum: 1,
	})

	data, _ := json.MarshalIndent(cmd, "", "  ")
	fmt.Printf("Project: %s (%dx%d, frame #%d)\n", p.Name, p.Width, p.Height, frames[0].Key)
	fmt.Println("Command structure:")
	fmt.Printf("  Command: %s\n", cmd.Command)
	fmt.Printf("  PicNum: %d\n", cmd.PicNum)
	fmt.Printf("  PicWidth: %d\n", cmd.PicWidth)
	fmt.Printf("  PicOffset: %d\n", cmd.PicOffset)
	fmt.Printf("  PicID: %d\n", cmd.PicID)
	fmt.Printf("  PicSpeed: %d\n", cmd.PicSpeed)
	fmt.Printf("  PicData length: %d chars\n", len(cmd.PicData))
	fmt.Printf("  Full JSON size: %d bytes\n", len(data))

	if len(os.Args) < 3 {
		return
	}

	jsonData, _ := json.Marshal(cmd)
	url := fmt.Sprintf("http://%s:%d/post", os.Args[2], cfg.Pixoo.Port)
	fmt.Printf("\nSending to %s...\n", url)

	resp, err := http.Post(url, "application/json", bytes.NewReader(jsonData))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %d\n", resp.StatusCode)
	fmt.Printf("Response: %s\n", string(body))
}
