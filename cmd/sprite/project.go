package main

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jwulff/sprite-go/internal/domain"
	"github.com/jwulff/sprite-go/internal/render"
	"github.com/jwulff/sprite-go/internal/selection"
	"github.com/jwulff/sprite-go/internal/tool"
)

func cmdNew(ctx context.Context, a *app, args []string) error {
	if err := requireArgs(args, 1); err != nil {
		return err
	}
	w, h := a.cfg.Canvas.Width, a.cfg.Canvas.Height
	if len(args) > 1 {
		var err error
		if w, h, err = parseSize(args[1]); err != nil {
			return err
		}
	}

	p := domain.NewProject(args[0], w, h)
	if _, err := p.AddLayer("background", "Background"); err != nil {
		return err
	}
	if _, err := p.AddFrame(0, domain.DefaultFrameDuration); err != nil {
		return err
	}
	if err := a.store.SaveProject(ctx, p); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}

	fmt.Printf("Created project %q (%dx%d)\n", p.Name, p.Width, p.Height)
	fmt.Printf("  ID: %s\n", p.ID)
	return nil
}

func cmdDemo(ctx context.Context, a *app, _ []string) error {
	p, err := buildDemo(a.cfg.Canvas.Width, a.cfg.Canvas.Height)
	if err != nil {
		return err
	}
	if err := a.store.SaveProject(ctx, p); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}

	fmt.Printf("Created demo project with %d layers and %d frames\n", len(p.Layers), p.Animation.Len())
	fmt.Printf("  ID: %s\n", p.ID)
	fmt.Println()
	fmt.Println("Try:")
	fmt.Printf("  sprite play %s\n", shortID(p.ID))
	return nil
}

// buildDemo draws a square hopping across a gradient, with a shadow layer
// that is hidden while the square is airborne.
func buildDemo(w, h int) (*domain.Project, error) {
	p := domain.NewProject("Demo", w, h)

	bg, err := p.AddLayer("background", "Background")
	if err != nil {
		return nil, err
	}
	top := domain.FromHex("#1d2b53")
	bottom := domain.FromHex("#7e2553")
	for y := 0; y < h; y++ {
		bg.Buffer.FillRect(0, y, w, 1, render.LerpColor(top, bottom, float64(y)/float64(max(1, h-1))))
	}

	shadow, err := p.AddLayer("shadow", "Shadow")
	if err != nil {
		return nil, err
	}
	shadow.SetOpacity(0.5)

	sprite, err := p.AddLayer("sprite", "Sprite")
	if err != nil {
		return nil, err
	}

	body, err := domain.Parse("crimson")
	if err != nil {
		return nil, err
	}
	outline, err := domain.Parse("rgb(255, 241, 232)")
	if err != nil {
		return nil, err
	}
	shade := domain.Pack(0, 0, 0, 160)

	size := max(2, w/8)
	hops := []int{0, 2, 3, 1}
	for i, hop := range hops {
		f, err := p.AddFrame(i, time.Duration(100+50*i)*time.Millisecond)
		if err != nil {
			return nil, err
		}
		x := i * (w - size) / (len(hops) - 1)
		y := h - size - 2 - hop*h/8

		raster := domain.NewPixelBuffer(w, h)
		tool.Apply(raster, tool.Paint, x, y, size, body)
		tool.ApplyStroke(raster, tool.Paint, x, y, x+size-1, y, 1, outline)
		f.Rasters[sprite.ID] = raster

		under := domain.NewPixelBuffer(w, h)
		tool.ApplyStroke(under, tool.Pencil, x, h-2, x+size-1, h-2, 1, shade)
		f.Rasters[shadow.ID] = under
		if hop >= 3 {
			shadow.SetVisibleAt(i, false)
		}
	}
	return p, nil
}

func cmdList(ctx context.Context, a *app, _ []string) error {
	list, err := a.store.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	if len(list) == 0 {
		fmt.Println("No projects. Create one with: sprite new <name>")
		return nil
	}

	fmt.Printf("%d project(s):\n\n", len(list))
	for _, ps := range list {
		pixels := uint64(ps.Width * ps.Height * domain.BytesPerPixel * ps.Layers)
		fmt.Printf("  %s  %-20s %3dx%-3d %2d layers %3d frames %9s  updated %s\n",
			shortID(ps.ID), ps.Name, ps.Width, ps.Height, ps.Layers, ps.Frames,
			humanize.Bytes(pixels), humanize.Time(ps.UpdatedAt))
	}
	return nil
}

func cmdInfo(ctx context.Context, a *app, args []string) error {
	if err := requireArgs(args, 1); err != nil {
		return err
	}
	p, err := a.resolveProject(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Project: %s\n", p.Name)
	fmt.Printf("  ID:      %s\n", p.ID)
	fmt.Printf("  Canvas:  %dx%d (%s pixels)\n", p.Width, p.Height, humanize.Comma(int64(p.Width*p.Height)))
	fmt.Printf("  Created: %s\n", humanize.Time(p.CreatedAt))
	fmt.Printf("  Updated: %s\n", humanize.Time(p.UpdatedAt))
	fmt.Println()

	fmt.Printf("Layers (%d):\n", len(p.Layers))
	for _, l := range p.Layers {
		var keys []int
		for key, visible := range l.Visibility() {
			if !visible {
				keys = append(keys, key)
			}
		}
		slices.Sort(keys)
		hidden := make([]string, len(keys))
		for i, key := range keys {
			hidden[i] = strconv.Itoa(key)
		}
		fmt.Printf("  z=%d %-12s %-14q opacity %3.0f%%  %s opaque px",
			l.ZIndex, l.ID, l.Name, l.Opacity()*100, humanize.Comma(int64(l.Buffer.OpaqueCount())))
		if len(hidden) > 0 {
			fmt.Printf("  hidden in frames %s", strings.Join(hidden, ","))
		}
		fmt.Println()
	}
	fmt.Println()

	fmt.Printf("Frames (%d, total %s):\n", p.Animation.Len(), p.Animation.TotalDuration())
	for _, f := range p.Animation.Frames() {
		ids := make([]string, 0, len(f.Layers))
		for _, l := range f.VisibleLayers() {
			ids = append(ids, l.ID)
		}
		fmt.Printf("  #%-3d %6s  layers: %s", f.Key, f.Duration, strings.Join(ids, ", "))
		if len(f.Rasters) > 0 {
			fmt.Printf("  (%d raster override(s))", len(f.Rasters))
		}
		fmt.Println()
	}
	return nil
}

func cmdDelete(ctx context.Context, a *app, args []string) error {
	if err := requireArgs(args, 1); err != nil {
		return err
	}
	p, err := a.resolveProject(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.store.DeleteProject(ctx, p.ID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	fmt.Printf("Deleted project %q\n", p.Name)
	return nil
}

func cmdPaint(ctx context.Context, a *app, args []string) error {
	if err := requireArgs(args, 6); err != nil {
		return err
	}
	p, err := a.resolveProject(ctx, args[0])
	if err != nil {
		return err
	}
	layer, ok := p.Layer(args[1])
	if !ok {
		return fmt.Errorf("layer %q not found", args[1])
	}
	t, err := tool.Lookup(args[2])
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(tool.IDs(), ", "))
	}
	size, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", args[3], err)
	}
	c, err := domain.Parse(args[4])
	if err != nil {
		return err
	}
	points, err := parsePoints(args[5:])
	if err != nil {
		return err
	}

	before := layer.Buffer.OpaqueCount()
	if len(points) == 1 {
		tool.Apply(layer.Buffer, t, points[0][0], points[0][1], size, c)
	}
	for i := 1; i < len(points); i++ {
		tool.ApplyStroke(layer.Buffer, t, points[i-1][0], points[i-1][1], points[i][0], points[i][1], size, c)
	}

	p.UpdatedAt = time.Now()
	if err := a.store.SaveProject(ctx, p); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	fmt.Printf("Applied %s (%s anchor, size %d, %s) at %d point(s) on %q\n",
		t.ID, t.Anchor, size, domain.ToCSSString(c), len(points), layer.ID)
	fmt.Printf("  Opaque pixels: %s -> %s\n",
		humanize.Comma(int64(before)), humanize.Comma(int64(layer.Buffer.OpaqueCount())))
	return nil
}

func cmdSelect(ctx context.Context, a *app, args []string) error {
	size := 1
	var rest []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--size" && i+1 < len(args) {
			n, err := strconv.Atoi(args[i+1])
			if err != nil {
				return fmt.Errorf("invalid size %q: %w", args[i+1], err)
			}
			size = n
			i++
			continue
		}
		rest = append(rest, args[i])
	}
	if err := requireArgs(rest, 2); err != nil {
		return err
	}
	p, err := a.resolveProject(ctx, rest[0])
	if err != nil {
		return err
	}
	points, err := parsePoints(rest[1:])
	if err != nil {
		return err
	}

	sel := selection.New()
	sel.Start()
	h := tool.SelectHandler(sel, tool.AnchorCenter)
	params := tool.Params{PixelSize: size}
	if len(points) == 1 {
		h(points[0][0], points[0][1], params)
	}
	for i := 1; i < len(points); i++ {
		tool.Stroke(h, points[i-1][0], points[i-1][1], points[i][0], points[i][1], params)
	}

	fmt.Printf("Selected %s pixel(s)", humanize.Comma(int64(sel.Len())))
	if b := sel.Bounds(); b != nil {
		fmt.Printf(" within %s", b)
	}
	fmt.Println()
	for _, l := range p.Layers {
		opaque := 0
		for _, pt := range sel.Points() {
			if c, ok := l.Buffer.GetPixel(pt.X, pt.Y); ok && c.Alpha() > 0 {
				opaque++
			}
		}
		fmt.Printf("  %-12s %s opaque\n", l.ID, humanize.Comma(int64(opaque)))
	}
	return nil
}

func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q, expected WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("invalid width in %q", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("invalid height in %q", s)
	}
	return w, h, nil
}

func parsePoints(args []string) ([][2]int, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one x,y point is required")
	}
	points := make([][2]int, 0, len(args))
	for _, arg := range args {
		xs, ys, ok := strings.Cut(arg, ",")
		if !ok {
			return nil, fmt.Errorf("invalid point %q, expected x,y", arg)
		}
		x, err := strconv.Atoi(strings.TrimSpace(xs))
		if err != nil {
			return nil, fmt.Errorf("invalid x in %q", arg)
		}
		y, err := strconv.Atoi(strings.TrimSpace(ys))
		if err != nil {
			return nil, fmt.Errorf("invalid y in %q", arg)
		}
		points = append(points, [2]int{x, y})
	}
	return points, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
