package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jwulff/sprite-go/internal/bounds"
	"github.com/jwulff/sprite-go/internal/domain"
	"github.com/jwulff/sprite-go/internal/player"
	"github.com/jwulff/sprite-go/internal/render"
	"github.com/jwulff/sprite-go/internal/viewport"
)

func cmdBounds(ctx context.Context, a *app, args []string) error {
	if err := requireArgs(args, 1); err != nil {
		return err
	}
	p, err := a.resolveProject(ctx, args[0])
	if err != nil {
		return err
	}

	w := bounds.NewWorker(a.cfg.BoundsOptions())
	defer w.Close()

	// Layer buffers first, then one flattened image per frame.
	labels := make([]string, 0, len(p.Layers)+p.Animation.Len())
	reqs := make([]bounds.Request, 0, cap(labels))
	for _, l := range p.Layers {
		labels = append(labels, "layer "+l.ID)
		reqs = append(reqs, bounds.NewRequest(l.Buffer))
	}
	for _, f := range p.Animation.Frames() {
		img := render.Flatten(f, p.Width, p.Height)
		labels = append(labels, "frame #"+strconv.Itoa(f.Key))
		reqs = append(reqs, bounds.Request{ID: uuid.New(), Width: p.Width, Height: p.Height, Buffer: img.Pix})
	}

	results := make([]*domain.Rect, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			select {
			case resp := <-w.Submit(req):
				if resp.ID != req.ID {
					return fmt.Errorf("bounds response %s does not match request %s", resp.ID, req.ID)
				}
				results[i] = resp.Rect
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	total := p.Width * p.Height
	opts := a.cfg.BoundsOptions()
	method := "exact"
	if total >= opts.SampleThreshold {
		method = fmt.Sprintf("sampled, stride %d", bounds.Stride(total, opts.SampleTarget))
	}
	fmt.Printf("Bounds for %q (%s pixels, %s):\n", p.Name, humanize.Comma(int64(total)), method)
	for i, r := range results {
		if r == nil {
			fmt.Printf("  %-16s empty\n", labels[i])
			continue
		}
		fmt.Printf("  %-16s %s\n", labels[i], r)
	}
	return nil
}

func cmdPreview(ctx context.Context, a *app, args []string) error {
	if err := requireArgs(args, 1); err != nil {
		return err
	}
	p, err := a.resolveProject(ctx, args[0])
	if err != nil {
		return err
	}
	f, err := frameArg(p, args[1:])
	if err != nil {
		return err
	}

	fmt.Printf("Frame #%d of %q (%s):\n", f.Key, p.Name, f.Duration)
	img := render.Flatten(f, p.Width, p.Height)
	defer render.PutImage(img)
	if err := render.WriteASCII(os.Stdout, img); err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(render.ASCIILegend)
	return nil
}

func frameArg(p *domain.Project, args []string) (*domain.Frame, error) {
	keys := p.Animation.Keys()
	if len(keys) == 0 {
		return nil, fmt.Errorf("project %q has no frames", p.Name)
	}
	key := keys[0]
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("invalid frame %q: %w", args[0], err)
		}
		key = n
	}
	f, ok := p.Animation.Get(key)
	if !ok {
		return nil, fmt.Errorf("frame %d not found", key)
	}
	return f, nil
}

type playFlags struct {
	speed float64
	once  bool
	zoom  int
	at    *image.Point
}

func parsePlayFlags(args []string) (playFlags, error) {
	fl := playFlags{zoom: 1}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--once":
			fl.once = true
			continue
		case "--speed", "--zoom", "--at":
		default:
			return fl, fmt.Errorf("unknown flag %q", args[i])
		}
		if i+1 >= len(args) {
			return fl, fmt.Errorf("flag %s needs a value", args[i])
		}
		v := args[i+1]
		i++
		switch args[i-1] {
		case "--speed":
			s, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fl, fmt.Errorf("invalid speed %q: %w", v, err)
			}
			fl.speed = s
		case "--zoom":
			z, err := strconv.Atoi(v)
			if err != nil {
				return fl, fmt.Errorf("invalid zoom %q: %w", v, err)
			}
			fl.zoom = z
		case "--at":
			pts, err := parsePoints([]string{v})
			if err != nil {
				return fl, err
			}
			pt := image.Pt(pts[0][0], pts[0][1])
			fl.at = &pt
		}
	}
	return fl, nil
}

func cmdPlay(ctx context.Context, a *app, args []string) error {
	if err := requireArgs(args, 1); err != nil {
		return err
	}
	fl, err := parsePlayFlags(args[1:])
	if err != nil {
		return err
	}
	p, err := a.resolveProject(ctx, args[0])
	if err != nil {
		return err
	}
	if p.Animation.Len() == 0 {
		return fmt.Errorf("project %q has no frames", p.Name)
	}

	// The terminal shows one character per canvas pixel, so the workspace is
	// the canvas and zooming in crops around the requested point.
	vc := a.cfg.ViewportFor(p.Width, p.Height)
	vc.WorkspaceWidth, vc.WorkspaceHeight = p.Width, p.Height
	vc.MinZoom, vc.Zoom = 1, 1
	view, err := viewport.New(vc)
	if err != nil {
		return err
	}
	view.SetZoom(fl.zoom)
	if fl.at != nil {
		w, h := view.Size()
		off := view.Offset()
		view.PanBy(fl.at.X-w/2-off.X, fl.at.Y-h/2-off.Y)
	}

	size := view.State().SurfaceSize()
	surface := render.NewRGBASurface(size.X, size.Y)
	defer surface.Release()

	speed := a.cfg.Playback.Speed
	if fl.speed != 0 {
		speed = fl.speed
	}
	if speed <= 0 {
		return player.ErrInvalidSpeed
	}
	pl := player.New(p.Animation, surface, view.State(), player.Options{
		Speed: speed,
		Loop:  a.cfg.Looping() && !fl.once,
		OnRender: func(key int) {
			fmt.Print("\033[H\033[2J")
			fmt.Printf("%s  frame #%d  zoom %dx  view %s\n", p.Name, key, view.Zoom(), view.Rect())
			_ = render.WriteASCII(os.Stdout, surface.Image())
		},
	})

	pl.Play()
	if pl.State() != player.Playing {
		return nil
	}

	ticker := time.NewTicker(a.cfg.RefreshInterval())
	defer ticker.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return pl.Run(gctx, ticker.C)
	})
	g.Go(func() error {
		poll := time.NewTicker(50 * time.Millisecond)
		defer poll.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-poll.C:
				if pl.State() == player.Stopped {
					cancel()
					return nil
				}
			}
		}
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Println()
	return nil
}
