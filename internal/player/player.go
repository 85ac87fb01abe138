// Package player drives animation playback from a display refresh signal.
//
// Only Tick observes time. Play, Pause and speed changes clear or bank the
// timing reference, and the next tick re-establishes it, so a host may call
// them from any goroutine while a single Run loop delivers refresh ticks.
package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jwulff/sprite-go/internal/domain"
	"github.com/jwulff/sprite-go/internal/logging"
	"github.com/jwulff/sprite-go/internal/render"
	"github.com/jwulff/sprite-go/internal/viewport"
)

// State is the playback state.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrInvalidSpeed is returned for non-positive speed multipliers.
	ErrInvalidSpeed = errors.New("speed must be positive")
	// ErrAlreadyRunning is returned when a second Run loop is started.
	ErrAlreadyRunning = errors.New("player is already running")
)

// Options configure a Player.
type Options struct {
	Speed float64
	Loop  bool
	// OnRender is called after a frame is composited, with the player lock
	// held. It must not call back into the Player.
	OnRender func(key int)
}

// Player composites the frames of an animation onto a surface on a
// frame-duration schedule.
type Player struct {
	mu sync.Mutex

	anim    *domain.Animation
	surface render.Surface
	view    viewport.State

	state   State
	current int

	hasRange   bool
	rangeStart int
	rangeEnd   int

	speed float64
	loop  bool

	// ref is the time the current frame's clock was last anchored; zero
	// means the next tick anchors it. banked holds scaled time accumulated
	// before ref.
	ref      time.Time
	lastTick time.Time
	banked   time.Duration

	lastDrawn int
	drawn     bool

	onRender func(key int)
	running  atomic.Bool
}

// New creates a stopped player positioned at the first frame.
func New(anim *domain.Animation, surface render.Surface, view viewport.State, opts Options) *Player {
	if anim == nil {
		anim = domain.NewAnimation()
	}
	if opts.Speed <= 0 {
		opts.Speed = 1
	}
	p := &Player{
		anim:     anim,
		surface:  surface,
		view:     view,
		speed:    opts.Speed,
		loop:     opts.Loop,
		onRender: opts.OnRender,
	}
	p.current = p.firstKey()
	return p
}

// State returns the playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Current returns the current frame key.
func (p *Player) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Elapsed returns the scaled time spent on the current frame as of the last tick.
func (p *Player) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elapsed(p.lastTick)
}

// Speed returns the speed multiplier.
func (p *Player) Speed() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speed
}

// Loop reports whether playback wraps at the end of the range.
func (p *Player) Loop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loop
}

// Range returns the playback range. Without an explicit range it spans the
// whole animation.
func (p *Player) Range() (start, end int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bounds()
}

// Play starts or resumes playback. With fewer than two frames in range the
// current frame is rendered once and the player stays stopped. Calling Play
// while playing only re-anchors the frame clock.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.keys()) <= 1 {
		p.current = p.firstKey()
		p.render()
		p.state = Stopped
		return
	}
	p.bank()
	if p.state != Playing {
		logging.Logger().Debug("player transition", "from", p.state, "to", Playing, "frame", p.current)
		p.state = Playing
	}
	p.render()
}

// Pause suspends playback, keeping the current frame and elapsed time.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Playing {
		return
	}
	p.bank()
	logging.Logger().Debug("player transition", "from", p.state, "to", Paused, "frame", p.current)
	p.state = Paused
}

// Stop returns to the start of the range with zero elapsed time.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stop()
	p.render()
}

func (p *Player) stop() {
	if p.state != Stopped {
		logging.Logger().Debug("player transition", "from", p.state, "to", Stopped)
	}
	p.state = Stopped
	p.current = p.firstKey()
	p.resetClock()
}

// StepForward moves to the next frame in range, wrapping at the end.
func (p *Player) StepForward() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seek(p.nextKey())
}

// StepBackward moves to the previous frame in range, wrapping at the start.
func (p *Player) StepBackward() {
	p.mu.Lock()
	defer p.mu.Unlock()

	keys := p.keys()
	if len(keys) == 0 {
		return
	}
	prev := keys[len(keys)-1]
	for i := len(keys) - 1; i >= 0; i-- {
		if keys[i] < p.current {
			prev = keys[i]
			break
		}
	}
	p.seek(prev)
}

// SeekFirst moves to the first frame in range.
func (p *Player) SeekFirst() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seek(p.firstKey())
}

// SeekLast moves to the last frame in range.
func (p *Player) SeekLast() {
	p.mu.Lock()
	defer p.mu.Unlock()

	keys := p.keys()
	if len(keys) == 0 {
		return
	}
	p.seek(keys[len(keys)-1])
}

func (p *Player) seek(key int) {
	p.current = key
	p.resetClock()
	p.render()
}

// SetRange limits playback to frame keys in [start, end]. The current frame
// moves to start when it falls outside.
func (p *Player) SetRange(start, end int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if start > end {
		start, end = end, start
	}
	p.hasRange = true
	p.rangeStart, p.rangeEnd = start, end
	if p.current < start || p.current > end {
		p.seek(p.firstKey())
	}
}

// ClearRange restores playback over the whole animation.
func (p *Player) ClearRange() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hasRange = false
}

// SetSpeed sets the playback speed multiplier. Time already spent on the
// current frame keeps the old rate.
func (p *Player) SetSpeed(m float64) error {
	if m <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, m)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.bank()
	p.speed = m
	return nil
}

// ToggleLoop flips looping and returns the new setting.
func (p *Player) ToggleLoop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loop = !p.loop
	return p.loop
}

// SetAnimation replaces the animation and resets playback to stopped at the
// first frame.
func (p *Player) SetAnimation(anim *domain.Animation) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if anim == nil {
		anim = domain.NewAnimation()
	}
	p.anim = anim
	p.hasRange = false
	p.drawn = false
	p.state = Stopped
	p.current = p.firstKey()
	p.resetClock()
}

// SetViewport updates the render geometry and re-renders the current frame
// once without touching playback timing. The host resizes the surface.
func (p *Player) SetViewport(view viewport.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.view = view
	p.drawn = false
	p.render()
}

// ResetLastDrawn forgets the last drawn frame so the next render is not
// suppressed.
func (p *Player) ResetLastDrawn() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drawn = false
}

// Tick advances playback for a display refresh at now. At most one frame is
// advanced per tick; the frame clock restarts at now so overshoot is not
// carried. Tick reports whether a frame was drawn.
func (p *Player) Tick(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Playing {
		return false
	}
	p.lastTick = now
	if p.ref.IsZero() {
		p.ref = now
		return p.render()
	}

	frame, ok := p.anim.Get(p.current)
	if !ok || !p.inRange(p.current) {
		p.advance(now)
		return p.render()
	}
	if p.elapsed(now) >= frame.Duration {
		p.advance(now)
	}
	return p.render()
}

// Run delivers ticks from refresh until ctx is done or refresh is closed.
// Only one Run loop may be active at a time.
func (p *Player) Run(ctx context.Context, refresh <-chan time.Time) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer p.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t, ok := <-refresh:
			if !ok {
				return nil
			}
			p.Tick(t)
		}
	}
}

func (p *Player) advance(now time.Time) {
	next, ok := p.followingKey()
	switch {
	case ok:
		p.current = next
	case p.loop:
		p.current = p.firstKey()
	default:
		p.stop()
		return
	}
	p.banked = 0
	p.ref = now
}

func (p *Player) elapsed(now time.Time) time.Duration {
	if p.ref.IsZero() || now.Before(p.ref) {
		return p.banked
	}
	return p.banked + time.Duration(float64(now.Sub(p.ref))*p.speed)
}

// bank folds time up to the last tick into banked and clears the anchor.
func (p *Player) bank() {
	p.banked = p.elapsed(p.lastTick)
	p.ref = time.Time{}
}

func (p *Player) resetClock() {
	p.banked = 0
	p.ref = time.Time{}
}

func (p *Player) render() bool {
	if p.drawn && p.lastDrawn == p.current {
		return false
	}
	frame, ok := p.anim.Get(p.current)
	if !ok {
		return false
	}
	if p.surface != nil {
		render.Composite(p.surface, frame, p.view)
	}
	p.lastDrawn = p.current
	p.drawn = true
	if p.onRender != nil {
		p.onRender(p.current)
	}
	return true
}

func (p *Player) bounds() (int, int) {
	if p.hasRange {
		return p.rangeStart, p.rangeEnd
	}
	keys := p.anim.Keys()
	if len(keys) == 0 {
		return 0, 0
	}
	return keys[0], keys[len(keys)-1]
}

func (p *Player) inRange(key int) bool {
	start, end := p.bounds()
	return key >= start && key <= end
}

// keys returns the animation keys inside the range, ascending.
func (p *Player) keys() []int {
	start, end := p.bounds()
	all := p.anim.Keys()
	out := all[:0]
	for _, k := range all {
		if k >= start && k <= end {
			out = append(out, k)
		}
	}
	return out
}

func (p *Player) firstKey() int {
	if keys := p.keys(); len(keys) > 0 {
		return keys[0]
	}
	start, _ := p.bounds()
	return start
}

// followingKey returns the first frame in range after current.
func (p *Player) followingKey() (int, bool) {
	for _, k := range p.keys() {
		if k > p.current {
			return k, true
		}
	}
	return 0, false
}

func (p *Player) nextKey() int {
	if k, ok := p.followingKey(); ok {
		return k
	}
	return p.firstKey()
}
