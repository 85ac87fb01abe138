// Package pixoo implements the Pixoo64 protocol.
//
// The Pixoo64 has a local HTTP API at port 80.
// Endpoint: POST http://<ip>/post
//
// Frame format:
// - 64x64 pixels
// - RGB (3 bytes per pixel), alpha composited over black
// - Base64 encoded
// - Total: 64 * 64 * 3 = 12,288 bytes raw, ~16KB base64
//
// Animations are sent as one Draw/SendHttpGif command per frame sharing a
// PicID, with PicNum the frame count and PicOffset the frame index.
package pixoo

import (
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/jwulff/sprite-go/internal/domain"
	"github.com/jwulff/sprite-go/internal/render"
	"golang.org/x/image/draw"
)

// DisplaySize is the Pixoo64 edge length in pixels.
const DisplaySize = 64

// BytesPerPixel is the wire size of one RGB pixel.
const BytesPerPixel = 3

// MaxFrames is the longest animation the device accepts.
const MaxFrames = 60

// PixooCommand represents a Pixoo API command.
type PixooCommand struct {
	Command string `json:"Command"`
}

// FrameCommand represents a Draw/SendHttpGif command.
type FrameCommand struct {
	Command   string `json:"Command"`
	PicNum    int    `json:"PicNum"`
	PicWidth  int    `json:"PicWidth"`
	PicOffset int    `json:"PicOffset"`
	PicID     int    `json:"PicID"`
	PicSpeed  int    `json:"PicSpeed"`
	PicData   string `json:"PicData"`
}

// BrightnessCommand represents a Channel/SetBrightness command.
type BrightnessCommand struct {
	Command    string `json:"Command"`
	Brightness int    `json:"Brightness"`
}

// FrameCommandOptions configures frame command parameters.
type FrameCommandOptions struct {
	PicID     int
	Speed     int
	PicNum    int
	PicOffset int
}

// EncodeImageToBase64 encodes img as base64 RGB for the Pixoo API.
func EncodeImageToBase64(img image.Image) string {
	b := img.Bounds()
	pixels := make([]byte, 0, b.Dx()*b.Dy()*BytesPerPixel)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl := render.OverBlack(domain.ColorFromColor(img.At(x, y)))
			pixels = append(pixels, r, g, bl)
		}
	}
	return base64.StdEncoding.EncodeToString(pixels)
}

// DecodeBase64ToImage decodes base64 RGB into an opaque image.
func DecodeBase64ToImage(encoded string, width, height int) (*image.NRGBA, error) {
	pixels, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	expectedSize := width * height * BytesPerPixel
	if len(pixels) != expectedSize {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", expectedSize, len(pixels))
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		p := pixels[i*BytesPerPixel:]
		img.SetNRGBA(i%width, i/width, color.NRGBA{R: p[0], G: p[1], B: p[2], A: 255})
	}
	return img, nil
}

// FitToDisplay scales img to size x size with nearest-neighbour sampling,
// preserving aspect ratio and centering it on a transparent background.
func FitToDisplay(img image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	b := img.Bounds()
	if b.Empty() || size <= 0 {
		return dst
	}

	w, h := size, size
	if b.Dx() > b.Dy() {
		h = max(1, b.Dy()*size/b.Dx())
	} else if b.Dy() > b.Dx() {
		w = max(1, b.Dx()*size/b.Dy())
	}
	x0, y0 := (size-w)/2, (size-h)/2
	draw.NearestNeighbor.Scale(dst, image.Rect(x0, y0, x0+w, y0+h), img, b, draw.Src, nil)
	return dst
}

// CreatePixooFrameCommand creates a Draw/SendHttpGif command.
func CreatePixooFrameCommand(img image.Image, opts *FrameCommandOptions) FrameCommand {
	picID := 1
	speed := 1000
	picNum := 1
	offset := 0

	if opts != nil {
		if opts.PicID > 0 {
			picID = opts.PicID
		}
		if opts.Speed > 0 {
			speed = opts.Speed
		}
		if opts.PicNum > 0 {
			picNum = opts.PicNum
		}
		if opts.PicOffset > 0 {
			offset = opts.PicOffset
		}
	}

	return FrameCommand{
		Command:   "Draw/SendHttpGif",
		PicNum:    picNum,
		PicWidth:  img.Bounds().Dx(),
		PicOffset: offset,
		PicID:     picID,
		PicSpeed:  speed,
		PicData:   EncodeImageToBase64(img),
	}
}

// CreateAnimationCommands builds one command per frame. Durations are given
// per frame; PicSpeed carries each frame's duration in milliseconds.
func CreateAnimationCommands(frames []image.Image, durations []time.Duration, picID int) ([]FrameCommand, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("animation has no frames")
	}
	if len(frames) > MaxFrames {
		return nil, fmt.Errorf("animation has %d frames, device maximum is %d", len(frames), MaxFrames)
	}
	if len(durations) != len(frames) {
		return nil, fmt.Errorf("got %d durations for %d frames", len(durations), len(frames))
	}

	cmds := make([]FrameCommand, len(frames))
	for i, img := range frames {
		cmds[i] = CreatePixooFrameCommand(img, &FrameCommandOptions{
			PicID:     picID,
			Speed:     max(1, int(durations[i].Milliseconds())),
			PicNum:    len(frames),
			PicOffset: i,
		})
	}
	return cmds, nil
}

// CreateDeviceTimeCommand creates a Device/GetDeviceTime command.
func CreateDeviceTimeCommand() PixooCommand {
	return PixooCommand{
		Command: "Device/GetDeviceTime",
	}
}

// CreateResetGifIDCommand creates a Draw/ResetHttpGifId command.
func CreateResetGifIDCommand() PixooCommand {
	return PixooCommand{
		Command: "Draw/ResetHttpGifId",
	}
}

// CreateBrightnessCommand creates a Channel/SetBrightness command.
func CreateBrightnessCommand(brightness int) BrightnessCommand {
	// Clamp to 0-100
	if brightness < 0 {
		brightness = 0
	}
	if brightness > 100 {
		brightness = 100
	}

	return BrightnessCommand{
		Command:    "Channel/SetBrightness",
		Brightness: brightness,
	}
}
