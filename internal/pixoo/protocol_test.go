package pixoo

import (
	"encoding/base64"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestEncodeImageToBase64(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})   // Red
	img.SetNRGBA(1, 0, color.NRGBA{0, 255, 0, 255})   // Green
	img.SetNRGBA(0, 1, color.NRGBA{0, 0, 255, 255})   // Blue
	img.SetNRGBA(1, 1, color.NRGBA{255, 255, 0, 255}) // Yellow

	decoded, err := base64.StdEncoding.DecodeString(EncodeImageToBase64(img))
	require.NoError(t, err)

	assert.Equal(t, []byte{
		255, 0, 0,
		0, 255, 0,
		0, 0, 255,
		255, 255, 0,
	}, decoded)
}

func TestEncodeImageCompositesAlphaOverBlack(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{255, 255, 255, 0})
	img.SetNRGBA(1, 0, color.NRGBA{200, 100, 50, 128})

	decoded, err := base64.StdEncoding.DecodeString(EncodeImageToBase64(img))
	require.NoError(t, err)

	require.Len(t, decoded, 6)
	assert.Equal(t, []byte{0, 0, 0}, decoded[:3])
	assert.InDelta(t, 100, int(decoded[3]), 1)
	assert.InDelta(t, 50, int(decoded[4]), 1)
	assert.InDelta(t, 25, int(decoded[5]), 1)
}

func TestDecodeBase64ToImage(t *testing.T) {
	pixels := []byte{
		255, 0, 0, // Red
		0, 255, 0, // Green
		0, 0, 255, // Blue
		255, 255, 0, // Yellow
	}

	img, err := DecodeBase64ToImage(base64.StdEncoding.EncodeToString(pixels), 2, 2)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{0, 255, 0, 255}, img.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{255, 255, 0, 255}, img.NRGBAAt(1, 1))
}

func TestDecodeBase64ToImageInvalidBase64(t *testing.T) {
	_, err := DecodeBase64ToImage("not-valid-base64!!!", 2, 2)
	assert.Error(t, err)
}

func TestDecodeBase64ToImageWrongSize(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte{255, 0, 0})

	_, err := DecodeBase64ToImage(encoded, 2, 2)
	assert.Error(t, err)
}

func TestFitToDisplay(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 255}

	fitted := FitToDisplay(newTestImage(16, 16, red), DisplaySize)
	assert.Equal(t, image.Rect(0, 0, 64, 64), fitted.Bounds())
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, fitted.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, fitted.RGBAAt(63, 63))
}

func TestFitToDisplayKeepsAspect(t *testing.T) {
	fitted := FitToDisplay(newTestImage(32, 16, color.NRGBA{0, 0, 255, 255}), DisplaySize)

	// 64x32 centred vertically: rows 16..47.
	assert.Equal(t, color.RGBA{}, fitted.RGBAAt(10, 15))
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, fitted.RGBAAt(10, 16))
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, fitted.RGBAAt(10, 47))
	assert.Equal(t, color.RGBA{}, fitted.RGBAAt(10, 48))
}

func TestCreatePixooFrameCommand(t *testing.T) {
	img := newTestImage(64, 64, color.NRGBA{255, 0, 0, 255})

	cmd := CreatePixooFrameCommand(img, nil)

	assert.Equal(t, "Draw/SendHttpGif", cmd.Command)
	assert.Equal(t, 1, cmd.PicNum)
	assert.Equal(t, 64, cmd.PicWidth)
	assert.Equal(t, 0, cmd.PicOffset)
	assert.Equal(t, 1, cmd.PicID)
	assert.Equal(t, 1000, cmd.PicSpeed)
	assert.NotEmpty(t, cmd.PicData)
}

func TestCreatePixooFrameCommandWithOptions(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))

	opts := &FrameCommandOptions{
		PicID:     42,
		Speed:     500,
		PicNum:    3,
		PicOffset: 2,
	}
	cmd := CreatePixooFrameCommand(img, opts)

	assert.Equal(t, 42, cmd.PicID)
	assert.Equal(t, 500, cmd.PicSpeed)
	assert.Equal(t, 3, cmd.PicNum)
	assert.Equal(t, 2, cmd.PicOffset)
}

func TestPixoo64FrameSize(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))

	decoded, err := base64.StdEncoding.DecodeString(EncodeImageToBase64(img))
	require.NoError(t, err)
	assert.Len(t, decoded, 64*64*3)
}

func TestCreateAnimationCommands(t *testing.T) {
	frames := []image.Image{
		image.NewNRGBA(image.Rect(0, 0, 64, 64)),
		image.NewNRGBA(image.Rect(0, 0, 64, 64)),
	}

	cmds, err := CreateAnimationCommands(frames, []time.Duration{100 * time.Millisecond, 250 * time.Millisecond}, 7)
	require.NoError(t, err)

	require.Len(t, cmds, 2)
	for i, cmd := range cmds {
		assert.Equal(t, 2, cmd.PicNum)
		assert.Equal(t, i, cmd.PicOffset)
		assert.Equal(t, 7, cmd.PicID)
	}
	assert.Equal(t, 100, cmds[0].PicSpeed)
	assert.Equal(t, 250, cmds[1].PicSpeed)
}

func TestCreateAnimationCommandsErrors(t *testing.T) {
	one := []image.Image{image.NewNRGBA(image.Rect(0, 0, 1, 1))}

	_, err := CreateAnimationCommands(nil, nil, 1)
	assert.Error(t, err)

	_, err = CreateAnimationCommands(one, nil, 1)
	assert.Error(t, err)

	many := make([]image.Image, MaxFrames+1)
	_, err = CreateAnimationCommands(many, make([]time.Duration, MaxFrames+1), 1)
	assert.Error(t, err)
}

func TestCreateDeviceTimeCommand(t *testing.T) {
	cmd := CreateDeviceTimeCommand()
	assert.Equal(t, "Device/GetDeviceTime", cmd.Command)
}

func TestCreateResetGifIDCommand(t *testing.T) {
	assert.Equal(t, "Draw/ResetHttpGifId", CreateResetGifIDCommand().Command)
}

func TestCreateBrightnessCommand(t *testing.T) {
	cmd := CreateBrightnessCommand(75)
	assert.Equal(t, "Channel/SetBrightness", cmd.Command)
	assert.Equal(t, 75, cmd.Brightness)
}

func TestCreateBrightnessCommandClampValues(t *testing.T) {
	cmdLow := CreateBrightnessCommand(-10)
	assert.Equal(t, 0, cmdLow.Brightness)

	cmdHigh := CreateBrightnessCommand(150)
	assert.Equal(t, 100, cmdHigh.Brightness)
}
