package icon

import (
	"image"
	"image/color"
	"log/slog"

	"github.com/leapstack-labs/approuter/pkg/core"
)

// Source tells which step of the fallback chain produced an icon.
type Source int

// Fallback chain steps, in order of preference.
const (
	SourceMaskable Source = iota
	SourceVariant
	SourceIcon
	SourceDefault
)

func (s Source) String() string {
	switch s {
	case SourceMaskable:
		return "maskable"
	case SourceVariant:
		return "variant"
	case SourceIcon:
		return "icon"
	default:
		return "default"
	}
}

// Options select how an icon is rendered.
type Options struct {
	Size     int
	Maskable bool
	// Background is composited under a maskable icon. Nil falls back to the
	// app's stored background color, if any.
	Background *color.NRGBA
}

// Renderer applies the icon fallback chain to an app record.
type Renderer struct {
	logger *slog.Logger
}

// NewRenderer creates a Renderer. A nil logger discards output.
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Renderer{logger: logger}
}

// Render picks the best available image for opts and returns it as PNG:
//
//  1. the maskable icon, when requested and stored, over the background color
//  2. the stored variant for the requested size
//  3. the stored icon, resized
//  4. the platform default icon, resized
//
// A nil app renders the default icon. Stored images that fail to decode are
// skipped.
func (r *Renderer) Render(app *core.App, opts Options) ([]byte, Source, error) {
	img, src := r.pick(app, opts)
	data, err := EncodePNG(img)
	return data, src, err
}

func (r *Renderer) pick(app *core.App, opts Options) (image.Image, Source) {
	if app != nil {
		if opts.Maskable {
			if img := r.decode(app, app.MaskableIcon, SourceMaskable); img != nil {
				out := Resize(img, opts.Size)
				if bg, ok := r.background(app, opts); ok {
					return Composite(out, bg), SourceMaskable
				}
				return out, SourceMaskable
			}
		}
		if img := r.decode(app, app.IconVariant, SourceVariant); img != nil {
			return Resize(img, opts.Size), SourceVariant
		}
		if img := r.decode(app, app.Icon, SourceIcon); img != nil {
			return Resize(img, opts.Size), SourceIcon
		}
	}
	return Resize(Default(), opts.Size), SourceDefault
}

func (r *Renderer) decode(app *core.App, data []byte, src Source) image.Image {
	if len(data) == 0 {
		return nil
	}
	img, err := Decode(data)
	if err != nil {
		r.logger.Warn("skipping undecodable stored icon",
			slog.Int64("app_id", app.ID),
			slog.String("source", src.String()),
			slog.Any("error", err))
		return nil
	}
	return img
}

func (r *Renderer) background(app *core.App, opts Options) (color.NRGBA, bool) {
	if opts.Background != nil {
		return *opts.Background, true
	}
	if app.IconBackground == "" {
		return color.NRGBA{}, false
	}
	bg, err := ParseColor(app.IconBackground)
	if err != nil {
		r.logger.Warn("ignoring invalid stored icon background",
			slog.Int64("app_id", app.ID),
			slog.String("background", app.IconBackground))
		return color.NRGBA{}, false
	}
	return bg, true
}
