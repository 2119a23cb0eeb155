package overlay

import (
	"breathpacer/internal/core/model"

	"fyne.io/fyne/v2"
)

const (
	minCircleFraction = float32(0.25)
	maxCircleFraction = float32(0.9)
	barWidthFraction  = float32(0.8)
	barHeight         = float32(24)
)

// breathLayout sizes the circle or bar from the current level. Objects are
// circle, bar track and bar fill, in that order.
type breathLayout struct {
	style model.VisualStyle
	level float64
}

func (layout *breathLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 3 {
		return
	}
	circle, track, bar := objects[0], objects[1], objects[2]

	if layout.style == model.VisualBar {
		circle.Hide()
		track.Show()
		bar.Show()

		trackWidth := size.Width * barWidthFraction
		x := (size.Width - trackWidth) / 2
		y := (size.Height - barHeight) / 2
		track.Move(fyne.NewPos(x, y))
		track.Resize(fyne.NewSize(trackWidth, barHeight))
		bar.Move(fyne.NewPos(x, y))
		bar.Resize(fyne.NewSize(barFill(layout.level, trackWidth), barHeight))
		return
	}

	track.Hide()
	bar.Hide()
	circle.Show()
	side := circleDiameter(layout.level, size)
	circle.Move(fyne.NewPos((size.Width-side)/2, (size.Height-side)/2))
	circle.Resize(fyne.NewSize(side, side))
}

func (layout *breathLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(200, 200)
}

// circleDiameter maps a level in [0, 1] onto the visible range of the
// circle, relative to the shorter side of the area.
func circleDiameter(level float64, size fyne.Size) float32 {
	side := size.Width
	if size.Height < side {
		side = size.Height
	}
	if side < 0 {
		side = 0
	}
	fraction := minCircleFraction + (maxCircleFraction-minCircleFraction)*float32(clampLevel(level))
	return side * fraction
}

func barFill(level float64, width float32) float32 {
	return width * float32(clampLevel(level))
}

func clampLevel(level float64) float64 {
	if level < 0 {
		return 0
	}
	if level > 1 {
		return 1
	}
	return level
}
