package viewstate

import "math"

const (
	MinZoom     = 0.25
	MaxZoom     = 3.0
	ZoomStep    = 0.25
	defaultZoom = 1.0
)

// ImageViewer is a zoom/rotate preview of one image.
type ImageViewer struct {
	Ref      string  `json:"ref"`
	Label    string  `json:"label"`
	Zoom     float64 `json:"zoom"`
	Rotation int     `json:"rotation"`
	Open     bool    `json:"open"`
}

// OpenImage shows ref at 100% with no rotation.
func OpenImage(ref, label string) ImageViewer {
	return ImageViewer{Ref: ref, Label: label, Zoom: defaultZoom, Open: true}
}

func (v ImageViewer) ZoomIn() ImageViewer {
	v.Zoom = clampZoom(v.Zoom + ZoomStep)
	return v
}

func (v ImageViewer) ZoomOut() ImageViewer {
	v.Zoom = clampZoom(v.Zoom - ZoomStep)
	return v
}

// RotateRight turns by 90 degrees clockwise, wrapping at 360.
func (v ImageViewer) RotateRight() ImageViewer {
	v.Rotation = (v.Rotation + 90) % 360
	return v
}

func (v ImageViewer) RotateLeft() ImageViewer {
	v.Rotation = (v.Rotation + 270) % 360
	return v
}

func (v ImageViewer) Reset() ImageViewer {
	v.Zoom = defaultZoom
	v.Rotation = 0
	return v
}

// Close dismisses the viewer. Escape and the close button both end here.
func (v ImageViewer) Close() ImageViewer {
	return ImageViewer{}
}

// clampZoom keeps z on the step grid inside [MinZoom, MaxZoom].
func clampZoom(z float64) float64 {
	z = math.Round(z/ZoomStep) * ZoomStep
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}
