// Package plot draws projected vectors onto a drawing surface.
package plot

import "cybersandbox/internal/domain"

// Domain bounds of every projected axis.
const (
	DomainMin = -5.0
	DomainMax = 5.0
)

// DefaultRadius is the marker radius in surface pixels.
const DefaultRadius = 4.0

// Surface is anything markers can be drawn on.
type Surface interface {
	Size() (width, height int)
	Clear()
	FillCircle(cx, cy, r float64)
}

// Marker is the surface position a point was drawn at.
type Marker struct {
	X, Y float64
}

// ToPixel maps a value in [DomainMin, DomainMax] onto [0, size].
func ToPixel(value float64, size int) float64 {
	return (value - DomainMin) * (float64(size) / (DomainMax - DomainMin))
}

// Draw clears s and draws one filled marker per point. It returns the marker centers in
// point order.
func Draw(s Surface, points []domain.Point, radius float64) []Marker {
	s.Clear()
	w, h := s.Size()
	markers := make([]Marker, 0, len(points))
	for _, p := range points {
		m := Marker{X: ToPixel(p.X, w), Y: ToPixel(p.Y, h)}
		s.FillCircle(m.X, m.Y, radius)
		markers = append(markers, m)
	}
	return markers
}
