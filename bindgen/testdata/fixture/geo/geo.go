// Package geo is a library exposed through generated glue.
package geo

// Drops counts destroyed shapes.
var Drops int

// ShapeCount is the static field Shape.count.
var ShapeCount int32

type Shape struct {
	W, H  float64
	Inner *Shape

	label string
}

func NewShape(size float64) *Shape {
	return &Shape{W: size, H: size}
}

func NewShape1(w, h float64) *Shape {
	return &Shape{W: w, H: h}
}

func ShapeCreate() *Shape {
	return &Shape{W: 1, H: 1, label: "unit"}
}

func (s *Shape) Area() float64 {
	return s.W * s.H
}

func (s *Shape) Grow(n int32) int32 {
	return n * 2
}

func (s *Shape) Grow2(x float64) float64 {
	return x / 2
}

func (s *Shape) Label() string {
	return s.label
}

func (s *Shape) SetLabel(v string) {
	s.label = v
}

func (s *Shape) Drop() {
	Drops++
}
