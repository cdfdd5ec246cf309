// Package shape defines the closed set of drawable primitives and the rules
// a primitive must satisfy before it may enter a document.
package shape

import "fmt"

// Kind is the type tag of a shape variant.
type Kind string

const (
	KindLine   Kind = "line"
	KindRect   Kind = "rect"
	KindCircle Kind = "circle"
	KindArc    Kind = "arc"
	KindText   Kind = "text"
	KindPoint  Kind = "point"
	KindDim    Kind = "dim"
)

// Kinds lists every variant in schema order.
var Kinds = []Kind{KindLine, KindRect, KindCircle, KindArc, KindText, KindPoint, KindDim}

// Geometry is implemented by the shape variants of this package only.
type Geometry interface {
	Kind() Kind
	schema() []field
}

// New returns a zero geometry for the given kind.
func New(kind Kind) (Geometry, bool) {
	switch kind {
	case KindLine:
		return &Line{}, true
	case KindRect:
		return &Rect{}, true
	case KindCircle:
		return &Circle{}, true
	case KindArc:
		return &Arc{}, true
	case KindText:
		return &Text{}, true
	case KindPoint:
		return &Point{}, true
	case KindDim:
		return &Dim{}, true
	}
	return nil, false
}

// Clone returns a deep copy of g.
func Clone(g Geometry) Geometry {
	switch v := g.(type) {
	case *Line:
		c := *v
		return &c
	case *Rect:
		c := *v
		return &c
	case *Circle:
		c := *v
		return &c
	case *Arc:
		c := *v
		return &c
	case *Text:
		c := *v
		return &c
	case *Point:
		c := *v
		return &c
	case *Dim:
		c := *v
		return &c
	case nil:
		return nil
	}
	panic(fmt.Sprintf("shape: unhandled geometry %T", g))
}

// Line is a straight segment between two points.
type Line struct {
	X1 float64 `json:"x1" validate:"finite"`
	Y1 float64 `json:"y1" validate:"finite"`
	X2 float64 `json:"x2" validate:"finite"`
	Y2 float64 `json:"y2" validate:"finite"`
}

func (*Line) Kind() Kind { return KindLine }

func (l *Line) schema() []field {
	return []field{num("x1", &l.X1), num("y1", &l.Y1), num("x2", &l.X2), num("y2", &l.Y2)}
}

// Rect is an axis-aligned rectangle anchored at its minimum corner.
type Rect struct {
	X float64 `json:"x" validate:"finite"`
	Y float64 `json:"y" validate:"finite"`
	W float64 `json:"w" validate:"finite,gt=0"`
	H float64 `json:"h" validate:"finite,gt=0"`
}

func (*Rect) Kind() Kind { return KindRect }

func (r *Rect) schema() []field {
	return []field{num("x", &r.X), num("y", &r.Y), num("w", &r.W), num("h", &r.H)}
}

// Circle is a full circle.
type Circle struct {
	CX float64 `json:"cx" validate:"finite"`
	CY float64 `json:"cy" validate:"finite"`
	R  float64 `json:"r" validate:"finite,gt=0"`
}

func (*Circle) Kind() Kind { return KindCircle }

func (c *Circle) schema() []field {
	return []field{num("cx", &c.CX), num("cy", &c.CY), num("r", &c.R)}
}

// Arc is a circular arc; angles are in degrees, counter-clockwise from +x.
type Arc struct {
	CX         float64 `json:"cx" validate:"finite"`
	CY         float64 `json:"cy" validate:"finite"`
	R          float64 `json:"r" validate:"finite,gt=0"`
	StartAngle float64 `json:"startAngle" validate:"finite"`
	EndAngle   float64 `json:"endAngle" validate:"finite"`
}

func (*Arc) Kind() Kind { return KindArc }

func (a *Arc) schema() []field {
	return []field{
		num("cx", &a.CX),
		num("cy", &a.CY),
		num("r", &a.R),
		optNum("startAngle", &a.StartAngle, DefaultArcStart),
		optNum("endAngle", &a.EndAngle, DefaultArcEnd),
	}
}

// Text is a single-line annotation.
type Text struct {
	X        float64 `json:"x" validate:"finite"`
	Y        float64 `json:"y" validate:"finite"`
	Text     string  `json:"text" validate:"required"`
	Height   float64 `json:"height" validate:"finite,gt=0"`
	Rotation float64 `json:"rotation" validate:"finite"`
	Align    string  `json:"align" validate:"oneof=left center right"`
}

func (*Text) Kind() Kind { return KindText }

func (t *Text) schema() []field {
	return []field{
		num("x", &t.X),
		num("y", &t.Y),
		str("text", &t.Text),
		optNum("height", &t.Height, DefaultTextHeight),
		optNum("rotation", &t.Rotation, 0),
		optEnum("align", &t.Align, DefaultTextAlign, "left", "center", "right"),
	}
}

// Point is a single marker.
type Point struct {
	X float64 `json:"x" validate:"finite"`
	Y float64 `json:"y" validate:"finite"`
}

func (*Point) Kind() Kind { return KindPoint }

func (p *Point) schema() []field {
	return []field{num("x", &p.X), num("y", &p.Y)}
}

// Dim is a linear dimension between two points, drawn Offset away from them.
type Dim struct {
	X1     float64 `json:"x1" validate:"finite"`
	Y1     float64 `json:"y1" validate:"finite"`
	X2     float64 `json:"x2" validate:"finite"`
	Y2     float64 `json:"y2" validate:"finite"`
	Offset float64 `json:"offset" validate:"finite"`
	Dir    string  `json:"dir" validate:"oneof=aligned horizontal vertical"`
}

func (*Dim) Kind() Kind { return KindDim }

func (d *Dim) schema() []field {
	return []field{
		num("x1", &d.X1),
		num("y1", &d.Y1),
		num("x2", &d.X2),
		num("y2", &d.Y2),
		optNum("offset", &d.Offset, DefaultDimOffset),
		optEnum("dir", &d.Dir, DefaultDimDir, "aligned", "horizontal", "vertical"),
	}
}

// Fallbacks for optional fields that are absent, non-finite or not an allowed value.
const (
	DefaultArcStart   = 0.0
	DefaultArcEnd     = 90.0
	DefaultTextHeight = 2.5
	DefaultTextAlign  = "left"
	DefaultDimOffset  = 5.0
	DefaultDimDir     = "aligned"
)
