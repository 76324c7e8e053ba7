package meshopt

import (
	"github.com/go-gl/mathgl/mgl64"
)

// quadric is the Garland-Heckbert symmetric error matrix, stored as the
// distinct coefficients of p'*A*p + 2*b.p + c.
type quadric struct {
	a00, a01, a02 float64
	a11, a12, a22 float64
	b0, b1, b2    float64
	c             float64
}

func (q *quadric) add(o *quadric) {
	q.a00 += o.a00
	q.a01 += o.a01
	q.a02 += o.a02
	q.a11 += o.a11
	q.a12 += o.a12
	q.a22 += o.a22
	q.b0 += o.b0
	q.b1 += o.b1
	q.b2 += o.b2
	q.c += o.c
}

// eval returns the squared distance error of placing the vertex at p.
func (q *quadric) eval(p mgl64.Vec3) float64 {
	x, y, z := p[0], p[1], p[2]

	e := q.a00*x*x + q.a11*y*y + q.a22*z*z
	e += 2 * (q.a01*x*y + q.a02*x*z + q.a12*y*z)
	e += 2 * (q.b0*x + q.b1*y + q.b2*z)
	e += q.c

	if e < 0 {
		// numeric noise around the minimum
		return 0
	}
	return e
}

func planeQuadric(n mgl64.Vec3, d float64, weight float64) quadric {
	return quadric{
		a00: weight * n[0] * n[0],
		a01: weight * n[0] * n[1],
		a02: weight * n[0] * n[2],
		a11: weight * n[1] * n[1],
		a12: weight * n[1] * n[2],
		a22: weight * n[2] * n[2],
		b0:  weight * d * n[0],
		b1:  weight * d * n[1],
		b2:  weight * d * n[2],
		c:   weight * d * d,
	}
}

// triangleQuadric builds the area-weighted plane quadric of a triangle.
// Degenerate triangles contribute a zero quadric.
func triangleQuadric(p0, p1, p2 mgl64.Vec3) quadric {
	cross := p1.Sub(p0).Cross(p2.Sub(p0))
	area2 := cross.Len()
	if area2 == 0 {
		return quadric{}
	}

	n := cross.Mul(1 / area2)
	d := -n.Dot(p0)
	return planeQuadric(n, d, area2*0.5)
}
