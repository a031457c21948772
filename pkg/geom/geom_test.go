package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-12

func TestSinCosDegExact(t *testing.T) {
	tests := []struct {
		deg      float64
		sin, cos float64
	}{
		{0, 0, 1},
		{90, 1, 0},
		{180, 0, -1},
		{270, -1, 0},
		{-90, -1, 0},
		{450, 1, 0},
	}
	for _, tt := range tests {
		s, c := SinCosDeg(tt.deg)
		if s != tt.sin || c != tt.cos {
			t.Errorf("SinCosDeg(%v) = (%v, %v), want (%v, %v)", tt.deg, s, c, tt.sin, tt.cos)
		}
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0}, {360, 0}, {-90, 270}, {720 + 45, 45}, {-360, 0},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); got != tt.want {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAngleDiff(t *testing.T) {
	assert.InDelta(t, -20.0, AngleDiff(350, 10), eps)
	assert.InDelta(t, 180.0, AngleDiff(180, 0), eps)
	assert.InDelta(t, 90.0, AngleDiff(0, 270), eps)
}

func TestTransformApplyOrder(t *testing.T) {
	// Mirror first, then rotate, then translate.
	tr := Transform{Origin: Pt(1, 2), Rotation: 90, Mirror: true}
	got := tr.Apply(Pt(1, 1))
	// mirror: (1,-1); rotate 90: (1,1); translate: (2,3)
	assert.InDelta(t, 2.0, got.X, eps)
	assert.InDelta(t, 3.0, got.Y, eps)
	assert.InDelta(t, 270.0, tr.ApplyAngle(180), eps)
}

func TestTransformRotatePort(t *testing.T) {
	tr := Rotate(90)
	p := tr.Apply(Pt(10, 0))
	assert.InDelta(t, 0.0, p.X, eps)
	assert.InDelta(t, 10.0, p.Y, eps)
	assert.InDelta(t, 90.0, tr.ApplyAngle(0), eps)
}

func TestTransformComposeAssociative(t *testing.T) {
	a := Transform{Origin: Pt(3, -1), Rotation: 30, Mirror: true}
	b := Transform{Origin: Pt(-2, 5), Rotation: 125}
	c := Transform{Origin: Pt(0.5, 0.25), Rotation: 270, Mirror: true}
	pts := []Point{Pt(0, 0), Pt(1, 0), Pt(-3.5, 2.25)}

	left := a.Compose(b).Compose(c)
	right := a.Compose(b.Compose(c))
	for _, p := range pts {
		want := a.Apply(b.Apply(c.Apply(p)))
		for _, tr := range []Transform{left, right} {
			got := tr.Apply(p)
			assert.InDelta(t, want.X, got.X, 1e-9)
			assert.InDelta(t, want.Y, got.Y, 1e-9)
		}
	}
	assert.InDelta(t, a.ApplyAngle(b.ApplyAngle(c.ApplyAngle(45))), left.ApplyAngle(45), 1e-9)
}

func TestTransformInverse(t *testing.T) {
	for _, tr := range []Transform{
		{Origin: Pt(3, 4), Rotation: 37},
		{Origin: Pt(-1, 2), Rotation: 90, Mirror: true},
		{Mirror: true},
	} {
		id := tr.Compose(tr.Inverse())
		p := Pt(1.5, -2.5)
		got := id.Apply(p)
		assert.InDelta(t, p.X, got.X, 1e-9)
		assert.InDelta(t, p.Y, got.Y, 1e-9)
		back := tr.Inverse().Apply(tr.Apply(p))
		assert.InDelta(t, p.X, back.X, 1e-9)
		assert.InDelta(t, p.Y, back.Y, 1e-9)
	}
}

func TestPolygonArea(t *testing.T) {
	sq := R(0, 0, 2, 3).Polygon()
	if !sq.IsCCW() {
		t.Error("IsCCW() = false, want true")
	}
	assert.InDelta(t, 6.0, sq.Area(), eps)
	assert.InDelta(t, -6.0, sq.Reversed().SignedArea(), eps)
	if got := sq.Reversed()[0]; got != sq[0] {
		t.Errorf("Reversed()[0] = %v, want %v", got, sq[0])
	}
}

func TestPolygonTransformKeepsWinding(t *testing.T) {
	sq := R(0, 0, 1, 1).Polygon()
	got := sq.Transform(Transform{Mirror: true, Rotation: 90})
	if !got.IsCCW() {
		t.Error("mirrored polygon lost counter-clockwise winding")
	}
	assert.InDelta(t, 1.0, got.Area(), eps)
}

func TestRectTransform(t *testing.T) {
	r := R(0, -1, 10, 1).Transform(Rotate(90))
	assert.InDelta(t, -1.0, r.Min.X, eps)
	assert.InDelta(t, 0.0, r.Min.Y, eps)
	assert.InDelta(t, 1.0, r.Max.X, eps)
	assert.InDelta(t, 10.0, r.Max.Y, eps)

	if !EmptyRect().Union(r).Contains(Pt(0, 5)) {
		t.Error("Union with empty rect lost points")
	}
}

func TestMergeHoles(t *testing.T) {
	outer := R(0, 0, 10, 10).Polygon()
	hole := R(3, 3, 6, 6).Polygon()
	merged := MergeHoles(outer, []Polygon{hole})

	assert.InDelta(t, 100.0-9.0, merged.Area(), 1e-9)
	if !merged.IsCCW() {
		t.Error("merged polygon is not counter-clockwise")
	}
	if merged.Contains(Pt(4.5, 4.5)) {
		t.Error("hole interior reported inside merged polygon")
	}
	if !merged.Contains(Pt(1, 1)) {
		t.Error("solid region reported outside merged polygon")
	}
}

func TestDedup(t *testing.T) {
	pg := Polygon{Pt(0, 0), Pt(0, 0), Pt(1, 0), Pt(1, 1), Pt(0, 0)}
	got := pg.Dedup(1e-9)
	if len(got) != 3 {
		t.Errorf("len(Dedup()) = %d, want 3", len(got))
	}
}
