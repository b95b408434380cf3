package stencil

import (
	"testing"

	"github.com/san-kum/heatlab/internal/grid"
)

func BenchmarkDiffuse2D(b *testing.B) {
	shape := grid.Shape2D(512, 512)
	cur := randomField(shape, 1)
	next := grid.NewField(shape)
	ci := constant(shape, 1)
	p := unitParams(shape, 0.1)
	r := Interior(shape)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Diffuse(cur, next, ci, p, r)
		cur, next = next, cur
	}
}

func BenchmarkDiffuse3D(b *testing.B) {
	shape := grid.Shape3D(64, 64, 64)
	cur := randomField(shape, 1)
	next := grid.NewField(shape)
	ci := constant(shape, 1)
	p := unitParams(shape, 0.05)
	r := Interior(shape)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Diffuse(cur, next, ci, p, r)
		cur, next = next, cur
	}
}
