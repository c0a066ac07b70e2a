package rig

import (
	"context"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

// setupBenchArtboard creates an artboard with n bone chains of depth 8, each
// tipped with a shape.
func setupBenchArtboard(n int) (*Artboard, []*Component) {
	a := NewArtboard("bench")
	var roots []*Component
	for i := 0; i < n; i++ {
		parent := a.Root().ID
		for d := 0; d < 8; d++ {
			bone := NewBone("b", 10)
			bone.X = float64(i%100) * 40
			a.Add(parent, bone)
			if d == 0 {
				roots = append(roots, bone)
			}
			parent = bone.ID
		}
		a.Add(parent, NewShape("tip", ShapeEllipse, 8, 8, ColorWhite))
	}
	a.RunUpdatePass()
	return a, roots
}

// --- Build ---

func BenchmarkBuild_1000Chains(b *testing.B) {
	a, _ := setupBenchArtboard(1000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = a.Build()
	}
}

// --- Update pass ---

func BenchmarkUpdate_1000Chains_Clean(b *testing.B) {
	a, _ := setupBenchArtboard(1000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		a.RunUpdatePass()
	}
}

func BenchmarkUpdate_1000Chains_Rotating(b *testing.B) {
	a, roots := setupBenchArtboard(1000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, r := range roots {
			r.SetRotation(r.Rotation + 0.01)
		}
		a.RunUpdatePass()
	}
}

func BenchmarkUpdate_1000Chains_OneDirty(b *testing.B) {
	a, roots := setupBenchArtboard(1000)
	r := roots[len(roots)/2]

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		r.SetRotation(r.Rotation + 0.01)
		a.RunUpdatePass()
	}
}

// --- Animation ---

func BenchmarkAnimation_1000Objects(b *testing.B) {
	a, roots := setupBenchArtboard(1000)
	anim := NewLinearAnimation("spin", 2, LoopLoop)
	for _, r := range roots {
		anim.KeyedObjects = append(anim.KeyedObjects, &KeyedObject{
			ObjectID: r.ID,
			Properties: []*KeyedProperty{{Key: PropRotation, Frames: []KeyFrame{
				{Time: 0, Value: 0, Ease: ease.InOutQuad},
				{Time: 1, Value: 3},
				{Time: 2, Value: 0},
			}}},
		})
	}
	s := NewScene(a)
	s.PlayAnimation(anim)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		s.Advance(1.0 / 60)
	}
}

func BenchmarkStage_16Scenes(b *testing.B) {
	st := NewStage()
	for i := 0; i < 16; i++ {
		a, roots := setupBenchArtboard(100)
		s := NewScene(a)
		for _, r := range roots {
			s.Play(TweenRotation(r, 100, 1000, ease.Linear), 1)
		}
		st.Add(s)
	}
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = st.Advance(ctx, 1.0/60)
	}
}

// --- Draw ---

func BenchmarkDraw_1000Chains(b *testing.B) {
	a, _ := setupBenchArtboard(1000)
	s := NewScene(a)
	screen := ebiten.NewImage(1280, 720)

	s.DrawImage(screen, IdentityMat2D) // warmup

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		s.DrawImage(screen, IdentityMat2D)
	}
}
