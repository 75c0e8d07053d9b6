package random

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestSplitMix64_ReferenceOutputs(t *testing.T) {
	g := NewSplitMix64(0)
	want := []uint64{0xe220a8397b1dcdaf, 0x6e789e6aa1b965f4, 0x06c45d188009454f}
	for i, w := range want {
		if got := g.Uint64(); got != w {
			t.Errorf("output %d = %#x, want %#x", i, got, w)
		}
	}
}

func TestXoroshiro128_ReferenceOutputs(t *testing.T) {
	tests := []struct {
		name   string
		engine Engine
		want   []uint64
	}{
		{
			name:   "plus",
			engine: NewXoroshiro128Plus(42),
			want:   []uint64{0xe6c71559e2525f98, 0x13b69ac93ec06b57, 0x879006cb74f40d36},
		},
		{
			name:   "starstar",
			engine: NewXoroshiro128StarStar(42),
			want:   []uint64{0x69e85b3631381baa, 0x3bc32c541d626e1d, 0x3e35de64b3b378d8},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]uint64, len(tt.want))
			for i := range got {
				got[i] = tt.engine.Uint64()
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("outputs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestXoroshiro64_ReferenceOutputs(t *testing.T) {
	star := NewXoroshiro64Star(42)
	starstar := NewXoroshiro64StarStar(42)

	var gotStar, gotStarStar []uint32
	for i := 0; i < 4; i++ {
		gotStar = append(gotStar, star.Uint32())
		gotStarStar = append(gotStarStar, starstar.Uint32())
	}

	assert.Equal(t, []uint32{0x004133d7, 0x464bd624, 0x947d5547, 0x3dd84097}, gotStar)
	assert.Equal(t, []uint32{0x28c06660, 0xef65d6a8, 0xce554cba, 0xa7285e83}, gotStarStar)
}

func TestXoroshiro64_Uint64JoinsTwoOutputs(t *testing.T) {
	e := NewXoroshiro64Star(42)
	assert.Equal(t, uint64(0x004133d7464bd624), e.Uint64())
	assert.Equal(t, uint32(0x947d5547), e.Uint32())
}

func TestEngine_SeedAndDiscard(t *testing.T) {
	for _, name := range []string{"xoroshiro64star", "xoroshiro64starstar", "xoroshiro128plus", "xoroshiro128starstar"} {
		t.Run(name, func(t *testing.T) {
			a, err := NewEngine(name, 7)
			assert.NoError(t, err)
			b, err := NewEngine(name, 7)
			assert.NoError(t, err)

			// GIVEN b skips five outputs one at a time and a discards them
			for i := 0; i < 5; i++ {
				if n, ok := b.(interface{ Uint32() uint32 }); ok {
					n.Uint32()
				} else {
					b.Uint64()
				}
			}
			a.Discard(5)

			// THEN both continue with the same sequence
			assert.Equal(t, b.Uint64(), a.Uint64())

			// WHEN a is reseeded
			a.Seed(7)
			fresh, _ := NewEngine(name, 7)

			// THEN it restarts the sequence
			assert.Equal(t, fresh.Uint64(), a.Uint64())
		})
	}
}

func TestNewEngine_UnknownName(t *testing.T) {
	_, err := NewEngine("mt19937", 1)
	assert.ErrorContains(t, err, `unknown engine "mt19937"`)

	e, err := NewEngine("", 42)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0x69e85b3631381baa), e.Uint64(), "empty name selects xoroshiro128**")
}
