package patch

import (
	"encoding/binary"
	"testing"

	"mod-loader/core/resource"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func animation(fatz bool, speed uint32, palette string, frames []byte) []byte {
	h := animationHeader{fatz: fatz, speed: speed, palette: palette, rest: frames}
	return h.encode()
}

func TestAnimationHeader(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		for _, fatz := range []bool{false, true} {
			data := animation(fatz, 125, `animals\elephant\elephant.pal`, []byte{1, 2, 3})
			h, err := parseAnimationHeader(data)
			require.NoError(t, err)
			assert.Equal(t, fatz, h.fatz)
			assert.Equal(t, uint32(125), h.speed)
			assert.Equal(t, `animals\elephant\elephant.pal`, h.palette)
			assert.Equal(t, []byte{1, 2, 3}, h.rest)
			assert.Equal(t, data, h.encode())
		}
	})

	t.Run("Layout", func(t *testing.T) {
		data := animation(false, 7, "p.pal", nil)
		assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(data[0:4]))
		assert.Equal(t, uint32(6), binary.LittleEndian.Uint32(data[4:8]))
		assert.Equal(t, "p.pal\x00", string(data[8:]))
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := parseAnimationHeader([]byte("FATZ\x01\x00"))
		assert.ErrorIs(t, err, ErrSerialization)
	})

	t.Run("LengthOutOfRange", func(t *testing.T) {
		data := make([]byte, 8)
		binary.LittleEndian.PutUint32(data[4:8], 50)
		_, err := parseAnimationHeader(data)
		assert.ErrorIs(t, err, ErrSerialization)
	})

	t.Run("MissingTerminator", func(t *testing.T) {
		data := animation(false, 1, "ab", nil)
		data[len(data)-1] = 'c'
		_, err := parseAnimationHeader(data)
		assert.ErrorIs(t, err, ErrSerialization)
	})
}

func TestSetPalette(t *testing.T) {
	newStore := func() *resource.Store {
		s := resource.New(resource.Config{}, zap.NewNop())
		s.RegisterPinned("animals/elephant/ne/walk", resource.KindAnimation, animation(true, 90, "animals/elephant/elephant.pal", []byte{9, 9}))
		s.RegisterPinned("mods/pink.pal", resource.KindPalette, []byte{0, 0})
		return s
	}

	t.Run("RewritesHeader", func(t *testing.T) {
		s := newStore()
		b := Batch{Meta: Meta{OnError: Abort}, Patches: []NamedPatch{{
			Name:  "pink",
			Patch: Patch{Op: OpSetPalette, Target: "animals/elephant/ne/walk", Palette: "mods/pink.pal"},
		}}}

		_, err := New(s, nil, zap.NewNop()).ApplyBatch(b, "mod.pink")
		require.NoError(t, err)

		res, ok := s.Fetch("animals/elephant/ne/walk")
		require.True(t, ok)
		h, err := parseAnimationHeader(res.Data)
		require.NoError(t, err)
		assert.True(t, h.fatz)
		assert.Equal(t, uint32(90), h.speed)
		assert.Equal(t, "mods/pink.pal", h.palette)
		assert.Equal(t, []byte{9, 9}, h.rest)
		assert.Equal(t, resource.KindAnimation, res.Kind)
	})

	t.Run("MissingPalette", func(t *testing.T) {
		s := newStore()
		b := Batch{Meta: Meta{OnError: Abort}, Patches: []NamedPatch{{
			Name:  "blue",
			Patch: Patch{Op: OpSetPalette, Target: "animals/elephant/ne/walk", Palette: "mods/blue.pal"},
		}}}

		_, err := New(s, nil, zap.NewNop()).ApplyBatch(b, "mod.blue")
		assert.ErrorIs(t, err, ErrTargetNotFound)
	})
}
