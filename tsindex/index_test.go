package tsindex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mtgeo/mtseries/errs"
)

var testStart = time.Date(2015, 1, 8, 19, 49, 18, 0, time.UTC)

func TestNew_Validation(t *testing.T) {
	_, err := New(testStart, 0, 10)
	require.ErrorIs(t, err, errs.ErrInvalidSampleRate)

	_, err = New(testStart, -8, 10)
	require.ErrorIs(t, err, errs.ErrInvalidSampleRate)

	_, err = New(testStart, 8, 0)
	require.ErrorIs(t, err, errs.ErrEmptyTimeIndex)

	ix, err := New(testStart, 8, 1)
	require.NoError(t, err)
	require.Equal(t, 1, ix.Len())
	require.True(t, ix.Start().Equal(ix.End()), "single point axis starts and ends at the same instant")
}

func TestTimeIndex_Arithmetic(t *testing.T) {
	ix, err := New(testStart, 8, 4096)
	require.NoError(t, err)

	require.Equal(t, 4096, ix.Len())
	require.Equal(t, 8.0, ix.SampleRate())
	require.True(t, ix.Start().Equal(testStart))

	// end = start + (n-1)/rate seconds
	wantEnd := testStart.Add(time.Duration(float64(4095) / 8.0 * 1e9))
	require.True(t, ix.End().Equal(wantEnd), "got %s want %s", ix.End(), wantEnd)

	require.True(t, ix.At(1).Equal(testStart.Add(125*time.Millisecond)))
	require.True(t, ix.At(96).Equal(testStart.Add(12*time.Second)))
}

func TestTimeIndex_FractionalStep(t *testing.T) {
	// 3 samples/second has a non-integer nanosecond step; offsets are
	// computed from the start for every point, so no drift accumulates.
	ix, err := New(testStart, 3, 3001)
	require.NoError(t, err)

	wantEnd := testStart.Add(1000 * time.Second)
	require.InDelta(t, 0, float64(ix.End().Sub(wantEnd)), 2, "end within nanosecond rounding")
}

func TestTimeIndex_Nearest(t *testing.T) {
	ix, err := New(testStart, 8, 4096)
	require.NoError(t, err)

	require.Equal(t, 0, ix.Nearest(testStart))
	require.Equal(t, 0, ix.Nearest(testStart.Add(-time.Hour)), "clamped below")
	require.Equal(t, 4095, ix.Nearest(testStart.Add(time.Hour)), "clamped above")

	// 30ms past a point rounds down, 100ms past rounds up
	require.Equal(t, 1, ix.Nearest(testStart.Add(155*time.Millisecond)))
	require.Equal(t, 2, ix.Nearest(testStart.Add(225*time.Millisecond)))
}

func TestTimeIndex_SliceRange(t *testing.T) {
	ix, err := New(testStart, 8, 4096)
	require.NoError(t, err)

	t.Run("on axis boundaries", func(t *testing.T) {
		lo, hi, err := ix.SliceRange(testStart.Add(12*time.Second), testStart.Add(13*time.Second))
		require.NoError(t, err)
		require.Equal(t, 96, lo)
		require.Equal(t, 104, hi)
	})

	t.Run("off axis boundaries snap inward", func(t *testing.T) {
		start := testStart.Add(12*time.Second + 50*time.Millisecond)
		end := testStart.Add(13*time.Second + 50*time.Millisecond)

		lo, hi, err := ix.SliceRange(start, end)
		require.NoError(t, err)
		require.False(t, ix.At(lo).Before(start), "first selected instant >= start")
		require.False(t, ix.At(hi).After(end), "last selected instant <= end")
		require.Equal(t, 97, lo)
		require.Equal(t, 104, hi)
	})

	t.Run("empty interval", func(t *testing.T) {
		_, _, err := ix.SliceRange(testStart.Add(time.Millisecond), testStart.Add(2*time.Millisecond))
		require.ErrorIs(t, err, errs.ErrEmptyTimeIndex)
	})
}

func TestTimeIndex_SliceN(t *testing.T) {
	ix, err := New(testStart, 8, 4096)
	require.NoError(t, err)

	lo, hi, err := ix.SliceN(testStart.Add(12*time.Second), 256)
	require.NoError(t, err)
	require.Equal(t, 96, lo)
	require.Equal(t, 351, hi)

	t.Run("clipped at axis end", func(t *testing.T) {
		lo, hi, err := ix.SliceN(ix.At(4000), 256)
		require.NoError(t, err)
		require.Equal(t, 4000, lo)
		require.Equal(t, 4095, hi)
	})

	t.Run("start past end", func(t *testing.T) {
		_, _, err := ix.SliceN(testStart.Add(time.Hour), 16)
		require.ErrorIs(t, err, errs.ErrEmptyTimeIndex)
	})
}

func TestTimeIndex_Slice(t *testing.T) {
	ix, err := New(testStart, 8, 4096)
	require.NoError(t, err)

	sub, err := ix.Slice(96, 351)
	require.NoError(t, err)
	require.Equal(t, 256, sub.Len())
	require.True(t, sub.Start().Equal(ix.At(96)))
	require.True(t, sub.End().Equal(ix.At(351)))

	_, err = ix.Slice(100, 99)
	require.ErrorIs(t, err, errs.ErrEmptyTimeIndex)
	_, err = ix.Slice(0, 4096)
	require.ErrorIs(t, err, errs.ErrEmptyTimeIndex)
}

func TestTimeIndex_Decimate(t *testing.T) {
	ix, err := New(testStart, 8, 4096)
	require.NoError(t, err)

	dec, err := ix.Decimate(4)
	require.NoError(t, err)
	require.Equal(t, 2.0, dec.SampleRate())
	require.True(t, dec.Start().Equal(ix.Start()))
	require.Equal(t, 1024, dec.Len())

	_, err = ix.Decimate(0)
	require.ErrorIs(t, err, errs.ErrInvalidSampleRate)
}

func TestTimeIndex_Contains(t *testing.T) {
	ix, err := New(testStart, 8, 16)
	require.NoError(t, err)

	i, ok := ix.Contains(testStart.Add(250 * time.Millisecond))
	require.True(t, ok)
	require.Equal(t, 2, i)

	_, ok = ix.Contains(testStart.Add(200 * time.Millisecond))
	require.False(t, ok, "off-grid instant")

	_, ok = ix.Contains(testStart.Add(2 * time.Second))
	require.False(t, ok, "on-grid but past the end")
}

func TestTimeIndex_Equal(t *testing.T) {
	a, err := New(testStart, 8, 128)
	require.NoError(t, err)
	b, err := New(testStart, 8, 128)
	require.NoError(t, err)
	c, err := New(testStart.Add(time.Second), 8, 128)
	require.NoError(t, err)

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.False(t, a.Equal(nil))
}

func TestTimeIndex_Timestamps(t *testing.T) {
	ix, err := New(testStart, 8, 4)
	require.NoError(t, err)

	ts := ix.Timestamps()
	require.Len(t, ts, 4)
	require.True(t, ts[0].Equal(testStart))
	require.True(t, ts[3].Equal(testStart.Add(375*time.Millisecond)))
}
