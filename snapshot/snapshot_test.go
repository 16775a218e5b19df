package snapshot

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mtgeo/mtseries/compress"
	"github.com/mtgeo/mtseries/errs"
	"github.com/mtgeo/mtseries/metadata"
	"github.com/mtgeo/mtseries/timeseries"
	"github.com/mtgeo/mtseries/tsindex"
)

var snapStart = time.Date(2015, 1, 8, 19, 49, 18, 0, time.UTC)

func makeChannel(t *testing.T, component string, n int, extra map[string]any) *timeseries.ChannelSeries {
	t.Helper()

	attrs := map[string]any{
		"component":         component,
		"sample_rate":       8,
		"time_period.start": metadata.FormatTime(snapStart),
		"units":             "counts",
	}
	for k, v := range extra {
		attrs[k] = v
	}

	kind := metadata.KindForComponent(component)
	ch, err := timeseries.NewChannelSeries(kind.String(), nil,
		timeseries.WithChannelMetadata(attrs))
	require.NoError(t, err)

	data := make([]float64, n)
	for i := range data {
		data[i] = rand.NormFloat64()
	}
	require.NoError(t, ch.SetSamples(data))

	return ch
}

func makeRun(t *testing.T) *timeseries.RunSeries {
	t.Helper()

	channels := []*timeseries.ChannelSeries{
		makeChannel(t, "ex", 4096, map[string]any{"dipole_length": 92.0}),
		makeChannel(t, "ey", 4096, map[string]any{"dipole_length": 88.5}),
		makeChannel(t, "hx", 4096, map[string]any{"sensor.id": "2284"}),
		makeChannel(t, "hz", 4096, nil),
		makeChannel(t, "temperature", 4096, nil),
	}

	run, err := timeseries.NewRunSeries(
		timeseries.WithRunSeriesMetadata(map[string]any{"id": "001", "data_type": "BBMT"}),
		timeseries.WithRunStationMetadata(map[string]any{
			"id":           "MT001",
			"fdsn.id":      "MT001",
			"fdsn.network": "EM",
		}),
	)
	require.NoError(t, err)
	require.NoError(t, run.SetDataset(channels, tsindex.AlignExact))

	return run
}

func TestSnapshot_RoundTrip(t *testing.T) {
	run := makeRun(t)

	for _, compression := range []compress.Type{
		compress.TypeNone, compress.TypeZstd, compress.TypeS2, compress.TypeLZ4,
	} {
		t.Run(compression.String(), func(t *testing.T) {
			enc, err := NewEncoder(WithCompression(compression))
			require.NoError(t, err)

			data, err := enc.Encode(run)
			require.NoError(t, err)

			decoded, err := Decode(data)
			require.NoError(t, err)

			require.Equal(t, run.Channels(), decoded.Channels())
			require.Equal(t, run.SampleRate(), decoded.SampleRate())
			require.True(t, decoded.Start().Equal(run.Start()))
			require.True(t, decoded.End().Equal(run.End()))

			for _, name := range run.Channels() {
				want, err := run.Channel(name)
				require.NoError(t, err)
				got, err := decoded.Channel(name)
				require.NoError(t, err)
				require.True(t, want.Equal(got), "channel %q did not survive the round trip", name)
			}
		})
	}
}

func TestSnapshot_MetadataSurvives(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)

	data, err := enc.Encode(makeRun(t))
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	require.Equal(t, "001", decoded.RunMetadata().ID)
	require.Equal(t, "BBMT", decoded.RunMetadata().DataType)
	require.Equal(t, "MT001", decoded.StationMetadata().ID)
	require.Equal(t, "EM", decoded.StationMetadata().FDSN.Network)
	require.Equal(t, []string{"ex", "ey"}, decoded.RunMetadata().ChannelsRecordedElectric)
	require.Equal(t, []string{"hx", "hz"}, decoded.RunMetadata().ChannelsRecordedMagnetic)
	require.Equal(t, []string{"temperature"}, decoded.RunMetadata().ChannelsRecordedAuxiliary)

	t.Run("kinds and kind-specific fields", func(t *testing.T) {
		ex, err := decoded.Channel("ex")
		require.NoError(t, err)
		require.Equal(t, metadata.KindElectric, ex.Kind())
		require.Equal(t, 92.0, ex.ChannelMetadata().(*metadata.Electric).DipoleLength)

		hx, err := decoded.Channel("hx")
		require.NoError(t, err)
		require.Equal(t, metadata.KindMagnetic, hx.Kind())
		require.Equal(t, "2284", hx.ChannelMetadata().(*metadata.Magnetic).SensorID)

		aux, err := decoded.Channel("temperature")
		require.NoError(t, err)
		require.Equal(t, metadata.KindAuxiliary, aux.Kind())
		require.Equal(t, "counts", aux.ChannelMetadata().Base().Units)
	})
}

func TestSnapshot_NaNGapsSurvive(t *testing.T) {
	// hz starts late, so union alignment NaN-fills its leading instants
	channels := []*timeseries.ChannelSeries{
		makeChannel(t, "ex", 4096, nil),
	}
	late := makeChannel(t, "hz", 4096, nil)
	require.NoError(t, late.SetStart(snapStart.Add(8*time.Second)))
	channels = append(channels, late)

	run, err := timeseries.NewRunSeries()
	require.NoError(t, err)
	require.NoError(t, run.SetDataset(channels, tsindex.AlignUnion))

	enc, err := NewEncoder()
	require.NoError(t, err)
	data, err := enc.Encode(run)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	hz, err := decoded.Channel("hz")
	require.NoError(t, err)
	require.True(t, math.IsNaN(hz.Samples()[0]))
	require.True(t, math.IsNaN(hz.Samples()[63]))
	require.False(t, math.IsNaN(hz.Samples()[64]))
}

func TestSnapshot_HeaderLayout(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)

	data, err := enc.Encode(makeRun(t))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), headerSize)

	// magic "1STM" in little-endian byte order
	require.Equal(t, []byte{0x31, 0x53, 0x54, 0x4D}, data[0:4])
	require.Equal(t, Version, data[4])
	require.Equal(t, byte(compress.TypeS2), data[5], "default compression is S2")
}

func TestSnapshot_EncodeEmptyRun(t *testing.T) {
	run, err := timeseries.NewRunSeries()
	require.NoError(t, err)

	enc, err := NewEncoder()
	require.NoError(t, err)

	_, err = enc.Encode(run)
	require.ErrorIs(t, err, errs.ErrNoChannelsAdded)
}

func TestSnapshot_UnsupportedCompression(t *testing.T) {
	_, err := NewEncoder(WithCompression(compress.Type(0xFF)))
	require.ErrorContains(t, err, "unsupported compression type")
}

func TestSnapshot_Handle(t *testing.T) {
	run := makeRun(t)
	enc, err := NewEncoder()
	require.NoError(t, err)
	data, err := enc.Encode(run)
	require.NoError(t, err)

	h, err := Open(data)
	require.NoError(t, err)

	names, err := h.Channels()
	require.NoError(t, err)
	require.Equal(t, []string{"ex", "ey", "hx", "hz", "temperature"}, names)

	ix, err := h.TimeIndex()
	require.NoError(t, err)
	require.Equal(t, 4096, ix.Len())
	require.Equal(t, 8.0, ix.SampleRate())

	t.Run("lazy single-channel read", func(t *testing.T) {
		want, err := run.Channel("hx")
		require.NoError(t, err)

		got, err := h.Channel("hx")
		require.NoError(t, err)
		require.Equal(t, want.Samples(), got.Samples())
		require.Equal(t, "2284", got.ChannelMetadata().(*metadata.Magnetic).SensorID)
		require.Equal(t, "MT001", got.StationMetadata().ID, "layered records travel with the channel")
	})

	t.Run("case insensitive", func(t *testing.T) {
		got, err := h.Channel("EX")
		require.NoError(t, err)
		require.Equal(t, "ex", got.Component())
	})

	t.Run("unknown channel", func(t *testing.T) {
		_, err := h.Channel("hy")
		require.ErrorIs(t, err, errs.ErrChannelNotFound)
	})

	t.Run("materialize the run", func(t *testing.T) {
		decoded, err := h.Run()
		require.NoError(t, err)
		require.Equal(t, run.Channels(), decoded.Channels())
	})

	t.Run("closed handle fails every accessor", func(t *testing.T) {
		require.NoError(t, h.Close())
		require.NoError(t, h.Close(), "closing twice is a no-op")

		_, err := h.Channels()
		require.ErrorIs(t, err, errs.ErrHandleClosed)
		_, err = h.Channel("ex")
		require.ErrorIs(t, err, errs.ErrHandleClosed)
		_, err = h.TimeIndex()
		require.ErrorIs(t, err, errs.ErrHandleClosed)
		_, err = h.Run()
		require.ErrorIs(t, err, errs.ErrHandleClosed)
	})
}

func TestSnapshot_DecodeErrors(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)
	valid, err := enc.Encode(makeRun(t))
	require.NoError(t, err)

	corrupt := func() []byte {
		return append([]byte(nil), valid...)
	}

	t.Run("short input", func(t *testing.T) {
		_, err := Decode(valid[:headerSize-1])
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})

	t.Run("bad magic", func(t *testing.T) {
		data := corrupt()
		data[0] = 0x00
		_, err := Decode(data)
		require.ErrorIs(t, err, errs.ErrInvalidMagicNumber)
	})

	t.Run("unknown version", func(t *testing.T) {
		data := corrupt()
		data[4] = 99
		_, err := Decode(data)
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})

	t.Run("unknown compression", func(t *testing.T) {
		data := corrupt()
		data[5] = 0xFF
		_, err := Decode(data)
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})

	t.Run("zero channels", func(t *testing.T) {
		data := corrupt()
		data[8], data[9], data[10], data[11] = 0, 0, 0, 0
		_, err := Decode(data)
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})

	t.Run("truncated payload", func(t *testing.T) {
		_, err := Decode(valid[:len(valid)-10])
		require.ErrorIs(t, err, errs.ErrInvalidPayload)
	})

	t.Run("trailing garbage", func(t *testing.T) {
		_, err := Decode(append(corrupt(), 0xAB))
		require.ErrorIs(t, err, errs.ErrInvalidPayload)
	})

	t.Run("channel name does not match its ID", func(t *testing.T) {
		data := corrupt()
		// first name byte sits right after the five index entries
		data[headerSize+5*indexEntrySize] = 'z'
		_, err := Decode(data)
		require.ErrorIs(t, err, errs.ErrInvalidPayload)
	})
}
