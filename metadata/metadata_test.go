package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mtgeo/mtseries/errs"
)

func TestParseChannelKind(t *testing.T) {
	for name, want := range map[string]ChannelKind{
		"electric":  KindElectric,
		"Electric":  KindElectric,
		"MAGNETIC":  KindMagnetic,
		"auxiliary": KindAuxiliary,
	} {
		kind, err := ParseChannelKind(name)
		require.NoError(t, err)
		require.Equal(t, want, kind)
	}

	_, err := ParseChannelKind("temperature")
	require.ErrorIs(t, err, errs.ErrInvalidChannelKind)
}

func TestChannelKind_ValidComponent(t *testing.T) {
	cases := []struct {
		kind      ChannelKind
		component string
		want      bool
	}{
		{KindElectric, "ex", true},
		{KindElectric, "Ey", true},
		{KindElectric, "hx", false},
		{KindElectric, "", false},
		{KindMagnetic, "hx", true},
		{KindMagnetic, "bz", true},
		{KindMagnetic, "ex", false},
		{KindAuxiliary, "temperature", true},
		{KindAuxiliary, "ex", false},
		{KindAuxiliary, "hx", false},
		{KindAuxiliary, "battery", false}, // "b" collides with magnetic
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, tc.kind.ValidComponent(tc.component),
			"%s / %q", tc.kind, tc.component)
	}
}

func TestKindForComponent(t *testing.T) {
	// exchange-format rules: q is electric, f is magnetic
	for component, want := range map[string]ChannelKind{
		"ex":          KindElectric,
		"q1":          KindElectric,
		"hx":          KindMagnetic,
		"bz":          KindMagnetic,
		"fn":          KindMagnetic,
		"temperature": KindAuxiliary,
		"":            KindAuxiliary,
	} {
		require.Equal(t, want, KindForComponent(component), "component %q", component)
	}

	// recorded-channel rules: f and q are auxiliary
	require.Equal(t, KindAuxiliary, KindForRecordedComponent("fn"))
	require.Equal(t, KindAuxiliary, KindForRecordedComponent("q1"))
	require.Equal(t, KindElectric, KindForRecordedComponent("ex"))
	require.Equal(t, KindMagnetic, KindForRecordedComponent("bz"))
}

func TestParseTime_Formats(t *testing.T) {
	want := time.Date(2015, 1, 8, 19, 49, 18, 0, time.UTC)

	for _, s := range []string{
		"2015-01-08T19:49:18+00:00",
		"2015-01-08T19:49:18Z",
		"2015-01-08T19:49:18",
		"2015-01-08 19:49:18",
	} {
		got, err := ParseTime(s)
		require.NoError(t, err, s)
		require.True(t, got.Equal(want), "%s parsed to %s", s, got)
	}

	_, err := ParseTime("not a time")
	require.Error(t, err)
}

func TestFormatTime(t *testing.T) {
	require.Equal(t, "2015-01-08T19:49:18+00:00",
		FormatTime(time.Date(2015, 1, 8, 19, 49, 18, 0, time.UTC)))
	require.Equal(t, "2015-01-08T19:57:49.875+00:00",
		FormatTime(time.Date(2015, 1, 8, 19, 57, 49, 875000000, time.UTC)))
	require.Equal(t, "", FormatTime(time.Time{}))
}

func TestStation_MapRoundTrip(t *testing.T) {
	s := &Station{
		ID:               "MT001",
		FDSN:             FDSN{ID: "MT001", Network: "EM"},
		Location:         Location{Latitude: 40.5, Longitude: -112.3, Elevation: 1200},
		ChannelsRecorded: []string{"ex", "ey"},
	}
	s.TimePeriod.Start = time.Date(2015, 1, 8, 19, 49, 18, 0, time.UTC)

	out := NewStation()
	require.NoError(t, out.FromMap(s.ToMap()))
	require.Equal(t, s, out)

	v, err := out.AttributeByPath("fdsn.network")
	require.NoError(t, err)
	require.Equal(t, "EM", v)

	_, err = out.AttributeByPath("no.such.path")
	require.Error(t, err)
}

func TestStation_FromWrappedMap(t *testing.T) {
	s := NewStation()
	require.NoError(t, s.FromMap(map[string]any{
		"Station": map[string]any{"id": "mt01"},
	}))
	require.Equal(t, "mt01", s.ID)
}

func TestRun_MapRoundTrip(t *testing.T) {
	r := &Run{
		ID:                       "MT001a",
		DataType:                 "BBMT",
		SampleRate:               8,
		ChannelsRecordedElectric: []string{"ex", "ey"},
		ChannelsRecordedMagnetic: []string{"hx", "hy", "hz"},
	}
	r.TimePeriod.Start = time.Date(2015, 1, 8, 19, 49, 18, 0, time.UTC)
	r.TimePeriod.End = time.Date(2015, 1, 8, 19, 57, 49, 875000000, time.UTC)

	out := NewRun()
	require.NoError(t, out.FromMap(r.ToMap()))
	require.Equal(t, r, out)

	t.Run("unset lists stay nil", func(t *testing.T) {
		require.Nil(t, out.ChannelsRecordedAuxiliary)

		empty := NewRun()
		require.NoError(t, empty.FromMap(map[string]any{
			"channels_recorded_electric":  []string{},
			"channels_recorded_magnetic":  []any{},
			"channels_recorded_auxiliary": nil,
		}))
		require.Equal(t, NewRun(), empty)
	})
}

func TestRun_FromWrappedMap(t *testing.T) {
	r := NewRun()
	require.NoError(t, r.FromMap(map[string]any{
		"run": map[string]any{"id": "0001", "sample_rate": 8},
	}))
	require.Equal(t, "0001", r.ID)
	require.Equal(t, 8.0, r.SampleRate)
}

func TestChannelRecord_Kinds(t *testing.T) {
	require.Equal(t, KindElectric, NewChannelRecord(KindElectric).Kind())
	require.Equal(t, KindMagnetic, NewChannelRecord(KindMagnetic).Kind())
	require.Equal(t, KindAuxiliary, NewChannelRecord(KindAuxiliary).Kind())
}

func TestElectric_MapRoundTrip(t *testing.T) {
	e := &Electric{DipoleLength: 55}
	e.Component = "ex"
	e.SampleRate = 8
	e.Units = "counts"
	e.ChannelNumber = 1

	m := e.ToMap()
	require.Equal(t, "electric", m["type"])

	out := &Electric{}
	require.NoError(t, out.FromMap(m))
	require.Equal(t, e, out)
}

func TestElectric_FromWrappedMap(t *testing.T) {
	e := &Electric{}
	require.NoError(t, e.FromMap(map[string]any{
		"electric": map[string]any{
			"component":         "ex",
			"sample_rate":       8,
			"time_period.start": "2015-01-08T19:49:18+00:00",
		},
	}))
	require.Equal(t, "ex", e.Component)
	require.Equal(t, 8.0, e.SampleRate)
	require.Equal(t, 2015, e.TimePeriod.Start.Year())
}

func TestMagnetic_MapRoundTrip(t *testing.T) {
	mg := &Magnetic{SensorID: "2274", SensorManufacturer: "Barry"}
	mg.Component = "hx"
	mg.SampleRate = 8

	out := &Magnetic{}
	require.NoError(t, out.FromMap(mg.ToMap()))
	require.Equal(t, mg, out)
}

func TestChannelRecord_Clone(t *testing.T) {
	e := &Electric{DipoleLength: 55}
	e.Component = "ex"

	c := e.Clone()
	c.Base().Component = "ey"
	require.Equal(t, "ex", e.Component, "clone is independent")
}

func TestChannelResponse(t *testing.T) {
	pz := &PoleZeroFilter{
		Name:     "instrument_response",
		UnitsIn:  "volts",
		UnitsOut: "nanotesla",
		Poles: []complex128{
			complex(-6.283185, 10.882477),
			complex(-6.283185, -10.882477),
			complex(-12.566371, 0),
		},
		NormalizationFactor: 18244400,
	}

	cr := NewChannelResponse(pz)
	require.Equal(t, []string{"instrument_response"}, cr.Names())

	clone := cr.Clone()
	clone.Filters[0].Poles[0] = complex(1, 1)
	require.Equal(t, complex(-6.283185, 10.882477), cr.Filters[0].Poles[0],
		"clone is independent")
}
