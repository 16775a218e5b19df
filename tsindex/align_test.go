package tsindex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mtgeo/mtseries/errs"
)

func mustIndex(t *testing.T, start time.Time, rate float64, n int) *TimeIndex {
	t.Helper()
	ix, err := New(start, rate, n)
	require.NoError(t, err)

	return ix
}

func TestAlign_NoAxes(t *testing.T) {
	_, err := Align(AlignUnion)
	require.ErrorIs(t, err, errs.ErrEmptyTimeIndex)
}

func TestAlign_Union(t *testing.T) {
	a := mustIndex(t, testStart, 8, 64)
	b := mustIndex(t, testStart.Add(2*time.Second), 8, 64)

	joint, err := Align(AlignUnion, a, b)
	require.NoError(t, err)
	require.True(t, joint.Start().Equal(a.Start()), "union starts at the earliest start")
	require.True(t, joint.End().Equal(b.End()), "union ends at the latest end")
	require.Equal(t, 80, joint.Len(), "64 points plus 16 points of offset")
}

func TestAlign_Intersection(t *testing.T) {
	a := mustIndex(t, testStart, 8, 64)
	b := mustIndex(t, testStart.Add(2*time.Second), 8, 64)

	joint, err := Align(AlignIntersection, a, b)
	require.NoError(t, err)
	require.True(t, joint.Start().Equal(b.Start()))
	require.True(t, joint.End().Equal(a.End()))
	require.Equal(t, 48, joint.Len())

	t.Run("disjoint spans", func(t *testing.T) {
		far := mustIndex(t, testStart.Add(time.Hour), 8, 64)
		_, err := Align(AlignIntersection, a, far)
		require.ErrorIs(t, err, errs.ErrEmptyTimeIndex)
	})
}

func TestAlign_LeftRight(t *testing.T) {
	a := mustIndex(t, testStart, 8, 64)
	b := mustIndex(t, testStart.Add(2*time.Second), 8, 32)

	joint, err := Align(AlignLeft, a, b)
	require.NoError(t, err)
	require.True(t, joint.Equal(a))

	joint, err = Align(AlignRight, a, b)
	require.NoError(t, err)
	require.True(t, joint.Equal(b))
}

func TestAlign_Exact(t *testing.T) {
	a := mustIndex(t, testStart, 8, 64)
	b := mustIndex(t, testStart, 8, 64)

	joint, err := Align(AlignExact, a, b)
	require.NoError(t, err)
	require.True(t, joint.Equal(a))

	c := mustIndex(t, testStart.Add(time.Second), 8, 64)
	_, err = Align(AlignExact, a, c)
	require.ErrorIs(t, err, errs.ErrExactAlign)
}

func TestAlign_Override(t *testing.T) {
	a := mustIndex(t, testStart, 8, 64)
	b := mustIndex(t, testStart.Add(time.Second), 8, 64)

	joint, err := Align(AlignOverride, a, b)
	require.NoError(t, err)
	require.True(t, joint.Equal(a), "override adopts the first axis")

	c := mustIndex(t, testStart, 8, 32)
	_, err = Align(AlignOverride, a, c)
	require.ErrorIs(t, err, errs.ErrOverrideSize)
}

func TestPolicy_String(t *testing.T) {
	for policy, want := range map[Policy]string{
		AlignUnion:        "union",
		AlignIntersection: "intersection",
		AlignLeft:         "left",
		AlignRight:        "right",
		AlignExact:        "exact",
		AlignOverride:     "override",
		Policy(99):        "unknown",
	} {
		require.Equal(t, want, policy.String())
	}
}
