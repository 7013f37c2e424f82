package store

import (
	"context"
	"path/filepath"
	"testing"

	"playmateserver/models"
	"playmateserver/persist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCourtStore(t *testing.T) *CourtStore {
	t.Helper()
	sink := persist.NewFileSink(filepath.Join(t.TempDir(), "courts.json"))
	s := NewCourtStore(sink, zap.NewNop())
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestCourtLoadSeedsDefaults(t *testing.T) {
	s := newTestCourtStore(t)
	assert.Equal(t, 6, s.Count())

	c, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "잠실종합운동장", c.Name)
	assert.Equal(t, 12, c.CourtCount)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestCourtLoadPrefersSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courts.json")
	sink := persist.NewFileSink(path)

	first := NewCourtStore(sink, zap.NewNop())
	require.NoError(t, first.Load(context.Background()))
	require.NoError(t, first.Flush(context.Background()))

	second := NewCourtStore(sink, zap.NewNop())
	require.NoError(t, second.Load(context.Background()))
	assert.Equal(t, first.Count(), second.Count())

	got, err := second.Get(5)
	require.NoError(t, err)
	assert.Equal(t, "분당테니스장", got.Name)
	assert.Equal(t, []string{"주차장", "샤워실", "락커룸", "조명시설"}, got.Facilities)
}

func TestCourtListFilters(t *testing.T) {
	s := newTestCourtStore(t)

	all := s.List(CourtFilter{})
	assert.Len(t, all, 6)
	assert.Len(t, s.List(CourtFilter{Region: "전체"}), 6)

	seoul := s.List(CourtFilter{Region: "서울"})
	require.Len(t, seoul, 4)
	for _, c := range seoul {
		assert.Equal(t, "서울", c.Region)
	}

	songpa := s.List(CourtFilter{Region: "서울", District: "송파구"})
	assert.Len(t, songpa, 2)

	cheap := s.List(CourtFilter{MaxPrice: 20000})
	require.Len(t, cheap, 2)
	for _, c := range cheap {
		assert.LessOrEqual(t, c.PricePerHour, 20000)
	}

	showerless := false
	noShower := s.List(CourtFilter{HasShower: &showerless})
	require.Len(t, noShower, 2)
	for _, c := range noShower {
		assert.False(t, c.HasShower)
	}

	top := s.List(CourtFilter{MinRating: 4.4})
	require.Len(t, top, 2)

	byName := s.List(CourtFilter{Search: "올림픽"})
	assert.Len(t, byName, 2) // name match plus an address match
}

func TestCourtSearchMinimumLength(t *testing.T) {
	s := newTestCourtStore(t)

	assert.Empty(t, s.Search("잠"))
	assert.Empty(t, s.Search(" "))

	got := s.Search("분당")
	require.Len(t, got, 1)
	assert.Equal(t, int64(5), got[0].ID)

	// description matches too
	assert.NotEmpty(t, s.Search("대형"))
}

func TestCourtPopularOrdering(t *testing.T) {
	s := newTestCourtStore(t)

	top := s.Popular(3)
	require.Len(t, top, 3)
	assert.Equal(t, "잠실종합운동장", top[0].Name)
	assert.Equal(t, "분당테니스장", top[1].Name)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Rating, top[i].Rating)
	}
}

func TestCourtGetUnknown(t *testing.T) {
	s := newTestCourtStore(t)
	_, err := s.Get(999)
	assert.ErrorIs(t, err, models.ErrCourtNotFound)
}
