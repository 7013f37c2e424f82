package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"playmateserver/matching"
	"playmateserver/models"
	"playmateserver/persist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMatchStore(t *testing.T) *MatchStore {
	t.Helper()
	sink := persist.NewFileSink(filepath.Join(t.TempDir(), "matchings.json"))
	return NewMatchStore(sink, zap.NewNop())
}

func testHost() models.HostProfile {
	return models.HostProfile{ID: 100001, Nickname: "host"}
}

func TestCreateAllocatesUniqueIDs(t *testing.T) {
	s := newTestMatchStore(t)

	seen := map[int64]bool{}
	for i := 0; i < 50; i++ {
		m := s.Create(testHost(), nil)
		assert.False(t, seen[m.ID], "duplicate id %d", m.ID)
		seen[m.ID] = true
	}
	assert.Equal(t, 50, s.Len())
}

func TestGetReturnsCopy(t *testing.T) {
	s := newTestMatchStore(t)
	created := s.Create(testHost(), nil)

	got, err := s.Get(created.ID)
	require.NoError(t, err)
	got.AppliedUserIDs = append(got.AppliedUserIDs, 100002)

	again, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.Empty(t, again.AppliedUserIDs)
}

func TestGetUnknownID(t *testing.T) {
	s := newTestMatchStore(t)

	_, err := s.Get(42)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateFailureLeavesRecordUntouched(t *testing.T) {
	s := newTestMatchStore(t)
	created := s.Create(testHost(), nil)

	_, err := s.Update(created.ID, func(m *models.Matching) error {
		return matching.Confirm(m, 999999) // not the host
	})
	assert.ErrorIs(t, err, models.ErrNotHost)

	m, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRecruiting, m.Status)
}

func TestDeleteSemantics(t *testing.T) {
	s := newTestMatchStore(t)
	created := s.Create(testHost(), nil)

	assert.ErrorIs(t, s.Delete(created.ID, 999999), models.ErrNotHost)
	require.NoError(t, s.Delete(created.ID, testHost().ID))
	assert.ErrorIs(t, s.Delete(created.ID, testHost().ID), models.ErrNotFound)
	assert.ErrorIs(t, s.Delete(42, testHost().ID), models.ErrNotFound)
}

func TestListForUser(t *testing.T) {
	s := newTestMatchStore(t)
	hosted := s.Create(testHost(), nil)
	other := s.Create(models.HostProfile{ID: 100009}, nil)
	_, err := s.Update(other.ID, func(m *models.Matching) error {
		return matching.Apply(m, 100001)
	})
	require.NoError(t, err)
	s.Create(models.HostProfile{ID: 100010}, nil) // unrelated

	mine := s.ListForUser(100001)
	require.Len(t, mine, 2)
	ids := []int64{mine[0].ID, mine[1].ID}
	assert.Contains(t, ids, hosted.ID)
	assert.Contains(t, ids, other.ID)
}

func TestSnapshotRoundtrip(t *testing.T) {
	dir := t.TempDir()
	sink := persist.NewFileSink(filepath.Join(dir, "matchings.json"))
	s := NewMatchStore(sink, zap.NewNop())

	created := s.Create(testHost(), func(m *models.Matching) {
		m.CourtName = "riverside court"
		m.MaleRecruitCount = 2
	})
	_, err := s.Update(created.ID, func(m *models.Matching) error {
		return matching.Apply(m, 100002)
	})
	require.NoError(t, err)
	require.NoError(t, s.Flush(context.Background()))

	restored := NewMatchStore(persist.NewFileSink(filepath.Join(dir, "matchings.json")), zap.NewNop())
	require.NoError(t, restored.Load(context.Background()))

	m, err := restored.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "riverside court", m.CourtName)
	assert.Equal(t, []int{100002}, m.AppliedUserIDs)
	assert.Equal(t, models.StatusRecruiting, m.Status)
}

func TestConcurrentApplyRespectsCapacity(t *testing.T) {
	s := newTestMatchStore(t)
	created := s.Create(testHost(), func(m *models.Matching) {
		m.MaleRecruitCount = 2
		m.FemaleRecruitCount = 1
	})

	const applicants = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	var fullErrs int
	for i := 0; i < applicants; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()
			_, err := s.Update(created.ID, func(m *models.Matching) error {
				return matching.Apply(m, userID)
			})
			if err != nil {
				mu.Lock()
				fullErrs++
				mu.Unlock()
				assert.ErrorIs(t, err, models.ErrMatchFull)
			}
		}(200000 + i)
	}
	wg.Wait()

	m, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, m.RosterSize())
	assert.Equal(t, applicants-3, fullErrs)
}

func TestConcurrentDuplicateApply(t *testing.T) {
	s := newTestMatchStore(t)
	created := s.Create(testHost(), nil)

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Update(created.ID, func(m *models.Matching) error {
				return matching.Apply(m, 100002)
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, dup := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, models.ErrAlreadyApplied)
			dup++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, dup)

	m, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{100002}, m.AppliedUserIDs)
}

func TestCancelStaleRecruiting(t *testing.T) {
	s := newTestMatchStore(t)

	stale := s.Create(testHost(), func(m *models.Matching) {
		m.Date = time.Now().Add(-48 * time.Hour)
	})
	fresh := s.Create(testHost(), func(m *models.Matching) {
		m.Date = time.Now().Add(24 * time.Hour)
	})
	confirmed := s.Create(testHost(), func(m *models.Matching) {
		m.Date = time.Now().Add(-48 * time.Hour)
	})
	_, err := s.Update(confirmed.ID, func(m *models.Matching) error {
		return matching.Confirm(m, testHost().ID)
	})
	require.NoError(t, err)

	n := s.CancelStaleRecruiting(24 * time.Hour)
	assert.Equal(t, 1, n)

	m, _ := s.Get(stale.ID)
	assert.Equal(t, models.StatusCancelled, m.Status)
	m, _ = s.Get(fresh.ID)
	assert.Equal(t, models.StatusRecruiting, m.Status)
	m, _ = s.Get(confirmed.ID)
	assert.Equal(t, models.StatusConfirmed, m.Status)
}
