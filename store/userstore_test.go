package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"playmateserver/models"
	"playmateserver/persist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestUserStore(t *testing.T) *UserStore {
	t.Helper()
	sink := persist.NewFileSink(filepath.Join(t.TempDir(), "users.json"))
	return NewUserStore(sink, zap.NewNop())
}

func TestRegisterAllocatesSixDigitID(t *testing.T) {
	s := newTestUserStore(t)

	for i := 0; i < 100; i++ {
		u, err := s.Register(&models.User{
			Email:    fmt.Sprintf("player%d@example.com", i),
			Nickname: fmt.Sprintf("player%d", i),
		})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, u.ID, UserIDMin)
		assert.LessOrEqual(t, u.ID, UserIDMax)
		assert.True(t, u.IsActive)
		assert.Equal(t, 5.0, u.MannerScore)
	}
	assert.Equal(t, 100, s.Count())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestUserStore(t)

	_, err := s.Register(&models.User{Email: "a@example.com", Nickname: "a"})
	require.NoError(t, err)
	_, err = s.Register(&models.User{Email: "a@example.com", Nickname: "b"})
	assert.ErrorIs(t, err, models.ErrEmailExists)
}

func TestAllocateIDExhaustion(t *testing.T) {
	if testing.Short() {
		t.Skip("fills the whole ID namespace")
	}
	s := newTestUserStore(t)
	for id := UserIDMin; id <= UserIDMax; id++ {
		s.users[id] = &models.User{ID: id}
	}

	_, err := s.Register(&models.User{Email: "late@example.com"})
	assert.ErrorIs(t, err, models.ErrIdentitySpaceExhausted)
}

func TestAllocateIDFallbackScan(t *testing.T) {
	if testing.Short() {
		t.Skip("fills the whole ID namespace")
	}
	s := newTestUserStore(t)
	for id := UserIDMin; id <= UserIDMax; id++ {
		s.users[id] = &models.User{ID: id}
	}
	// one hole: random draws will almost surely miss it, the scan must not
	delete(s.users, 500000)

	u, err := s.Register(&models.User{Email: "lucky@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 500000, u.ID)
}

func TestUpdateReindexesEmail(t *testing.T) {
	s := newTestUserStore(t)
	u, err := s.Register(&models.User{Email: "old@example.com", Nickname: "n"})
	require.NoError(t, err)

	_, err = s.Update(u.ID, func(u *models.User) error {
		u.Email = "new@example.com"
		return nil
	})
	require.NoError(t, err)

	_, err = s.GetByEmail("old@example.com")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
	got, err := s.GetByEmail("new@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestDeactivateHidesFromSearch(t *testing.T) {
	s := newTestUserStore(t)
	u, err := s.Register(&models.User{Email: "a@example.com", Nickname: "smasher"})
	require.NoError(t, err)

	assert.Len(t, s.Search("smash", 10), 1)
	require.NoError(t, s.Deactivate(u.ID))
	assert.Empty(t, s.Search("smash", 10))

	// the record itself stays so the ID is never reused
	got, err := s.GetByID(u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	s := newTestUserStore(t)
	_, err := s.Register(&models.User{Email: "a@example.com", Nickname: "NightOwl"})
	require.NoError(t, err)
	_, err = s.Register(&models.User{Email: "b@example.com", Nickname: "early bird"})
	require.NoError(t, err)

	assert.Len(t, s.Search("owl", 10), 1)
	assert.Len(t, s.Search("BIRD", 10), 1)
	assert.Len(t, s.Search("", 1), 1) // limit applies
}

func TestFollowUnfollow(t *testing.T) {
	s := newTestUserStore(t)
	a, err := s.Register(&models.User{Email: "a@example.com", Nickname: "a"})
	require.NoError(t, err)
	b, err := s.Register(&models.User{Email: "b@example.com", Nickname: "b"})
	require.NoError(t, err)

	require.NoError(t, s.Follow(a.ID, b.ID))
	require.NoError(t, s.Follow(a.ID, b.ID)) // idempotent

	gotA, _ := s.GetByID(a.ID)
	gotB, _ := s.GetByID(b.ID)
	assert.Equal(t, []int{b.ID}, gotA.FollowingIDs)
	assert.Equal(t, []int{a.ID}, gotB.FollowerIDs)

	require.NoError(t, s.Unfollow(a.ID, b.ID))
	gotA, _ = s.GetByID(a.ID)
	gotB, _ = s.GetByID(b.ID)
	assert.Empty(t, gotA.FollowingIDs)
	assert.Empty(t, gotB.FollowerIDs)
}

func TestApplyReviewRunningAverage(t *testing.T) {
	s := newTestUserStore(t)
	u, err := s.Register(&models.User{Email: "a@example.com", Nickname: "a"})
	require.NoError(t, err)

	// the first real rating replaces the default score
	require.NoError(t, s.ApplyReview(u.ID, 4))
	got, _ := s.GetByID(u.ID)
	assert.InDelta(t, 4.0, got.MannerScore, 0.001)
	assert.Equal(t, 1, got.ReviewCount)

	require.NoError(t, s.ApplyReview(u.ID, 2))
	got, _ = s.GetByID(u.ID)
	assert.InDelta(t, 3.0, got.MannerScore, 0.001)
	assert.Equal(t, 2, got.ReviewCount)
}

func TestUserSnapshotRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")
	s := NewUserStore(persist.NewFileSink(path), zap.NewNop())

	u, err := s.Register(&models.User{Email: "a@example.com", Password: "hashed", Nickname: "a"})
	require.NoError(t, err)
	require.NoError(t, s.Flush(context.Background()))

	restored := NewUserStore(persist.NewFileSink(path), zap.NewNop())
	require.NoError(t, restored.Load(context.Background()))

	got, err := restored.GetByEmail("a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	// the hash must survive the roundtrip or nobody can log in after a restart
	assert.Equal(t, "hashed", got.Password)
}

// A user copy handed to a caller must not alias the live record:
// Unfollow shifts the follow slices in place while handlers serialize
// earlier copies outside the store lock.
func TestUserCopyIsIndependentOfLiveRecord(t *testing.T) {
	s := newTestUserStore(t)
	a, err := s.Register(&models.User{Email: "a@example.com", Nickname: "a"})
	require.NoError(t, err)
	var others []*models.User
	for i := 0; i < 50; i++ {
		u, err := s.Register(&models.User{Email: fmt.Sprintf("u%d@example.com", i), Nickname: "u"})
		require.NoError(t, err)
		require.NoError(t, s.Follow(a.ID, u.ID))
		others = append(others, u)
	}

	held, err := s.GetByID(a.ID)
	require.NoError(t, err)
	require.Len(t, held.FollowingIDs, 50)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, u := range others {
			assert.NoError(t, s.Unfollow(a.ID, u.ID))
		}
	}()
	for i := 0; i < 200; i++ {
		_, err := json.Marshal(held)
		assert.NoError(t, err)
	}
	<-done

	assert.Len(t, held.FollowingIDs, 50)
	got, err := s.GetByID(a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.FollowingIDs)
}
