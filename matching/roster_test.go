package matching

import (
	"testing"

	"playmateserver/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySelfRejected(t *testing.T) {
	m := newTestMatching()

	err := Apply(m, m.HostID())
	assert.ErrorIs(t, err, models.ErrSelfApplication)
	assert.Empty(t, m.AppliedUserIDs)
}

func TestApplyTwiceRejected(t *testing.T) {
	m := newTestMatching()

	require.NoError(t, Apply(m, 100002))
	assert.ErrorIs(t, Apply(m, 100002), models.ErrAlreadyApplied)
	assert.Equal(t, []int{100002}, m.AppliedUserIDs)
}

func TestApplyAfterConfirmedMembershipRejected(t *testing.T) {
	m := newTestMatching()
	m.Status = models.StatusRecruiting
	m.ConfirmedUserIDs = []int{100002}

	assert.ErrorIs(t, Apply(m, 100002), models.ErrAlreadyApplied)
}

func TestApplyCapacity(t *testing.T) {
	m := newTestMatching()
	m.MaleRecruitCount = 1
	m.FemaleRecruitCount = 1

	require.NoError(t, Apply(m, 100002))
	require.NoError(t, Apply(m, 100003))
	assert.ErrorIs(t, Apply(m, 100004), models.ErrMatchFull)
	assert.Equal(t, 2, m.RosterSize())
}

func TestZeroCapacityMeansUnlimited(t *testing.T) {
	m := newTestMatching()

	for id := 100002; id < 100012; id++ {
		require.NoError(t, Apply(m, id))
	}
	assert.Equal(t, 10, m.RosterSize())
}

func TestRostersStayDisjoint(t *testing.T) {
	m := newTestMatching()
	require.NoError(t, Apply(m, 100002))
	require.NoError(t, Apply(m, 100003))
	require.NoError(t, Confirm(m, m.HostID()))

	seen := map[int]bool{}
	for _, id := range m.AppliedUserIDs {
		assert.False(t, seen[id])
		seen[id] = true
	}
	for _, id := range m.ConfirmedUserIDs {
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestLeaveFromApplied(t *testing.T) {
	m := newTestMatching()
	require.NoError(t, Apply(m, 100002))
	require.NoError(t, Apply(m, 100003))

	require.NoError(t, Leave(m, 100002))
	assert.Equal(t, []int{100003}, m.AppliedUserIDs)
}

func TestLeaveFromConfirmed(t *testing.T) {
	m := newTestMatching()
	require.NoError(t, Apply(m, 100002))
	require.NoError(t, Confirm(m, m.HostID()))

	require.NoError(t, Leave(m, 100002))
	assert.Empty(t, m.ConfirmedUserIDs)
	// status is unaffected, the match just plays one short
	assert.Equal(t, models.StatusConfirmed, m.Status)
}

func TestLeaveNonParticipantRejected(t *testing.T) {
	m := newTestMatching()

	assert.ErrorIs(t, Leave(m, 100002), models.ErrNotAParticipant)
}

func TestLeaveReopensCapacity(t *testing.T) {
	m := newTestMatching()
	m.MaleRecruitCount = 1

	require.NoError(t, Apply(m, 100002))
	assert.ErrorIs(t, Apply(m, 100003), models.ErrMatchFull)

	require.NoError(t, Leave(m, 100002))
	assert.NoError(t, Apply(m, 100003))
}
