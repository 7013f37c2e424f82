package store

import (
	"path/filepath"
	"testing"

	"playmateserver/models"
	"playmateserver/persist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestNotificationStore(t *testing.T) *NotificationStore {
	t.Helper()
	sink := persist.NewFileSink(filepath.Join(t.TempDir(), "notifications.json"))
	return NewNotificationStore(sink, zap.NewNop())
}

func TestNotifySkipsSender(t *testing.T) {
	s := newTestNotificationStore(t)

	// roster passed verbatim, sender included
	s.Notify([]int{100001, 100002, 100003}, 100001, models.NotifyMatchCancelled, "cancelled", 7)

	items, unread := s.ListFor(100001, false)
	assert.Empty(t, items)
	assert.Equal(t, 0, unread)

	items, unread = s.ListFor(100002, false)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, unread)
	assert.Equal(t, models.NotifyMatchCancelled, items[0].Type)
}

func TestMarkReadRecipientOnly(t *testing.T) {
	s := newTestNotificationStore(t)
	s.Notify([]int{100002}, 100001, models.NotifyMatchApplied, "applied", 7)

	items, _ := s.ListFor(100002, false)
	require.Len(t, items, 1)
	id := items[0].ID

	assert.ErrorIs(t, s.MarkRead(id, 100003), models.ErrNotRecipient)
	assert.ErrorIs(t, s.MarkRead(999, 100002), models.ErrNotificationNotFound)

	require.NoError(t, s.MarkRead(id, 100002))
	items, unread := s.ListFor(100002, false)
	assert.True(t, items[0].IsRead)
	assert.NotNil(t, items[0].ReadAt)
	assert.Equal(t, 0, unread)
}

func TestMarkAllRead(t *testing.T) {
	s := newTestNotificationStore(t)
	s.Notify([]int{100002}, 100001, models.NotifyMatchApplied, "a", 1)
	s.Notify([]int{100002}, 100001, models.NotifyMatchConfirmed, "b", 1)
	s.Notify([]int{100003}, 100001, models.NotifyMatchApplied, "c", 2)

	assert.Equal(t, 2, s.MarkAllRead(100002))
	assert.Equal(t, 0, s.MarkAllRead(100002))

	_, unread := s.ListFor(100002, false)
	assert.Equal(t, 0, unread)
	_, unread = s.ListFor(100003, false)
	assert.Equal(t, 1, unread)
}

func TestListForUnreadOnly(t *testing.T) {
	s := newTestNotificationStore(t)
	s.Notify([]int{100002}, 100001, models.NotifyMatchApplied, "a", 1)
	s.Notify([]int{100002}, 100001, models.NotifyMatchConfirmed, "b", 1)

	items, _ := s.ListFor(100002, false)
	require.Len(t, items, 2)
	require.NoError(t, s.MarkRead(items[0].ID, 100002))

	unreadItems, unread := s.ListFor(100002, true)
	assert.Len(t, unreadItems, 1)
	assert.Equal(t, 1, unread)
}
