package database

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pathakanu/chatmemo/internal/config"
	"github.com/pathakanu/chatmemo/internal/model"
)

func memoryDSN(t *testing.T) string {
	name := strings.ReplaceAll(t.Name(), "/", "_")
	return fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_fk=1", name, time.Now().UnixNano())
}

func newTestSQLStore(t *testing.T) *SQLStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(memoryDSN(t)), &gorm.Config{})
	require.NoError(t, err, "open sqlite memory")
	store, err := NewSQLStore(db)
	require.NoError(t, err, "migrate")
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func TestSQLStore(t *testing.T) {
	t.Parallel()
	store := newTestSQLStore(t)
	runStoreTests(t, store, func(u *model.User, g *model.Group) {
		require.NoError(t, store.DB().Create(u).Error)
		require.NoError(t, store.DB().Create(g).Error)
	})
}

func TestSQLStoreKeepsRecordsAppendOnly(t *testing.T) {
	t.Parallel()
	store := newTestSQLStore(t)
	ctx := context.Background()

	first := &model.Reminder{ID: "r1", UserIDs: []string{"u1", "u2"}, Datetime: "2024-03-11 09:00", Message: "a", Important: 1}
	require.NoError(t, store.CreateReminder(ctx, first))

	dup := &model.Reminder{ID: "r1", UserIDs: []string{"u9"}, Datetime: "2024-03-12 09:00", Message: "b", Important: 1}
	assert.Error(t, store.CreateReminder(ctx, dup))

	var stored model.Reminder
	require.NoError(t, store.DB().First(&stored, "id = ?", "r1").Error)
	assert.Equal(t, "a", stored.Message)
	assert.Equal(t, []string{"u1", "u2"}, stored.UserIDs)
}

func TestSharedOpensOnce(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	entry := logrus.NewEntry(logger)

	cfg := &config.Config{StoreBackend: config.BackendSQL, SQLitePath: memoryDSN(t)}
	first, err := Shared(context.Background(), cfg, entry)
	require.NoError(t, err)

	other := &config.Config{StoreBackend: config.BackendSQL, SQLitePath: memoryDSN(t) + "_other"}
	second, err := Shared(context.Background(), other, entry)
	require.NoError(t, err)

	assert.Same(t, first, second)
}

// runStoreTests exercises the Store contract against any backend. seed
// inserts directory entries, which the Store itself never writes.
func runStoreTests(t *testing.T, store Store, seed func(*model.User, *model.Group)) {
	ctx := context.Background()

	t.Run("CreateReminderAssignsCreatedAt", func(t *testing.T) {
		before := time.Now().Add(-time.Minute)
		r := &model.Reminder{
			ID:        "created-at",
			UserIDs:   []string{"u1", "u2", "u2"},
			Datetime:  "2030-01-01 09:00",
			Message:   "$100 for the trip tomorrow",
			Important: 1,
		}
		require.NoError(t, store.CreateReminder(ctx, r))
		assert.False(t, r.CreatedAt.IsZero())
		assert.True(t, r.CreatedAt.After(before), "created_at %s", r.CreatedAt)
	})

	t.Run("CreateReminderRejectsDuplicateID", func(t *testing.T) {
		r := &model.Reminder{ID: "dup", UserIDs: []string{"u1"}, Datetime: "2030-01-01 09:00", Message: "one", Important: 1}
		require.NoError(t, store.CreateReminder(ctx, r))
		again := &model.Reminder{ID: "dup", UserIDs: []string{"u1"}, Datetime: "2030-01-02 09:00", Message: "two", Important: 1}
		assert.Error(t, store.CreateReminder(ctx, again))
	})

	t.Run("DueReminders", func(t *testing.T) {
		for _, r := range []*model.Reminder{
			{ID: "due-2", UserIDs: []string{"u1"}, Datetime: "2024-03-10 10:00", Message: "second", Important: 1},
			{ID: "due-1", UserIDs: []string{"u1"}, Datetime: "2024-03-10 08:00", Message: "first", Important: 1},
			{ID: "due-delivered", UserIDs: []string{"u1"}, Datetime: "2024-03-10 07:00", Message: "done", Important: 1},
			{ID: "due-later", UserIDs: []string{"u1"}, Datetime: "2024-03-10 14:01", Message: "later", Important: 1},
		} {
			require.NoError(t, store.CreateReminder(ctx, r))
		}
		require.NoError(t, store.RecordDelivery(ctx, &model.Delivery{ID: "d1", ReminderID: "due-delivered", Status: model.DeliverySent, Sent: 1}))

		due, err := store.DueReminders(ctx, "2024-03-10 14:00", 10)
		require.NoError(t, err)
		require.Len(t, due, 2)
		assert.Equal(t, "due-1", due[0].ID)
		assert.Equal(t, "due-2", due[1].ID)
		assert.Equal(t, []string{"u1"}, due[0].UserIDs)

		limited, err := store.DueReminders(ctx, "2024-03-10 14:00", 1)
		require.NoError(t, err)
		require.Len(t, limited, 1)
		assert.Equal(t, "due-1", limited[0].ID)
	})

	t.Run("DeliveryOncePerReminder", func(t *testing.T) {
		require.NoError(t, store.RecordDelivery(ctx, &model.Delivery{ID: "once-1", ReminderID: "once", Status: model.DeliverySent}))
		assert.Error(t, store.RecordDelivery(ctx, &model.Delivery{ID: "once-2", ReminderID: "once", Status: model.DeliveryFailed}))
	})

	t.Run("Directory", func(t *testing.T) {
		seed(
			&model.User{ID: "alice", Name: "Alice", FCMToken: "tok-a"},
			&model.Group{ID: "g1", Name: "Family", Members: []string{"alice", "bob"}},
		)

		user, err := store.GetUser(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "Alice", user.Name)
		assert.Equal(t, "tok-a", user.FCMToken)

		group, err := store.GetGroup(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, "Family", group.Name)
		assert.Equal(t, []string{"alice", "bob"}, group.Members)

		_, err = store.GetUser(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.GetGroup(ctx, "nowhere")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
