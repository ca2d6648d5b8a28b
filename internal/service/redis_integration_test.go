package service

import (
	"context"
	"edureach_backend/internal/model"
	"edureach_backend/internal/util"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestRedisSessionStore_SaveLoadDelete(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewRedisSessionStore(rdb)
	ctx := context.Background()

	now := time.Now()
	session := &model.Session{
		ID:        "sess-1",
		UserID:    1,
		Email:     "student@edureach.com",
		Name:      "Alex Johnson",
		Role:      model.Student,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, store.Save(ctx, session))

	ttl := mr.TTL(SessionKey("sess-1"))
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)

	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, session.UserID, loaded.UserID)
	assert.Equal(t, session.Email, loaded.Email)
	assert.Equal(t, model.Student, loaded.Role)

	require.NoError(t, store.Delete(ctx, "sess-1"))
	_, err = store.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestRedisSessionStore_Expiry(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewRedisSessionStore(rdb)
	ctx := context.Background()

	now := time.Now()
	err := store.Save(ctx, &model.Session{ID: "old", ExpiresAt: now.Add(-time.Minute)})
	assert.ErrorIs(t, err, util.ErrPreconditionFailed)
	assert.False(t, mr.Exists(SessionKey("old")))

	require.NoError(t, store.Save(ctx, &model.Session{ID: "short", UserID: 2, ExpiresAt: now.Add(time.Minute)}))
	mr.FastForward(2 * time.Minute)

	_, err = store.Load(ctx, "short")
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestRedisSessionStore_CorruptPayload(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewRedisSessionStore(rdb)

	require.NoError(t, mr.Set(SessionKey("bad"), "{not json"))
	_, err := store.Load(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, util.ErrSessionNotFound)
}

func TestProgressHub_RedisFanOut(t *testing.T) {
	mr, rdb := newTestRedis(t)

	// 两个实例共用同一个 redis，连接只在 instanceB 上
	instanceA := NewProgressHub(rdb)
	instanceB := NewProgressHub(rdb)
	go instanceA.Run()
	go instanceB.Run()
	defer instanceA.Stop()
	defer instanceB.Stop()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(OfflineEventsChannel)[OfflineEventsChannel] == 2
	}, 2*time.Second, 10*time.Millisecond)

	conn := dialHub(t, instanceB, 1)
	assert.Equal(t, 0, instanceA.Connections(1))

	instanceA.PushToUser(1, WSMessage{Type: EventDownloadState, Data: map[string]string{"transition": TransitionCompleted}})

	msg := readMessage(t, conn)
	assert.Equal(t, EventDownloadState, msg.Type)
	assert.Equal(t, TransitionCompleted, msg.Data.(map[string]interface{})["transition"])
}

func TestProgressHub_PublishFailureDeliversLocally(t *testing.T) {
	mr, rdb := newTestRedis(t)
	hub := NewProgressHub(rdb)
	go hub.Run()
	defer hub.Stop()

	conn := dialHub(t, hub, 3)
	mr.Close()

	hub.PushToUser(3, WSMessage{Type: EventDownloadProgress, Data: map[string]int{"progress": 70}})

	msg := readMessage(t, conn)
	assert.Equal(t, EventDownloadProgress, msg.Type)
}
