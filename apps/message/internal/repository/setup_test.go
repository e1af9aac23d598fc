package repository

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"MarketServer/config"
	"MarketServer/model"
	"MarketServer/pkg/database"
	"MarketServer/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var repoTestOnce sync.Once

func initRepoTestLogger() {
	repoTestOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

// allModels 迁移顺序由 gorm 按依赖决定
var allModels = []interface{}{
	&model.User{},
	&model.UserProfile{},
	&model.Thread{},
	&model.ThreadParticipant{},
	&model.Message{},
	&model.ThreadRead{},
	&model.MessageFlag{},
}

// newTestDB 每个测试独立的内存 SQLite，单连接保证同一个库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	initRepoTestLogger()

	db, err := database.Build(config.DatabaseConfig{
		Driver:        "sqlite",
		DSN:           "file::memory:?_pragma=foreign_keys(1)",
		MaxOpenConns:  1,
		SlowThreshold: time.Second,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, allModels...))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// seedUsers 按 id 创建用户，用户名 user{id}
func seedUsers(t *testing.T, db *gorm.DB, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		user := model.User{
			Id:         id,
			Username:   "user" + itoa(id),
			IsActive:   true,
			DateJoined: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Profile:    &model.UserProfile{UserId: id, Status: "Member"},
		}
		require.NoError(t, db.Create(&user).Error)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// fixedClock 每次调用前进 1 秒
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := cur
		cur = cur.Add(time.Second)
		return t
	}
}

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
