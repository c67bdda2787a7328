package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mission-workers/internal/common/errors"
	"mission-workers/internal/common/logger"
	"mission-workers/internal/models"
)

func TestCampaignDirectory_ReadThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, owner_id, title, category FROM campaigns WHERE id = \$1`).
		WithArgs("camp-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "title", "category"}).
			AddRow("camp-1", "owner-1", "Spring launch", "beauty"))

	dir := NewCampaignDirectory(db, rdb, 10*time.Minute, logger.NewTestLogger(t))

	first, err := dir.GetCampaign(context.Background(), "camp-1")
	require.NoError(t, err)
	assert.Equal(t, "owner-1", first.OwnerID)
	assert.True(t, mr.Exists(campaignKeyPrefix+"camp-1"))
	assert.Equal(t, 10*time.Minute, mr.TTL(campaignKeyPrefix+"camp-1"))

	// Served from Redis; a second database query would fail the expectations.
	second, err := dir.GetCampaign(context.Background(), "camp-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignDirectory_NotFound(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM campaigns`).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	dir := NewCampaignDirectory(db, rdb, time.Minute, logger.NewTestLogger(t))
	_, err = dir.GetCampaign(context.Background(), "nope")

	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
	assert.False(t, mr.Exists(campaignKeyPrefix+"nope"))
}

func TestCampaignDirectory_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	mr.Close()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery(`FROM campaigns`).WithArgs("camp-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "title", "category"}).
			AddRow("camp-1", "owner-1", "Spring launch", ""))

	dir := NewCampaignDirectory(db, rdb, time.Minute, logger.NewTestLogger(t))
	c, err := dir.GetCampaign(context.Background(), "camp-1")

	require.NoError(t, err)
	assert.Equal(t, "Spring launch", c.Title)
}

func TestInfluencerDirectory_ContactEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT email FROM influencers`).WithArgs("inf-1").
		WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("inf1@example.com"))
	mock.ExpectQuery(`SELECT email FROM influencers`).WithArgs("inf-2").
		WillReturnError(sql.ErrNoRows)

	dir := NewInfluencerDirectory(db)

	email, err := dir.ContactEmail(context.Background(), "inf-1")
	require.NoError(t, err)
	assert.Equal(t, "inf1@example.com", email)

	email, err = dir.ContactEmail(context.Background(), "inf-2")
	require.NoError(t, err)
	assert.Empty(t, email)
}

func testStatistics() *models.CampaignStatistics {
	return &models.CampaignStatistics{
		CampaignID:        "camp-1",
		Applications:      map[models.ApplicationStatus]int{models.ApplicationCompleted: 1},
		TotalApplications: 1,
		Submissions:       map[models.ReviewStatus]int{},
		CompletionRate:    1,
		GeneratedAt:       fixedTime,
	}
}

func TestStatsCache_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewStatsCache(rdb, time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()
	key := statsKeyPrefix + "camp-1"

	_, gen, ok := cache.Get(ctx, "camp-1")
	assert.False(t, ok)
	assert.Zero(t, gen)

	cache.Set(ctx, testStatistics(), gen)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	got, gen, ok := cache.Get(ctx, "camp-1")
	require.True(t, ok)
	assert.Zero(t, gen)
	assert.Equal(t, 1.0, got.CompletionRate)
	assert.True(t, fixedTime.Equal(got.GeneratedAt))

	cache.Invalidate(ctx, "camp-1")
	assert.False(t, mr.Exists(key))

	_, gen, ok = cache.Get(ctx, "camp-1")
	assert.False(t, ok)
	assert.Equal(t, int64(1), gen)
}

// Statistics computed before an invalidation must not land in the cache
// after it, or readers would see the old numbers for a whole TTL.
func TestStatsCache_InvalidateDuringComputeDropsSet(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewStatsCache(rdb, time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	_, readGen, ok := cache.Get(ctx, "camp-1")
	require.False(t, ok)

	cache.Invalidate(ctx, "camp-1")
	cache.Set(ctx, testStatistics(), readGen)

	assert.False(t, mr.Exists(statsKeyPrefix+"camp-1"))
	_, gen, ok := cache.Get(ctx, "camp-1")
	assert.False(t, ok)
	assert.Equal(t, readGen+1, gen)

	cache.Set(ctx, testStatistics(), gen)
	_, _, ok = cache.Get(ctx, "camp-1")
	assert.True(t, ok)
}

func TestStatsCache_ErrorsAreMisses(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cache := NewStatsCache(rdb, time.Minute, logger.NewTestLogger(t))
	keys := statsKeys("camp-1")

	mock.ExpectMGet(keys...).SetErr(redis.ErrClosed)
	mock.ExpectMGet(statsKeys("camp-2")...).SetVal([]interface{}{"{not json", "3"})
	mock.ExpectEval(bumpGeneration, keys).SetErr(redis.ErrClosed)

	_, gen, ok := cache.Get(context.Background(), "camp-1")
	assert.False(t, ok)
	assert.Equal(t, int64(-1), gen)

	// An unknown generation never writes.
	cache.Set(context.Background(), testStatistics(), gen)

	_, gen, ok = cache.Get(context.Background(), "camp-2")
	assert.False(t, ok)
	assert.Equal(t, int64(3), gen)

	cache.Invalidate(context.Background(), "camp-1")

	assert.NoError(t, mock.ExpectationsWereMet())
}
