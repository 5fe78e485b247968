package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yunuszade97-del/treadsbot/config"
	"github.com/yunuszade97-del/treadsbot/internal/model"
	"github.com/yunuszade97-del/treadsbot/internal/repository"
	"github.com/yunuszade97-del/treadsbot/internal/testutil"
)

const adminTelegramID int64 = 999000

func usageTestConfig() *config.Config {
	return &config.Config{
		Telegram: config.TelegramConfig{AdminIDs: []int64{adminTelegramID}},
		Limits: config.LimitsConfig{
			DailyFreeLimit:  5,
			MaxProfiles:     5,
			MaxContextPairs: 10,
		},
	}
}

func setupUsageService(t *testing.T) (*UsageService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	userRepo := repository.NewUserRepository(db)
	service := NewUsageService(userRepo, usageTestConfig())

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return service, db, cleanup
}

func TestUsageService_GetOrCreateUser_Defaults(t *testing.T) {
	service, _, cleanup := setupUsageService(t)
	defer cleanup()

	user, err := service.GetOrCreateUser(111222)
	require.NoError(t, err)
	assert.Equal(t, int64(111222), user.TelegramID)
	assert.False(t, user.IsPro)
	assert.Equal(t, 0, user.RequestsToday)
	assert.Equal(t, service.Today(), DateOf(user.LastRequestDate))
}

func TestUsageService_CheckAndTrack_FreeTierCap(t *testing.T) {
	service, db, cleanup := setupUsageService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	// 免费额度内连续 5 次放行
	for i := 1; i <= 5; i++ {
		allowed, err := service.CheckAndTrack(user.TelegramID)
		require.NoError(t, err)
		assert.True(t, allowed, "call %d", i)
	}

	var stored model.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, 5, stored.RequestsToday)

	// 第 6 次拒绝，计数器不再变化
	allowed, err := service.CheckAndTrack(user.TelegramID)
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, 5, stored.RequestsToday)
}

func TestUsageService_CheckAndTrack_DayRollover(t *testing.T) {
	service, db, cleanup := setupUsageService(t)
	defer cleanup()

	yesterday := service.Today().AddDate(0, 0, -1)
	user := testutil.TestUser(t, db,
		testutil.WithRequestsToday(5),
		testutil.WithLastRequestDate(yesterday),
	)

	// 昨天的计数器过期：先归零再放行
	allowed, err := service.CheckAndTrack(user.TelegramID)
	require.NoError(t, err)
	assert.True(t, allowed)

	var stored model.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, 1, stored.RequestsToday)
	// 数据库往返后时区可能改变，按时刻比较日期
	assert.True(t, service.Today().Equal(DateOf(stored.LastRequestDate)))
}

func TestUsageService_CheckAndTrack_DayRolloverViaClock(t *testing.T) {
	service, db, cleanup := setupUsageService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	for i := 0; i < 6; i++ {
		_, err := service.CheckAndTrack(user.TelegramID)
		require.NoError(t, err)
	}
	allowed, err := service.CheckAndTrack(user.TelegramID)
	require.NoError(t, err)
	require.False(t, allowed)

	// 时钟拨到第二天，额度重新放出
	service.SetClock(func() time.Time {
		return time.Now().AddDate(0, 0, 1)
	})

	allowed, err = service.CheckAndTrack(user.TelegramID)
	require.NoError(t, err)
	assert.True(t, allowed)

	var stored model.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, 1, stored.RequestsToday)
}

func TestUsageService_CheckAndTrack_ProUnlimited(t *testing.T) {
	service, db, cleanup := setupUsageService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithPro())

	// 远超免费额度仍然放行
	for i := 1; i <= 55; i++ {
		allowed, err := service.CheckAndTrack(user.TelegramID)
		require.NoError(t, err)
		require.True(t, allowed, "call %d", i)
	}

	// 放行但仍计数，便于观测
	var stored model.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, 55, stored.RequestsToday)
}

func TestUsageService_CheckAndTrack_AdminBypass(t *testing.T) {
	service, db, cleanup := setupUsageService(t)
	defer cleanup()

	user := testutil.TestUser(t, db,
		testutil.WithTelegramID(adminTelegramID),
		testutil.WithRequestsToday(100),
	)

	// 管理员无视计数器当前值，且无上限
	allowed, err := service.CheckAndTrack(adminTelegramID)
	require.NoError(t, err)
	assert.True(t, allowed)

	var stored model.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, 101, stored.RequestsToday)
}

func TestUsageService_CheckAndTrack_LazyCreation(t *testing.T) {
	service, db, cleanup := setupUsageService(t)
	defer cleanup()

	// 未注册用户首次请求即自动建档并放行
	allowed, err := service.CheckAndTrack(333444)
	require.NoError(t, err)
	assert.True(t, allowed)

	var stored model.User
	require.NoError(t, db.Where("telegram_id = ?", int64(333444)).First(&stored).Error)
	assert.Equal(t, 1, stored.RequestsToday)
}

func TestUsageService_Status_Free(t *testing.T) {
	service, db, cleanup := setupUsageService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithRequestsToday(2))

	info, err := service.Status(user.TelegramID)
	require.NoError(t, err)
	assert.False(t, info.IsPro)
	assert.Equal(t, 3, info.Remaining)
	assert.Equal(t, 5, info.DailyLimit)
}

func TestUsageService_Status_Pro(t *testing.T) {
	service, db, cleanup := setupUsageService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithPro(), testutil.WithRequestsToday(42))

	info, err := service.Status(user.TelegramID)
	require.NoError(t, err)
	assert.True(t, info.IsPro)
	assert.Equal(t, UnlimitedRemaining, info.Remaining)
}

func TestUsageService_Status_StaleCounterReadsAsZero(t *testing.T) {
	service, db, cleanup := setupUsageService(t)
	defer cleanup()

	yesterday := service.Today().AddDate(0, 0, -1)
	user := testutil.TestUser(t, db,
		testutil.WithRequestsToday(5),
		testutil.WithLastRequestDate(yesterday),
	)

	// 只读查询不触发重置，但过期计数按 0 计算
	info, err := service.Status(user.TelegramID)
	require.NoError(t, err)
	assert.Equal(t, 5, info.Remaining)

	var stored model.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, 5, stored.RequestsToday)
	assert.True(t, yesterday.Equal(DateOf(stored.LastRequestDate)))
}

func TestUsageService_Status_OverLimitClampsToZero(t *testing.T) {
	service, db, cleanup := setupUsageService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithRequestsToday(7))

	info, err := service.Status(user.TelegramID)
	require.NoError(t, err)
	assert.Equal(t, 0, info.Remaining)
}

func TestApplyUsage_Privileged_NoRollover(t *testing.T) {
	today := DateOf(time.Now())
	u := &model.User{
		RequestsToday:   12,
		LastRequestDate: today.AddDate(0, 0, -3),
	}

	// 管理员分支不做跨日重置：计数器跨天累加（保持原始行为）
	admitted := ApplyUsage(u, today, true, 5)
	assert.True(t, admitted)
	assert.Equal(t, 13, u.RequestsToday)
	assert.Equal(t, today, u.LastRequestDate)
}

func TestApplyUsage_RolloverBeforeLimitCheck(t *testing.T) {
	today := DateOf(time.Now())
	u := &model.User{
		RequestsToday:   5,
		LastRequestDate: today.AddDate(0, 0, -1),
	}

	admitted := ApplyUsage(u, today, false, 5)
	assert.True(t, admitted)
	assert.Equal(t, 1, u.RequestsToday)
	assert.Equal(t, today, u.LastRequestDate)
}

func TestApplyUsage_DeniedNoMutation(t *testing.T) {
	today := DateOf(time.Now())
	u := &model.User{
		RequestsToday:   5,
		LastRequestDate: today,
	}

	admitted := ApplyUsage(u, today, false, 5)
	assert.False(t, admitted)
	assert.Equal(t, 5, u.RequestsToday)
}

func TestApplyUsage_ProCounted(t *testing.T) {
	today := DateOf(time.Now())
	u := &model.User{
		IsPro:           true,
		RequestsToday:   200,
		LastRequestDate: today,
	}

	admitted := ApplyUsage(u, today, false, 5)
	assert.True(t, admitted)
	assert.Equal(t, 201, u.RequestsToday)
}

func TestDateOf(t *testing.T) {
	ts := time.Date(2026, 3, 15, 23, 59, 58, 123, time.Local)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local), DateOf(ts))
}
