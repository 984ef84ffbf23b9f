package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openlistings/collateral-workflow/internal/domain/entity"
	"github.com/openlistings/collateral-workflow/pkg/database"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	logger := zap.NewNop()
	db, err := database.New(database.Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).RunMigrations())

	return NewDB(db.DB, logger)
}

func newTestDraft(id string) *entity.Draft {
	now := time.Now().UTC().Truncate(time.Second)
	return &entity.Draft{
		ID:        id,
		ListingID: "lst_00000001",
		Status:    "pending",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestDraftRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewDraftRepository(db, zap.NewNop())
	ctx := context.Background()

	draft := newTestDraft("drf_aaaa0001")
	draft.DistributionChannels = []string{"email", "social"}
	require.NoError(t, repo.Create(ctx, draft))

	got, err := repo.GetByID(ctx, draft.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, draft.ID, got.ID)
	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, []string{"email", "social"}, got.DistributionChannels)
	assert.Nil(t, got.GeneratedAt)
}

func TestDraftRepository_GetMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewDraftRepository(db, zap.NewNop())

	got, err := repo.GetByID(context.Background(), "drf_missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDraftRepository_List(t *testing.T) {
	db := newTestDB(t)
	repo := NewDraftRepository(db, zap.NewNop())
	ctx := context.Background()

	for i, id := range []string{"drf_00000001", "drf_00000002", "drf_00000003"} {
		d := newTestDraft(id)
		d.CreatedAt = d.CreatedAt.Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.Create(ctx, d))
	}

	page, err := repo.List(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "drf_00000002", page[0].ID)
	assert.Equal(t, "drf_00000003", page[1].ID)
}

func TestDraftRepository_UpdateWhereStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewDraftRepository(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestDraft("drf_aaaa0002")))

	score := 87.5
	url := "https://cdn.example.com/drafts/drf_aaaa0002.pdf"
	generatedAt := time.Now().UTC().Truncate(time.Second)
	updated, err := repo.UpdateWhereStatus(ctx, "drf_aaaa0002", "pending", &entity.DraftPatch{
		Status:       "review",
		QualityScore: &score,
		PDFURL:       &url,
		GeneratedAt:  &generatedAt,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "review", updated.Status)
	assert.Equal(t, 87.5, updated.QualityScore)
	assert.Equal(t, url, updated.PDFURL)
	require.NotNil(t, updated.GeneratedAt)
}

func TestDraftRepository_UpdateWhereStatusMismatch(t *testing.T) {
	db := newTestDB(t)
	repo := NewDraftRepository(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestDraft("drf_aaaa0003")))

	updated, err := repo.UpdateWhereStatus(ctx, "drf_aaaa0003", "review", &entity.DraftPatch{Status: "revision"})
	require.NoError(t, err)
	assert.Nil(t, updated)

	got, err := repo.GetByID(ctx, "drf_aaaa0003")
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
}

func TestDraftRepository_UpdateClearsFailure(t *testing.T) {
	db := newTestDB(t)
	repo := NewDraftRepository(db, zap.NewNop())
	ctx := context.Background()

	draft := newTestDraft("drf_aaaa0004")
	draft.Status = "failed"
	failedAt := time.Now().UTC().Truncate(time.Second)
	draft.FailedAt = &failedAt
	draft.FailureReason = "render timeout"
	require.NoError(t, repo.Create(ctx, draft))

	// FailedAt is not part of the insert; set it through an update first.
	stamped, err := repo.UpdateWhereStatus(ctx, draft.ID, "failed", &entity.DraftPatch{FailedAt: &failedAt})
	require.NoError(t, err)
	require.NotNil(t, stamped.FailedAt)

	count := 1
	updated, err := repo.UpdateWhereStatus(ctx, draft.ID, "failed", &entity.DraftPatch{
		Status:        "generating",
		RevisionCount: &count,
		ClearFailure:  true,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "generating", updated.Status)
	assert.Equal(t, 1, updated.RevisionCount)
	assert.Nil(t, updated.FailedAt)
	assert.Empty(t, updated.FailureReason)
}

func TestHistoryRepository_AppendAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewHistoryRepository(db, zap.NewNop())
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	entries := []*entity.HistoryEntry{
		{DraftID: "drf_bbbb0001", FromStatus: "pending", ToStatus: "ready", ActorID: "sys", ActorRole: "system", Timestamp: now},
		{DraftID: "drf_bbbb0001", FromStatus: "ready", ToStatus: "generating", ActorID: "sys", ActorRole: "system", Timestamp: now.Add(time.Second)},
		{DraftID: "drf_other", FromStatus: "pending", ToStatus: "ready", ActorID: "sys", ActorRole: "system", Timestamp: now},
	}
	for _, e := range entries {
		require.NoError(t, repo.Append(ctx, e))
		assert.NotZero(t, e.ID)
	}

	got, err := repo.GetByDraftID(ctx, "drf_bbbb0001")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ready", got[0].ToStatus)
	assert.Equal(t, "generating", got[1].ToStatus)
}

func TestListingRepository_Roundtrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewListingRepository(db, zap.NewNop())
	ctx := context.Background()

	listing := &entity.ListingContext{
		ID:            "lst_cccc0001",
		Address:       "12 Harbor View Dr",
		ListingType:   "condo",
		BrokerContact: "broker@example.com",
		PhotoCount:    8,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.Create(ctx, listing))

	got, err := repo.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, listing.Address, got.Address)
	assert.Equal(t, 8, got.PhotoCount)

	missing, err := repo.GetByID(ctx, "lst_missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	db := newTestDB(t)
	drafts := NewDraftRepository(db, zap.NewNop())
	history := NewHistoryRepository(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, drafts.Create(ctx, newTestDraft("drf_dddd0001")))

	boom := errors.New("boom")
	err := db.WithTransaction(ctx, func(txCtx context.Context) error {
		updated, err := drafts.UpdateWhereStatus(txCtx, "drf_dddd0001", "pending", &entity.DraftPatch{Status: "ready"})
		require.NoError(t, err)
		require.NotNil(t, updated)

		require.NoError(t, history.Append(txCtx, &entity.HistoryEntry{
			DraftID:    "drf_dddd0001",
			FromStatus: "pending",
			ToStatus:   "ready",
			ActorID:    "sys",
			ActorRole:  "system",
			Timestamp:  time.Now(),
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := drafts.GetByID(ctx, "drf_dddd0001")
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)

	entries, err := history.GetByDraftID(ctx, "drf_dddd0001")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWithTransaction_Commit(t *testing.T) {
	db := newTestDB(t)
	drafts := NewDraftRepository(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, drafts.Create(ctx, newTestDraft("drf_dddd0002")))

	err := db.WithTransaction(ctx, func(txCtx context.Context) error {
		_, err := drafts.UpdateWhereStatus(txCtx, "drf_dddd0002", "pending", &entity.DraftPatch{Status: "ready"})
		return err
	})
	require.NoError(t, err)

	got, err := drafts.GetByID(ctx, "drf_dddd0002")
	require.NoError(t, err)
	assert.Equal(t, "ready", got.Status)
}
