package repository

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var followInsertSQL = regexp.QuoteMeta(`INSERT INTO "follows"`) + ".*" +
	regexp.QuoteMeta(`ON CONFLICT ("user_id","author_id") DO NOTHING`)

func TestFollowRepository_CreateUsesOnConflict(t *testing.T) {
	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		created bool
	}{
		{"new edge", sqlmock.NewRows([]string{"id"}).AddRow(7), true},
		{"existing edge", sqlmock.NewRows([]string{"id"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewFollowRepository(db)

			mock.ExpectBegin()
			mock.ExpectQuery(followInsertSQL).
				WithArgs(2, 1, sqlmock.AnyArg()).
				WillReturnRows(tt.rows)
			mock.ExpectCommit()

			created, err := repo.Create(context.Background(), 2, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.created, created)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFollowRepository_SelfFollowNeverReachesStore(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	created, err := repo.Create(context.Background(), 5, 5)
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_Lifecycle(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	created, err := repo.Create(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, created)

	exists, err := repo.Exists(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, exists, "edges are directed")

	followers, err := repo.CountFollowers(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)

	following, err := repo.CountFollowing(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), following)

	authors, err := repo.FollowedAuthorIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{alice.ID}, authors)

	removed, err := repo.Delete(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	followers, err = repo.CountFollowers(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, followers)
}

func TestFollowRepository_ConcurrentFollowsLeaveOneEdge(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, bob.ID, alice.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var count int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
