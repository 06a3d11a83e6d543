package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authentity "kanban_backend/internal/feature/auth/domain/entity"
	boardadapters "kanban_backend/internal/feature/boards/adapters"
	"kanban_backend/internal/feature/comments/domain/entity"
	"kanban_backend/internal/feature/comments/usecase"
)

// setupTestDB prepares an in-memory SQLite database with foreign keys enabled.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&authentity.User{}, &boardadapters.BoardModel{}, &CommentModel{}))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *authentity.User {
	t.Helper()
	u := &authentity.User{Username: username, Email: username + "@example.com", Provider: authentity.ProviderLocal}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createBoard(t *testing.T, db *gorm.DB, author *authentity.User, title string) *boardadapters.BoardModel {
	t.Helper()
	b := &boardadapters.BoardModel{Title: title, Content: "body", AuthorID: author.ID}
	require.NoError(t, db.Omit("Author").Create(b).Error)
	return b
}

func addComment(t *testing.T, repo *commentGorm, boardID, authorID uint, content string) *entity.Comment {
	t.Helper()
	c := &entity.Comment{BoardID: boardID, AuthorID: authorID, Content: content}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestCommentGorm_ListByBoard(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentGorm(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	board := createBoard(t, db, alice, "post")
	other := createBoard(t, db, alice, "other")

	first := addComment(t, repo, board.ID, bob.ID, "first")
	addComment(t, repo, board.ID, alice.ID, "second")
	addComment(t, repo, other.ID, bob.ID, "elsewhere")

	got, err := repo.ListByBoard(context.Background(), board.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, "bob", got[0].AuthorUsername)
	assert.Equal(t, "second", got[1].Content)
}

// TestCommentGorm_ListByAuthor は自分のコメントが投稿タイトル付きで新しい順に返ることを検証します。
func TestCommentGorm_ListByAuthor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentGorm(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	b1 := createBoard(t, db, alice, "first post")
	b2 := createBoard(t, db, alice, "second post")

	older := addComment(t, repo, b1.ID, bob.ID, "older")
	newer := addComment(t, repo, b2.ID, bob.ID, "newer")
	addComment(t, repo, b2.ID, alice.ID, "not mine")
	require.NoError(t, db.Model(&CommentModel{}).Where("id = ?", older.ID).UpdateColumn("created_at", time.Now().Add(-time.Hour)).Error)

	got, err := repo.ListByAuthor(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, "second post", got[0].BoardTitle)
	assert.Equal(t, "first post", got[1].BoardTitle)
	assert.Equal(t, "bob", got[1].AuthorUsername)
}

func TestCommentGorm_FindUpdateDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentGorm(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	board := createBoard(t, db, alice, "post")
	c := addComment(t, repo, board.ID, alice.ID, "hello")

	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.AuthorUsername)

	require.NoError(t, repo.UpdateContent(ctx, c.ID, "edited"))
	got, err = repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)

	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err = repo.FindByID(ctx, c.ID)
	assert.ErrorIs(t, err, usecase.ErrCommentNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), usecase.ErrCommentNotFound)
	assert.ErrorIs(t, repo.UpdateContent(ctx, c.ID, "x"), usecase.ErrCommentNotFound)
}

func TestCommentGorm_Lookups(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentGorm(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	board := createBoard(t, db, alice, "post")

	ok, err := repo.BoardExists(ctx, board.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.BoardExists(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)

	id, err := repo.AuthorIDByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, id)
	_, err = repo.AuthorIDByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, usecase.ErrAuthorNotFound)
}

// TestCommentGorm_CascadeOnBoardDelete は投稿削除時にコメントも削除されることを検証します。
func TestCommentGorm_CascadeOnBoardDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentGorm(db)
	alice := createUser(t, db, "alice")
	board := createBoard(t, db, alice, "post")
	addComment(t, repo, board.ID, alice.ID, "one")
	addComment(t, repo, board.ID, alice.ID, "two")

	require.NoError(t, boardadapters.NewBoardGorm(db).Delete(context.Background(), board.ID))

	var n int64
	require.NoError(t, db.Model(&CommentModel{}).Count(&n).Error)
	assert.Zero(t, n)
}
