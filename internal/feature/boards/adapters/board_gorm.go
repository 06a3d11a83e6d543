// Package adapters はboardsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	authentity "kanban_backend/internal/feature/auth/domain/entity"
	"kanban_backend/internal/feature/boards/domain/entity"
	"kanban_backend/internal/feature/boards/usecase"
	"kanban_backend/internal/platform/pagination"
)

// BoardModel は boards テーブルのGORMモデルです。
type BoardModel struct {
	ID        uint            `gorm:"primaryKey"`
	Title     string          `gorm:"size:200;not null"`
	Content   string          `gorm:"type:text;not null"`
	AuthorID  uint            `gorm:"not null;index"`
	Author    authentity.User `gorm:"foreignKey:AuthorID"`
	ViewCount int64           `gorm:"not null;default:0"`
	CreatedAt time.Time       `gorm:"index"`
	UpdatedAt time.Time
}

// TableName はテーブル名を返します。
func (BoardModel) TableName() string {
	return "boards"
}

// ToEntity はモデルをドメインエンティティに変換します。
func (m BoardModel) ToEntity() entity.Board {
	return entity.Board{
		ID:        m.ID,
		Title:     m.Title,
		Content:   m.Content,
		AuthorID:  m.AuthorID,
		Author:    entity.Author{ID: m.Author.ID, Username: m.Author.Username, FullName: m.Author.FullName},
		ViewCount: m.ViewCount,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type boardGorm struct {
	db *gorm.DB
}

var _ usecase.BoardRepository = (*boardGorm)(nil)

// NewBoardGorm は指定されたgorm.DB接続でboardGormを生成します。
func NewBoardGorm(db *gorm.DB) *boardGorm {
	return &boardGorm{db: db}
}

// paged はscopeで絞り込んだ投稿を作成日時の降順でページ取得します。
func (r *boardGorm) paged(ctx context.Context, scope func(*gorm.DB) *gorm.DB, req pagination.Request) ([]entity.Board, int64, error) {
	var total int64
	if err := scope(r.db.WithContext(ctx).Model(&BoardModel{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entity.Board{}, 0, nil
	}

	var rows []BoardModel
	err := scope(r.db.WithContext(ctx).Model(&BoardModel{})).
		Preload("Author").
		Order("boards.created_at DESC").
		Order("boards.id DESC").
		Offset(req.Offset()).
		Limit(req.Size).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]entity.Board, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.ToEntity())
	}
	return out, total, nil
}

// List は全投稿を返します。
func (r *boardGorm) List(ctx context.Context, req pagination.Request) ([]entity.Board, int64, error) {
	return r.paged(ctx, func(q *gorm.DB) *gorm.DB { return q }, req)
}

// Search はタイトルまたは本文にkeywordを含む投稿を返します。大文字小文字は区別しません。
func (r *boardGorm) Search(ctx context.Context, keyword string, req pagination.Request) ([]entity.Board, int64, error) {
	like := "%" + escapeLike(strings.ToLower(keyword)) + "%"
	return r.paged(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where(`LOWER(boards.title) LIKE ? ESCAPE '\' OR LOWER(boards.content) LIKE ? ESCAPE '\'`, like, like)
	}, req)
}

// ListByAuthor は指定ユーザーの投稿を返します。
func (r *boardGorm) ListByAuthor(ctx context.Context, username string, req pagination.Request) ([]entity.Board, int64, error) {
	return r.paged(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Joins("JOIN users ON users.id = boards.author_id").Where("users.username = ?", username)
	}, req)
}

// FindByID は投稿を投稿者付きで返します。
func (r *boardGorm) FindByID(ctx context.Context, id uint) (*entity.Board, error) {
	var m BoardModel
	if err := r.db.WithContext(ctx).Preload("Author").First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrBoardNotFound
		}
		return nil, err
	}
	b := m.ToEntity()
	return &b, nil
}

// IncrementViewCount は閲覧数を1増やします。updated_at は変更しません。
func (r *boardGorm) IncrementViewCount(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&BoardModel{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrBoardNotFound
	}
	return nil
}

// AuthorByUsername は投稿者情報を返します。
func (r *boardGorm) AuthorByUsername(ctx context.Context, username string) (*entity.Author, error) {
	var u authentity.User
	err := r.db.WithContext(ctx).Select("id", "username", "full_name").Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrAuthorNotFound
		}
		return nil, err
	}
	return &entity.Author{ID: u.ID, Username: u.Username, FullName: u.FullName}, nil
}

// Create は投稿を保存し、採番されたIDと日時をbに反映します。
func (r *boardGorm) Create(ctx context.Context, b *entity.Board) error {
	m := BoardModel{
		Title:    b.Title,
		Content:  b.Content,
		AuthorID: b.AuthorID,
	}
	if err := r.db.WithContext(ctx).Omit("Author").Create(&m).Error; err != nil {
		return err
	}
	b.ID = m.ID
	b.ViewCount = m.ViewCount
	b.CreatedAt = m.CreatedAt
	b.UpdatedAt = m.UpdatedAt
	return nil
}

// Update はタイトルと本文を更新します。
func (r *boardGorm) Update(ctx context.Context, b *entity.Board) error {
	m := BoardModel{ID: b.ID}
	res := r.db.WithContext(ctx).Model(&m).Updates(map[string]any{
		"title":   b.Title,
		"content": b.Content,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrBoardNotFound
	}
	b.UpdatedAt = m.UpdatedAt
	return nil
}

// Delete は投稿を削除します。コメントは外部キーのON DELETE CASCADEで削除されます。
func (r *boardGorm) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&BoardModel{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrBoardNotFound
	}
	return nil
}

// escapeLike はLIKEのワイルドカードをエスケープします。
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
