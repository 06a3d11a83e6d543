// Package adapters はcommentsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	authentity "kanban_backend/internal/feature/auth/domain/entity"
	boardadapters "kanban_backend/internal/feature/boards/adapters"
	"kanban_backend/internal/feature/comments/domain/entity"
	"kanban_backend/internal/feature/comments/usecase"
)

// CommentModel は comments テーブルのGORMモデルです。
// 投稿を削除するとコメントも削除されます。
type CommentModel struct {
	ID        uint                     `gorm:"primaryKey"`
	Content   string                   `gorm:"type:text;not null"`
	BoardID   uint                     `gorm:"not null;index"`
	Board     boardadapters.BoardModel `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE"`
	AuthorID  uint                     `gorm:"not null;index"`
	Author    authentity.User          `gorm:"foreignKey:AuthorID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName はテーブル名を返します。
func (CommentModel) TableName() string {
	return "comments"
}

// ToEntity はモデルをドメインエンティティに変換します。
// Board・Author を Preload していない場合、タイトルとユーザー名は空になります。
func (m CommentModel) ToEntity() entity.Comment {
	return entity.Comment{
		ID:             m.ID,
		Content:        m.Content,
		BoardID:        m.BoardID,
		BoardTitle:     m.Board.Title,
		AuthorID:       m.AuthorID,
		AuthorUsername: m.Author.Username,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

type commentGorm struct {
	db *gorm.DB
}

var _ usecase.CommentRepository = (*commentGorm)(nil)

// NewCommentGorm は指定されたgorm.DB接続でcommentGormを生成します。
func NewCommentGorm(db *gorm.DB) *commentGorm {
	return &commentGorm{db: db}
}

func toEntities(rows []CommentModel) []entity.Comment {
	out := make([]entity.Comment, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.ToEntity())
	}
	return out
}

// ListByBoard は投稿のコメントを作成日時の昇順で返します。
func (r *commentGorm) ListByBoard(ctx context.Context, boardID uint) ([]entity.Comment, error) {
	var rows []CommentModel
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("board_id = ?", boardID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

// ListByAuthor はユーザーのコメントを投稿タイトル付きで作成日時の降順に返します。
func (r *commentGorm) ListByAuthor(ctx context.Context, username string) ([]entity.Comment, error) {
	var rows []CommentModel
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = comments.author_id").
		Where("users.username = ?", username).
		Preload("Author").
		Preload("Board").
		Order("comments.created_at DESC").
		Order("comments.id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

// FindByID はコメントを投稿者付きで返します。
func (r *commentGorm) FindByID(ctx context.Context, id uint) (*entity.Comment, error) {
	var m CommentModel
	if err := r.db.WithContext(ctx).Preload("Author").First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCommentNotFound
		}
		return nil, err
	}
	c := m.ToEntity()
	return &c, nil
}

// BoardExists は投稿が存在するかを返します。
func (r *commentGorm) BoardExists(ctx context.Context, boardID uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&boardadapters.BoardModel{}).Where("id = ?", boardID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// AuthorIDByUsername はユーザーIDを返します。
func (r *commentGorm) AuthorIDByUsername(ctx context.Context, username string) (uint, error) {
	var u authentity.User
	if err := r.db.WithContext(ctx).Select("id").Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, usecase.ErrAuthorNotFound
		}
		return 0, err
	}
	return u.ID, nil
}

// Create はコメントを保存し、採番されたIDと日時をcに反映します。
func (r *commentGorm) Create(ctx context.Context, c *entity.Comment) error {
	m := CommentModel{
		Content:  c.Content,
		BoardID:  c.BoardID,
		AuthorID: c.AuthorID,
	}
	if err := r.db.WithContext(ctx).Omit("Board", "Author").Create(&m).Error; err != nil {
		return err
	}
	c.ID = m.ID
	c.CreatedAt = m.CreatedAt
	c.UpdatedAt = m.UpdatedAt
	return nil
}

// UpdateContent はコメント本文を更新します。
func (r *commentGorm) UpdateContent(ctx context.Context, id uint, content string) error {
	res := r.db.WithContext(ctx).Model(&CommentModel{ID: id}).Update("content", content)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrCommentNotFound
	}
	return nil
}

// Delete はコメントを削除します。
func (r *commentGorm) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&CommentModel{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrCommentNotFound
	}
	return nil
}
