// Package storage はプロフィール画像の保存先（ローカルディスク・S3互換ストレージ）を提供します。
package storage

import (
	"context"
	"errors"
	"io"
)

// ProfilePrefix は画像の保存先ディレクトリ（キーのプレフィックス）です。
const ProfilePrefix = "profiles/"

// ErrInvalidName は保存名にパス要素が含まれる場合に返されます。
var ErrInvalidName = errors.New("invalid object name")

// ImageStore は画像を保存し、公開URLを返します。
type ImageStore interface {
	// Save はnameで画像を保存し、公開URLを返します。
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	// Delete はSaveが返したURLの画像を削除します。このストアのURLでない場合は何もしません。
	Delete(ctx context.Context, url string) error
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	for _, r := range name {
		if r == '/' || r == '\\' {
			return false
		}
	}
	return true
}
