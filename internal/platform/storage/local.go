package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore はファイルを <dir>/profiles/ に保存し、/uploads/profiles/<name> のURLを返します。
type LocalStore struct {
	dir       string
	urlPrefix string
}

var _ ImageStore = (*LocalStore)(nil)

// NewLocalStore はLocalStoreを生成します。dirは /uploads として公開されるディレクトリです。
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir, urlPrefix: "/uploads/" + ProfilePrefix}
}

// Dir は公開ディレクトリを返します。
func (s *LocalStore) Dir() string { return s.dir }

// Save はファイルを書き込みます。
func (s *LocalStore) Save(ctx context.Context, name, _ string, r io.Reader) (string, error) {
	if !validName(name) {
		return "", ErrInvalidName
	}
	target := filepath.Join(s.dir, ProfilePrefix)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(target, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	return s.urlPrefix + name, nil
}

// Delete はファイルを削除します。存在しない場合もエラーにしません。
func (s *LocalStore) Delete(ctx context.Context, url string) error {
	name, ok := strings.CutPrefix(url, s.urlPrefix)
	if !ok || !validName(name) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, ProfilePrefix, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
