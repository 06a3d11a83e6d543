package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanban_backend/internal/feature/boards/domain/entity"
	"kanban_backend/internal/feature/boards/usecase"
	"kanban_backend/internal/platform/authctx"
	"kanban_backend/internal/platform/pagination"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// mockBoardUsecase はテスト用のBoardUsecaseモックです。
type mockBoardUsecase struct {
	gotReq      pagination.Request
	gotKeyword  string
	gotUsername string
	err         error
}

func (m *mockBoardUsecase) page(req pagination.Request) (pagination.Page[entity.Board], error) {
	m.gotReq = req
	if m.err != nil {
		return pagination.Page[entity.Board]{}, m.err
	}
	return pagination.New([]entity.Board{{ID: 1, Title: "t", Author: entity.Author{Username: "alice"}}}, req, 1), nil
}

func (m *mockBoardUsecase) List(ctx context.Context, req pagination.Request) (pagination.Page[entity.Board], error) {
	return m.page(req)
}

func (m *mockBoardUsecase) Search(ctx context.Context, keyword string, req pagination.Request) (pagination.Page[entity.Board], error) {
	m.gotKeyword = keyword
	return m.page(req)
}

func (m *mockBoardUsecase) ListByAuthor(ctx context.Context, username string, req pagination.Request) (pagination.Page[entity.Board], error) {
	m.gotUsername = username
	return m.page(req)
}

func (m *mockBoardUsecase) Get(ctx context.Context, id uint) (*entity.Board, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &entity.Board{ID: id, Title: "t", ViewCount: 3, Author: entity.Author{Username: "alice"}}, nil
}

func (m *mockBoardUsecase) Create(ctx context.Context, username string, in usecase.BoardInput) (*entity.Board, error) {
	m.gotUsername = username
	if m.err != nil {
		return nil, m.err
	}
	return &entity.Board{ID: 7, Title: in.Title, Content: in.Content, Author: entity.Author{Username: username}}, nil
}

func (m *mockBoardUsecase) Update(ctx context.Context, id uint, username string, in usecase.BoardInput) (*entity.Board, error) {
	m.gotUsername = username
	if m.err != nil {
		return nil, m.err
	}
	return &entity.Board{ID: id, Title: in.Title, Content: in.Content, Author: entity.Author{Username: username}}, nil
}

func (m *mockBoardUsecase) Delete(ctx context.Context, id uint, username string) error {
	m.gotUsername = username
	return m.err
}

// newTestRouter は認証済みユーザー（usernameが空の場合は未認証）としてルーターを組み立てます。
func newTestRouter(uc BoardUsecase, username string) *gin.Engine {
	h := NewBoardHandler(uc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if username != "" {
			authctx.Bind(c, authctx.Principal{Username: username})
		}
		c.Next()
	})
	r.GET("/api/boards", h.List)
	r.GET("/api/boards/search", h.Search)
	r.GET("/api/boards/user/:username", h.ListByUser)
	r.GET("/api/boards/:id", h.Get)
	r.POST("/api/boards", h.Create)
	r.PUT("/api/boards/:id", h.Update)
	r.DELETE("/api/boards/:id", h.Delete)
	return r
}

func serve(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBoardHandler_List(t *testing.T) {
	uc := &mockBoardUsecase{}
	r := newTestRouter(uc, "")

	w := serve(r, http.MethodGet, "/api/boards?page=1&size=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pagination.Request{Page: 1, Size: 5}, uc.gotReq)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 1, body["totalElements"])
	assert.EqualValues(t, 1, body["number"])
	content := body["content"].([]any)
	require.Len(t, content, 1)
	assert.Equal(t, "alice", content[0].(map[string]any)["authorUsername"])

	w = serve(r, http.MethodGet, "/api/boards?page=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBoardHandler_SearchAndUser(t *testing.T) {
	uc := &mockBoardUsecase{}
	r := newTestRouter(uc, "")

	w := serve(r, http.MethodGet, "/api/boards/search?keyword=go", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "go", uc.gotKeyword)
	assert.Equal(t, pagination.DefaultSize, uc.gotReq.Size)

	w = serve(r, http.MethodGet, "/api/boards/user/bob", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bob", uc.gotUsername)
}

func TestBoardHandler_Get(t *testing.T) {
	w := serve(newTestRouter(&mockBoardUsecase{}, ""), http.MethodGet, "/api/boards/5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"viewCount":3`)

	w = serve(newTestRouter(&mockBoardUsecase{err: usecase.ErrBoardNotFound}, ""), http.MethodGet, "/api/boards/5", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"board not found"}`, w.Body.String())

	w = serve(newTestRouter(&mockBoardUsecase{}, ""), http.MethodGet, "/api/boards/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestBoardHandler_Writes は作成・更新・削除のステータス変換を検証します。
func TestBoardHandler_Writes(t *testing.T) {
	tests := []struct {
		name       string
		username   string
		method     string
		path       string
		body       any
		err        error
		wantStatus int
	}{
		{"create", "alice", http.MethodPost, "/api/boards", gin.H{"title": "t", "content": "c"}, nil, http.StatusCreated},
		{"create without principal", "", http.MethodPost, "/api/boards", gin.H{"title": "t", "content": "c"}, nil, http.StatusUnauthorized},
		{"create invalid body", "alice", http.MethodPost, "/api/boards", gin.H{"title": ""}, nil, http.StatusBadRequest},
		{"update", "alice", http.MethodPut, "/api/boards/1", gin.H{"title": "t", "content": "c"}, nil, http.StatusOK},
		{"update by other user", "bob", http.MethodPut, "/api/boards/1", gin.H{"title": "t", "content": "c"}, usecase.ErrForbidden, http.StatusForbidden},
		{"update missing", "alice", http.MethodPut, "/api/boards/1", gin.H{"title": "t", "content": "c"}, usecase.ErrBoardNotFound, http.StatusNotFound},
		{"delete", "alice", http.MethodDelete, "/api/boards/1", nil, nil, http.StatusNoContent},
		{"delete by other user", "bob", http.MethodDelete, "/api/boards/1", nil, usecase.ErrForbidden, http.StatusForbidden},
		{"delete db error", "alice", http.MethodDelete, "/api/boards/1", nil, errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockBoardUsecase{err: tt.err}
			w := serve(newTestRouter(uc, tt.username), tt.method, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusForbidden {
				assert.JSONEq(t, `{"error":"access denied"}`, w.Body.String())
			}
			if tt.wantStatus < 300 {
				assert.Equal(t, tt.username, uc.gotUsername)
			}
		})
	}
}
