package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boardentity "kanban_backend/internal/feature/boards/domain/entity"
	commententity "kanban_backend/internal/feature/comments/domain/entity"
	"kanban_backend/internal/feature/users/usecase"
	"kanban_backend/internal/platform/authctx"
	"kanban_backend/internal/platform/pagination"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type mockUserUsecase struct {
	image     *string
	err       error
	gotUpload usecase.ImageUpload
	gotBody   string
}

func (m *mockUserUsecase) MyBoards(ctx context.Context, username string, req pagination.Request) (pagination.Page[boardentity.Board], error) {
	if m.err != nil {
		return pagination.Page[boardentity.Board]{}, m.err
	}
	return pagination.New([]boardentity.Board{{ID: 1, Author: boardentity.Author{Username: username}}}, req, 1), nil
}

func (m *mockUserUsecase) MyComments(ctx context.Context, username string) ([]commententity.Comment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []commententity.Comment{{ID: 2, BoardID: 1, BoardTitle: "post", AuthorUsername: username}}, nil
}

func (m *mockUserUsecase) ProfileImage(ctx context.Context, username string) (*string, error) {
	return m.image, m.err
}

func (m *mockUserUsecase) UploadProfileImage(ctx context.Context, username string, img usecase.ImageUpload) (string, error) {
	m.gotUpload = img
	data, _ := io.ReadAll(img.Body)
	m.gotBody = string(data)
	if m.err != nil {
		return "", m.err
	}
	return "/uploads/profiles/new.png", nil
}

func (m *mockUserUsecase) DeleteProfileImage(ctx context.Context, username string) error {
	return m.err
}

func newTestRouter(uc UserUsecase, username string) *gin.Engine {
	h := NewUserHandler(uc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if username != "" {
			authctx.Bind(c, authctx.Principal{Username: username})
		}
		c.Next()
	})
	me := r.Group("/api/users/me")
	me.GET("/boards", h.MyBoards)
	me.GET("/comments", h.MyComments)
	me.GET("/profile-image", h.GetProfileImage)
	me.POST("/profile-image", h.UploadProfileImage)
	me.DELETE("/profile-image", h.DeleteProfileImage)
	return r
}

func multipartBody(t *testing.T, field, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUserHandler_Lists(t *testing.T) {
	r := newTestRouter(&mockUserUsecase{}, "alice")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/me/boards?page=0&size=10", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authorUsername":"alice"`)
	assert.Contains(t, w.Body.String(), `"totalElements":1`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/me/comments", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"boardTitle":"post"`)
}

func TestUserHandler_Anonymous(t *testing.T) {
	r := newTestRouter(&mockUserUsecase{}, "")
	for _, path := range []string{"/api/users/me/boards", "/api/users/me/comments", "/api/users/me/profile-image"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestUserHandler_GetProfileImage(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(&mockUserUsecase{}, "alice").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/me/profile-image", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"profileImageUrl":null}`, w.Body.String())

	url := "/uploads/profiles/a.png"
	w = httptest.NewRecorder()
	newTestRouter(&mockUserUsecase{image: &url}, "alice").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/me/profile-image", nil))
	assert.JSONEq(t, `{"profileImageUrl":"/uploads/profiles/a.png"}`, w.Body.String())

	w = httptest.NewRecorder()
	newTestRouter(&mockUserUsecase{err: usecase.ErrUserNotFound}, "ghost").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/me/profile-image", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"user not found"}`, w.Body.String())
}

// TestUserHandler_UploadProfileImage はmultipartのfileフィールドがユースケースに渡されることを検証します。
func TestUserHandler_UploadProfileImage(t *testing.T) {
	uc := &mockUserUsecase{}
	body, ct := multipartBody(t, "file", "me.png", "image/png", "png-bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/users/me/profile-image", body)
	req.Header.Set("Content-Type", ct)

	w := httptest.NewRecorder()
	newTestRouter(uc, "alice").ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"profileImageUrl":"/uploads/profiles/new.png"}`, w.Body.String())
	assert.Equal(t, "me.png", uc.gotUpload.Filename)
	assert.Equal(t, "image/png", uc.gotUpload.ContentType)
	assert.Equal(t, int64(len("png-bytes")), uc.gotUpload.Size)
	assert.Equal(t, "png-bytes", uc.gotBody)
}

func TestUserHandler_UploadProfileImage_Errors(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"missing file field", "avatar", nil, http.StatusBadRequest, `{"error":"file is required"}`},
		{"not an image", "file", usecase.ErrNotImage, http.StatusBadRequest, `{"error":"file is not an image"}`},
		{"too large", "file", usecase.ErrFileTooLarge, http.StatusBadRequest, `{"error":"file size exceeds 5MB"}`},
		{"storage failure", "file", errors.New("disk full"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.field, "me.png", "image/png", "x")
			req := httptest.NewRequest(http.MethodPost, "/api/users/me/profile-image", body)
			req.Header.Set("Content-Type", ct)

			w := httptest.NewRecorder()
			newTestRouter(&mockUserUsecase{err: tt.err}, "alice").ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

// TestUserHandler_UploadProfileImage_BodyLimit はリクエストボディの上限超過がファイルサイズのエラーになることを検証します。
func TestUserHandler_UploadProfileImage_BodyLimit(t *testing.T) {
	uc := &mockUserUsecase{}
	h := NewUserHandler(uc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1024)
		authctx.Bind(c, authctx.Principal{Username: "alice"})
		c.Next()
	})
	r.POST("/api/users/me/profile-image", h.UploadProfileImage)

	body, ct := multipartBody(t, "file", "me.png", "image/png", strings.Repeat("x", 4096))
	req := httptest.NewRequest(http.MethodPost, "/api/users/me/profile-image", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"file size exceeds 5MB"}`, w.Body.String())
	assert.Empty(t, uc.gotUpload.Filename, "usecase must not be called")
}

func TestUserHandler_DeleteProfileImage(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(&mockUserUsecase{}, "alice").ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/users/me/profile-image", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
