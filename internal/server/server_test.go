package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"linkup/internal/blob"
	"linkup/internal/config"
	"linkup/internal/models"
	"linkup/internal/repository"
	"linkup/internal/service"
	"linkup/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// newTestServer wires a Server over an in-memory database, skipping the
// Prometheus middleware so repeated setups do not re-register collectors.
func newTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()

	db := testutil.OpenTestDB(t)
	cfg := &config.Config{
		JWTSecret:   "test-secret",
		Port:        "0",
		Env:         "test",
		UploadMaxMB: 10,
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	connRepo := repository.NewConnectionRepository(db)
	blobStore := blob.NewStore(db)

	s := &Server{
		config:      cfg,
		db:          db,
		userRepo:    userRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		connRepo:    connRepo,
		blobStore:   blobStore,
	}
	s.postService = service.NewPostService(postRepo, userRepo, blobStore)
	s.commentService = service.NewCommentService(commentRepo, postRepo, userRepo)
	s.connService = service.NewConnectionService(connRepo, userRepo)
	s.userService = service.NewUserService(userRepo, postRepo, connRepo, blobStore)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app, db
}

func createUserWithToken(t *testing.T, s *Server, db *gorm.DB, name string) (*models.User, string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{Name: name, Email: name + "@example.com", Password: string(hashed)}
	require.NoError(t, db.Create(user).Error)

	token, err := s.generateToken(user.ID, user.Name)
	require.NoError(t, err)
	return user, token
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNewApp_UnmatchedRouteIs404(t *testing.T) {
	s, _, _ := newTestServer(t)
	app := s.NewApp()

	resp := doJSON(t, app, http.MethodGet, "/api/no-such-route", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode,
		"router errors keep their status instead of collapsing to 500")

	var body map[string]any
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body["error"])
}

func TestSignupAndLogin(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name":     "Ada Lovelace",
		"email":    "ada@example.com",
		"password": "difference-engine",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var signup struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user"`
	}
	decodeBody(t, resp, &signup)
	assert.NotEmpty(t, signup.Token)
	assert.NotContains(t, string(signup.User), "password")

	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "difference-engine",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCreatePost_ResponseShape(t *testing.T) {
	s, app, db := newTestServer(t)
	user, token := createUserWithToken(t, s, db, "ada")

	body, contentType := multipartBody(t, map[string]string{"text": "Hello #world"}, "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/posts", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var got map[string]any
	decodeBody(t, resp, &got)
	assert.Equal(t, user.Name, got["name"])
	assert.Equal(t, "Hello #world", got["text"])
	assert.Equal(t, []any{}, got["likes"])
	assert.Equal(t, []any{}, got["comments"])
	_, hasImage := got["image"]
	assert.False(t, hasImage, "a post without an upload must not carry an image id")
}

func TestCreatePost_RequiresAuth(t *testing.T) {
	_, app, _ := newTestServer(t)

	body, contentType := multipartBody(t, map[string]string{"text": "hi"}, "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/posts", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestToggleLike_Involution(t *testing.T) {
	s, app, db := newTestServer(t)
	user, token := createUserWithToken(t, s, db, "ada")

	post := &models.Post{UserID: user.ID, AuthorName: user.Name, Text: "t"}
	require.NoError(t, s.postRepo.Create(context.Background(), post))

	path := fmt.Sprintf("/api/posts/%d/like", post.ID)

	resp := doJSON(t, app, http.MethodPost, path, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var liked map[string]any
	decodeBody(t, resp, &liked)
	assert.Equal(t, []any{float64(user.ID)}, liked["likes"])

	resp = doJSON(t, app, http.MethodPost, path, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var unliked map[string]any
	decodeBody(t, resp, &unliked)
	assert.Equal(t, []any{}, unliked["likes"])
}

func TestComments_CreateAndDelete(t *testing.T) {
	s, app, db := newTestServer(t)
	owner, _ := createUserWithToken(t, s, db, "owner")
	commenter, commenterToken := createUserWithToken(t, s, db, "commenter")
	_, strangerToken := createUserWithToken(t, s, db, "stranger")

	post := &models.Post{UserID: owner.ID, AuthorName: owner.Name, Text: "t"}
	require.NoError(t, s.postRepo.Create(context.Background(), post))

	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID), commenterToken,
		map[string]string{"text": "nice"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var comment map[string]any
	decodeBody(t, resp, &comment)
	assert.Equal(t, commenter.Name, comment["name"])
	assert.Equal(t, "nice", comment["text"])
	commentID := uint(comment["id"].(float64))

	deletePath := fmt.Sprintf("/api/posts/%d/comments/%d", post.ID, commentID)

	resp = doJSON(t, app, http.MethodDelete, deletePath, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, deletePath, commenterToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var deleted map[string]any
	decodeBody(t, resp, &deleted)
	assert.Equal(t, "Comment deleted successfully", deleted["message"])

	// The post comes back trimmed: comment/like/image/owner state only.
	refreshed, ok := deleted["post"].(map[string]any)
	require.True(t, ok, "response must carry the updated post")
	assert.Equal(t, []any{}, refreshed["comments"])
	assert.Equal(t, []any{}, refreshed["likes"])
	assert.EqualValues(t, owner.ID, refreshed["user_id"])
	assert.NotContains(t, refreshed, "text")
	assert.NotContains(t, refreshed, "name")
}

func TestConnections(t *testing.T) {
	s, app, db := newTestServer(t)
	ada, adaToken := createUserWithToken(t, s, db, "ada")
	grace, _ := createUserWithToken(t, s, db, "grace")

	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/users/%d/connect", ada.ID), adaToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "self-connect is rejected")
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/users/%d/connect", grace.ID), adaToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var connected map[string]any
	decodeBody(t, resp, &connected)
	assert.Equal(t, true, connected["connected"])

	adaIDs, err := s.connRepo.IDsForUser(context.Background(), ada.ID)
	require.NoError(t, err)
	graceIDs, err := s.connRepo.IDsForUser(context.Background(), grace.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{grace.ID}, adaIDs)
	assert.Equal(t, []uint{ada.ID}, graceIDs)

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/users/%d/connect", grace.ID), adaToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	adaIDs, err = s.connRepo.IDsForUser(context.Background(), ada.ID)
	require.NoError(t, err)
	assert.Empty(t, adaIDs)
}

func TestServeFile(t *testing.T) {
	s, app, db := newTestServer(t)
	_, token := createUserWithToken(t, s, db, "ada")

	content := testPNG(t)
	body, contentType := multipartBody(t, map[string]string{"text": "with image"}, "image", "pic.png", content)
	req := httptest.NewRequest(http.MethodPost, "/api/posts", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var post map[string]any
	decodeBody(t, resp, &post)
	blobID, ok := post["image"].(string)
	require.True(t, ok, "post with upload must carry a blob id")

	fileResp := doJSON(t, app, http.MethodGet, "/api/files/"+blobID, "", nil)
	require.Equal(t, http.StatusOK, fileResp.StatusCode)
	assert.Equal(t, "image/png", fileResp.Header.Get("Content-Type"))
	assert.Equal(t, "public, max-age=31536000, immutable", fileResp.Header.Get("Cache-Control"))

	served, err := io.ReadAll(fileResp.Body)
	require.NoError(t, err)
	_ = fileResp.Body.Close()
	assert.Equal(t, content, served)
}

func TestEditPost_Ownership(t *testing.T) {
	s, app, db := newTestServer(t)
	owner, ownerToken := createUserWithToken(t, s, db, "owner")
	_, strangerToken := createUserWithToken(t, s, db, "stranger")

	post := &models.Post{UserID: owner.ID, AuthorName: owner.Name, Text: "original"}
	require.NoError(t, s.postRepo.Create(context.Background(), post))
	path := fmt.Sprintf("/api/posts/%d", post.ID)

	body, contentType := multipartBody(t, map[string]string{"text": "hijacked"}, "", "", nil)
	req := httptest.NewRequest(http.MethodPut, path, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+strangerToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	body, contentType = multipartBody(t, map[string]string{"text": ""}, "", "", nil)
	req = httptest.NewRequest(http.MethodPut, path, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+ownerToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var edited map[string]any
	decodeBody(t, resp, &edited)
	assert.Equal(t, "", edited["text"], "an empty text field clears the text")
}

func TestDeleteAccount_Cascade(t *testing.T) {
	s, app, db := newTestServer(t)
	ada, adaToken := createUserWithToken(t, s, db, "ada")
	grace, _ := createUserWithToken(t, s, db, "grace")

	post := &models.Post{UserID: ada.ID, AuthorName: ada.Name, Text: "t"}
	require.NoError(t, s.postRepo.Create(context.Background(), post))
	require.NoError(t, s.connRepo.Add(context.Background(), ada.ID, grace.ID))
	require.NoError(t, s.connRepo.Add(context.Background(), grace.ID, ada.ID))

	resp := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/users/%d", grace.ID), adaToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "only the account owner may delete it")
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/users/%d", ada.ID), adaToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	var userCount, postCount int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", ada.ID).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("user_id = ?", ada.ID).Count(&postCount).Error)
	assert.Zero(t, userCount)
	assert.Zero(t, postCount)

	graceIDs, err := s.connRepo.IDsForUser(context.Background(), grace.ID)
	require.NoError(t, err)
	assert.Empty(t, graceIDs, "the deleted account is pulled from everyone's connections")
}

func TestGetProfile_Public(t *testing.T) {
	s, app, db := newTestServer(t)
	ada, _ := createUserWithToken(t, s, db, "ada")

	post := &models.Post{UserID: ada.ID, AuthorName: ada.Name, Text: "t"}
	require.NoError(t, s.postRepo.Create(context.Background(), post))

	resp := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d", ada.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var profile struct {
		User  map[string]any   `json:"user"`
		Posts []map[string]any `json:"posts"`
	}
	decodeBody(t, resp, &profile)
	assert.Equal(t, ada.Name, profile.User["name"])
	assert.NotContains(t, profile.User, "password")
	require.Len(t, profile.Posts, 1)
}

func TestSuggestions_RankedByMutuals(t *testing.T) {
	s, app, db := newTestServer(t)
	ada, adaToken := createUserWithToken(t, s, db, "ada")
	bridge, _ := createUserWithToken(t, s, db, "bridge")
	mutualFriend, _ := createUserWithToken(t, s, db, "mutual")
	loner, _ := createUserWithToken(t, s, db, "loner")

	// ada - bridge - mutualFriend; loner has no connections.
	for _, pair := range [][2]uint{{ada.ID, bridge.ID}, {bridge.ID, ada.ID}, {bridge.ID, mutualFriend.ID}, {mutualFriend.ID, bridge.ID}} {
		require.NoError(t, s.connRepo.Add(context.Background(), pair[0], pair[1]))
	}

	resp := doJSON(t, app, http.MethodGet, "/api/users", adaToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var suggestions []map[string]any
	decodeBody(t, resp, &suggestions)
	require.Len(t, suggestions, 2, "self and direct connections are excluded")
	assert.Equal(t, mutualFriend.Name, suggestions[0]["name"])
	assert.Equal(t, float64(1), suggestions[0]["mutual_count"])
	assert.Equal(t, loner.Name, suggestions[1]["name"])
	assert.Equal(t, float64(0), suggestions[1]["mutual_count"])
}
