package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"quickblog/config"
	"quickblog/models"
	"quickblog/providers"
	"quickblog/routes"
	"quickblog/utils"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Blog{}, &models.Comment{}))
	return db
}

func testConfig() config.AppConfig {
	return config.AppConfig{
		AppPort:            "8080",
		GinMode:            "test",
		JWTSecret:          "test-secret",
		AdminEmail:         "admin@example.com",
		AdminPassword:      "admin-password",
		ImageKitFolder:     "/blogs",
		RateLimitPerMinute: 100000,
		AllowedOrigins:     []string{"*"},
	}
}

type fakeUploader struct {
	calls        int
	lastFileName string
	lastFolder   string
	lastSize     int
	err          error
}

func (f *fakeUploader) Upload(_ context.Context, data []byte, fileName, folder string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	f.lastFileName = fileName
	f.lastFolder = folder
	f.lastSize = len(data)
	return "/blogs/" + fileName, nil
}

func (f *fakeUploader) URL(path string, tr providers.Transformation) string {
	return fmt.Sprintf("https://ik.example.com/tr:q-%s,f-%s,w-%d%s", tr.Quality, tr.Format, tr.Width, path)
}

type fakeGenerator struct {
	lastPrompt string
	output     string
	err        error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

func newTestRouter(t *testing.T, db *gorm.DB, up providers.ImageUploader, gen providers.TextGenerator) *gin.Engine {
	t.Helper()
	return routes.SetupRouter(db, testConfig(), nil, up, gen)
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := utils.GenerateToken(testConfig().JWTSecret, "admin@example.com", time.Hour)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success      bool             `json:"success"`
	Message      string           `json:"message"`
	Blogs        []models.Blog    `json:"blogs"`
	Blog         *models.Blog     `json:"blog"`
	PendingBlogs []models.Blog    `json:"pendingBlogs"`
	Comments     []models.Comment `json:"comments"`
	Content      string           `json:"content"`
	Token        string           `json:"token"`
}

func doJSON(r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func blogMultipart(t *testing.T, fields map[string]interface{}, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	if withImage {
		return blogMultipartSized(t, fields, 10*1024)
	}
	return blogMultipartSized(t, fields, 0)
}

func blogMultipartSized(t *testing.T, fields map[string]interface{}, imageBytes int) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	meta, err := json.Marshal(fields)
	require.NoError(t, err)
	require.NoError(t, w.WriteField("blog", string(meta)))

	if imageBytes > 0 {
		part, err := w.CreateFormFile("image", "cover.jpg")
		require.NoError(t, err)
		_, err = part.Write(bytes.Repeat([]byte{0xAB}, imageBytes))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func postMultipart(r *gin.Engine, path, token string, body *bytes.Buffer, contentType string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func validBlogFields() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Test",
		"subTitle":    "A subtitle",
		"writerName":  "Jordan Writer",
		"description": "<p>Useful words</p>",
		"category":    "Technology",
	}
}

func TestSubmitBlogForReview_CreatesPendingBlog(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &fakeUploader{}, &fakeGenerator{})

	body, ct := blogMultipart(t, validBlogFields(), true)
	w, env := postMultipart(r, "/api/blog/submit", "", body, ct)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Blog submitted for review successfully", env.Message)

	var blog models.Blog
	require.NoError(t, db.First(&blog).Error)
	assert.False(t, blog.IsPublished)
	assert.Equal(t, models.StatusPending, blog.Status)
	assert.True(t, blog.SubmittedForReview)
	assert.Equal(t, "https://ik.example.com/tr:q-auto,f-webp,w-1280/blogs/cover.jpg", blog.Image)
}

func TestSubmitBlogForReview_MissingFields(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &fakeUploader{}, &fakeGenerator{})

	fields := validBlogFields()
	delete(fields, "writerName")
	body, ct := blogMultipart(t, fields, true)
	w, env := postMultipart(r, "/api/blog/submit", "", body, ct)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Missing required fields", env.Message)

	var count int64
	db.Model(&models.Blog{}).Count(&count)
	assert.Zero(t, count)
}

func TestSubmitBlogForReview_MissingImage(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &fakeUploader{}, &fakeGenerator{})

	body, ct := blogMultipart(t, validBlogFields(), false)
	_, env := postMultipart(r, "/api/blog/submit", "", body, ct)

	assert.False(t, env.Success)
	assert.Equal(t, "Missing required fields", env.Message)
}

func TestAddBlog_RequiresToken(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &fakeUploader{}, &fakeGenerator{})

	body, ct := blogMultipart(t, validBlogFields(), true)
	w, env := postMultipart(r, "/api/blog/add", "", body, ct)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid token", env.Message)
}

func TestAddBlog_PublishedFlagControlsListing(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &fakeUploader{}, &fakeGenerator{})
	token := adminToken(t)

	published := validBlogFields()
	published["title"] = "Visible"
	published["isPublished"] = true
	body, ct := blogMultipart(t, published, true)
	_, env := postMultipart(r, "/api/blog/add", token, body, ct)
	require.True(t, env.Success)
	assert.Equal(t, "Blog added successfully", env.Message)

	draft := validBlogFields()
	draft["title"] = "Hidden"
	draft["isPublished"] = false
	body, ct = blogMultipart(t, draft, true)
	_, env = postMultipart(r, "/api/blog/add", token, body, ct)
	require.True(t, env.Success)

	_, listEnv := doJSON(r, http.MethodGet, "/api/blog/all", "", nil)
	require.True(t, listEnv.Success)
	require.Len(t, listEnv.Blogs, 1)
	assert.Equal(t, "Visible", listEnv.Blogs[0].Title)

	// Admin-created blogs keep the schema-default review status even when
	// published directly.
	assert.Equal(t, models.StatusPending, listEnv.Blogs[0].Status)
}

func TestGetBlogByID(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &fakeUploader{}, &fakeGenerator{})

	blog := models.Blog{Title: "One", WriterName: "W", Description: "<p>d</p>", Category: "Tech", Image: "https://img", IsPublished: true}
	require.NoError(t, db.Create(&blog).Error)

	_, env := doJSON(r, http.MethodGet, fmt.Sprintf("/api/blog/%d", blog.ID), "", nil)
	require.True(t, env.Success)
	require.NotNil(t, env.Blog)
	assert.Equal(t, "One", env.Blog.Title)
}

func TestGetBlogByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &fakeUploader{}, &fakeGenerator{})

	w, env := doJSON(r, http.MethodGet, "/api/blog/9999", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Blog not found", env.Message)
}

func TestGetBlogByID_InvalidIdentifier(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &fakeUploader{}, &fakeGenerator{})

	// A syntactically invalid identifier is a logical failure, not a
	// transport error.
	w, env := doJSON(r, http.MethodGet, "/api/blog/not-an-id", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Blog not found", env.Message)
}

func TestDeleteBlog_CascadesComments(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &fakeUploader{}, &fakeGenerator{})
	token := adminToken(t)

	blog := models.Blog{Title: "Doomed", WriterName: "W", Description: "d", Category: "Tech", Image: "i"}
	require.NoError(t, db.Create(&blog).Error)
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.Comment{BlogID: blog.ID, Name: "Reader", Content: "hi"}).Error)
	}

	_, env := doJSON(r, http.MethodPost, "/api/blog/delete", token, gin.H{"id": blog.ID})
	require.True(t, env.Success)
	assert.Equal(t, "Blog deleted successfully", env.Message)

	var blogCount, commentCount int64
	db.Model(&models.Blog{}).Where("id = ?", blog.ID).Count(&blogCount)
	db.Model(&models.Comment{}).Where("blog_id = ?", blog.ID).Count(&commentCount)
	assert.Zero(t, blogCount)
	assert.Zero(t, commentCount)
}

func TestTogglePublish_Involution(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &fakeUploader{}, &fakeGenerator{})
	token := adminToken(t)

	blog := models.Blog{Title: "T", WriterName: "W", Description: "d", Category: "Tech", Image: "i", IsPublished: true}
	require.NoError(t, db.Create(&blog).Error)

	_, env := doJSON(r, http.MethodPost, "/api/blog/toggle-publish", token, gin.H{"id": blog.ID})
	require.True(t, env.Success)
	assert.Equal(t, "Blog status updated", env.Message)

	var got models.Blog
	require.NoError(t, db.First(&got, blog.ID).Error)
	assert.False(t, got.IsPublished)

	_, env = doJSON(r, http.MethodPost, "/api/blog/toggle-publish", token, gin.H{"id": blog.ID})
	require.True(t, env.Success)

	require.NoError(t, db.First(&got, blog.ID).Error)
	assert.True(t, got.IsPublished)
}

func TestTogglePublish_NotFound(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &fakeUploader{}, &fakeGenerator{})

	_, env := doJSON(r, http.MethodPost, "/api/blog/toggle-publish", adminToken(t), gin.H{"id": 12345})
	assert.False(t, env.Success)
	assert.Equal(t, "Blog not found", env.Message)
}

func TestReviewBlog_Approve(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &fakeUploader{}, &fakeGenerator{})

	blog := models.Blog{Title: "T", WriterName: "W", Description: "d", Category: "Tech", Image: "i",
		Status: models.StatusPending, SubmittedForReview: true}
	require.NoError(t, db.Create(&blog).Error)

	_, env := doJSON(r, http.MethodPost, "/api/blog/review", adminToken(t), gin.H{"id": blog.ID, "action": "approve"})
	require.True(t, env.Success)
	assert.Equal(t, "Blog approved successfully", env.Message)

	var got models.Blog
	require.NoError(t, db.First(&got, blog.ID).Error)
	assert.Equal(t, models.StatusApproved, got.Status)
	assert.True(t, got.IsPublished)
	assert.False(t, got.SubmittedForReview)
}

func TestReviewBlog_Reject(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &fakeUploader{}, &fakeGenerator{})

	blog := models.Blog{Title: "T", WriterName: "W", Description: "d", Category: "Tech", Image: "i",
		Status: models.StatusPending, SubmittedForReview: true, IsPublished: false}
	require.NoError(t, db.Create(&blog).Error)

	_, env := doJSON(r, http.MethodPost, "/api/blog/review", adminToken(t), gin.H{"id": blog.ID, "action": "reject"})
	require.True(t, env.Success)
	assert.Equal(t, "Blog rejected successfully", env.Message)

	var got models.Blog
	require.NoError(t, db.First(&got, blog.ID).Error)
	assert.Equal(t, models.StatusRejected, got.Status)
	assert.False(t, got.IsPublished)
	assert.False(t, got.SubmittedForReview)
}

func TestReviewBlog_UnknownActionIsSilentNoOp(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &fakeUploader{}, &fakeGenerator{})

	blog := models.Blog{Title: "T", WriterName: "W", Description: "d", Category: "Tech", Image: "i",
		Status: models.StatusPending, SubmittedForReview: true}
	require.NoError(t, db.Create(&blog).Error)
	var before models.Blog
	require.NoError(t, db.First(&before, blog.ID).Error)

	_, env := doJSON(r, http.MethodPost, "/api/blog/review", adminToken(t), gin.H{"id": blog.ID, "action": "archive"})
	assert.True(t, env.Success)

	var after models.Blog
	require.NoError(t, db.First(&after, blog.ID).Error)
	assert.Equal(t, before, after)
}

func TestReviewBlog_NotFound(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &fakeUploader{}, &fakeGenerator{})

	_, env := doJSON(r, http.MethodPost, "/api/blog/review", adminToken(t), gin.H{"id": 777, "action": "approve"})
	assert.False(t, env.Success)
	assert.Equal(t, "Blog not found", env.Message)
}

func TestReviewWorkflow_EndToEnd(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &fakeUploader{}, &fakeGenerator{})
	token := adminToken(t)

	body, ct := blogMultipart(t, validBlogFields(), true)
	_, env := postMultipart(r, "/api/blog/submit", "", body, ct)
	require.True(t, env.Success)

	_, pending := doJSON(r, http.MethodGet, "/api/blog/pending", token, nil)
	require.True(t, pending.Success)
	require.Len(t, pending.PendingBlogs, 1)
	assert.Equal(t, "Test", pending.PendingBlogs[0].Title)

	_, review := doJSON(r, http.MethodPost, "/api/blog/review", token,
		gin.H{"id": pending.PendingBlogs[0].ID, "action": "approve"})
	require.True(t, review.Success)

	_, published := doJSON(r, http.MethodGet, "/api/blog/all", "", nil)
	require.True(t, published.Success)
	require.Len(t, published.Blogs, 1)
	assert.Equal(t, "Test", published.Blogs[0].Title)

	_, pending = doJSON(r, http.MethodGet, "/api/blog/pending", token, nil)
	require.True(t, pending.Success)
	assert.Empty(t, pending.PendingBlogs)
}

func TestGetPendingBlogs_RequiresToken(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &fakeUploader{}, &fakeGenerator{})

	_, env := doJSON(r, http.MethodGet, "/api/blog/pending", "", nil)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid token", env.Message)
}

func TestAddComment_UnapprovedByDefault(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &fakeUploader{}, &fakeGenerator{})

	blog := models.Blog{Title: "T", WriterName: "W", Description: "d", Category: "Tech", Image: "i", IsPublished: true}
	require.NoError(t, db.Create(&blog).Error)

	_, env := doJSON(r, http.MethodPost, "/api/blog/add-comment", "",
		gin.H{"blog": blog.ID, "name": "Reader", "content": "Nice post"})
	require.True(t, env.Success)
	assert.Equal(t, "Comment added for review", env.Message)

	var comment models.Comment
	require.NoError(t, db.First(&comment).Error)
	assert.False(t, comment.IsApproved)
}

func TestAddComment_DanglingBlogReferenceAccepted(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &fakeUploader{}, &fakeGenerator{})

	_, env := doJSON(r, http.MethodPost, "/api/blog/add-comment", "",
		gin.H{"blog": 424242, "name": "Reader", "content": "Shouting into the void"})
	require.True(t, env.Success)

	// The comment exists but can never surface: no blog, and it is
	// unapproved.
	var count int64
	db.Model(&models.Comment{}).Where("blog_id = ?", 424242).Count(&count)
	assert.EqualValues(t, 1, count)

	_, comments := doJSON(r, http.MethodPost, "/api/blog/comments", "", gin.H{"blogId": 424242})
	require.True(t, comments.Success)
	assert.Empty(t, comments.Comments)
}

func TestGetBlogComments_OnlyApproved(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, &fakeUploader{}, &fakeGenerator{})

	blog := models.Blog{Title: "T", WriterName: "W", Description: "d", Category: "Tech", Image: "i", IsPublished: true}
	require.NoError(t, db.Create(&blog).Error)
	require.NoError(t, db.Create(&models.Comment{BlogID: blog.ID, Name: "A", Content: "approved", IsApproved: true}).Error)
	require.NoError(t, db.Create(&models.Comment{BlogID: blog.ID, Name: "B", Content: "held"}).Error)

	_, env := doJSON(r, http.MethodPost, "/api/blog/comments", "", gin.H{"blogId": blog.ID})
	require.True(t, env.Success)
	require.Len(t, env.Comments, 1)
	assert.Equal(t, "A", env.Comments[0].Name)
	assert.True(t, env.Comments[0].IsApproved)
}

func TestGenerateContent_AugmentsPromptAndCleans(t *testing.T) {
	db := setupTestDB(t)
	gen := &fakeGenerator{output: "Sure! Here is the article:\n<h2>Intro</h2><p>Body</p>\"\"\""}
	r := newTestRouter(t, db, &fakeUploader{}, gen)

	_, env := doJSON(r, http.MethodPost, "/api/blog/generate", "", gin.H{"prompt": "Write about Go"})
	require.True(t, env.Success)
	assert.Equal(t, "<h2>Intro</h2><p>Body</p>", env.Content)

	assert.True(t, strings.HasPrefix(gen.lastPrompt, "Write about Go"))
	assert.Contains(t, gen.lastPrompt, "CRITICAL INSTRUCTIONS:")
}

func TestGenerateContent_ProviderErrorSurfacesMessage(t *testing.T) {
	db := setupTestDB(t)
	gen := &fakeGenerator{err: fmt.Errorf("gemini: quota exceeded")}
	r := newTestRouter(t, db, &fakeUploader{}, gen)

	w, env := doJSON(r, http.MethodPost, "/api/blog/generate", "", gin.H{"prompt": "anything"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "gemini: quota exceeded", env.Message)
}

func TestSubmitBlog_OversizedImageRejected(t *testing.T) {
	db := setupTestDB(t)
	up := &fakeUploader{}
	r := newTestRouter(t, db, up, &fakeGenerator{})

	body, ct := blogMultipartSized(t, validBlogFields(), 11<<20)
	w, env := postMultipart(r, "/api/blog/submit", "", body, ct)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Image exceeds the 10MB limit", env.Message)

	// The provider never sees the file and nothing is persisted.
	assert.Zero(t, up.calls)
	var count int64
	db.Model(&models.Blog{}).Count(&count)
	assert.Zero(t, count)
}

func TestSubmitBlog_LargeImageUploadedIntact(t *testing.T) {
	db := setupTestDB(t)
	up := &fakeUploader{}
	r := newTestRouter(t, db, up, &fakeGenerator{})

	body, ct := blogMultipartSized(t, validBlogFields(), 2<<20)
	_, env := postMultipart(r, "/api/blog/submit", "", body, ct)

	require.True(t, env.Success)
	assert.Equal(t, 2<<20, up.lastSize)
}

func TestSubmitBlog_UploadErrorSurfacesMessage(t *testing.T) {
	db := setupTestDB(t)
	up := &fakeUploader{err: fmt.Errorf("imagekit upload: invalid key")}
	r := newTestRouter(t, db, up, &fakeGenerator{})

	body, ct := blogMultipart(t, validBlogFields(), true)
	_, env := postMultipart(r, "/api/blog/submit", "", body, ct)

	assert.False(t, env.Success)
	assert.Equal(t, "imagekit upload: invalid key", env.Message)

	var count int64
	db.Model(&models.Blog{}).Count(&count)
	assert.Zero(t, count)
}
