package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"quickblog/config"
	"quickblog/models"
	"quickblog/providers"
	"quickblog/utils"
)

// Delivery-time optimization applied to every persisted blog image.
var imagePolicy = providers.Transformation{Quality: "auto", Format: "webp", Width: 1280}

const (
	cachePublishedKey  = "cache:blogs:published"
	cacheDetailPrefix  = "cache:blog:detail:"
	maxUploadImageSize = 10 << 20
)

// BlogController handles blog CRUD, the review workflow, comments and
// AI-assisted content generation.
type BlogController struct {
	db     *gorm.DB
	cfg    config.AppConfig
	images providers.ImageUploader
	ai     providers.TextGenerator
	cache  *utils.Cache
}

// NewBlogController creates a BlogController with its collaborators injected.
func NewBlogController(db *gorm.DB, cfg config.AppConfig, images providers.ImageUploader, ai providers.TextGenerator, cache *utils.Cache) *BlogController {
	return &BlogController{db: db, cfg: cfg, images: images, ai: ai, cache: cache}
}

type blogForm struct {
	Title       string `json:"title"`
	SubTitle    string `json:"subTitle"`
	WriterName  string `json:"writerName"`
	Description string `json:"description"`
	Category    string `json:"category"`
	IsPublished bool   `json:"isPublished"`
}

// readBlogForm parses the multipart payload: a "blog" field carrying JSON
// metadata plus an "image" file.
func readBlogForm(ctx *gin.Context) (blogForm, *multipart.FileHeader, error) {
	var form blogForm
	raw := ctx.PostForm("blog")
	if raw == "" {
		return form, nil, fmt.Errorf("missing blog payload")
	}
	if err := json.Unmarshal([]byte(raw), &form); err != nil {
		return form, nil, err
	}
	file, err := ctx.FormFile("image")
	if err != nil {
		return form, nil, err
	}
	return form, file, nil
}

func (form blogForm) incomplete() bool {
	return strings.TrimSpace(form.Title) == "" ||
		strings.TrimSpace(form.WriterName) == "" ||
		strings.TrimSpace(form.Description) == "" ||
		strings.TrimSpace(form.Category) == ""
}

// uploadImage pushes the file to the image provider and returns the
// optimized delivery URL, which is what gets persisted.
func (b *BlogController) uploadImage(ctx *gin.Context, file *multipart.FileHeader) (string, error) {
	if file.Size > maxUploadImageSize {
		return "", fmt.Errorf("Image exceeds the %dMB limit", maxUploadImageSize>>20)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}

	name := file.Filename
	if name == "" {
		name = uuid.NewString()
	}

	path, err := b.images.Upload(ctx.Request.Context(), data, name, b.cfg.ImageKitFolder)
	if err != nil {
		return "", err
	}
	return b.images.URL(path, imagePolicy), nil
}

// SubmitBlogForReview accepts a public writer submission. The blog always
// starts unpublished, pending and flagged for review.
func (b *BlogController) SubmitBlogForReview(ctx *gin.Context) {
	form, file, err := readBlogForm(ctx)
	if err != nil || form.incomplete() {
		utils.Fail(ctx, "Missing required fields")
		return
	}

	image, err := b.uploadImage(ctx, file)
	if err != nil {
		utils.Fail(ctx, err.Error())
		return
	}

	blog := models.Blog{
		Title:              strings.TrimSpace(form.Title),
		SubTitle:           form.SubTitle,
		WriterName:         strings.TrimSpace(form.WriterName),
		Description:        utils.Sanitize(form.Description),
		Category:           form.Category,
		Image:              image,
		IsPublished:        false,
		Status:             models.StatusPending,
		SubmittedForReview: true,
	}
	if err := b.db.Create(&blog).Error; err != nil {
		utils.Fail(ctx, err.Error())
		return
	}

	b.invalidateBlogCaches(0)
	utils.OKMessage(ctx, "Blog submitted for review successfully")
}

// AddBlog creates a blog through the admin path. Visibility comes straight
// from the caller-supplied isPublished flag; status stays at the schema
// default, so an admin-created published blog still reads "pending".
func (b *BlogController) AddBlog(ctx *gin.Context) {
	form, file, err := readBlogForm(ctx)
	if err != nil || form.incomplete() {
		utils.Fail(ctx, "Missing required fields")
		return
	}

	image, err := b.uploadImage(ctx, file)
	if err != nil {
		utils.Fail(ctx, err.Error())
		return
	}

	blog := models.Blog{
		Title:       strings.TrimSpace(form.Title),
		SubTitle:    form.SubTitle,
		WriterName:  strings.TrimSpace(form.WriterName),
		Description: utils.Sanitize(form.Description),
		Category:    form.Category,
		Image:       image,
		IsPublished: form.IsPublished,
		Status:      models.StatusPending,
	}
	if err := b.db.Create(&blog).Error; err != nil {
		utils.Fail(ctx, err.Error())
		return
	}

	b.invalidateBlogCaches(0)
	utils.OKMessage(ctx, "Blog added successfully")
}

// GetAllBlogs returns every published blog.
func (b *BlogController) GetAllBlogs(ctx *gin.Context) {
	if cached, ok := b.cache.GetBytes(cachePublishedKey); ok {
		ctx.Data(200, "application/json", cached)
		return
	}

	var blogs []models.Blog
	if err := b.db.Where("is_published = ?", true).Find(&blogs).Error; err != nil {
		utils.Fail(ctx, err.Error())
		return
	}

	body := gin.H{"success": true, "blogs": blogs}
	b.cache.SetJSON(cachePublishedKey, body, time.Hour)
	ctx.JSON(200, body)
}

// GetBlogByID returns one blog by identifier. A syntactically invalid
// identifier is treated as not found, never as a transport error.
func (b *BlogController) GetBlogByID(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("blogId"), 10, 64)
	if err != nil {
		utils.Fail(ctx, "Blog not found")
		return
	}

	cacheKey := cacheDetailPrefix + strconv.FormatUint(id, 10)
	if cached, ok := b.cache.GetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", cached)
		return
	}

	var blog models.Blog
	if err := b.db.First(&blog, id).Error; err != nil {
		utils.Fail(ctx, "Blog not found")
		return
	}

	body := gin.H{"success": true, "blog": blog}
	b.cache.SetJSON(cacheKey, body, time.Hour)
	ctx.JSON(200, body)
}

// DeleteBlogByID removes a blog and its comments. Comments are deleted
// first so that a failure mid-sequence leaves only orphaned comments,
// which never surface anywhere, rather than a dangling comment chain.
func (b *BlogController) DeleteBlogByID(ctx *gin.Context) {
	var req struct {
		ID uint `json:"id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || req.ID == 0 {
		utils.Fail(ctx, "Missing required fields")
		return
	}

	if err := b.db.Where("blog_id = ?", req.ID).Delete(&models.Comment{}).Error; err != nil {
		utils.Fail(ctx, err.Error())
		return
	}
	if err := b.db.Delete(&models.Blog{}, req.ID).Error; err != nil {
		utils.Fail(ctx, err.Error())
		return
	}

	b.invalidateBlogCaches(req.ID)
	utils.OKMessage(ctx, "Blog deleted successfully")
}

// TogglePublish flips the visibility flag with a single conditional UPDATE
// so concurrent toggles cannot lose each other's writes.
func (b *BlogController) TogglePublish(ctx *gin.Context) {
	var req struct {
		ID uint `json:"id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || req.ID == 0 {
		utils.Fail(ctx, "Missing required fields")
		return
	}

	res := b.db.Model(&models.Blog{}).
		Where("id = ?", req.ID).
		Update("is_published", gorm.Expr("NOT is_published"))
	if res.Error != nil {
		utils.Fail(ctx, res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		utils.Fail(ctx, "Blog not found")
		return
	}

	b.invalidateBlogCaches(req.ID)
	utils.OKMessage(ctx, "Blog status updated")
}

// ReviewBlog applies a review decision. Approve and reject each write their
// target state in one UPDATE of constants; any other action value leaves the
// blog untouched but still reports success.
func (b *BlogController) ReviewBlog(ctx *gin.Context) {
	var req struct {
		ID     uint   `json:"id"`
		Action string `json:"action"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || req.ID == 0 {
		utils.Fail(ctx, "Missing required fields")
		return
	}

	var blog models.Blog
	if err := b.db.First(&blog, req.ID).Error; err != nil {
		utils.Fail(ctx, "Blog not found")
		return
	}

	switch req.Action {
	case "approve":
		err := b.db.Model(&models.Blog{}).Where("id = ?", req.ID).Updates(map[string]interface{}{
			"status":               models.StatusApproved,
			"is_published":         true,
			"submitted_for_review": false,
		}).Error
		if err != nil {
			utils.Fail(ctx, err.Error())
			return
		}
	case "reject":
		err := b.db.Model(&models.Blog{}).Where("id = ?", req.ID).Updates(map[string]interface{}{
			"status":               models.StatusRejected,
			"submitted_for_review": false,
		}).Error
		if err != nil {
			utils.Fail(ctx, err.Error())
			return
		}
	}

	b.invalidateBlogCaches(req.ID)
	utils.OKMessage(ctx, fmt.Sprintf("Blog %sd successfully", req.Action))
}

// GetPendingBlogs lists writer submissions awaiting a review decision.
func (b *BlogController) GetPendingBlogs(ctx *gin.Context) {
	var blogs []models.Blog
	err := b.db.
		Where("submitted_for_review = ? AND status = ?", true, models.StatusPending).
		Order("created_at DESC").
		Find(&blogs).Error
	if err != nil {
		utils.Fail(ctx, err.Error())
		return
	}
	utils.OK(ctx, gin.H{"pendingBlogs": blogs})
}

// AddComment stores a reader comment, unapproved. The blog reference is not
// checked: a comment for a nonexistent blog is accepted and simply never
// surfaces.
func (b *BlogController) AddComment(ctx *gin.Context) {
	var req struct {
		Blog    uint   `json:"blog"`
		Name    string `json:"name"`
		Content string `json:"content"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Blog == 0 ||
		strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Content) == "" {
		utils.Fail(ctx, "Missing required fields")
		return
	}

	comment := models.Comment{
		BlogID:  req.Blog,
		Name:    strings.TrimSpace(req.Name),
		Content: utils.Sanitize(req.Content),
	}
	if err := b.db.Create(&comment).Error; err != nil {
		utils.Fail(ctx, err.Error())
		return
	}
	utils.OKMessage(ctx, "Comment added for review")
}

// GetBlogComments returns the approved comments of one blog, newest first.
func (b *BlogController) GetBlogComments(ctx *gin.Context) {
	var req struct {
		BlogID uint `json:"blogId"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || req.BlogID == 0 {
		utils.Fail(ctx, "Missing required fields")
		return
	}

	var comments []models.Comment
	err := b.db.
		Where("blog_id = ? AND is_approved = ?", req.BlogID, true).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		utils.Fail(ctx, err.Error())
		return
	}
	utils.OK(ctx, gin.H{"comments": comments})
}

// GenerateContent asks the text provider for blog prose. The prompt is
// augmented with a fixed instruction block and the raw output runs through
// a best-effort cleanup pass before it reaches the editor.
func (b *BlogController) GenerateContent(ctx *gin.Context) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		utils.Fail(ctx, "Missing required fields")
		return
	}

	content, err := b.ai.Generate(ctx.Request.Context(), req.Prompt+generationInstructions)
	if err != nil {
		utils.Fail(ctx, err.Error())
		return
	}

	utils.OK(ctx, gin.H{"content": cleanGeneratedContent(content)})
}

// invalidateBlogCaches drops the published listing and, when id is known,
// the detail entry of the mutated blog.
func (b *BlogController) invalidateBlogCaches(id uint) {
	b.cache.InvalidateByPrefix(cachePublishedKey)
	if id != 0 {
		b.cache.InvalidateByPrefix(cacheDetailPrefix + strconv.FormatUint(uint64(id), 10))
	}
}
