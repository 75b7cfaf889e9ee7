package controllers

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"quickblog/config"
	"quickblog/models"
	"quickblog/utils"
)

const adminTokenDuration = 72 * time.Hour

// AdminController handles the panel login, moderation views and comment
// moderation actions.
type AdminController struct {
	db  *gorm.DB
	cfg config.AppConfig
}

// NewAdminController creates an AdminController instance.
func NewAdminController(db *gorm.DB, cfg config.AppConfig) *AdminController {
	return &AdminController{db: db, cfg: cfg}
}

// Login checks the configured admin credentials and issues a JWT.
func (a *AdminController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, "Invalid Credentials")
		return
	}

	if !a.credentialsValid(req.Email, req.Password) {
		utils.Fail(ctx, "Invalid Credentials")
		return
	}

	token, err := utils.GenerateToken(a.cfg.JWTSecret, req.Email, adminTokenDuration)
	if err != nil {
		utils.Fail(ctx, err.Error())
		return
	}
	utils.OK(ctx, gin.H{"token": token})
}

func (a *AdminController) credentialsValid(email, password string) bool {
	if a.cfg.AdminEmail == "" || !strings.EqualFold(email, a.cfg.AdminEmail) {
		return false
	}
	if a.cfg.AdminPasswordHash != "" {
		return utils.CheckPassword(a.cfg.AdminPasswordHash, password)
	}
	if a.cfg.AdminPassword == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(a.cfg.AdminPassword)) == 1
}

// GetAllBlogsAdmin lists every blog regardless of publish state, newest first.
func (a *AdminController) GetAllBlogsAdmin(ctx *gin.Context) {
	var blogs []models.Blog
	if err := a.db.Order("created_at DESC").Find(&blogs).Error; err != nil {
		utils.Fail(ctx, err.Error())
		return
	}
	utils.OK(ctx, gin.H{"blogs": blogs})
}

// GetAllComments lists every comment with its blog, newest first.
func (a *AdminController) GetAllComments(ctx *gin.Context) {
	var comments []models.Comment
	if err := a.db.Preload("Blog").Order("created_at DESC").Find(&comments).Error; err != nil {
		utils.Fail(ctx, err.Error())
		return
	}
	utils.OK(ctx, gin.H{"comments": comments})
}

// GetDashboard returns high-level counts plus the most recent blogs.
func (a *AdminController) GetDashboard(ctx *gin.Context) {
	var blogCount, commentCount, draftCount int64
	if err := a.db.Model(&models.Blog{}).Count(&blogCount).Error; err != nil {
		utils.Fail(ctx, err.Error())
		return
	}
	if err := a.db.Model(&models.Comment{}).Count(&commentCount).Error; err != nil {
		utils.Fail(ctx, err.Error())
		return
	}
	if err := a.db.Model(&models.Blog{}).Where("is_published = ?", false).Count(&draftCount).Error; err != nil {
		utils.Fail(ctx, err.Error())
		return
	}

	var recentBlogs []models.Blog
	if err := a.db.Order("created_at DESC").Limit(5).Find(&recentBlogs).Error; err != nil {
		utils.Fail(ctx, err.Error())
		return
	}

	utils.OK(ctx, gin.H{"dashboardData": gin.H{
		"blogs":       blogCount,
		"comments":    commentCount,
		"drafts":      draftCount,
		"recentBlogs": recentBlogs,
	}})
}

// ApproveCommentByID makes one comment visible to readers.
func (a *AdminController) ApproveCommentByID(ctx *gin.Context) {
	var req struct {
		ID uint `json:"id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || req.ID == 0 {
		utils.Fail(ctx, "Missing required fields")
		return
	}

	res := a.db.Model(&models.Comment{}).Where("id = ?", req.ID).Update("is_approved", true)
	if res.Error != nil {
		utils.Fail(ctx, res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		utils.Fail(ctx, "Comment not found")
		return
	}
	utils.OKMessage(ctx, "Comment approved successfully")
}

// DeleteCommentByID removes one comment.
func (a *AdminController) DeleteCommentByID(ctx *gin.Context) {
	var req struct {
		ID uint `json:"id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || req.ID == 0 {
		utils.Fail(ctx, "Missing required fields")
		return
	}

	if err := a.db.Delete(&models.Comment{}, req.ID).Error; err != nil {
		utils.Fail(ctx, err.Error())
		return
	}
	utils.OKMessage(ctx, "Comment deleted successfully")
}
