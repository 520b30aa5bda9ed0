package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kaungmyatmindfulness/origin-food-house-backend/apperr"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/models"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/utils"
)

type UserController struct {
	DB        *gorm.DB
	Log       *logrus.Logger
	JWTSecret []byte
}

func NewUserController(db *gorm.DB, log *logrus.Logger, jwtSecret []byte) *UserController {
	return &UserController{DB: db, Log: log, JWTSecret: jwtSecret}
}

// Register creates a staff account. Store roles are granted separately,
// when the user creates or joins a store.
func (uc *UserController) Register(c *gin.Context) {
	type request struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("%s", err.Error()))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, apperr.Internal(err))
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
	}

	if err := uc.DB.Create(&user).Error; err != nil {
		utils.RespondError(c, apperr.Conflict("email is already registered"))
		return
	}

	uc.Log.Infof("new user registered: %s", user.Email)
	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"user_id": user.ID,
	})
}

// Login verifies credentials and issues a staff identity token.
func (uc *UserController) Login(c *gin.Context) {
	type request struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("%s", err.Error()))
		return
	}

	var user models.User
	err := uc.DB.Where("email = ?", req.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, apperr.Unauthorized("invalid email or password"))
		return
	}
	if err != nil {
		utils.RespondError(c, apperr.Internal(err))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		utils.RespondError(c, apperr.Unauthorized("invalid email or password"))
		return
	}

	token, err := utils.GenerateToken(uc.JWTSecret, user.ID)
	if err != nil {
		utils.RespondError(c, apperr.Internal(err))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
	})
}
