package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"k8s.io/klog/v2"

	"github.com/gbif/occurrence-annotation/dao/model"
	"github.com/gbif/occurrence-annotation/dao/store"
	"github.com/gbif/occurrence-annotation/internal/resputil"
	"github.com/gbif/occurrence-annotation/internal/util"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewAuthMgr)
}

type AuthMgr struct {
	name  string
	users store.UserService
}

func NewAuthMgr(conf RegisterConfig) Manager {
	return &AuthMgr{
		name:  "auth",
		users: store.NewUserService(conf.DB),
	}
}

func (mgr *AuthMgr) GetName() string { return mgr.name }

func (mgr *AuthMgr) RegisterPublic(g *gin.RouterGroup) {
	g.POST("/login", mgr.Login)
	g.POST("/signup", mgr.Signup)
}

func (mgr *AuthMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *AuthMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	LoginReq struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	SignupReq struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required,min=8"`
	}

	TokenResp struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
)

// Login godoc
// @Summary Exchange username and password for tokens
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} resputil.Response[TokenResp]
// @Router /v1/occurrence/annotation/auth/login [post]
func (mgr *AuthMgr) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	user, err := mgr.users.GetByName(req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			resputil.HTTPError(c, http.StatusUnauthorized, "invalid credentials", resputil.InvalidCredentials)
			return
		}
		handleStoreError(c, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		resputil.HTTPError(c, http.StatusUnauthorized, "invalid credentials", resputil.InvalidCredentials)
		return
	}
	mgr.issueTokens(c, user)
}

// Signup godoc
// @Summary Register a new user and return tokens
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} resputil.Response[TokenResp]
// @Router /v1/occurrence/annotation/auth/signup [post]
func (mgr *AuthMgr) Signup(c *gin.Context) {
	var req SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, fmt.Sprintf("failed to bind request: %v", err), resputil.InvalidRequest)
		return
	}
	if _, err := mgr.users.GetByName(req.Username); err == nil {
		resputil.HTTPError(c, http.StatusConflict, "user already exists with the given name", resputil.NotSpecified)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		resputil.Error(c, fmt.Sprintf("failed to hash password: %v", err), resputil.NotSpecified)
		return
	}
	user := model.User{Name: req.Username, Password: string(hash), Role: model.RoleUser}
	if err := mgr.users.Create(&user); err != nil {
		handleStoreError(c, err)
		return
	}
	klog.Infof("user %s signed up", user.Name)
	mgr.issueTokens(c, &user)
}

func (mgr *AuthMgr) issueTokens(c *gin.Context, user *model.User) {
	msg := util.JWTMessage{Username: user.Name, Role: user.Role}
	access, refresh, err := util.GetTokenMgr().CreateTokens(&msg)
	if err != nil {
		resputil.Error(c, fmt.Sprintf("failed to create tokens: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, TokenResp{AccessToken: access, RefreshToken: refresh})
}
