package apitest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"library-client/internal/models"
	"library-client/internal/shared/middleware"
	"library-client/internal/shared/response"
	"library-client/pkg/jwt"
)

// TokenResponse is the body of a successful grant.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

// OAuthHandler serves /oauth.
type OAuthHandler struct {
	db     *DB
	tokens *jwt.Manager
}

func NewOAuthHandler(db *DB, tokens *jwt.Manager) *OAuthHandler {
	return &OAuthHandler{db: db, tokens: tokens}
}

// Token handles POST /oauth/token for the password and refresh_token grants.
func (h *OAuthHandler) Token(c *gin.Context) {
	var (
		user models.User
		err  error
	)
	switch c.PostForm("grant_type") {
	case "password":
		user, err = h.db.Authenticate(c.PostForm("username"), c.PostForm("password"))
	case "refresh_token":
		user, err = h.refresh(c.PostForm("refresh_token"))
	default:
		err = ErrUnsupportedGrant
	}
	if err != nil {
		response.ErrorResponse(c, ToHTTPStatus(err), ToErrorCode(err), err.Error())
		return
	}

	access, err := h.tokens.GenerateAccessToken(user.Username, user.Scope)
	if err != nil {
		response.InternalServerError(c, "failed to issue access token")
		return
	}
	refresh, err := h.tokens.GenerateRefreshToken(user.Username, user.Scope)
	if err != nil {
		response.InternalServerError(c, "failed to issue refresh token")
		return
	}

	response.OK(c, TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(h.tokens.AccessTTL().Seconds()),
		Scope:        user.Scope,
		TokenType:    "Bearer",
	})
}

func (h *OAuthHandler) refresh(token string) (models.User, error) {
	if token == "" || h.db.IsRevoked(token) {
		return models.User{}, ErrInvalidGrant
	}
	claims, err := h.tokens.ValidateRefreshToken(token)
	if err != nil {
		return models.User{}, ErrInvalidGrant
	}
	user, err := h.db.UserByName(claims.Username)
	if errors.Is(err, ErrNotFound) {
		return models.User{}, ErrInvalidGrant
	}
	return user, err
}

// Revoke handles DELETE /oauth/token. It invalidates the calling access token.
func (h *OAuthHandler) Revoke(c *gin.Context) {
	h.db.Revoke(c.GetString(middleware.KeyToken))
	c.Status(http.StatusNoContent)
}

// Me handles GET /oauth/me
func (h *OAuthHandler) Me(c *gin.Context) {
	user, err := h.db.UserByName(c.GetString(middleware.KeyUsername))
	if err != nil {
		response.ErrorResponse(c, ToHTTPStatus(err), ToErrorCode(err), err.Error())
		return
	}
	response.OK(c, user)
}
