package gateway

import (
	"net/http"

	"github.com/example/homecook/pkg/auth"
	"github.com/gin-gonic/gin"
)

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

type confirmRequest struct {
	Token string `json:"token" binding:"required"`
}

// signUp godoc
// @Summary  Create an account; a confirmation email follows
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    account body auth.SignUpInput true "Account"
// @Success  201 {object} models.User
// @Router   /auth/signup [post]
func (g *Gateway) signUp(c *gin.Context) {
	var req auth.SignUpInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := g.auth.SignUp(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// signIn godoc
// @Summary  Sign in with email and password
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    credentials body signInRequest true "Credentials"
// @Success  200 {object} auth.Session
// @Failure  403 {object} map[string]string "email not confirmed"
// @Router   /auth/signin [post]
func (g *Gateway) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := g.auth.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (g *Gateway) signOut(c *gin.Context) {
	token := c.GetString(tokenKey)
	if token == "" {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	if err := g.auth.SignOut(c.Request.Context(), token); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (g *Gateway) resendConfirmation(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := g.auth.ResendConfirmation(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (g *Gateway) confirmEmail(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := g.auth.ConfirmEmail(c.Request.Context(), req.Token); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// oauth redirects to the provider's authorize page.
func (g *Gateway) oauth(c *gin.Context) {
	url, err := g.auth.SignInWithOAuth(c.Request.Context(), c.Param("provider"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

func (g *Gateway) me(c *gin.Context) {
	p := principal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}
	c.JSON(http.StatusOK, p)
}
