package identity

import (
	"errors"
	"net/http"

	"github.com/beka-birhanu/vinom-sim/service"
	"github.com/beka-birhanu/vinom-sim/service/i"
	"github.com/gin-gonic/gin"
)

// IdentityServer handles HTTP requests related to authentication.
type IdentityServer struct {
	authService i.Authenticator
}

// NewIdentityServer creates a new IdentityServer.
func NewIdentityServer(a i.Authenticator) *IdentityServer {
	return &IdentityServer{
		authService: a,
	}
}

// RegisterPublic registers public routes.
func (c *IdentityServer) RegisterPublic(route *gin.RouterGroup) {
	route.POST("/token", c.issueToken)
}

// RegisterProtected registers privileged routes.
func (c *IdentityServer) RegisterProtected(route *gin.RouterGroup) {
	route.GET("/token/claims", c.claims)
}

func (c *IdentityServer) issueToken(ctx *gin.Context) {
	var request TokenRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := c.authService.Issue(request.APIKey)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAPIKey) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while issuing token"})
		return
	}

	ctx.JSON(http.StatusOK, &TokenResponse{Token: token})
}

// claims echoes the claims of the presented token.
func (c *IdentityServer) claims(ctx *gin.Context) {
	claims, _ := ctx.Get(ContextUserClaims)
	ctx.JSON(http.StatusOK, claims)
}
