package simapi

import (
	"net/http"

	"github.com/beka-birhanu/vinom-sim/service/i"
	"github.com/gin-gonic/gin"
)

// MazeController serves maze descriptions.
type MazeController struct {
	describer i.MazeDescriber
}

func NewMazeController(d i.MazeDescriber) (*MazeController, error) {
	return &MazeController{describer: d}, nil
}

// RegisterPublic registers public routes.
func (mc *MazeController) RegisterPublic(route *gin.RouterGroup) {
	route.GET("/maze", mc.describe)
}

// RegisterProtected registers protected routes.
func (mc *MazeController) RegisterProtected(route *gin.RouterGroup) {}

func (mc *MazeController) describe(ctx *gin.Context) {
	var request MazeRequest
	if err := ctx.ShouldBindQuery(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	description, err := mc.describer.Describe(request.Rows, request.Columns, request.Seed)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, description)
}
