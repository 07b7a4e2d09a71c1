package simapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	dmn "github.com/beka-birhanu/vinom-sim/domain"
	"github.com/beka-birhanu/vinom-sim/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestTimeout = 2 * time.Second

// EpisodeController queues episodes and reads them back.
type EpisodeController struct {
	producer i.EpisodeProducer
}

func NewEpisodeController(p i.EpisodeProducer) (*EpisodeController, error) {
	return &EpisodeController{producer: p}, nil
}

// RegisterPublic registers public routes.
func (ec *EpisodeController) RegisterPublic(route *gin.RouterGroup) {}

// RegisterProtected registers protected routes.
func (ec *EpisodeController) RegisterProtected(route *gin.RouterGroup) {
	episodes := route.Group("/episodes")
	{
		episodes.POST("", ec.enqueue)
		episodes.GET("", ec.recent)
		episodes.GET("/:ID", ec.episode)
	}
	route.GET("/stream", ec.stream)
}

func (ec *EpisodeController) enqueue(ctx *gin.Context) {
	var request EpisodeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	id, err := ec.producer.Enqueue(timeoutCtx, *request.Seed)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while queueing episode"})
		return
	}

	ctx.JSON(http.StatusAccepted, &EpisodeQueuedResponse{ID: id, Seed: *request.Seed})
}

func (ec *EpisodeController) episode(ctx *gin.Context) {
	ID, err := uuid.Parse(ctx.Params.ByName("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	episode, err := ec.producer.Episode(timeoutCtx, ID)
	if err != nil {
		if errors.Is(err, dmn.ErrEpisodeNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while loading episode"})
		return
	}

	ctx.JSON(http.StatusOK, episode)
}

func (ec *EpisodeController) recent(ctx *gin.Context) {
	var request RecentRequest
	if err := ctx.ShouldBindQuery(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	episodes, err := ec.producer.Recent(timeoutCtx, request.Limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while listing episodes"})
		return
	}
	if episodes == nil {
		episodes = []*dmn.Episode{}
	}

	ctx.JSON(http.StatusOK, episodes)
}
