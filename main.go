package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/vinom-sim/api"
	api_i "github.com/beka-birhanu/vinom-sim/api/i"
	"github.com/beka-birhanu/vinom-sim/api/identity"
	simapi "github.com/beka-birhanu/vinom-sim/api/sim"
	"github.com/beka-birhanu/vinom-sim/config"
	logger "github.com/beka-birhanu/vinom-sim/infrastruture/log"
	"github.com/beka-birhanu/vinom-sim/infrastruture/repo"
	"github.com/beka-birhanu/vinom-sim/infrastruture/sortedstorage"
	"github.com/beka-birhanu/vinom-sim/infrastruture/token"
	"github.com/beka-birhanu/vinom-sim/service"
	"github.com/beka-birhanu/vinom-sim/service/i"
	"github.com/beka-birhanu/vinom-sim/simulation"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const queueTTL = 24 * time.Hour

// Global variables for dependencies
var (
	mongoClient       *mongo.Client
	redisClient       *redis.Client
	simConfig         simulation.Config
	episodeRepo       *repo.EpisodeRepo
	sortedQueue       i.SortedQueue
	episodeService    *service.EpisodeService
	mazeService       i.MazeDescriber
	jwtTokenizer      i.Tokenizer
	authService       i.Authenticator
	authController    api_i.Controller
	mazeController    api_i.Controller
	episodeController api_i.Controller
	router            *api.Router
	appLogger         i.Logger
)

func fatal(format string, args ...interface{}) {
	appLogger.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}

func initSimConfig() {
	if config.Envs.SimConfig == "" {
		simConfig = simulation.DefaultConfig()
		appLogger.Info("Using default simulation config")
		return
	}

	cfg, err := simulation.FromYaml(config.Envs.SimConfig)
	if err != nil {
		fatal("Loading simulation config %s: %v", config.Envs.SimConfig, err)
	}
	simConfig = *cfg
	appLogger.Info(fmt.Sprintf("Loaded simulation config from %s", config.Envs.SimConfig))
}

func initMongo(ctx context.Context) {
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%v", config.Envs.DBUser, config.Envs.DBPassword, config.Envs.DBHost, config.Envs.DBPort)

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	mongoClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		fatal("Failed to connect to MongoDB: %v", err)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		fatal("MongoDB ping failed: %v", err)
	}
	appLogger.Info("Connected to MongoDB")
}

func initEpisodeRepo(ctx context.Context) {
	episodeRepo = repo.NewEpisodeRepo(mongoClient, config.Envs.DBName, "episodes")
	if err := episodeRepo.EnsureIndexes(ctx); err != nil {
		fatal("Creating episode indexes: %v", err)
	}
	appLogger.Info("Episode repository initialized")
}

func initSortedQueue() {
	redisClient = redis.NewClient(&redis.Options{Addr: config.Envs.RedisAddr})

	var err error
	sortedQueue, err = sortedstorage.NewRedisSortedQueue(redisClient, queueTTL)
	if err != nil {
		fatal("Connecting to Redis at %s: %v", config.Envs.RedisAddr, err)
	}
	appLogger.Info("Seed queue initialized")
}

func initEpisodeService() {
	episodeLogger, err := logger.New("EPISODES", config.ColorCyan, os.Stdout)
	if err != nil {
		fatal("Creating episode logger: %v", err)
	}

	episodeService, err = service.NewEpisodeService(simConfig, sortedQueue, episodeRepo, episodeLogger, &service.EpisodeOptions{
		Workers: config.Envs.Workers,
	})
	if err != nil {
		fatal("Creating episode service: %v", err)
	}
	appLogger.Info("Episode service initialized")
}

func initMazeService() {
	var err error
	mazeService, err = service.NewMazeService(simConfig.Maze)
	if err != nil {
		fatal("Creating maze service: %v", err)
	}
	appLogger.Info("Maze service initialized")
}

func initJWTTokenizer() {
	jwtTokenizer = token.NewJwtService(config.Envs.JWTSecret, config.Envs.JWTIssuer)
	appLogger.Info("JWT Tokenizer initialized")
}

func initAuthService() {
	var err error
	authService, err = service.NewAuthService(config.Envs.APIKey, jwtTokenizer)
	if err != nil {
		fatal("Creating auth service: %v", err)
	}
	appLogger.Info("Auth service initialized")
}

func initControllers() {
	var err error
	authController = identity.NewIdentityServer(authService)

	if mazeController, err = simapi.NewMazeController(mazeService); err != nil {
		fatal("Creating maze controller: %v", err)
	}
	if episodeController, err = simapi.NewEpisodeController(episodeService); err != nil {
		fatal("Creating episode controller: %v", err)
	}
	appLogger.Info("Controllers initialized")
}

func initRouter(t i.Tokenizer) {
	gin.SetMode(config.Envs.GinMode)
	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:                 "/api",
		Controllers:             []api_i.Controller{authController, mazeController, episodeController},
		AuthorizationMiddleware: identity.Authoriz(t),
	})
	appLogger.Info("Router initialized")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if appLogger, err = logger.New("APP", config.ColorGreen, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	initSimConfig()
	initMongo(connectCtx)
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()
	initEpisodeRepo(connectCtx)
	initSortedQueue()
	defer redisClient.Close()

	initEpisodeService()
	initMazeService()
	initJWTTokenizer()
	initAuthService()
	initControllers()
	initRouter(jwtTokenizer)

	go func() {
		if err := episodeService.Run(ctx); err != nil {
			appLogger.Error(fmt.Sprintf("Episode workers stopped: %v", err))
			stop()
		}
	}()

	// Run HTTP server
	go func() {
		if err := router.Run(); err != nil {
			fatal("Starting server: %v", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down")
}
