package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"playmateserver/auth"
	"playmateserver/chat"
	"playmateserver/database"
	"playmateserver/handlers"
	"playmateserver/middlewares"
	"playmateserver/persist"
	"playmateserver/store"
	"playmateserver/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func main() {
	logger, err := utils.InitLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	config, err := database.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if config.JWTKey != "" {
		auth.SetKey(config.JWTKey)
	}

	// Snapshot sink per store, driver chosen by config.
	var sinkFor func(name string) (persist.Sink, error)
	if config.Persistence == "postgres" {
		db, err := database.InitPostgreSQL(config, logger)
		if err != nil {
			logger.Fatal("failed to initialize PostgreSQL", zap.Error(err))
		}
		sinkFor = func(name string) (persist.Sink, error) {
			return persist.NewGormSink(db, name)
		}
	} else {
		if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
			logger.Fatal("failed to create data directory", zap.Error(err))
		}
		sinkFor = func(name string) (persist.Sink, error) {
			return persist.NewFileSink(filepath.Join(config.DataDir, name+".json")), nil
		}
	}
	mustSink := func(name string) persist.Sink {
		sink, err := sinkFor(name)
		if err != nil {
			logger.Fatal("failed to open snapshot sink", zap.String("name", name), zap.Error(err))
		}
		return sink
	}

	matches := store.NewMatchStore(mustSink("matchings"), logger)
	users := store.NewUserStore(mustSink("users"), logger)
	chats := store.NewChatStore(mustSink("chat"), logger)
	posts := store.NewCommunityStore(mustSink("community"), logger)
	reviews := store.NewReviewStore(mustSink("reviews"), logger)
	notifications := store.NewNotificationStore(mustSink("notifications"), logger)
	courts := store.NewCourtStore(mustSink("courts"), logger)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	type loadable interface {
		Load(ctx context.Context) error
		Start()
		Stop()
		Flush(ctx context.Context) error
	}
	stores := []loadable{matches, users, chats, posts, reviews, notifications, courts}
	for _, s := range stores {
		if err := s.Load(loadCtx); err != nil {
			logger.Fatal("failed to load snapshot", zap.Error(err))
		}
		s.Start()
	}
	cancelLoad()

	rdb, err := database.InitRedis(config, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}

	hub := chat.NewHub(chats, logger)
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	snapshots := make([]utils.Snapshotter, len(stores))
	for i, s := range stores {
		snapshots[i] = s
	}
	cronjobs := utils.CronCleaner(matches, snapshots, logger)
	defer cronjobs.Stop()

	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	allowOrigins := config.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/api/health", func(c *gin.Context) {
		handlers.Health(c, matches, users, chats, posts, reviews, notifications, courts, logger)
	})

	router.POST("/api/auth/register", func(c *gin.Context) {
		handlers.Register(c, users, logger)
	})
	router.POST("/api/auth/login", func(c *gin.Context) {
		handlers.Login(c, users, logger)
	})

	api := router.Group("/api", middlewares.AuthMiddleware(logger))

	api.GET("/auth/me", func(c *gin.Context) {
		handlers.Me(c, users, logger)
	})

	api.GET("/users/search", func(c *gin.Context) {
		handlers.SearchUsers(c, users, logger)
	})
	api.GET("/users/:id", func(c *gin.Context) {
		handlers.GetUserProfile(c, users, logger)
	})
	api.PUT("/users/:id", func(c *gin.Context) {
		handlers.UpdateUserProfile(c, users, logger)
	})
	api.DELETE("/users/:id", func(c *gin.Context) {
		handlers.DeactivateUser(c, users, logger)
	})
	api.POST("/users/:id/follow", func(c *gin.Context) {
		handlers.FollowUser(c, users, logger)
	})
	api.DELETE("/users/:id/follow", func(c *gin.Context) {
		handlers.UnfollowUser(c, users, logger)
	})
	api.GET("/users/:id/reviews", func(c *gin.Context) {
		handlers.ReviewsAboutUser(c, reviews, logger)
	})

	api.GET("/matchings", func(c *gin.Context) {
		handlers.ListMatchings(c, matches, logger)
	})
	api.POST("/matchings", func(c *gin.Context) {
		handlers.CreateMatching(c, matches, users, logger)
	})
	api.GET("/matchings/my", func(c *gin.Context) {
		handlers.MyMatchings(c, matches, logger)
	})
	api.GET("/matchings/:id", func(c *gin.Context) {
		handlers.GetMatching(c, matches, logger)
	})
	api.PUT("/matchings/:id", func(c *gin.Context) {
		handlers.UpdateMatching(c, matches, logger)
	})
	api.DELETE("/matchings/:id", func(c *gin.Context) {
		handlers.DeleteMatching(c, matches, logger)
	})
	api.POST("/matchings/:id/join", func(c *gin.Context) {
		handlers.JoinMatching(c, matches, notifications, logger)
	})
	api.POST("/matchings/:id/confirm", func(c *gin.Context) {
		handlers.ConfirmMatching(c, matches, notifications, logger)
	})
	api.POST("/matchings/:id/leave", func(c *gin.Context) {
		handlers.LeaveMatching(c, matches, logger)
	})
	api.POST("/matchings/:id/cancel", func(c *gin.Context) {
		handlers.CancelMatching(c, matches, notifications, logger)
	})
	api.POST("/matchings/:id/complete", func(c *gin.Context) {
		handlers.CompleteMatching(c, matches, logger)
	})

	api.GET("/chat/rooms", func(c *gin.Context) {
		handlers.ListChatRooms(c, chats, logger)
	})
	api.POST("/chat/rooms", func(c *gin.Context) {
		handlers.CreateDirectChatRoom(c, chats, users, logger)
	})
	api.GET("/chat/rooms/:id", func(c *gin.Context) {
		handlers.GetChatRoom(c, chats, logger)
	})
	api.GET("/chat/rooms/:id/messages", func(c *gin.Context) {
		handlers.ListChatMessages(c, chats, logger)
	})
	api.POST("/chat/rooms/:id/messages", func(c *gin.Context) {
		handlers.SendChatMessage(c, chats, hub, logger)
	})
	api.DELETE("/chat/rooms/:id", func(c *gin.Context) {
		handlers.LeaveChatRoom(c, chats, logger)
	})
	api.POST("/chat/session", func(c *gin.Context) {
		handlers.CreateChatSession(c, rdb, logger)
	})

	api.GET("/community/posts", func(c *gin.Context) {
		handlers.ListPosts(c, posts, logger)
	})
	api.POST("/community/posts", func(c *gin.Context) {
		handlers.CreatePost(c, posts, logger)
	})
	api.GET("/community/posts/:id", func(c *gin.Context) {
		handlers.GetPost(c, posts, logger)
	})
	api.PUT("/community/posts/:id", func(c *gin.Context) {
		handlers.UpdatePost(c, posts, logger)
	})
	api.DELETE("/community/posts/:id", func(c *gin.Context) {
		handlers.DeletePost(c, posts, logger)
	})
	api.POST("/community/posts/:id/like", func(c *gin.Context) {
		handlers.ToggleLikePost(c, posts, logger)
	})
	api.POST("/community/posts/:id/comments", func(c *gin.Context) {
		handlers.AddComment(c, posts, logger)
	})

	api.GET("/tennis-courts", func(c *gin.Context) {
		handlers.ListCourts(c, courts, logger)
	})
	api.GET("/tennis-courts/search", func(c *gin.Context) {
		handlers.SearchCourts(c, courts, logger)
	})
	api.GET("/tennis-courts/popular", func(c *gin.Context) {
		handlers.PopularCourts(c, courts, logger)
	})
	api.GET("/tennis-courts/region/:region", func(c *gin.Context) {
		handlers.CourtsByRegion(c, courts, logger)
	})
	api.GET("/tennis-courts/:id", func(c *gin.Context) {
		handlers.GetCourt(c, courts, logger)
	})

	api.POST("/reviews", func(c *gin.Context) {
		handlers.CreateReview(c, reviews, matches, users, notifications, logger)
	})
	api.GET("/reviews/my", func(c *gin.Context) {
		handlers.MyReviews(c, reviews, logger)
	})

	api.GET("/notifications", func(c *gin.Context) {
		handlers.ListNotifications(c, notifications, logger)
	})
	api.PUT("/notifications/:id/read", func(c *gin.Context) {
		handlers.MarkNotificationRead(c, notifications, logger)
	})
	api.PUT("/notifications/read-all", func(c *gin.Context) {
		handlers.MarkAllNotificationsRead(c, notifications, logger)
	})

	router.GET("/ws/chat", func(c *gin.Context) {
		hub.HandleConnection(c.Request.Context(), c.Writer, c.Request, rdb, upgrader)
	})

	srv := &http.Server{
		Addr:    ":" + config.Port,
		Handler: router,
	}
	go func() {
		logger.Info("server listening", zap.String("port", config.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	for _, s := range stores {
		if err := s.Flush(shutdownCtx); err != nil {
			logger.Error("final snapshot flush failed", zap.Error(err))
		}
		s.Stop()
	}
}
