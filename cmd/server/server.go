package server

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/murmurchat/murmur/internal/database"
	"github.com/murmurchat/murmur/internal/handlers"
	ws "github.com/murmurchat/murmur/internal/websocket"
	"github.com/murmurchat/murmur/pkg/auth"
)

type Server struct {
	Router     *gin.Engine
	DB         *database.Database
	Redis      *redis.Client
	JWTManager *auth.JWTManager
	Hub        *ws.Hub
}

func NewServer() *Server {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println(".env not found, using environment variables")
		}
	}

	db := &database.Database{}
	if err := db.Connect(); err != nil {
		log.Fatalf("Postgres connect failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}

	jwtMgr := auth.NewJWTManager(
		os.Getenv("JWT_SECRET"),
		envHours("JWT_EXPIRY_HOURS", 24),
		envHours("REFRESH_EXPIRY_HOURS", 24*7),
	)

	hub := ws.NewHub(handlers.NewPresenceTracker(db))
	go hub.Run()

	msgH := handlers.NewMessageHandler(db, hub)

	authH := handlers.NewAuthHandler(db, jwtMgr, rdb)
	userH := handlers.NewUserHandler(db)
	chatH := handlers.NewChatHandler(db, hub)
	httpMsgH := handlers.NewHTTPMessageHandler(msgH)
	wsH := handlers.NewWebSocketHandler(db, hub, msgH)

	router := gin.Default()
	APIEndpoints(router, jwtMgr, rdb, authH, userH, chatH, httpMsgH, wsH)

	return &Server{
		Router:     router,
		DB:         db,
		Redis:      rdb,
		JWTManager: jwtMgr,
		Hub:        hub,
	}
}

func (s *Server) Run() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s", port)
	if err := s.Router.Run(":" + port); err != nil {
		log.Fatalf("Server run error: %v", err)
	}
}

func envHours(key string, fallback int) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Duration(fallback) * time.Hour
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return time.Duration(fallback) * time.Hour
	}
	return time.Duration(hours) * time.Hour
}
