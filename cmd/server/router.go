package server

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/murmurchat/murmur/internal/handlers"
	"github.com/murmurchat/murmur/internal/middleware"
	"github.com/murmurchat/murmur/pkg/auth"
)

func APIEndpoints(
	r *gin.Engine,
	jwtMgr *auth.JWTManager,
	rdb *redis.Client,
	authH *handlers.AuthHandler,
	userH *handlers.UserHandler,
	chatH *handlers.ChatHandler,
	msgH *handlers.HTTPMessageHandler,
	wsH *handlers.WebSocketHandler,
) {
	authRequired := middleware.AuthMiddleware(jwtMgr, rdb)

	// Auth endpoints
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authH.Register)
		authGroup.POST("/login", authH.Login)
		authGroup.GET("/refresh", authH.Refresh)
		authGroup.GET("/logout", authRequired, authH.Logout)
	}

	// User endpoints
	users := r.Group("/users", authRequired)
	{
		users.GET("", userH.SearchUsers)
		users.GET("/me", userH.GetMe)
		users.PATCH("/me", userH.UpdateMe)
		users.PATCH("/me/email", userH.UpdateEmail)
		users.PATCH("/me/password", userH.UpdatePassword)
		users.PUT("/me/profile-picture", userH.SetProfilePicture)
		users.DELETE("/me/profile-picture", userH.RemoveProfilePicture)
	}

	// Chat endpoints
	chats := r.Group("/chats", authRequired)
	{
		chats.POST("", chatH.CreateChat)
		chats.GET("", chatH.GetMyChats)
		chats.GET("/:id", chatH.GetChat)
		chats.PATCH("/:id", chatH.UpdateChat)
		chats.DELETE("/:id", chatH.DeleteChat)
		chats.GET("/:id/participants", chatH.GetParticipants)
		chats.POST("/:id/participants", chatH.AddParticipants)
		chats.DELETE("/:id/participants/:userId", chatH.RemoveParticipant)
		chats.GET("/:id/messages", chatH.GetChatMessages)
	}

	// Message endpoints
	messages := r.Group("/messages", authRequired)
	{
		messages.DELETE("/:id", msgH.DeleteMessage)
	}

	// Realtime
	r.GET("/ws", middleware.WSAuthMiddleware(jwtMgr, rdb), wsH.HandleWebSocket)
}
