package router

import (
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	commentHandler := handlers.NewCommentHandler()
	clapHandler := handlers.NewClapHandler()
	userHandler := handlers.NewUserHandler()
	tagHandler := handlers.NewTagHandler()
	notificationHandler := handlers.NewNotificationHandler()

	api := r.Group("/api")

	// Public routes
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/auth/magic-link", authHandler.RequestMagicLink) // request a sign-in email
	api.GET("/auth/magic/:token", authHandler.MagicLogin)      // consume the emailed link

	api.GET("/posts", postHandler.List) // ?page=&tag=
	api.GET("/posts/:pid", postHandler.Detail)
	api.GET("/posts/:pid/comments", commentHandler.List)
	api.GET("/posts/:pid/claps", clapHandler.Users)
	api.GET("/posts/:pid/claps/live", clapHandler.Live) // websocket
	api.GET("/tags", tagHandler.List)
	api.GET("/users/:id", userHandler.Profile)

	// Protected routes
	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/me", authHandler.Me)
		authorized.PUT("/me/settings", userHandler.UpdateSettings)

		authorized.POST("/posts", postHandler.Create)
		authorized.PUT("/posts/:pid", postHandler.Update)
		authorized.DELETE("/posts/:pid", postHandler.Delete)

		authorized.POST("/posts/:pid/comments", commentHandler.Create)
		authorized.DELETE("/comments/:cid", commentHandler.Delete)

		authorized.POST("/posts/:pid/clap", clapHandler.Add)
		authorized.DELETE("/posts/:pid/clap", clapHandler.Undo)

		authorized.GET("/notifications", notificationHandler.List)
		authorized.POST("/notifications/:id/read", notificationHandler.Read)
		authorized.POST("/notifications/read-all", notificationHandler.ReadAll)
		authorized.DELETE("/notifications/:id", notificationHandler.Delete)
	}
}
