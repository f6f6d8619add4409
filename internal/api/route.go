package api

import (
	"Ripple/internal/api/middleware"
	"Ripple/internal/pkg/logger"
	"Ripple/internal/pkg/security"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, validator *security.Validator) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	auth := middleware.AuthMiddleware(validator)
	authOpt := middleware.AuthOptionalMiddleware(validator)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		userGroup := apiGroup.Group("/user")
		{
			// 未登录返回空数据而非报错
			authOptGroup := userGroup.Group("")
			authOptGroup.Use(authOpt)
			{
				authOptGroup.GET("/me", group.UserHandler.Me)
				authOptGroup.GET("/discovery", group.UserHandler.Discovery)
			}

			authGroup := userGroup.Group("")
			authGroup.Use(auth)
			{
				authGroup.POST("/sync", group.UserHandler.Sync)
			}
		}

		convGroup := apiGroup.Group("/conversations")
		{
			authOptGroup := convGroup.Group("")
			authOptGroup.Use(authOpt)
			{
				authOptGroup.GET("", group.ConversationHandler.ListMine)
				authOptGroup.GET("/:id", group.ConversationHandler.Get)
			}

			authGroup := convGroup.Group("")
			authGroup.Use(auth)
			{
				authGroup.POST("/direct", group.ConversationHandler.CreateDirect)
				authGroup.POST("/group", group.ConversationHandler.CreateGroup)
				authGroup.POST("/:id/read", group.ConversationHandler.MarkRead)
			}
		}

		msgGroup := apiGroup.Group("/messages")
		{
			authOptGroup := msgGroup.Group("")
			authOptGroup.Use(authOpt)
			{
				authOptGroup.GET("", group.MessageHandler.List)
			}

			authGroup := msgGroup.Group("")
			authGroup.Use(auth)
			{
				authGroup.POST("", group.MessageHandler.Send)
				authGroup.POST("/file", group.MessageHandler.SendFile)
				authGroup.POST("/voice", group.MessageHandler.SendVoice)
				authGroup.DELETE("/:id", group.MessageHandler.Delete)
				authGroup.POST("/upload-url", group.MessageHandler.UploadURL)
			}
		}

		reactionGroup := apiGroup.Group("/reactions")
		reactionGroup.Use(auth)
		{
			reactionGroup.POST("/toggle", group.ReactionHandler.Toggle)
		}

		presenceGroup := apiGroup.Group("/presence")
		presenceGroup.Use(authOpt)
		{
			presenceGroup.POST("/heartbeat", group.SignalHandler.Heartbeat)
			presenceGroup.POST("/end", group.SignalHandler.EndSession)
			presenceGroup.GET("/online", group.SignalHandler.Online)
		}

		typingGroup := apiGroup.Group("/typing")
		typingGroup.Use(authOpt)
		{
			typingGroup.POST("/ping", group.SignalHandler.Ping)
			typingGroup.GET("", group.SignalHandler.Typing)
		}
	}

	return r
}
