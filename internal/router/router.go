package router

import (
	"instasphere/internal/changefeed"
	"instasphere/internal/config"
	"instasphere/internal/handler"
	"instasphere/internal/middleware"
	"instasphere/internal/service"
	"instasphere/internal/storage"
	"instasphere/internal/sync"

	"github.com/gin-gonic/gin"
)

func InitRouter(cfg *config.Config, store storage.Store) *gin.Engine {
	r := gin.Default()

	pub := changefeed.NewPublisher()
	sub := changefeed.NewSubscriber()

	emailSvc := service.NewEmailService(cfg.SMTP)
	userSvc := service.NewUserService(emailSvc)
	notifySvc := service.NewNotificationService(pub)
	channelSvc := service.NewChannelService(pub)
	messageSvc := service.NewMessageService(notifySvc, pub)
	dmSvc := service.NewDirectMessageService(notifySvc, pub)
	postSvc := service.NewPostService(pub)
	verifySvc := service.NewVerificationService(emailSvc, pub)
	presenceSvc := service.NewPresenceService(pub)

	user := handler.NewUserHandler(userSvc)
	email := handler.NewEmailHandler(emailSvc)
	channel := handler.NewChannelHandler(channelSvc, userSvc)
	message := handler.NewMessageHandler(messageSvc, userSvc)
	dm := handler.NewDMHandler(dmSvc, userSvc)
	post := handler.NewPostHandler(postSvc, userSvc)
	notify := handler.NewNotificationHandler(notifySvc)
	verify := handler.NewVerificationHandler(verifySvc, userSvc)
	presence := handler.NewPresenceHandler(presenceSvc, userSvc)
	upload := handler.NewUploadHandler(store)
	explore := handler.NewExploreHandler(dmSvc, postSvc)
	ws := handler.NewWSHandler(userSvc, sync.Backends{
		Chat:          messageSvc,
		Presence:      presenceSvc,
		Channels:      channelSvc,
		DMs:           dmSvc,
		Posts:         postSvc,
		Notifications: notifySvc,
	}, sub, presenceSvc)

	// 上传后的图片直接走静态目录
	r.Static("/storage", cfg.StorageRoot)

	// 邮件相关接口
	emailGroup := r.Group("/api/email")
	{
		emailGroup.POST("/:scope/code", email.SendCode)
	}

	// 用户相关接口
	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", user.Register)
		userGroup.POST("/login", user.Login)
		userGroup.POST("/reset", user.ResetPassword)
	}

	// token相关接口
	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", user.TokenRefresh)
	}

	// 登录态接口
	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.AuthMiddleware())
	{
		authGroup.GET("/me", user.Me)
		authGroup.POST("/logout", user.Logout)
		authGroup.POST("/change-password", user.ChangePassword)
	}

	// 频道相关接口
	channelGroup := r.Group("/api/channel")
	channelGroup.Use(middleware.AuthMiddleware())
	{
		channelGroup.GET("/list", channel.List)
		channelGroup.POST("/create", channel.Create)
		channelGroup.DELETE("/:id", channel.Delete)
		channelGroup.GET("/:id/messages", message.List)
	}

	// 频道消息相关接口
	messageGroup := r.Group("/api/message")
	messageGroup.Use(middleware.AuthMiddleware())
	{
		messageGroup.POST("/send", message.Send)
		messageGroup.DELETE("/:id", message.Delete)
		messageGroup.POST("/:id/like", message.Like)
	}

	// 私信相关接口
	dmGroup := r.Group("/api/dm")
	dmGroup.Use(middleware.AuthMiddleware())
	{
		dmGroup.GET("/partners", dm.Partners)
		dmGroup.GET("/conversation/:id", dm.Conversation)
		dmGroup.POST("/send", dm.Send)
		dmGroup.DELETE("/:id", dm.Delete)
	}

	// 帖子相关接口
	postGroup := r.Group("/api/post")
	postGroup.Use(middleware.AuthMiddleware())
	{
		postGroup.GET("/list", post.List)
		postGroup.POST("/create", post.Create)
		postGroup.DELETE("/:id", post.Delete)
		postGroup.POST("/:id/like", post.Like)
		postGroup.POST("/:id/share", post.Share)
		postGroup.GET("/:id/comments", post.Comments)
		postGroup.POST("/:id/comment", post.AddComment)
	}

	// 评论相关接口
	commentGroup := r.Group("/api/comment")
	commentGroup.Use(middleware.AuthMiddleware())
	{
		commentGroup.DELETE("/:id", post.DeleteComment)
		commentGroup.POST("/:id/like", post.CommentLike)
	}

	// 通知相关接口
	notifyGroup := r.Group("/api/notification")
	notifyGroup.Use(middleware.AuthMiddleware())
	{
		notifyGroup.GET("/list", notify.List)
		notifyGroup.POST("/:id/read", notify.MarkRead)
		notifyGroup.POST("/read-all", notify.MarkAllRead)
	}

	// 认证相关接口
	verifyGroup := r.Group("/api/verification")
	verifyGroup.Use(middleware.AuthMiddleware())
	{
		verifyGroup.GET("/status", verify.Status)
		verifyGroup.POST("/request-code", verify.RequestCode)
		verifyGroup.POST("/verify-email", verify.VerifyEmail)
		verifyGroup.POST("/admin", verify.AdminVerify)
	}

	// 在线状态相关接口
	presenceGroup := r.Group("/api/presence")
	presenceGroup.Use(middleware.AuthMiddleware())
	{
		presenceGroup.POST("/heartbeat", presence.Heartbeat)
		presenceGroup.POST("/offline", presence.Offline)
		presenceGroup.GET("/online", presence.Online)
	}

	// 图片上传 + 发现页 + 实时网关
	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.AuthMiddleware())
	{
		apiGroup.POST("/upload-image", upload.UploadImage)
		apiGroup.GET("/explore", explore.Feed)
		apiGroup.GET("/ws", ws.Serve)
	}

	return r
}
