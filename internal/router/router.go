package router

import (
	"github.com/gin-gonic/gin"

	"sudooom.daifugo/internal/config"
	"sudooom.daifugo/internal/handler"
	"sudooom.daifugo/internal/middleware"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, roomHandler *handler.RoomHandler) *gin.Engine {
	// 设置 Gin 模式
	if cfg.App.Mode != "" {
		gin.SetMode(cfg.App.Mode)
	}

	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowCredentials,
	))

	// API v1
	v1 := r.Group("/api/v1")
	{
		v1.POST("/rooms", roomHandler.CreateRoom)
		v1.GET("/recommended_rooms", roomHandler.RecommendedRooms)

		rooms := v1.Group("/rooms/:id")
		{
			// 房间生命周期
			rooms.POST("/join", roomHandler.JoinRoom)
			rooms.POST("/start", roomHandler.StartGame)
			rooms.POST("/next_round", roomHandler.NextRound)
			rooms.GET("/state", roomHandler.GetState)
			rooms.GET("/rules", roomHandler.GetRules)
			rooms.PATCH("/rules", roomHandler.PatchRules)
			rooms.GET("/events", roomHandler.DrainEvents)

			// 对局操作
			rooms.POST("/play", roomHandler.Play)
			rooms.POST("/pass", roomHandler.Pass)
			rooms.POST("/discard", roomHandler.Discard)
			rooms.POST("/give", roomHandler.Give)
			rooms.POST("/swap", roomHandler.Swap)
			rooms.POST("/take", roomHandler.Take)
			rooms.POST("/submit_give", roomHandler.SubmitGive)

			// 聊天与在线
			rooms.POST("/message", roomHandler.AddMessage)
			rooms.GET("/messages", roomHandler.Messages)
			rooms.POST("/heartbeat", roomHandler.Heartbeat)

			// 机器人
			rooms.POST("/bots", roomHandler.AddBot)
			rooms.PATCH("/bots/:botId", roomHandler.UpdateBot)
			rooms.DELETE("/bots/:botId", roomHandler.RemoveBot)
			rooms.POST("/join_bot_slot", roomHandler.JoinBotSlot)

			// 代管
			rooms.POST("/takeover/:playerId", roomHandler.Takeover)
			rooms.DELETE("/takeover/:playerId", roomHandler.ReleaseTakeover)
		}
	}

	return r
}
