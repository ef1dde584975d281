// main.go
package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"lineup-board/config"
	"lineup-board/controllers"
	"lineup-board/logger"
	"lineup-board/middleware"
	"lineup-board/store"
	"lineup-board/websocket"
)

func main() {
	cfg := config.Load()
	logger.SetLogLevel(cfg.Env)
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	repo := store.NewRepository(db)

	hub := websocket.NewHub()
	go hub.Run()

	assignments := controllers.NewAssignmentController(repo, hub)
	quarters := controllers.NewQuarterController(repo, cfg.ApplicationURL)

	router := gin.Default()
	router.GET("/health", controllers.Health)

	// the real-time delta channel, one room per match-club
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(hub, c.Writer, c.Request)
	})

	api := router.Group("/api/clubs/:matchClubId", middleware.ClubScope())
	{
		api.GET("/quarters/:quarterId/attendances", assignments.ListQuarterAttendances)
		api.POST("/quarters/:quarterId/autofill", assignments.AutoFillQuarter)
		api.GET("/quarters/:quarterId/qrcode", quarters.BoardQRCode)
		api.POST("/quarters", quarters.EnsureQuarter)

		api.POST("/assignments", assignments.CreateAssignment)
		api.POST("/assignments/batch", assignments.BatchAssign)
		api.POST("/assignments/swap", assignments.SwapAssignment)
		api.POST("/assignments/reset", assignments.ResetQuarter)
		api.DELETE("/assignments/:id", assignments.DeleteAssignment)

		api.PATCH("/attendances/:id/state", assignments.SetAttendanceState)
	}

	logger.Info.Printf("Starting lineup board on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
