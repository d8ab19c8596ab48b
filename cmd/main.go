package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"roomchat/backend/internal/api/handler"
	"roomchat/backend/internal/audit"
	"roomchat/backend/internal/chathub"
	"roomchat/backend/internal/config"
	"roomchat/backend/internal/storage"
	"roomchat/backend/internal/store"
)

func main() {
	log.Println("Starting RoomChat Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	// 1. Store bootstrap with bounded retry. Exhaustion is fatal: the
	// process terminates instead of running with partial connectivity.
	st, err := store.NewConnector(cfg).Connect()
	if err != nil {
		log.Fatalf("Failed to acquire store connection: %v", err)
	}
	defer st.Close()

	if err := st.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database and Redis connections established, migrations complete.")

	// 2. Storage, audit sink and hub.
	s := storage.NewStorageService(st.DB, st.Redis)
	sink := audit.NewSink(st.Redis)

	hub := chathub.NewManagerService(s)
	hub.Audit = sink
	go hub.Run()

	// 3. Gin routing.
	r := gin.Default()
	h := handler.NewHandler(hub, s, sink, []byte(cfg.JWTSecret))

	r.GET("/token", h.GetToken)
	r.GET("/ws", h.ServeWebSocket)

	r.POST("/rooms", h.ResolveRoom)
	r.GET("/rooms", h.ListRooms)
	r.DELETE("/rooms/:id", h.LeaveRoom)
	r.GET("/rooms/:id/messages", h.ListMessages)
	r.POST("/rooms/:id/messages", h.SendMessage)
	r.DELETE("/messages/:id", h.DeleteMessage)

	server := &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
