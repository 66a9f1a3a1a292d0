package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Vaibhav1992/Memelord/filter"
	"github.com/Vaibhav1992/Memelord/game"
	"github.com/Vaibhav1992/Memelord/memes"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.SetTrustedProxies([]string{"127.0.0.1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})

	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}
	if len(allowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
		corsConfig.AllowCredentials = true
	}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func main() {
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	addr, exists := os.LookupEnv("ADDR")
	if !exists {
		addr = ":3001"
	}

	memesDir, exists := os.LookupEnv("MEMES_DIR")
	if !exists {
		memesDir = "assets/memes"
	}

	var allowedOrigins []string
	if origins, exists := os.LookupEnv("ALLOWED_ORIGINS"); exists {
		allowedOrigins = strings.Split(origins, ",")
	}

	catalog, err := memes.Load(memesDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", memesDir).Msg("failed to load meme catalog")
	}
	log.Info().Int("memes", catalog.Size()).Msg("meme catalog loaded")

	lobby := game.NewLobby(catalog, filter.Default(), game.NewTickerGen())
	lobbyStarted := make(chan struct{})
	go lobby.LobbyActor(lobbyStarted)
	<-lobbyStarted

	r := CreateServer(allowedOrigins)
	r.Static("/memes", memesDir)

	gameHandler := game.NewGameHandler(lobby)
	{
		api := r.Group("/api")
		api.POST("/rooms", gameHandler.CreateRoomHandler)
		api.POST("/rooms/:id/join", gameHandler.JoinRoomHandler)
		api.GET("/rooms/:code/info", gameHandler.RoomInfoHandler)
	}
	r.GET("/ws", gameHandler.SocketHandler)

	go func() {
		if err := r.Run(addr); err != nil {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()
	log.Info().Str("addr", addr).Msg("server started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)
	<-sigCh
	log.Info().Msg("shutdown signal received")
}
