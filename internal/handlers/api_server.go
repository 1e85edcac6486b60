// internal/handlers/api_server.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jason-s-yu/sevens/internal/game"
	"github.com/jason-s-yu/sevens/internal/middleware"
	"github.com/sirupsen/logrus"
)

// GameServer is a high-level struct that holds the session registry and the websocket hub.
type GameServer struct {
	Registry *game.Registry
	Hub      *Hub
	Logger   *logrus.Logger

	// OriginPatterns is passed to websocket.Accept.
	OriginPatterns []string
}

// NewGameServer builds a server around a fresh registry and subscribes the hub to it.
func NewGameServer(logger *logrus.Logger) *GameServer {
	reg := game.NewRegistry()
	hub := NewHub(logger)
	reg.AddListener(hub)
	return &GameServer{
		Registry:       reg,
		Hub:            hub,
		Logger:         logger,
		OriginPatterns: []string{"*"},
	}
}

// OriginPatterns converts CORS origins like "https://example.com" into websocket host patterns.
func OriginPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimPrefix(o, "https://")
		o = strings.TrimPrefix(o, "http://")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

// NewRouter wires every API route behind recovery, heartbeat, CORS and request logging.
func NewRouter(gs *GameServer, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	r.Use(middleware.LogMiddleware(gs.Logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/create_game", CreateGameHandler(gs))
		r.Post("/join_game", JoinGameHandler(gs))
		r.Post("/start_game", StartGameHandler(gs))
		r.Post("/play_card", PlayCardHandler(gs))
		r.Post("/pass_turn", PassTurnHandler(gs))
		r.Get("/game_state", GameStateHandler(gs))
		r.Get("/ws", GameWSHandler(gs))
	})
	return r
}
