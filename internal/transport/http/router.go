package http

import (
	"net/http"
	"time"

	"github.com/opencircle/social-service/internal/security"
	httpmw "github.com/opencircle/social-service/internal/transport/http/middleware"
	"github.com/opencircle/social-service/internal/transport/ws"
	"github.com/opencircle/social-service/pkg/httputil"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(h *Handler, wsServer *ws.Server, verifier security.Verifier, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(httputil.MiddlewareRequestID)
	r.Use(httpmw.AccessLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// WS endpoints authenticate themselves via ?token=
	r.Get("/ws/chat/{chatId}", wsServer.HandleChat)
	r.Get("/ws/notifications", wsServer.HandleNotifications)

	// Public reads
	r.Get("/chat/public", h.GetPublicChat)
	r.Get("/chat/messages/{chatId}", h.GetMessages)
	r.Get("/profile/{id}/followers", h.GetFollowers)
	r.Get("/profile/{id}/following", h.GetFollowing)

	// Everything below requires a bearer token
	r.Group(func(pr chi.Router) {
		pr.Use(httpmw.Auth(verifier))
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Get("/posts/feed", h.GetFeed)

		pr.Route("/chat", func(cr chi.Router) {
			cr.Post("/message", h.SendMessage)
			cr.Get("/rooms", h.GetRooms)
			cr.Post("/rooms", h.CreateRoom)
		})

		pr.Route("/notifications", func(nr chi.Router) {
			nr.Get("/", h.ListNotifications)
			nr.Get("/unread-count", h.GetUnreadCount)
			nr.Post("/read-all", h.MarkAllRead)
			nr.Post("/{id}/read", h.MarkRead)
		})

		pr.Post("/profile/{id}/follow", h.ToggleFollow)
	})

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
