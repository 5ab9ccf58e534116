package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jgrady/homekeep/internal/auth"
	"github.com/jgrady/homekeep/internal/handler"
	"github.com/jgrady/homekeep/internal/middleware"
	"github.com/jgrady/homekeep/internal/store"
	ws "github.com/jgrady/homekeep/internal/websocket"
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	authH       *handler.AuthHandler
	userH       *handler.UserHandler
	householdH  *handler.HouseholdHandler
	choreH      *handler.ChoreHandler
	eventH      *handler.EventHandler
	billH       *handler.BillHandler
	shoppingH   *handler.ShoppingHandler
	pictureH    *handler.ProfilePictureHandler
	overviewH   *handler.OverviewHandler
	userStore   *store.UserStore
	tokens      *auth.TokenIssuer
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, tokens *auth.TokenIssuer, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	householdStore := store.NewHouseholdStore(db)
	choreStore := store.NewChoreStore(db)
	eventStore := store.NewEventStore(db)
	billStore := store.NewBillStore(db)
	shoppingStore := store.NewShoppingStore(db)
	pictureStore := store.NewProfilePictureStore(db)

	return &Server{
		db:          db,
		hub:         hub,
		authH:       handler.NewAuthHandler(userStore, tokens, logger.With("component", "auth")),
		userH:       handler.NewUserHandler(userStore, householdStore, pictureStore, logger.With("component", "user")),
		householdH:  handler.NewHouseholdHandler(householdStore, userStore, hub, logger.With("component", "household")),
		choreH:      handler.NewChoreHandler(choreStore, hub, logger.With("component", "chore")),
		eventH:      handler.NewEventHandler(eventStore, userStore, hub, logger.With("component", "event")),
		billH:       handler.NewBillHandler(billStore, hub, logger.With("component", "bill")),
		shoppingH:   handler.NewShoppingHandler(shoppingStore, hub, logger.With("component", "shopping")),
		pictureH:    handler.NewProfilePictureHandler(pictureStore, logger.With("component", "profile_picture")),
		overviewH:   handler.NewOverviewHandler(choreStore, eventStore, billStore, shoppingStore, logger.With("component", "overview")),
		userStore:   userStore,
		tokens:      tokens,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter exposes the limiter for periodic cleanup.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/signup", s.rateLimitedHandler(s.authH.Signup))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes behind the session guard
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.tokens, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Routes any authenticated user may call, household or not
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/user", s.userH.Get)
	mux.HandleFunc("PUT /api/user", s.userH.Update)
	mux.HandleFunc("PUT /api/user/password", s.userH.UpdatePassword)
	mux.HandleFunc("PUT /api/user/profile-picture", s.userH.SetProfilePicture)
	mux.HandleFunc("DELETE /api/user", s.userH.Delete)
	mux.HandleFunc("GET /api/profile-pictures", s.pictureH.List)
	mux.HandleFunc("POST /api/households", s.householdH.Create)
	mux.HandleFunc("POST /api/households/join", s.householdH.Join)

	// Everything below needs household membership
	household := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, middleware.RequireHousehold(h))
	}

	household("POST /api/households/leave", s.householdH.Leave)
	household("GET /api/households/current", s.householdH.Current)
	household("DELETE /api/households/current", s.householdH.Delete)

	household("POST /api/chores", s.choreH.Create)
	household("GET /api/chores", s.choreH.List)
	household("GET /api/chores/{id}", s.choreH.Get)
	household("PUT /api/chores/{id}", s.choreH.Update)
	household("DELETE /api/chores/{id}", s.choreH.Delete)
	household("PUT /api/chores/{id}/done", s.choreH.SetDone)

	household("POST /api/events", s.eventH.Create)
	household("GET /api/events", s.eventH.List)
	household("GET /api/events/{id}", s.eventH.Get)
	household("PUT /api/events/{id}", s.eventH.Update)
	household("DELETE /api/events/{id}", s.eventH.Delete)

	household("POST /api/bills", s.billH.Create)
	household("GET /api/bills", s.billH.List)
	household("GET /api/bills/{id}", s.billH.Get)
	household("PUT /api/bills/{id}", s.billH.Update)
	household("DELETE /api/bills/{id}", s.billH.Delete)
	household("PUT /api/bills/{id}/paid", s.billH.SetPaid)

	household("POST /api/shopping", s.shoppingH.Create)
	household("GET /api/shopping", s.shoppingH.List)
	household("GET /api/shopping/{id}", s.shoppingH.Get)
	household("PUT /api/shopping/{id}", s.shoppingH.Update)
	household("DELETE /api/shopping/{id}", s.shoppingH.Delete)
	household("PUT /api/shopping/{id}/bought", s.shoppingH.SetBought)

	household("GET /api/overview", s.overviewH.Get)

	household("GET /ws", ws.Handle(s.hub, s.logger.With("component", "websocket")))
}
