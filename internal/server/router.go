package server

import (
	"net/http"

	"adaptrack-server/internal/lists"
	"adaptrack-server/internal/match"
	"adaptrack-server/internal/notify"
	"adaptrack-server/internal/recommend"
	"adaptrack-server/internal/repos"
	"adaptrack-server/internal/routes"
	"adaptrack-server/pkg/cache"
	"adaptrack-server/pkg/session"
)

type Server struct {
	deps           routes.Deps
	allowedOrigins []string
}

func New(r *repos.Repository, c cache.Cache, sessions session.Codec, matcher *match.Matcher,
	listSvc *lists.Service, recSvc *recommend.Service, registry *notify.Registry,
	allowedOrigins []string) *Server {
	return &Server{
		deps: routes.Deps{
			Repo:          r,
			Cache:         c,
			Sessions:      sessions,
			Matcher:       matcher,
			Lists:         listSvc,
			Recommend:     recSvc,
			Notifications: registry,
		},
		allowedOrigins: allowedOrigins,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	sd := s.deps
	auth := requireAuth(sd.Sessions)

	// Endpoints declared here for easy scanning
	mux.HandleFunc("GET /health", routes.Health(sd))

	mux.HandleFunc("POST /auth/register", routes.Register(sd))
	mux.HandleFunc("POST /auth/login", routes.Login(sd))
	mux.HandleFunc("POST /auth/logout", auth(routes.Logout(sd)))

	mux.HandleFunc("GET /users/preferences", auth(routes.Preferences(sd)))
	mux.HandleFunc("PUT /users/preferences", auth(routes.UpdatePreferences(sd)))

	mux.HandleFunc("GET /search/adaptations", auth(routes.SearchAdaptations(sd)))
	mux.HandleFunc("GET /adaptations/details", auth(routes.AdaptationDetails(sd)))
	mux.HandleFunc("POST /adaptations", auth(routes.ConfirmAdaptation(sd)))
	mux.HandleFunc("GET /adaptations/{id}", auth(routes.AdaptationByID(sd)))
	mux.HandleFunc("GET /books/{id}/adaptations", auth(routes.BookAdaptations(sd)))

	mux.HandleFunc("GET /movies", auth(routes.Movies(sd)))
	mux.HandleFunc("GET /movies/{id}/reviews", auth(routes.MovieReviews(sd)))
	mux.HandleFunc("POST /reviews", auth(routes.CreateReview(sd)))

	mux.HandleFunc("GET /watchlist", auth(routes.Watchlist(sd)))
	mux.HandleFunc("POST /watchlist", auth(routes.WatchlistAdd(sd)))
	mux.HandleFunc("DELETE /watchlist/{movieID}", auth(routes.WatchlistRemove(sd)))
	mux.HandleFunc("POST /watchlist/{movieID}/watched", auth(routes.MarkWatched(sd)))
	mux.HandleFunc("POST /watchlist/entries/{entryID}/watched", auth(routes.MoveWatchlistEntryWatched(sd)))
	mux.HandleFunc("GET /history/watched", auth(routes.WatchHistory(sd)))
	mux.HandleFunc("DELETE /history/watched/{movieID}", auth(routes.WatchHistoryRemove(sd)))

	mux.HandleFunc("GET /readinglist", auth(routes.ReadingList(sd)))
	mux.HandleFunc("POST /readinglist", auth(routes.ReadingListAdd(sd)))
	mux.HandleFunc("DELETE /readinglist/{bookID}", auth(routes.ReadingListRemove(sd)))
	mux.HandleFunc("POST /readinglist/{bookID}/read", auth(routes.MarkRead(sd)))
	mux.HandleFunc("POST /readinglist/entries/{entryID}/read", auth(routes.MoveReadingListEntryRead(sd)))
	mux.HandleFunc("GET /history/read", auth(routes.ReadHistory(sd)))
	mux.HandleFunc("DELETE /history/read/{bookID}", auth(routes.ReadHistoryRemove(sd)))

	mux.HandleFunc("GET /notifications", auth(routes.Notifications(sd)))
	mux.HandleFunc("POST /notifications/read", auth(routes.NotificationsMarkRead(sd)))

	mux.HandleFunc("GET /recommendations", auth(routes.Recommendations(sd)))

	return withCorrelationID(withLogging(withSecurityHeaders(withCORS(s.allowedOrigins)(mux))))
}
