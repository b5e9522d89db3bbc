package adapthttp

import (
	"net/http"

	"scaletrack/internal/app"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	entries     *app.EntryService
	goals       *app.GoalService
	trend       *app.TrendService
	authSvc     *app.AuthService
	oidcConfig  *OIDCConfig
	webDir      string
	disableAuth bool
}

// New creates a Server wired to the given application services.
func New(es *app.EntryService, gs *app.GoalService, ts *app.TrendService, as *app.AuthService, oidcConfig *OIDCConfig, webDir string) *Server {
	if oidcConfig == nil {
		oidcConfig = &OIDCConfig{}
	}
	return &Server{entries: es, goals: gs, trend: ts, authSvc: as, oidcConfig: oidcConfig, webDir: webDir}
}

// WithoutAuth disables session validation. For tests only.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/setup", s.handleSetupUser)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)
	api.HandleFunc("/config", s.handleConfig)

	protected := http.NewServeMux()
	protected.HandleFunc("/entries", s.handleEntries)
	protected.HandleFunc("/entries/", s.handleEntryByID)
	protected.HandleFunc("/goal", s.handleGoal)
	protected.HandleFunc("/goal/", s.handleGoalByID)
	protected.HandleFunc("/achievements", s.handleAchievements)
	protected.HandleFunc("/trend/daily", s.handleTrendDaily)
	protected.HandleFunc("/profile/unit", s.handleWeightUnit)
	api.Handle("/", s.authMiddleware(protected))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}
