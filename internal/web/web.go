package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"goaltick/internal/app"
	"goaltick/internal/config"
	"goaltick/internal/goals"
	appLog "goaltick/internal/log"
	"goaltick/internal/model"
)

// Server provides the read-only HTTP status API over the stored day
// groups and the parsed goal definitions.
type Server struct {
	cfg *config.Config
	app *app.App
	mux *http.ServeMux

	// In-memory cache for /api/upcoming responses to avoid re-reading
	// every group file on each HTTP request.
	upcomingMu    sync.RWMutex
	upcomingCache *upcomingCache
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, a *app.App) *Server {
	s := &Server{
		cfg: cfg,
		app: a,
		mux: http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// 빈 사용자명 또는 비밀번호가 설정된 경우에는 비활성화로 취급한다.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health 는 항상 무인증으로 노출한다.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="GoalTick", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/goals", s.handleGoals)
	s.mux.HandleFunc("/api/groups", s.handleGroups)
	s.mux.HandleFunc("/api/upcoming", s.handleUpcoming)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// goalsResponse is the JSON response shape for /api/goals.
type goalsResponse struct {
	Daily   []goalDTO `json:"daily"`
	Weekly  []goalDTO `json:"weekly"`
	Monthly []goalDTO `json:"monthly"`
}

type goalDTO struct {
	Description string `json:"description"`
	Frequency   string `json:"frequency"`
	Measure     string `json:"measure"`
	Expected    int    `json:"expected"`
	Score       int    `json:"score"`
	Days        uint8  `json:"days,omitempty"`
	MonthDays   []int  `json:"month_days,omitempty"`
}

// handleGoals re-parses the goals file and returns the definitions split
// by frequency. 파싱 실패 라인은 이미 로그에 남고 여기서는 빠진 채로 내려간다.
func (s *Server) handleGoals(w http.ResponseWriter, _ *http.Request) {
	set, err := goals.ParseFile(s.cfg.GoalsFile)
	if err != nil {
		appLog.Error("api goals: parse failed", err, "file", s.cfg.GoalsFile)
		writeError(w, http.StatusInternalServerError, "failed to read goals file")
		return
	}

	writeJSON(w, http.StatusOK, goalsResponse{
		Daily:   goalDTOs(set.Daily),
		Weekly:  goalDTOs(set.Weekly),
		Monthly: goalDTOs(set.Monthly),
	})
}

func goalDTOs(gs []model.Goal) []goalDTO {
	out := make([]goalDTO, 0, len(gs))
	for _, g := range gs {
		out = append(out, goalDTO{
			Description: g.Description,
			Frequency:   g.Freq.String(),
			Measure:     string(g.Measure),
			Expected:    g.Expected,
			Score:       g.Score,
			Days:        uint8(g.Days),
			MonthDays:   g.MonthDays,
		})
	}
	return out
}

// handleGroups returns one stored day group.
//
// GET /api/groups?date=2026-09-01
func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}

	g, ok, err := s.app.GroupByDate(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no group for "+date)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// upcomingResponse is the JSON response shape for /api/upcoming.
type upcomingResponse struct {
	Days   int               `json:"days"`
	Groups []*model.DayGroup `json:"groups"`
}

// upcomingCache holds a cached /api/upcoming response and its timestamp.
type upcomingCache struct {
	resp      upcomingResponse
	updatedAt time.Time
}

// handleUpcoming returns the materialized groups for the next days.
//
// GET /api/upcoming?days=7
func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	days := parseIntDefault(r.URL.Query().Get("days"), 7)
	if days <= 0 {
		days = 7
	}

	const upcomingCacheTTL = 30 * time.Second
	now := time.Now()

	// Fast path: return cached value if it's still fresh and matches.
	s.upcomingMu.RLock()
	uc := s.upcomingCache
	s.upcomingMu.RUnlock()
	if uc != nil && uc.resp.Days == days && now.Sub(uc.updatedAt) < upcomingCacheTTL {
		writeJSON(w, http.StatusOK, uc.resp)
		return
	}

	groups := s.app.Upcoming(r.Context(), days)
	resp := upcomingResponse{
		Days:   days,
		Groups: groups,
	}

	s.upcomingMu.Lock()
	s.upcomingCache = &upcomingCache{
		resp:      resp,
		updatedAt: time.Now(),
	}
	s.upcomingMu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
