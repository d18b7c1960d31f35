package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"ledger-chat-backend/internal/config"
	"ledger-chat-backend/internal/conversation"
	"ledger-chat-backend/internal/ledger"
	"ledger-chat-backend/internal/store"
	"ledger-chat-backend/internal/types"
)

const turnTimeout = 30 * time.Second

type Server struct {
	router     *chi.Mux
	cfg        config.Config
	ledger     conversation.LedgerStore
	controller *conversation.Controller
	sessions   *store.SessionStore

	// Serializes turns per session so a slow extraction and a follow-up
	// decision cannot interleave on the same conversation state.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewServer(cfg config.Config, ledgerStore conversation.LedgerStore, controller *conversation.Controller) *Server {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Session-Id"},
		AllowCredentials: true, // Enable credentials for cookies
		MaxAge:           300,
	}))

	s := &Server{
		router:     r,
		cfg:        cfg,
		ledger:     ledgerStore,
		controller: controller,
		sessions:   store.NewSessionStore(cfg.SessionTTL),
		locks:      make(map[string]*sync.Mutex),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Post("/api/chat", s.handleChat)
	s.router.Post("/api/chat/confirm", s.handleConfirm)
	s.router.Post("/api/chat/select", s.handleSelect)
	s.router.Get("/api/entries", s.handleEntries)
	s.router.Get("/api/entries/sum", s.handleEntriesSum)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sid := s.getOrCreateSessionID(r, w, req.SessionID)

	ctx, cancel := context.WithTimeout(r.Context(), turnTimeout)
	defer cancel()

	lock := s.sessionLock(sid)
	lock.Lock()
	defer lock.Unlock()

	state := s.sessions.Get(sid)
	reply, next := s.controller.Process(ctx, state, req.Message)
	s.sessions.Put(sid, next)

	s.writeChatResponse(w, sid, reply, next)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req types.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Token == "" {
		s.writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	sid := s.getOrCreateSessionID(r, w, req.SessionID)

	ctx, cancel := context.WithTimeout(r.Context(), turnTimeout)
	defer cancel()

	lock := s.sessionLock(sid)
	lock.Lock()
	defer lock.Unlock()

	state := s.sessions.Get(sid)
	reply, next := s.controller.DecideConfirm(ctx, state, req.Token, req.Decision)
	s.sessions.Put(sid, next)

	s.writeChatResponse(w, sid, reply, next)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req types.SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Token == "" {
		s.writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	sid := s.getOrCreateSessionID(r, w, req.SessionID)

	ctx, cancel := context.WithTimeout(r.Context(), turnTimeout)
	defer cancel()

	lock := s.sessionLock(sid)
	lock.Lock()
	defer lock.Unlock()

	state := s.sessions.Get(sid)
	reply, next := s.controller.DecideSelection(ctx, state, req.Token, req.EntryID)
	s.sessions.Put(sid, next)

	s.writeChatResponse(w, sid, reply, next)
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &limit); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), turnTimeout)
	defer cancel()

	entries, err := s.ledger.List(ctx, date, limit)
	if err != nil {
		log.Printf("[entries] list failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list entries")
		return
	}
	if entries == nil {
		entries = []ledger.Entry{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(types.EntriesResponse{Entries: entries})
}

func (s *Server) handleEntriesSum(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")

	ctx, cancel := context.WithTimeout(r.Context(), turnTimeout)
	defer cancel()

	total, err := s.ledger.Sum(ctx, date)
	if err != nil {
		log.Printf("[entries] sum failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "failed to sum entries")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(types.SumResponse{Date: date, Total: total})
}

func (s *Server) writeChatResponse(w http.ResponseWriter, sid, reply string, state conversation.SessionState) {
	resp := types.ChatResponse{SessionID: sid, Reply: reply}
	if state.Pending.Kind != conversation.PendingNone {
		resp.Pending = &types.PendingResponse{
			Kind:       state.Pending.Kind.String(),
			Token:      state.Pending.Token,
			Prompt:     state.Pending.Prompt,
			Candidates: state.Pending.Candidates,
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Session-Id", sid)
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg})
}

func (s *Server) sessionLock(sid string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	lock, ok := s.locks[sid]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sid] = lock
	}
	return lock
}

func newSessionID() string {
	return "s_" + uuid.NewString()
}

// getSessionID retrieves the session ID from cookie, header, query parameter
// or request body, in that order
func getSessionID(r *http.Request, bodySessionID string) string {
	// Try cookie first
	if cookie, err := GetSessionCookie(r); err == nil && cookie != "" {
		return cookie
	}
	// Fall back to header
	if sid := r.Header.Get("X-Session-Id"); sid != "" {
		return sid
	}
	// Fall back to query parameter
	if sid := r.URL.Query().Get("sessionId"); sid != "" {
		return sid
	}
	// Fall back to request body
	return bodySessionID
}

// getOrCreateSessionID gets existing session ID or creates a new one, setting the cookie
func (s *Server) getOrCreateSessionID(r *http.Request, w http.ResponseWriter, bodySessionID string) string {
	sid := getSessionID(r, bodySessionID)
	if sid == "" {
		sid = newSessionID()
		log.Printf("[session] creating new session: %s for endpoint: %s", sid, r.URL.Path)
	}
	SetSessionCookie(w, sid)
	return sid
}
