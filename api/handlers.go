package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cpunch-go/luadecompy/internal/decompiler"
)

const maxUploadSize = 8 << 20 // 8MB, generous for a single .luac chunk

// handleCreateSession handles POST /api/v1/session: body is the raw
// bytecode image to decode.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if len(data) > maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "Bytecode image too large")
		return
	}

	session, err := s.sessions.CreateSession(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to decode bytecode image: %v", err))
		return
	}

	writeJSON(w, http.StatusCreated, SessionCreateResponse{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	})
}

// handleListSessions handles GET /api/v1/session
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.sessions.ListSessions()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": ids,
		"count":    len(ids),
	})
}

// handleGetSessionStatus handles GET /api/v1/session/{id}
func (s *Server) handleGetSessionStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, SessionStatusResponse{
		SessionID:      sessionID,
		PrototypeCount: len(session.Service.Prototypes()),
	})
}

// handleDestroySession handles DELETE /api/v1/session/{id}
func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.sessions.DestroySession(sessionID); err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Session destroyed",
	})
}

// handlePrototypes handles GET /api/v1/session/{id}/prototypes
func (s *Server) handlePrototypes(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, PrototypesResponse{Prototypes: session.Service.Prototypes()})
}

// handleDisasm handles GET /api/v1/session/{id}/disasm?path=0.1.2
func (s *Server) handleDisasm(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	path, err := parsePathParam(r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lines, err := session.Service.Disassemble(path)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, DisasmResponse{
		Path:  r.URL.Query().Get("path"),
		Lines: ToDisasmLines(lines),
	})
}

// handleDecompile handles GET /api/v1/session/{id}/decompile?path=0.1.2
func (s *Server) handleDecompile(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	path, err := parsePathParam(r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	source, err := session.Service.Decompile(path, decompiler.Options{})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcaster.BroadcastProgress(sessionID, r.URL.Query().Get("path"), 1, 1)

	writeJSON(w, http.StatusOK, DecompileResponse{
		Path:   r.URL.Query().Get("path"),
		Source: source,
	})
}

// parsePathParam parses a dotted prototype path like "0.1.2" into its
// child-index slice, per SPEC_FULL.md's Open Question 1 addressing
// scheme. An empty string addresses the root.
func parsePathParam(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ".")
	path := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid prototype path %q", raw)
		}
		path[i] = n
	}
	return path, nil
}
