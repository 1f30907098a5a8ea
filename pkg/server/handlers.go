package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vango-dev/vango-history/internal/errors"
	"github.com/vango-dev/vango-history/pkg/history"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// writeRequest is the body of PUT and reset requests.
type writeRequest struct {
	Value *string `json:"value"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"histories": s.registry.Names()})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	st, err := s.registry.State(chi.URLParam(r, "name"))
	s.respond(w, st, err)
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	value, err := decodeValue(w, r)
	if err != nil {
		s.respond(w, State{}, err)
		return
	}
	st, err := s.registry.Write(chi.URLParam(r, "name"), value)
	s.respond(w, st, err)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	value, err := decodeValue(w, r)
	if err != nil {
		s.respond(w, State{}, err)
		return
	}
	st, err := s.registry.Do(chi.URLParam(r, "name"), func(h *history.Store[string]) bool {
		return h.Reset(value)
	})
	s.respond(w, st, err)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	st, err := s.registry.Do(chi.URLParam(r, "name"), (*history.Store[string]).Undo)
	s.respond(w, st, err)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	st, err := s.registry.Do(chi.URLParam(r, "name"), (*history.Store[string]).Redo)
	s.respond(w, st, err)
}

func (s *Server) handleGoto(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.respond(w, State{}, errors.New("H201").
			WithDetail("index must be an integer, got "+strconv.Quote(chi.URLParam(r, "index"))))
		return
	}
	st, err := s.registry.Do(chi.URLParam(r, "name"), func(h *history.Store[string]) bool {
		return h.Goto(index)
	})
	s.respond(w, st, err)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !s.registry.Delete(name) {
		s.respond(w, State{}, notFound(name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	e, ok := s.registry.lookup(name)
	if !ok {
		s.respond(w, State{}, notFound(name))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "history", name, "error", err)
		return
	}

	if !s.registry.subscribe(name, e, conn) {
		return
	}

	// Keep the connection open until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	e.hub.remove(conn)
}

func decodeValue(w http.ResponseWriter, r *http.Request) (string, error) {
	var req writeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return "", errors.New("H201").
			WithDetail("Body must be a JSON object with a string \"value\" field.").
			Wrap(err)
	}
	if req.Value == nil {
		return "", errors.New("H201").
			WithDetail("Missing \"value\" field.")
	}
	return *req.Value, nil
}

// respond writes st, or err as a structured error.
func (s *Server) respond(w http.ResponseWriter, st State, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, st)
		return
	}

	he := errors.FromError(err, "H101")
	status := http.StatusInternalServerError
	switch he.Code {
	case "H200":
		status = http.StatusNotFound
	case "H201":
		status = http.StatusBadRequest
	default:
		s.logger.Error("history request failed", "error", err)
	}
	writeJSON(w, status, map[string]*errors.Error{"error": he})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
