// Package ui provides the browser-based configuration form.
package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"oneclick/internal/config"
	"oneclick/internal/keys"
	"oneclick/internal/protocol"
	"oneclick/internal/rotation"
	"oneclick/internal/session"
)

// Server provides a web-based configuration UI
type Server struct {
	session *session.Session
	store   *config.Store
	hub     *hub

	mu         sync.Mutex
	listener   net.Listener
	url        string
	unsub      func()
	onSettings func(config.Settings)
}

// NewServer creates a new UI server
func NewServer(sess *session.Session, store *config.Store) *Server {
	return &Server{
		session: sess,
		store:   store,
		hub:     newHub(func() interface{} { return sess.Status() }),
	}
}

// SetOnSettings sets the callback invoked after settings are saved
func (s *Server) SetOnSettings(callback func(config.Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSettings = callback
}

// Handler returns the HTTP handler serving the form and its API
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/keys", s.handleKeys)
	mux.HandleFunc("/api/rotations", s.handleRotations)
	mux.HandleFunc("/api/select", s.handleSelect)
	mux.HandleFunc("/api/start", s.handleStart)
	mux.HandleFunc("/api/stop", s.handleStop)
	mux.HandleFunc("/api/toggle", s.handleToggle)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/console", s.handleConsole)
	mux.HandleFunc("/api/settings", s.handleSettings)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return recoverMiddleware(sameOriginMiddleware(mux))
}

// Listen binds the UI to 127.0.0.1:port (0 picks a free port) and returns its URL
func (s *Server) Listen(port int) (string, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.listener = listener
	s.url = fmt.Sprintf("http://127.0.0.1:%d", listener.Addr().(*net.TCPAddr).Port)
	url := s.url
	s.mu.Unlock()

	log.Printf("Starting UI server at %s", url)
	return url, nil
}

// Serve runs the UI until Stop is called. Listen must be called first.
func (s *Server) Serve() error {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return errors.New("ui: Serve called before Listen")
	}

	s.forwardConsole()
	go s.hub.run()
	s.session.OnChange(s.notifyChange)

	err := http.Serve(listener, s.Handler())
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// URL returns the address the UI is served on, empty before Listen
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// Stop stops the UI server
func (s *Server) Stop() error {
	s.mu.Lock()
	listener, unsub := s.listener, s.unsub
	s.listener, s.unsub = nil, nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	s.hub.close()
	if listener != nil {
		return listener.Close()
	}
	return nil
}

// OpenBrowser opens the UI in the default browser
func (s *Server) OpenBrowser() {
	if url := s.URL(); url != "" {
		openBrowser(url)
	}
}

func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "darwin":
		err = exec.Command("open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		err = exec.Command("xdg-open", url).Start()
	}
	if err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

func (s *Server) forwardConsole() {
	backlog, lines, unsub := s.session.Console().Subscribe()
	s.hub.seed(backlog)

	s.mu.Lock()
	s.unsub = unsub
	s.mu.Unlock()

	go func() {
		for line := range lines {
			s.hub.publish(protocol.Message{Type: protocol.TypeConsole, Payload: protocol.ConsolePayload{Line: line}})
		}
	}()
}

func (s *Server) notifyChange() {
	s.hub.publish(protocol.Message{Type: protocol.TypeRotations, Payload: s.session.Rotations()})
	s.hub.publish(protocol.Message{Type: protocol.TypeStatus, Payload: s.session.Status()})
}

// recoverMiddleware prevents panics from crashing the whole server
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("PANIC RECOV: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// sameOriginMiddleware rejects state-changing requests from other origins.
// A JSON content type forces browsers to preflight cross-origin requests,
// which this server never answers.
func sameOriginMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		if !sameOrigin(r) {
			log.Printf("UI: Rejected %s %s from origin %q", r.Method, r.URL.Path, r.Header.Get("Origin"))
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "cross-origin request rejected"})
			return
		}
		if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mt != "application/json" {
			writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": "content type must be application/json"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sameOrigin reports whether the request's Origin, if any, names this server
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var ve *config.ValidationError
	var ie *config.IndexError
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
	case errors.As(err, &ie):
		status = http.StatusNotFound
	case errors.Is(err, rotation.ErrAlreadyActive), errors.Is(err, rotation.ErrNotActive), errors.Is(err, session.ErrNoSelection):
		status = http.StatusConflict
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func parseIndex(r *http.Request) (int, error) {
	idx, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		return 0, &config.ValidationError{Field: "index", Reason: "must be an integer"}
	}
	return idx, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	tmpl.Execute(w, nil)
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, keys.Categories())
}

func (s *Server) handleRotations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.session.Rotations())

	case http.MethodPost:
		var rot config.Rotation
		if err := json.NewDecoder(r.Body).Decode(&rot); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid rotation data"})
			return
		}
		created, err := s.session.Create(rot)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodDelete:
		idx, err := parseIndex(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := s.session.Delete(idx); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	idx, err := parseIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.session.Select(idx); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Status())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.handleAction(w, r, s.session.Start)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.handleAction(w, r, s.session.Stop)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	s.handleAction(w, r, s.session.Toggle)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request, action func() error) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := action(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Status())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Status())
}

func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Console().Lines())
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.store.Settings())

	case http.MethodPost:
		var settings config.Settings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid settings data"})
			return
		}
		if err := s.store.SaveSettings(settings); err != nil {
			log.Printf("UI: Failed to save settings: %v", err)
			writeError(w, err)
			return
		}

		s.mu.Lock()
		fn := s.onSettings
		s.mu.Unlock()
		if fn != nil {
			fn(settings)
		}
		writeJSON(w, http.StatusOK, settings)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
