// Package server provides the local static file server that finishes the
// dev loop. It serves the staged output directory on a loopback address
// and attaches the cross-origin isolation headers on every response, which
// browsers require before enabling WebAssembly shared memory.
package server

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Cross-origin isolation headers, attached to every response.
const (
	headerEmbedderPolicy = "Cross-Origin-Embedder-Policy"
	headerOpenerPolicy   = "Cross-Origin-Opener-Policy"

	embedderPolicy = "require-corp"
	openerPolicy   = "same-origin"
)

// Config holds server configuration options.
type Config struct {
	Host string
	// Port 0 picks an ephemeral port; use ListenAddr to discover it.
	Port int
	// Dir is the directory to serve.
	Dir string
	// Extensions is the allow-list of servable file extensions, without
	// leading dots. Requests for anything else get a 404.
	Extensions []string
}

// Server serves one directory until its context is cancelled or Stop is
// called.
type Server struct {
	host    string
	port    int
	dir     string
	allowed map[string]struct{}

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	started  bool
}

// New creates a new Server instance.
func New(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.Dir == "" {
		return nil, errors.New("serve directory is required")
	}
	if len(cfg.Extensions) == 0 {
		return nil, errors.New("at least one allowed extension is required")
	}

	allowed := make(map[string]struct{}, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	host := cfg.Host
	if host == "" {
		host = "127.0.0.1"
	}

	return &Server{
		host:    host,
		port:    cfg.Port,
		dir:     cfg.Dir,
		allowed: allowed,
	}, nil
}

// Start starts the HTTP server and blocks until ctx is cancelled or Stop
// is called. A graceful shutdown returns nil.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("server already started")
	}

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleStatic)

	s.server = &http.Server{
		Handler:      s.withIsolationHeaders(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.started = true
	s.mu.Unlock()

	// Release the listener when the caller's context ends.
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	err = s.server.Serve(listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server and closes the listener.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.started = false
	return nil
}

// ListenAddr returns the actual address the server is listening on.
// Useful when port 0 is used to get an available port.
// Returns empty string if not started.
func (s *Server) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// withIsolationHeaders attaches the cross-origin isolation headers to
// every response, including errors.
func (s *Server) withIsolationHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerEmbedderPolicy, embedderPolicy)
		w.Header().Set(headerOpenerPolicy, openerPolicy)
		next.ServeHTTP(w, r)
	})
}

// handleStatic serves files from the staged directory, restricted to the
// extension allow-list, with directory index rendering.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Clean the request path so it cannot escape the serve directory.
	urlPath := path.Clean("/" + r.URL.Path)
	fsPath := filepath.Join(s.dir, filepath.FromSlash(strings.TrimPrefix(urlPath, "/")))

	info, err := os.Stat(fsPath)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if info.IsDir() {
		s.serveDir(w, r, urlPath, fsPath)
		return
	}

	if !s.extensionAllowed(fsPath) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, fsPath)
}

func (s *Server) extensionAllowed(fsPath string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fsPath)), ".")
	if ext == "" {
		return false
	}
	_, ok := s.allowed[ext]
	return ok
}

// serveDir serves a directory's index.html when present, otherwise an
// HTML listing of its entries.
func (s *Server) serveDir(w http.ResponseWriter, r *http.Request, urlPath, fsPath string) {
	index := filepath.Join(fsPath, "index.html")
	if info, err := os.Stat(index); err == nil && !info.IsDir() {
		http.ServeFile(w, r, index)
		return
	}

	entries, err := os.ReadDir(fsPath)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	fmt.Fprintf(&sb, "<!DOCTYPE html>\n<html>\n<head><title>Index of %s</title></head>\n<body>\n", html.EscapeString(urlPath))
	fmt.Fprintf(&sb, "<h1>Index of %s</h1>\n<ul>\n", html.EscapeString(urlPath))
	for _, name := range names {
		href := path.Join(urlPath, name)
		if strings.HasSuffix(name, "/") {
			href += "/"
		}
		fmt.Fprintf(&sb, "<li><a href=\"%s\">%s</a></li>\n", html.EscapeString(href), html.EscapeString(name))
	}
	sb.WriteString("</ul>\n</body>\n</html>\n")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(sb.String()))
}
