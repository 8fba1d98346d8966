// SPDX-License-Identifier: MIT

// Package api wires the HTTP surface: routing, role-dispatched pages and the
// image-generation endpoints with their cache.
package api

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/quillhq/quill/internal/api/middleware"
	"github.com/quillhq/quill/internal/avatar"
	"github.com/quillhq/quill/internal/cache"
	"github.com/quillhq/quill/internal/config"
	"github.com/quillhq/quill/internal/health"
	"github.com/quillhq/quill/internal/identity"
	"github.com/quillhq/quill/internal/log"
	"github.com/quillhq/quill/internal/post"
	"github.com/quillhq/quill/internal/ratelimit"
)

// Options carries the server's collaborators.
type Options struct {
	Config     config.Config
	Posts      *post.Store
	Identities *identity.Store
	Images     cache.Cache
	AvatarDisk *avatar.DiskCache // nil disables the disk tier
	Limiter    *ratelimit.Limiter
	Health     *health.Manager
}

// Server is the HTTP API server.
type Server struct {
	cfg        config.Config
	posts      *post.Store
	identities *identity.Store
	images     cache.Cache
	avatarDisk *avatar.DiskCache
	limiter    *ratelimit.Limiter
	health     *health.Manager

	admin  *identity.Constraint
	editor *identity.Constraint

	trustedNets []*net.IPNet

	logger zerolog.Logger
}

// New constructs the server and its routing constraints. It fails when a
// constraint cannot be built; a server without working constraints would
// silently serve admin pages to everyone.
func New(opts Options) (*Server, error) {
	if opts.Posts == nil || opts.Identities == nil {
		return nil, fmt.Errorf("api: posts and identities stores are required")
	}
	if opts.Images == nil {
		opts.Images = cache.NewNoOpCache()
	}

	admin, err := identity.NewConstraint(opts.Identities, identity.RequireRole(identity.RoleAdmin))
	if err != nil {
		return nil, fmt.Errorf("api: admin constraint: %w", err)
	}
	editor, err := identity.NewConstraint(opts.Identities, identity.RequireRole(identity.RoleEditor))
	if err != nil {
		return nil, fmt.Errorf("api: editor constraint: %w", err)
	}

	trusted, err := parseCIDRs(opts.Config.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("api: trusted_proxies: %w", err)
	}

	return &Server{
		cfg:         opts.Config,
		posts:       opts.Posts,
		identities:  opts.Identities,
		images:      opts.Images,
		avatarDisk:  opts.AvatarDisk,
		limiter:     opts.Limiter,
		health:      opts.Health,
		admin:       admin,
		editor:      editor,
		trustedNets: trusted,
		logger:      log.WithComponent("api"),
	}, nil
}

// Routes builds the router with the full middleware stack.
func (s *Server) Routes() *chi.Mux {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableCORS:            true,
		AllowedOrigins:        s.cfg.AllowedOrigins,
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		TracingService:        tracingService(s.cfg),
		EnableLogging:         true,
		EnableRateLimit:       s.cfg.RateLimit.Enabled,
		RateLimitGlobalRPM:    s.cfg.RateLimit.GlobalRPM,
	})

	r.Get("/", s.handleRoot)

	if s.health != nil {
		r.Get("/healthz", s.health.ServeHealth)
		r.Get("/readyz", s.health.ServeReady)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/qr/{data}", s.handleQR)
	r.Get("/avatars/{name}", s.handleAvatar)

	r.Route("/api", func(r chi.Router) {
		r.Get("/posts", s.handleListPosts)
		r.Get("/posts/{slug}", s.handleGetPost)

		r.Post("/session", s.handleLogin)
		r.Get("/session", s.handleWhoAmI)
		r.Delete("/session", s.handleLogout)

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireConstraint(s.admin))
			r.Get("/dashboard", s.handleDashboard)
			r.Get("/cache/stats", s.handleCacheStats)
			r.Delete("/cache", s.handleCacheClear)
		})
	})

	return r
}

func tracingService(cfg config.Config) string {
	if !cfg.Tracing.Enabled {
		return ""
	}
	return "quill-api"
}

// requireConstraint gates a subtree behind a routing constraint.
func (s *Server) requireConstraint(c *identity.Constraint) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !c.Matches(r) {
				writeForbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseCIDRs(cidrs []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		// Bare addresses are accepted as /32 (or /128) networks.
		if !strings.Contains(c, "/") {
			if strings.Contains(c, ":") {
				c += "/128"
			} else {
				c += "/32"
			}
		}
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR %q: %w", c, err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}

// clientIP extracts the client address. X-Forwarded-For is honored only when
// the direct peer is a trusted proxy.
func (s *Server) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	peer := net.ParseIP(host)
	if peer == nil {
		return host
	}

	trusted := false
	for _, n := range s.trustedNets {
		if n.Contains(peer) {
			trusted = true
			break
		}
	}
	if !trusted {
		return host
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-Ip")); xri != "" && net.ParseIP(xri) != nil {
		return xri
	}
	return host
}
