package server

import (
	"fmt"
	"net/http"

	"github.com/beyondthebrush/portal/auth"
	"github.com/beyondthebrush/portal/codes"
	"github.com/beyondthebrush/portal/internal/config"
	"github.com/beyondthebrush/portal/resource"
	"github.com/beyondthebrush/portal/server/portalsession"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

const sessionCookieName = "portal_session"

type Server struct {
	env      string
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	auth     *auth.Service
	ledger   *codes.Ledger
	device   resource.Device
	sessions portalsession.Repo
	validate *validator.Validate
}

func New(cfg config.Config, authService *auth.Service, ledger *codes.Ledger, device resource.Device, sessionRepo portalsession.Repo) (*Server, error) {
	if authService == nil {
		return nil, fmt.Errorf("[Server New] auth service is required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("[Server New] ledger is required")
	}
	if device == nil {
		return nil, fmt.Errorf("[Server New] device is required")
	}
	if sessionRepo == nil {
		return nil, fmt.Errorf("[Server New] session repo is required")
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   cfg,
		auth:     authService,
		ledger:   ledger,
		device:   device,
		sessions: sessionRepo,
		validate: validator.New(),
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		log.Debug().Str("route", route).Msg("registered")
	}
}
