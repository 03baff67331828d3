package adapthttp

import (
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"growt/internal/app"
)

// Services bundles the application services the HTTP adapter drives.
type Services struct {
	Auth    *app.AuthService
	Animals *app.AnimalService
	Devices *app.DeviceService
	Ingest  *app.IngestService
	Logs    *app.LogService
	Charts  *app.ChartsService
	Contact *app.ContactService
}

// OIDCConfig holds the SSO provider wiring. Enabled is false when no
// issuer is configured.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	authSvc    *app.AuthService
	animals    *app.AnimalService
	devices    *app.DeviceService
	ingest     *app.IngestService
	logs       *app.LogService
	charts     *app.ChartsService
	contact    *app.ContactService
	oidcConfig OIDCConfig
	webDir     string
	logger     *zap.Logger

	disableAuth bool
	forwardAuth bool
}

// New creates a Server wired to the given application services.
func New(svc Services, webDir string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		authSvc: svc.Auth,
		animals: svc.Animals,
		devices: svc.Devices,
		ingest:  svc.Ingest,
		logs:    svc.Logs,
		charts:  svc.Charts,
		contact: svc.Contact,
		webDir:  webDir,
		logger:  logger,
	}
}

// WithOIDC enables SSO login.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// WithForwardAuth trusts the Remote-User header from a reverse proxy.
func (s *Server) WithForwardAuth() *Server {
	s.forwardAuth = true
	return s
}

// WithoutAuth disables session checks. Every request acts as devUser.
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
	api.HandleFunc("/config", s.handleConfig)

	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/setup", s.handleSetupUser)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	// Device and visitor endpoints carry their own credentials or none.
	api.HandleFunc("/ingest", s.handleIngest)
	api.HandleFunc("/public/animals/{tag}/logs", s.handlePublicLogs)
	api.HandleFunc("/contact", s.handleContact)

	private := http.NewServeMux()
	private.HandleFunc("/animals", s.handleAnimals)
	private.HandleFunc("/animals/{id}", s.handleAnimal)
	private.HandleFunc("/animals/{id}/photo", s.handleAnimalPhoto)
	private.HandleFunc("/animals/{id}/public", s.handleAnimalPublic)
	private.HandleFunc("/devices", s.handleDevices)
	private.HandleFunc("/devices/{id}/approve", s.handleDeviceApprove)
	private.HandleFunc("/devices/{id}/deactivate", s.handleDeviceDeactivate)
	private.HandleFunc("/logs", s.handleLogs)
	private.HandleFunc("/stats", s.handleStats)
	private.HandleFunc("/charts/animal/{tag}", s.handleChartsAnimal)
	api.Handle("/", s.authMiddleware(private))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}
