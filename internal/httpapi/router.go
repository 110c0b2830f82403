package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Binduvarsha23/securevaultBackend/internal/notify"
	"github.com/Binduvarsha23/securevaultBackend/internal/security"
	"github.com/Binduvarsha23/securevaultBackend/internal/vault"
)

// RouterConfig carries the HTTP-layer knobs.
type RouterConfig struct {
	// JWTSecret, when set, puts the whole API behind bearer-token auth.
	JWTSecret string
	// RequestTimeout bounds each request; zero disables the deadline.
	RequestTimeout time.Duration
	CORSOrigins    []string
}

// NewRouter assembles the full API.
func NewRouter(
	engine *security.Engine,
	vaults *vault.Store,
	sender notify.Sender,
	logger *zap.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(RequestLogger(logger))
	if cfg.RequestTimeout > 0 {
		r.Use(WithTimeout(cfg.RequestTimeout))
	}
	if cfg.JWTSecret != "" {
		r.Use(RequireAuth(cfg.JWTSecret))
	}

	sec := NewSecurityHandler(engine, logger)
	vh := NewVaultHandler(vaults, logger)
	em := NewEmailHandler(sender, logger)

	r.Route("/api/security", func(api chi.Router) {
		api.Post("/", sec.CreateConfig)
		api.Post("/verify", sec.VerifyMethod)
		api.Post("/setup-totp/{userId}", sec.SetupTOTP)
		api.Post("/verify-totp", sec.VerifyTOTP)
		api.Put("/security-questions/{userId}", sec.SetSecurityQuestions)
		api.Post("/verify-security-answer", sec.VerifySecurityAnswer)
		api.Post("/request-method-reset", sec.RequestMethodReset)
		api.Post("/reset-method-with-token", sec.ResetMethodWithToken)
		api.Get("/{userId}", sec.GetConfig)
		api.Put("/{userId}", sec.UpdateConfig)
	})

	r.Route("/api/vault", func(api chi.Router) {
		api.Post("/", vh.Create)
		api.Post("/import", vh.Import)
		api.Get("/export/{userId}", vh.Export)
		api.Get("/{userId}", vh.ListByUser)
		api.Put("/{id}", vh.Update)
		api.Delete("/{id}", vh.Delete)
	})

	r.Post("/api/send-totp", em.SendTOTP)

	return r
}
