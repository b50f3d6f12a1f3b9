package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/flagtree/internal/flags/service"
	"github.com/aussiebroadwan/flagtree/internal/flags/store"
	"github.com/aussiebroadwan/flagtree/pkg/flagsdk"
	"github.com/aussiebroadwan/flagtree/pkg/httpx"
	"github.com/aussiebroadwan/flagtree/pkg/jwtx"
	"github.com/aussiebroadwan/flagtree/pkg/slogx"

	_ "github.com/aussiebroadwan/flagtree/api/flags" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// AuditFeatureFlag gates the audit endpoint. The service evaluates it
// against its own flag table.
const AuditFeatureFlag = "flagtree.audit"

// Pinger is implemented by cache backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	FlagService *service.FlagService
	Usage       httpx.UsageRecorder // Optional: gated routes skip usage events when nil
	Cache       Pinger              // Optional: nil reports the cache as disabled
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerFlags()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Flagtree Feature Flag Service API
//	@version		0.1.0
//	@description	Hierarchical feature flags. A flag is effectively enabled only when it and every ancestor are enabled.
//	@description
//	@description				Management endpoints require a JWT issued by the platform auth service carrying flags:read or flags:write.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/flagtree
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) read(h http.HandlerFunc) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope(flagsdk.ScopeFlagsRead, flagsdk.ScopeFlagsWrite),
		httpx.RateLimitBySubject(httpx.ReadLimit),
	)
}

func (r *Router) write(h http.HandlerFunc) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope(flagsdk.ScopeFlagsWrite),
		httpx.RateLimitBySubject(httpx.WriteLimit),
	)
}

func (r *Router) registerFlags() {
	h := &FlagsHandler{Flags: r.FlagService}

	r.Mux.Handle("POST /v1/flags", r.write(h.HandleCreate))
	r.Mux.Handle("GET /v1/flags", r.read(h.HandleList))
	r.Mux.Handle("GET /v1/flags/tree", r.read(h.HandleTree))
	r.Mux.Handle("GET /v1/flags/{name}", r.read(h.HandleGet))
	r.Mux.Handle("PATCH /v1/flags/{name}", r.write(h.HandleUpdate))
	r.Mux.Handle("PUT /v1/flags/{name}/parent", r.write(h.HandleReparent))
	r.Mux.Handle("DELETE /v1/flags/{name}", r.write(h.HandleDelete))

	// Audit is dogfooded: operators can switch it off with its own flag.
	r.Mux.Handle("GET /v1/flags/audit",
		httpx.Chain(http.HandlerFunc(h.HandleAudit),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(flagsdk.ScopeFlagsRead, flagsdk.ScopeFlagsWrite),
			httpx.RateLimitBySubject(httpx.ReadLimit),
			httpx.RequireFlag(r.FlagService, AuditFeatureFlag, r.Usage),
		),
	)

	// Public evaluation endpoint, limited per caller IP.
	r.Mux.Handle("GET /v1/flags/{name}/enabled",
		httpx.Chain(http.HandlerFunc(h.HandleIsEnabled),
			httpx.RateLimitByIP(httpx.CheckLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.CheckLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.Cache, r.keys),
			httpx.RateLimitByIP(httpx.CheckLimit),
		),
	)
}
