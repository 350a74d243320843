// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	catalogfeature "github.com/dalemusser/procdoc/internal/app/features/catalog"
	docgenfeature "github.com/dalemusser/procdoc/internal/app/features/docgen"
	healthfeature "github.com/dalemusser/procdoc/internal/app/features/health"
	nodeapifeature "github.com/dalemusser/procdoc/internal/app/features/nodeapi"
	"github.com/dalemusser/procdoc/internal/app/store/kpi"
	"github.com/dalemusser/procdoc/internal/app/store/standard"
	"github.com/dalemusser/procdoc/internal/app/system/apicors"
	"github.com/dalemusser/procdoc/internal/app/system/auth"
	"github.com/dalemusser/procdoc/internal/app/system/refsync"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed.
//
// Every /api route uses API key auth (Bearer token) with permissive CORS;
// there is no session surface. Health endpoints stay outside the auth group
// so load balancers can probe them.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	syncer := refsync.New(kpi.New(deps.MongoDatabase), standard.New(deps.MongoDatabase), logger)
	syncer.SetRetryPolicy(appCfg.RefSyncAttempts, appCfg.RefSyncBackoff)

	r := chi.NewRouter()

	// Global middleware. CORS must be early in the chain to handle
	// preflight requests.
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// API routes: Bearer API key + permissive CORS.
	nodeapiHandler := nodeapifeature.NewHandler(deps.MongoDatabase, syncer, logger)
	catalogHandler := catalogfeature.NewHandler(deps.MongoDatabase, logger)
	docgenHandler := docgenfeature.NewHandler(logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(apicors.Middleware())
		r.Use(auth.APIKeyAuth(appCfg.APIKey, logger))

		r.Mount("/nodes", nodeapifeature.Routes(nodeapiHandler))
		r.Mount("/kpis", catalogfeature.KPIRoutes(catalogHandler))
		r.Mount("/standards", catalogfeature.StandardRoutes(catalogHandler))
		r.Mount("/docgen", docgenfeature.Routes(docgenHandler))
	})

	// Health check endpoints for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	return r, nil
}
