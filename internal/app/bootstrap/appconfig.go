// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging level, CORS, request body limits, DB connect timeouts). AppConfig
// is everything specific to this service: the MongoDB target, the API key
// external clients authenticate with, and the tuning knobs for the
// reference-sync machinery.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// API key for external API consumers (Bearer token auth)
	APIKey string

	// Reference sync tuning. Each KPI/standard back-reference update is
	// retried RefSyncAttempts times with linear RefSyncBackoff between
	// tries; the reconcile job repairs whatever still drifts, every
	// ReconcileInterval.
	RefSyncAttempts   int
	RefSyncBackoff    time.Duration
	ReconcileInterval time.Duration
}
