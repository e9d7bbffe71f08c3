package controllers

import (
	"net/http"

	"github.com/sfconnect/sfconnect-backend/api/responses"
	"github.com/sfconnect/sfconnect-backend/pkg/config"
	"github.com/sfconnect/sfconnect-backend/pkg/db"
	pkgerrors "github.com/sfconnect/sfconnect-backend/pkg/errors"
	"github.com/sfconnect/sfconnect-backend/pkg/logger"
	"github.com/sfconnect/sfconnect-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SFConnect-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when both backing stores answer pings.
func HealthReady(cfg *config.Config, database db.Pinger, cache redis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SFConnect-Env", cfg.App.Env)

		checks := map[string]string{"database": "ok", "cache": "ok"}

		if database != nil {
			if err := database.Ping(r.Context()); err != nil {
				checks["database"] = "unavailable"
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable").WithDetails(checks))
				return
			}
		}

		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				checks["cache"] = "unavailable"
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cache unreachable").WithDetails(checks))
				return
			}
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
