package controllers

import (
	"net/http"

	"github.com/daleelcare/daleelcare-backend/api/responses"
	"github.com/daleelcare/daleelcare-backend/pkg/db"
	pkgerrors "github.com/daleelcare/daleelcare-backend/pkg/errors"
	"github.com/daleelcare/daleelcare-backend/pkg/logger"
	"github.com/daleelcare/daleelcare-backend/pkg/redis"
)

func Live() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// Ready verifies the database and redis are reachable before reporting healthy.
func Ready(database db.Pinger, cache redis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if database != nil {
			if err := database.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}

		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
