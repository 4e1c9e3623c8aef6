// Package handler holds the gin handlers of the REST API.
package handler

import (
	"context"
	"log/slog"

	"hostelfix/backend/internal/auth"
	"hostelfix/backend/internal/complaint"
	"hostelfix/backend/internal/config"
	"hostelfix/backend/internal/feed"
	"hostelfix/backend/internal/logging"
	"hostelfix/backend/internal/uploads"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler містить залежності всіх HTTP-обробників
type Handler struct {
	Auth       *auth.Service
	Complaints *complaint.Service
	Uploads    *uploads.Manager
	Hub        *feed.Hub
	Store      Pinger

	Env         string
	StorageName string

	log *slog.Logger
}

type Deps struct {
	Auth        *auth.Service
	Complaints  *complaint.Service
	Uploads     *uploads.Manager
	Hub         *feed.Hub
	Store       Pinger
	Env         string
	StorageName string
	Logger      *slog.Logger
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		Auth:        d.Auth,
		Complaints:  d.Complaints,
		Uploads:     d.Uploads,
		Hub:         d.Hub,
		Store:       d.Store,
		Env:         d.Env,
		StorageName: d.StorageName,
		log:         logging.Component(d.Logger, "http"),
	}
}

func (h *Handler) development() bool {
	return h.Env == config.EnvDevelopment
}
