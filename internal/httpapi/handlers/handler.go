package handlers

import (
	"context"

	"go.uber.org/zap"
)

// Imitator is the engine surface the HTTP layer needs.
type Imitator interface {
	Ingest(ctx context.Context, name, text string) error
	Generate(ctx context.Context, name string) (string, error)
	GenerateForRandomUser(ctx context.Context) (name, text string, err error)
}

type Handler struct {
	Svc Imitator
	Log *zap.Logger
}

func NewHandler(svc Imitator, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Svc: svc, Log: log}
}
