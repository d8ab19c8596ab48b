package handler

import (
	"roomchat/backend/internal/chathub"
	"roomchat/backend/internal/storage"
)

// Handler wires the HTTP surface to the hub and the storage layer.
type Handler struct {
	Hub       *chathub.ManagerService
	Storage   storage.Storage
	Audit     chathub.Reporter
	JWTSecret []byte
}

func NewHandler(hub *chathub.ManagerService, s storage.Storage, sink chathub.Reporter, jwtSecret []byte) *Handler {
	return &Handler{Hub: hub, Storage: s, Audit: sink, JWTSecret: jwtSecret}
}
