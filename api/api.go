package api

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// APIServer wraps the Fiber engine and its listen address
type APIServer struct {
	app           *fiber.App
	listenAddress string
}

// NewAPIServer creates a server listening on the given address
func NewAPIServer(listenAddress string) *APIServer {
	return &APIServer{
		app:           fiber.New(),
		listenAddress: listenAddress,
	}
}

// GetEngine exposes the underlying Fiber app for route setup
func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

// Run starts serving and blocks until shutdown
func (s *APIServer) Run() error {
	log.Println("Starting API Server")
	log.Printf("Listening on %s", s.listenAddress)

	return s.app.Listen(s.listenAddress)
}
