package api

import (
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
)

// NewServer builds the debug server listening on addr.
func NewServer(addr string, h Handler) *server.Hertz {
	s := server.Default(
		server.WithHostPorts(addr),
		server.WithExitWaitTime(2*time.Second),
	)
	h.RegisterRoutes(s)
	return s
}
