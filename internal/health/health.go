// Package health exposes a read-only liveness endpoint with a coarse
// resource snapshot, intended for local ops polling only.
package health

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"wechat-assistant/internal/logx"
)

type memoryPayload struct {
	Total     uint64  `json:"total"`
	Available uint64  `json:"available"`
	Percent   float64 `json:"percent"`
}

type payload struct {
	Status     string        `json:"status"`
	CPUPercent float64       `json:"cpu_percent"`
	Memory     memoryPayload `json:"memory"`
}

// Server is the long-lived health listener. It needs no coordination with
// the message pipeline.
type Server struct {
	srv *http.Server
}

func NewServer(addr string) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", handle)
	return &Server{srv: &http.Server{Addr: addr, Handler: r}}
}

// Start begins serving in the calling goroutine and blocks until shutdown.
func (s *Server) Start() {
	logx.Infof("health endpoint listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logx.Errorf("health server stopped: %v", err)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func handle(c *gin.Context) {
	c.JSON(http.StatusOK, snapshot())
}

func snapshot() payload {
	p := payload{Status: "ok"}
	// Non-blocking sample: percentage since the previous call.
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		p.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		p.Memory = memoryPayload{
			Total:     vm.Total,
			Available: vm.Available,
			Percent:   vm.UsedPercent,
		}
	}
	return p
}
