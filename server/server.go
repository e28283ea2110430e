package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"tankarena/config"
)

// Server HTTP 入口：WebSocket、静态资源、管理与监控接口
type Server struct {
	Rooms    *RoomManager
	cfg      config.ServerConfig
	upgrader websocket.Upgrader
}

// NewServer 按配置构建；AllowedOrigins 为空时允许所有来源
func NewServer(cfg config.ServerConfig, rooms *RoomManager) *Server {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = true
	}
	return &Server{
		Rooms: rooms,
		cfg:   cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				return allowed[r.Header.Get("Origin")]
			},
		},
	}
}

// Handler 路由表
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	mux.HandleFunc("/admin/config", s.HandleAdminConfig)
	mux.HandleFunc("/admin/rooms", s.HandleAdminRooms)
	mux.HandleFunc("/admin/rooms/view", s.HandleRoomView)
	mux.HandleFunc("/metrics", s.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	if s.cfg.StaticDir != "" {
		// 前后端分离：将 / 映射到静态资源目录
		mux.Handle("/", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}
	return mux
}
