package server

import (
	"encoding/json"
	"net/http"

	"tankarena/game"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HandleAdminConfig 新房间配置的读取与更新（热更新可破坏墙密度与地图）
// GET  /admin/config  返回当前配置
// POST /admin/config  以 JSON 载荷更新部分字段，只影响之后创建的房间
func (s *Server) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	type cfg struct {
		BreakableDensity *float64 `json:"breakableDensity,omitempty"`
		Map              []string `json:"map,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		cur := s.Rooms.GameConfig()
		writeJSON(w, http.StatusOK, cfg{BreakableDensity: &cur.BreakableDensity, Map: cur.Map})
	case http.MethodPost:
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		next := s.Rooms.GameConfig()
		if body.BreakableDensity != nil {
			if *body.BreakableDensity < 0 || *body.BreakableDensity > 1 {
				http.Error(w, "breakableDensity must be in [0,1]", http.StatusBadRequest)
				return
			}
			next.BreakableDensity = *body.BreakableDensity
		}
		if body.Map != nil {
			next.Map = body.Map
		}
		if err := s.Rooms.SetGameConfig(next); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		Log.Infof("config updated: breakableDensity=%.2f map=%dx%d",
			next.BreakableDensity, len(next.Map[0]), len(next.Map))
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleAdminRooms 列出当前所有房间
// GET /admin/rooms
func (s *Server) HandleAdminRooms(w http.ResponseWriter, r *http.Request) {
	rooms := s.Rooms.List()
	out := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, room.Summary())
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": out})
}

// HandleRoomView 以观战者视角返回房间快照
// GET /admin/rooms/view?room=room-1
func (s *Server) HandleRoomView(w http.ResponseWriter, r *http.Request) {
	room, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, room.View(game.RoleSpectator))
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=room-1
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	room, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room":    room.ID,
		"turn":    room.Summary().Turn,
		"metrics": room.Metrics().Snapshot(),
	})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*Room, bool) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		http.Error(w, "missing room query", http.StatusBadRequest)
		return nil, false
	}
	room, err := s.Rooms.Get(roomID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	return room, true
}
