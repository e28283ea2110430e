package server

import (
	"errors"
	"hash/fnv"
	"math/rand"
	"sort"
	"sync"

	"tankarena/archive"
	"tankarena/game"
)

// ErrRoomNotFound 房间不存在（由接入层处理）
var ErrRoomNotFound = errors.New("server: room not found")

// ManagerConfig 房间管理器配置
type ManagerConfig struct {
	Game game.Config
	// 非 0 时每个房间的随机源由 Seed 与房间号共同决定，便于复现
	Seed     int64
	Recorder archive.Recorder
}

// RoomManager 管理多个房间的生命周期：首次加入时创建，A、B 都离开后回收
// 加入/离开在管理器锁内完成（管理器锁 → 房间锁），回收不会与并发加入竞争
// 回收时仍在线的观战连接按房间号暂存，同名房间重建后以观战身份接回
type RoomManager struct {
	mu      sync.Mutex
	rooms   map[string]*Room
	waiting map[string]map[PlayerID]Sender
	cfg     ManagerConfig
}

func NewRoomManager(cfg ManagerConfig) *RoomManager {
	return &RoomManager{
		rooms:   make(map[string]*Room),
		waiting: make(map[string]map[PlayerID]Sender),
		cfg:     cfg,
	}
}

// Join 获取或创建房间并将连接加入
func (m *RoomManager) Join(roomID string, id PlayerID, conn Sender) (*Room, game.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	if !ok {
		var err error
		r, err = NewRoom(roomID, m.cfg.Game, m.rng(roomID), m.cfg.Recorder)
		if err != nil {
			return nil, "", err
		}
		m.rooms[roomID] = r
		Log.Infow("room created", "room", roomID)
	}
	role := r.Join(id, conn)
	if w, ok := m.waiting[roomID]; ok {
		delete(m.waiting, roomID)
		delete(w, id)
		r.adopt(w)
	}
	return r, role, nil
}

// Leave 连接离开；房间内不再有对战方时从注册表删除
func (m *RoomManager) Leave(roomID string, id PlayerID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	if !ok {
		if w, ok := m.waiting[roomID]; ok {
			delete(w, id)
			if len(w) == 0 {
				delete(m.waiting, roomID)
			}
		}
		return
	}
	if found, vacant := r.Leave(id); found && vacant {
		delete(m.rooms, roomID)
		if rest := r.detach(); len(rest) > 0 {
			m.waiting[roomID] = rest
		}
		Log.Infow("room closed", "room", roomID)
	}
}

// Get 查找房间
func (m *RoomManager) Get(roomID string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// List 按房间号排序返回当前所有房间
func (m *RoomManager) List() []*Room {
	m.mu.Lock()
	out := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GameConfig 新房间使用的配置
func (m *RoomManager) GameConfig() game.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.Game
}

// SetGameConfig 热更新新房间的配置；已存在的房间（包括其重开）沿用创建时的配置
func (m *RoomManager) SetGameConfig(cfg game.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.cfg.Game = cfg
	m.mu.Unlock()
	return nil
}

func (m *RoomManager) rng(roomID string) *rand.Rand {
	if m.cfg.Seed == 0 {
		return nil
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(roomID))
	return rand.New(rand.NewSource(m.cfg.Seed ^ int64(h.Sum64())))
}
