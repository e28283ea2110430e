package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	ActionsAccepted      int64 // 被接受的动作数
	InvalidActions       int64 // 载荷非法被丢弃
	DuplicateSubmissions int64 // 同一回合重复提交被丢弃
	NotCombatant         int64 // 观战者/未知角色尝试行动或重开
	TurnsResolved        int64 // 完成结算的回合数
	Resets               int64 // 重开次数
	BroadcastsDropped    int64 // 因发送队列满被丢弃的帧
	ArchiveDropped       int64 // 存档队列满或写入失败
	TotalResolveNs       int64 // 结算累计耗时（纳秒）
}

func (m *RoomMetrics) IncAccepted() { atomic.AddInt64(&m.ActionsAccepted, 1) }
func (m *RoomMetrics) IncInvalid() { atomic.AddInt64(&m.InvalidActions, 1) }
func (m *RoomMetrics) IncDuplicate() { atomic.AddInt64(&m.DuplicateSubmissions, 1) }
func (m *RoomMetrics) IncNotCombatant() { atomic.AddInt64(&m.NotCombatant, 1) }
func (m *RoomMetrics) IncResets() { atomic.AddInt64(&m.Resets, 1) }
func (m *RoomMetrics) IncBroadcastDropped() { atomic.AddInt64(&m.BroadcastsDropped, 1) }
func (m *RoomMetrics) IncArchiveDropped() { atomic.AddInt64(&m.ArchiveDropped, 1) }
func (m *RoomMetrics) AddResolve(ns int64) {
	atomic.AddInt64(&m.TurnsResolved, 1)
	atomic.AddInt64(&m.TotalResolveNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	turns := atomic.LoadInt64(&m.TurnsResolved)
	total := atomic.LoadInt64(&m.TotalResolveNs)
	var avgMs float64
	if turns > 0 {
		avgMs = float64(total) / float64(turns) / 1e6
	}
	return map[string]any{
		"actions_accepted":      atomic.LoadInt64(&m.ActionsAccepted),
		"invalid_actions":       atomic.LoadInt64(&m.InvalidActions),
		"duplicate_submissions": atomic.LoadInt64(&m.DuplicateSubmissions),
		"not_combatant":         atomic.LoadInt64(&m.NotCombatant),
		"turns_resolved":        turns,
		"resets":                atomic.LoadInt64(&m.Resets),
		"broadcasts_dropped":    atomic.LoadInt64(&m.BroadcastsDropped),
		"archive_dropped":       atomic.LoadInt64(&m.ArchiveDropped),
		"avg_resolve_ms":        avgMs,
	}
}
