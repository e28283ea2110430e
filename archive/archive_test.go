package archive_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"tankarena/archive"
	archivemock "tankarena/archive/mock"
	"tankarena/game"
)

func entry(room string, turn int) archive.Entry {
	return archive.Entry{
		RoomID: room,
		Turn:   turn,
		Actions: map[game.Role]game.Action{
			game.RoleA: {Kind: game.ActionFire},
			game.RoleB: {Kind: game.ActionMove, Steps: -1},
		},
		Explosions: []game.Explosion{{
			By:          game.RoleA,
			At:          game.Point{X: 1, Y: 3},
			Cells:       []game.Point{{X: 1, Y: 3}},
			BrokenWalls: []game.Point{},
			Killed:      []game.Role{game.RoleB},
		}},
		Score: map[game.Role]int{game.RoleA: turn, game.RoleB: 0},
		At:    time.Date(2024, 5, 1, 12, 0, turn, 0, time.UTC),
	}
}

// recorderSuite 两个真实后端共用的行为测试
type recorderSuite struct {
	suite.Suite
	open func(t *testing.T) archive.Recorder
	rec  archive.Recorder
	ctx  context.Context
}

func (s *recorderSuite) SetupTest() {
	s.ctx = context.Background()
	s.rec = s.open(s.T())
}

func (s *recorderSuite) TearDownTest() {
	s.NoError(s.rec.Close())
}

func (s *recorderSuite) TestHistoryIsChronologicalAndLimited() {
	for turn := 1; turn <= 5; turn++ {
		s.Require().NoError(s.rec.Record(s.ctx, entry("room-1", turn)))
	}
	s.Require().NoError(s.rec.Record(s.ctx, entry("room-2", 1)))

	got, err := s.rec.History(s.ctx, "room-1", 3)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal([]int{3, 4, 5}, []int{got[0].Turn, got[1].Turn, got[2].Turn})

	last := got[2]
	s.Equal(game.ActionMove, last.Actions[game.RoleB].Kind)
	s.Equal(-1, last.Actions[game.RoleB].Steps)
	s.Equal([]game.Role{game.RoleB}, last.Explosions[0].Killed)
	s.Equal(5, last.Score[game.RoleA])
	s.True(entry("room-1", 5).At.Equal(last.At))
}

func (s *recorderSuite) TestHistoryUnknownRoom() {
	got, err := s.rec.History(s.ctx, "ghost", 10)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *recorderSuite) TestResetEntry() {
	s.Require().NoError(s.rec.Record(s.ctx, archive.Entry{RoomID: "room-1", Turn: 1, Reset: true}))

	got, err := s.rec.History(s.ctx, "room-1", 0)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.True(got[0].Reset)
}

func TestSQLiteRecorder(t *testing.T) {
	suite.Run(t, &recorderSuite{open: func(t *testing.T) archive.Recorder {
		rec, err := archive.OpenSQLite(filepath.Join(t.TempDir(), "nested", "turns.db"))
		require.NoError(t, err)
		return rec
	}})
}

func TestRedisRecorder(t *testing.T) {
	suite.Run(t, &recorderSuite{open: func(t *testing.T) archive.Recorder {
		mr := miniredis.RunT(t)
		rec, err := archive.NewRedis(&archive.RedisConfig{
			Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		})
		require.NoError(t, err)
		return rec
	}})
}

func TestRedisRecorderTrimsAndExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	rec, err := archive.NewRedis(&archive.RedisConfig{
		Client:   redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		MaxTurns: 2,
		TTL:      time.Hour,
	})
	require.NoError(t, err)
	defer rec.Close()

	ctx := context.Background()
	for turn := 1; turn <= 4; turn++ {
		require.NoError(t, rec.Record(ctx, entry("room-1", turn)))
	}

	items, err := mr.List("tankarena:turns:room-1")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, time.Hour, mr.TTL("tankarena:turns:room-1"))

	got, err := rec.History(ctx, "room-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Turn)
	assert.Equal(t, 4, got[1].Turn)
}

func TestNewRedisRequiresClient(t *testing.T) {
	_, err := archive.NewRedis(&archive.RedisConfig{})
	assert.Error(t, err)
}

func TestAsyncDeliversInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := archivemock.NewMockRecorder(ctrl)

	var seen []int
	backend.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e archive.Entry) error {
		seen = append(seen, e.Turn)
		if e.Turn == 2 {
			return errors.New("disk full")
		}
		return nil
	}).Times(3)
	backend.EXPECT().Close().Return(nil)

	var failed []int
	a := archive.NewAsync(backend, archive.AsyncConfig{
		QueueSize: 8,
		OnError:   func(e archive.Entry, _ error) { failed = append(failed, e.Turn) },
	})
	for turn := 1; turn <= 3; turn++ {
		require.NoError(t, a.Record(context.Background(), entry("room-1", turn)))
	}
	require.NoError(t, a.Close())

	assert.Equal(t, []int{1, 2, 3}, seen)
	assert.Equal(t, int64(2), a.Written())
	assert.Equal(t, []int{2}, failed)
	assert.ErrorIs(t, a.Record(context.Background(), entry("room-1", 4)), archive.ErrClosed)
	assert.NoError(t, a.Close(), "second close is a no-op")
}

func TestAsyncDropsWhenQueueFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := archivemock.NewMockRecorder(ctrl)

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	backend.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, archive.Entry) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return nil
	}).AnyTimes()
	backend.EXPECT().Close().Return(nil)

	a := archive.NewAsync(backend, archive.AsyncConfig{QueueSize: 1})
	require.NoError(t, a.Record(context.Background(), entry("room-1", 1)))
	<-started // 写协程已取走第一条并阻塞

	require.NoError(t, a.Record(context.Background(), entry("room-1", 2)))
	err := a.Record(context.Background(), entry("room-1", 3))
	assert.ErrorIs(t, err, archive.ErrQueueFull)
	assert.Equal(t, int64(1), a.Dropped())

	close(release)
	require.NoError(t, a.Close())
	assert.Equal(t, int64(2), a.Written())
}

func TestAsyncHistoryDelegates(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := archivemock.NewMockRecorder(ctrl)
	backend.EXPECT().History(gomock.Any(), "room-1", 5).Return([]archive.Entry{entry("room-1", 9)}, nil)
	backend.EXPECT().Close().Return(nil)

	a := archive.NewAsync(backend, archive.AsyncConfig{})
	got, err := a.History(context.Background(), "room-1", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 9, got[0].Turn)
	require.NoError(t, a.Close())
}

func TestNopRecorder(t *testing.T) {
	var rec archive.Recorder = archive.Nop{}
	assert.NoError(t, rec.Record(context.Background(), entry("x", 1)))
	got, err := rec.History(context.Background(), "x", 1)
	assert.NoError(t, err)
	assert.Nil(t, got)
}
