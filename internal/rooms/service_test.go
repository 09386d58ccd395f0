package rooms

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/boggle/apps/go-server/internal/game"
	"github.com/robalobadob/boggle/apps/go-server/internal/store"
	"github.com/robalobadob/boggle/apps/go-server/internal/words"
)

// clock is a settable time source.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock { return &clock{t: time.UnixMilli(1_700_000_000_000)} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// ids returns a NewID func that yields the given codes in order.
func ids(codes ...string) func() (string, error) {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if i >= len(codes) {
			return "", fmt.Errorf("out of ids")
		}
		i++
		return codes[i-1], nil
	}
}

func newService(t *testing.T) (*Service, store.Store, *clock) {
	t.Helper()
	st := store.NewMemoryStore()
	c := newClock()
	return New(st, Options{Now: c.Now}), st, c
}

func create(t *testing.T, s *Service, player string, board int) string {
	t.Helper()
	res, err := s.CreateRoom(context.Background(), player, board)
	require.NoError(t, err)
	return res.RoomID
}

func TestFullGame(t *testing.T) {
	ctx := context.Background()
	s, _, c := newService(t)

	created, err := s.CreateRoom(ctx, "A", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, created.BoardCode)
	assert.Len(t, created.RoomID, game.RoomIDLength)
	id := created.RoomID

	joined, err := s.JoinRoom(ctx, id, "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, joined.Players)
	assert.Equal(t, 7, joined.BoardCode)

	started, err := s.StartRoom(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, c.Now().Add(DefaultCountdown).UnixMilli(), started.StartTime)

	sub, err := s.SubmitWords(ctx, id, "A", "cat,dog")
	require.NoError(t, err)
	assert.Equal(t, &SubmitResult{Success: true, AllSubmitted: false, Submitted: 1, Total: 2}, sub)

	poll, err := s.PollRoom(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, game.StatusPlaying, poll.Status)
	assert.Equal(t, []string{"A"}, poll.PlayersSubmitted)
	require.NotNil(t, poll.StartTime)
	assert.Equal(t, started.StartTime, *poll.StartTime)

	sub, err = s.SubmitWords(ctx, id, "B", "dog,fish")
	require.NoError(t, err)
	assert.True(t, sub.AllSubmitted)
	assert.Equal(t, 2, sub.Submitted)

	res, err := s.GetResults(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, game.StatusFinished, res.Status)
	assert.Equal(t, []string{"dog"}, res.Duplicates)

	scores := map[string]int{}
	for _, p := range res.Players {
		scores[p.Name] = p.Score
	}
	assert.Equal(t, words.Score("cat"), scores["A"])
	assert.Equal(t, words.Score("fish"), scores["B"])
}

func TestCreateRoom(t *testing.T) {
	ctx := context.Background()
	s, st, _ := newService(t)

	_, err := s.CreateRoom(ctx, "  ", 3)
	assert.ErrorIs(t, err, game.ErrInputMissing)

	id := create(t, s, " Alice ", 3)
	r, err := st.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice"}, r.Players)
	assert.Equal(t, game.StatusWaiting, r.Status)
	assert.Empty(t, r.Submissions)
}

func TestCreateRoomRetriesCollisions(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Create(ctx, game.NewRoom("AAAAAA", "X", 1, time.Now())))

	s := New(st, Options{NewID: ids("AAAAAA", "AAAAAA", "BBBBBB")})
	res, err := s.CreateRoom(ctx, "Alice", 1)
	require.NoError(t, err)
	assert.Equal(t, "BBBBBB", res.RoomID)

	taken := make([]string, maxIDAttempts)
	for i := range taken {
		taken[i] = "AAAAAA"
	}
	s = New(st, Options{NewID: ids(taken...)})
	_, err = s.CreateRoom(ctx, "Alice", 1)
	assert.ErrorIs(t, err, game.ErrInternal)
}

func TestJoinRoom(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newService(t)
	id := create(t, s, "Alice", 1)

	t.Run("lower-case room code is accepted", func(t *testing.T) {
		res, err := s.JoinRoom(ctx, " "+strings.ToLower(id)+" ", "Bob")
		require.NoError(t, err)
		assert.Equal(t, []string{"Alice", "Bob"}, res.Players)
	})
	t.Run("same name twice is idempotent", func(t *testing.T) {
		res, err := s.JoinRoom(ctx, id, "BOB")
		require.NoError(t, err)
		assert.Equal(t, []string{"Alice", "Bob"}, res.Players)
	})
	t.Run("missing input", func(t *testing.T) {
		_, err := s.JoinRoom(ctx, "", "Bob")
		assert.ErrorIs(t, err, game.ErrInputMissing)
		_, err = s.JoinRoom(ctx, id, "")
		assert.ErrorIs(t, err, game.ErrInputMissing)
	})
	t.Run("unknown room", func(t *testing.T) {
		_, err := s.JoinRoom(ctx, "ZZZZZZ", "Bob")
		assert.ErrorIs(t, err, game.ErrNotFound)
		assert.Equal(t, "Room not found", game.Message(err))
	})
	t.Run("after start", func(t *testing.T) {
		_, err := s.StartRoom(ctx, id)
		require.NoError(t, err)
		_, err = s.JoinRoom(ctx, id, "Carol")
		assert.ErrorIs(t, err, game.ErrConflict)
		assert.Equal(t, "Game already started", game.Message(err))
	})
}

func TestStartRoom(t *testing.T) {
	ctx := context.Background()
	s, _, c := newService(t)
	id := create(t, s, "Alice", 1)

	first, err := s.StartRoom(ctx, id)
	require.NoError(t, err)

	c.Advance(2 * time.Second)
	second, err := s.StartRoom(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first.StartTime+2000, second.StartTime, "restart resets the countdown")

	_, err = s.SubmitWords(ctx, id, "Alice", "cat")
	require.NoError(t, err)

	c.Advance(time.Second)
	third, err := s.StartRoom(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, second.StartTime, third.StartTime, "finished room keeps its start time")

	poll, err := s.PollRoom(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, game.StatusFinished, poll.Status)

	_, err = s.StartRoom(ctx, "")
	assert.ErrorIs(t, err, game.ErrInputMissing)
	_, err = s.StartRoom(ctx, "NOPE99")
	assert.ErrorIs(t, err, game.ErrNotFound)
}

func TestPollRoomBeforeStart(t *testing.T) {
	s, _, _ := newService(t)
	id := create(t, s, "Alice", 1)

	poll, err := s.PollRoom(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice"}, poll.Players)
	assert.Equal(t, game.StatusWaiting, poll.Status)
	assert.Nil(t, poll.StartTime)
	assert.NotNil(t, poll.PlayersSubmitted)
	assert.Empty(t, poll.PlayersSubmitted)
}

func TestSubmitWords(t *testing.T) {
	ctx := context.Background()
	s, st, _ := newService(t)
	id := create(t, s, "Alice", 1)
	_, err := s.JoinRoom(ctx, id, "Bob")
	require.NoError(t, err)
	_, err = s.StartRoom(ctx, id)
	require.NoError(t, err)

	t.Run("words are folded and deduped", func(t *testing.T) {
		_, err := s.SubmitWords(ctx, id, "alice", " Cat, ,cat,DOG ")
		require.NoError(t, err)
		r, err := st.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []string{"cat", "dog"}, r.Submissions["alice"])
	})
	t.Run("resubmission overwrites", func(t *testing.T) {
		_, err := s.SubmitWords(ctx, id, "Alice", "bird")
		require.NoError(t, err)
		r, err := st.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []string{"bird"}, r.Submissions["alice"])
	})
	t.Run("non-member is rejected", func(t *testing.T) {
		_, err := s.SubmitWords(ctx, id, "Mallory", "cat")
		assert.ErrorIs(t, err, game.ErrConflict)
	})
	t.Run("empty list counts as submitted", func(t *testing.T) {
		res, err := s.SubmitWords(ctx, id, "Bob", "")
		require.NoError(t, err)
		assert.True(t, res.AllSubmitted)

		results, err := s.GetResults(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, game.StatusFinished, results.Status)
		for _, p := range results.Players {
			if p.Name == "Bob" {
				assert.Empty(t, p.Words)
				assert.Zero(t, p.Score)
			}
		}
	})
	t.Run("missing input", func(t *testing.T) {
		_, err := s.SubmitWords(ctx, id, "", "cat")
		assert.ErrorIs(t, err, game.ErrInputMissing)
	})
}

func TestSubmitWordsBeforeStart(t *testing.T) {
	ctx := context.Background()
	s, _, c := newService(t)
	id := create(t, s, "Solo", 1)

	_, err := s.SubmitWords(ctx, id, "Solo", "cat")
	assert.ErrorIs(t, err, game.ErrConflict)
	assert.Equal(t, "Game not started", game.Message(err))

	poll, err := s.PollRoom(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, game.StatusWaiting, poll.Status)
	assert.Empty(t, poll.PlayersSubmitted)

	start, err := s.StartRoom(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, c.Now().Add(DefaultCountdown).UnixMilli(), start.StartTime)

	res, err := s.SubmitWords(ctx, id, "Solo", "cat")
	require.NoError(t, err)
	assert.True(t, res.AllSubmitted)
}

func TestLeaveRoom(t *testing.T) {
	ctx := context.Background()
	s, st, _ := newService(t)

	t.Run("last player out deletes the room", func(t *testing.T) {
		id := create(t, s, "Alice", 1)
		_, err := s.JoinRoom(ctx, id, "Bob")
		require.NoError(t, err)

		res, err := s.LeaveRoom(ctx, id, "alice")
		require.NoError(t, err)
		assert.True(t, res.Success)
		poll, err := s.PollRoom(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []string{"Bob"}, poll.Players)

		_, err = s.LeaveRoom(ctx, id, "Bob")
		require.NoError(t, err)
		_, err = s.PollRoom(ctx, id)
		assert.ErrorIs(t, err, game.ErrNotFound)
		_, err = st.Get(ctx, id)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
	t.Run("unknown room and unknown player succeed", func(t *testing.T) {
		res, err := s.LeaveRoom(ctx, "GONE22", "Alice")
		require.NoError(t, err)
		assert.True(t, res.Success)

		id := create(t, s, "Alice", 1)
		_, err = s.LeaveRoom(ctx, id, "Nobody")
		require.NoError(t, err)
		poll, err := s.PollRoom(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []string{"Alice"}, poll.Players)
	})
	t.Run("leaving can finish a playing room", func(t *testing.T) {
		id := create(t, s, "Alice", 1)
		_, err := s.JoinRoom(ctx, id, "Bob")
		require.NoError(t, err)
		_, err = s.StartRoom(ctx, id)
		require.NoError(t, err)
		_, err = s.SubmitWords(ctx, id, "Alice", "cat")
		require.NoError(t, err)

		_, err = s.LeaveRoom(ctx, id, "Bob")
		require.NoError(t, err)
		poll, err := s.PollRoom(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, game.StatusFinished, poll.Status)
	})
}

func TestGetResults(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newService(t)

	_, err := s.GetResults(ctx, "")
	assert.ErrorIs(t, err, game.ErrInputMissing)
	_, err = s.GetResults(ctx, "NOPE99")
	assert.ErrorIs(t, err, game.ErrNotFound)

	id := create(t, s, "Alice", 1)
	_, err = s.JoinRoom(ctx, id, "Bob")
	require.NoError(t, err)
	_, err = s.StartRoom(ctx, id)
	require.NoError(t, err)
	_, err = s.SubmitWords(ctx, id, "Alice", "quiet")
	require.NoError(t, err)

	res, err := s.GetResults(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, game.StatusPlaying, res.Status)
	require.Len(t, res.Players, 2)
	assert.Equal(t, "Alice", res.Players[0].Name)
	assert.Equal(t, 1, res.Players[0].Score)
	assert.Equal(t, "Bob", res.Players[1].Name)
	assert.Empty(t, res.Players[1].Words)
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()
	s, st, c := newService(t)

	old := create(t, s, "Alice", 1)
	c.Advance(30 * time.Minute)
	young := create(t, s, "Bob", 2)

	c.Advance(31 * time.Minute)
	n, err := s.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = st.Get(ctx, old)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Get(ctx, young)
	assert.NoError(t, err)

	c.Advance(30 * time.Minute)
	create(t, s, "Carol", 3)
	_, err = st.Get(ctx, young)
	assert.ErrorIs(t, err, store.ErrNotFound, "create reaps before inserting")
}

func TestReaperRun(t *testing.T) {
	s, st, c := newService(t)
	id := create(t, s, "Alice", 1)
	c.Advance(2 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewReaper(s, 5*time.Millisecond).Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		_, err := st.Get(context.Background(), id)
		return err != nil
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reaper did not stop")
	}
}

func TestReaperDisabled(t *testing.T) {
	s, _, _ := newService(t)
	done := make(chan struct{})
	go func() {
		NewReaper(s, 0).Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled reaper should return immediately")
	}
}

func TestConcurrentJoins(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newService(t)
	id := create(t, s, "Host", 1)

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.JoinRoom(ctx, id, fmt.Sprintf("P%02d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	poll, err := s.PollRoom(ctx, id)
	require.NoError(t, err)
	assert.Len(t, poll.Players, n+1)
	assert.Zero(t, s.locks.size(), "locks are released")
}

func TestConcurrentSubmits(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newService(t)
	id := create(t, s, "P00", 1)

	const n = 12
	for i := 1; i < n; i++ {
		_, err := s.JoinRoom(ctx, id, fmt.Sprintf("P%02d", i))
		require.NoError(t, err)
	}
	_, err := s.StartRoom(ctx, id)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.SubmitWords(ctx, id, fmt.Sprintf("P%02d", i), fmt.Sprintf("shared,word%02d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	res, err := s.GetResults(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, game.StatusFinished, res.Status)
	assert.Equal(t, []string{"shared"}, res.Duplicates)
	require.Len(t, res.Players, n)
	for _, p := range res.Players {
		assert.Len(t, p.Words, 2, p.Name)
		assert.Len(t, p.UniqueWords, 1, p.Name)
	}
}

// Two services over one store stand in for two server processes: only the
// store's version check keeps their writes from clobbering each other.
func TestConcurrentServicesShareStore(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	a := New(st, Options{})
	b := New(st, Options{})
	id := create(t, a, "Host", 1)

	const perService = 4
	var wg sync.WaitGroup
	for i, svc := range []*Service{a, b} {
		for j := 0; j < perService; j++ {
			wg.Add(1)
			go func(svc *Service, name string) {
				defer wg.Done()
				_, err := svc.JoinRoom(ctx, id, name)
				assert.NoError(t, err)
			}(svc, fmt.Sprintf("S%dP%d", i, j))
		}
	}
	wg.Wait()

	poll, err := a.PollRoom(ctx, id)
	require.NoError(t, err)
	assert.Len(t, poll.Players, 2*perService+1)
}

// getHook wraps a store and runs fn once, right after the first Get.
type getHook struct {
	store.Store
	once sync.Once
	fn   func()
}

func (h *getHook) Get(ctx context.Context, id string) (*game.Room, error) {
	r, err := h.Store.Get(ctx, id)
	h.once.Do(h.fn)
	return r, err
}

// Another process joining between the last player's read and delete must
// keep the room alive.
func TestLastLeaveKeepsConcurrentJoin(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	b := New(st, Options{})
	id := create(t, b, "Host", 1)

	hooked := &getHook{Store: st}
	hooked.fn = func() {
		_, err := b.JoinRoom(ctx, id, "Guest")
		assert.NoError(t, err)
	}
	a := New(hooked, Options{})

	res, err := a.LeaveRoom(ctx, id, "Host")
	require.NoError(t, err)
	assert.True(t, res.Success)

	poll, err := b.PollRoom(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Guest"}, poll.Players)
	assert.Equal(t, game.StatusWaiting, poll.Status)
}

func TestParseBoardCode(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"7", 7, false},
		{" 42 ", 42, false},
		{"0", 0, false},
		{"", 0, true},
		{"seven", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseBoardCode(tc.in)
		if tc.wantErr {
			assert.ErrorIs(t, err, game.ErrInputMissing, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}
