package guard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"casino-bot/internal/config"
	"casino-bot/internal/game"
	"casino-bot/internal/model"
)

// memActivity is an in-memory ledger view.
type memActivity struct {
	rounds  map[string][]time.Time // kind -> entry times
	bigWins []time.Time
	fail    error
}

func newActivity() *memActivity { return &memActivity{rounds: map[string][]time.Time{}} }

func (m *memActivity) RoundStats(_ context.Context, _ int64, kind string, since time.Time) (int, time.Time, error) {
	if m.fail != nil {
		return 0, time.Time{}, m.fail
	}
	var n int
	var last time.Time
	for _, at := range m.rounds[kind] {
		if !at.Before(since) {
			n++
		}
		if at.After(last) {
			last = at
		}
	}
	return n, last, nil
}

func (m *memActivity) CountBigWins(_ context.Context, _ int64, since time.Time, _ int64) (int, error) {
	n := 0
	for _, at := range m.bigWins {
		if !at.Before(since) {
			n++
		}
	}
	return n, nil
}

type staticRoles struct {
	mu    sync.Mutex
	roles map[int64]model.Role
	calls int
}

func (s *staticRoles) Role(_ context.Context, ownerID int64) (model.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.roles[ownerID], nil
}

func testCasino() *config.CasinoConfig {
	return &config.CasinoConfig{
		Games: map[string]config.GameLimits{
			"slots": {MinBet: 1, MaxBet: 1000, PerHour: 5, CooldownSeconds: 3},
		},
		DefaultLimits: config.GameLimits{MinBet: 1, MaxBet: 1000, PerHour: 100},
		Guard: config.GuardConfig{
			BigWinFloor:        100000,
			MaxBigWinsPerHour:  3,
			BalanceAlarm:       1000000,
			WinningsMultiplier: 2,
			ExemptRole:         "senior_moderator",
			RoleCacheTTL:       time.Minute,
		},
	}
}

func newGuard(t *testing.T, roles *staticRoles, now time.Time) *Guard {
	t.Helper()
	g, err := New(testCasino(), roles)
	require.NoError(t, err)
	g.now = func() time.Time { return now }
	return g
}

func TestCheckRate_SixthRoundRejected(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g := newGuard(t, &staticRoles{}, now)
	act := newActivity()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, g.CheckRate(ctx, act, 1, "slots"), "round %d", i+1)
		act.rounds["slots"] = append(act.rounds["slots"], now.Add(-time.Duration(50-i*10)*time.Minute))
	}
	err := g.CheckRate(ctx, act, 1, "slots")
	assert.ErrorIs(t, err, game.ErrRateLimited)
	assert.Len(t, act.rounds["slots"], 5, "a rejection records nothing")
}

func TestCheckRate_OldRoundsDoNotCount(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g := newGuard(t, &staticRoles{}, now)
	act := newActivity()
	for i := 0; i < 10; i++ {
		act.rounds["slots"] = append(act.rounds["slots"], now.Add(-2*time.Hour))
	}
	assert.NoError(t, g.CheckRate(context.Background(), act, 1, "slots"))
}

func TestCheckRate_Cooldown(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g := newGuard(t, &staticRoles{}, now)
	act := newActivity()

	act.rounds["slots"] = []time.Time{now.Add(-time.Second)}
	err := g.CheckRate(context.Background(), act, 1, "slots")
	require.ErrorIs(t, err, game.ErrRateLimited)
	assert.Contains(t, err.Error(), "wait 3 more seconds")

	act.rounds["slots"] = []time.Time{now.Add(-3 * time.Second)}
	assert.NoError(t, g.CheckRate(context.Background(), act, 1, "slots"))
}

func TestCheckRate_KindsAreIndependent(t *testing.T) {
	now := time.Now()
	g := newGuard(t, &staticRoles{}, now)
	act := newActivity()
	for i := 0; i < 5; i++ {
		act.rounds["slots"] = append(act.rounds["slots"], now.Add(-time.Duration(i+10)*time.Minute))
	}
	assert.ErrorIs(t, g.CheckRate(context.Background(), act, 1, "slots"), game.ErrRateLimited)
	assert.NoError(t, g.CheckRate(context.Background(), act, 1, "wheel"))
}

func TestCheckRate_ActivityFailureIsInternal(t *testing.T) {
	g := newGuard(t, &staticRoles{}, time.Now())
	act := newActivity()
	act.fail = errors.New("connection reset")
	assert.ErrorIs(t, g.CheckRate(context.Background(), act, 1, "slots"), game.ErrInternal)
}

func TestCheckIntegrity(t *testing.T) {
	now := time.Now()
	g := newGuard(t, &staticRoles{}, now)
	ctx := context.Background()

	act := newActivity()
	act.bigWins = []time.Time{now.Add(-10 * time.Minute), now.Add(-20 * time.Minute), now.Add(-30 * time.Minute)}
	acct := &model.Account{OwnerID: 1, Balance: 500000, TotalWinnings: 400000}
	assert.NoError(t, g.CheckIntegrity(ctx, act, acct), "three big wins is the limit, not over it")

	act.bigWins = append(act.bigWins, now.Add(-40*time.Minute))
	assert.ErrorIs(t, g.CheckIntegrity(ctx, act, acct), game.ErrIntegrityHold)

	act = newActivity()
	rich := &model.Account{OwnerID: 2, Balance: 2000001, TotalWinnings: 1000000}
	assert.ErrorIs(t, g.CheckIntegrity(ctx, act, rich), game.ErrIntegrityHold)

	rich.TotalWinnings = 1000001
	assert.NoError(t, g.CheckIntegrity(ctx, act, rich))

	small := &model.Account{OwnerID: 3, Balance: 900000, TotalWinnings: 0}
	assert.NoError(t, g.CheckIntegrity(ctx, act, small), "below the balance alarm")
}

func TestAdmit_ExemptRoleSkipsChecks(t *testing.T) {
	now := time.Now()
	roles := &staticRoles{roles: map[int64]model.Role{7: model.RoleSeniorModerator, 8: model.RoleModerator}}
	g := newGuard(t, roles, now)
	act := newActivity()
	for i := 0; i < 10; i++ {
		act.rounds["slots"] = append(act.rounds["slots"], now.Add(-time.Duration(i+1)*time.Minute))
	}

	assert.NoError(t, g.Admit(context.Background(), act, &model.Account{OwnerID: 7}, "slots"))
	assert.ErrorIs(t, g.Admit(context.Background(), act, &model.Account{OwnerID: 8}, "slots"), game.ErrRateLimited)
}

func TestRole_Cached(t *testing.T) {
	roles := &staticRoles{roles: map[int64]model.Role{1: model.RoleAdmin}}
	g := newGuard(t, roles, time.Now())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		role, err := g.Role(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, role)
	}
	assert.Equal(t, 1, roles.calls)

	g.Forget(1)
	_, err := g.Role(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, roles.calls)
}

func TestNew_RejectsUnknownExemptRole(t *testing.T) {
	cc := testCasino()
	cc.Guard.ExemptRole = "overlord"
	_, err := New(cc, &staticRoles{})
	assert.Error(t, err)
}

// TestRateCapProperty checks that with any history the guard admits a
// round only while fewer than PerHour rounds fall in the trailing hour.
func TestRateCapProperty(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rapid.Check(t, func(t *rapid.T) {
		g, err := New(testCasino(), &staticRoles{})
		if err != nil {
			t.Fatal(err)
		}
		g.now = func() time.Time { return now }
		act := newActivity()

		ages := rapid.SliceOf(rapid.IntRange(4, 7200)).Draw(t, "ages")
		recent := 0
		for _, s := range ages {
			at := now.Add(-time.Duration(s) * time.Second)
			act.rounds["slots"] = append(act.rounds["slots"], at)
			if !at.Before(now.Add(-time.Hour)) {
				recent++
			}
		}

		err = g.CheckRate(context.Background(), act, 1, "slots")
		if recent >= 5 && !errors.Is(err, game.ErrRateLimited) {
			t.Fatalf("%d recent rounds admitted", recent)
		}
		if recent < 5 && err != nil {
			t.Fatalf("%d recent rounds rejected: %v", recent, err)
		}
	})
}
