package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for role, name := range roleNames {
		got, err := ParseRole(name)
		require.NoError(t, err)
		assert.Equal(t, role, got)
		assert.Equal(t, name, got.String())
	}

	_, err := ParseRole("owner")
	assert.Error(t, err)

	assert.True(t, RoleAdmin.AtLeast(RoleSeniorModerator))
	assert.False(t, RoleModerator.AtLeast(RoleSeniorModerator))
}

func TestSessionState_Validate(t *testing.T) {
	crash := SessionState{
		Kind:  KindCrash,
		Stake: 100,
		Crash: &CrashState{Point: decimal.RequireFromString("2.5"), Current: decimal.NewFromInt(1)},
	}
	assert.NoError(t, crash.Validate())

	mismatched := crash
	mismatched.Kind = KindMines
	assert.Error(t, mismatched.Validate())

	zero := crash
	zero.Stake = 0
	assert.Error(t, zero.Validate())

	single := SessionState{Kind: KindSlots, Stake: 10}
	assert.Error(t, single.Validate())
}

func TestSessionState_JSONKeepsDecimalPrecision(t *testing.T) {
	in := SessionState{
		Kind:  KindCrash,
		Stake: 100,
		Crash: &CrashState{Point: decimal.RequireFromString("2.50"), Current: decimal.RequireFromString("2.40")},
	}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out SessionState
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, out.Crash.Point.Equal(in.Crash.Point))
	assert.True(t, out.Crash.Current.Equal(in.Crash.Current))
	assert.Contains(t, in.Snapshot(), `"kind":"crash"`)
}

func TestMinesState_Lookups(t *testing.T) {
	m := MinesState{Size: 5, Hazards: []int{3, 7}, Opened: []int{1}}
	assert.True(t, m.IsHazard(7))
	assert.False(t, m.IsHazard(1))
	assert.True(t, m.IsOpened(1))
	assert.False(t, m.IsOpened(3))
}
