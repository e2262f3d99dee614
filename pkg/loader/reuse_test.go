package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/xktkit/pkg/xkt"
)

func TestCountGeometryUses(t *testing.T) {
	uses, err := CountGeometryUses([]uint32{0, 2, 2, 2, 1}, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 3, 0}, uses)

	assert.Equal(t, Unique, Classify(uses[0]))
	assert.Equal(t, Reused, Classify(uses[2]))
	assert.Equal(t, Unique, Classify(uses[3]))

	_, err = CountGeometryUses([]uint32{4}, 4)
	assert.ErrorIs(t, err, xkt.ErrCorruptContainer)
}

func TestBatchPolicies(t *testing.T) {
	tests := []struct {
		name         string
		policy       BatchPolicy
		numPositions int
		uses         int
		want         bool
	}{
		{"never", NeverForceBatch{}, 3, 2, false},
		{"always", AlwaysForceBatch{}, 3000, 200, true},
		{"small and rare", ThresholdPolicy{MaxPositions: 100, MinUses: 10}, 50, 3, true},
		{"small but frequent", ThresholdPolicy{MaxPositions: 100, MinUses: 10}, 50, 10, false},
		{"too large", ThresholdPolicy{MaxPositions: 100, MinUses: 10}, 101, 2, false},
		{"no use limit", ThresholdPolicy{MaxPositions: 100}, 100, 1000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.ForceBatch(tt.numPositions, tt.uses))
		})
	}
}

func TestReuseString(t *testing.T) {
	assert.Equal(t, "unique", Unique.String())
	assert.Equal(t, "reused", Reused.String())
}
