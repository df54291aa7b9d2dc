package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionState_IsValid(t *testing.T) {
	for _, s := range []VersionState{VersionBuilding, VersionValidated, VersionActive, VersionRetired} {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, VersionState("").IsValid())
	assert.False(t, VersionState("deleted").IsValid())
}

func TestVersionState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to VersionState
		allowed  bool
	}{
		{VersionBuilding, VersionValidated, true},
		{VersionBuilding, VersionActive, false},
		{VersionValidated, VersionActive, true},
		{VersionActive, VersionRetired, true},
		{VersionActive, VersionBuilding, false},
		{VersionRetired, VersionValidated, true},
		{VersionRetired, VersionActive, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}
