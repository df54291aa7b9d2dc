package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view ViewType
		want string
	}{
		{ViewSearch, "search"},
		{ViewVersions, "versions"},
		{ViewType(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.view.String())
	}
}
