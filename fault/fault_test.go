package fault

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	base := New(IO, "create snapshot", fs.ErrPermission)
	wrapped := fmt.Errorf("writing step 10: %w", base)

	assert.Equal(t, IO, KindOf(wrapped))
	assert.NotEqual(t, Device, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, fs.ErrPermission))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Unknown, KindOf(errors.New("boom")))
	assert.Equal(t, Unknown, KindOf(nil))
}

func TestNewNil(t *testing.T) {
	assert.NoError(t, New(Config, "op", nil))
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{Unknown, 1},
		{Config, 2},
		{Geometry, 3},
		{Device, 4},
		{IO, 5},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.ExitCode())
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := Newf(Geometry, "build faces", "face %d is degenerate", 4)
	assert.Equal(t, "geometry error: build faces: face 4 is degenerate", err.Error())
}
