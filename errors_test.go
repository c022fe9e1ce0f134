package vfscore

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestPathErrorWrapsAndUnwraps(t *testing.T) {
	err := pathErr("open", "a/b", ErrNotExist)
	pe, ok := err.(*PathError)
	if !ok {
		t.Fatalf("pathErr did not return *PathError: %T", err)
	}
	assert.Equal(t, "open", pe.Op)
	assert.Equal(t, "a/b", pe.Path)
	assert.ErrorIs(t, err, ErrNotExist)
	assert.Contains(t, err.Error(), "a/b")
}

func TestPathErrNilErrorIsNil(t *testing.T) {
	assert.Nil(t, pathErr("open", "x", nil))
}

func TestBadBackendPanics(t *testing.T) {
	assert.PanicsWithValue(t, "vfscore: backend contract violation: boom 1", func() {
		badBackend("boom %d", 1)
	})
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{ErrNotExist, ErrExist, ErrNotDir, ErrIsDir, ErrInvalid, ErrFault, ErrLoop, ErrIO}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b))
		}
	}
}
