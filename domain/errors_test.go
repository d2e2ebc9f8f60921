package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("loading post: %w", NotFound("post %q not found", "missing"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, `post "missing" not found`, Message(err))
}

func TestStorageErrorKeepsCause(t *testing.T) {
	err := Storage("failed to save projects", fs.ErrPermission)

	assert.True(t, errors.Is(err, ErrStorage))
	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.Equal(t, "failed to save projects", Message(err))
}

func TestMessageOfPlainError(t *testing.T) {
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, Kind(0), KindOf(errors.New("boom")))
}
