//go:build unit

package errs_test

import (
	"errors"
	"testing"

	"mobirent/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestIsSeesMarks(t *testing.T) {
	sentinel := errs.New("validation failed")
	marked := errs.Mark(errs.New("end date before start date"), sentinel)

	assert.True(t, errs.Is(marked, sentinel))
	// The mark is invisible to the standard library matcher.
	assert.False(t, errors.Is(marked, sentinel))
}

func TestIsFollowsWraps(t *testing.T) {
	sentinel := errs.New("not found")
	wrapped := errs.Wrap(sentinel, "loading reservation")

	assert.True(t, errs.Is(wrapped, sentinel))
}

func TestMarkOfNilKeepsTheMark(t *testing.T) {
	sentinel := errs.New("boom")

	assert.Equal(t, sentinel, errs.Mark(nil, sentinel))
}
