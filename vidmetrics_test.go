package vidmetrics_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/vidmetrics"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := vidmetrics.Errorf(vidmetrics.EINVALID, "target %q invalid", "ftp://x")

	assert.Equal(t, vidmetrics.EINVALID, vidmetrics.ErrorCode(err))
	assert.Equal(t, "target \"ftp://x\" invalid", vidmetrics.ErrorMessage(err))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("extract: %w", vidmetrics.Errorf(vidmetrics.EINVALID, "no host"))

	assert.Equal(t, vidmetrics.EINVALID, vidmetrics.ErrorCode(err))
	assert.Equal(t, "no host", vidmetrics.ErrorMessage(err))
}

func TestErrorCode_PlainError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, vidmetrics.EINTERNAL, vidmetrics.ErrorCode(err))
	assert.Equal(t, "Internal error.", vidmetrics.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, vidmetrics.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, vidmetrics.ErrorMessage(nil))
}
