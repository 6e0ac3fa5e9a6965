package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle_DoubleReleaseIsNoop(t *testing.T) {
	p := newTestPool(t, 2, 0)

	h, err := p.Acquire(PriorityNormal)
	require.NoError(t, err)

	h.Release()
	assert.Equal(t, 2, p.Available())
	assert.Equal(t, 0, p.InUseCount())

	// A second release must not double-park the object.
	h.Release()
	assert.Equal(t, 2, p.Available())
	assert.Equal(t, 0, p.InUseCount())
	assert.Equal(t, 1, p.Size())
}

func TestHandle_ObjectZeroAfterRelease(t *testing.T) {
	p := newTestPool(t, 1, 0)

	h, err := p.Acquire(PriorityNormal)
	require.NoError(t, err)
	require.NotNil(t, h.Object())

	h.Release()
	assert.Nil(t, h.Object())
}

func TestHandle_NilSafe(t *testing.T) {
	var h *Handle[*testObject]
	assert.NotPanics(t, func() { h.Release() })
	assert.NotPanics(t, func() { ReleaseAll([]*Handle[*testObject]{nil, nil}) })
}

func TestHandle_NoAliasingBetweenHandles(t *testing.T) {
	p := newTestPool(t, 4, 4)

	h1, _ := p.Acquire(PriorityNormal)
	h2, _ := p.Acquire(PriorityNormal)
	require.NotSame(t, h1.Object(), h2.Object())

	h1.Object().value = 1
	assert.Equal(t, 0, h2.Object().value)
	h1.Release()
	h2.Release()
}
