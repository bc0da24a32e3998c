package interrupt_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bamsammich/burrow/internal/interrupt"
)

func TestFlag_SetReset(t *testing.T) {
	t.Parallel()

	var f interrupt.Flag
	assert.False(t, f.Interrupted())

	f.Set()
	assert.True(t, f.Interrupted())

	f.Reset()
	assert.False(t, f.Interrupted())
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	c := interrupt.FromContext(ctx)
	assert.False(t, c.Interrupted())

	cancel()
	assert.True(t, c.Interrupted())
}

func TestAny(t *testing.T) {
	t.Parallel()

	var a, b interrupt.Flag
	c := interrupt.Any(&a, nil, &b)
	assert.False(t, c.Interrupted())

	b.Set()
	assert.True(t, c.Interrupted())
}
