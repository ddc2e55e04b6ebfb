package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndPing(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := New(Options{Addr: mr.Addr()})
	defer rdb.Close()

	require.NoError(t, Ping(context.Background(), rdb))

	mr.Close()
	assert.Error(t, Ping(context.Background(), rdb))
}
