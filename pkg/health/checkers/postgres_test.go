package checkers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type slowPinger struct{}

func (slowPinger) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestPostgresChecker_Timeout(t *testing.T) {
	c := NewPostgresChecker(slowPinger{})
	c.timeout = 10 * time.Millisecond

	assert.Equal(t, "postgres", c.Name())
	assert.ErrorIs(t, c.Check(context.Background()), context.DeadlineExceeded)
}
