package health

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLinkChecker_ReflectsProbe(t *testing.T) {
	cases := []struct {
		name   string
		status Status
		msg    string
	}{
		{"healthy", StatusHealthy, ""},
		{"degraded", StatusDegraded, "no host connection"},
		{"unhealthy", StatusUnhealthy, "serial port closed"},
	}
	for _, tc := range cases {
		c := NewLinkChecker(func() (Status, string) { return tc.status, tc.msg })
		res := c.Check(context.Background())
		assert.Equal(t, tc.status, res.Status, tc.name)
		assert.Equal(t, tc.msg, res.Message, tc.name)
		assert.Equal(t, "link", c.Name())
	}
}

func TestLinkChecker_NilProbe(t *testing.T) {
	res := NewLinkChecker(nil).Check(context.Background())
	assert.Equal(t, StatusDegraded, res.Status)
}

func TestLinkChecker_DeadLinkBlocksReadiness(t *testing.T) {
	agg := NewAggregator(0)
	agg.Register(NewLoopChecker(func() time.Time { return time.Now() }, 0))
	agg.Register(NewLinkChecker(func() (Status, string) { return StatusUnhealthy, "serial port closed" }))

	assert.False(t, agg.Ready(context.Background()), "dead link must fail readiness")
	rep := agg.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, rep.Status)
	assert.Equal(t, "serial port closed", rep.Checks["link"].Message)
}
