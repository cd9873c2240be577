package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(502, 30*time.Millisecond)
	c.Record(429, 0)
	c.AssessmentSubmitted()
	c.NotificationFailed()
	c.NotificationFailed()

	snap := c.Snapshot()
	assert.Equal(t, uint64(3), snap["requestsTotal"])
	assert.Equal(t, uint64(1), snap["errorsTotal"])
	assert.Equal(t, uint64(1), snap["rateLimitedTotal"])
	assert.Equal(t, uint64(40), snap["totalDurationMs"])
	assert.InDelta(t, 13.33, snap["avgDurationMs"], 0.01)
	assert.Equal(t, uint64(1), snap["assessmentSubmissionTotal"])
	assert.Equal(t, uint64(2), snap["notificationFailuresTotal"])
}

func TestNilCollectorCountersAreSafe(t *testing.T) {
	var c *Collector
	c.AssessmentSubmitted()
	c.NotificationFailed()
}
