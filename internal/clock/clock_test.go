package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualAdvance(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewManual(start)

	assert.Equal(t, start, c.Now())

	c.Advance(1500 * time.Millisecond)
	assert.Equal(t, start.Add(1500*time.Millisecond), c.Now())

	c.Advance(-time.Second)
	assert.Equal(t, start.Add(1500*time.Millisecond), c.Now(), "negative advance must be ignored")
}

func TestManualSet(t *testing.T) {
	c := NewManual(time.Unix(100, 0))
	c.Set(time.Unix(50, 0))
	assert.Equal(t, time.Unix(50, 0), c.Now())
}

func TestSystemIsMonotonic(t *testing.T) {
	var c Clock = System{}
	a := c.Now()
	b := c.Now()
	assert.False(t, b.Before(a))
}
