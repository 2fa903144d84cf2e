package eventloop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeArmReadFires(t *testing.T) {
	f := NewFake()
	fired := false
	f.ArmRead(7, func() { fired = true })
	assert.True(t, f.HasRead(7))
	f.FireRead(7)
	assert.True(t, fired)
	assert.False(t, f.HasRead(7), "firing consumes the armed read")
}

func TestFakeClearPreventsFire(t *testing.T) {
	f := NewFake()
	fired := false
	h := f.ArmRead(7, func() { fired = true })
	f.Clear(h)
	f.FireRead(7)
	assert.False(t, fired)
}

func TestFakeAdvanceFiresDueTimers(t *testing.T) {
	f := NewFake()
	var order []string
	f.After(10*time.Millisecond, func() { order = append(order, "first") })
	f.After(20*time.Millisecond, func() { order = append(order, "second") })

	f.Advance(15 * time.Millisecond)
	assert.Equal(t, []string{"first"}, order)

	f.Advance(10 * time.Millisecond)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestFakeAdvanceFiresSelfRearmedTimerWithinSamePass(t *testing.T) {
	f := NewFake()
	fires := 0
	var rearm func()
	rearm = func() {
		fires++
		if fires < 3 {
			f.After(5*time.Millisecond, rearm)
		}
	}
	f.After(5*time.Millisecond, rearm)

	// A single Advance past three deadlines must observe all three
	// fires, including the two the callback rearms on itself.
	f.Advance(20 * time.Millisecond)
	assert.Equal(t, 3, fires)
}

func TestFakeScheduleRunsImmediate(t *testing.T) {
	f := NewFake()
	ran := false
	f.Schedule(func() { ran = true })
	f.RunImmediate()
	assert.True(t, ran)
}
