package testfixtures

import (
	"reflect"
	"testing"
	"time"
)

func TestClockStartsAtReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestClockSleepAdvancesAndRecords(t *testing.T) {
	clock := NewClock(time.Time{})
	now := clock.NowFunc()

	clock.Sleep(5 * time.Second)
	clock.Sleep(5 * time.Second)

	if want := ReferenceTime().Add(10 * time.Second); !now().Equal(want) {
		t.Fatalf("expected %v after sleeping, got %v", want, now())
	}
	if got := clock.Pauses(); !reflect.DeepEqual(got, []time.Duration{5 * time.Second, 5 * time.Second}) {
		t.Fatalf("unexpected pauses: %v", got)
	}
}

func TestClockMinutesBeforeSessionStart(t *testing.T) {
	start := ReferenceTime().Add(2 * time.Hour)
	clock := NewClock(time.Time{})

	got := clock.MinutesBefore(start, 15)
	if want := start.Add(-15 * time.Minute); !got.Equal(want) || !clock.Now().Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if after := clock.Advance(20 * time.Minute); !after.After(start) {
		t.Fatalf("expected clock past session start, got %v", after)
	}
}
