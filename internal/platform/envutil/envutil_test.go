package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want time.Duration
	}{
		{"unset uses default", "", 2 * time.Second},
		{"go duration", "750ms", 750 * time.Millisecond},
		{"bare integer is millis", "500", 500 * time.Millisecond},
		{"garbage uses default", "soon", 2 * time.Second},
		{"negative uses default", "-1s", 2 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TEST_ENVUTIL_DURATION", tc.raw)
			if got := Duration("TEST_ENVUTIL_DURATION", 2*time.Second, nil); got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestBoolAndList(t *testing.T) {
	t.Setenv("TEST_ENVUTIL_BOOL", "TRUE")
	if !Bool("TEST_ENVUTIL_BOOL", false, nil) {
		t.Fatalf("expected true")
	}
	t.Setenv("TEST_ENVUTIL_BOOL", "maybe")
	if Bool("TEST_ENVUTIL_BOOL", false, nil) {
		t.Fatalf("unparseable bool should fall back to default")
	}

	t.Setenv("TEST_ENVUTIL_LIST", " kafka-1:9092, ,kafka-2:9092 ")
	got := List("TEST_ENVUTIL_LIST", nil, nil)
	if len(got) != 2 || got[0] != "kafka-1:9092" || got[1] != "kafka-2:9092" {
		t.Fatalf("unexpected list: %#v", got)
	}
}
