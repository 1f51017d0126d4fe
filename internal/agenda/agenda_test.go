package agenda

import (
	"errors"
	"testing"
	"time"
)

func TestParseData(t *testing.T) {
	got, err := ParseData("2026-09-06")
	if err != nil {
		t.Fatalf("ParseData: %v", err)
	}
	want := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("ParseData = %v, esperava %v", got, want)
	}

	for _, invalida := range []string{"", "06/09/2026", "2026-9-6", "2026-13-01", "hoje"} {
		if _, err := ParseData(invalida); !errors.Is(err, ErrDataInvalida) {
			t.Errorf("ParseData(%q): esperava ErrDataInvalida, veio %v", invalida, err)
		}
	}
}
