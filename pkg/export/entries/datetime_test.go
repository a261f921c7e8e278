package entries

import (
	"testing"
	"time"
)

func TestFormatDatetimeAnswer(t *testing.T) {
	raw := "2016-10-21T14:49:05.000Z"

	cases := []struct {
		format string
		want   string
	}{
		{"dd/MM/YYYY", "21/10/2016"},
		{"MM/dd/YYYY", "10/21/2016"},
		{"YYYY/MM/dd", "2016/10/21"},
		{"MM/YYYY", "10/2016"},
		{"dd/MM", "21/10"},
		{"HH:mm:ss", "14:49:05"},
		{"HH:mm", "14:49"},
		{"hh:mm", "02:49"},
		{"mm:ss", "49:05"},
	}

	for _, c := range cases {
		t.Run(c.format, func(t *testing.T) {
			if got := formatDatetimeAnswer(raw, c.format); got != c.want {
				t.Errorf("got %q, want %q", got, c.want)
			}
		})
	}

	t.Run("without zulu suffix", func(t *testing.T) {
		if got := formatDatetimeAnswer("2016-10-21T14:49:05.000", "dd/MM/YYYY"); got != "21/10/2016" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("empty answer", func(t *testing.T) {
		if got := formatDatetimeAnswer("", "dd/MM/YYYY"); got != "" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if got := formatDatetimeAnswer(raw, "YYYY-MM-dd"); got != "" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("unparsable answer", func(t *testing.T) {
		if got := formatDatetimeAnswer("yesterday", "dd/MM/YYYY"); got != "" {
			t.Errorf("got %q", got)
		}
	})
}

func TestUploadedAtToISO(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	uploadedAt := time.Date(2016, 10, 21, 16, 0, 0, 0, loc)

	if got := uploadedAtToISO(uploadedAt); got != "2016-10-21T15:00:00.000Z" {
		t.Errorf("got %q", got)
	}
}
