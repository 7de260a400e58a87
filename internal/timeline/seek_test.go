package timeline

import "testing"

func TestEncodeSeek(t *testing.T) {
	bar := BarRect{Left: 0, Width: 400}

	if got := EncodeSeek(200, bar, 120000); got != "/seek 01:00" {
		t.Errorf("midpoint seek = %q, want %q", got, "/seek 01:00")
	}
	if got := EncodeSeek(0, bar, 120000); got != "/seek 00:00" {
		t.Errorf("left edge seek = %q", got)
	}
	if got := EncodeSeek(9999, bar, 7200000); got != "/seek 02:00:00" {
		t.Errorf("clamped long seek = %q", got)
	}
}

func TestSeekSends(t *testing.T) {
	var sent []string
	enc := SeekEncoder{Send: func(text string) error {
		sent = append(sent, text)
		return nil
	}}

	if err := enc.Seek(200, BarRect{Left: 0, Width: 400}, 120000); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if len(sent) != 1 || sent[0] != "/seek 01:00" {
		t.Errorf("sent = %v", sent)
	}
}

func TestSeekNoOps(t *testing.T) {
	var sent int
	enc := SeekEncoder{Send: func(string) error { sent++; return nil }}

	// No tape loaded.
	if err := enc.Seek(200, BarRect{Left: 0, Width: 400}, 0); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if sent != 0 {
		t.Error("seek with no tape should not send")
	}

	// No send function wired.
	if err := (SeekEncoder{}).Seek(200, BarRect{Left: 0, Width: 400}, 120000); err != nil {
		t.Errorf("Seek() without sender error = %v", err)
	}
}
