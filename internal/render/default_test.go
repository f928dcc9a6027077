package render

import (
	"bytes"
	"image/color"
	"strings"
	"testing"
	"time"
)

func TestFill(t *testing.T) {
	var out bytes.Buffer
	r := &DefaultRenderer{out: &out}
	r.Fill(2, 14, "x")
	r.FillColor(3, 1, color.RGBA{1, 2, 3, 255}, "y")
	r.flush()

	expected := "\033[2;14Hx\033[3;1H\033[38;2;1;2;3my\033[0m"
	if out.String() != expected {
		t.Fatalf("got %q, want %q", out.String(), expected)
	}
	if r.buffer.Len() != 0 {
		t.Fatal("buffer not reset after flush")
	}
}

func TestDecorationsExpire(t *testing.T) {
	var out bytes.Buffer
	r := &DefaultRenderer{out: &out}
	r.AddDecoration(5, 6, "*", 1)
	r.tickDecorations()
	if len(r.decorations) != 1 {
		t.Fatal("decoration removed too early")
	}
	r.flush()
	out.Reset()

	r.tickDecorations()
	r.flush()
	if len(r.decorations) != 0 {
		t.Fatal("decoration not removed")
	}
	if out.String() != "\033[6;5H " {
		t.Fatalf("decoration not cleared, got %q", out.String())
	}
}

func TestRenderLoop(t *testing.T) {
	var out bytes.Buffer
	r := &DefaultRenderer{out: &out}
	var frames []uint64
	r.RenderLoop(time.Millisecond, func(frame uint64) bool {
		frames = append(frames, frame)
		r.Fill(1, 1, "f")
		return frame < 2
	})
	if len(frames) != 3 || frames[2] != 2 {
		t.Fatalf("unexpected frames %v", frames)
	}
	if n := strings.Count(out.String(), "f"); n != 3 {
		t.Fatalf("expected three flushed frames, got %d", n)
	}
}
