package xfer

import (
	"testing"
	"time"
)

func TestMarshalParseBlock0RoundTrip(t *testing.T) {
	mtime := time.Unix(1700000000, 0)
	offer := &FileOffer{Name: "readme.txt", Size: 4096, ModTime: mtime}

	raw := marshalBlock0(offer, blockSizeSmall)
	if len(raw) != blockSizeSmall {
		t.Fatalf("marshalBlock0 len = %d, want %d", len(raw), blockSizeSmall)
	}

	name, size, got := parseBlock0(raw)
	if name != "readme.txt" {
		t.Errorf("name = %q, want readme.txt", name)
	}
	if size != 4096 {
		t.Errorf("size = %d, want 4096", size)
	}
	if !got.Equal(mtime) {
		t.Errorf("mtime = %v, want %v", got, mtime)
	}
}

func TestMarshalBlock0EndOfBatch(t *testing.T) {
	raw := marshalBlock0(nil, blockSizeSmall)
	for i, b := range raw {
		if b != 0 {
			t.Fatalf("end-of-batch block not all zero at %d: 0x%02x", i, b)
		}
	}
	name, _, _ := parseBlock0(raw)
	if name != "" {
		t.Errorf("name = %q, want empty (end of batch)", name)
	}
}

func TestParseBlock0NoModTime(t *testing.T) {
	offer := &FileOffer{Name: "x.bin", Size: 10}
	raw := marshalBlock0(offer, blockSizeSmall)
	name, size, mtime := parseBlock0(raw)
	if name != "x.bin" || size != 10 {
		t.Fatalf("got name=%q size=%d", name, size)
	}
	if !mtime.IsZero() {
		t.Errorf("mtime = %v, want zero", mtime)
	}
}
