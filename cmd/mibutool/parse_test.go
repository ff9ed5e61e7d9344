package main

import "testing"

func TestParsePixel(t *testing.T) {
	tests := []struct {
		in      string
		x, y    int
		wantErr bool
	}{
		{"12,10", 12, 10, false},
		{" 0 , 63 ", 0, 63, false},
		{"-1,4", -1, 4, false},
		{"12", 0, 0, true},
		{"a,b", 0, 0, true},
	}
	for _, tt := range tests {
		x, y, err := parsePixel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePixel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if x != tt.x || y != tt.y {
			t.Errorf("parsePixel(%q) = %d,%d, want %d,%d", tt.in, x, y, tt.x, tt.y)
		}
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{"800x600", 800, 600, false},
		{"64X32", 64, 32, false},
		{"0x10", 0, 0, true},
		{"800", 0, 0, true},
	}
	for _, tt := range tests {
		w, h, err := parseSize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if w != tt.w || h != tt.h {
			t.Errorf("parseSize(%q) = %dx%d, want %dx%d", tt.in, w, h, tt.w, tt.h)
		}
	}
}

func TestStringList(t *testing.T) {
	var s stringList
	s.Set("a")
	s.Set("b")
	if s.String() != "a,b" {
		t.Errorf("got %q", s.String())
	}
}
