package render

import (
	"errors"
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
)

func TestNewTextureValidation(t *testing.T) {
	tests := []struct {
		name           string
		w, h, channels int
		n              int
		wantErr        bool
	}{
		{"rgb", 2, 2, 3, 12, false},
		{"grey", 4, 1, 1, 4, false},
		{"short", 2, 2, 3, 11, true},
		{"five channels", 1, 1, 5, 5, true},
		{"empty", 0, 2, 3, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTexture(tc.w, tc.h, tc.channels, make([]byte, tc.n))
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTexture) {
				t.Errorf("err = %v, want ErrInvalidTexture", err)
			}
		})
	}
}

func TestSampleBottomRowIsVZero(t *testing.T) {
	// 1x2 RGB texture: top row red, bottom row blue.
	tex, err := NewTexture(1, 2, 3, []byte{255, 0, 0, 0, 0, 255})
	if err != nil {
		t.Fatal(err)
	}
	if got := tex.Sample(math3d.V2(0.5, 0.25)); got != math3d.V3(0, 0, 1) {
		t.Errorf("Sample(v=0.25) = %v, want blue", got)
	}
	if got := tex.Sample(math3d.V2(0.5, 0.75)); got != math3d.V3(1, 0, 0) {
		t.Errorf("Sample(v=0.75) = %v, want red", got)
	}
}

func TestSampleGrey(t *testing.T) {
	tex, err := NewTexture(2, 1, 2, []byte{0, 255, 255, 0})
	if err != nil {
		t.Fatal(err)
	}
	if got := tex.Sample(math3d.V2(0.75, 0.5)); got != math3d.V3(1, 1, 1) {
		t.Errorf("Sample = %v, want white (alpha ignored)", got)
	}
}
