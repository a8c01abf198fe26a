package render

import "testing"

func TestParseColor(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Color
		wantErr bool
	}{
		{"default background", "30,30,40", RGB(30, 30, 40), false},
		{"white", "255,255,255", RGB(255, 255, 255), false},
		{"black", "0,0,0", RGB(0, 0, 0), false},
		{"not a triple", "red", Color{}, true},
		{"missing component", "10,20", Color{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseColor(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseColor(%q) succeeded, want error", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColor(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestRGBAToColorTransparent(t *testing.T) {
	if c := rgbaToColor(RGBA(10, 20, 30, 0)); c != nil {
		t.Errorf("transparent pixel mapped to %v, want nil", c)
	}
	if c := rgbaToColor(RGB(10, 20, 30)); c != RGB(10, 20, 30) {
		t.Errorf("opaque pixel mapped to %v", c)
	}
}
