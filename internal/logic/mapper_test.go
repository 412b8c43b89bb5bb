package logic

import "testing"

func TestMapRangeEndpointsAndClamping(t *testing.T) {
	tests := []struct {
		name            string
		w, lo, hi, a, b int
		want            int
	}{
		{"lo maps to a", 1050, 1050, 1950, 255, 0, 255},
		{"hi maps to b", 1950, 1050, 1950, 255, 0, 0},
		{"below domain clamps", 900, 1050, 1950, 255, 0, 255},
		{"above domain clamps", 2100, 1050, 1950, 255, 0, 0},
		{"midpoint inverted", 1500, 1050, 1950, 255, 0, 128},
		{"midpoint direct", 1500, 1050, 1950, 0, 255, 127},
		{"hue domain top", 1950, 1050, 1950, 0, 359, 359},
		{"empty domain", 1500, 1500, 1500, 10, 20, 10},
		{"reversed domain", 1050, 1950, 1050, 0, 255, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapRange(tt.w, tt.lo, tt.hi, tt.a, tt.b)
			if got != tt.want {
				t.Errorf("MapRange(%d, %d, %d, %d, %d) = %d, want %d",
					tt.w, tt.lo, tt.hi, tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMapRangeMonotonic(t *testing.T) {
	prevDown := MapRange(1050, 1050, 1950, 255, 0)
	prevUp := MapRange(1050, 1050, 1950, 0, 359)
	for w := 1051; w <= 1950; w++ {
		down := MapRange(w, 1050, 1950, 255, 0)
		up := MapRange(w, 1050, 1950, 0, 359)
		if down > prevDown {
			t.Fatalf("inverted map increased at %d: %d -> %d", w, prevDown, down)
		}
		if up < prevUp {
			t.Fatalf("direct map decreased at %d: %d -> %d", w, prevUp, up)
		}
		prevDown, prevUp = down, up
	}
}

func TestClassifyThreeWay(t *testing.T) {
	tests := []struct {
		w    int
		want Class
	}{
		{1200, Below},
		{1299, Below},
		{1300, Within},
		{1500, Within},
		{1700, Within},
		{1701, Above},
		{1800, Above},
	}
	for _, tt := range tests {
		if got := Classify(tt.w, 1500, 200); got != tt.want {
			t.Errorf("Classify(%d, 1500, 200) = %s, want %s", tt.w, got, tt.want)
		}
	}
}

func TestIsAbove(t *testing.T) {
	if IsAbove(1700, 1700) {
		t.Error("threshold itself is not above")
	}
	if !IsAbove(1701, 1700) {
		t.Error("1701 should be above 1700")
	}
}

func TestParseClass(t *testing.T) {
	for _, c := range []Class{Below, Within, Above} {
		got, ok := ParseClass(c.String())
		if !ok || got != c {
			t.Errorf("ParseClass(%q) = (%v, %v)", c.String(), got, ok)
		}
	}
	if _, ok := ParseClass("SIDEWAYS"); ok {
		t.Error("unknown class should not parse")
	}
}

func TestHueToRGBSectorBoundaries(t *testing.T) {
	tests := []struct {
		hue  int
		want RGB
	}{
		{0, RGB{255, 0, 0}},
		{60, RGB{255, 255, 0}},
		{120, RGB{0, 255, 0}},
		{180, RGB{0, 255, 255}},
		{240, RGB{0, 0, 255}},
		{300, RGB{255, 0, 255}},
	}
	for _, tt := range tests {
		got := HueToRGB(tt.hue)
		if got != tt.want {
			t.Errorf("HueToRGB(%d) = %+v, want %+v", tt.hue, got, tt.want)
		}
		if !hasComponent(got, 255) || !hasComponent(got, 0) {
			t.Errorf("HueToRGB(%d) = %+v: want one component at 255 and one at 0", tt.hue, got)
		}
	}
}

func TestHueToRGBSector1Midpoint(t *testing.T) {
	got := HueToRGB(90)
	want := RGB{R: 127, G: 255, B: 0}
	if got != want {
		t.Errorf("HueToRGB(90) = %+v, want %+v", got, want)
	}
}

func TestHueToRGBContinuous(t *testing.T) {
	prev := HueToRGB(0)
	for h := 1; h <= 359; h++ {
		cur := HueToRGB(h)
		if d := maxStep(prev, cur); d > 5 {
			t.Fatalf("jump of %d between hue %d (%+v) and %d (%+v)", d, h-1, prev, h, cur)
		}
		prev = cur
	}
}

func TestHueToRGBClampsInput(t *testing.T) {
	if got := HueToRGB(-30); got != HueToRGB(0) {
		t.Errorf("HueToRGB(-30) = %+v, want %+v", got, HueToRGB(0))
	}
	if got := HueToRGB(720); got != HueToRGB(359) {
		t.Errorf("HueToRGB(720) = %+v, want %+v", got, HueToRGB(359))
	}
}

func TestClampSwapsBounds(t *testing.T) {
	if got := Clamp(5, 10, 0); got != 5 {
		t.Errorf("Clamp(5, 10, 0) = %d, want 5", got)
	}
	if got := Clamp(-3, 10, 0); got != 0 {
		t.Errorf("Clamp(-3, 10, 0) = %d, want 0", got)
	}
	if got := Clamp(300, 0, 255); got != 255 {
		t.Errorf("Clamp(300, 0, 255) = %d, want 255", got)
	}
}

func hasComponent(c RGB, v uint8) bool {
	return c.R == v || c.G == v || c.B == v
}

func maxStep(a, b RGB) int {
	d := 0
	for _, pair := range [][2]uint8{{a.R, b.R}, {a.G, b.G}, {a.B, b.B}} {
		x := int(pair[0]) - int(pair[1])
		if x < 0 {
			x = -x
		}
		if x > d {
			d = x
		}
	}
	return d
}
