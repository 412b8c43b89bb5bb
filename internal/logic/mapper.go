package logic

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Integer](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MapRange clamps w to the domain [lo, hi] and maps it linearly onto [a, b].
// a > b gives an inverted mapping. Integer quotients truncate toward zero, so
// MapRange(1500, 1050, 1950, 255, 0) is 128. An empty domain maps to a.
func MapRange(w, lo, hi, a, b int) int {
	if lo == hi {
		return a
	}
	if lo > hi {
		lo, hi = hi, lo
		a, b = b, a
	}
	w = Clamp(w, lo, hi)
	return a + (w-lo)*(b-a)/(hi-lo)
}

// Classify places w relative to center with a neutral deadband of
// +/- deadband. The deadband edges belong to Within.
func Classify(w, center, deadband int) Class {
	switch {
	case w < center-deadband:
		return Below
	case w > center+deadband:
		return Above
	}
	return Within
}

// IsAbove is the two-way classifier: w strictly above threshold.
func IsAbove(w, threshold int) bool {
	return w > threshold
}

// HueToRGB converts a hue in degrees to a fully saturated, full value
// colour. The hue is clamped to [0, 359] and split into six 60 degree
// sectors, each ramping one component linearly.
func HueToRGB(hue int) RGB {
	h := Clamp(hue, 0, 359)
	f := h % 60
	up := uint8(255 * f / 60)
	down := uint8(255 * (60 - f) / 60)

	switch h / 60 {
	case 0:
		return RGB{R: 255, G: up, B: 0}
	case 1:
		return RGB{R: down, G: 255, B: 0}
	case 2:
		return RGB{R: 0, G: 255, B: up}
	case 3:
		return RGB{R: 0, G: down, B: 255}
	case 4:
		return RGB{R: up, G: 0, B: 255}
	case 5:
		return RGB{R: 255, G: 0, B: down}
	}
	return RGB{}
}

// level converts a mapped value into a 0-255 intensity.
func level(v int) uint8 {
	return uint8(Clamp(v, 0, 255))
}
