package sim

// Control points of the cubic-bezier(.2, .9, .3, 1) curve used to ease the
// displayed flight path.
const (
	easeX1 = 0.2
	easeY1 = 0.9
	easeX2 = 0.3
	easeY2 = 1.0
)

func bezier(t, p1, p2 float64) float64 {
	u := 1 - t
	return 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t
}

// Ease maps linear progress in [0,1] onto the eased curve. The curve is
// monotonic in x so the parameter is found by bisection.
func Ease(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	lo, hi := 0.0, 1.0
	for i := 0; i < 40; i++ {
		mid := (lo + hi) / 2
		if bezier(mid, easeX1, easeX2) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return bezier((lo+hi)/2, easeY1, easeY2)
}
