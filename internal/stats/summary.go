package stats

// Summary holds display statistics over one series window.
type Summary struct {
	Last float64
	Min  float64
	Max  float64
	Mean float64
}

// Summarize computes display statistics over a window copy. It operates
// on values handed out by Views, never on live series state, and returns
// false for an empty window.
func Summarize(values []float64) (Summary, bool) {
	if len(values) == 0 {
		return Summary{}, false
	}
	s := Summary{
		Last: values[len(values)-1],
		Min:  values[0],
		Max:  values[0],
	}
	sum := 0.0
	for _, v := range values {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += v
	}
	s.Mean = sum / float64(len(values))
	return s, true
}
