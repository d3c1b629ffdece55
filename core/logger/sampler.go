package logger

import (
	"strconv"
	"strings"
	"sync"
)

// ratio passes num out of every den events. A zero ratio passes everything.
type ratio struct {
	num, den int
}

var defaultSampleRatio = ratio{num: 1, den: 50}

func (r ratio) off() bool { return r.num <= 0 || r.den <= 0 }

// updateSampler thins high-volume debug events per update kind, so a burst
// of add-to-cart taps does not use up the share of text messages.
type updateSampler struct {
	mu       sync.Mutex
	base     ratio
	perKind  map[string]ratio
	counters map[string]int
}

func newUpdateSampler(base ratio) *updateSampler {
	s := &updateSampler{}
	s.Configure(base, nil)
	return s
}

// Configure replaces the ratios and restarts every counter.
func (s *updateSampler) Configure(base ratio, perKind map[string]ratio) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = clampRatio(base)
	s.perKind = make(map[string]ratio, len(perKind))
	for kind, r := range perKind {
		s.perKind[kind] = clampRatio(r)
	}
	s.counters = make(map[string]int)
}

// Allow reports whether the next event of kind passes.
func (s *updateSampler) Allow(kind string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.perKind[kind]
	if !ok {
		r = s.base
	}
	if r.off() {
		return true
	}
	n := s.counters[kind] + 1
	if n > r.den {
		n = 1
	}
	s.counters[kind] = n
	return n <= r.num
}

func clampRatio(r ratio) ratio {
	if r.off() {
		return ratio{}
	}
	if r.num > r.den {
		r.num = r.den
	}
	return r
}

// parseSampleSpec reads logging.debug_sample: a default ratio optionally
// followed by per-kind overrides, e.g. "1/50,callback=1/200,message=1/10".
// A ratio is "n/d", a plain "d" (1/d) or "0" to log every event.
func parseSampleSpec(spec string) (ratio, map[string]ratio) {
	base := defaultSampleRatio
	var perKind map[string]ratio
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kind, value, scoped := strings.Cut(part, "=")
		r, ok := parseRatio(value)
		if !scoped {
			r, ok = parseRatio(kind)
		}
		if !ok {
			continue
		}
		if !scoped {
			base = r
			continue
		}
		if perKind == nil {
			perKind = make(map[string]ratio)
		}
		perKind[strings.ToLower(strings.TrimSpace(kind))] = r
	}
	return base, perKind
}

func parseRatio(s string) (ratio, bool) {
	s = strings.TrimSpace(s)
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.Atoi(strings.TrimSpace(num))
		d, err2 := strconv.Atoi(strings.TrimSpace(den))
		if err1 != nil || err2 != nil || n < 0 || d < 0 {
			return ratio{}, false
		}
		return ratio{num: n, den: d}, true
	}
	d, err := strconv.Atoi(s)
	if err != nil || d < 0 {
		return ratio{}, false
	}
	if d == 0 {
		return ratio{}, true
	}
	return ratio{num: 1, den: d}, true
}
