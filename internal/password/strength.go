package password

import "unicode/utf16"

// Tier is the severity band a strength score falls into.
type Tier int

const (
	TierError Tier = iota
	TierWarning
	TierInfo
	TierSuccess
)

func (t Tier) String() string {
	switch t {
	case TierError:
		return "error"
	case TierWarning:
		return "warning"
	case TierInfo:
		return "info"
	case TierSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Strength bundles a score with its presentation helpers.
type Strength struct {
	Score int
	Label string
	Tier  Tier
}

// Evaluate scores password and derives its label and tier.
func Evaluate(password string) Strength {
	score := Score(password)
	return Strength{
		Score: score,
		Label: Label(score),
		Tier:  TierFor(score),
	}
}

type classes struct {
	lower, upper, digit, other bool
}

func classify(s string) classes {
	var c classes
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			c.lower = true
		case r >= 'A' && r <= 'Z':
			c.upper = true
		case r >= '0' && r <= '9':
			c.digit = true
		default:
			c.other = true
		}
	}
	return c
}

func (c classes) count() int {
	n := 0
	for _, ok := range []bool{c.lower, c.upper, c.digit, c.other} {
		if ok {
			n++
		}
	}
	return n
}

// Length counts s in UTF-16 code units, so a character outside the Basic
// Multilingual Plane counts twice. Invalid UTF-8 bytes count once each.
func Length(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// Score rates password from 0 to 100.
//
// Length, as counted by Length, is worth 4 points per unit up to 40. Each class present adds
// 10 points (lowercase, uppercase, digit) or 15 (anything else), and every
// class beyond the first adds 5 more.
func Score(password string) int {
	if password == "" {
		return 0
	}

	score := min(Length(password)*4, 40)

	c := classify(password)
	if c.lower {
		score += 10
	}
	if c.upper {
		score += 10
	}
	if c.digit {
		score += 10
	}
	if c.other {
		score += 15
	}

	// may go negative before the clamp
	score += (c.count() - 1) * 5

	return max(min(score, 100), 0)
}

// Label names the band of a score: Weak, Fair, Good or Strong.
func Label(score int) string {
	switch {
	case score < 30:
		return "Weak"
	case score < 60:
		return "Fair"
	case score < 80:
		return "Good"
	default:
		return "Strong"
	}
}

// TierFor maps a score onto the same thresholds as Label.
func TierFor(score int) Tier {
	switch {
	case score < 30:
		return TierError
	case score < 60:
		return TierWarning
	case score < 80:
		return TierInfo
	default:
		return TierSuccess
	}
}
