package main

// Bound is a condition on the magnitude of one axis.
type Bound struct {
	op    boundOp
	limit int
}

type boundOp uint8

const (
	opAny boundOp = iota
	opBelow
	opAbove
)

// Below matches magnitudes strictly less than n.
func Below(n int) Bound { return Bound{op: opBelow, limit: n} }

// Above matches magnitudes strictly greater than n.  With a negative n it
// matches every magnitude.
func Above(n int) Bound { return Bound{op: opAbove, limit: n} }

// AnyMagnitude matches every magnitude.
var AnyMagnitude = Bound{op: opAny}

// Match reports whether magnitude m satisfies the bound.
func (b Bound) Match(m int) bool {
	switch b.op {
	case opBelow:
		return m < b.limit
	case opAbove:
		return m > b.limit
	}
	return true
}

// Rule maps a region of |X|, |Y|, |Z| to an orientation.
type Rule struct {
	Result  Orientation
	X, Y, Z Bound
}

// Match reports whether s falls in the rule's region.
func (r Rule) Match(s AccelerationSample) bool {
	return r.X.Match(magnitude(s.X)) && r.Y.Match(magnitude(s.Y)) && r.Z.Match(magnitude(s.Z))
}

// DefaultRules is the orientation table in priority order.  The regions
// overlap, so order matters.  The negative lower bounds never reject
// anything; they are kept so the table matches the firmware it mirrors.
var DefaultRules = []Rule{
	{Result: Flat, X: Below(300), Y: Above(-300), Z: Below(14000)},
	{Result: LeftPortrait, X: Below(4000), Y: Below(14000), Z: Above(-14000)},
	{Result: RightPortrait, X: Below(4000), Y: Above(-18000), Z: Below(3000)},
	{Result: Landscape, X: Above(-16000), Y: Above(-700), Z: Above(-3500)},
	{Result: UpsideDownLandscape, X: Below(18000), Y: Above(-700), Z: Above(-7000)},
	// Y was written as the chained 100 > |y| > -200, which compares a
	// boolean against -200.
	{Result: BaseUp, X: Below(2600), Y: AnyMagnitude, Z: Above(-20000)},
}

// Classifier evaluates an ordered rule list.  The zero value has no rules and
// always returns the previous orientation.
type Classifier struct {
	Rules []Rule
}

// Classify returns the result of the first rule matching s, or previous when
// none match.
func (c Classifier) Classify(previous Orientation, s AccelerationSample) Orientation {
	for _, r := range c.Rules {
		if r.Match(s) {
			return r.Result
		}
	}
	return previous
}

// Classify classifies s with DefaultRules.
func Classify(previous Orientation, s AccelerationSample) Orientation {
	return Classifier{Rules: DefaultRules}.Classify(previous, s)
}

func magnitude(v int16) int {
	m := int(v)
	if m < 0 {
		return -m
	}
	return m
}
