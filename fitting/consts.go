package fitting

const (
	DefaultGridPoints = 200
	DefaultSmoothingS = 0.0
	DefaultPolyDegree = 3

	MinPolyDegree = 1
	MaxPolyDegree = 10

	// smoothing spline lagrange parameter search
	smoothingBracketFactor = 10.0
	smoothingBracketSteps  = 80
	smoothingMaxBisections = 200
	smoothingRelTolerance  = 1e-10
)
