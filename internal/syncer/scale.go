package syncer

// Scale converts a brightness value from the source range into the target
// range, proportionally, using integer arithmetic with truncating division.
//
// The result is clamped to [0, targetRange]: the raw quotient can only leave
// that interval if the source reading itself is outside [0, sourceRange],
// which well-behaved hardware never produces, but an out-of-range value must
// never be written regardless of what the source reports.
func Scale(value, sourceRange, targetRange int) int {
	scaled := value * targetRange / sourceRange
	if scaled < 0 {
		return 0
	}
	if scaled > targetRange {
		return targetRange
	}
	return scaled
}
