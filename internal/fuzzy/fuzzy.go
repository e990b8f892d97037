// Package fuzzy implements partial-ratio string similarity scoring on a
// 0-100 scale, used for object name searches. The score is the best
// sequence-match ratio of the shorter string against any equally sized
// window of the longer one, so a short query scores 100 against any
// name that contains it.
package fuzzy

// MatchThreshold is the score a candidate must exceed to count as a
// fuzzy match.
const MatchThreshold = 50

// Ratio returns the similarity of a and b as 2*M/T scaled to 0-100,
// where M is the number of matched characters and T the combined
// length.
func Ratio(a, b string) int {
	if len(a) == 0 && len(b) == 0 {
		return 100
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	matched := 0
	for _, block := range matchingBlocks([]byte(a), []byte(b)) {
		matched += block.size
	}
	total := len(a) + len(b)
	return (400*matched + total) / (2 * total)
}

// PartialRatio returns the best Ratio of the shorter string against
// every candidate window of the longer string.
func PartialRatio(a, b string) int {
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		if len(longer) == 0 {
			return 100
		}
		return 0
	}
	if len(shorter) == len(longer) {
		return Ratio(shorter, longer)
	}

	sb, lb := []byte(shorter), []byte(longer)
	best := 0
	for _, block := range matchingBlocks(sb, lb) {
		// Align the window of the longer string so this block lines up
		// with its position in the shorter string.
		start := block.bStart - block.aStart
		if start < 0 {
			start = 0
		}
		end := start + len(sb)
		if end > len(lb) {
			end = len(lb)
			start = end - len(sb)
			if start < 0 {
				start = 0
			}
		}
		score := Ratio(shorter, string(lb[start:end]))
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

type block struct {
	aStart int
	bStart int
	size   int
}

// matchingBlocks finds non-overlapping matching blocks by recursively
// locating the longest common substring and descending into the regions
// on either side of it.
func matchingBlocks(a, b []byte) []block {
	var blocks []block
	var recurse func(aLo, aHi, bLo, bHi int)
	recurse = func(aLo, aHi, bLo, bHi int) {
		m := longestMatch(a, b, aLo, aHi, bLo, bHi)
		if m.size == 0 {
			return
		}
		recurse(aLo, m.aStart, bLo, m.bStart)
		blocks = append(blocks, m)
		recurse(m.aStart+m.size, aHi, m.bStart+m.size, bHi)
	}
	recurse(0, len(a), 0, len(b))
	return blocks
}

// longestMatch finds the longest matching block within
// a[aLo:aHi] x b[bLo:bHi], preferring the earliest in a, then in b.
func longestMatch(a, b []byte, aLo, aHi, bLo, bHi int) block {
	best := block{aStart: aLo, bStart: bLo}
	// lengths[j] is the length of the match ending at a[i] and b[j].
	lengths := make([]int, bHi-bLo)
	for i := aLo; i < aHi; i++ {
		var prev int
		for j := bLo; j < bHi; j++ {
			current := lengths[j-bLo]
			if a[i] == b[j] {
				length := prev + 1
				lengths[j-bLo] = length
				if length > best.size {
					best = block{aStart: i - length + 1, bStart: j - length + 1, size: length}
				}
			} else {
				lengths[j-bLo] = 0
			}
			prev = current
		}
	}
	return best
}
