package exam

import "github.com/boiko-school/nmt-backend/internal/model"

// NMT conversion tables: raw point total → scaled 100..200 score. The tables
// are step lookups, monotonically non-decreasing over their domain; raw
// totals below the first key did not pass the threshold and have no scaled
// equivalent.

var nmtScaleEng = map[int]int{
	5: 100, 6: 109, 7: 118, 8: 125, 9: 131, 10: 134,
	11: 137, 12: 140, 13: 143, 14: 145, 15: 147, 16: 148,
	17: 149, 18: 150, 19: 151, 20: 152, 21: 153, 22: 155,
	23: 157, 24: 159, 25: 162, 26: 166, 27: 169, 28: 173,
	29: 179, 30: 185, 31: 191, 32: 200,
}

var nmtScaleHistory = map[int]int{
	8: 100, 9: 105, 10: 111, 11: 116, 12: 120, 13: 124,
	14: 127, 15: 130, 16: 132, 17: 134, 18: 136, 19: 138,
	20: 140, 21: 141, 22: 142, 23: 143, 24: 144, 25: 145,
	26: 146, 27: 147, 28: 148, 29: 149, 30: 150, 31: 151,
	32: 152, 33: 154, 34: 156, 35: 158, 36: 160, 37: 163,
	38: 166, 39: 168, 40: 169, 41: 170, 42: 172, 43: 173,
	44: 175, 45: 177, 46: 179, 47: 181, 48: 183, 49: 185,
	50: 188, 51: 191, 52: 194, 53: 197, 54: 200,
}

// MaxRawPoints is the highest achievable raw total per subject.
var MaxRawPoints = map[model.Subject]int{
	model.SubjectHistory: 54,
	model.SubjectEng:     32,
}

// ScaledScore converts a raw point total into the subject's NMT scale.
// ok is false when the raw total is outside the table's domain (including
// unknown subjects): the score is reported as not applicable, never
// extrapolated.
func ScaledScore(subject model.Subject, raw int) (scaled int, ok bool) {
	switch subject {
	case model.SubjectEng:
		scaled, ok = nmtScaleEng[raw]
	case model.SubjectHistory:
		scaled, ok = nmtScaleHistory[raw]
	}
	return scaled, ok
}
