package demographics

import "math"

// Bracket is one bucket of a grouped distribution with bounds [Lo, Hi).
type Bracket struct {
	Key string
	Lo  float64
	Hi  float64
}

// ageBrackets are the five-year resident age groups. The open top bracket is
// treated as five years wide.
var ageBrackets = []Bracket{
	{"0 - 4", 0, 5}, {"5 - 9", 5, 10}, {"10 - 14", 10, 15}, {"15 - 19", 15, 20},
	{"20 - 24", 20, 25}, {"25 - 29", 25, 30}, {"30 - 34", 30, 35}, {"35 - 39", 35, 40},
	{"40 - 44", 40, 45}, {"45 - 49", 45, 50}, {"50 - 54", 50, 55}, {"55 - 59", 55, 60},
	{"60 - 64", 60, 65}, {"65 - 69", 65, 70}, {"70 - 74", 70, 75}, {"75 - 79", 75, 80},
	{"80 - 84", 80, 85}, {"85 - 89", 85, 90}, {"90 & Over", 90, 95},
}

var (
	youngKeys   = []string{"0 - 4", "5 - 9", "10 - 14", "15 - 19", "20 - 24"}
	workingKeys = []string{"25 - 29", "30 - 34", "35 - 39", "40 - 44", "45 - 49", "50 - 54", "55 - 59", "60 - 64"}
	seniorKeys  = []string{"65 - 69", "70 - 74", "75 - 79", "80 - 84", "85 - 89", "90 & Over"}
)

// incomeBrackets are monthly household income groups in SGD. The open top
// bracket is capped at 30,000.
var incomeBrackets = []Bracket{
	{"Below $1,000", 0, 1000},
	{"$1,000 - $1,999", 1000, 2000},
	{"$2,000 - $2,999", 2000, 3000},
	{"$3,000 - $3,999", 3000, 4000},
	{"$4,000 - $4,999", 4000, 5000},
	{"$5,000 - $5,999", 5000, 6000},
	{"$6,000 - $6,999", 6000, 7000},
	{"$7,000 - $7,999", 7000, 8000},
	{"$8,000 - $8,999", 8000, 9000},
	{"$9,000 - $9,999", 9000, 10000},
	{"$10,000 - $10,999", 10000, 11000},
	{"$11,000 - $11,999", 11000, 12000},
	{"$12,000 - $12,999", 12000, 13000},
	{"$13,000 - $13,999", 13000, 14000},
	{"$14,000 - $14,999", 14000, 15000},
	{"$15,000 - $17,499", 15000, 17500},
	{"$17,500 - $19,999", 17500, 20000},
	{"$20,000 & Over", 20000, 30000},
}

// GroupedMedian estimates the median of bucketed counts by linear
// interpolation inside the bracket holding the cumulative midpoint:
//
//	lo + (total/2 - cumulativeBefore) / count * (hi - lo)
//
// It reports false when total is not positive or the brackets never reach
// the midpoint.
func GroupedMedian(counts map[string]float64, brackets []Bracket, total float64) (float64, bool) {
	if total <= 0 {
		return 0, false
	}
	half := total / 2
	var cum float64
	for _, b := range brackets {
		n := counts[b.Key]
		cum += n
		if cum >= half {
			prev := cum - n
			if n == 0 {
				n = 1
			}
			return b.Lo + (half-prev)/n*(b.Hi-b.Lo), true
		}
	}
	return 0, false
}

// percent returns part as a rounded integer share of total.
func percent(part, total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(part / total * 100))
}

func sumKeys(counts map[string]float64, keys []string) float64 {
	var s float64
	for _, k := range keys {
		s += counts[k]
	}
	return s
}
