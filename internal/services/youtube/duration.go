package youtube

import "regexp"

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISODuration converts an ISO-8601 duration like PT1H2M3S to seconds.
// Unparseable values yield 0.
func ParseISODuration(value string) int {
	match := isoDurationPattern.FindStringSubmatch(value)
	if match == nil {
		return 0
	}
	return atoiDigits(match[1])*3600 + atoiDigits(match[2])*60 + atoiDigits(match[3])
}

func atoiDigits(digits string) int {
	total := 0
	for _, r := range digits {
		total = total*10 + int(r-'0')
	}
	return total
}
