package amd

import (
	"regexp"
	"strconv"
	"strings"
)

var copyrightPattern = regexp.MustCompile(`(?:©|\(c\)|copyright\b)\s*(\d{4})(?:-(\d{4}))?`)

// RewriteCopyright normalizes the first copyright notice in source to
// "(c) <start>-<year>", or "(c) <start>" when start is not before year.
func RewriteCopyright(source string, year int) string {
	loc := copyrightPattern.FindStringSubmatchIndex(source)
	if loc == nil {
		return source
	}

	start := source[loc[2]:loc[3]]

	replacement := "(c) " + start
	if startYear, err := strconv.Atoi(start); err == nil && startYear < year {
		replacement += "-" + strconv.Itoa(year)
	}

	var sb strings.Builder

	sb.Grow(len(source) + len(replacement))
	sb.WriteString(source[:loc[0]])
	sb.WriteString(replacement)
	sb.WriteString(source[loc[1]:])

	return sb.String()
}
