package core

import "strings"

// NormalizeVersion canonicalizes a detector-supplied version string.
// Detectors hand back versions in wildly different shapes: "v3.7.1",
// "version: 5.8", or list serializations like "['3.7.1']". The result keeps
// only the leading digits-and-dots token. Strings without any digit
// (e.g. "Universal") are returned verbatim after artifact stripping.
func NormalizeVersion(version string) string {
	v := strings.TrimSpace(version)
	v = strings.Trim(v, "[]'\" \t")
	if v == "" {
		return ""
	}

	start := -1
	for i := 0; i < len(v); i++ {
		if v[i] >= '0' && v[i] <= '9' {
			start = i
			break
		}
	}
	if start < 0 {
		// Freeform version, no numeric token to extract.
		return v
	}

	end := start
	for end < len(v) && (v[end] == '.' || (v[end] >= '0' && v[end] <= '9')) {
		end++
	}
	return strings.Trim(v[start:end], ".")
}

// CompatibleVersions reports whether two version strings may describe the
// same installation. Two empty (unknown) versions are compatible. Numeric
// versions are compatible when major and minor components match; patch
// differences never split a merge. Freeform versions only match exactly.
func CompatibleVersions(a, b string) bool {
	na := NormalizeVersion(a)
	nb := NormalizeVersion(b)

	if na == "" && nb == "" {
		return true
	}
	if na == "" || nb == "" {
		return false
	}

	aNumeric := isNumericVersion(na)
	bNumeric := isNumericVersion(nb)
	if !aNumeric || !bNumeric {
		return na == nb
	}

	aMajor, aMinor := majorMinor(na)
	bMajor, bMinor := majorMinor(nb)
	return aMajor == bMajor && aMinor == bMinor
}

func isNumericVersion(v string) bool {
	return v != "" && v[0] >= '0' && v[0] <= '9'
}

func majorMinor(v string) (string, string) {
	parts := strings.SplitN(v, ".", 3)
	major := parts[0]
	minor := ""
	if len(parts) > 1 {
		minor = parts[1]
	}
	return major, minor
}
