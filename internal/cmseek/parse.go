package cmseek

import (
	"regexp"
	"strings"

	"github.com/example/stackscan/internal/core"
)

// Confidence tiers for cmseek output: a recognized product, an unnamed CMS
// hit, and a version extracted from a followup line.
const (
	detectionConfidence = 90
	unknownConfidence   = 70
	versionConfidence   = 85
)

var (
	cmsIDRegex   = regexp.MustCompile(`CMS ID:\s*(\w+)`)
	versionRegex = regexp.MustCompile(`(?i)version[:\s]+v?([0-9]+\.[0-9]+(?:\.[0-9]+)?)`)
)

// detectionMarkers flag lines that announce a CMS hit.
var detectionMarkers = []string{
	"CMS Detected", "Probable CMS:", "CMS:", "Detected:", "Found:", "CMS ID:",
}

type cmsInfo struct {
	website     string
	description string
}

// knownCMSNames is scanned in slice order so a line mentioning several
// products resolves the same way every run.
var knownCMSNames = []string{
	"WooCommerce", "WordPress", "Joomla", "Drupal", "Magento", "Shopify",
	"PrestaShop", "OpenCart", "Ghost", "Squarespace", "Wix", "Webflow",
	"Sitefinity", "Laravel", "Django",
}

var knownCMS = map[string]cmsInfo{
	"WooCommerce": {"https://woocommerce.com", "WooCommerce is an e-commerce plugin for WordPress"},
	"WordPress":   {"https://wordpress.org", "WordPress is a free and open-source content management system"},
	"Joomla":      {"https://www.joomla.org", "Joomla is a free and open-source content management system"},
	"Drupal":      {"https://www.drupal.org", "Drupal is a free and open-source content management system"},
	"Magento":     {"https://magento.com", "Magento is an e-commerce platform"},
	"Shopify":     {"https://www.shopify.com", "Shopify is a commerce platform"},
	"PrestaShop":  {"https://www.prestashop.com", "PrestaShop is an e-commerce platform"},
	"OpenCart":    {"https://www.opencart.com", "OpenCart is an e-commerce platform"},
	"Ghost":       {"https://ghost.org", "Ghost is a modern publishing platform"},
	"Squarespace": {"https://www.squarespace.com", "Squarespace is a website building platform"},
	"Wix":         {"https://www.wix.com", "Wix is a cloud-based web development platform"},
	"Webflow":     {"https://webflow.com", "Webflow is a visual web development platform"},
	"Sitefinity":  {"https://www.sitefinity.com", "Sitefinity is a .NET-based content management system"},
	"Laravel":     {"https://laravel.com", "Laravel is a PHP web framework"},
	"Django":      {"https://www.djangoproject.com", "Django is a Python web framework"},
}

// cmsIDNames maps cmseek's short CMS identifiers to product names.
var cmsIDNames = map[string]string{
	"wp":          "WordPress",
	"joomla":      "Joomla",
	"drupal":      "Drupal",
	"magento":     "Magento",
	"shopify":     "Shopify",
	"wix":         "Wix",
	"squarespace": "Squarespace",
	"sfy":         "Sitefinity",
}

// ParseOutput converts cmseek console output into raw detections. Detection
// lines open a new record; subsequent version lines attach to the record
// they follow. Lines that match nothing are skipped.
func ParseOutput(output []byte) []core.RawDetection {
	var detections []core.RawDetection

	for _, raw := range strings.Split(string(output), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if isDetectionLine(line) {
			detections = append(detections, cmsDetection(line))
			continue
		}

		if len(detections) == 0 {
			continue
		}
		if version := extractVersion(line); version != "" {
			last := &detections[len(detections)-1]
			last.Versions = appendVersion(last.Versions, version)
			last.Evidence = append(last.Evidence, core.EvidenceItem{
				Field:      "cmseek_version",
				Detail:     line,
				Match:      version,
				Confidence: versionConfidence,
			})
		}
	}
	return detections
}

func isDetectionLine(line string) bool {
	for _, marker := range detectionMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

func cmsDetection(line string) core.RawDetection {
	name, info, known := classifyLine(line)

	confidence := detectionConfidence
	description := info.description
	if !known {
		confidence = unknownConfidence
		if description == "" {
			description = "Content management system detected by cmseek"
		}
	}

	return core.RawDetection{
		Name:        name,
		Confidence:  confidence,
		Category:    "CMS",
		Source:      "cmseek",
		Website:     info.website,
		Description: description,
		Evidence: []core.EvidenceItem{{
			Field:      "cmseek",
			Detail:     line,
			Match:      name,
			Confidence: confidence,
		}},
	}
}

// classifyLine resolves a detection line to a product: a known name
// mentioned anywhere in the line, then cmseek's short CMS ID, then the text
// after a detection marker's colon, then an unnamed hit.
func classifyLine(line string) (string, cmsInfo, bool) {
	lower := strings.ToLower(line)
	for _, name := range knownCMSNames {
		if strings.Contains(lower, strings.ToLower(name)) {
			return name, knownCMS[name], true
		}
	}

	if m := cmsIDRegex.FindStringSubmatch(line); len(m) > 1 {
		if name, ok := cmsIDNames[strings.ToLower(m[1])]; ok {
			return name, knownCMS[name], true
		}
	}

	for _, marker := range []string{"Probable CMS:", "CMS:", "Detected:", "Found:"} {
		if _, rest, ok := strings.Cut(line, marker); ok {
			if name := strings.TrimSpace(rest); name != "" {
				return name, cmsInfo{description: name + " content management system"}, false
			}
		}
	}

	return "Unknown CMS", cmsInfo{}, false
}

func extractVersion(line string) string {
	if m := versionRegex.FindStringSubmatch(line); len(m) > 1 {
		return m[1]
	}
	return ""
}

func appendVersion(versions []string, version string) []string {
	for _, v := range versions {
		if v == version {
			return versions
		}
	}
	return append(versions, version)
}
