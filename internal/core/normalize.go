package core

import "strings"

// Aliases maps the many spellings of a technology name to one canonical key.
// It is built once at startup and read-only afterwards, so a single instance
// may be shared across goroutines.
type Aliases struct {
	canonical map[string]string
}

// NewAliases builds an alias table from canonical key to known spellings.
// Spellings are folded before insertion, so callers may list them in any
// casing. The canonical key itself always resolves to itself.
func NewAliases(groups map[string][]string) *Aliases {
	table := make(map[string]string, len(groups)*2)
	for key, spellings := range groups {
		folded := foldName(key)
		table[folded] = folded
		for _, s := range spellings {
			table[foldName(s)] = folded
		}
	}
	return &Aliases{canonical: table}
}

// DefaultAliases covers the spellings that show up across the built-in
// detector sources. Detectors disagree on casing and word breaks for the
// same product, so every group here was seen in real scanner output.
func DefaultAliases() *Aliases {
	return NewAliases(map[string][]string{
		"jquery":           {"jQuery", "JQuery", "jquery.js"},
		"wordpress":        {"WordPress", "Word Press", "wordpress-cms"},
		"nginx":            {"Nginx", "NGINX", "nginx http server"},
		"apache":           {"Apache", "Apache HTTP Server", "Apache httpd", "httpd"},
		"php":              {"PHP"},
		"mysql":            {"MySQL", "my sql"},
		"bootstrap":        {"Bootstrap", "Twitter Bootstrap"},
		"react":            {"React", "ReactJS", "React.js"},
		"vue":              {"Vue", "Vue.js", "VueJS"},
		"angular":          {"Angular", "AngularJS", "Angular.js"},
		"cloudflare":       {"CloudFlare", "Cloud Flare"},
		"google analytics": {"Google Analytics", "GoogleAnalytics", "google-analytics"},
		"font awesome":     {"Font Awesome", "FontAwesome", "font-awesome"},
		"drupal":           {"Drupal", "Drupal CMS"},
		"joomla":           {"Joomla", "Joomla!"},
		"microsoft iis":    {"IIS", "Microsoft-IIS", "Microsoft IIS"},
		"openssl":          {"OpenSSL"},
		"varnish":          {"Varnish", "Varnish Cache"},
	})
}

// Normalize returns the canonical name for any spelling: the folded input is
// looked up in the alias table, and falls back to the folded form when no
// alias is known. It never fails.
func (a *Aliases) Normalize(name string) string {
	folded := foldName(name)
	if canon, ok := a.canonical[folded]; ok {
		return canon
	}
	return folded
}

// foldName lowercases, trims, and collapses internal whitespace runs.
func foldName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
