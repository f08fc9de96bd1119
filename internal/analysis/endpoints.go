package analysis

import (
	"regexp"
	"strings"

	"github.com/julianshen/docgenie/internal/classify"
)

// routeRule extracts endpoints from one framework's route declarations.
type routeRule struct {
	languages map[string]bool
	re        *regexp.Regexp
	extract   func(m []string) []Endpoint
}

func langs(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

var (
	flaskRoute    = regexp.MustCompile(`@\w+\.route\(\s*['"]([^'"]+)['"]((?:[^()]|\([^()]*\))*)\)`)
	flaskMethods  = regexp.MustCompile(`methods\s*=\s*[\[(]([^\])]*)[\])]`)
	quotedWord    = regexp.MustCompile(`['"](\w+)['"]`)
	methodCall    = regexp.MustCompile(`(?i)\b\w+\.(get|post|put|delete|patch|head|options)\(\s*['"` + "`" + `](/[^'"` + "`" + `]*)['"` + "`" + `]`)
	springMapping = regexp.MustCompile(`@(Get|Post|Put|Delete|Patch|Request)Mapping\(\s*(?:(?:value|path)\s*=\s*)?\{?\s*"([^"]*)"`)
	goHandle      = regexp.MustCompile(`\.(?:HandleFunc|Handle)\(\s*"([^"]+)"`)
	laravelRoute  = regexp.MustCompile(`Route::(get|post|put|delete|patch|any)\(\s*['"]([^'"]+)['"]`)
)

var routeRules = []routeRule{
	{
		languages: langs("Python"),
		re:        flaskRoute,
		extract: func(m []string) []Endpoint {
			methods := []string{"GET"}
			if mm := flaskMethods.FindStringSubmatch(m[2]); mm != nil {
				methods = methods[:0]
				for _, q := range quotedWord.FindAllStringSubmatch(mm[1], -1) {
					methods = append(methods, strings.ToUpper(q[1]))
				}
			}
			out := make([]Endpoint, 0, len(methods))
			for _, method := range methods {
				out = append(out, Endpoint{Method: method, Path: m[1]})
			}
			return out
		},
	},
	{
		// Express, FastAPI, Gin, Echo and similar router.get("/path") styles.
		languages: langs("Python", "JavaScript", "TypeScript", "Go", "Kotlin", "Ruby"),
		re:        methodCall,
		extract: func(m []string) []Endpoint {
			return []Endpoint{{Method: strings.ToUpper(m[1]), Path: m[2]}}
		},
	},
	{
		languages: langs("Java", "Kotlin"),
		re:        springMapping,
		extract: func(m []string) []Endpoint {
			method := strings.ToUpper(m[1])
			if method == "REQUEST" {
				method = "ANY"
			}
			return []Endpoint{{Method: method, Path: m[2]}}
		},
	},
	{
		languages: langs("Go"),
		re:        goHandle,
		extract: func(m []string) []Endpoint {
			// Go 1.22 patterns may carry a method: "GET /items/{id}".
			if method, path, ok := strings.Cut(m[1], " "); ok && strings.HasPrefix(path, "/") {
				return []Endpoint{{Method: strings.ToUpper(method), Path: path}}
			}
			return []Endpoint{{Method: "ANY", Path: m[1]}}
		},
	},
	{
		languages: langs("PHP"),
		re:        laravelRoute,
		extract: func(m []string) []Endpoint {
			return []Endpoint{{Method: strings.ToUpper(m[1]), Path: m[2]}}
		},
	},
}

// findEndpoints scans one file's content for route declarations, in rule
// order and then in order of appearance.
func findEndpoints(sf classify.SourceFile) []Endpoint {
	if len(sf.Content) == 0 {
		return nil
	}
	text := string(sf.Content)
	var out []Endpoint
	for _, rule := range routeRules {
		if !rule.languages[sf.Language] {
			continue
		}
		for _, m := range rule.re.FindAllStringSubmatch(text, -1) {
			for _, ep := range rule.extract(m) {
				if ep.Path == "" {
					ep.Path = "/"
				}
				ep.File = sf.Path
				out = append(out, ep)
			}
		}
	}
	return out
}

// dedupEndpoints keeps the first occurrence of each (method, path).
func dedupEndpoints(eps []Endpoint) []Endpoint {
	type key struct{ method, path string }
	seen := make(map[key]bool, len(eps))
	var out []Endpoint
	for _, ep := range eps {
		k := key{ep.Method, ep.Path}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, ep)
	}
	return out
}
