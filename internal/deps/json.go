package deps

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

var errInvalidJSON = errors.New("invalid JSON")

// jsonSections walks the named object sections of a JSON manifest in
// document order, so output order follows declaration order.
func jsonSections(data []byte, sections map[string]Kind, order []string, skip func(string) bool) ([]entry, error) {
	if !gjson.ValidBytes(data) {
		return nil, errInvalidJSON
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, errors.New("manifest root is not an object")
	}

	var out []entry
	for _, section := range order {
		kind := sections[section]
		doc.Get(section).ForEach(func(name, version gjson.Result) bool {
			if skip != nil && skip(name.String()) {
				return true
			}
			out = append(out, entry{name: name.String(), version: version.String(), kind: kind})
			return true
		})
	}
	return out, nil
}

// parsePackageJSON reads npm's dependencies and devDependencies.
func parsePackageJSON(_ string, data []byte) ([]entry, error) {
	return jsonSections(data,
		map[string]Kind{"dependencies": Production, "devDependencies": Development},
		[]string{"dependencies", "devDependencies"},
		nil,
	)
}

// parseComposer reads composer's require and require-dev, ignoring platform
// requirements such as php and ext-*.
func parseComposer(_ string, data []byte) ([]entry, error) {
	return jsonSections(data,
		map[string]Kind{"require": Production, "require-dev": Development},
		[]string{"require", "require-dev"},
		func(name string) bool {
			return name == "php" || strings.HasPrefix(name, "ext-") || strings.HasPrefix(name, "lib-")
		},
	)
}
