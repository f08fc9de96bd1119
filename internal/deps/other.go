package deps

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"golang.org/x/mod/modfile"
)

// parseCargo reads [dependencies] as production and [dev-dependencies] and
// [build-dependencies] as development.
func parseCargo(_ string, data []byte) ([]entry, error) {
	doc, keys, err := tomlTable(data)
	if err != nil {
		return nil, err
	}
	out := tomlEntries(doc, keys, []string{"dependencies"}, Production, nil)
	out = append(out, tomlEntries(doc, keys, []string{"dev-dependencies"}, Development, nil)...)
	return append(out, tomlEntries(doc, keys, []string{"build-dependencies"}, Development, nil)...), nil
}

// parseGoMod reads require directives. Go modules have no development
// section, so every requirement is production.
func parseGoMod(base string, data []byte) ([]entry, error) {
	f, err := modfile.ParseLax(base, data, nil)
	if err != nil {
		return nil, err
	}
	out := make([]entry, 0, len(f.Require))
	for _, r := range f.Require {
		out = append(out, entry{name: r.Mod.Path, version: r.Mod.Version, kind: Production})
	}
	return out, nil
}

type pomProject struct {
	XMLName      xml.Name        `xml:"project"`
	Properties   pomProperties   `xml:"properties"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
}

type pomProperties struct {
	Entries []pomProperty `xml:",any"`
}

type pomProperty struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// parsePom reads <dependencies> from a Maven POM. Test-scoped artifacts are
// development dependencies; ${property} versions are resolved from
// <properties> where possible.
func parsePom(_ string, data []byte) ([]entry, error) {
	var p pomProject
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}

	props := make(map[string]string, len(p.Properties.Entries))
	for _, e := range p.Properties.Entries {
		props[e.XMLName.Local] = strings.TrimSpace(e.Value)
	}

	out := make([]entry, 0, len(p.Dependencies))
	for i, d := range p.Dependencies {
		if d.GroupID == "" || d.ArtifactID == "" {
			return nil, fmt.Errorf("dependency %d: missing groupId or artifactId", i+1)
		}
		kind := Production
		if strings.EqualFold(strings.TrimSpace(d.Scope), "test") {
			kind = Development
		}
		out = append(out, entry{
			name:    strings.TrimSpace(d.GroupID) + ":" + strings.TrimSpace(d.ArtifactID),
			version: resolveProperty(strings.TrimSpace(d.Version), props),
			kind:    kind,
		})
	}
	return out, nil
}

func resolveProperty(v string, props map[string]string) string {
	if !strings.HasPrefix(v, "${") || !strings.HasSuffix(v, "}") {
		return v
	}
	if resolved, ok := props[v[2:len(v)-1]]; ok && resolved != "" {
		return resolved
	}
	return v
}
