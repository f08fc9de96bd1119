package report

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/julianshen/docgenie/internal/analysis"
)

type openAPIDoc struct {
	OpenAPI string                                 `yaml:"openapi"`
	Info    openAPIInfo                            `yaml:"info"`
	Servers []openAPIServer                        `yaml:"servers"`
	Paths   map[string]map[string]openAPIOperation `yaml:"paths"`
}

type openAPIInfo struct {
	Title       string `yaml:"title"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

type openAPIServer struct {
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

type openAPIOperation struct {
	Summary    string                     `yaml:"summary"`
	Parameters []openAPIParameter         `yaml:"parameters,omitempty"`
	Responses  map[string]openAPIResponse `yaml:"responses"`
}

type openAPIParameter struct {
	Name     string            `yaml:"name"`
	In       string            `yaml:"in"`
	Required bool              `yaml:"required"`
	Schema   map[string]string `yaml:"schema"`
}

type openAPIResponse struct {
	Description string `yaml:"description"`
}

var (
	flaskParam   = regexp.MustCompile(`<(?:\w+:)?(\w+)>`)
	colonParam   = regexp.MustCompile(`:(\w+)`)
	templateVars = regexp.MustCompile(`\{(\w+)(?:\.\.\.|:[^}]*)?\}`)
)

// openAPIPath rewrites framework route syntax (<id>, <int:id>, :id,
// {id:[0-9]+}, {rest...})
// to OpenAPI templates.
func openAPIPath(p string) string {
	p = templateVars.ReplaceAllString(p, "{$1}")
	p = flaskParam.ReplaceAllString(p, "{$1}")
	p = colonParam.ReplaceAllString(p, "{$1}")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// buildOpenAPI renders an OpenAPI 3.0 skeleton with one operation per
// detected endpoint. Endpoints that accept any method are listed as GET.
func buildOpenAPI(res *analysis.Result, meta Meta) (string, error) {
	desc := meta.Repo.Description
	if desc == "" {
		desc = "API for " + meta.name()
	}
	doc := openAPIDoc{
		OpenAPI: "3.0.0",
		Info: openAPIInfo{
			Title:       meta.name() + " API",
			Version:     "1.0.0",
			Description: desc,
		},
		Servers: []openAPIServer{{URL: "http://localhost:3000", Description: "Development server"}},
		Paths:   map[string]map[string]openAPIOperation{},
	}

	for _, ep := range res.Endpoints {
		p := openAPIPath(ep.Path)
		method := strings.ToLower(ep.Method)
		if method == "any" {
			method = "get"
		}
		ops, ok := doc.Paths[p]
		if !ok {
			ops = map[string]openAPIOperation{}
			doc.Paths[p] = ops
		}
		if _, dup := ops[method]; dup {
			continue
		}
		op := openAPIOperation{
			Summary:   fmt.Sprintf("%s %s (%s)", ep.Method, ep.Path, ep.File),
			Responses: map[string]openAPIResponse{"200": {Description: "Successful response"}},
		}
		for _, m := range templateVars.FindAllStringSubmatch(p, -1) {
			op.Parameters = append(op.Parameters, openAPIParameter{
				Name:     m[1],
				In:       "path",
				Required: true,
				Schema:   map[string]string{"type": "string"},
			})
		}
		ops[method] = op
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encoding openapi document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding openapi document: %w", err)
	}
	return buf.String(), nil
}

func buildAPISpec(res *analysis.Result, meta Meta, openapi string) Document {
	var b strings.Builder
	b.WriteString("# API Documentation\n\n")
	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "HTTP endpoints declared in the source code of %s.\n\n", meta.name())

	b.WriteString("## API Endpoints\n\n")
	if len(res.Endpoints) == 0 {
		b.WriteString("No API endpoints detected. The project may not expose an HTTP API, ")
		b.WriteString("or its routes are generated at runtime or declared in configuration.\n")
	} else {
		b.WriteString("| Method | Path | File |\n|---|---|---|\n")
		for _, ep := range res.Endpoints {
			fmt.Fprintf(&b, "| %s | `%s` | %s |\n", ep.Method, cell(ep.Path), cell(ep.File))
		}
	}

	b.WriteString("\n## OpenAPI Specification\n\n")
	b.WriteString("The skeleton below is also written to [openapi.yaml](./openapi.yaml).\n\n")
	b.WriteString("```yaml\n")
	b.WriteString(openapi)
	b.WriteString("```\n")

	b.WriteString("\n## Usage Examples\n\n```bash\n")
	if len(res.Endpoints) == 0 {
		b.WriteString("curl -X GET \"http://localhost:3000/\"\n")
	}
	for i, ep := range res.Endpoints {
		if i == 3 {
			break
		}
		method := ep.Method
		if method == "ANY" {
			method = "GET"
		}
		fmt.Fprintf(&b, "curl -X %s \"http://localhost:3000%s\"\n", method, openAPIPath(ep.Path))
	}
	b.WriteString("```\n")

	return Document{Path: APISpecPath, Title: "API Documentation", Content: b.String()}
}
