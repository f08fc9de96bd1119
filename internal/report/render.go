package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// Output formats.
const (
	FormatRawMarkdown = "raw-md"
	FormatHugo        = "hugo"
	FormatDocusaurus  = "docusaurus"
)

// RendererConfig controls how documents are written.
type RendererConfig struct {
	Format    string // raw-md, hugo or docusaurus
	OutputDir string
	SiteTitle string
}

// Render writes the documents to disk in the configured format and returns
// the paths written, in document order.
func Render(documents []Document, cfg RendererConfig) ([]string, error) {
	switch cfg.Format {
	case FormatRawMarkdown, "":
		return renderRawMarkdown(documents, cfg)
	case FormatHugo:
		return renderHugo(documents, cfg)
	case FormatDocusaurus:
		return renderDocusaurus(documents, cfg)
	default:
		return nil, fmt.Errorf("unsupported render format: %s", cfg.Format)
	}
}

// ContentDir returns the directory documents are written under for cfg.
func ContentDir(cfg RendererConfig) string {
	switch cfg.Format {
	case FormatHugo:
		return filepath.Join(cfg.OutputDir, "content")
	case FormatDocusaurus:
		return filepath.Join(cfg.OutputDir, "docs")
	default:
		return cfg.OutputDir
	}
}

func renderRawMarkdown(documents []Document, cfg RendererConfig) ([]string, error) {
	return writeDocs(documents, ContentDir(cfg), nil)
}

// renderHugo adds front matter to markdown pages under content/ and writes
// a config.toml.
func renderHugo(documents []Document, cfg RendererConfig) ([]string, error) {
	written, err := writeDocs(documents, ContentDir(cfg), func(i int, doc Document) string {
		return fmt.Sprintf("---\ntitle: %q\nweight: %d\n---\n\n", doc.Title, i+1)
	})
	if err != nil {
		return nil, err
	}

	configContent := fmt.Sprintf(`baseURL = "/"
languageCode = "en-us"
title = %q
theme = "hugo-book"
`, siteTitle(cfg))
	configPath := filepath.Join(cfg.OutputDir, "config.toml")
	if err := writeDoc(configPath, configContent); err != nil {
		return nil, err
	}
	return append(written, configPath), nil
}

// renderDocusaurus adds front matter to markdown pages under docs/ and
// writes a docusaurus.config.js.
func renderDocusaurus(documents []Document, cfg RendererConfig) ([]string, error) {
	written, err := writeDocs(documents, ContentDir(cfg), func(i int, doc Document) string {
		return fmt.Sprintf("---\nsidebar_position: %d\nsidebar_label: %q\n---\n\n", i+1, doc.Title)
	})
	if err != nil {
		return nil, err
	}

	configContent := fmt.Sprintf(`// @ts-check

/** @type {import('@docusaurus/types').Config} */
const config = {
  title: %q,
  url: 'https://your-project-url.example.com',
  baseUrl: '/',
  presets: [
    [
      'classic',
      /** @type {import('@docusaurus/preset-classic').Options} */
      ({
        docs: {
          routeBasePath: '/',
        },
      }),
    ],
  ],
};

module.exports = config;
`, siteTitle(cfg))
	configPath := filepath.Join(cfg.OutputDir, "docusaurus.config.js")
	if err := writeDoc(configPath, configContent); err != nil {
		return nil, err
	}
	return append(written, configPath), nil
}

func siteTitle(cfg RendererConfig) string {
	if cfg.SiteTitle != "" {
		return cfg.SiteTitle
	}
	return "Project Documentation"
}

// writeDocs writes every document under dir. frontMatter, when set, is
// prepended to markdown documents only; PlantUML and YAML files stay valid.
func writeDocs(documents []Document, dir string, frontMatter func(i int, doc Document) string) ([]string, error) {
	written := make([]string, 0, len(documents))
	for i, doc := range documents {
		content := doc.Content
		if frontMatter != nil && doc.IsMarkdown() {
			content = frontMatter(i, doc) + content
		}
		path := filepath.Join(dir, filepath.FromSlash(doc.Path))
		if err := writeDoc(path, content); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}

// writeDoc creates parent directories and writes content to the given path.
func writeDoc(path, content string) error {
	return writeFile(path, []byte(content))
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
