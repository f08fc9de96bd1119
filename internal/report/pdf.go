package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/sync/errgroup"
)

// PDFPrinter converts an HTML page to PDF.
type PDFPrinter interface {
	PrintPDF(ctx context.Context, html []byte) ([]byte, error)
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; margin: 2em; line-height: 1.5; color: #24292e; }
h1, h2 { border-bottom: 1px solid #eaecef; padding-bottom: .3em; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #dfe2e5; padding: 4px 10px; }
code, pre { background: #f6f8fa; font-family: Menlo, Consolas, monospace; font-size: 90%; }
pre { padding: 12px; overflow-x: auto; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// MarkdownToHTML converts a markdown page into a standalone HTML document.
func MarkdownToHTML(title string, md []byte) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert(md, &body); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}
	var out bytes.Buffer
	err := pageTmpl.Execute(&out, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(body.String())})
	if err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	return out.Bytes(), nil
}

// PDFPath maps a markdown document path to its file name under pdf/.
func PDFPath(docPath string) string {
	name := strings.TrimSuffix(docPath, ".md")
	return "pdf/" + strings.ReplaceAll(name, "/", "_") + ".pdf"
}

// ExportPDF prints every markdown document to dir/pdf/. Failures are logged
// and skipped; the paths written are returned in document order.
func ExportPDF(ctx context.Context, documents []Document, dir string, printer PDFPrinter) []string {
	var pages []Document
	for _, d := range documents {
		if d.IsMarkdown() {
			pages = append(pages, d)
		}
	}

	// Each task fills its own slot.
	written := make([]string, len(pages))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(2)
	for i, d := range pages {
		g.Go(func() error {
			html, err := MarkdownToHTML(d.Title, []byte(d.Content))
			if err != nil {
				log.Printf("WARNING: pdf %s: %v", d.Path, err)
				return nil
			}
			pdf, err := printer.PrintPDF(ctx, html)
			if err != nil {
				log.Printf("WARNING: pdf %s: %v", d.Path, err)
				return nil
			}
			out := filepath.Join(dir, filepath.FromSlash(PDFPath(d.Path)))
			if err := writeFile(out, pdf); err != nil {
				log.Printf("WARNING: pdf %s: %v", d.Path, err)
				return nil
			}
			written[i] = out
			return nil
		})
	}
	_ = g.Wait()

	var paths []string
	for _, p := range written {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// ChromePrinter prints pages with a headless Chrome instance shared by all
// calls. Close releases the browser.
type ChromePrinter struct {
	browser context.Context
	cancel  context.CancelFunc
	tmpDir  string
}

// NewChromePrinter launches a headless browser. Tabs opened by PrintPDF
// share it.
func NewChromePrinter(ctx context.Context) (*ChromePrinter, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	browser, cancelBrowser := chromedp.NewContext(allocCtx)
	cancel := func() {
		cancelBrowser()
		cancelAlloc()
	}
	// An empty Run allocates the browser so later tabs attach to it.
	if err := chromedp.Run(browser); err != nil {
		cancel()
		return nil, fmt.Errorf("starting chrome: %w", err)
	}

	tmp, err := os.MkdirTemp("", "docgenie-pdf-")
	if err != nil {
		cancel()
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	return &ChromePrinter{browser: browser, cancel: cancel, tmpDir: tmp}, nil
}

// PrintPDF loads html in a new tab and prints it.
func (c *ChromePrinter) PrintPDF(ctx context.Context, html []byte) ([]byte, error) {
	f, err := os.CreateTemp(c.tmpDir, "page-*.html")
	if err != nil {
		return nil, fmt.Errorf("creating page file: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(html); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing page file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("writing page file: %w", err)
	}

	tab, cancel := chromedp.NewContext(c.browser)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var pdf []byte
	err = chromedp.Run(tab,
		chromedp.Navigate("file://"+filepath.ToSlash(f.Name())),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("printing pdf: %w", err)
	}
	return pdf, nil
}

// Close shuts the browser down and removes temporary files.
func (c *ChromePrinter) Close() {
	c.cancel()
	os.RemoveAll(c.tmpDir)
}
