package report

import (
	"bytes"
	"compress/flate"
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// plantUMLAlphabet is PlantUML's URL-safe base64 variant.
const plantUMLAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

// EncodePlantUML deflates text and encodes it for a PlantUML server URL.
func EncodePlantUML(text string) (string, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := w.Write([]byte(text)); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return encode64(buf.Bytes()), nil
}

func encode64(data []byte) string {
	var b strings.Builder
	b.Grow((len(data) + 2) / 3 * 4)
	for i := 0; i < len(data); i += 3 {
		var c [3]byte
		copy(c[:], data[i:])
		b.WriteByte(plantUMLAlphabet[c[0]>>2])
		b.WriteByte(plantUMLAlphabet[(c[0]&0x3)<<4|c[1]>>4])
		b.WriteByte(plantUMLAlphabet[(c[1]&0xF)<<2|c[2]>>6])
		b.WriteByte(plantUMLAlphabet[c[2]&0x3F])
	}
	return b.String()
}

// Fetcher retrieves a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// PlantUMLURL returns the PNG URL of diagram text on server.
func PlantUMLURL(server, text string) (string, error) {
	enc, err := EncodePlantUML(text)
	if err != nil {
		return "", fmt.Errorf("encoding diagram: %w", err)
	}
	return strings.TrimSuffix(server, "/") + "/png/" + enc, nil
}

// ExportImages renders every PlantUML document to a PNG next to its source
// under dir. Failures are logged and skipped; the paths of images written
// are returned in document order.
func ExportImages(ctx context.Context, documents []Document, server, dir string, f Fetcher) []string {
	var diagrams []Document
	for _, d := range documents {
		if strings.HasSuffix(d.Path, ".puml") {
			diagrams = append(diagrams, d)
		}
	}

	// Each task fills its own slot.
	written := make([]string, len(diagrams))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for i, d := range diagrams {
		g.Go(func() error {
			url, err := PlantUMLURL(server, d.Content)
			if err != nil {
				log.Printf("WARNING: diagram %s: %v", d.Path, err)
				return nil
			}
			img, err := f.Fetch(ctx, url)
			if err != nil {
				log.Printf("WARNING: diagram %s: image export failed: %v", d.Path, err)
				return nil
			}
			out := filepath.Join(dir, filepath.FromSlash(strings.TrimSuffix(d.Path, ".puml")+".png"))
			if err := writeFile(out, img); err != nil {
				log.Printf("WARNING: diagram %s: %v", d.Path, err)
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
