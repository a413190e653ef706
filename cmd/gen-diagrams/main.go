// gen-diagrams renders every flow under examples/flows into docs/assets.
// Run: go run ./cmd/gen-diagrams
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rendis/floxyview/internal/diagram"
)

func main() {
	ctx := context.Background()

	inputs, err := filepath.Glob(filepath.Join("examples", "flows", "*.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "glob error: %v\n", err)
		os.Exit(1)
	}

	outDir := filepath.Join("docs", "assets")
	os.MkdirAll(outDir, 0o755)

	// Example diagram shown when no document is given.
	os.WriteFile(filepath.Join(outDir, "example.md"), []byte("```mermaid\n"+diagram.Placeholder+"\n```\n"), 0o644)

	for _, in := range inputs {
		name := strings.TrimSuffix(filepath.Base(in), ".json")
		raw, readErr := os.ReadFile(in)
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", in, readErr)
			continue
		}

		// Mermaid
		mermaid := diagram.Translate(string(raw))
		os.WriteFile(filepath.Join(outDir, name+".md"), []byte("```mermaid\n"+mermaid+"```\n"), 0o644)
		fmt.Printf("=== %s (Mermaid) ===\n%s\n", name, mermaid)

		// HTML preview
		if page, pageErr := diagram.RenderPage(mermaid, diagram.PageOptions{Title: name}); pageErr == nil {
			os.WriteFile(filepath.Join(outDir, name+".html"), page, 0o644)
		}

		// Image (SVG)
		model, buildErr := diagram.FromJSON(raw)
		if buildErr != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", in, buildErr)
			continue
		}
		svg, imgErr := diagram.RenderGraphviz(ctx, model, diagram.FormatSVG)
		if imgErr != nil {
			fmt.Fprintf(os.Stderr, "image error: %v\n", imgErr)
			continue
		}
		svgPath := filepath.Join(outDir, name+".svg")
		os.WriteFile(svgPath, svg, 0o644)
		fmt.Printf("=== %s (SVG) ===\nWritten: %s (%d bytes)\n", name, svgPath, len(svg))
	}
}
