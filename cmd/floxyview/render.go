package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/rendis/floxyview/internal/diagram"
	"github.com/rendis/floxyview/internal/logging"
	"github.com/rendis/floxyview/pkg/schema"
	cli "github.com/urfave/cli/v3"
)

func (a *app) renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Translate a flow document into Mermaid flowchart source",
		ArgsUsage: "[file|-]",
		Description: "Without a file the example diagram is printed. Documents that cannot be " +
			"translated render as a single error node unless --strict is set.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write to `FILE` instead of stdout"},
			&cli.BoolFlag{Name: "html", Usage: "Wrap the diagram in a standalone HTML page"},
			&cli.StringFlag{Name: "theme", Usage: "Mermaid theme for --html", Value: a.cfg.Theme},
			&cli.BoolFlag{Name: "strict", Usage: "Fail when the document cannot be translated"},
			&cli.BoolFlag{Name: "yaml", Usage: "Read the document as YAML (implied for .yaml and .yml files)"},
		},
		Action: a.runRender,
	}
}

func (a *app) runRender(ctx context.Context, cmd *cli.Command) error {
	source, raw, err := a.readInput(cmd.Args().First())
	if err != nil {
		return err
	}
	ctx = logging.WithSource(ctx, source)

	out, err := a.translate(ctx, raw, cmd.Bool("yaml") || schema.IsYAMLName(source))
	if err != nil && cmd.Bool("strict") {
		return fmt.Errorf("render %s: %w", source, err)
	}
	return a.emit(cmd, out)
}

func (a *app) exampleCommand() *cli.Command {
	return &cli.Command{
		Name:  "example",
		Usage: "Print the example diagram showing every node shape and edge kind",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write to `FILE` instead of stdout"},
			&cli.BoolFlag{Name: "html", Usage: "Wrap the diagram in a standalone HTML page"},
			&cli.StringFlag{Name: "theme", Usage: "Mermaid theme for --html", Value: a.cfg.Theme},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return a.emit(cmd, diagram.Placeholder)
		},
	}
}

func (a *app) exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Lay out a flow document with graphviz",
		ArgsUsage: "<file|->",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Output format (dot, svg, png)", Value: string(diagram.FormatSVG)},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write to `FILE` instead of stdout"},
			&cli.BoolFlag{Name: "yaml", Usage: "Read the document as YAML (implied for .yaml and .yml files)"},
		},
		Action: a.runExport,
	}
}

func (a *app) runExport(ctx context.Context, cmd *cli.Command) error {
	format, err := diagram.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("export: a document file (or - for stdin) is required")
	}

	source, raw, err := a.readInput(cmd.Args().First())
	if err != nil {
		return err
	}
	ctx = logging.WithSource(ctx, source)

	model, err := buildModel(raw, cmd.Bool("yaml") || schema.IsYAMLName(source))
	if err != nil {
		return fmt.Errorf("export %s: %w", source, err)
	}
	out, err := diagram.RenderGraphviz(ctx, model, format)
	if err != nil {
		return schema.NewErrorf(schema.ErrCodeRender, "export %s", source).WithCause(err)
	}
	a.logger.DebugContext(ctx, "document exported", "format", format, "bytes", len(out))
	return a.write(cmd.String("output"), out)
}

// readInput resolves the document argument: "" means no document, "-"
// reads stdin, anything else is a file path.
func (a *app) readInput(arg string) (string, []byte, error) {
	switch arg {
	case "":
		return "example", nil, nil
	case "-":
		raw, err := io.ReadAll(a.stdin)
		if err != nil {
			return "stdin", nil, schema.NewError(schema.ErrCodeIO, "read stdin").WithCause(err)
		}
		return "stdin", raw, nil
	default:
		raw, err := os.ReadFile(arg)
		if errors.Is(err, fs.ErrNotExist) {
			return arg, nil, schema.NewErrorf(schema.ErrCodeNotFound, "no such document %s", arg).WithCause(err)
		}
		if err != nil {
			return arg, nil, schema.NewErrorf(schema.ErrCodeIO, "read %s", arg).WithCause(err)
		}
		return arg, raw, nil
	}
}

// translate mirrors diagram.Translate but also reports why a document fell
// back to an error diagram.
func (a *app) translate(ctx context.Context, raw []byte, isYAML bool) (string, error) {
	if len(raw) == 0 {
		return diagram.Placeholder, nil
	}
	model, err := buildModel(raw, isYAML)
	if err != nil {
		a.logger.WarnContext(ctx, "document not translated", "code", schema.CodeOf(err), "error", err)
		return diagram.ErrorDiagram(err), err
	}
	a.logger.DebugContext(ctx, "document translated", "nodes", len(model.Nodes), "edges", len(model.Edges))
	return diagram.RenderMermaid(model), nil
}

func buildModel(raw []byte, isYAML bool) (*diagram.DiagramModel, error) {
	if isYAML {
		return diagram.FromYAML(raw)
	}
	return diagram.FromJSON(raw)
}

// emit writes diagram source, or an HTML page when --html is set.
func (a *app) emit(cmd *cli.Command, source string) error {
	out := []byte(source)
	if cmd.Bool("html") {
		page, err := diagram.RenderPage(source, diagram.PageOptions{Theme: cmd.String("theme")})
		if err != nil {
			return err
		}
		out = page
	} else if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return a.write(cmd.String("output"), out)
}

func (a *app) write(path string, data []byte) error {
	if path == "" {
		_, err := a.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return schema.NewErrorf(schema.ErrCodeIO, "write %s", path).WithCause(err)
	}
	return nil
}
