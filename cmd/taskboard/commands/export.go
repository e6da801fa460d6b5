package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"git.home.luguber.info/inful/taskboard/internal/export"
	"git.home.luguber.info/inful/taskboard/internal/foundation/errors"
	"git.home.luguber.info/inful/taskboard/internal/logfields"
	"git.home.luguber.info/inful/taskboard/internal/task"
)

// ExportCmd implements the 'export' command.
type ExportCmd struct {
	Format string `short:"F" help:"Output format (markdown, html, json)" default:"markdown"`
	Output string `short:"o" help:"Write to file instead of stdout" type:"path"`
	Filter string `short:"f" help:"Filter for this export only (all, pending, completed)"`
	Title  string `help:"Document title" default:"Tasks"`
	Verify string `help:"Check the fingerprint of a previously exported Markdown file instead of exporting" type:"existingfile"`
}

func (e *ExportCmd) Run(g *Global, root *CLI) error {
	if e.Verify != "" {
		return e.verify(g)
	}
	format, err := export.ParseFormat(e.Format)
	if err != nil {
		return err
	}

	return withApp(g, root, func(ctx context.Context, app *App) error {
		f := app.Store.Filter()
		if e.Filter != "" {
			if f, err = task.ParseFilter(e.Filter); err != nil {
				return err
			}
		}
		doc := export.Document{
			Title:    e.Title,
			Tasks:    app.Store.Tasks(),
			Filter:   f,
			Now:      g.Now(),
			Location: g.Location,
		}

		if e.Output == "" {
			return export.Write(g.Out, format, doc)
		}
		var buf bytes.Buffer
		if err := export.Write(&buf, format, doc); err != nil {
			return err
		}
		if err := os.WriteFile(e.Output, buf.Bytes(), 0o644); err != nil {
			return errors.FileSystemError("failed to write export file").
				WithCause(err).
				WithContext("path", e.Output).
				Build()
		}
		app.logger.Info("Exported tasks", logfields.Format(string(format)), logfields.Path(e.Output), logfields.Count(len(doc.Tasks)))
		_, _ = fmt.Fprintf(g.Out, "Wrote %s\n", e.Output)
		return nil
	})
}

func (e *ExportCmd) verify(g *Global) error {
	data, err := os.ReadFile(e.Verify)
	if err != nil {
		return errors.FileSystemError("failed to read export file").WithCause(err).WithContext("path", e.Verify).Build()
	}
	ok, err := export.Verify(data)
	if err != nil {
		return errors.ValidationError("export file is malformed").WithCause(err).WithContext("path", e.Verify).Build()
	}
	if !ok {
		return errors.ValidationError("export fingerprint mismatch").WithContext("path", e.Verify).Build()
	}
	_, _ = fmt.Fprintf(g.Out, "%s: fingerprint ok\n", e.Verify)
	return nil
}
