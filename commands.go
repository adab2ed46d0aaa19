package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// errFailed is returned after the diagnostics of a failed step have been
// printed.
var errFailed = errors.New("failed")

// cli holds the flags and writers shared by all commands.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	verbose bool
	output  string
	check   bool
	mesh    bool

	log zerolog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "kclexport",
		Short: "Translate solid models into pipe-style scripts",
		Long: `kclexport reads a model description (a Lisp file listing a design's
parameters, sketches, features and bodies) and writes the equivalent
pipe-style script.

Examples:
  kclexport export bracket.lisp -o bracket.kcl     # Translate a model
  kclexport export --check -v bracket.lisp         # Translate, annotate and check
  kclexport check bracket.kcl                      # Check a generated script
  kclexport preview --mesh bracket.lisp            # Bounding boxes and triangle counts`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.setupLogging()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false,
		"debug logging and diagnostic comments in the script")

	exportCmd := &cobra.Command{
		Use:   "export <model.lisp>",
		Short: "Translate a model description into a script",
		Args:  cobra.ExactArgs(1),
		RunE:  c.runExport,
	}
	exportCmd.Flags().StringVarP(&c.output, "output", "o", "", "write the script to this file instead of stdout")
	exportCmd.Flags().BoolVar(&c.check, "check", false, "check the generated script")

	checkCmd := &cobra.Command{
		Use:   "check <script.kcl>",
		Short: "Check references in a generated script",
		Args:  cobra.ExactArgs(1),
		RunE:  c.runCheck,
	}

	previewCmd := &cobra.Command{
		Use:   "preview <model.lisp|script.kcl>",
		Short: "Evaluate a script and print the bounding box of every solid",
		Args:  cobra.ExactArgs(1),
		RunE:  c.runPreview,
	}
	previewCmd.Flags().BoolVar(&c.mesh, "mesh", false, "tessellate every solid and print triangle counts")

	root.AddCommand(exportCmd, checkCmd, previewCmd)
	return root
}

func (c *cli) setupLogging() {
	level := zerolog.InfoLevel
	if c.verbose {
		level = zerolog.DebugLevel
	}
	c.log = zerolog.New(zerolog.ConsoleWriter{Out: c.stderr}).
		Level(level).
		With().
		Timestamp().
		Str("run", uuid.NewString()).
		Logger()
}

func (c *cli) app() *App {
	return NewApp(c.log, c.verbose)
}

func (c *cli) runExport(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read model: %w", err)
	}
	c.log.Debug().Str("model", args[0]).Msg("exporting")

	app := c.app()
	res := app.Export(string(source))
	c.report(args[0], "warning", res.Warnings)
	if len(res.Errors) > 0 {
		c.report(args[0], "error", res.Errors)
		return errFailed
	}

	if c.output == "" {
		fmt.Fprint(c.stdout, res.Script)
	} else {
		if err := os.WriteFile(c.output, []byte(res.Script), 0o644); err != nil {
			return fmt.Errorf("failed to write script: %w", err)
		}
		c.log.Info().Str("output", c.output).Msg("script written")
	}

	if c.check {
		return c.checkScript(app, nameOr(c.output, "<output>"), res.Script)
	}
	return nil
}

func (c *cli) runCheck(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	if err := c.checkScript(c.app(), args[0], string(src)); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "%s: ok\n", args[0])
	return nil
}

func (c *cli) checkScript(app *App, name, src string) error {
	res := app.Check(src)
	c.report(name, "warning", res.Warnings)
	if len(res.Errors) > 0 {
		c.report(name, "error", res.Errors)
		return errFailed
	}
	c.log.Debug().Int("variables", len(res.Variables)).Msg("script checked")
	return nil
}

func (c *cli) runPreview(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	app := c.app()

	src := string(data)
	if !isScript(args[0]) {
		res := app.Export(src)
		c.report(args[0], "warning", res.Warnings)
		if len(res.Errors) > 0 {
			c.report(args[0], "error", res.Errors)
			return errFailed
		}
		src = res.Script
	}

	res := app.Preview(src, c.mesh)
	c.report(args[0], "warning", res.Warnings)
	if len(res.Errors) > 0 {
		c.report(args[0], "error", res.Errors)
		return errFailed
	}
	for _, b := range res.Bodies {
		fmt.Fprintf(c.stdout, "%s: [%.3f, %.3f, %.3f] .. [%.3f, %.3f, %.3f]",
			b.Var, b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
		if c.mesh {
			fmt.Fprintf(c.stdout, " (%d triangles)", b.Triangles)
		}
		fmt.Fprintln(c.stdout)
	}
	return nil
}

// report prints diagnostics as "name:line:col: kind: message".
func (c *cli) report(name, kind string, diags []Diagnostic) {
	for _, d := range diags {
		pos := name
		if d.Line > 0 {
			pos = fmt.Sprintf("%s:%d:%d", name, d.Line, d.Col)
		}
		fmt.Fprintf(c.stderr, "%s: %s: %s\n", pos, kind, d.Message)
	}
}

func isScript(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".kcl")
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
