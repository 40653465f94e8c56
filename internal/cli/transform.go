package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kgview/pkg/errors"
	"github.com/matzehuels/kgview/pkg/pipeline"
	"github.com/matzehuels/kgview/pkg/render"
)

// transformFlags are the flags of `kgview transform`.
type transformFlags struct {
	kb         string
	format     string
	output     string
	layout     string
	directed   bool
	edgeLabels bool
	refresh    bool
	noCache    bool
	snapshot   bool
	watch      bool
}

func (c *CLI) transformCommand() *cobra.Command {
	var f transformFlags

	cmd := &cobra.Command{
		Use:   "transform [file]",
		Short: "Transform a knowledge graph into a render-ready graph",
		Long: `Transform a knowledge graph payload into render-ready nodes and edges.

The payload is read from a file (a bare {"nodes","edges"} object or a saved
{"code","msg","data"} API response) or fetched from the backend with --kb.

Examples:
  kgview transform graph.json
  kgview transform graph.json -f svg -o graph.svg
  kgview transform --kb 42f0c3 -f yaml
  kgview transform graph.json -f dot --watch -o graph.dot`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options(args)
			if err != nil {
				return err
			}
			if f.watch {
				if opts.File == "" {
					return errors.New(errors.ErrCodeInvalidInput, "--watch needs a file argument")
				}
				return c.watch(cmd.Context(), cmd.OutOrStdout(), opts, f)
			}
			return c.runTransform(cmd.Context(), cmd.OutOrStdout(), opts, f)
		},
	}

	cmd.Flags().StringVar(&f.kb, "kb", "", "fetch the graph of this knowledge base from the backend")
	cmd.Flags().StringVarP(&f.format, "format", "f", string(render.FormatJSON), "output format: json, yaml, dot, svg")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&f.layout, "layout", render.DefaultLayout, "graphviz layout engine for dot and svg")
	cmd.Flags().BoolVar(&f.directed, "directed", false, "draw edges with arrows")
	cmd.Flags().BoolVar(&f.edgeLabels, "edge-labels", false, "print edge labels in dot and svg")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass caches")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.snapshot, "snapshot", false, "archive the result in the snapshot repository")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "re-run whenever the input file changes")

	cmd.ValidArgsFunction = completePayloadFile
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	_ = cmd.RegisterFlagCompletionFunc("output", completeOutputFile)
	_ = cmd.RegisterFlagCompletionFunc("layout", cobra.FixedCompletions(render.Layouts, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// options validates the flag combination and builds pipeline options.
func (f transformFlags) options(args []string) (pipeline.Options, error) {
	opts := pipeline.Options{
		KnowledgeID: f.kb,
		Format:      render.Format(f.format),
		Render: render.Options{
			Directed:   f.directed,
			Layout:     f.layout,
			EdgeLabels: f.edgeLabels,
		},
		Refresh:  f.refresh,
		Snapshot: f.snapshot,
	}
	if len(args) == 1 {
		opts.File = args[0]
	}
	if f.output != "" {
		if err := errors.ValidatePath(f.output); err != nil {
			return opts, err
		}
		if f.format == string(render.FormatJSON) {
			if ext := strings.TrimPrefix(filepath.Ext(f.output), "."); ext != "" {
				if inferred, err := render.ParseFormat(ext); err == nil {
					opts.Format = inferred
				}
			}
		}
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func (c *CLI) runTransform(ctx context.Context, out io.Writer, opts pipeline.Options, f transformFlags) error {
	svc, err := c.newServices(ctx, f.noCache)
	if err != nil {
		return err
	}
	defer svc.close(ctx)

	res, err := c.execute(ctx, svc.runner, opts)
	if err != nil {
		return err
	}
	return c.emit(out, res, f)
}

// execute runs the pipeline, showing a spinner while the backend is queried.
func (c *CLI) execute(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	prog := newProgress(loggerFromContext(ctx))
	if opts.KnowledgeID == "" {
		res, err := runner.Execute(ctx, opts)
		if err == nil {
			prog.done(fmt.Sprintf("Transformed %d nodes", res.Stats.NodeCount))
		}
		return res, err
	}

	spin := newSpinnerWithContext(ctx, "Fetching knowledge base "+opts.KnowledgeID+"...")
	spin.Start()
	res, err := runner.Execute(ctx, opts)
	spin.Stop()
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Fetched and transformed %d nodes", res.Stats.NodeCount))
	return res, nil
}

// emit writes the artifact to out or the output file. Status lines go to
// stderr so the artifact can be piped.
func (c *CLI) emit(out io.Writer, res *pipeline.Result, f transformFlags) error {
	printProgress(res.Progress)
	if f.output == "" {
		_, err := out.Write(res.Artifact)
		return err
	}
	if err := os.WriteFile(f.output, res.Artifact, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", f.output)
	}
	printSuccess("Wrote %s", res.Format)
	printFile(f.output)
	printStats(res.Stats, res.CacheInfo.RenderHit)
	if res.SnapshotID != "" {
		printDetail("Snapshot %s", res.SnapshotID)
	}
	if res.Format != render.FormatSVG {
		printNextStep("Render an image", fmt.Sprintf("%s transform %s -f svg -o graph.svg", appName, inputName(f)))
	}
	return nil
}

func inputName(f transformFlags) string {
	if f.kb != "" {
		return "--kb " + f.kb
	}
	return "<file>"
}
