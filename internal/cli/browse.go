package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kgview/pkg/debounce"
	"github.com/matzehuels/kgview/pkg/errors"
	"github.com/matzehuels/kgview/pkg/pipeline"
)

func (c *CLI) browseCommand() *cobra.Command {
	var (
		kb      string
		refresh bool
	)
	cmd := &cobra.Command{
		Use:   "browse [file]",
		Short: "Browse the nodes of a knowledge graph interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := pipeline.Options{KnowledgeID: kb, Refresh: refresh}
			if len(args) == 1 {
				opts.File = args[0]
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			svc, err := c.newServices(ctx, false)
			if err != nil {
				return err
			}
			defer svc.close(ctx)

			res, err := c.execute(ctx, svc.runner, opts)
			if err != nil {
				return err
			}
			if res.Graph.Empty() {
				printInfo("The graph has no nodes")
				return nil
			}

			// The program does not exist yet when the model is built, so the
			// debounced callback reaches it through this variable.
			var prog *tea.Program
			filter := debounce.New(func(q string) struct{} {
				if prog != nil {
					prog.Send(filterMsg{query: q})
				}
				return struct{}{}
			}, c.Config.Watch.Debounce.Std(), false)

			model := NewNodeBrowserModel(res.Graph, func(q string) { filter.Call(q) })
			prog = tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

			// bubbletea owns the terminal; keep log lines out of the way.
			c.SetLogLevel(log.WarnLevel)
			final, err := prog.Run()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "browser")
			}
			if m, ok := final.(NodeBrowserModel); ok && m.Selected != nil {
				printNode(m.Selected)
			}
			return nil
		},
	}
	cmd.ValidArgsFunction = completePayloadFile
	cmd.Flags().StringVar(&kb, "kb", "", "fetch the graph of this knowledge base from the backend")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass caches")
	return cmd
}
