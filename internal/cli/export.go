package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"kanby/internal/publish"
	"kanby/internal/store"
)

const defaultRenderWidth = 80

func newExportCmd(app *App) *cobra.Command {
	var (
		project   string
		all       bool
		render    bool
		style     string
		out       string
		overwrite bool
		withIDs   bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a project as Markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(func(sess *store.Session) error {
				opt := publish.RenderOptions{IncludeIDs: withIDs}
				var md string
				var err error
				if all {
					md, err = publish.RenderBoardMarkdown(sess.Board(), opt)
				} else {
					md, err = publish.RenderProjectMarkdown(sess.Board(), project, opt)
				}
				if err != nil {
					return err
				}
				if out != "" {
					return publish.WriteFile(out, md, overwrite)
				}
				if render {
					if style == "" && !app.cfg.UI.Color {
						style = "notty"
					}
					md, err = publish.Render(md, terminalWidth(cmd.OutOrStdout()), style)
					if err != nil {
						return err
					}
				}
				_, err = io.WriteString(cmd.OutOrStdout(), md)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "Project to export (default: current)")
	cmd.Flags().BoolVar(&all, "all", false, "Export every project")
	cmd.Flags().BoolVar(&render, "render", false, "Render the Markdown for the terminal")
	cmd.Flags().StringVar(&style, "style", "", "Render style: dark, light or notty (default: dark)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing --out file")
	cmd.Flags().BoolVar(&withIDs, "ids", false, "Include task ids")
	cmd.MarkFlagsMutuallyExclusive("project", "all")
	return cmd
}

// terminalWidth is the width of w when it is a terminal.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(f.Fd()); err == nil && width > 0 {
			return width
		}
	}
	return defaultRenderWidth
}
