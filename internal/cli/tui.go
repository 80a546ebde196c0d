package cli

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/srcsetlab/pkg/errors"
	"github.com/matzehuels/srcsetlab/pkg/imgparams"
	"github.com/matzehuels/srcsetlab/pkg/sandbox"
	"github.com/matzehuels/srcsetlab/pkg/srcset"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// tuiCommand creates the interactive sandbox command.
func (c *CLI) tuiCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "tui [page-url]",
		Short: "Tune srcset parameters interactively",
		Long: `Open the sandbox in the terminal.

Keys: ↑/↓ select a control, ←/→ adjust it, space toggles, / edits the photo
page, r resolves it again, q quits. The final markup is printed on exit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			resolver, backend, err := c.newResolver(ctx, noCache, false)
			if err != nil {
				return err
			}
			defer backend.Close()

			source := imgparams.DefaultSourceURL
			if len(args) == 1 {
				source = args[0]
			}

			sb := sandbox.New(resolver, c.Logger)
			sb.SetParams(cfg.Defaults)
			m := newSandboxModel(ctx, sb, source)

			final, err := tea.NewProgram(m,
				tea.WithContext(ctx),
				tea.WithAltScreen(),
				tea.WithOutput(cmd.ErrOrStderr()),
			).Run()
			if err != nil {
				return err
			}
			if fm, ok := final.(sandboxModel); ok {
				if res, ok := fm.result(); ok {
					fmt.Fprintln(cmd.OutOrStdout(), res.Markup)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the lookup cache")
	return cmd
}

// =============================================================================
// Controls
// =============================================================================

// control is one adjustable row of the parameter table.
type control struct {
	label  string
	value  func(imgparams.Params) string
	adjust func(p imgparams.Params, dir int) imgparams.Params
	toggle func(p imgparams.Params) imgparams.Params
}

func intControl(label string, get func(*imgparams.Params) *int, r imgparams.Range) control {
	return control{
		label: label,
		value: func(p imgparams.Params) string { return strconv.Itoa(*get(&p)) },
		adjust: func(p imgparams.Params, dir int) imgparams.Params {
			v := get(&p)
			*v = int(r.Clamp(float64(*v) + float64(dir)*r.Step))
			return p
		},
	}
}

func floatControl(label string, get func(*imgparams.Params) *float64, r imgparams.Range) control {
	return control{
		label: label,
		value: func(p imgparams.Params) string { return strconv.FormatFloat(*get(&p), 'f', 2, 64) },
		adjust: func(p imgparams.Params, dir int) imgparams.Params {
			v := get(&p)
			*v = math.Round(r.Clamp(*v+float64(dir)*r.Step)*1000) / 1000
			return p
		},
	}
}

func boolControl(label string, get func(*imgparams.Params) *bool) control {
	flip := func(p imgparams.Params) imgparams.Params {
		v := get(&p)
		*v = !*v
		return p
	}
	return control{
		label: label,
		value: func(p imgparams.Params) string {
			if *get(&p) {
				return "on"
			}
			return "off"
		},
		adjust: func(p imgparams.Params, _ int) imgparams.Params { return flip(p) },
		toggle: flip,
	}
}

// Keyboard steps. Widths move in 10px steps and focal coordinates in
// hundredths; the browser sliders use the finer ranges in imgparams.
var (
	widthKeys = imgparams.Range{Min: 1, Max: 10000, Step: 10}
	focalKeys = imgparams.Range{Min: imgparams.FocalPointRange.Min, Max: imgparams.FocalPointRange.Max, Step: 0.01}
)

var sandboxControls = []control{
	intControl("Breakpoints", func(p *imgparams.Params) *int { return &p.NumBreakpoints }, imgparams.BreakpointsRange),
	intControl("Min width", func(p *imgparams.Params) *int { return &p.MinWidth }, widthKeys),
	intControl("Max width", func(p *imgparams.Params) *int { return &p.MaxWidth }, widthKeys),
	intControl("Max height", func(p *imgparams.Params) *int { return &p.MaxHeight }, widthKeys),
	boolControl("Retina", func(p *imgparams.Params) *bool { return &p.Retina }),
	boolControl("Debug text", func(p *imgparams.Params) *bool { return &p.Debug }),
	boolControl("Focal point", func(p *imgparams.Params) *bool { return &p.EnableFocalPoint }),
	floatControl("Focal X", func(p *imgparams.Params) *float64 { return &p.FocalPointX }, focalKeys),
	floatControl("Focal Y", func(p *imgparams.Params) *float64 { return &p.FocalPointY }, focalKeys),
	floatControl("Zoom", func(p *imgparams.Params) *float64 { return &p.FocalPointZ }, imgparams.ZoomRange),
}

// =============================================================================
// sandboxModel - Interactive srcset sandbox
// =============================================================================

// resolvedMsg carries a finished lookup back to Update.
type resolvedMsg struct {
	ticket   sandbox.Ticket
	imageURL string
	err      error
}

type sandboxModel struct {
	ctx     context.Context
	sb      *sandbox.Sandbox
	source  string
	cursor  int
	loading bool
	status  string // last lookup error

	editing bool
	input   string
}

func newSandboxModel(ctx context.Context, sb *sandbox.Sandbox, source string) sandboxModel {
	return sandboxModel{ctx: ctx, sb: sb, source: source}
}

func (m sandboxModel) Init() tea.Cmd {
	return m.lookup(m.source)
}

// lookup starts resolving source. The ticket is taken now so that any
// lookup started later supersedes this one.
func (m sandboxModel) lookup(source string) tea.Cmd {
	if source == "" {
		return nil
	}
	ticket := m.sb.Begin(source)
	return func() tea.Msg {
		imageURL, err := m.sb.Resolve(m.ctx, ticket)
		return resolvedMsg{ticket: ticket, imageURL: imageURL, err: err}
	}
}

func (m sandboxModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resolvedMsg:
		m.sb.Complete(msg.ticket, msg.imageURL, msg.err)
		if msg.ticket.Generation != m.sb.Generation() {
			return m, nil
		}
		m.loading = false
		m.status = ""
		if msg.err != nil {
			m.status = apperrors.UserMessage(msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateInput(msg)
		}
		return m.updateControls(msg)
	}
	return m, nil
}

func (m sandboxModel) updateControls(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctl := sandboxControls[m.cursor]
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(sandboxControls)-1 {
			m.cursor++
		}
	case "left", "h":
		m.sb.SetParams(ctl.adjust(m.sb.Params(), -1))
	case "right", "l":
		m.sb.SetParams(ctl.adjust(m.sb.Params(), +1))
	case " ", "space", "enter":
		if ctl.toggle != nil {
			m.sb.SetParams(ctl.toggle(m.sb.Params()))
		}
	case "/", "e":
		m.editing = true
		m.input = m.source
	case "r":
		return m.submit(m.source)
	}
	return m, nil
}

func (m sandboxModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.editing = false
	case tea.KeyEnter:
		m.editing = false
		return m.submit(strings.TrimSpace(m.input))
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyCtrlU:
		m.input = ""
	case tea.KeyRunes, tea.KeySpace:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m sandboxModel) submit(source string) (tea.Model, tea.Cmd) {
	if source == "" {
		return m, nil
	}
	m.source = source
	m.loading = true
	m.status = ""
	return m, m.lookup(source)
}

// result builds the srcset for the current image, if any.
func (m sandboxModel) result() (srcset.Result, bool) {
	p := m.sb.Params()
	if p.BaseURL == "" || apperrors.ValidateParams(p) != nil {
		return srcset.Result{}, false
	}
	return srcset.Build(p), true
}

func (m sandboxModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("srcset sandbox"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  ←/→ adjust  space toggle  / edit page  r resolve  q quit"))
	b.WriteString("\n\n")

	if m.editing {
		b.WriteString(listSelectedStyle.Render("Page  ") + m.input + "█\n")
	} else {
		b.WriteString(listDimStyle.Render("Page  ") + StyleLink.Render(m.source) + "\n")
	}

	p := m.sb.Params()
	switch {
	case m.loading:
		b.WriteString(listDimStyle.Render("Image resolving…") + "\n")
	case p.BaseURL == "":
		b.WriteString(listDimStyle.Render("Image none yet") + "\n")
	default:
		b.WriteString(listDimStyle.Render("Image ") + listNormalStyle.Render(p.BaseURL) + "\n")
	}
	if m.status != "" {
		b.WriteString(listErrorStyle.Render(iconError+" "+m.status) + "\n")
	}
	b.WriteString("\n")

	rows := make([][]string, len(sandboxControls))
	for i, ctl := range sandboxControls {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows[i] = []string{cursor, ctl.label, ctl.value(p)}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == m.cursor:
				return listSelectedStyle
			case col == 2:
				return StyleNumber
			default:
				return listNormalStyle
			}
		})
	b.WriteString(t.Render())
	b.WriteString("\n\n")

	if res, ok := m.result(); ok {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("%d widths, %d candidates", len(res.Widths), len(res.Candidates))))
		b.WriteString("\n")
		b.WriteString(res.Markup)
		b.WriteString("\n")
	} else if err := apperrors.ValidateParams(p); err != nil {
		b.WriteString(StyleWarning.Render(apperrors.UserMessage(err)))
		b.WriteString("\n")
	}

	return b.String()
}
