package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/srcsetlab/pkg/errors"
	"github.com/matzehuels/srcsetlab/pkg/imgparams"
	"github.com/matzehuels/srcsetlab/pkg/srcset"
)

// Output formats for generate.
const (
	outputMarkup = "markup"
	outputSrc    = "src"
	outputSrcset = "srcset"
	outputJSON   = "json"
)

var outputFormats = []string{outputMarkup, outputSrc, outputSrcset, outputJSON}

// generateOptions holds the flags of the generate command.
type generateOptions struct {
	source  string
	output  string
	refresh bool
	noCache bool
	params  imgparams.Params
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	opts := generateOptions{params: imgparams.Defaults("")}

	cmd := &cobra.Command{
		Use:   "generate [image-url]",
		Short: "Print src, srcset and <img> markup for an image",
		Long: `Generate responsive image markup for an image URL.

Pass the image URL directly, or an Unsplash photo page with --source to
resolve it first. Parameters default to the [defaults] section of the
config file; flags override them.`,
		Example: `  srcsetlab generate https://images.unsplash.com/photo-1506744038136-46273834b3fb
  srcsetlab generate --source https://unsplash.com/photos/-mUBrTfsu0A --breakpoints 3 --retina=false
  srcsetlab generate --source https://unsplash.com/photos/-mUBrTfsu0A --focal-point --fp-x 0.3 -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.source, "source", "", "Unsplash photo page to resolve first")
	f.StringVarP(&opts.output, "output", "o", outputMarkup, "output format: "+strings.Join(outputFormats, ", "))
	f.BoolVar(&opts.refresh, "refresh", false, "bypass cached lookups")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the lookup cache")
	f.IntVar(&opts.params.NumBreakpoints, "breakpoints", imgparams.DefaultNumBreakpoints, "number of width steps")
	f.IntVar(&opts.params.MinWidth, "min-width", imgparams.DefaultMinWidth, "smallest width in pixels")
	f.IntVar(&opts.params.MaxWidth, "max-width", imgparams.DefaultMaxWidth, "largest width in pixels")
	f.IntVar(&opts.params.MaxHeight, "max-height", imgparams.DefaultMaxHeight, "display height hint in pixels")
	f.BoolVar(&opts.params.Retina, "retina", true, "add dpr=2 candidates")
	f.BoolVar(&opts.params.Debug, "debug", true, "stamp widths onto the images")
	f.BoolVar(&opts.params.EnableFocalPoint, "focal-point", false, "crop around a focal point")
	f.Float64Var(&opts.params.FocalPointX, "fp-x", imgparams.DefaultFocalPointX, "focal point x in [0, 1]")
	f.Float64Var(&opts.params.FocalPointY, "fp-y", imgparams.DefaultFocalPointY, "focal point y in [0, 1]")
	f.Float64Var(&opts.params.FocalPointZ, "fp-z", imgparams.DefaultFocalPointZ, "focal point zoom")

	cmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(outputFormats, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, args []string, opts generateOptions) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.config()
	if err != nil {
		return err
	}
	p := mergeFlagParams(cmd, cfg.Defaults, opts.params)

	var imageURL string
	switch {
	case len(args) == 1 && opts.source != "":
		return apperrors.New(apperrors.ErrCodeInvalidInput, "pass either an image URL or --source, not both")
	case len(args) == 1:
		imageURL = args[0]
	case opts.source != "":
		resolver, backend, err := c.newResolver(ctx, opts.noCache, opts.refresh)
		if err != nil {
			return err
		}
		defer backend.Close()

		prog := newProgress(logger, "Resolving photo", "source", opts.source, "mode", resolver.Mode())
		imageURL, err = resolver.ResolveImageURL(ctx, opts.source)
		if err != nil {
			return err
		}
		prog.done("Resolved photo", "image", imageURL)
	default:
		return apperrors.New(apperrors.ErrCodeInvalidInput, "an image URL or --source is required")
	}

	if err := apperrors.ValidateURL(imageURL); err != nil {
		return err
	}
	p = p.WithBaseURL(imageURL)
	if err := apperrors.ValidateParams(p); err != nil {
		return err
	}

	return writeResult(cmd.OutOrStdout(), opts.output, srcset.Build(p))
}

// mergeFlagParams starts from the configured defaults and applies only the
// flags the user set explicitly.
func mergeFlagParams(cmd *cobra.Command, defaults, flags imgparams.Params) imgparams.Params {
	p := defaults
	set := cmd.Flags().Changed
	if set("breakpoints") {
		p.NumBreakpoints = flags.NumBreakpoints
	}
	if set("min-width") {
		p.MinWidth = flags.MinWidth
	}
	if set("max-width") {
		p.MaxWidth = flags.MaxWidth
	}
	if set("max-height") {
		p.MaxHeight = flags.MaxHeight
	}
	if set("retina") {
		p.Retina = flags.Retina
	}
	if set("debug") {
		p.Debug = flags.Debug
	}
	if set("focal-point") {
		p.EnableFocalPoint = flags.EnableFocalPoint
	}
	coords := false
	if set("fp-x") {
		p.FocalPointX, coords = flags.FocalPointX, true
	}
	if set("fp-y") {
		p.FocalPointY, coords = flags.FocalPointY, true
	}
	if set("fp-z") {
		p.FocalPointZ, coords = flags.FocalPointZ, true
	}
	// A coordinate without --focal-point turns cropping on.
	if coords && !set("focal-point") {
		p.EnableFocalPoint = true
	}
	return p
}

func writeResult(w io.Writer, format string, res srcset.Result) error {
	switch format {
	case outputMarkup:
		_, err := fmt.Fprintln(w, res.Markup)
		return err
	case outputSrc:
		_, err := fmt.Fprintln(w, res.Src)
		return err
	case outputSrcset:
		_, err := fmt.Fprintln(w, res.SrcSet)
		return err
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(res)
	default:
		return apperrors.New(apperrors.ErrCodeInvalidInput, "unknown output format %q (want %s)", format, strings.Join(outputFormats, ", "))
	}
}
