package cli

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/molsmarts/internal/infrastructure/chemio/smarts"
	"github.com/turtacn/molsmarts/pkg/client"
	"github.com/turtacn/molsmarts/pkg/errors"
)

// encodeItem is one record bound for the API.
type encodeItem struct {
	name    string
	molfile string
}

func clientOptions(o smarts.Options) client.Options {
	return client.Options{
		IgnoreStereo:            o.IgnoreStereo,
		IgnoreStereoBond:        o.IgnoreStereoBond,
		IgnoreStereoAtom:        o.IgnoreStereoAtom,
		IgnoreExplicitHydrogens: o.IgnoreExplicitHydrogens,
		IgnoreImplicitHydrogens: o.IgnoreImplicitHydrogens,
		StrictRingClosures:      o.StrictRingClosures,
		SkipAromaticity:         o.SkipAromaticity,
	}
}

func remoteBatch(ctx context.Context, c *client.Client, items []*encodeItem, opts smarts.Options) ([]*client.EncodeResult, error) {
	reqs := make([]*client.EncodeRequest, len(items))
	for i, it := range items {
		reqs[i] = &client.EncodeRequest{Molfile: it.molfile, Name: it.name, Options: clientOptions(opts)}
	}
	out, err := c.Encoder().EncodeBatch(ctx, reqs)
	if err != nil {
		return nil, err
	}
	if len(out.Results) != len(items) {
		return nil, errors.Newf(errors.ErrCodeSerialization, "server returned %d results for %d items", len(out.Results), len(items))
	}
	return out.Results, nil
}

// jobView renders a job for every output format.
type jobView struct {
	*client.Job
}

func (v jobView) String() string {
	status := v.Status
	switch v.Status {
	case client.JobSucceeded:
		status = color.GreenString(status)
	case client.JobFailed:
		status = color.RedString(status)
	default:
		status = color.YellowString(status)
	}
	s := v.ID + "\t" + status + "\t" + strconv.Itoa(v.Succeeded) + "/" + strconv.Itoa(v.Total)
	if v.Error != "" {
		s += "\t" + v.Error
	}
	return s
}

func (v jobView) TableHeaders() []string {
	return []string{"ID", "Status", "Total", "Succeeded", "Failed", "Updated"}
}

func (v jobView) TableRows() [][]string {
	return [][]string{{
		v.ID, v.Status, strconv.Itoa(v.Total), strconv.Itoa(v.Succeeded), strconv.Itoa(v.Failed),
		v.UpdatedAt.Format(time.RFC3339),
	}}
}

// NewJobCmd returns the "job" command group.
func NewJobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Submit and inspect SD file jobs on the API server",
	}
	cmd.AddCommand(newJobSubmitCmd(), newJobGetCmd(), newJobResultCmd())
	return cmd
}

func newJobSubmitCmd() *cobra.Command {
	var flags encodeFlags
	var persist, wait bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "submit FILE",
		Short: "Upload an SD file for asynchronous encoding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			c, err := cliCtx.remoteClient()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrapf(err, errors.ErrCodeBadRequest, "cannot read %s", args[0])
			}

			ctx, cancel := cliCtx.withTimeout(cmd.Context())
			defer cancel()
			job, err := c.Jobs().Submit(ctx, data, clientOptions(flags.options()), persist)
			if err != nil {
				return err
			}
			if wait && !job.IsTerminal() {
				if job, err = c.Jobs().Wait(ctx, job.ID, interval); err != nil {
					return err
				}
			}
			return PrintResult(cmd, jobView{job})
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&persist, "persist", false, "store every pattern on the server")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait until the job finishes")
	cmd.Flags().DurationVar(&interval, "poll-interval", 2*time.Second, "status poll interval with --wait")
	return cmd
}

func newJobGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get JOB_ID",
		Short: "Show the status of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			c, err := cliCtx.remoteClient()
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd.Context())
			defer cancel()
			job, err := c.Jobs().Get(ctx, args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, jobView{job})
		},
	}
}

func newJobResultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "result JOB_ID",
		Short: "Print a download URL for a finished job's results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			c, err := cliCtx.remoteClient()
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd.Context())
			defer cancel()
			u, err := c.Jobs().ResultURL(ctx, args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, u)
		},
	}
}

// patternPage renders a pattern list.
type patternPage struct {
	*client.PatternList
}

func (p patternPage) String() string {
	var s string
	for i, pt := range p.Patterns {
		if i > 0 {
			s += "\n"
		}
		s += pt.ID + "\t" + pt.SMARTS
		if pt.Name != "" {
			s += "\t" + pt.Name
		}
	}
	return s
}

func (p patternPage) TableHeaders() []string {
	return []string{"ID", "Name", "SMARTS", "Atoms", "Created"}
}

func (p patternPage) TableRows() [][]string {
	rows := make([][]string, 0, len(p.Patterns))
	for _, pt := range p.Patterns {
		rows = append(rows, []string{
			pt.ID, truncate(pt.Name, 24), truncate(pt.SMARTS, 60), strconv.Itoa(pt.AtomCount),
			pt.CreatedAt.Format(time.RFC3339),
		})
	}
	return rows
}

// NewPatternCmd returns the "pattern" command group.
func NewPatternCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pattern",
		Short: "Read stored patterns from the API server",
	}

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored patterns, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			c, err := cliCtx.remoteClient()
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd.Context())
			defer cancel()
			page, err := c.Patterns().List(ctx, limit, offset)
			if err != nil {
				return err
			}
			return PrintResult(cmd, patternPage{page})
		},
	}
	list.Flags().IntVar(&limit, "limit", client.DefaultPageSize, "page size (1-500)")
	list.Flags().IntVar(&offset, "offset", 0, "number of patterns to skip")

	get := &cobra.Command{
		Use:   "get PATTERN_ID",
		Short: "Show one stored pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			c, err := cliCtx.remoteClient()
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd.Context())
			defer cancel()
			p, err := c.Patterns().Get(ctx, args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, patternPage{&client.PatternList{Patterns: []*client.Pattern{p}, Total: 1}})
		},
	}

	var opts client.SearchOptions
	search := &cobra.Command{
		Use:   "search [QUERY]",
		Short: "Search stored patterns by name or SMARTS fragment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			c, err := cliCtx.remoteClient()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				opts.Query = args[0]
			}
			ctx, cancel := cliCtx.withTimeout(cmd.Context())
			defer cancel()
			page, err := c.Patterns().Search(ctx, opts)
			if err != nil {
				return err
			}
			return PrintResult(cmd, patternPage{page})
		},
	}
	search.Flags().IntVar(&opts.MinAtoms, "min-atoms", 0, "only patterns with at least this many atoms")
	search.Flags().IntVar(&opts.MaxAtoms, "max-atoms", 0, "only patterns with at most this many atoms")
	search.Flags().IntVar(&opts.Limit, "limit", client.DefaultPageSize, "page size (1-500)")
	search.Flags().IntVar(&opts.Offset, "offset", 0, "number of hits to skip")

	cmd.AddCommand(list, get, search)
	return cmd
}

//Personal.AI order the ending
