package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/molsmarts/internal/application/encoding"
	"github.com/turtacn/molsmarts/internal/infrastructure/chemio/molfile"
	"github.com/turtacn/molsmarts/internal/infrastructure/chemio/smarts"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsmarts/pkg/errors"
	"github.com/turtacn/molsmarts/pkg/types/common"
)

// encodeFlags are the encoder flags shared by encode and job submit.
type encodeFlags struct {
	ignoreStereo            bool
	ignoreStereoBond        bool
	ignoreStereoAtom        bool
	ignoreExplicitHydrogens bool
	ignoreImplicitHydrogens bool
	strictRingClosures      bool
	skipAromaticity         bool
}

func (f *encodeFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&f.ignoreStereo, "ignore-stereo", false, "write no stereo at all")
	fs.BoolVar(&f.ignoreStereoBond, "ignore-stereo-bond", false, "write no double bond stereo")
	fs.BoolVar(&f.ignoreStereoAtom, "ignore-stereo-atom", false, "write no tetrahedral chirality")
	fs.BoolVar(&f.ignoreExplicitHydrogens, "ignore-explicit-h", false, "drop explicit hydrogen atoms")
	fs.BoolVar(&f.ignoreImplicitHydrogens, "ignore-implicit-h", false, "write no H counts")
	fs.BoolVar(&f.strictRingClosures, "strict-rings", false, "fail when more than 99 ring closures are open")
	fs.BoolVar(&f.skipAromaticity, "skip-aromaticity", false, "skip aromaticity perception")
}

func (f *encodeFlags) options() smarts.Options {
	return smarts.Options{
		IgnoreStereo:            f.ignoreStereo,
		IgnoreStereoBond:        f.ignoreStereoBond,
		IgnoreStereoAtom:        f.ignoreStereoAtom,
		IgnoreExplicitHydrogens: f.ignoreExplicitHydrogens,
		IgnoreImplicitHydrogens: f.ignoreImplicitHydrogens,
		StrictRingClosures:      f.strictRingClosures,
		SkipAromaticity:         f.skipAromaticity,
	}
}

// EncodedRecord is one line of encode output.
type EncodedRecord struct {
	File   string              `json:"file"`
	Index  int                 `json:"index"`
	Name   string              `json:"name,omitempty"`
	SMARTS string              `json:"smarts,omitempty"`
	Atoms  int                 `json:"atoms"`
	Bonds  int                 `json:"bonds"`
	Error  *common.ErrorDetail `json:"error,omitempty"`
}

// EncodeReport is the output of the encode command.
type EncodeReport struct {
	Records   []EncodedRecord `json:"records"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
}

// String renders one "SMARTS<TAB>name" line per record.  Failed records are
// written as comments so the output stays a valid pattern list.
func (r *EncodeReport) String() string {
	var buf bytes.Buffer
	for i, rec := range r.Records {
		if i > 0 {
			buf.WriteByte('\n')
		}
		if rec.Error != nil {
			buf.WriteString(color.RedString("# %s[%d] %s: %s", rec.File, rec.Index, rec.Error.Code, rec.Error.Message))
			continue
		}
		buf.WriteString(rec.SMARTS)
		if rec.Name != "" {
			buf.WriteString("\t" + rec.Name)
		}
	}
	return buf.String()
}

func (r *EncodeReport) TableHeaders() []string {
	return []string{"File", "#", "Name", "SMARTS", "Atoms", "Bonds", "Error"}
}

func (r *EncodeReport) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Records))
	for _, rec := range r.Records {
		errText := ""
		if rec.Error != nil {
			errText = rec.Error.Code
		}
		rows = append(rows, []string{
			rec.File,
			strconv.Itoa(rec.Index),
			truncate(rec.Name, 24),
			truncate(rec.SMARTS, 60),
			strconv.Itoa(rec.Atoms),
			strconv.Itoa(rec.Bonds),
			errText,
		})
	}
	return rows
}

func (r *EncodeReport) add(rec EncodedRecord) {
	if rec.Error != nil {
		r.Failed++
	} else {
		r.Succeeded++
	}
	r.Records = append(r.Records, rec)
}

// NewEncodeCmd returns "encode [FILE...]".  Each file is a molfile or an SD
// file; "-" or no argument reads stdin.
func NewEncodeCmd() *cobra.Command {
	var flags encodeFlags
	var remote bool

	cmd := &cobra.Command{
		Use:   "encode [FILE...]",
		Short: "Write the SMARTS of molfiles and SD files",
		Long: "Reads V2000 molfiles or SD files and writes one SMARTS per structure.\n" +
			"A record that fails is reported and the rest are still encoded.",
		Example: "  molsmarts encode ligand.mol\n  molsmarts encode -o table library.sdf\n  cat a.sdf | molsmarts encode --ignore-stereo",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd.Context())
			defer cancel()

			if len(args) == 0 {
				args = []string{"-"}
			}
			report := &EncodeReport{}
			for _, path := range args {
				data, err := readInput(cmd, path)
				if err != nil {
					return err
				}
				if remote {
					err = encodeRemote(ctx, cliCtx, path, data, flags.options(), report)
				} else {
					err = encodeLocal(ctx, cliCtx, path, data, flags.options(), report)
				}
				if err != nil {
					return err
				}
			}

			if err := PrintResult(cmd, report); err != nil {
				return err
			}
			if report.Failed > 0 {
				return errors.Newf(errors.ErrCodeEncodeFailed, "%d of %d records failed", report.Failed, len(report.Records))
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&remote, "remote", false, "encode on the API server instead of locally")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeBadRequest, "cannot read %s", path)
	}
	return data, nil
}

func errorDetail(err error) *common.ErrorDetail {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeEncodeFailed
	}
	msg := err.Error()
	var ae *errors.AppError
	if stderrors.As(err, &ae) {
		msg = ae.Message
	}
	return &common.ErrorDetail{Code: code.String(), Message: msg}
}

// encodeLocal splits data into records and encodes each in process.
func encodeLocal(ctx context.Context, cliCtx *CLIContext, path string, data []byte, opts smarts.Options, report *EncodeReport) error {
	return molfile.ScanSDF(bytes.NewReader(data), func(index int, rec *molfile.Record, perr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		out := EncodedRecord{File: path, Index: index}
		if perr != nil {
			out.Error = errorDetail(perr)
			report.add(out)
			return nil
		}
		out.Name = rec.Structure.Name
		res, err := cliCtx.Encoder.Encode(ctx, &encoding.EncodeRequest{Structure: rec.Structure, Options: opts, Name: out.Name})
		if err != nil {
			cliCtx.Logger.Debug("record failed", logging.String("file", path), logging.Int("index", index), logging.Err(err))
			out.Error = errorDetail(err)
		} else {
			out.SMARTS = res.SMARTS
			out.Atoms = res.AtomCount
			out.Bonds = res.BondCount
		}
		report.add(out)
		return nil
	})
}

// encodeRemote sends every record to the API server as one batch.
func encodeRemote(ctx context.Context, cliCtx *CLIContext, path string, data []byte, opts smarts.Options, report *EncodeReport) error {
	c, err := cliCtx.remoteClient()
	if err != nil {
		return err
	}
	records, err := molfile.ReadSDFRecords(bytes.NewReader(data))
	if err != nil {
		return err
	}
	items := make([]*encodeItem, 0, len(records))
	for _, rec := range records {
		items = append(items, &encodeItem{name: rec.Structure.Name, molfile: rec.Molfile})
	}
	if len(items) == 0 {
		return nil
	}
	results, err := remoteBatch(ctx, c, items, opts)
	if err != nil {
		return err
	}
	for i, res := range results {
		out := EncodedRecord{File: path, Index: i, Name: items[i].name}
		if res.Error != nil {
			out.Error = &common.ErrorDetail{Code: res.Error.Code, Message: res.Error.Message}
		} else {
			out.SMARTS = res.SMARTS
			out.Atoms = res.AtomCount
			out.Bonds = res.BondCount
		}
		report.add(out)
	}
	return nil
}

//Personal.AI order the ending
