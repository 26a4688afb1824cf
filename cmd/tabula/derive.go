package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/dataset"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/transform"
	"github.com/ajitpratap0/tabula/pkg/vector"
)

// deriveArgs holds the operands of one derive call.
type deriveArgs struct {
	column   string
	with     string
	constant string
	lambda   float64
	window   int
	offset   time.Duration
}

type (
	binaryFunc   func(l, r *vector.Vector) (*vector.Vector, error)
	constantFunc func(v *vector.Vector, c decimal.Decimal) (*vector.Vector, error)
	unaryFunc    func(v *vector.Vector, a deriveArgs) (*vector.Vector, error)
)

var (
	binaryOps = map[string]binaryFunc{
		"add":  transform.Add,
		"sub":  transform.Subtract,
		"mul":  transform.Multiply,
		"div":  transform.Divide,
		"and":  transform.And,
		"or":   transform.Or,
		"days": transform.DaysBetween,
	}
	constantOps = map[string]constantFunc{
		"add": transform.AddConst,
		"sub": transform.SubtractConst,
		"mul": transform.MultiplyConst,
		"div": transform.DivideConst,
	}
	unaryOps = map[string]unaryFunc{
		"not":         plain(transform.Not),
		"normalize":   plain(transform.Normalize),
		"standardize": plain(transform.Standardize),
		"boxcox": func(v *vector.Vector, a deriveArgs) (*vector.Vector, error) {
			return transform.BoxCox(v, a.lambda)
		},
		"rollmean": func(v *vector.Vector, a deriveArgs) (*vector.Vector, error) {
			return transform.RollingMean(v, a.window)
		},
		"rollsum": func(v *vector.Vector, a deriveArgs) (*vector.Vector, error) {
			return transform.RollingSum(v, a.window)
		},
		"shift": func(v *vector.Vector, a deriveArgs) (*vector.Vector, error) {
			return transform.ShiftDateTime(v, a.offset)
		},
	}
)

func plain(fn func(*vector.Vector) (*vector.Vector, error)) unaryFunc {
	return func(v *vector.Vector, _ deriveArgs) (*vector.Vector, error) { return fn(v) }
}

func operations() []string {
	seen := map[string]bool{}
	for op := range binaryOps {
		seen[op] = true
	}
	for op := range unaryOps {
		seen[op] = true
	}
	out := make([]string, 0, len(seen))
	for op := range seen {
		out = append(out, op)
	}
	sort.Strings(out)
	return out
}

// derive applies op to the named columns of ds and returns the new column.
func derive(ds *dataset.DataSet, op string, a deriveArgs) (*vector.Vector, error) {
	col, err := ds.Column(a.column)
	if err != nil {
		return nil, err
	}

	if fn, ok := unaryOps[op]; ok {
		return fn(col, a)
	}
	if a.constant != "" {
		fn, ok := constantOps[op]
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeValidation, "operation %q does not take a constant", op)
		}
		c, err := decimal.NewFromString(a.constant)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid constant").
				WithDetail("constant", a.constant)
		}
		return fn(col, c)
	}
	fn, ok := binaryOps[op]
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeValidation, "unknown operation %q", op)
	}
	if a.with == "" {
		return nil, errors.Newf(errors.ErrorTypeValidation, "operation %q needs --with or --constant", op)
	}
	other, err := ds.Column(a.with)
	if err != nil {
		return nil, err
	}
	return fn(col, other)
}

func newDeriveCmd(a *app) *cobra.Command {
	var in, out, op, from, to string
	var args deriveArgs

	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Append a derived column and save the result",
		Long: fmt.Sprintf(`Derive loads --in, computes a new column from --column (and --with or
--constant for binary operations), appends it and saves to --out.

Operations: %v

Example:
  tabula derive --in demo.parquet --out scored.parquet --op rollmean --column Value --window 7`, operations()),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := a.load(in, from)
			if err != nil {
				return err
			}
			defer ds.Release()

			col, err := derive(ds, op, args)
			if err != nil {
				return err
			}
			if err := ds.AddColumn(col); err != nil {
				return err
			}
			if err := a.save(ds, out, to); err != nil {
				return err
			}
			a.log.Info("derived column", zap.String("operation", op), zap.String("column", col.Name()),
				zap.Int("nulls", col.NullCount()))
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) nulls=%d -> %s\n", col.Name(), col.Variable().Kind(), col.NullCount(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "Input file (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (required)")
	cmd.Flags().StringVar(&from, "from", "", "Input format name")
	cmd.Flags().StringVar(&to, "to", "", "Output format name")
	cmd.Flags().StringVar(&op, "op", "", "Operation (required)")
	cmd.Flags().StringVar(&args.column, "column", "", "Operand column (required)")
	cmd.Flags().StringVar(&args.with, "with", "", "Second operand column for binary operations")
	cmd.Flags().StringVar(&args.constant, "constant", "", "Decimal constant for add, sub, mul and div")
	cmd.Flags().Float64Var(&args.lambda, "lambda", 0, "Box-Cox lambda")
	cmd.Flags().IntVar(&args.window, "window", 3, "Rolling window size")
	cmd.Flags().DurationVar(&args.offset, "offset", 0, "Shift offset (e.g. 90m, -24h)")
	for _, name := range []string{"in", "out", "op", "column"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
