package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kgview/pkg/errors"
	"github.com/matzehuels/kgview/pkg/format"
)

func (c *CLI) formatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format",
		Short: "Format values the way the knowledge-base UI displays them",
	}
	cmd.AddCommand(c.formatAmountCommand())
	cmd.AddCommand(c.formatScoreCommand())
	cmd.AddCommand(c.formatTimeCommand())
	cmd.AddCommand(c.formatRangeCommand())
	cmd.AddCommand(c.formatSizeCommand())
	cmd.AddCommand(c.formatMergeCommand())
	return cmd
}

func (c *CLI) formatAmountCommand() *cobra.Command {
	var (
		preserve bool
		units    []string
		split    bool
	)
	cmd := &cobra.Command{
		Use:   "amount <number>",
		Short: "Abbreviate a number with ten-thousand based units",
		Example: `  kgview format amount 123456      # 12.35万
  kgview format amount 99999 --preserve`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			num, err := parseNumber(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("units") {
				units = c.Config.Format.Units
			}
			res := format.Amount(num, format.Units(units), preserve)
			if split {
				return writeJSONOut(cmd.OutOrStdout(), res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&preserve, "preserve", false, "leave values below 100000 unchanged")
	cmd.Flags().StringSliceVar(&units, "units", nil, "unit table, index 0 first (default from config)")
	cmd.Flags().BoolVar(&split, "json", false, "print {value, type} as JSON")
	return cmd
}

func (c *CLI) formatScoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "score <value>",
		Short: "Print a relevance score with five decimals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var v any = args[0]
			if f, err := strconv.ParseFloat(args[0], 64); err == nil {
				v = f
			}
			fmt.Fprintln(cmd.OutOrStdout(), format.Score(v))
			return nil
		},
	}
}

func (c *CLI) formatTimeCommand() *cobra.Command {
	var (
		layout string
		tz     string
	)
	cmd := &cobra.Command{
		Use:     "time <unix-ms>",
		Short:   "Format a millisecond timestamp",
		Example: `  kgview format time 1700000000000 --layout "YYYY/MM/DD HH:mm"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ms, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "timestamp must be integer milliseconds: %q", args[0])
			}
			if layout == "" {
				layout = c.Config.Format.TimestampLayout
			}
			loc, err := c.Config.Location()
			if err != nil {
				return err
			}
			if tz != "" {
				if loc, err = time.LoadLocation(tz); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidInput, err, "timezone %q", tz)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), format.TimestampIn(ms, layout, loc))
			return nil
		},
	}
	cmd.Flags().StringVar(&layout, "layout", "", "layout with YYYY MM DD HH mm ss tokens (default from config)")
	cmd.Flags().StringVar(&tz, "tz", "", "IANA time zone (default from config, then local)")
	_ = cmd.RegisterFlagCompletionFunc("tz", cobra.FixedCompletions(commonZones, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func (c *CLI) formatRangeCommand() *cobra.Command {
	var (
		at int64
		tz string
	)
	cmd := &cobra.Command{
		Use:   "range",
		Short: "Print the default month-to-date statistics range",
		Example: `  kgview format range
  kgview format range --tz Europe/Berlin --at 1700000000000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if cmd.Flags().Changed("at") {
				now = time.UnixMilli(at)
			}
			var loc *time.Location
			if tz != "" {
				var err error
				if loc, err = time.LoadLocation(tz); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidInput, err, "timezone %q", tz)
				}
			}
			start, end := format.MonthToDate(now, loc)
			fmt.Fprintln(cmd.OutOrStdout(), start)
			fmt.Fprintln(cmd.OutOrStdout(), end)
			return nil
		},
	}
	cmd.Flags().Int64Var(&at, "at", 0, "reference instant in unix milliseconds (default now)")
	cmd.Flags().StringVar(&tz, "tz", "", "IANA time zone (default UTC+8)")
	_ = cmd.RegisterFlagCompletionFunc("tz", cobra.FixedCompletions(commonZones, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func (c *CLI) formatSizeCommand() *cobra.Command {
	var decimals int
	cmd := &cobra.Command{
		Use:   "size <bytes>",
		Short: "Scale a byte count into KB, MB, GB...",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseNumber(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("decimals") {
				decimals = c.Config.Format.FileSizeDecimals
			}
			fmt.Fprintln(cmd.OutOrStdout(), format.FileSize(n, decimals))
			return nil
		},
	}
	cmd.Flags().IntVar(&decimals, "decimals", format.DefaultFileSizeDecimals, "fractional digits")
	return cmd
}

func (c *CLI) formatMergeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <target.json> <source.json>...",
		Short: "Deep merge JSON objects, later files winning",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			merged, err := readJSONObject(args[0])
			if err != nil {
				return err
			}
			for _, path := range args[1:] {
				src, err := readJSONObject(path)
				if err != nil {
					return err
				}
				merged = format.DeepMerge(merged, src)
			}
			return writeJSONOut(cmd.OutOrStdout(), merged)
		},
	}
}

func parseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "not a number: %q", s)
	}
	return f, nil
}

func readJSONObject(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPayload, err, "%s is not a JSON object", path)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

func writeJSONOut(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
