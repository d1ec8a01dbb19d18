// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/conver/internal/bridge"
	"github.com/pdiddy/conver/internal/convert"
	"github.com/pdiddy/conver/internal/scripts"
	"github.com/pdiddy/conver/pkg/types"
)

// platformOverride replaces the detected operating system when set. Tests
// pin it to exercise the unsupported-platform path.
var platformOverride string

// formatFlags maps each format flag to its target format.
var formatFlags = []struct {
	name      string
	shorthand string
	format    types.Format
}{
	{"pdf", "p", types.FormatPDF},
	{"docx", "d", types.FormatDOCX},
	{"doc", "", types.FormatDOC},
	{"rtf", "r", types.FormatRTF},
	{"odt", "", types.FormatODT},
	{"txt", "t", types.FormatTXT},
	{"html", "", types.FormatHTML},
}

func init() {
	f := rootCmd.Flags()
	f.StringP("output", "o", "", "output file, or output directory for several inputs")
	for _, ff := range formatFlags {
		f.BoolP(ff.name, ff.shorthand, false, fmt.Sprintf("convert to %s", ff.format))
	}
	f.BoolP("keep-open", "k", false, "leave the office application open after converting")
	f.Bool("keep-going", false, "continue with the remaining inputs after a failure")
	f.Bool("skip-existing", false, "skip inputs whose output exists and is up to date")
	f.Duration("timeout", 0, "limit for each conversion, e.g. 2m (0 = no limit)")
	f.Bool("no-history", false, "do not record conversions in the history ledger")
	f.BoolP("version", "V", false, "print the version and exit")

	_ = viper.BindPFlag("keep_open", f.Lookup("keep-open"))
	_ = viper.BindPFlag("timeout", f.Lookup("timeout"))
}

// targetFormat returns the format picked by a format flag, or "" when none
// is set. Setting more than one is a usage error.
func targetFormat(cmd *cobra.Command) (types.Format, error) {
	var target types.Format
	for _, ff := range formatFlags {
		set, err := cmd.Flags().GetBool(ff.name)
		if err != nil {
			return "", err
		}
		if !set {
			continue
		}
		if target != "" {
			return "", convert.Usagef("only one format flag may be given (--%s and --%s)", target, ff.name)
		}
		target = ff.format
	}
	return target, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	target, err := targetFormat(cmd)
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")
	keepGoing, _ := cmd.Flags().GetBool("keep-going")
	skipExisting, _ := cmd.Flags().GetBool("skip-existing")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	jobs, err := convert.Plan(convert.PlanOptions{
		Inputs:        args,
		Output:        output,
		Target:        target,
		DefaultTarget: a.cfg.Format,
	})
	if err != nil {
		return err
	}

	if a.cfg.History.Enabled && !noHistory {
		if a.store, err = openStore(a.cfg.History); err != nil {
			// Conversions still run without a ledger.
			a.log.Warn("history unavailable", zap.Error(err))
		}
	}

	b := bridge.New(bridge.Config{
		Platform: platformOverride,
		Scripts:  scripts.NewSource(a.cfg.Scripts.Dir),
		Timeout:  a.cfg.Timeout,
		Logger:   a.log,
	})
	convCfg := convert.Config{Logger: a.log}
	if a.store != nil {
		convCfg.Recorder = a.store
	}
	conv := convert.New(b, convCfg)

	a.log.Debug("starting batch",
		zap.String("platform", b.Platform()),
		zap.Int("jobs", len(jobs)),
		zap.Bool("keep_open", a.cfg.KeepOpen),
	)

	var renderErr error
	result, err := conv.Batch(cmd.Context(), jobs, convert.BatchOptions{
		KeepOpen:     a.cfg.KeepOpen,
		KeepGoing:    keepGoing,
		SkipExisting: skipExisting,
	}, func(o convert.Outcome) {
		if rerr := a.render.Outcome(o); rerr != nil && renderErr == nil {
			renderErr = rerr
		}
	})

	if len(jobs) > 1 {
		if serr := a.render.Summary(result); serr != nil && renderErr == nil {
			renderErr = serr
		}
	}

	failure := firstFailure(result)
	if err == nil {
		err = failure
	}
	if err != nil {
		// Text output has already printed failed outcomes.
		if a.cfg.Report == types.ReportText && err == failure {
			return reported(err)
		}
		return err
	}
	if renderErr != nil {
		return fmt.Errorf("writing output: %w", renderErr)
	}
	return nil
}

// firstFailure returns the error of the first failed outcome, if any.
func firstFailure(res convert.BatchResult) error {
	for _, o := range res.Outcomes {
		if o.Status == convert.OutcomeFailed {
			return o.Err
		}
	}
	return nil
}
