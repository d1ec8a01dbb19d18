// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the conver CLI.
//
// conver converts office documents by driving the installed office
// application through a platform automation script: JXA on macOS and
// PowerShell on Windows.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/conver/internal/convert"
	"github.com/pdiddy/conver/internal/logging"
	"github.com/pdiddy/conver/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd converts documents; subcommands cover history and version.
var rootCmd = &cobra.Command{
	Use:   "conver [flags] INPUT...",
	Short: "Convert office documents with the installed office application",
	Long: `conver converts documents (docx, doc, rtf, odt, txt, html) to another
format by asking the office application to open and save them. On macOS it
runs a JXA script through osascript; on Windows a PowerShell script.

With one input, the output is --output or the input path with the target
format's extension. With several inputs, --output names a directory and
each document is written there as <name>.<format>.

An input named like a subcommand (history, version) is read as that
subcommand; give it with a directory, e.g. ./history.`,
	Example: `  conver report.docx
  conver --docx notes.rtf -o ~/out/notes.docx
  conver -p *.docx --keep-going --skip-existing
  conver a.docx b.docx -o converted/`,
	Args:          cobra.ArbitraryArgs,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConvert,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.SetVersionTemplate("conver {{.Version}}\n")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return convert.Usagef("%v", err)
	})

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./conver.yaml or ~/.config/conver/conver.yaml)")
	pf.String("log-level", logging.DefaultLevel, "log level: debug, info, warn, or error")
	pf.String("report", string(types.ReportText), "output format: text, json, or yaml")

	_ = viper.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("report", pf.Lookup("report"))

	configure(viper.GetViper())
}

// configure registers every key with a default and enables CONVER_
// environment overrides. Unmarshal only sees keys viper knows about, so
// each key needs a default even when it is empty.
func configure(v *viper.Viper) {
	v.SetDefault("format", string(types.DefaultFormat))
	v.SetDefault("keep_open", false)
	v.SetDefault("timeout", "0s")
	v.SetDefault("log_level", logging.DefaultLevel)
	v.SetDefault("report", string(types.ReportText))
	v.SetDefault("scripts.dir", "")
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "")

	v.SetEnvPrefix("CONVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("conver")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "conver"))
		}
	}

	configErr = viper.ReadInConfig()
}

// configErr holds the result of reading the config file. A missing file is
// fine; a broken one is reported when the configuration is resolved.
var configErr error

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil && !isReported(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}
