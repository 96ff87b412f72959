// Package logflags exposes klog's flags as urfave/cli flags.
package logflags

import (
	"flag"
	"fmt"

	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"
)

// DefaultVerbosity is the klog level used when -v is not given.
const DefaultVerbosity = 1

// NewKlogFlagSet registers klog's flags and returns cli flags that
// forward to them. Each flag can also be set from the environment as
// <envPrefix>_<NAME>.
func NewKlogFlagSet(envPrefix string) []cli.Flag {
	fs := flag.NewFlagSet("klog", flag.PanicOnError)
	klog.InitFlags(fs)

	fs.Set("v", fmt.Sprint(DefaultVerbosity))
	fs.Set("logtostderr", "true")

	env := func(name string) []string {
		return []string{envPrefix + "_" + name}
	}

	return []cli.Flag{
		&cli.IntFlag{
			Name:    "v",
			Usage:   "number for the log level verbosity",
			EnvVars: env("V"),
			Value:   DefaultVerbosity,
			Action: func(cctx *cli.Context, v int) error {
				return fs.Set("v", fmt.Sprint(v))
			},
		},
		&cli.StringFlag{
			Name:    "vmodule",
			Usage:   "comma-separated list of pattern=N settings for file-filtered logging",
			EnvVars: env("VMODULE"),
			Action: func(cctx *cli.Context, v string) error {
				if v != "" {
					return fs.Set("vmodule", v)
				}
				return nil
			},
		},
		&cli.BoolFlag{
			Name:        "logtostderr",
			Usage:       "log to standard error instead of files",
			EnvVars:     env("LOGTOSTDERR"),
			DefaultText: "true",
			Action: func(cctx *cli.Context, v bool) error {
				return fs.Set("logtostderr", fmt.Sprint(v))
			},
		},
		&cli.BoolFlag{
			Name:        "alsologtostderr",
			Usage:       "log to standard error as well as files (no effect when -logtostderr=true)",
			EnvVars:     env("ALSOLOGTOSTDERR"),
			DefaultText: "false",
			Action: func(cctx *cli.Context, v bool) error {
				return fs.Set("alsologtostderr", fmt.Sprint(v))
			},
		},
		&cli.StringFlag{
			Name:    "log_file",
			Usage:   "If non-empty, use this log file (no effect when -logtostderr=true)",
			EnvVars: env("LOG_FILE"),
			Action: func(cctx *cli.Context, v string) error {
				if v != "" {
					return fs.Set("log_file", v)
				}
				return nil
			},
		},
		&cli.BoolFlag{
			Name:    "skip_headers",
			Usage:   "If true, avoid header prefixes in the log messages",
			EnvVars: env("SKIP_HEADERS"),
			Action: func(cctx *cli.Context, v bool) error {
				return fs.Set("skip_headers", fmt.Sprint(v))
			},
		},
	}
}
