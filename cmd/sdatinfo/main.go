package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
	"github.com/kisom/goutils/die"
	"github.com/kisom/sdat"
	"github.com/kisom/sdat/internal/logflags"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type summary struct {
	Path      string          `json:"path" yaml:"path"`
	Version   int             `json:"version" yaml:"version"`
	Release   string          `json:"release" yaml:"release"`
	NewBlocks int             `json:"new_blocks" yaml:"new_blocks"`
	Ranges    int             `json:"ranges" yaml:"ranges"`
	Blocks    int64           `json:"blocks" yaml:"blocks"`
	ImageSize int64           `json:"image_size" yaml:"image_size"`
	Skipped   map[string]int  `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Check     string          `json:"check,omitempty" yaml:"check,omitempty"`
	Commands  sdat.CommandSet `json:"commands,omitempty" yaml:"commands,omitempty"`
}

func scanFile(path string, check, ranges bool) (summary, error) {
	tl, err := sdat.LoadTransferList(path)
	if err != nil {
		return summary{}, fmt.Errorf("%s: %w", path, err)
	}

	s := summary{
		Path:      path,
		Version:   tl.Header.Version,
		Release:   sdat.VersionName(tl.Header.Version),
		NewBlocks: tl.Header.NewBlocks,
		Ranges:    len(tl.Commands),
		Blocks:    tl.Commands.Blocks(),
		ImageSize: tl.Commands.ImageSize(),
		Skipped:   tl.Skipped,
	}
	if check {
		s.Check = "ok"
		if err = sdat.Validate(tl); err != nil {
			s.Check = err.Error()
		}
	}
	if ranges {
		s.Commands = tl.Commands
	}
	return s, nil
}

func writeText(w io.Writer, s summary) {
	fmt.Fprintf(w, "%s: version %d, %s\n", s.Path, s.Version, s.Release)
	fmt.Fprintf(w, "\tdeclared new blocks: %s\n", humanize.Comma(int64(s.NewBlocks)))
	fmt.Fprintf(w, "\t%s ranges covering %s blocks\n", humanize.Comma(int64(s.Ranges)), humanize.Comma(s.Blocks))
	fmt.Fprintf(w, "\timage size: %s (%s bytes)\n", humanize.IBytes(uint64(s.ImageSize)), humanize.Comma(s.ImageSize))

	if len(s.Skipped) > 0 {
		cmds := make([]string, 0, len(s.Skipped))
		for cmd, n := range s.Skipped {
			cmds = append(cmds, fmt.Sprintf("%s=%d", cmd, n))
		}
		sort.Strings(cmds)
		fmt.Fprintf(w, "\tskipped: %s\n", strings.Join(cmds, " "))
	}
	if s.Check != "" {
		fmt.Fprintf(w, "\tcheck: %s\n", s.Check)
	}
	for _, r := range s.Commands {
		fmt.Fprintf(w, "\t\t%v\n", r)
	}
}

func report(w io.Writer, format string, summaries []summary) error {
	switch format {
	case "text":
		for _, s := range summaries {
			writeText(w, s)
		}
		return nil
	case "yaml":
		out, err := yaml.Marshal(summaries)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case "json":
		out, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", out)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func newApp() *cli.App {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "output format: text, yaml or json",
			EnvVars: []string{"SDATINFO_FORMAT"},
			Value:   "text",
		},
		&cli.BoolFlag{
			Name:  "check",
			Usage: "also run the strict checks sdat2img --strict would",
		},
		&cli.BoolFlag{
			Name:  "ranges",
			Usage: "list every block range",
		},
	}
	flags = append(flags, logflags.NewKlogFlagSet("SDATINFO")...)

	return &cli.App{
		Name:      "sdatinfo",
		Usage:     "summarise block transfer lists",
		ArgsUsage: "<transfer_list>...",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			var summaries []summary
			var errs []error
			for _, path := range c.Args().Slice() {
				s, err := scanFile(path, c.Bool("check"), c.Bool("ranges"))
				if err != nil {
					klog.Errorf("%v", err)
					errs = append(errs, err)
					continue
				}
				summaries = append(summaries, s)
			}

			if err := report(c.App.Writer, c.String("format"), summaries); err != nil {
				return err
			}
			return errors.Join(errs...)
		},
	}
}

func main() {
	err := newApp().Run(os.Args)
	klog.Flush()
	die.If(err)
}
