package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/kisom/goutils/die"
	"github.com/kisom/sdat"
	"github.com/kisom/sdat/internal/displaypath"
	"github.com/kisom/sdat/internal/logflags"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"
)

func progressReader(r io.Reader, size int64) io.Reader {
	bar := progressbar.DefaultBytes(size, "writing")
	pr := progressbar.NewReader(r, bar)
	return &pr
}

// partialOutput reports whether err happened after the output image
// was created.
func partialOutput(err error) bool {
	var werr *sdat.WriteError
	return errors.As(err, &werr) || errors.Is(err, sdat.ErrWriteFailure)
}

func convert(c *cli.Context, listPath, dataPath, output string) error {
	tl, err := sdat.LoadTransferList(listPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Parsed transfer list version: %d (%s)\n",
		tl.Header.Version, sdat.VersionName(tl.Header.Version))
	fmt.Fprintf(c.App.Writer, "Total new blocks: %s\n", humanize.Comma(int64(tl.Header.NewBlocks)))

	skipped := make([]string, 0, len(tl.Skipped))
	for cmd := range tl.Skipped {
		skipped = append(skipped, cmd)
	}
	sort.Strings(skipped)
	for _, cmd := range skipped {
		klog.Infof("skipped %d %q commands", tl.Skipped[cmd], cmd)
	}

	opts := sdat.Options{Strict: c.Bool("strict")}
	if c.Bool("progress") {
		opts.Progress = progressReader
	}

	err = sdat.CreateImage(output, dataPath, tl, opts)
	if err != nil {
		if partialOutput(err) && !c.Bool("keep-partial") {
			if rerr := os.Remove(output); rerr != nil {
				klog.Warningf("unable to remove partial image %s: %v", output, rerr)
			}
		}
		return err
	}

	fmt.Fprintf(c.App.Writer, "Wrote %s blocks (%s image)\n",
		humanize.Comma(tl.Commands.Blocks()), humanize.IBytes(uint64(tl.Commands.ImageSize())))
	fmt.Fprintf(c.App.Writer, "Output written to %s\n", displaypath.Resolve(output))
	return nil
}

func newApp() *cli.App {
	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:    "strict",
			Usage:   "reject overlapping ranges and a new block count that does not match the ranges",
			EnvVars: []string{"SDAT2IMG_STRICT"},
		},
		&cli.BoolFlag{
			Name:    "progress",
			Usage:   "show a progress bar while writing",
			EnvVars: []string{"SDAT2IMG_PROGRESS"},
			Value:   true,
		},
		&cli.BoolFlag{
			Name:    "keep-partial",
			Usage:   "keep the output image if writing fails part way",
			EnvVars: []string{"SDAT2IMG_KEEP_PARTIAL"},
		},
	}
	flags = append(flags, logflags.NewKlogFlagSet("SDAT2IMG")...)

	app := &cli.App{
		Name:      "sdat2img",
		Usage:     "rebuild a block image from a transfer list and its new.dat",
		ArgsUsage: "<transfer_list> <system.new.dat> [" + sdat.DefaultOutput + "]",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			args := c.Args()
			if args.Len() < 2 || args.Len() > 3 {
				cli.ShowAppHelp(c)
				return fmt.Errorf("expected 2 or 3 arguments, got %d", args.Len())
			}

			output := sdat.DefaultOutput
			if args.Len() == 3 {
				output = args.Get(2)
			}
			return convert(c, args.Get(0), args.Get(1), output)
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	return app
}

func main() {
	err := newApp().Run(os.Args)
	klog.Flush()
	die.If(err)
}
