/*
Copyright © 2024 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"io"
	"os"

	"github.com/apex/log"
	clihander "github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"

	termcat "github.com/blacktop/go-termcat"
	"github.com/blacktop/go-termcat/internal/config"
	"github.com/blacktop/go-termcat/internal/lock"
	"github.com/blacktop/go-termcat/pkg/cat"
	"github.com/blacktop/go-termcat/pkg/csi"
)

// Version is set at build time
var Version = "dev"

var (
	verbose    bool
	configPath string
	lockOutput bool
	catOpts    cat.Options
)

func init() {
	log.SetHandler(clihander.Default)

	flags := rootCmd.Flags()
	flags.SortFlags = false

	flags.BoolVarP(&catOpts.NumberNonblank, "number-nonblank", "b", false, "Number the non-blank output lines, starting at 1")
	flags.BoolVarP(&catOpts.ShowEnds, "show-ends", "e", false, "Display non-printing characters (see -v), and display a dollar sign at the end of each line")
	flags.BoolVarP(&lockOutput, "lock", "l", false, "Set an exclusive advisory lock on the standard output file descriptor")
	flags.BoolVarP(&catOpts.Number, "number", "n", false, "Number the output lines, starting at 1")
	flags.BoolVarP(&catOpts.SqueezeBlank, "squeeze-blank", "s", false, "Squeeze multiple adjacent empty lines, causing the output to be single spaced")
	flags.BoolVarP(&catOpts.ShowTabs, "show-tabs", "t", false, "Display non-printing characters (see -v), and display tab characters as ^I")
	flags.BoolVarP(&catOpts.Unbuffered, "unbuffered", "u", false, "Disable output buffering")
	flags.BoolVarP(&catOpts.ShowNonprinting, "show-nonprinting", "v", false, "Display non-printing characters so they are visible")

	flags.Int("max-width", termcat.DefaultMaxWidth, "Maximum image width in pixels")
	flags.Int("max-height", termcat.DefaultMaxHeight, "Maximum image height in pixels")
	flags.StringP("protocol", "p", termcat.Auto.String(), "Graphics protocol: auto, kitty or sixel")
	flags.IntP("colors", "c", 0, "Sixel palette size, 2-256 (0 = encoder default)")
	flags.String("background", "#000000", "Sixel background color for transparent pixels")
	flags.Bool("dither", false, "Median cut palette with Stucki dithering (sixel)")
	flags.Bool("sniff", false, "Detect images by content, not only by extension")
	flags.Bool("label", false, "Print the file name after each image when several files are given")
	flags.Bool("fit", false, "Bound images by the terminal text area when it can be queried")

	flags.StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/rp/config.toml)")
	flags.BoolVarP(&verbose, "verbose", "V", false, "Enable verbose logging")
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rp [flags] [file ...]",
	Short: "Concatenate and print files, displaying images inline",
	Long: `Concatenate and print files like cat(1). Raster images are resized to fit
and drawn inline with the kitty graphics protocol or sixel.

With no file, or when file is -, read standard input.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}

		conf, err := config.Load(configPath, cmd.Flags())
		if err != nil {
			return err
		}

		if lockOutput {
			if err := lock.Exclusive(os.Stdout); err != nil {
				return &termcat.Error{Kind: termcat.KindLock, Path: "stdout", Op: "lock", Err: err}
			}
		}

		d, err := newDispatcher(os.Stdout, conf)
		if err != nil {
			return err
		}
		return d.Run(args)
	},
}

// newDispatcher wires the configuration into a Dispatcher writing to w
func newDispatcher(w io.Writer, conf *config.Config) (*termcat.Dispatcher, error) {
	protocol, err := conf.ProtocolValue()
	if err != nil {
		return nil, err
	}
	bg, err := conf.BackgroundColor()
	if err != nil {
		return nil, err
	}

	tmux := termcat.InTmux()
	if tmux && !termcat.EnableTmuxPassthrough() {
		log.Debug("could not enable tmux allow-passthrough")
	}

	enc, err := termcat.NewEncoder(protocol, termcat.EncoderOptions{
		Colors:     conf.Colors,
		Background: bg,
		Dither:     conf.Dither,
		Tmux:       tmux,
	})
	if err != nil {
		return nil, err
	}

	bounds := conf.Bounds()
	if conf.Fit {
		bounds = fitBounds(bounds)
	}

	log.WithFields(log.Fields{
		"protocol":   enc.Protocol().String(),
		"max_width":  bounds.MaxWidth,
		"max_height": bounds.MaxHeight,
		"tmux":       tmux,
	}).Debug("image pipeline")

	return termcat.NewDispatcher(w, termcat.DispatchOptions{
		Cat:     catOpts,
		Bounds:  bounds,
		Encoder: enc,
		Sniff:   conf.Sniff,
		Label:   conf.Label,
	}), nil
}

// fitBounds shrinks b to the terminal text area when the terminal reports it
func fitBounds(b termcat.Bounds) termcat.Bounds {
	if !csi.QuerySupported() {
		log.Debug("terminal does not answer CSI queries, keeping configured bounds")
		return b
	}
	w, h, ok := csi.QueryTextAreaSizeInPixels()
	if !ok {
		log.Debug("text area size query failed, keeping configured bounds")
		return b
	}
	return termcat.Bounds{
		MaxWidth:  min(b.MaxWidth, w),
		MaxHeight: min(b.MaxHeight, h),
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
