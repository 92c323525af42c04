package main

import (
	"github.com/spf13/cobra"

	"nanosimsreduce/pkg/config"
)

// processingFlags mirrors the processing section of the configuration so
// any value can be overridden per run.
type processingFlags struct {
	deadTime       float64
	dwellTime      float64
	primaryCurrent float64
	trimFront      int
	trimBack       int
	rollX          int
	rollY          int
	maskLower      float64
	maskUpper      float64
	cores          int
	imageDir       string
}

func (f *processingFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&f.deadTime, "dead-time", 44e-9, "detector dead time in seconds")
	fs.Float64Var(&f.dwellTime, "dwell-time", 0, "dwell time per pixel in seconds (0: from file header)")
	fs.Float64Var(&f.primaryCurrent, "current", 0, "primary current in pA (0: from file header)")
	fs.IntVar(&f.trimFront, "trim-front", 0, "cycles to remove from the start")
	fs.IntVar(&f.trimBack, "trim-back", 0, "cycles to remove from the end")
	fs.IntVar(&f.rollX, "roll-x", 0, "pixel shift along X applied to every plane")
	fs.IntVar(&f.rollY, "roll-y", 0, "pixel shift along Y applied to every plane")
	fs.Float64Var(&f.maskLower, "mask-lower", 0, "exclude reference counts at or below this value")
	fs.Float64Var(&f.maskUpper, "mask-upper", 0, "exclude reference counts above this value (0: unbounded)")
	fs.IntVar(&f.cores, "cores", 0, "files reduced in parallel (0: from configuration)")
	fs.StringVar(&f.imageDir, "image-dir", "", "save a masked reference image per file into this directory")
}

// apply copies every flag the user set onto cfg.
func (f *processingFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	p := &cfg.Processing
	if fs.Changed("dead-time") {
		p.DeadTime = f.deadTime
	}
	if fs.Changed("dwell-time") {
		p.DwellTime = f.dwellTime
	}
	if fs.Changed("current") {
		p.PrimaryCurrent = f.primaryCurrent
	}
	if fs.Changed("trim-front") {
		p.TrimFront = f.trimFront
	}
	if fs.Changed("trim-back") {
		p.TrimBack = f.trimBack
	}
	if fs.Changed("roll-x") {
		p.RollX = f.rollX
	}
	if fs.Changed("roll-y") {
		p.RollY = f.rollY
	}
	if fs.Changed("mask-lower") {
		p.MaskLower = f.maskLower
	}
	if fs.Changed("mask-upper") {
		p.MaskUpper = f.maskUpper
	}
	if fs.Changed("cores") && f.cores > 0 {
		p.NumCores = f.cores
	}
	if fs.Changed("image-dir") {
		cfg.Output.ImageDir = f.imageDir
	}
	return cfg.Validate()
}
