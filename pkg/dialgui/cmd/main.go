package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/Red-M/dialgui/pkg/dialgui"
	"github.com/Red-M/dialgui/pkg/dialgui/util"
)

var (
	gitCommit  string
	versionTag string
	buildType  string

	verbose   bool
	headless  bool
	configDir string
)

func init() {
	pflag.BoolVarP(&verbose, "verbose", "v", false, "show verbose logs (useful for debugging serial)")
	pflag.BoolVar(&headless, "headless", false, "don't show the on-screen panel, only forward device input")
	pflag.StringVarP(&configDir, "config", "c", "", "directory holding config.yaml (defaults to the user config dir)")
	pflag.Parse()
}

func main() {
	if configDir == "" {
		configDir = dialgui.DefaultConfigDir()
	}

	// first we need a logger. without the panel there's a terminal to log to
	logger, err := util.NewLogger(verbose, headless, configDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}

	named := logger.Named("main")
	named.Debug("Created logger")

	named.Infow("Version info",
		"gitCommit", gitCommit,
		"versionTag", versionTag,
		"buildType", buildType)

	if verbose {
		named.Debug("Verbose flag provided, all log messages will be shown")
	}

	// create the dialgui instance
	d, err := dialgui.NewDialGUI(logger, configDir, verbose, headless)
	if err != nil {
		named.Fatalw("Failed to create dialgui object", "error", err)
	}

	// if injected by build process, set version info to show up in the tray
	if buildType != "" && (versionTag != "" || gitCommit != "") {
		identifier := gitCommit
		if versionTag != "" {
			identifier = versionTag
		}

		d.SetVersion(fmt.Sprintf("Version %s-%s", buildType, identifier))
	}

	// onwards, to glory
	if err = d.Initialize(); err != nil {
		named.Fatalw("Failed to initialize dialgui", "error", err)
	}
}
