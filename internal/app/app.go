package app

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/pflag"
)

var Version = "0.4.0"

var Info = map[string]any{
	"version": Version,
}

// Inputs - files and commands given as positional arguments
var Inputs []string

func Init() {
	version, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if version {
		fmt.Printf("viddec version %s%s %s/%s\n", Version, revision(), runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	initLogger()

	platform := fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
	Logger.Info().Str("version", Version).Str("platform", platform).Msg("viddec")
	Logger.Debug().Str("version", runtime.Version()).Msg("build")

	if ConfigPath != "" {
		Logger.Info().Str("path", ConfigPath).Msg("config")
	}
}

func parseArgs(args []string) (version bool, err error) {
	flags := pflag.NewFlagSet("viddec", pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: viddec [flags] input...\n\nInputs are elementary streams (.m2v, .h264), MP4 files, - for stdin or exec:command.\n\n")
		flags.PrintDefaults()
	}

	confs := flags.StringArrayP("config", "c", nil, "config (path to file or raw YAML), support multiple")
	sets := flags.StringArrayP("set", "s", nil, "config value like decode.width=320, support multiple")
	flags.BoolVarP(&version, "version", "v", false, "print the version of the application and exit")

	if err = flags.Parse(args); err != nil {
		return
	}

	Inputs = flags.Args()

	err = initConfig(*confs, *sets)
	return
}

func revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			if len(setting.Value) > 7 {
				return " (" + setting.Value[:7] + ")"
			}
			return " (" + setting.Value + ")"
		}
	}
	return ""
}
