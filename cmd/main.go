// cmd/main.go

package main

import (
	"os"

	"BlockPress/pkg/utils"
	"BlockPress/pkg/version"

	"github.com/google/gops/agent"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var logger = utils.GetLogger("blockpress")

func main() {
	if err := Main(os.Args); err != nil {
		logger.Fatal(err)
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "enable info logging",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging, one line per block",
		},
		&cli.BoolFlag{
			Name:  "trace",
			Usage: "enable trace logging",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "only log errors and hide the progress bar",
		},
		&cli.StringFlag{
			Name:  "log",
			Usage: "path of a file to write the log to instead of stderr",
		},
		&cli.BoolFlag{
			Name:  "no-progress",
			Usage: "do not show the progress bar",
		},
		&cli.BoolFlag{
			Name:  "debug-agent",
			Usage: "start a gops agent for runtime diagnostics",
		},
	}
}

// Main builds the command line app and runs it with `args`.
func Main(args []string) error {
	cli.VersionFlag = &cli.BoolFlag{
		Name: "version", Aliases: []string{"V"},
		Usage: "print only the version",
	}
	app := &cli.App{
		Name:                 "blockpress",
		Usage:                "Compress and decompress files in parallel, one block per core.",
		Version:              version.Version(),
		Copyright:            "Apache License 2.0",
		EnableBashCompletion: true,
		Flags:                globalFlags(),
		Commands: []*cli.Command{
			compressFlags(),
			decompressFlags(),
			infoFlags(),
		},
	}
	return app.Run(args)
}

func setLoggerLevel(c *cli.Context) {
	switch {
	case c.Bool("trace"):
		utils.SetLogLevel(logrus.TraceLevel)
	case c.Bool("debug"):
		utils.SetLogLevel(logrus.DebugLevel)
	case c.Bool("verbose"):
		utils.SetLogLevel(logrus.InfoLevel)
	case c.Bool("quiet"):
		utils.SetLogLevel(logrus.ErrorLevel)
	default:
		utils.SetLogLevel(logrus.WarnLevel)
	}
}

func setup(c *cli.Context, n int) error {
	if c.Args().Len() < n {
		return errors.Errorf("%s is needed", c.Command.ArgsUsage)
	}
	setLoggerLevel(c)
	if path := c.String("log"); path != "" {
		if err := utils.SetOutFile(path); err != nil {
			logger.Warnf("open log file %s: %s", path, err)
		}
	}
	if c.Bool("debug-agent") {
		if err := agent.Listen(agent.Options{}); err != nil {
			logger.Warnf("start gops agent: %s", err)
		}
	}
	return nil
}
