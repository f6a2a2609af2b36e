// cmd/decompress.go

package main

import (
	"BlockPress/pkg/pipeline"

	"github.com/urfave/cli/v2"
)

func decompressFlags() *cli.Command {
	return &cli.Command{
		Name:      "decompress",
		Aliases:   []string{"d"},
		Usage:     "decompress a block archive or a multi-member gzip file",
		ArgsUsage: "INPUT OUTPUT",
		Action:    decompressAction,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "threads",
				Aliases: []string{"t"},
				Usage:   "number of decompression workers (default: number of CPUs)",
			},
			&cli.IntFlag{
				Name:  "read-size",
				Value: pipeline.DefaultBlockSize >> 10,
				Usage: "read size in KiB used while looking for gzip members",
			},
			&cli.Int64Flag{
				Name:  "bwlimit",
				Usage: "bandwidth limit for reading and writing in MiB/s (0 means unlimited)",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "overwrite the output if it exists",
			},
		},
	}
}

func decompressAction(c *cli.Context) error {
	if err := setup(c, 2); err != nil {
		return err
	}
	conf := &pipeline.Config{
		BlockSize: c.Int("read-size") << 10,
		Workers:   c.Int("threads"),
	}
	return process(c, conf, pipeline.Decompress(conf))
}
