// cmd/compress.go

package main

import (
	"BlockPress/pkg/compress"
	"BlockPress/pkg/pipeline"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func compressFlags() *cli.Command {
	return &cli.Command{
		Name:      "compress",
		Aliases:   []string{"c"},
		Usage:     "compress a file into a block archive",
		ArgsUsage: "INPUT OUTPUT",
		Action:    compressAction,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "block-size",
				Value: pipeline.DefaultBlockSize >> 10,
				Usage: "size of each block in KiB",
			},
			&cli.IntFlag{
				Name:    "threads",
				Aliases: []string{"t"},
				Usage:   "number of compression workers (default: number of CPUs)",
			},
			&cli.StringFlag{
				Name:  "compress",
				Value: "gzip",
				Usage: "compression algorithm for each block (gzip, zstd, lz4)",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "write concatenated gzip members without the archive header",
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

func compressAction(c *cli.Context) error {
	if err := setup(c, 2); err != nil {
		return err
	}
	conf := &pipeline.Config{
		BlockSize: c.Int("block-size") << 10,
		Workers:   c.Int("threads"),
	}
	algr := c.String("compress")
	codec := compress.NewCompressor(algr)
	if codec == nil {
		return errors.Wrapf(compress.ErrUnknownCodec, "compress %q", algr)
	}
	if c.Bool("raw") {
		if codec.Name() != "gzip" {
			return errors.Errorf("--raw only supports gzip, not %s", codec.Name())
		}
		return process(c, conf, pipeline.CompressRaw(conf))
	}
	return process(c, conf, pipeline.Compress(conf, codec))
}
