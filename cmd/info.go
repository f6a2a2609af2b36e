// cmd/info.go

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"BlockPress/pkg/archive"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func infoFlags() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "show the header of a block archive",
		ArgsUsage: "ARCHIVE",
		Action:    info,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "blocks",
				Usage: "list offset and size of every block",
			},
		},
	}
}

type blockInfo struct {
	Offset uint64
	Size   uint32
}

type archiveInfo struct {
	HeaderSize uint64
	Blocks     int
	DataSize   uint64
	FileSize   int64
	Table      []blockInfo `json:",omitempty"`
}

func printJson(v interface{}) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Fatalf("json: %s", err)
	}
	fmt.Println(string(output))
}

func info(c *cli.Context) error {
	if err := setup(c, 1); err != nil {
		return err
	}
	path := c.Args().Get(0)
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	h, err := archive.Decode(f)
	if err != nil {
		return errors.Wrapf(err, "read header of %s", path)
	}
	st, err := f.Stat()
	if err != nil {
		return err
	}
	ai := &archiveInfo{
		HeaderSize: h.HeaderSize,
		Blocks:     h.Len(),
		DataSize:   h.DataSize(),
		FileSize:   st.Size(),
	}
	if c.Bool("blocks") {
		for i, size := range h.BlockSizes {
			ai.Table = append(ai.Table, blockInfo{Offset: h.Offset(i), Size: size})
		}
	}
	if want := int64(h.Offset(h.Len())); want != ai.FileSize {
		logger.Warnf("%s: header describes %d bytes but the file has %d", path, want, ai.FileSize)
	}
	printJson(ai)
	return nil
}
