// cmd/process.go

package main

import (
	"io"
	"os"
	"path/filepath"

	"BlockPress/pkg/pipeline"
	"BlockPress/pkg/stream"
	"BlockPress/pkg/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const stdio = "-"

// openInput returns the input, its size (0 if unknown) and a function that
// releases it. Stdin is left open.
func openInput(path string) (*os.File, int64, func(), error) {
	if path == stdio {
		return os.Stdin, 0, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, nil, err
	}
	return f, st.Size(), func() { _ = f.Close() }, nil
}

// output is written under a temporary name next to the target and renamed
// once the engine finished, so a failed run never leaves a partial file.
type output struct {
	*os.File
	path string
	tmp  string
}

func createOutput(path string, force bool) (*output, error) {
	if path == stdio {
		return &output{File: os.Stdout, path: path}, nil
	}
	if !force && utils.Exists(path) {
		return nil, errors.Errorf("%s already exists, use --force to overwrite it", path)
	}
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.New().String()+".tmp")
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	return &output{File: f, path: path, tmp: tmp}, nil
}

func (o *output) commit() error {
	if o.tmp == "" {
		return nil
	}
	if err := o.Close(); err != nil {
		o.discard()
		return err
	}
	return os.Rename(o.tmp, o.path)
}

func (o *output) discard() {
	if o.tmp == "" {
		return
	}
	_ = o.Close()
	if err := os.Remove(o.tmp); err != nil && !os.IsNotExist(err) {
		logger.Warnf("remove %s: %s", o.tmp, err)
	}
}

func bwlimit(c *cli.Context) int64 {
	return c.Int64("bwlimit") << 20
}

// process runs the engine built from `s` over the first argument and writes
// the result to the second one.
func process(c *cli.Context, conf *pipeline.Config, s pipeline.Strategy) error {
	src, dst := c.Args().Get(0), c.Args().Get(1)
	if s.Header && dst == stdio {
		return errors.Wrap(pipeline.ErrNotSeekable, "archive output cannot be written to stdout")
	}
	in, size, release, err := openInput(src)
	if err != nil {
		return errors.Wrapf(err, "open %s", src)
	}
	defer release()
	out, err := createOutput(dst, c.Bool("force"))
	if err != nil {
		return err
	}

	quiet := c.Bool("quiet") || c.Bool("no-progress") || dst == stdio
	progress, bar := utils.NewProgressBar(s.Name+" "+filepath.Base(src)+":", size, quiet)
	var r io.Reader = bar.ProxyReader(in)
	r = stream.NewLimitedReader(r, bwlimit(c))
	w := stream.NewLimitedWriter(out.File, bwlimit(c))

	e := pipeline.New(conf, s)
	err = e.Process(r, w)
	if err != nil {
		bar.Abort(false)
		progress.Wait()
		out.discard()
		return errors.Wrapf(err, "%s %s", s.Name, src)
	}
	bar.SetTotal(-1, true)
	progress.Wait()
	if err = out.commit(); err != nil {
		return errors.Wrapf(err, "save %s", dst)
	}

	stats := e.Stats()
	usage := utils.ResourceUsage()
	logger.Infof("%s %s -> %s: %d blocks, %d -> %d bytes in %s (user %s, sys %s)",
		s.Name, src, dst, stats.Blocks, stats.BytesIn, stats.BytesOut,
		stats.Elapsed, usage.User, usage.Sys)
	return nil
}
