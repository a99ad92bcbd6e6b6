package carve

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/esimov/carve/utils"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently processed files.
const maxWorkers = 20

var (
	// sourceExtensions are the file types picked up when walking a directory.
	sourceExtensions = []string{".ppm", ".jpg", ".jpeg", ".png", ".bmp", ".gif"}
	// destExtensions are the file types the result can be encoded to.
	destExtensions = []string{".ppm", ".jpg", ".jpeg", ".png", ".bmp"}
)

// Ops describes where the images are read from and written to.
type Ops struct {
	Src, Dst, PipeName string
	// Workers is the number of files processed concurrently in directory mode.
	Workers int
	// Stderr receives the status messages. It defaults to os.Stderr.
	Stderr io.Writer
}

// result holds the outcome of resizing a single file.
type result struct {
	path string
	err  error
}

// Execute runs the resizing process. The source can be a file, a directory,
// an URL or the pipe name for stdin. Directories are walked recursively and
// their images are processed concurrently into the destination directory.
func (p *Processor) Execute(ctx context.Context, op *Ops) error {
	logger := LoggerFromContext(ctx)
	if op.Stderr == nil {
		op.Stderr = os.Stderr
	}

	src := op.Src
	if utils.IsValidUrl(src) {
		f, err := utils.DownloadImage(src)
		if err != nil {
			return errors.Wrap(err, "failed to load the source image")
		}
		f.Close()
		defer os.Remove(f.Name())

		logger.Debug("source downloaded", "url", src, "file", f.Name())
		src = f.Name()
	}

	var (
		fi  os.FileInfo
		err error
	)
	if src == op.PipeName {
		fi, err = os.Stdin.Stat()
	} else {
		fi, err = os.Stat(src)
	}
	if err != nil {
		return errors.Wrap(err, "failed to load the source image")
	}

	now := time.Now()

	switch mode := fi.Mode(); {
	case mode.IsDir():
		err = op.processDir(ctx, p, src)
	case mode.IsRegular() || mode&os.ModeNamedPipe != 0 || mode&os.ModeCharDevice != 0:
		ext := filepath.Ext(op.Dst)
		if op.Dst != op.PipeName && !isValidExtension(ext, destExtensions) {
			return errors.Wrapf(ErrFormat, "%v file type not supported", ext)
		}
		err = op.processFile(ctx, p, src)
	default:
		return errors.Errorf("unsupported source %s", src)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(op.Stderr, "\nExecution time: %s\n",
		utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	return nil
}

// processFile resizes a single image showing a progress indicator.
func (op *Ops) processFile(ctx context.Context, p *Processor, src string) error {
	proc := *p
	if proc.Spinner == nil {
		proc.Spinner = utils.NewSpinner(
			utils.Banner("⇢ resizing image (be patient, it may take a while)...", utils.DefaultMessage),
			80*time.Millisecond, true,
		)
		proc.Spinner.SetWriter(op.Stderr)
	}

	proc.Spinner.Start()
	err := op.process(ctx, &proc, src, op.Dst)
	if err != nil {
		proc.Spinner.StopMsg = utils.Banner("resizing image failed... ", utils.DefaultMessage) +
			utils.DecorateText("✘\n", utils.ErrorMessage)
	} else {
		proc.Spinner.StopMsg = utils.Banner("⇢ ", utils.DefaultMessage) +
			utils.DecorateText("the image has been resized successfully ✔\n", utils.SuccessMessage)
	}
	proc.Spinner.Stop()

	op.printOpStatus(op.Dst, err)
	return err
}

// processDir resizes every supported image found under dir with a pool of workers.
func (op *Ops) processDir(ctx context.Context, p *Processor, dir string) error {
	logger := LoggerFromContext(ctx)

	if err := os.MkdirAll(op.Dst, 0755); err != nil {
		return errors.Wrap(err, "unable to create the destination directory")
	}

	workers := op.Workers
	if workers <= 0 || workers > maxWorkers {
		workers = runtime.NumCPU()
	}

	// The processor is shared between the workers, so it must not report
	// progress through a single spinner.
	proc := *p
	proc.Spinner = nil

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	paths, errc := walkDir(ctx, dir, sourceExtensions)
	ch := make(chan result)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			op.consumer(ctx, &proc, ch, paths)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	var failed int
	for res := range ch {
		if res.err != nil {
			failed++
			logger.Error("resizing failed", "file", res.path, "err", res.err)
			continue
		}
		op.printOpStatus(res.path, nil)
	}

	if err := <-errc; err != nil {
		return errors.Wrap(err, "walk source directory")
	}
	if failed > 0 {
		return errors.Errorf("%d image(s) could not be resized", failed)
	}
	return nil
}

// consumer reads the path names from the paths channel and calls the resizing processor against the source image.
func (op *Ops) consumer(ctx context.Context, p *Processor, res chan<- result, paths <-chan string) {
	for src := range paths {
		dst := filepath.Join(op.Dst, destName(src))
		err := op.process(ctx, p, src, dst)

		select {
		case <-ctx.Done():
			return
		case res <- result{path: src, err: err}:
		}
	}
}

// process calls the resizer method over the source image and removes the
// destination file in case of an error.
func (op *Ops) process(ctx context.Context, p *Processor, in, out string) error {
	src, dst, err := op.pathToFile(in, out)
	if err != nil {
		return err
	}
	defer func() {
		if f, ok := src.(*os.File); ok && f != os.Stdin {
			if err := f.Close(); err != nil {
				LoggerFromContext(ctx).Warn("could not close the opened file", "err", err)
			}
		}
	}()

	err = p.Process(ctx, src, dst)

	if f, ok := dst.(*os.File); ok && f != os.Stdout {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = ioErrorf("close %s: %v", f.Name(), cerr)
		}
		if err != nil {
			os.Remove(f.Name())
		}
	}
	return err
}

// pathToFile converts the source and destination paths to readable and writable files.
func (op *Ops) pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if in == op.PipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdin")
		}
		src = os.Stdin
	} else {
		src, err = os.Open(in)
		if err != nil {
			return nil, nil, ioErrorf("unable to open the source file: %v", err)
		}
	}

	// Check if the destination is a pipe name or a regular file.
	if out == op.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		dst, err = os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			if f, ok := src.(*os.File); ok && f != os.Stdin {
				f.Close()
			}
			return nil, nil, ioErrorf("unable to create the destination file: %v", err)
		}
	}
	return src, dst, nil
}

// printOpStatus displays the relevant information about the image resizing process.
func (op *Ops) printOpStatus(fname string, err error) {
	if err != nil {
		fmt.Fprintf(op.Stderr, "%s%s",
			utils.DecorateText("\nError resizing the image: ", utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err), utils.DefaultMessage),
		)
		return
	}
	if fname != op.PipeName {
		fmt.Fprintf(op.Stderr, "\nThe image has been saved as: %s %s\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
			utils.DefaultColor,
		)
	}
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each supported file to a new channel.
// It stops once the context is cancelled.
func walkDir(ctx context.Context, src string, srcExts []string) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() || !isValidExtension(filepath.Ext(f.Name()), srcExts) {
				return nil
			}

			select {
			case <-ctx.Done():
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// destName returns the output file name of a source image. Sources in a
// format which cannot be written back are saved as PNG.
func destName(src string) string {
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	if isValidExtension(ext, destExtensions) {
		return base
	}
	return strings.TrimSuffix(base, ext) + ".png"
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	ext = strings.ToLower(ext)
	for _, ex := range extensions {
		if ex == ext {
			return true
		}
	}
	return false
}
