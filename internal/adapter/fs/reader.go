package fs

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"ircount/internal/domain"
)

// Reader loads an IR listing into memory, optionally drawing a byte
// progress bar on progressOut.
type Reader struct {
	progress    bool
	progressOut io.Writer
}

func NewReader(progress bool, progressOut io.Writer) *Reader {
	if progressOut == nil {
		progressOut = os.Stderr
	}
	return &Reader{
		progress:    progress,
		progressOut: progressOut,
	}
}

// ReadFile returns the document descriptor and full content of path.
// Open and read failures are returned unwrapped so callers can inspect them.
func (r *Reader) ReadFile(path string) (domain.Document, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Document{}, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return domain.Document{}, nil, err
	}
	if info.IsDir() {
		return domain.Document{}, nil, &os.PathError{Op: "read", Path: path, Err: fmt.Errorf("is a directory")}
	}

	var buf bytes.Buffer
	buf.Grow(int(info.Size()))

	var dst io.Writer = &buf
	var bar *progressbar.ProgressBar
	if r.progress {
		bar = newProgressBar(info.Size(), r.progressOut)
		dst = io.MultiWriter(&buf, bar)
	}

	if _, err := io.Copy(dst, f); err != nil {
		return domain.Document{}, nil, err
	}
	if bar != nil {
		bar.Finish()
	}

	content := buf.Bytes()
	doc := domain.Document{
		Path: path,
		Size: int64(len(content)),
		Hash: contentHash(content),
	}
	return doc, content, nil
}

func newProgressBar(size int64, out io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]Scanning[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(out)
		}),
	)
}

func contentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:16])
}
