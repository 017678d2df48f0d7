package output

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fbz-tec/pgxdump/internal/logger"
)

func newGzipWriter(path string) (io.WriteCloser, string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".gz") {
		path += ".gz"
	}
	logger.Debug("Creating gzip-compressed output file: %s", path)
	file, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("error creating file: %w", err)
	}
	gzipWriter := gzip.NewWriter(file)
	return &compositeWriteCloser{
		Writer: gzipWriter,
		closeFunc: func() error {
			logger.Debug("Finalizing gzip compression for: %s", path)
			var err error
			if cerr := gzipWriter.Close(); cerr != nil {
				err = cerr
			}
			if ferr := file.Close(); ferr != nil && err == nil {
				err = ferr
			}
			return err
		},
	}, path, nil
}
