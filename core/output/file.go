package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fbz-tec/pgxdump/internal/logger"
)

func newFileWriter(path string) (io.WriteCloser, string, error) {
	logger.Debug("Creating uncompressed output file: %s", path)
	file, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("error creating file: %w", err)
	}
	// 256KB buffer keeps throughput steady on large exports
	return newBufferedWriteCloser(file, 256*1024), path, nil
}
