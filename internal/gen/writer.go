package gen

import (
	"fmt"
	"os"
	"path/filepath"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteFiles writes rewritten files. With an empty outputDir each file
// replaces its source; otherwise files go under outputDir by Filename and the
// directories are created as needed.
func WriteFiles(files []RewrittenFile, outputDir string) ([]string, error) {
	written := make([]string, 0, len(files))

	for _, file := range files {
		outputPath := file.Path
		if outputDir != "" {
			outputPath = filepath.Join(outputDir, file.Filename)
		}

		err := os.MkdirAll(filepath.Dir(outputPath), dirPerm)
		if err != nil {
			return written, fmt.Errorf("creating output directory: %w", err)
		}

		err = os.WriteFile(outputPath, file.Content, filePerm)
		if err != nil {
			return written, fmt.Errorf("writing file %s: %w", outputPath, err)
		}

		written = append(written, outputPath)
	}

	return written, nil
}
