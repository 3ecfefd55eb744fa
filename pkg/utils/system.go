// pkg/utils/system.go

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alexmullins/zip"
)

// RunningAsRoot checks if the tool is running with root/sudo privileges
func RunningAsRoot() bool {
	return os.Geteuid() == 0
}

// CompressWithPassword compresses a file with password protection and
// returns the path of the resulting archive.
func CompressWithPassword(sourcePath string, password string) (string, error) {
	if _, err := os.Stat(sourcePath); os.IsNotExist(err) {
		return "", fmt.Errorf("source file not found: %s", sourcePath)
	}

	zipPath := sourcePath + ".zip"

	zipFile, err := os.Create(zipPath)
	if err != nil {
		return "", fmt.Errorf("failed to create zip file: %v", err)
	}
	defer zipFile.Close()

	zipWriter := zip.NewWriter(zipFile)
	defer zipWriter.Close()

	sourceFile, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to open source file: %v", err)
	}
	defer sourceFile.Close()

	writer, err := zipWriter.Encrypt(filepath.Base(sourcePath), password)
	if err != nil {
		return "", fmt.Errorf("failed to create encrypted entry: %v", err)
	}

	if _, err := io.Copy(writer, sourceFile); err != nil {
		return "", fmt.Errorf("failed to write to zip: %v", err)
	}

	return zipPath, nil
}
