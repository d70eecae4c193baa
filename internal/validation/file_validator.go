package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "boardanalyzer/internal/errors"
)

// ErrUnsupportedExtension is returned for a board export whose name does not
// end in one of the accepted extensions.
var ErrUnsupportedExtension = apperrors.NewAppValidationError("unsupported file type")

// FileValidator checks board exports and output locations for the web
// upload and the CLI.
type FileValidator struct {
	extensions []string
	logger     *slog.Logger
}

// NewFileValidator creates a validator accepting the given extensions
// (".html", ".htm", ...). Matching is case-insensitive.
func NewFileValidator(extensions []string, logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		normalized = append(normalized, strings.ToLower(ext))
	}
	return &FileValidator{
		extensions: normalized,
		logger:     logger.With(slog.String("component", "file_validator")),
	}
}

// Extensions returns the accepted extensions
func (v *FileValidator) Extensions() []string {
	return append([]string(nil), v.extensions...)
}

// ValidateExportName checks the file name of an uploaded board export
func (v *FileValidator) ValidateExportName(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	for _, accepted := range v.extensions {
		if ext == accepted {
			return nil
		}
	}

	v.logger.Warn("Rejected board export",
		slog.String("file", name),
		slog.String("extension", ext))
	return ErrUnsupportedExtension.WithCause(fmt.Errorf("%q has extension %q", name, ext)).
		WithContext("accepted_extensions", v.Extensions())
}

// ValidateExportFile checks that path is a readable board export no larger
// than maxBytes (unbounded when maxBytes <= 0).
func (v *FileValidator) ValidateExportFile(path string, maxBytes int64) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}
	if err := v.ValidateExportName(path); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		v.logger.Error("Board export too large",
			slog.String("file", path),
			slog.Int64("size", info.Size()),
			slog.Int64("max_bytes", maxBytes))
		return apperrors.NewTooLargeError(fmt.Sprintf("file %s is %d bytes, limit is %d", path, info.Size(), maxBytes))
	}
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
// and is writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateWorkbookPath checks that path names an .xlsx file in a writable
// directory.
func (v *FileValidator) ValidateWorkbookPath(path string) error {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".xlsx" {
		return fmt.Errorf("workbook %s must have the .xlsx extension", path)
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return fmt.Errorf("workbook %s looks like an Excel lock file", path)
	}
	return v.ValidateOutputDirectory(filepath.Dir(path))
}
