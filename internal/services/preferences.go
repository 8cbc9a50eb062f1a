package services

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"pixbatch/internal/common"
	"pixbatch/internal/models"
	"pixbatch/internal/operations"
)

// PreferencesService handles user preferences operations
type PreferencesService struct {
	db               *gorm.DB
	defaultWorkspace string
}

// NewPreferencesService creates a new preferences service. defaultWorkspace
// is used until the user picks a folder.
func NewPreferencesService(db *gorm.DB, defaultWorkspace string) *PreferencesService {
	return &PreferencesService{db: db, defaultWorkspace: defaultWorkspace}
}

// GetPreferences gets the current user preferences
func (s *PreferencesService) GetPreferences() (*models.UserPreferencesData, error) {
	prefs, err := models.GetOrCreatePreferences(s.db)
	if err != nil {
		return nil, err
	}

	prefsData := prefs.GetPreferences()
	if prefsData.WorkspaceFolder == "" {
		prefsData.WorkspaceFolder = s.defaultWorkspace
	}
	return &prefsData, nil
}

// UpdatePreferences updates user preferences from a loosely typed payload.
// Unknown keys and values of the wrong type are ignored.
func (s *PreferencesService) UpdatePreferences(data map[string]interface{}) error {
	prefs, err := models.GetOrCreatePreferences(s.db)
	if err != nil {
		return err
	}

	currentPrefs := prefs.GetPreferences()

	if val, ok := data["workspace_folder"]; ok {
		if folder, ok := val.(string); ok {
			currentPrefs.WorkspaceFolder = folder
		}
	}

	if val, ok := data["default_quality"]; ok {
		if quality, ok := val.(float64); ok {
			if quality < 1 || quality > 100 {
				return fmt.Errorf("default_quality must be between 1 and 100")
			}
			currentPrefs.DefaultQuality = int(quality)
		}
	}

	if val, ok := data["default_convert_format"]; ok {
		if format, ok := val.(string); ok {
			currentPrefs.DefaultConvertFormat = format
		}
	}

	if val, ok := data["default_pdf_level"]; ok {
		if level, ok := val.(string); ok {
			if !operations.ValidLevel(level) {
				return fmt.Errorf("unknown pdf level %q", level)
			}
			currentPrefs.DefaultPDFLevel = level
		}
	}

	if val, ok := data["max_parallelism"]; ok {
		if n, ok := val.(float64); ok && n >= 0 {
			currentPrefs.MaxParallelism = int(n)
		}
	}

	if val, ok := data["open_after_process"]; ok {
		if open, ok := val.(bool); ok {
			currentPrefs.OpenAfterProcess = open
		}
	}

	// Save updated preferences
	if err := prefs.SetPreferences(currentPrefs); err != nil {
		return err
	}

	return s.db.Save(prefs).Error
}

// GetWorkspace returns the workspace folder, falling back to the default
func (s *PreferencesService) GetWorkspace() (string, error) {
	prefs, err := s.GetPreferences()
	if err != nil {
		return "", err
	}
	if prefs.WorkspaceFolder == "" {
		return "", ErrWorkspaceMissing
	}
	return prefs.WorkspaceFolder, nil
}

// SetWorkspace stores an absolute, existing directory as the workspace
func (s *PreferencesService) SetWorkspace(folder string) error {
	if !filepath.IsAbs(folder) {
		return fmt.Errorf("workspace folder must be absolute: %s", folder)
	}
	info, err := os.Stat(folder)
	if err != nil {
		return fmt.Errorf("workspace folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("workspace folder is not a directory: %s", folder)
	}
	return s.UpdatePreferences(map[string]interface{}{"workspace_folder": filepath.Clean(folder)})
}

// ResolveOutputDir returns outputDir when set, else the operation subdir
// below the workspace
func (s *PreferencesService) ResolveOutputDir(outputDir, subdir string) (string, error) {
	if outputDir != "" {
		return outputDir, nil
	}
	workspace, err := s.GetWorkspace()
	if err != nil {
		return "", err
	}
	if subdir == "" {
		subdir = "output"
	}
	dir := filepath.Join(workspace, subdir)
	if err := common.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("%w: %v", ErrOutputDir, err)
	}
	return dir, nil
}
