package application

import (
	"pixbatch/internal/models"
)

func (a *App) GetPreferences() (*models.UserPreferencesData, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	prefs, err := a.container.GetPreferencesService().GetPreferences()
	if err != nil {
		return nil, NewPreferencesError("load", err)
	}
	return prefs, nil
}

// UpdatePreferences stores the changed keys and applies a new parallelism
// override to later batches
func (a *App) UpdatePreferences(data map[string]interface{}) error {
	if err := a.ready(); err != nil {
		return err
	}
	prefsService := a.container.GetPreferencesService()
	if err := prefsService.UpdatePreferences(data); err != nil {
		return NewPreferencesError("update", err)
	}

	if _, ok := data["max_parallelism"]; ok {
		prefs, err := prefsService.GetPreferences()
		if err != nil {
			return NewPreferencesError("load", err)
		}
		parallelism := prefs.MaxParallelism
		if parallelism == 0 {
			parallelism = a.config.MaxParallelism
		}
		a.container.GetBatchService().SetMaxParallelism(parallelism)
	}
	return nil
}

func (a *App) GetWorkspace() (string, error) {
	if err := a.ready(); err != nil {
		return "", err
	}
	return a.container.GetPreferencesService().GetWorkspace()
}

func (a *App) SetWorkspace(folder string) error {
	if err := a.ready(); err != nil {
		return err
	}
	if err := a.container.GetPreferencesService().SetWorkspace(folder); err != nil {
		return NewPreferencesError("set workspace", err)
	}
	return nil
}
