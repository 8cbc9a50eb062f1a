package application

func (a *App) OpenFileDialog(kind string) ([]string, error) {
	if a.dialogs == nil {
		return nil, ErrNotReady
	}
	return a.dialogs.OpenFileDialog(kind)
}

func (a *App) OpenDirectoryDialog() (string, error) {
	if a.dialogs == nil {
		return "", ErrNotReady
	}
	return a.dialogs.OpenDirectoryDialog()
}

func (a *App) ShowSaveDialog(filename string) (string, error) {
	if a.dialogs == nil {
		return "", ErrNotReady
	}
	return a.dialogs.ShowSaveDialog(filename)
}

func (a *App) OpenFile(filePath string) error {
	if a.dialogs == nil {
		return ErrNotReady
	}
	return a.dialogs.OpenFile(filePath)
}
