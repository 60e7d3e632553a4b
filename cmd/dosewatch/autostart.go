package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"
	"go.uber.org/zap"
)

// parseAutostartMode maps the -autostart flag value onto the desired state
func parseAutostartMode(mode string) (bool, error) {
	switch mode {
	case "install":
		return true, nil
	case "remove":
		return false, nil
	}
	return false, fmt.Errorf("invalid -autostart value %q (want install or remove)", mode)
}

// setupAutostart brings the OS login-item registration in line with the
// configured auto_start flag
func setupAutostart(enable bool, log *zap.Logger) error {
	execPath, err := os.Executable()
	if err != nil {
		return err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return err
	}

	app := &autostart.App{
		Name:        "dosewatch",
		DisplayName: "DoseWatch",
		Exec:        []string{execPath},
	}

	if enable {
		if !app.IsEnabled() {
			if err := app.Enable(); err != nil {
				return err
			}
			log.Info("autostart enabled")
		}
		return nil
	}
	if app.IsEnabled() {
		if err := app.Disable(); err != nil {
			return err
		}
		log.Info("autostart disabled")
	}
	return nil
}
