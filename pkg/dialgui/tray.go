package dialgui

import (
	"fyne.io/systray"

	"github.com/Red-M/dialgui/pkg/dialgui/util"
)

func (d *DialGUI) initializeTray(onDone func()) {
	logger := d.logger.Named("tray")

	onReady := func() {
		logger.Debug("Tray instance ready")

		systray.SetTitle("dialgui")
		systray.SetTooltip("dialgui")

		editConfig := systray.AddMenuItem("Edit configuration", "Open config file with your editor")
		quit := systray.AddMenuItem("Quit", "Stop dialgui and quit")

		// add version info, if we have it
		if d.version != "" {
			systray.AddSeparator()
			versionInfo := systray.AddMenuItem(d.version, "")
			versionInfo.Disable()
		}

		// wait on things to happen
		go func() {
			for {
				select {

				// quit
				case <-quit.ClickedCh:
					logger.Info("Quit menu item clicked, stopping")
					d.signalStop()

				// edit config
				case <-editConfig.ClickedCh:
					logger.Info("Edit config menu item clicked, opening config for editing")

					if err := util.OpenExternal(logger, d.config.Path()); err != nil {
						logger.Warnw("Failed to open config file for editing", "error", err)
					}
				}
			}
		}()

		// actually start the main runtime
		go onDone()
	}

	onExit := func() {
		logger.Debug("Tray exited")
	}

	// start the tray icon
	logger.Debug("Running in tray")
	d.trayRunning = true
	systray.Run(onReady, onExit)
}

func (d *DialGUI) stopTray() {
	if !d.trayRunning {
		return
	}

	d.logger.Debug("Quitting tray")
	systray.Quit()
}
