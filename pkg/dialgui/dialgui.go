// Package dialgui binds an on-screen control panel to a realtime key-value store, so that
// physical dials and buttons or remote clients can drive the panel's widgets
package dialgui

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Red-M/dialgui/pkg/dialgui/store"
	"github.com/Red-M/dialgui/pkg/dialgui/util"
)

const (

	// when this is set to anything, dialgui won't use a tray icon
	envNoTray = "DIALGUI_NO_TRAY_ICON"
)

// DialGUI is the main entity managing access to all sub-components
type DialGUI struct {
	logger   *zap.SugaredLogger
	notifier Notifier
	config   *CanonicalConfig
	store    store.Store

	panel      *Panel
	registry   *Registry
	binding    *Binding
	bridge     *Bridge
	connection DeviceConnection
	view       *PanelView

	ctx    context.Context
	cancel context.CancelFunc

	stopChannel chan bool
	version     string
	verbose     bool
	headless    bool
	trayRunning bool
}

// NewDialGUI creates a DialGUI instance reading its config from configDir (the per-user default when empty)
func NewDialGUI(logger *zap.SugaredLogger, configDir string, verbose bool, headless bool) (*DialGUI, error) {
	logger = logger.Named("dialgui")

	notifier, err := NewToastNotifier(logger)
	if err != nil {
		logger.Errorw("Failed to create ToastNotifier", "error", err)
		return nil, fmt.Errorf("create new ToastNotifier: %w", err)
	}

	config, err := NewConfig(logger, notifier, configDir)
	if err != nil {
		logger.Errorw("Failed to create Config", "error", err)
		return nil, fmt.Errorf("create new Config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &DialGUI{
		logger:      logger,
		notifier:    notifier,
		config:      config,
		store:       store.NewMemory(logger),
		registry:    NewRegistry(),
		ctx:         ctx,
		cancel:      cancel,
		stopChannel: make(chan bool, 1),
		verbose:     verbose,
		headless:    headless,
	}

	logger.Debug("Created dialgui instance")

	return d, nil
}

// Initialize sets up components and starts to run in the background
func (d *DialGUI) Initialize() error {
	d.logger.Debug("Initializing")

	// load the config for the first time
	if err := d.config.Load(); err != nil {
		d.logger.Errorw("Failed to load config during initialization", "error", err)
		return fmt.Errorf("load config during init: %w", err)
	}

	if err := d.setupPanel(); err != nil {
		d.logger.Errorw("Failed to set up panel", "error", err)
		return fmt.Errorf("set up panel: %w", err)
	}

	// the binding's paths and mode are fixed from here on, later reloads only reach the devices
	bindingConfig := d.config.Binding
	d.binding = NewBinding(d.logger, bindingConfig, d.store, d.registry, d.panel)
	d.bridge = NewBridge(d.logger, d.config, bindingConfig, d.store)

	connection, err := d.newConnection()
	if err != nil {
		d.logger.Errorw("Failed to create device connection", "error", err)
		return fmt.Errorf("create device connection: %w", err)
	}
	d.connection = connection

	if !d.headless {
		d.view = NewPanelView(d.logger, d.panel, newStoreController(d.logger, bindingConfig, d.store, d.registry, d.binding.Reveal))
	}

	d.setupInterruptHandler()

	// decide whether to run with/without tray
	if _, noTraySet := os.LookupEnv(envNoTray); noTraySet {
		d.logger.Debugw("Running without tray icon", "reason", "envvar set")
		d.run()
	} else {
		d.initializeTray(d.run)
	}

	return nil
}

// SetVersion causes dialgui to add a version string to its tray menu if called before Initialize
func (d *DialGUI) SetVersion(version string) {
	d.version = version
}

// Verbose returns a boolean indicating whether dialgui is running in verbose mode
func (d *DialGUI) Verbose() bool {
	return d.verbose
}

func (d *DialGUI) setupPanel() error {
	panel, err := NewPanelFromConfig(d.logger, d.config.Widgets, d.config.Groups)
	if err != nil {
		return fmt.Errorf("create panel: %w", err)
	}

	if err := d.registry.Build(panel); err != nil {
		return fmt.Errorf("register widgets: %w", err)
	}

	d.panel = panel
	d.logger.Infow("Registered widgets", "keys", d.registry.Keys())

	return nil
}

func (d *DialGUI) newConnection() (DeviceConnection, error) {
	if d.config.EnableHidListen {
		return NewHIDRAW(d.config, d.logger, d.verbose)
	}

	return NewSerialIO(d.config, d.logger, d.verbose)
}

func (d *DialGUI) setupInterruptHandler() {
	interruptChannel := util.SetupCloseHandler()

	go func() {
		signal := <-interruptChannel
		d.logger.Debugw("Interrupted", "signal", signal)
		d.signalStop()
	}()
}

func (d *DialGUI) run() {
	d.logger.Info("Run loop starting")

	// watch the config file for changes
	go d.config.WatchConfigFileChanges()

	if err := d.binding.Start(d.ctx); err != nil {
		d.logger.Errorw("Failed to start binding", "error", err)
		d.notifier.Notify("Can't start dialgui!", "Please check dialgui's logs for more details.")
		d.exit(1)
	}

	d.bridge.Attach(d.ctx, d.connection)

	// connect to the device for the first time
	go d.connect()

	if d.view != nil {
		go func() {
			if err := d.view.Run(); err != nil {
				d.logger.Warnw("Panel view failed", "error", err)
			}
			d.signalStop()
		}()
	}

	// wait until stopped (gracefully)
	<-d.stopChannel
	d.logger.Debug("Stop channel signaled, terminating")

	if err := d.stop(); err != nil {
		d.logger.Warnw("Failed to stop dialgui", "error", err)
		d.exit(1)
	}

	d.exit(0)
}

func (d *DialGUI) connect() {
	err := d.connection.Start()
	if err == nil {
		return
	}

	d.logger.Warnw("Failed to start first-time device connection", "error", err)

	port := d.config.Serial().COMPort

	switch {
	case errors.Is(err, os.ErrPermission):
		d.logger.Warnw("Serial port seems busy, notifying user", "comPort", port)
		d.notifier.Notify(fmt.Sprintf("Can't connect to %s!", port),
			"This serial port is busy, make sure to close any serial monitor or other dialgui instance.")

	case errors.Is(err, os.ErrNotExist):
		d.logger.Warnw("Provided COM port seems wrong, notifying user", "comPort", port)
		d.notifier.Notify(fmt.Sprintf("Can't connect to %s!", port),
			"This serial port doesn't exist, check your configuration and make sure it's set correctly.")

	case errors.Is(err, ErrDeviceNotFound):
		d.notifier.Notify("Can't find your HID device!",
			"Check the vendor, product and usage ids in your configuration.")

	default:
		return
	}

	// without the on-screen panel there's nothing left to drive the widgets
	if d.view == nil {
		d.signalStop()
	}
}

func (d *DialGUI) signalStop() {
	d.logger.Debug("Signalling stop channel")

	// several components may ask to stop, only the first one matters
	select {
	case d.stopChannel <- true:
	default:
	}
}

func (d *DialGUI) stop() error {
	d.logger.Info("Stopping")

	d.stopInput()
	d.config.StopWatchingConfigFile()

	if d.view != nil {
		d.view.Quit()
	}

	<-d.binding.Done()

	d.stopTray()

	// attempt to sync on exit - this won't necessarily work but can't harm
	_ = d.logger.Sync()

	return nil
}

// stopInput stops the device while the bridge still drains its events, then detaches the bridge and binding
func (d *DialGUI) stopInput() {
	d.connection.Stop()
	d.cancel()
}

func (d *DialGUI) exit(code int) {
	os.Exit(code)
}
