package dialgui

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kirsle/configdir"
	"github.com/spf13/viper"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	"github.com/Red-M/dialgui/pkg/dialgui/util"
)

// CanonicalConfig provides application-wide access to configuration fields,
// as well as loading/file watching logic for dialgui's configuration file
type CanonicalConfig struct {
	Binding BindingConfig

	SliderMapping *inputMap
	ButtonMapping *inputMap

	Widgets []WidgetSpec
	Groups  []GroupSpec

	SerialConnectionInfo SerialInfo
	HidConnectionInfo    HIDInfo

	EnableHidListen     bool
	InvertSliders       bool
	NoiseReductionLevel string

	// guards the fields above while reloads rewrite them
	lock sync.RWMutex

	logger             *zap.SugaredLogger
	notifier           Notifier
	stopWatcherChannel chan bool

	reloadConsumers []chan bool

	configDir  string
	userConfig *viper.Viper
}

// SerialInfo is the serial port a SerialIO connects to
type SerialInfo struct {
	COMPort  string
	BaudRate int
}

// HIDInfo selects the HID device a HIDRAW connects to
type HIDInfo struct {
	VendorID  uint16
	ProductID uint16
	UsagePage uint16
	Usage     uint16
}

// WidgetSpec declares a single widget of the control panel
type WidgetSpec struct {
	Property string      `mapstructure:"property"`
	Label    string      `mapstructure:"label"`
	Kind     string      `mapstructure:"kind"`
	Min      float64     `mapstructure:"min"`
	Max      float64     `mapstructure:"max"`
	Options  []string    `mapstructure:"options"`
	Value    interface{} `mapstructure:"value"`
}

// GroupSpec declares a named group of widgets
type GroupSpec struct {
	Name    string       `mapstructure:"name"`
	Widgets []WidgetSpec `mapstructure:"widgets"`
}

const (
	appName = "dialgui"

	userConfigName = "config"
	configType     = "yaml"

	configKeyDBRef               = "db_ref"
	configKeyNextRef             = "next_ref"
	configKeyPrevRef             = "prev_ref"
	configKeyValueRef            = "value_ref"
	configKeyDialRef             = "dial_ref"
	configKeyUsePrevNext         = "use_prev_next"
	configKeySimpleGUI           = "simple_gui"
	configKeyHideDelay           = "hide_delay"
	configKeySliderMapping       = "slider_mapping"
	configKeyButtonMapping       = "button_mapping"
	configKeyWidgets             = "widgets"
	configKeyGroups              = "groups"
	configKeyInvertSliders       = "invert_sliders"
	configKeyCOMPort             = "com_port"
	configKeyBaudRate            = "baud_rate"
	configKeyNoiseReductionLevel = "noise_reduction"
	configKeyVendorID            = "vendor_id"
	configKeyProductID           = "product_id"
	configKeyUsagePage           = "usage_page"
	configKeyUsage               = "usage"
	configKeyEnableHID           = "enable_hid_listen"

	defaultCOMPort  = "COM4"
	defaultBaudRate = 9600

	noiseReductionLow     = "low"
	noiseReductionDefault = "default"
	noiseReductionHigh    = "high"
)

var noiseReductionLevels = []string{noiseReductionLow, noiseReductionDefault, noiseReductionHigh}

var defaultButtonMapping = map[string]string{
	"0": defaultPrevRef,
	"1": defaultNextRef,
}

// DefaultConfigDir returns the per-user directory dialgui keeps its configuration and logs in
func DefaultConfigDir() string {
	return configdir.LocalConfig(appName)
}

// NewConfig creates a config instance for the dialgui object and sets up viper for the config file in configDir
func NewConfig(logger *zap.SugaredLogger, notifier Notifier, configDir string) (*CanonicalConfig, error) {
	logger = logger.Named("config")

	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	if err := util.EnsureDirExists(configDir); err != nil {
		logger.Warnw("Failed to create config directory", "path", configDir, "error", err)
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}

	cc := &CanonicalConfig{
		logger:             logger,
		notifier:           notifier,
		reloadConsumers:    []chan bool{},
		stopWatcherChannel: make(chan bool),
		configDir:          configDir,
	}

	userConfig := viper.New()
	userConfig.SetConfigName(userConfigName)
	userConfig.SetConfigType(configType)
	userConfig.AddConfigPath(configDir)

	userConfig.SetDefault(configKeyDBRef, defaultRootRef)
	userConfig.SetDefault(configKeyNextRef, defaultNextRef)
	userConfig.SetDefault(configKeyPrevRef, defaultPrevRef)
	userConfig.SetDefault(configKeyUsePrevNext, false)
	userConfig.SetDefault(configKeySimpleGUI, false)
	userConfig.SetDefault(configKeyHideDelay, defaultHideDelay)
	userConfig.SetDefault(configKeySliderMapping, map[string]string{})
	userConfig.SetDefault(configKeyButtonMapping, defaultButtonMapping)
	userConfig.SetDefault(configKeyInvertSliders, false)
	userConfig.SetDefault(configKeyCOMPort, defaultCOMPort)
	userConfig.SetDefault(configKeyBaudRate, defaultBaudRate)
	userConfig.SetDefault(configKeyNoiseReductionLevel, noiseReductionDefault)
	userConfig.SetDefault(configKeyEnableHID, false)

	cc.userConfig = userConfig

	logger.Debug("Created config instance")

	return cc, nil
}

// Path returns the location of the user config file
func (cc *CanonicalConfig) Path() string {
	return filepath.Join(cc.configDir, userConfigName+"."+configType)
}

// Dir returns the directory holding the user config file
func (cc *CanonicalConfig) Dir() string {
	return cc.configDir
}

// Load reads dialgui's config file from disk and tries to parse it
func (cc *CanonicalConfig) Load() error {
	configPath := cc.Path()
	cc.logger.Debugw("Loading config", "path", configPath)

	// make sure it exists
	if !util.FileExists(configPath) {
		cc.logger.Warnw("Config file not found", "path", configPath)
		cc.notifier.Notify("Can't find configuration!",
			fmt.Sprintf("Config must be located at %s . Please re-launch", configPath))

		return fmt.Errorf("config file doesn't exist: %s", configPath)
	}

	if err := cc.userConfig.ReadInConfig(); err != nil {
		cc.logger.Warnw("Viper failed to read user config", "error", err)

		// if the error is yaml-format-related, show a sensible error. otherwise, show 'em to the logs
		if strings.Contains(err.Error(), "yaml:") {
			cc.notifier.Notify("Invalid configuration!",
				fmt.Sprintf("Please make sure %s is in a valid YAML format.", configPath))
		} else {
			cc.notifier.Notify("Error loading configuration!", "Please check dialgui's logs for more details.")
		}

		return fmt.Errorf("read user config: %w", err)
	}

	if err := cc.populateFromViper(); err != nil {
		cc.logger.Warnw("Failed to populate config fields", "error", err)
		return fmt.Errorf("populate config fields: %w", err)
	}

	cc.logger.Info("Loaded config successfully")
	cc.logger.Infow("Config values",
		"binding", cc.Binding,
		"sliderMapping", cc.SliderMapping,
		"buttonMapping", cc.ButtonMapping,
		"serialConnectionInfo", cc.Serial(),
		"hidConnectionInfo", cc.HID(),
		"invertSliders", cc.SlidersInverted(),
		"widgets", len(cc.Widgets),
		"groups", len(cc.Groups))

	return nil
}

// SubscribeToChanges allows external components to receive updates when the config is reloaded
func (cc *CanonicalConfig) SubscribeToChanges() chan bool {
	c := make(chan bool)
	cc.reloadConsumers = append(cc.reloadConsumers, c)

	return c
}

// WatchConfigFileChanges starts watching for configuration file changes
// and attempts reloading the config when they happen
func (cc *CanonicalConfig) WatchConfigFileChanges() {
	cc.logger.Debugw("Starting to watch user config file for changes", "path", cc.Path())

	const (
		minTimeBetweenReloadAttempts = time.Millisecond * 500
		delayBetweenEventAndReload   = time.Millisecond * 50
	)

	lastAttemptedReload := time.Now()

	// establish watch using viper as opposed to doing it ourselves, though our internal cooldown is still required
	cc.userConfig.WatchConfig()
	cc.userConfig.OnConfigChange(func(event fsnotify.Event) {

		// when we get a write event...
		if event.Op&fsnotify.Write == fsnotify.Write {

			now := time.Now()

			// ... check if it's not a duplicate (many editors will write to a file twice)
			if lastAttemptedReload.Add(minTimeBetweenReloadAttempts).Before(now) {

				cc.logger.Debugw("Config file modified, attempting reload", "event", event)

				// wait a bit to let the editor actually flush the new file contents to disk
				<-time.After(delayBetweenEventAndReload)

				if err := cc.Load(); err != nil {
					cc.logger.Warnw("Failed to reload config file", "error", err)
				} else {
					cc.logger.Info("Reloaded config successfully")
					cc.notifier.Notify("Configuration reloaded!",
						"Device settings were applied. Widget and binding changes apply after a restart.")

					cc.onConfigReloaded()
				}

				lastAttemptedReload = now
			}
		}
	})

	// wait till they stop us
	<-cc.stopWatcherChannel
	cc.logger.Debug("Stopping user config file watcher")
	cc.userConfig.OnConfigChange(nil)
}

// StopWatchingConfigFile signals our filesystem watcher to stop
func (cc *CanonicalConfig) StopWatchingConfigFile() {
	cc.stopWatcherChannel <- true
}

// Serial returns the current serial connection info
func (cc *CanonicalConfig) Serial() SerialInfo {
	cc.lock.RLock()
	defer cc.lock.RUnlock()

	return cc.SerialConnectionInfo
}

// HID returns the current HID connection info
func (cc *CanonicalConfig) HID() HIDInfo {
	cc.lock.RLock()
	defer cc.lock.RUnlock()

	return cc.HidConnectionInfo
}

// SlidersInverted reports whether slider positions are flipped
func (cc *CanonicalConfig) SlidersInverted() bool {
	cc.lock.RLock()
	defer cc.lock.RUnlock()

	return cc.InvertSliders
}

// NoiseReductionThreshold returns the minimal slider movement worth reporting
func (cc *CanonicalConfig) NoiseReductionThreshold() float64 {
	cc.lock.RLock()
	level := cc.NoiseReductionLevel
	cc.lock.RUnlock()

	switch level {
	case noiseReductionLow:
		return 0.015
	case noiseReductionHigh:
		return 0.035
	default:
		return 0.025
	}
}

func (cc *CanonicalConfig) populateFromViper() error {
	binding := cc.bindingFromViper()

	var widgets []WidgetSpec
	if err := cc.userConfig.UnmarshalKey(configKeyWidgets, &widgets); err != nil {
		return fmt.Errorf("parse %s: %w", configKeyWidgets, err)
	}

	var groups []GroupSpec
	if err := cc.userConfig.UnmarshalKey(configKeyGroups, &groups); err != nil {
		return fmt.Errorf("parse %s: %w", configKeyGroups, err)
	}

	enableHID := cc.userConfig.GetBool(configKeyEnableHID)

	hidInfo := HIDInfo{
		ProductID: uint16(cc.userConfig.GetUint32(configKeyProductID)),
		VendorID:  uint16(cc.userConfig.GetUint32(configKeyVendorID)),
		UsagePage: uint16(cc.userConfig.GetUint32(configKeyUsagePage)),
		Usage:     uint16(cc.userConfig.GetUint32(configKeyUsage)),
	}

	serialInfo := SerialInfo{
		COMPort:  cc.userConfig.GetString(configKeyCOMPort),
		BaudRate: cc.userConfig.GetInt(configKeyBaudRate),
	}

	if serialInfo.BaudRate <= 0 && !enableHID {
		cc.logger.Warnw("Invalid baud rate specified, using default value",
			"key", configKeyBaudRate,
			"invalidValue", serialInfo.BaudRate,
			"defaultValue", defaultBaudRate)

		serialInfo.BaudRate = defaultBaudRate
	}

	noiseReductionLevel := strings.ToLower(cc.userConfig.GetString(configKeyNoiseReductionLevel))
	if !funk.ContainsString(noiseReductionLevels, noiseReductionLevel) {
		cc.logger.Warnw("Invalid noise reduction level specified, using default value",
			"key", configKeyNoiseReductionLevel,
			"invalidValue", noiseReductionLevel,
			"validValues", noiseReductionLevels)

		noiseReductionLevel = noiseReductionDefault
	}

	cc.lock.Lock()
	defer cc.lock.Unlock()

	cc.Binding = binding
	cc.Widgets = widgets
	cc.Groups = groups
	cc.EnableHidListen = enableHID
	cc.HidConnectionInfo = hidInfo
	cc.SerialConnectionInfo = serialInfo
	cc.InvertSliders = cc.userConfig.GetBool(configKeyInvertSliders)
	cc.NoiseReductionLevel = noiseReductionLevel

	// mappings are created on the first load and refreshed in place afterwards
	sliderMapping := refreshInputMap(cc.SliderMapping, cc.userConfig.GetStringMapString(configKeySliderMapping))
	if cc.SliderMapping == nil {
		cc.SliderMapping = sliderMapping
	}

	buttonMapping := refreshInputMap(cc.ButtonMapping, cc.userConfig.GetStringMapString(configKeyButtonMapping))
	if cc.ButtonMapping == nil {
		cc.ButtonMapping = buttonMapping
	}

	cc.logger.Debug("Populated config fields from viper")

	return nil
}

func (cc *CanonicalConfig) bindingFromViper() BindingConfig {
	valueRef := cc.userConfig.GetString(configKeyValueRef)
	if valueRef == "" {
		// older configs name the scalar channel after the dial
		valueRef = cc.userConfig.GetString(configKeyDialRef)
	}

	return BindingConfig{
		Root:        cc.userConfig.GetString(configKeyDBRef),
		Next:        cc.userConfig.GetString(configKeyNextRef),
		Prev:        cc.userConfig.GetString(configKeyPrevRef),
		Value:       valueRef,
		UsePrevNext: cc.userConfig.GetBool(configKeyUsePrevNext),
		SimpleGUI:   cc.userConfig.GetBool(configKeySimpleGUI),
		HideDelay:   cc.userConfig.GetDuration(configKeyHideDelay),
	}.WithDefaults()
}

func (cc *CanonicalConfig) onConfigReloaded() {
	cc.logger.Debug("Notifying consumers about configuration reload")

	for _, consumer := range cc.reloadConsumers {
		consumer <- true
	}
}
