package dialgui

import (
	"fmt"
	"strings"
	"time"

	"github.com/sstallion/go-hid"
	"go.uber.org/zap"
)

const (
	hidReportSize = 32

	// first byte of every report dialgui understands
	hidSliderCommand = 0xFD
	hidButtonCommand = 0xFE
	hidKeepAlive     = 0xDD

	hidSliderStep = 0.05
)

// HIDRAW provides a dialgui-aware abstraction to communicate over HID_RAW.
// Encoders report steps ({0xFD, slider, 0 = down}), buttons report state ({0xFE, button, 1 = pressed})
type HIDRAW struct {
	vendorID  uint16
	productID uint16
	usagePage uint16
	usage     uint16

	config  *CanonicalConfig
	logger  *zap.SugaredLogger
	verbose bool

	stopChannel chan bool
	connected   bool
	hidDevice   *hid.Device

	sliderPositions map[int]float32

	sliderMoveConsumers []chan SliderMoveEvent
	buttonConsumers     []chan ButtonEvent
}

// NewHIDRAW creates a HIDRAW instance that uses the provided config for connection info
func NewHIDRAW(config *CanonicalConfig, logger *zap.SugaredLogger, verbose bool) (*HIDRAW, error) {
	logger = logger.Named("hid_raw")

	hidraw := &HIDRAW{
		config:              config,
		logger:              logger,
		verbose:             verbose,
		connected:           false,
		hidDevice:           nil,
		stopChannel:         make(chan bool),
		sliderPositions:     map[int]float32{},
		sliderMoveConsumers: []chan SliderMoveEvent{},
		buttonConsumers:     []chan ButtonEvent{},
	}

	logger.Debug("Created hid_raw instance")

	hidraw.setupOnConfigReload()

	return hidraw, nil
}

// Start finds the configured HID device and starts reading its reports
func (hidraw *HIDRAW) Start() error {

	// don't allow multiple concurrent connections
	if hidraw.connected {
		hidraw.logger.Warn("Already connected, can't start another without closing first")
		return fmt.Errorf("hid_raw: %w", ErrAlreadyConnected)
	}

	if err := hid.Init(); err != nil {
		hidraw.logger.Warnw("Failed to initialize hid library", "error", err)
		return fmt.Errorf("init hid: %w", err)
	}

	info := hidraw.config.HID()
	hidraw.vendorID = info.VendorID
	hidraw.productID = info.ProductID
	hidraw.usagePage = info.UsagePage
	hidraw.usage = info.Usage

	var hidDeviceInfo *hid.DeviceInfo
	err := hid.Enumerate(info.VendorID, info.ProductID,
		func(candidate *hid.DeviceInfo) error {
			if candidate.UsagePage == info.UsagePage && candidate.Usage == info.Usage {
				hidDeviceInfo = candidate
			}
			return nil
		},
	)
	if err != nil {
		hidraw.logger.Warnw("Failed to enumerate hid devices", "error", err)
		return fmt.Errorf("enumerate hid devices: %w", err)
	}

	if hidDeviceInfo == nil {
		hidraw.logger.Warnw("Could not find hidraw device",
			"vendor_id", info.VendorID,
			"product_id", info.ProductID,
			"usage_page", info.UsagePage,
			"usage", info.Usage)
		return fmt.Errorf("hid_raw: %w", ErrDeviceNotFound)
	}

	hidraw.logger.Debugw("Attempting to connect to hidraw device",
		"device", hidDeviceInfo.ProductStr,
		"manufacturer", hidDeviceInfo.MfrStr,
		"path", hidDeviceInfo.Path)

	hidraw.hidDevice, err = hid.OpenPath(hidDeviceInfo.Path)
	if err != nil {
		hidraw.logger.Warnw("Failed to open HID connection", "error", err)
		return fmt.Errorf("open HID connection: %w", err)
	}

	namedLogger := hidraw.logger.Named(strings.ToLower(
		fmt.Sprintf("%v:%v", hidDeviceInfo.MfrStr, hidDeviceInfo.ProductStr),
	))

	namedLogger.Info("Connected")
	hidraw.connected = true

	// read hid_raw reports or await a stop
	go func() {
		reportChannel := hidraw.readHID(namedLogger)

		for {
			select {
			case <-hidraw.stopChannel:
				hidraw.close(namedLogger)
				return
			case report := <-reportChannel:
				hidraw.handleReport(namedLogger, report)
			}
		}
	}()

	return nil
}

// Stop signals the read loop to close the device, if one is open
func (hidraw *HIDRAW) Stop() {
	if hidraw.connected {
		hidraw.logger.Debug("Shutting down hid_raw connection")
		hidraw.stopChannel <- true
	} else {
		hidraw.logger.Debug("Not currently connected")
	}
}

// SubscribeToSliderMoveEvents returns an unbuffered channel that receives
// a sliderMoveEvent struct every time a slider moves
func (hidraw *HIDRAW) SubscribeToSliderMoveEvents() chan SliderMoveEvent {
	ch := make(chan SliderMoveEvent)
	hidraw.sliderMoveConsumers = append(hidraw.sliderMoveConsumers, ch)

	return ch
}

// SubscribeToButtonEvents returns an unbuffered channel that receives
// a ButtonEvent every time a button changes state
func (hidraw *HIDRAW) SubscribeToButtonEvents() chan ButtonEvent {
	ch := make(chan ButtonEvent)
	hidraw.buttonConsumers = append(hidraw.buttonConsumers, ch)

	return ch
}

func (hidraw *HIDRAW) readHID(logger *zap.SugaredLogger) chan []byte {
	ch := make(chan []byte, hidReportSize)

	go func() {
		for {
			report := make([]byte, hidReportSize)
			if _, err := hidraw.hidDevice.Read(report); err != nil {

				if hidraw.verbose {
					logger.Warnw("Failed to read report", "error", err)
				}

				return
			}

			ch <- report
		}
	}()

	return ch
}

func (hidraw *HIDRAW) handleReport(logger *zap.SugaredLogger, report []byte) {
	if len(report) < 3 {
		return
	}

	switch report[0] {
	case hidSliderCommand:
		if report[1] == hidKeepAlive {
			logger.Debug("Got keep-alive report")
			return
		}

		slider := int(report[1])
		down := report[2] == 0

		position := hidraw.stepSlider(slider, down)

		for _, consumer := range hidraw.sliderMoveConsumers {
			consumer <- SliderMoveEvent{
				SliderID:     slider,
				PercentValue: position,
			}
		}

	case hidButtonCommand:
		event := ButtonEvent{ButtonID: int(report[1])}
		if report[2] != 0 {
			event.Value = 1
		}

		for _, consumer := range hidraw.buttonConsumers {
			consumer <- event
		}
	}
}

// stepSlider moves a slider's tracked position one step, staying within [0,1]
func (hidraw *HIDRAW) stepSlider(slider int, down bool) float32 {
	position := hidraw.sliderPositions[slider]

	if down {
		position -= hidSliderStep
	} else {
		position += hidSliderStep
	}

	if position < 0 {
		position = 0
	} else if position > 1 {
		position = 1
	}

	if hidraw.config.SlidersInverted() {
		hidraw.sliderPositions[slider] = position
		return 1 - position
	}

	hidraw.sliderPositions[slider] = position
	return position
}

func (hidraw *HIDRAW) close(logger *zap.SugaredLogger) {
	if err := hidraw.hidDevice.Close(); err != nil {
		logger.Warnw("Failed to close hid_raw connection", "error", err)
	} else {
		logger.Debug("hid_raw connection closed")
	}

	hidraw.hidDevice = nil
	hidraw.connected = false

	if err := hid.Exit(); err != nil {
		logger.Warnw("Failed to release hid library", "error", err)
	}
}

func (hidraw *HIDRAW) setupOnConfigReload() {
	configReloadedChannel := hidraw.config.SubscribeToChanges()

	const stopDelay = 50 * time.Millisecond

	go func() {
		for range configReloadedChannel {
			info := hidraw.config.HID()

			if info.ProductID != hidraw.productID ||
				info.VendorID != hidraw.vendorID ||
				info.UsagePage != hidraw.usagePage ||
				info.Usage != hidraw.usage {

				hidraw.logger.Info("Detected change in connection parameters, attempting to renew connection")
				hidraw.Stop()

				// let the connection close
				<-time.After(stopDelay)

				if err := hidraw.Start(); err != nil {
					hidraw.logger.Warnw("Failed to renew connection after parameter change", "error", err)
				} else {
					hidraw.logger.Debug("Renewed connection successfully")
				}
			}
		}
	}()
}
