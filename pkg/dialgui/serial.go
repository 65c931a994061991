package dialgui

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jacobsa/go-serial/serial"
	"go.uber.org/zap"

	"github.com/Red-M/dialgui/pkg/dialgui/util"
)

const (
	maxSliderReading = 1023
	buttonLinePrefix = "B:"
)

var (
	sliderLinePattern = regexp.MustCompile(`^\d{1,4}(\|\d{1,4})*\r?\n$`)
	buttonLinePattern = regexp.MustCompile(`^B:[01](\|[01])*\r?\n$`)
)

// SerialIO provides a dialgui-aware abstraction layer to managing serial I/O.
// Devices send slider lines ("512|1023|0") and button lines ("B:0|1")
type SerialIO struct {
	config  *CanonicalConfig
	logger  *zap.SugaredLogger
	verbose bool

	comPort  string
	baudRate uint

	stopChannel chan bool
	connected   bool
	connOptions serial.OpenOptions
	conn        io.ReadWriteCloser

	lastKnownNumSliders        int
	currentSliderPercentValues []float32
	currentButtonValues        []int

	sliderMoveConsumers []chan SliderMoveEvent
	buttonConsumers     []chan ButtonEvent
}

// NewSerialIO creates a SerialIO instance that uses the provided config for connection info
func NewSerialIO(config *CanonicalConfig, logger *zap.SugaredLogger, verbose bool) (*SerialIO, error) {
	logger = logger.Named("serial")

	sio := &SerialIO{
		config:              config,
		logger:              logger,
		verbose:             verbose,
		stopChannel:         make(chan bool),
		connected:           false,
		conn:                nil,
		sliderMoveConsumers: []chan SliderMoveEvent{},
		buttonConsumers:     []chan ButtonEvent{},
	}

	logger.Debug("Created serial i/o instance")

	sio.setupOnConfigReload()

	return sio, nil
}

// Start attempts to connect to our device
func (sio *SerialIO) Start() error {

	// don't allow multiple concurrent connections
	if sio.connected {
		sio.logger.Warn("Already connected, can't start another without closing first")
		return fmt.Errorf("serial: %w", ErrAlreadyConnected)
	}

	info := sio.config.Serial()
	sio.comPort = info.COMPort
	sio.baudRate = uint(info.BaudRate)

	sio.connOptions = serial.OpenOptions{
		PortName:        sio.comPort,
		BaudRate:        sio.baudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 0,
	}

	sio.logger.Debugw("Attempting serial connection",
		"comPort", sio.connOptions.PortName,
		"baudRate", sio.connOptions.BaudRate,
		"minReadSize", sio.connOptions.MinimumReadSize)

	var err error
	sio.conn, err = serial.Open(sio.connOptions)
	if err != nil {
		sio.logger.Warnw("Failed to open serial connection", "error", err)
		return fmt.Errorf("open serial connection: %w", err)
	}

	namedLogger := sio.logger.Named(strings.ToLower(sio.connOptions.PortName))

	namedLogger.Infow("Connected", "conn", sio.conn)
	sio.connected = true

	// read lines or await a stop
	go func() {
		connReader := bufio.NewReader(sio.conn)
		lineChannel := sio.readLine(namedLogger, connReader)

		for {
			select {
			case <-sio.stopChannel:
				sio.close(namedLogger)
				return
			case line := <-lineChannel:
				sio.handleLine(namedLogger, line)
			}
		}
	}()

	return nil
}

// Stop signals us to shut down our serial connection, if one is active
func (sio *SerialIO) Stop() {
	if sio.connected {
		sio.logger.Debug("Shutting down serial connection")
		sio.stopChannel <- true
	} else {
		sio.logger.Debug("Not currently connected, nothing to stop")
	}
}

// SubscribeToSliderMoveEvents returns an unbuffered channel that receives
// a sliderMoveEvent struct every time a slider moves
func (sio *SerialIO) SubscribeToSliderMoveEvents() chan SliderMoveEvent {
	ch := make(chan SliderMoveEvent)
	sio.sliderMoveConsumers = append(sio.sliderMoveConsumers, ch)

	return ch
}

// SubscribeToButtonEvents returns an unbuffered channel that receives
// a ButtonEvent every time a button changes state
func (sio *SerialIO) SubscribeToButtonEvents() chan ButtonEvent {
	ch := make(chan ButtonEvent)
	sio.buttonConsumers = append(sio.buttonConsumers, ch)

	return ch
}

func (sio *SerialIO) setupOnConfigReload() {
	configReloadedChannel := sio.config.SubscribeToChanges()

	const stopDelay = 50 * time.Millisecond

	go func() {
		for range configReloadedChannel {

			// forget the slider count so every slider position is re-sent after a reload
			sio.lastKnownNumSliders = 0

			// if connection params have changed, attempt to stop and start the connection
			info := sio.config.Serial()
			if info.COMPort != sio.connOptions.PortName ||
				uint(info.BaudRate) != sio.connOptions.BaudRate {

				sio.logger.Info("Detected change in connection parameters, attempting to renew connection")
				sio.Stop()

				// let the connection close
				<-time.After(stopDelay)

				if err := sio.Start(); err != nil {
					sio.logger.Warnw("Failed to renew connection after parameter change", "error", err)
				} else {
					sio.logger.Debug("Renewed connection successfully")
				}
			}
		}
	}()
}

func (sio *SerialIO) close(logger *zap.SugaredLogger) {
	if err := sio.conn.Close(); err != nil {
		logger.Warnw("Failed to close serial connection", "error", err)
	} else {
		logger.Debug("Serial connection closed")
	}

	sio.conn = nil
	sio.connected = false
}

func (sio *SerialIO) readLine(logger *zap.SugaredLogger, reader *bufio.Reader) chan string {
	ch := make(chan string)

	go func() {
		for {
			line, err := reader.ReadString('\n')
			if err != nil {

				if sio.verbose {
					logger.Warnw("Failed to read line from serial", "error", err, "line", line)
				}

				// just ignore the line, the read loop will stop after this
				return
			}

			if sio.verbose {
				logger.Debugw("Read new line", "line", line)
			}

			ch <- line
		}
	}()

	return ch
}

func (sio *SerialIO) handleLine(logger *zap.SugaredLogger, line string) {
	switch {
	case sliderLinePattern.MatchString(line):
		sio.handleSliderLine(logger, line)
	case buttonLinePattern.MatchString(line):
		sio.handleButtonLine(logger, line)
	}

	// anything else is most likely a partial line from the first read after connecting, skip it
}

func (sio *SerialIO) handleSliderLine(logger *zap.SugaredLogger, line string) {
	line = strings.TrimRight(line, "\r\n")

	splitLine := strings.Split(line, "|")
	numSliders := len(splitLine)

	// update our slider count, if needed - this will send slider move events for all
	if numSliders != sio.lastKnownNumSliders {
		logger.Infow("Detected sliders", "amount", numSliders)
		sio.lastKnownNumSliders = numSliders
		sio.currentSliderPercentValues = make([]float32, numSliders)

		// reset everything to be an impossible value to force the slider move event later
		for idx := range sio.currentSliderPercentValues {
			sio.currentSliderPercentValues[idx] = -1.0
		}
	}

	moveEvents := []SliderMoveEvent{}
	for sliderIdx, stringValue := range splitLine {

		// convert string values to integers ("1023" -> 1023)
		number, _ := strconv.Atoi(stringValue)

		// turns out the first line could come out dirty sometimes (i.e. "4558|925|41|643|220")
		// so let's check the first number for correctness just in case
		if sliderIdx == 0 && number > maxSliderReading {
			logger.Debugw("Got malformed line from serial, ignoring", "line", line)
			return
		}

		// map the value from raw to a "dirty" float between 0 and 1 (e.g. 0.15451...)
		dirtyFloat := float32(number) / maxSliderReading

		// normalize it to a scalar between 0.0 and 1.0 with 2 points of precision
		normalizedScalar := util.NormalizeScalar(dirtyFloat)

		if sio.config.SlidersInverted() {
			normalizedScalar = 1 - normalizedScalar
		}

		// check if it changes the desired state (could just be a jumpy raw slider value)
		if util.SignificantlyDifferent(sio.currentSliderPercentValues[sliderIdx], normalizedScalar, sio.config.NoiseReductionThreshold()) {

			sio.currentSliderPercentValues[sliderIdx] = normalizedScalar

			moveEvents = append(moveEvents, SliderMoveEvent{
				SliderID:     sliderIdx,
				PercentValue: normalizedScalar,
			})

			if sio.verbose {
				logger.Debugw("Slider moved", "event", moveEvents[len(moveEvents)-1])
			}
		}
	}

	// deliver move events if there are any, towards all potential consumers
	for _, consumer := range sio.sliderMoveConsumers {
		for _, moveEvent := range moveEvents {
			consumer <- moveEvent
		}
	}
}

func (sio *SerialIO) handleButtonLine(logger *zap.SugaredLogger, line string) {
	line = strings.TrimPrefix(strings.TrimRight(line, "\r\n"), buttonLinePrefix)
	splitLine := strings.Split(line, "|")

	if len(splitLine) != len(sio.currentButtonValues) {
		logger.Infow("Detected buttons", "amount", len(splitLine))

		// every button starts released, so only presses are reported at first
		sio.currentButtonValues = make([]int, len(splitLine))
	}

	buttonEvents := []ButtonEvent{}
	for buttonIdx, stringValue := range splitLine {
		value, _ := strconv.Atoi(stringValue)

		if value == sio.currentButtonValues[buttonIdx] {
			continue
		}

		sio.currentButtonValues[buttonIdx] = value
		buttonEvents = append(buttonEvents, ButtonEvent{ButtonID: buttonIdx, Value: value})
	}

	for _, consumer := range sio.buttonConsumers {
		for _, buttonEvent := range buttonEvents {
			consumer <- buttonEvent
		}
	}
}
