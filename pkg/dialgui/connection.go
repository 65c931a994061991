package dialgui

import "errors"

var (
	// ErrAlreadyConnected is returned when starting a device connection that is already active
	ErrAlreadyConnected = errors.New("connection already active")

	// ErrDeviceNotFound is returned when no device matches the configured connection info
	ErrDeviceNotFound = errors.New("device not found")
)

// SliderMoveEvent represents a single slider move captured by dialgui
type SliderMoveEvent struct {
	SliderID     int
	PercentValue float32
}

// ButtonEvent represents a button changing state. Value is 1 while pressed
type ButtonEvent struct {
	ButtonID int
	Value    int
}

// DeviceConnection is a physical input device reporting slider and button events
type DeviceConnection interface {
	Start() error
	Stop()
	SubscribeToSliderMoveEvents() chan SliderMoveEvent
	SubscribeToButtonEvents() chan ButtonEvent
}
