package util

import (
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
)

// EnsureDirExists creates the given directory path if it doesn't already exist
func EnsureDirExists(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("ensure directory exists (%s): %w", path, err)
	}

	return nil
}

// FileExists checks if a file exists and is not a directory before we try using it to prevent further errors
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}

	return err == nil && !info.IsDir()
}

// MoveFile renames src to dst
func MoveFile(src string, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("move %s to %s: %w", src, dst, err)
	}

	return nil
}

// SetupCloseHandler returns a channel that receives the OS interrupt and termination signals
func SetupCloseHandler() chan os.Signal {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	return c
}

// NormalizeScalar "trims" the given float32 to 2 points of precision (e.g. 0.15442 -> 0.15)
func NormalizeScalar(v float32) float32 {
	return float32(math.Floor(float64(v)*100) / 100.0)
}

// SignificantlyDifferent returns true if two slider positions differ by at least threshold (0.025 when unset)
func SignificantlyDifferent(old float32, new float32, threshold float64) bool {
	const (
		significantDifferenceThreshold = 0.025
	)

	if threshold <= 0 {
		threshold = significantDifferenceThreshold
	}

	if math.Abs(float64(old-new)) >= threshold {
		return true
	}

	// always report reaching either end of the range
	if (almostEquals(new, 1.0) && old != 1.0) || (almostEquals(new, 0.0) && old != 0.0) {
		return true
	}

	return false
}

func almostEquals(a float32, b float32) bool {
	return math.Abs(float64(a-b)) < 0.000001
}
