package dialgui

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	colorSaturation = 1.0
	colorBrightness = 0.5
	booleanCutoff   = 0.5
)

type applyFunc func(widget Widget, raw float64)

// kinds missing from this table fall through to applyOption
var dispatchTable = map[WidgetKind]applyFunc{
	KindColor:   applyColor,
	KindBoolean: applyBoolean,
	KindNumeric: applyNumeric,
}

// Dispatch converts raw into the semantics of the entry's kind and sets the widget's value.
// raw is expected in [0,1] but is neither validated nor clamped
func Dispatch(entry WidgetEntry, raw float64) {
	apply, ok := dispatchTable[entry.Kind]
	if !ok {
		apply = applyOption
	}

	apply(entry.Widget, raw)
}

// HueColor maps raw onto the hue wheel at full saturation and half brightness. Hues wrap at 360
func HueColor(raw float64) colorful.Color {
	hue := math.Mod(raw*360, 360)
	if hue < 0 {
		hue += 360
	}

	return colorful.Hsv(hue, colorSaturation, colorBrightness)
}

// BooleanValue maps raw to true strictly above one half
func BooleanValue(raw float64) bool {
	return raw > booleanCutoff
}

// NumericValue interpolates raw from [0,1] onto [min,max]
func NumericValue(raw, min, max float64) float64 {
	return min + raw*(max-min)
}

// OptionIndex maps raw onto one of count options. raw == 1 yields count, which is out of range
func OptionIndex(raw float64, count int) int {
	return int(math.Floor(raw * float64(count)))
}

// RawValue maps the widget's current value back into [0,1]
func RawValue(entry WidgetEntry) float64 {
	switch entry.Kind {
	case KindColor:
		if w, ok := entry.Widget.(ColorWidget); ok {
			h, _, _ := w.Color().Hsv()
			return h / 360
		}
	case KindBoolean:
		if w, ok := entry.Widget.(BooleanWidget); ok && w.Bool() {
			return 1
		}
	case KindNumeric:
		if w, ok := entry.Widget.(NumericWidget); ok {
			min, max := w.Range()
			if max == min {
				return 0
			}
			return (w.Number() - min) / (max - min)
		}
	default:
		if w, ok := entry.Widget.(OptionWidget); ok && len(w.Options()) > 0 {
			return (float64(w.Index()) + 0.5) / float64(len(w.Options()))
		}
	}

	return 0
}

func applyColor(widget Widget, raw float64) {
	if w, ok := widget.(ColorWidget); ok {
		w.SetColor(HueColor(raw))
	}
}

func applyBoolean(widget Widget, raw float64) {
	if w, ok := widget.(BooleanWidget); ok {
		w.SetBool(BooleanValue(raw))
	}
}

func applyNumeric(widget Widget, raw float64) {
	if w, ok := widget.(NumericWidget); ok {
		min, max := w.Range()
		w.SetNumber(NumericValue(raw, min, max))
	}
}

func applyOption(widget Widget, raw float64) {
	if w, ok := widget.(OptionWidget); ok {
		w.SelectIndex(OptionIndex(raw, len(w.Options())))
	}
}
