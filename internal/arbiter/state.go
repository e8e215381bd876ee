package arbiter

// ColorState is who owns a light's colour.
type ColorState int

const (
	// NativeTemperature leaves colour to the host's own temperature feature.
	NativeTemperature ColorState = iota

	// ManagedSpectral drives colour from the SPD.
	ManagedSpectral

	// ManagedTemperature drives colour from the multi-channel temperatures.
	ManagedTemperature
)

func (s ColorState) String() string {
	switch s {
	case ManagedSpectral:
		return "managed-spectral"
	case ManagedTemperature:
		return "managed-temperature"
	default:
		return "native-temperature"
	}
}

// BrightnessState is who owns a light's intensity and exposure.
type BrightnessState int

const (
	// NativeBrightness leaves intensity and exposure to the host.
	NativeBrightness BrightnessState = iota

	// ManagedPhotometric drives brightness from datasheet photometry.
	ManagedPhotometric
)

func (s BrightnessState) String() string {
	if s == ManagedPhotometric {
		return "managed-photometric"
	}
	return "native"
}

// Axis names an independently arbitrated output.
type Axis string

const (
	AxisColor      Axis = "color"
	AxisBrightness Axis = "brightness"
)
