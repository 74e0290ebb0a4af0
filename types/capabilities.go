package types

// ------------------------
// Capability descriptor
// ------------------------

// Features is a bitfield of optional peripheral features.
type Features uint8

const (
	FeatureADC Features = 1 << iota
	FeatureDAC
	FeaturePWM
	FeatureRTC
	FeatureDMA
)

func (f Features) Has(want Features) bool { return f&want == want }

func (f Features) String() string {
	if f == 0 {
		return "none"
	}
	s := ""
	add := func(bit Features, name string) {
		if f&bit != 0 {
			if s != "" {
				s += "+"
			}
			s += name
		}
	}
	add(FeatureADC, "adc")
	add(FeatureDAC, "dac")
	add(FeaturePWM, "pwm")
	add(FeatureRTC, "rtc")
	add(FeatureDMA, "dma")
	return s
}

// Capabilities describes what resources a backend provides. It is fixed
// per backend at build time and never mutated at runtime. The zero value
// is the "no backend" descriptor: all counts zero, no features.
type Capabilities struct {
	GPIOCount uint8    `json:"gpio_count" yaml:"gpio_count"`
	UARTCount uint8    `json:"uart_count" yaml:"uart_count"`
	SPICount  uint8    `json:"spi_count" yaml:"spi_count"`
	I2CCount  uint8    `json:"i2c_count" yaml:"i2c_count"`
	Features  Features `json:"features" yaml:"features"`
}
