package simhal

import (
	"gopkg.in/yaml.v3"

	"vmhal-go/errcode"
	"vmhal-go/types"
)

// Profile describes a simulated board in a YAML document:
//
//	gpio_count: 16
//	uart_count: 2
//	buffer_size: 128
//	features: [pwm, rtc]
//
// Zero fields keep their defaults.
type Profile struct {
	GPIOCount  int      `yaml:"gpio_count"`
	UARTCount  int      `yaml:"uart_count"`
	BufferSize int      `yaml:"buffer_size"`
	Features   []string `yaml:"features"`
}

// LoadProfile parses a YAML board profile.
func LoadProfile(data []byte) (Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, &errcode.E{C: errcode.InvalidArg, Op: "simhal.LoadProfile", Msg: "bad yaml", Err: err}
	}
	return p, nil
}

// Options converts a profile into construction options for New.
func (p Profile) Options() ([]Option, error) {
	var opts []Option
	if p.GPIOCount != 0 {
		opts = append(opts, WithGPIOCount(p.GPIOCount))
	}
	if p.UARTCount != 0 {
		opts = append(opts, WithUARTCount(p.UARTCount))
	}
	if p.BufferSize != 0 {
		opts = append(opts, WithBufferSize(p.BufferSize))
	}
	var f types.Features
	for _, name := range p.Features {
		bit, ok := parseFeature(name)
		if !ok {
			return nil, &errcode.E{C: errcode.InvalidArg, Op: "simhal.Profile", Msg: "unknown feature " + name}
		}
		f |= bit
	}
	if f != 0 {
		opts = append(opts, WithFeatures(f))
	}
	return opts, nil
}

func parseFeature(name string) (types.Features, bool) {
	switch name {
	case "adc":
		return types.FeatureADC, true
	case "dac":
		return types.FeatureDAC, true
	case "pwm":
		return types.FeaturePWM, true
	case "rtc":
		return types.FeatureRTC, true
	case "dma":
		return types.FeatureDMA, true
	default:
		return 0, false
	}
}
