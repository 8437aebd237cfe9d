package main

import "fmt"

// Orientation is the single-character pose code reported for the node.  The
// codes match what the peer firmware expects on the wire: 'F' flat, 'b'
// base-up, 'l' left portrait, 'r' right portrait, 'L' landscape and 'U'
// upside-down landscape.
type Orientation byte

const (
	Flat                Orientation = 'F'
	BaseUp              Orientation = 'b'
	LeftPortrait        Orientation = 'l'
	RightPortrait       Orientation = 'r'
	Landscape           Orientation = 'L'
	UpsideDownLandscape Orientation = 'U'
	// Unknown is the orientation before the first classification.
	Unknown Orientation = '?'
)

var orientationNames = map[Orientation]string{
	Flat:                "flat",
	BaseUp:              "base-up",
	LeftPortrait:        "left-portrait",
	RightPortrait:       "right-portrait",
	Landscape:           "landscape",
	UpsideDownLandscape: "upside-down-landscape",
	Unknown:             "unknown",
}

// String returns the long name of the orientation.
func (o Orientation) String() string {
	if n, ok := orientationNames[o]; ok {
		return n
	}
	return fmt.Sprintf("orientation(%q)", byte(o))
}

// Code returns the single-character code.
func (o Orientation) Code() string { return string(rune(o)) }

// MarshalText encodes the orientation as its single-character code.
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte{byte(o)}, nil
}

// ParseOrientation accepts either the single-character code or the long
// name of an orientation.
func ParseOrientation(s string) (Orientation, error) {
	if len(s) == 1 {
		o := Orientation(s[0])
		if _, ok := orientationNames[o]; ok {
			return o, nil
		}
	}
	for o, n := range orientationNames {
		if n == s {
			return o, nil
		}
	}
	return Unknown, fmt.Errorf("unknown orientation %q", s)
}

// AccelerationSample is one raw reading of the accelerometer in sensor units.
type AccelerationSample struct {
	X int16 `json:"x"`
	Y int16 `json:"y"`
	Z int16 `json:"z"`
}

// NotifierConfig describes one notification channel.  Type is "log" or
// "email"; the SMTP fields are only used by email notifiers.
type NotifierConfig struct {
	Type       string `json:"type"`
	SMTPServer string `json:"smtp_server,omitempty"`
	SMTPPort   int    `json:"smtp_port,omitempty"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	Subject    string `json:"subject,omitempty"`
	TimeoutMS  int    `json:"timeout_ms,omitempty"`
}

// Config is the top-level structure serialized to the config file.
type Config struct {
	GrantPin       string `json:"grant_pin"`         // periph pin name of the grant line (e.g. "GPIO17")
	DemandChannel  int    `json:"demand_channel"`    // ADC channel sensing the demand line
	ADCBits        int    `json:"adc_bits"`          // resolution of the raw ADC reading
	ADCFullScaleMV int    `json:"adc_full_scale_mv"` // voltage at full-scale reading
	I2CBus         string `json:"i2c_bus"`           // periph bus name, "" for the first bus
	SensorAddress  uint16 `json:"sensor_address"`    // accelerometer I2C address
	PollIntervalMS int    `json:"poll_interval_ms"`
	HTTPPort       int    `json:"http_port"`
	LogFile        string `json:"log_file"`
	LogLevel       string `json:"log_level"`

	// Basic auth for the status server.  Left empty the server is open.
	StatusUser         string `json:"status_user,omitempty"`
	StatusPasswordHash string `json:"status_password_hash,omitempty"`

	Notifiers []NotifierConfig `json:"notifiers"`
}
