package teleop

import "github.com/paulmach/orb"

// Transform2d is a pose in the fixed world frame: position in meters, heading
// in radians with 0 pointing along +x and positive rotation counterclockwise.
type Transform2d struct {
	XMeters      float64 `json:"x_meters" yaml:"xMeters"`
	YMeters      float64 `json:"y_meters" yaml:"yMeters"`
	ThetaRadians float64 `json:"theta_radians" yaml:"thetaRadians"`
}

// Twist2d is a chassis velocity command: forward, strafe, and angular rates.
type Twist2d struct {
	Dx     float64 `json:"dx"`
	Dy     float64 `json:"dy"`
	Dtheta float64 `json:"dtheta"`
}

// PoseGraphNode pairs a historical pose with the lidar scan captured there.
// Scan points are in the sensor's local frame, meters. Nodes are immutable
// once stored; the graph identifies them by position in its ordered sequence.
type PoseGraphNode struct {
	Tf   Transform2d `json:"tf"`
	Scan []orb.Point `json:"scan"`
}

// RobotStatus holds the three connectivity flags shown on the dashboard.
// Socket tracks the broker session itself; Lidar and Arduino are set by
// individual status events from the robot.
type RobotStatus struct {
	Socket  bool `json:"socket"`
	Lidar   bool `json:"lidar"`
	Arduino bool `json:"arduino"`
}

// MQTTConfig holds broker connection settings
type MQTTConfig struct {
	Broker      string `yaml:"broker" json:"broker"`
	ClientID    string `yaml:"clientId" json:"clientId"`
	TopicPrefix string `yaml:"topicPrefix" json:"topicPrefix"`
	Username    string `yaml:"username,omitempty" json:"username,omitempty"`
	Password    string `yaml:"password,omitempty" json:"password,omitempty"`
}

// FrameConfig holds render surface settings
type FrameConfig struct {
	Width  int     `yaml:"width" json:"width"`
	Height int     `yaml:"height" json:"height"`
	Rate   float64 `yaml:"rate,omitempty" json:"rate,omitempty"`   // frames per second (default 30)
	Scale  float64 `yaml:"scale,omitempty" json:"scale,omitempty"` // pixels per meter (default 200)
}

// DriveConfig holds teleoperation gain settings
type DriveConfig struct {
	LinearGain  float64 `yaml:"linearGain,omitempty" json:"linearGain,omitempty"`
	AngularGain float64 `yaml:"angularGain,omitempty" json:"angularGain,omitempty"`
}

// Config represents the full configuration file
type Config struct {
	MQTT     MQTTConfig  `yaml:"mqtt" json:"mqtt"`
	Frame    FrameConfig `yaml:"frame" json:"frame"`
	Drive    DriveConfig `yaml:"drive" json:"drive"`
	HTTPPort int         `yaml:"httpPort,omitempty" json:"httpPort,omitempty"`
}

// Defaults applied by LoadConfig when the corresponding field is unset.
const (
	DefaultFrameWidth  = 800
	DefaultFrameHeight = 600
	DefaultFrameRate   = 30.0
	DefaultScale       = 200.0 // pixels per meter
	DefaultLinearGain  = 0.5   // m/s per held key
	DefaultAngularGain = 1.5   // rad/s per held key
	DefaultTopicPrefix = "xavierbot"
	DefaultHTTPPort    = 8080
)
