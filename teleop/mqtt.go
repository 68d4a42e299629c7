package teleop

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/paulmach/orb"
)

// Event topic suffixes under the configured prefix. These mirror the robot's
// emitted event names one-to-one.
const (
	topicOdom          = "odom"
	topicPoseGraphNode = "poseGraphNode"
	topicPoseGraphPose = "poseGraphPose"
	topicPoseGraphScan = "poseGraphScan"
	topicPoseGraph     = "poseGraph"
	topicLidarStatus   = "lidarStatus"
	topicArduinoStatus = "arduinoStatus"
	topicDrive         = "driveWithSpeeds"
)

// poseGraphNodeMsg is the wire shape of an incremental node event. Index is
// the position the node takes in the graph; the robot assigns it from its own
// graph length.
type poseGraphNodeMsg struct {
	Index int           `json:"index"`
	Node  PoseGraphNode `json:"node"`
}

// poseGraphPoseMsg is the pose-only half of a node whose scan is still in
// flight, keyed by the index the node will occupy.
type poseGraphPoseMsg struct {
	Index int         `json:"index"`
	Tf    Transform2d `json:"tf"`
}

// scanMsg is the scan half, keyed the same way.
type scanMsg struct {
	Index int          `json:"index"`
	Scan  [][2]float64 `json:"scan"`
}

// EventClient manages the MQTT session with the robot: it feeds inbound
// events into the GraphStore and publishes velocity commands back. The broker
// session also drives the socket connectivity flag.
type EventClient struct {
	client      mqtt.Client
	store       *GraphStore
	topicPrefix string
	isConnected bool
	mu          sync.RWMutex
}

// NewEventClient builds an MQTT client from config with env-var overrides for
// broker, client ID, and credentials. The connection is established
// asynchronously; paho's auto-reconnect handles drops, and the store's
// connectivity flags track the session through the connect/lost callbacks.
func NewEventClient(config *Config, store *GraphStore) (*EventClient, error) {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		broker = config.MQTT.Broker
	}
	if broker == "" {
		return nil, fmt.Errorf("mqtt broker not configured")
	}

	prefix := config.MQTT.TopicPrefix
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}

	c := &EventClient{
		store:       store,
		topicPrefix: prefix,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)

	clientID := os.Getenv("MQTT_CLIENT_ID")
	if clientID == "" && config.MQTT.ClientID != "" {
		clientID = config.MQTT.ClientID
	}
	if clientID == "" {
		clientID = "groundstation"
	}
	opts.SetClientID(clientID)

	username := os.Getenv("MQTT_USERNAME")
	if username == "" {
		username = config.MQTT.Username
	}
	if username != "" {
		opts.SetUsername(username)
		password := os.Getenv("MQTT_PASSWORD")
		if password == "" {
			password = config.MQTT.Password
		}
		opts.SetPassword(password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(false)
	opts.SetOrderMatters(true) // graph events must apply in emission order

	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	c.client = mqtt.NewClient(opts)

	go c.connectWithRetry()
	return c, nil
}

// newEventClientWithMock creates an EventClient with a provided mqtt.Client.
// Used by tests.
func newEventClientWithMock(client mqtt.Client, store *GraphStore, prefix string) *EventClient {
	return &EventClient{client: client, store: store, topicPrefix: prefix}
}

// connectWithRetry attempts the initial broker connection with exponential backoff
func (c *EventClient) connectWithRetry() {
	retryDelay := 1 * time.Second
	maxRetryDelay := 60 * time.Second

	for {
		log.Println("Connecting to MQTT broker...")
		token := c.client.Connect()
		if token.WaitTimeout(10 * time.Second) {
			if token.Error() == nil {
				log.Println("Connected to MQTT broker")
				return
			}
			log.Printf("MQTT connection failed: %v", token.Error())
		} else {
			log.Println("MQTT connection timeout")
		}

		log.Printf("Retrying MQTT connection in %v...", retryDelay)
		time.Sleep(retryDelay)
		retryDelay *= 2
		if retryDelay > maxRetryDelay {
			retryDelay = maxRetryDelay
		}
	}
}

// onConnect enters the connected baseline and subscribes to the robot's event
// topics. Runs on every connect, including auto-reconnects, so the
// subscriptions and flags recover without help.
func (c *EventClient) onConnect(client mqtt.Client) {
	log.Println("MQTT connected, subscribing to robot events...")
	c.setConnected(true)
	c.store.Connected()

	subs := map[string]mqtt.MessageHandler{
		topicOdom:          c.handleOdom,
		topicPoseGraphNode: c.handlePoseGraphNode,
		topicPoseGraphPose: c.handlePoseGraphPose,
		topicPoseGraphScan: c.handlePoseGraphScan,
		topicPoseGraph:     c.handlePoseGraph,
		topicLidarStatus:   c.handleLidarStatus,
		topicArduinoStatus: c.handleArduinoStatus,
	}
	for suffix, handler := range subs {
		topic := c.topic(suffix)
		token := client.Subscribe(topic, 0, handler)
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			log.Printf("Error subscribing to %s: %v", topic, token.Error())
		}
	}
}

// onConnectionLost forces the disconnected baseline; paho retries in the
// background.
func (c *EventClient) onConnectionLost(client mqtt.Client, err error) {
	log.Printf("MQTT connection lost (%v), auto-reconnect will retry", err)
	c.setConnected(false)
	c.store.Disconnected()
}

func (c *EventClient) topic(suffix string) string {
	return c.topicPrefix + "/" + suffix
}

func (c *EventClient) handleOdom(client mqtt.Client, msg mqtt.Message) {
	var tf Transform2d
	if err := json.Unmarshal(msg.Payload(), &tf); err != nil {
		log.Printf("Error decoding odom payload: %v", err)
		return
	}
	c.store.SetLivePose(tf)
}

func (c *EventClient) handlePoseGraphNode(client mqtt.Client, msg mqtt.Message) {
	var m poseGraphNodeMsg
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		log.Printf("Error decoding poseGraphNode payload: %v", err)
		return
	}
	c.store.AppendNode(m.Node)
}

// handlePoseGraphPose stages the pose half of a split node event. The scan
// half arrives on poseGraphScan with the same index; until it does, nothing
// is rendered for this node.
func (c *EventClient) handlePoseGraphPose(client mqtt.Client, msg mqtt.Message) {
	var m poseGraphPoseMsg
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		log.Printf("Error decoding poseGraphPose payload: %v", err)
		return
	}
	c.store.StageNodePose(m.Index, m.Tf)
}

// handlePoseGraphScan completes a staged node. A scan with no staged pose is
// dropped; the next bulk resync recovers it.
func (c *EventClient) handlePoseGraphScan(client mqtt.Client, msg mqtt.Message) {
	var m scanMsg
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		log.Printf("Error decoding poseGraphScan payload: %v", err)
		return
	}
	scan := make([]orb.Point, len(m.Scan))
	for i, p := range m.Scan {
		scan[i] = orb.Point{p[0], p[1]}
	}
	if !c.store.CompleteNode(m.Index, scan) {
		log.Printf("Dropping scan for unknown node index %d", m.Index)
	}
}

func (c *EventClient) handlePoseGraph(client mqtt.Client, msg mqtt.Message) {
	var nodes []PoseGraphNode
	if err := json.Unmarshal(msg.Payload(), &nodes); err != nil {
		log.Printf("Error decoding poseGraph payload: %v", err)
		return
	}
	log.Printf("Pose graph resync: %d nodes", len(nodes))
	c.store.ReplaceGraph(nodes)
}

func (c *EventClient) handleLidarStatus(client mqtt.Client, msg mqtt.Message) {
	up, err := decodeBool(msg.Payload())
	if err != nil {
		log.Printf("Error decoding lidarStatus payload: %v", err)
		return
	}
	c.store.SetLidarStatus(up)
}

func (c *EventClient) handleArduinoStatus(client mqtt.Client, msg mqtt.Message) {
	up, err := decodeBool(msg.Payload())
	if err != nil {
		log.Printf("Error decoding arduinoStatus payload: %v", err)
		return
	}
	c.store.SetArduinoStatus(up)
}

func decodeBool(payload []byte) (bool, error) {
	var v bool
	if err := json.Unmarshal(payload, &v); err != nil {
		return false, err
	}
	return v, nil
}

// PublishDrive sends a velocity command to the robot as a three-element JSON
// array [vx, vy, omega]. QoS 0, not retained: the latest command supersedes
// any in-flight one, so there is nothing worth redelivering.
func (c *EventClient) PublishDrive(cmd Twist2d) error {
	if c.client == nil || !c.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	payload, err := json.Marshal([3]float64{cmd.Dx, cmd.Dy, cmd.Dtheta})
	if err != nil {
		return fmt.Errorf("marshaling drive command: %w", err)
	}

	topic := c.topic(topicDrive)
	token := c.client.Publish(topic, 0, false, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}
	return nil
}

// IsConnected returns true if the MQTT session is up
func (c *EventClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

func (c *EventClient) setConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isConnected = connected
}

// Disconnect gracefully closes the MQTT session
func (c *EventClient) Disconnect() {
	if c.client != nil && c.client.IsConnected() {
		log.Println("Disconnecting from MQTT broker...")
		c.client.Disconnect(250)
		c.setConnected(false)
		c.store.Disconnected()
	}
}
