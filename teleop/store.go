package teleop

import (
	"sync"

	"github.com/paulmach/orb"
)

// GraphStore owns the robot's live pose and the append-only pose graph. The
// render loop only ever reads snapshots; all mutation comes from the network
// adapter. Every mutation holds the write lock for its whole duration, so a
// reader can never observe a half-applied update.
type GraphStore struct {
	mu       sync.RWMutex
	livePose Transform2d
	hasPose  bool
	nodes    []PoseGraphNode

	// staged parks poses whose scan has not arrived yet, keyed by the node's
	// intended index in the graph. A pose-only event never reaches nodes
	// directly; see StageNodePose and CompleteNode.
	staged map[int]Transform2d

	status RobotStatus
}

// NewGraphStore creates an empty store in the disconnected baseline.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		staged: make(map[int]Transform2d),
	}
}

// SetLivePose replaces the live pose unconditionally. No continuity check; the
// network adapter is trusted to deliver well-typed odometry.
func (s *GraphStore) SetLivePose(tf Transform2d) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.livePose = tf
	s.hasPose = true
}

// LivePose returns the live pose and whether one has been received yet.
func (s *GraphStore) LivePose() (Transform2d, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.livePose, s.hasPose
}

// AppendNode appends one fully-formed node to the end of the graph.
func (s *GraphStore) AppendNode(node PoseGraphNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = append(s.nodes, node)
}

// StageNodePose parks a pose that arrived ahead of its scan, keyed by the
// index it will occupy once complete. The staged pose is invisible to readers.
func (s *GraphStore) StageNodePose(index int, tf Transform2d) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged[index] = tf
}

// CompleteNode joins a scan with its previously staged pose and appends the
// resulting node. Returns false if no pose is staged at that index, in which
// case the scan is dropped (the next bulk resync will recover it).
func (s *GraphStore) CompleteNode(index int, scan []orb.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	tf, ok := s.staged[index]
	if !ok {
		return false
	}
	delete(s.staged, index)
	s.nodes = append(s.nodes, PoseGraphNode{Tf: tf, Scan: scan})
	return true
}

// ReplaceGraph atomically replaces the whole sequence; used for the initial
// sync and for resync after a reconnect. Any staged half-nodes are discarded
// since their indices no longer mean anything.
func (s *GraphStore) ReplaceGraph(nodes []PoseGraphNode) {
	copied := make([]PoseGraphNode, len(nodes))
	copy(copied, nodes)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = copied
	s.staged = make(map[int]Transform2d)
}

// Snapshot returns the live pose (with presence flag) and a copy of the node
// sequence. Nodes are immutable once stored, so copying the outer slice is
// enough for the renderer to work lock-free.
func (s *GraphStore) Snapshot() (Transform2d, bool, []PoseGraphNode) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nodes := make([]PoseGraphNode, len(s.nodes))
	copy(nodes, s.nodes)
	return s.livePose, s.hasPose, nodes
}

// NodeCount returns the number of fully-formed nodes in the graph.
func (s *GraphStore) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// Connected enters the connected baseline: the socket flag comes up and the
// robot subsystem flags reset until their status events arrive.
func (s *GraphStore) Connected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = RobotStatus{Socket: true}
}

// Disconnected forces all three flags down regardless of prior state.
func (s *GraphStore) Disconnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = RobotStatus{}
}

// SetLidarStatus sets the lidar flag. Ignored while disconnected; the robot
// re-announces subsystem status after every reconnect.
func (s *GraphStore) SetLidarStatus(up bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Socket {
		s.status.Lidar = up
	}
}

// SetArduinoStatus sets the secondary-controller flag. Ignored while
// disconnected.
func (s *GraphStore) SetArduinoStatus(up bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Socket {
		s.status.Arduino = up
	}
}

// Status returns a copy of the connectivity flags.
func (s *GraphStore) Status() RobotStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
