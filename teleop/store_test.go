package teleop

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphStore_LivePose(t *testing.T) {
	s := NewGraphStore()

	_, ok := s.LivePose()
	if ok {
		t.Fatal("new store should have no live pose")
	}

	s.SetLivePose(Transform2d{XMeters: 1, YMeters: 2, ThetaRadians: 3})
	pose, ok := s.LivePose()
	if !ok {
		t.Fatal("live pose not set")
	}
	if pose.XMeters != 1 || pose.YMeters != 2 || pose.ThetaRadians != 3 {
		t.Errorf("pose = %+v, want {1 2 3}", pose)
	}

	t.Run("overwrite is wholesale", func(t *testing.T) {
		s.SetLivePose(Transform2d{XMeters: -5})
		pose, _ := s.LivePose()
		if pose.XMeters != -5 || pose.YMeters != 0 || pose.ThetaRadians != 0 {
			t.Errorf("pose = %+v, want {-5 0 0}", pose)
		}
	})
}

func TestGraphStore_AppendNode(t *testing.T) {
	s := NewGraphStore()

	s.AppendNode(PoseGraphNode{
		Tf:   Transform2d{XMeters: 1},
		Scan: []orb.Point{{0.5, 0}, {0, 0.5}},
	})
	s.AppendNode(PoseGraphNode{Tf: Transform2d{XMeters: 2}})

	_, _, nodes := s.Snapshot()
	require.Len(t, nodes, 2)
	assert.Equal(t, 1.0, nodes[0].Tf.XMeters)
	assert.Equal(t, 2.0, nodes[1].Tf.XMeters)
	assert.Len(t, nodes[0].Scan, 2)
}

func TestGraphStore_ReplaceGraph(t *testing.T) {
	s := NewGraphStore()
	s.AppendNode(PoseGraphNode{Tf: Transform2d{XMeters: 1}})
	s.AppendNode(PoseGraphNode{Tf: Transform2d{XMeters: 2}})

	replacement := []PoseGraphNode{
		{Tf: Transform2d{XMeters: 10}, Scan: []orb.Point{{1, 1}}},
	}
	s.ReplaceGraph(replacement)

	_, _, nodes := s.Snapshot()
	require.Len(t, nodes, 1)
	assert.Equal(t, 10.0, nodes[0].Tf.XMeters)

	t.Run("empty replacement clears the graph", func(t *testing.T) {
		s.ReplaceGraph(nil)
		_, _, nodes := s.Snapshot()
		assert.Empty(t, nodes)
	})

	t.Run("caller slice is not aliased", func(t *testing.T) {
		src := []PoseGraphNode{{Tf: Transform2d{XMeters: 7}}}
		s.ReplaceGraph(src)
		src[0].Tf.XMeters = 99
		_, _, nodes := s.Snapshot()
		require.Len(t, nodes, 1)
		assert.Equal(t, 7.0, nodes[0].Tf.XMeters)
	})
}

func TestGraphStore_StagedNodesAreInvisible(t *testing.T) {
	s := NewGraphStore()

	s.StageNodePose(0, Transform2d{XMeters: 1})
	if s.NodeCount() != 0 {
		t.Fatal("staged pose must not be visible to readers")
	}
	_, _, nodes := s.Snapshot()
	assert.Empty(t, nodes, "snapshot must not contain half-formed nodes")

	ok := s.CompleteNode(0, []orb.Point{{0.2, 0.1}})
	require.True(t, ok)
	require.Equal(t, 1, s.NodeCount())

	_, _, nodes = s.Snapshot()
	require.Len(t, nodes, 1)
	assert.Equal(t, 1.0, nodes[0].Tf.XMeters)
	assert.Len(t, nodes[0].Scan, 1)
}

func TestGraphStore_CompleteNode_NoStagedPose(t *testing.T) {
	s := NewGraphStore()
	ok := s.CompleteNode(3, []orb.Point{{1, 1}})
	assert.False(t, ok)
	assert.Equal(t, 0, s.NodeCount())
}

func TestGraphStore_ReplaceGraphDropsStaged(t *testing.T) {
	s := NewGraphStore()
	s.StageNodePose(0, Transform2d{XMeters: 1})
	s.ReplaceGraph(nil)

	// The staged index is meaningless after a resync
	ok := s.CompleteNode(0, []orb.Point{{1, 1}})
	assert.False(t, ok)
}

func TestGraphStore_ConnectivityFlags(t *testing.T) {
	s := NewGraphStore()

	assert.Equal(t, RobotStatus{}, s.Status(), "baseline is fully disconnected")

	s.Connected()
	assert.Equal(t, RobotStatus{Socket: true}, s.Status())

	s.SetLidarStatus(true)
	s.SetArduinoStatus(true)
	assert.Equal(t, RobotStatus{Socket: true, Lidar: true, Arduino: true}, s.Status())

	t.Run("disconnect resets all flags", func(t *testing.T) {
		s.Disconnected()
		assert.Equal(t, RobotStatus{}, s.Status())
	})

	t.Run("status events ignored while disconnected", func(t *testing.T) {
		s.SetLidarStatus(true)
		s.SetArduinoStatus(true)
		assert.Equal(t, RobotStatus{}, s.Status())
	})

	t.Run("reconnect starts from baseline", func(t *testing.T) {
		s.Connected()
		assert.Equal(t, RobotStatus{Socket: true}, s.Status())

		s.SetLidarStatus(true)
		assert.Equal(t, RobotStatus{Socket: true, Lidar: true}, s.Status())
	})
}
