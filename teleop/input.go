package teleop

import (
	"log"
	"sync"
)

// Direction is a logical movement key tracked by the commander.
type Direction string

const (
	DirForward  Direction = "forward"
	DirBackward Direction = "backward"
	DirLeft     Direction = "left"
	DirRight    Direction = "right"
)

// MapKeyName translates a browser key name to a logical direction. Both WASD
// and arrow keys are accepted.
func MapKeyName(key string) (Direction, bool) {
	switch key {
	case "w", "W", "ArrowUp":
		return DirForward, true
	case "s", "S", "ArrowDown":
		return DirBackward, true
	case "a", "A", "ArrowLeft":
		return DirLeft, true
	case "d", "D", "ArrowRight":
		return DirRight, true
	}
	return "", false
}

// CommandFunc delivers a derived velocity command to the transport. It is
// fire-and-forget; transport ordering is the network adapter's concern.
type CommandFunc func(Twist2d)

// KeyCommander tracks currently-held movement keys and derives a 3-DOF
// velocity command on every key state change. The key set is owned by the
// commander (no global state) so it can be torn down with the view that
// created it. Host key auto-repeat is not a state change and emits nothing.
type KeyCommander struct {
	mu          sync.Mutex
	held        map[Direction]bool
	linearGain  float64
	angularGain float64
	publish     CommandFunc
}

// NewKeyCommander creates a commander with the given gains. A zero gain falls
// back to its default.
func NewKeyCommander(linearGain, angularGain float64, publish CommandFunc) *KeyCommander {
	if linearGain == 0 {
		linearGain = DefaultLinearGain
	}
	if angularGain == 0 {
		angularGain = DefaultAngularGain
	}
	return &KeyCommander{
		held:        make(map[Direction]bool),
		linearGain:  linearGain,
		angularGain: angularGain,
		publish:     publish,
	}
}

// KeyDown records a key press and emits one command if the key was not
// already held.
func (k *KeyCommander) KeyDown(dir Direction) {
	k.transition(dir, true)
}

// KeyUp records a key release and emits one command if the key was held.
func (k *KeyCommander) KeyUp(dir Direction) {
	k.transition(dir, false)
}

// Release clears every held key, emitting a stop command if anything was
// held. Called when the operator view disconnects so the robot never keeps
// driving on a stale command.
func (k *KeyCommander) Release() {
	k.mu.Lock()
	changed := len(k.held) > 0
	k.held = make(map[Direction]bool)
	cmd := k.deriveLocked()
	k.mu.Unlock()

	if changed {
		k.emit(cmd)
	}
}

// Command returns the velocity command for the current key state without
// emitting anything.
func (k *KeyCommander) Command() Twist2d {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.deriveLocked()
}

func (k *KeyCommander) transition(dir Direction, pressed bool) {
	k.mu.Lock()
	if k.held[dir] == pressed {
		// Auto-repeat or duplicate release; not a transition.
		k.mu.Unlock()
		return
	}
	if pressed {
		k.held[dir] = true
	} else {
		delete(k.held, dir)
	}
	cmd := k.deriveLocked()
	k.mu.Unlock()

	k.emit(cmd)
}

// deriveLocked computes [vx, vy, omega] from the held set. Lateral drive is
// unused in the current command scheme, so vy stays zero.
func (k *KeyCommander) deriveLocked() Twist2d {
	var vx, omega float64
	if k.held[DirForward] {
		vx++
	}
	if k.held[DirBackward] {
		vx--
	}
	if k.held[DirLeft] {
		omega++
	}
	if k.held[DirRight] {
		omega--
	}
	return Twist2d{
		Dx:     vx * k.linearGain,
		Dtheta: omega * k.angularGain,
	}
}

func (k *KeyCommander) emit(cmd Twist2d) {
	if k.publish == nil {
		log.Printf("No command publisher wired, dropping command [%g, %g, %g]", cmd.Dx, cmd.Dy, cmd.Dtheta)
		return
	}
	k.publish(cmd)
}
