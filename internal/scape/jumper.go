package scape

import "fmt"

const (
	// JumpThreshold is the action value a policy must exceed to start a jump.
	JumpThreshold = 0.5
	// DefaultRunVelocity is the constant horizontal speed of every jumper.
	DefaultRunVelocity = 5.0

	jumperSizeDivisor     = 25.0
	jumperFloorOffset     = 1.0
	jumpLaunchVelocity    = 10
	jumpLandingVelocity   = -11
	jumpLandingCorrection = 5.0
)

type JumpState int

const (
	Grounded JumpState = iota
	Jumping
)

func (s JumpState) String() string {
	switch s {
	case Grounded:
		return "grounded"
	case Jumping:
		return "jumping"
	default:
		return fmt.Sprintf("jump-state(%d)", int(s))
	}
}

// Jumper is the simulation state of one roster member.
type Jumper struct {
	id       string
	rect     Rect
	xVel     float64
	yVel     int
	mass     float64
	jumping  bool
	score    int
	distance float64
}

// NewJumper places a jumper at the left edge, resting on the floor.
func NewJumper(id string, laneWidth, laneHeight float64) *Jumper {
	size := laneWidth / jumperSizeDivisor
	return &Jumper{
		id:   id,
		rect: Rect{X: 0, Y: laneHeight - size + jumperFloorOffset, W: size, H: size},
		xVel: DefaultRunVelocity,
		yVel: jumpLaunchVelocity,
		mass: 1,
	}
}

func (j *Jumper) ID() string { return j.id }
func (j *Jumper) Rect() Rect { return j.rect }
func (j *Jumper) Velocity() float64 { return j.xVel }
func (j *Jumper) VerticalVelocity() int { return j.yVel }
func (j *Jumper) Jumping() bool { return j.jumping }
func (j *Jumper) Score() int { return j.score }
func (j *Jumper) NearestDistance() float64 { return j.distance }
func (j *Jumper) setNearest(d float64) { j.distance = d }
func (j *Jumper) addScore(points int) { j.score += points }

func (j *Jumper) State() JumpState {
	if j.jumping {
		return Jumping
	}
	return Grounded
}

// Observation is the policy input: nearest spike distance, horizontal
// velocity and the jumping flag as 0/1.
func (j *Jumper) Observation() []float64 {
	jumping := 0.0
	if j.jumping {
		jumping = 1
	}
	return []float64{j.distance, j.xVel, jumping}
}

// Step applies one tick of movement given the policy action and reports
// whether the jumper wrapped past the right edge of the lane.
func (j *Jumper) Step(action, laneWidth float64) bool {
	if action > JumpThreshold && !j.jumping {
		j.jumping = true
	}
	if j.jumping {
		j.advanceJump()
	}

	j.rect.X += j.xVel
	if j.rect.Left() > laneWidth {
		j.rect.X = -j.rect.W
		return true
	}
	return false
}

// advanceJump runs one tick of the jump arc. The mass sign flips once the
// countdown goes negative, which turns the rise into a fall; the jump ends
// exactly when the countdown reaches the landing velocity.
func (j *Jumper) advanceJump() {
	v := float64(j.yVel)
	j.rect.Y -= 0.5 * j.mass * v * v
	j.yVel--

	if j.yVel < 0 {
		j.mass = -1
	}
	if j.yVel == jumpLandingVelocity {
		j.jumping = false
		j.yVel = jumpLaunchVelocity
		j.mass = 1
		j.rect.Y += jumpLandingCorrection
	}
}
