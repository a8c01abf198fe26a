package camera

import (
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/math3d"
)

// Animation springs run at a fixed internal timestep; wall-clock frame
// deltas are accumulated and consumed in whole steps, so variable frame
// rates do not change the motion.
const (
	animStepsPerSecond = 120
	animStep           = time.Second / animStepsPerSecond

	// Frequency 5.0 with damping 1.0 is critically damped: the camera
	// settles quickly with no overshoot past the preset pose.
	animFrequency = 5.0
	animDamping   = 1.0
)

// Animation is a cancellable spring-driven transition of the camera pose.
type Animation struct {
	spring harmonica.Spring

	pos, target       math3d.Vec3
	posVel, targetVel math3d.Vec3
	goalPos, goalTgt  math3d.Vec3

	acc  time.Duration
	done bool
}

// newAnimation starts a transition from the pose to the goal.
func newAnimation(from Pose, goalPos, goalTarget math3d.Vec3) *Animation {
	return &Animation{
		spring:  harmonica.NewSpring(harmonica.FPS(animStepsPerSecond), animFrequency, animDamping),
		pos:     from.Position,
		target:  from.Target,
		goalPos: goalPos,
		goalTgt: goalTarget,
	}
}

// Step advances the animation by the wall-clock delta and applies the
// current pose to cam. Returns true once the camera has settled on the
// goal.
func (a *Animation) Step(cam *Camera, dt time.Duration) bool {
	if a.done {
		return true
	}

	a.acc += dt
	for a.acc >= animStep {
		a.acc -= animStep
		a.pos.X, a.posVel.X = a.spring.Update(a.pos.X, a.posVel.X, a.goalPos.X)
		a.pos.Y, a.posVel.Y = a.spring.Update(a.pos.Y, a.posVel.Y, a.goalPos.Y)
		a.pos.Z, a.posVel.Z = a.spring.Update(a.pos.Z, a.posVel.Z, a.goalPos.Z)
		a.target.X, a.targetVel.X = a.spring.Update(a.target.X, a.targetVel.X, a.goalTgt.X)
		a.target.Y, a.targetVel.Y = a.spring.Update(a.target.Y, a.targetVel.Y, a.goalTgt.Y)
		a.target.Z, a.targetVel.Z = a.spring.Update(a.target.Z, a.targetVel.Z, a.goalTgt.Z)
	}

	const settleEps = 1e-4
	if a.pos.Distance(a.goalPos) < settleEps &&
		a.target.Distance(a.goalTgt) < settleEps &&
		a.posVel.Len() < settleEps && a.targetVel.Len() < settleEps {
		a.pos = a.goalPos
		a.target = a.goalTgt
		a.done = true
	}

	cam.SetPosition(a.pos)
	cam.LookAt(a.target)
	return a.done
}
