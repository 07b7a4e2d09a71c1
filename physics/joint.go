package physics

import (
	"fmt"

	"github.com/bytearena/box2d"
)

// FrictionJointDef describes a top-down friction joint between two bodies.
type FrictionJointDef struct {
	BodyA            *Body
	BodyB            *Body
	LocalAnchorA     Vec2
	LocalAnchorB     Vec2
	MaxForce         float64
	MaxTorque        float64
	CollideConnected bool
	UserData         UserData
}

// FrictionJoint resists relative linear and angular motion up to a maximum
// force and torque.
type FrictionJoint struct {
	bodyA    *Body
	bodyB    *Body
	b2       *box2d.B2FrictionJoint
	userData UserData
}

func (j *FrictionJoint) BodyA() *Body { return j.bodyA }
func (j *FrictionJoint) BodyB() *Body { return j.bodyB }
func (j *FrictionJoint) MaxForce() float64 { return j.b2.GetMaxForce() }
func (j *FrictionJoint) MaxTorque() float64 { return j.b2.GetMaxTorque() }
func (j *FrictionJoint) UserData() UserData { return j.userData }

// CreateFrictionJoint links two bodies of this world.
func (w *World) CreateFrictionJoint(def FrictionJointDef) (*FrictionJoint, error) {
	if w.Locked() {
		return nil, ErrWorldLocked
	}
	if def.BodyA.check() != nil || def.BodyB.check() != nil || def.BodyA.world != w || def.BodyB.world != w || def.BodyA == def.BodyB {
		return nil, fmt.Errorf("create friction joint: %w", ErrInvalidBody)
	}
	if def.MaxForce < 0 || def.MaxTorque < 0 {
		return nil, fmt.Errorf("create friction joint: negative limits")
	}

	j := &FrictionJoint{bodyA: def.BodyA, bodyB: def.BodyB, userData: def.UserData}

	jd := box2d.MakeB2FrictionJointDef()
	jd.BodyA = def.BodyA.b2
	jd.BodyB = def.BodyB.b2
	jd.LocalAnchorA = def.LocalAnchorA.b2()
	jd.LocalAnchorB = def.LocalAnchorB.b2()
	jd.MaxForce = def.MaxForce
	jd.MaxTorque = def.MaxTorque
	jd.CollideConnected = def.CollideConnected
	jd.UserData = j

	created, ok := w.b2.CreateJoint(&jd).(*box2d.B2FrictionJoint)
	if !ok {
		return nil, fmt.Errorf("create friction joint: unexpected joint type")
	}
	j.b2 = created
	w.joints = append(w.joints, j)
	return j, nil
}
