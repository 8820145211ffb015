package actor

// ActorFlag is a boolean option of any actor. The core stores them; the
// collision system decides what they mean.
type ActorFlag uint32

const (
	// ActorFlagDisableCollision excludes the actor from collision detection.
	ActorFlagDisableCollision ActorFlag = 1 << iota
	// ActorFlagDisableResponse keeps contacts reported but not resolved.
	ActorFlagDisableResponse
	// ActorFlagTrigger makes the actor's shapes report overlaps only.
	ActorFlagTrigger
	// ActorFlagFluidDisableCollision excludes the actor from fluid collision.
	ActorFlagFluidDisableCollision
)

// BodyFlag is a boolean option of a Dynamic or Kinematic body.
type BodyFlag uint32

const (
	BodyFlagDisableGravity BodyFlag = 1 << iota
	BodyFlagFrozenPosX
	BodyFlagFrozenPosY
	BodyFlagFrozenPosZ
	BodyFlagFrozenRotX
	BodyFlagFrozenRotY
	BodyFlagFrozenRotZ
	// BodyFlagKinematic selects the Kinematic variant. Changing it converts the
	// body, which only the owning world can do.
	BodyFlagKinematic

	BodyFlagFrozenPos = BodyFlagFrozenPosX | BodyFlagFrozenPosY | BodyFlagFrozenPosZ
	BodyFlagFrozenRot = BodyFlagFrozenRotX | BodyFlagFrozenRotY | BodyFlagFrozenRotZ
	BodyFlagFrozen    = BodyFlagFrozenPos | BodyFlagFrozenRot
)

const allBodyFlags = BodyFlagDisableGravity | BodyFlagFrozen | BodyFlagKinematic

// Valid reports whether f is non-zero and made of known flags only.
func (f BodyFlag) Valid() bool {
	return f != 0 && f&^allBodyFlags == 0
}
