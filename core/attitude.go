package core

import (
	"context"
	"time"

	"github.com/signalsfoundry/mission-planner/model"
)

// AttitudeProvider computes the attitude a satellite must hold at a given
// instant while executing an action. What the boresight tracks is derived
// from the action's kind: observations point at their target or strip,
// downlinks at their station, links at the peer satellite.
//
// Implementations are expected to be deterministic for a given
// (satellite, action, instant) triple; the conflict checker memoizes
// results per action under that assumption.
type AttitudeProvider interface {
	Quaternion(ctx context.Context, sat *model.Satellite, act model.Action, at time.Time) (Quat, error)
}
