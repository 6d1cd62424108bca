package plan

import (
	"github.com/signalsfoundry/mission-planner/core"
	"github.com/signalsfoundry/mission-planner/model"
)

// The resource simulator is unit-agnostic per minute; these helpers convert
// the catalog's physical rates. Battery rates are watts (Wh/min = W/60),
// storage rates are MB/s (MB/min = MBps*60).
const (
	wattsToWhPerMin = 1.0 / 60.0
	mbpsToMBPerMin  = 60.0
)

// powerEvents composes the battery events for one satellite: a discharge
// event per staged action, one full-horizon idle discharge, and a charge
// event per sunlit lighting interval. Always simulated with saturation so
// a full battery cannot overcharge.
func powerEvents(sat *model.Satellite, timeline []model.Action, lighting []model.LightingWindow, horizon model.Horizon) []core.ResourceEvent {
	events := make([]core.ResourceEvent, 0, len(timeline)+len(lighting)+1)

	for _, act := range timeline {
		rate := dischargeRateW(sat, act.Kind)
		if rate == 0 {
			continue
		}
		events = append(events, core.ResourceEvent{
			Start: act.Start,
			End:   act.End,
			Rate:  -rate * wattsToWhPerMin,
		})
	}

	if sat.IdleDischargeRateW > 0 {
		events = append(events, core.ResourceEvent{
			Start: horizon.Start,
			End:   horizon.End,
			Rate:  -sat.IdleDischargeRateW * wattsToWhPerMin,
		})
	}

	for _, lw := range lighting {
		if lw.SatelliteID != sat.ID || lw.Condition != model.LightingSunlight {
			continue
		}
		events = append(events, core.ResourceEvent{
			Start: lw.Start,
			End:   lw.End,
			Rate:  sat.ChargeRateW * wattsToWhPerMin,
		})
	}

	return events
}

// storageEvents composes the data-storage events for one satellite:
// observations fill, downlinks drain. Links move data between spacecraft
// and leave the modelled total untouched. Always simulated without
// saturation; overflow is a violation, not a physical limit.
func storageEvents(sat *model.Satellite, timeline []model.Action) []core.ResourceEvent {
	events := make([]core.ResourceEvent, 0, len(timeline))

	for _, act := range timeline {
		switch act.Kind {
		case model.ActionObservation:
			if sat.ObsFillRateMBps != 0 {
				events = append(events, core.ResourceEvent{
					Start: act.Start,
					End:   act.End,
					Rate:  sat.ObsFillRateMBps * mbpsToMBPerMin,
				})
			}
		case model.ActionDownlink:
			if sat.DownlinkDrainRateMBps != 0 {
				events = append(events, core.ResourceEvent{
					Start: act.Start,
					End:   act.End,
					Rate:  -sat.DownlinkDrainRateMBps * mbpsToMBPerMin,
				})
			}
		}
	}

	return events
}

func dischargeRateW(sat *model.Satellite, kind model.ActionKind) float64 {
	switch kind {
	case model.ActionObservation:
		return sat.ObsDischargeRateW
	case model.ActionDownlink:
		return sat.DownlinkDischargeRateW
	case model.ActionIntersatelliteLink:
		return sat.LinkDischargeRateW
	default:
		return 0
	}
}

// simulatePower runs the saturating battery sweep for one satellite.
func simulatePower(sat *model.Satellite, timeline []model.Action, lighting []model.LightingWindow, horizon model.Horizon) core.SimResult {
	return core.Simulate(core.SimInput{
		Events:   powerEvents(sat, timeline, lighting, horizon),
		Initial:  sat.InitialChargeWh,
		Capacity: sat.BatteryCapacityWh,
		Saturate: true,
	})
}

// simulateStorage runs the non-saturating storage sweep for one satellite.
func simulateStorage(sat *model.Satellite, timeline []model.Action) core.SimResult {
	return core.Simulate(core.SimInput{
		Events:   storageEvents(sat, timeline),
		Initial:  sat.InitialStorageMB,
		Capacity: sat.StorageCapacityMB,
		Saturate: false,
	})
}
