// Package events defines the simulation events emitted on the event bus.
//
// Available event types:
//   - BoatRegistered: a boat joined the port roster
//   - TripAssigned: a trip received a boat and an energy estimate
//   - TripSimulated: a trip was run and its boat depleted
//   - BoatCharged: one charging step was applied to a boat
//   - ChargerCapExceeded: the per-boat share is above the per-charger cap
package events
