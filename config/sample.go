package config

import "time"

// Sample returns the built-in demonstration scenario: two boats at
// Marina Verde sharing a 20 kW site over two chargers.
func Sample() *Config {
	boat := func(name string, capacityWh float64) BoatConfig {
		return BoatConfig{
			Name:                   name,
			BatteryCapacityWh:      capacityWh,
			ChargingRateW:          10000,
			SoCPercent:             ptr(80.0),
			LengthM:                8.5,
			WidthM:                 2.4,
			PassengerCapacity:      12,
			CruiseSpeedKmh:         25,
			BaseConsumptionWhPerKm: 300,
			MotorPowerW:            40000,
			MotorEfficiency:        ptr(0.9),
		}
	}
	cfg := &Config{
		Port: PortConfig{
			Name:             "Marina Verde",
			Capacity:         5,
			Lat:              38.72,
			Lon:              -9.14,
			SiteMaxPowerW:    20000,
			ChargerMaxPowerW: 10000,
			NumChargers:      2,
		},
		Boats: []BoatConfig{
			boat("EcoWave", 80000),
			boat("SeaVolt", 100000),
		},
		Trips: []TripConfig{
			{DepartureOffset: time.Hour, Duration: time.Hour, DistanceM: 10000},
			{DepartureOffset: 3 * time.Hour, Duration: time.Hour, DistanceM: 15000},
		},
		Simulation: SimulationConfig{ChargeDuration: time.Hour},
	}
	cfg.SetDefaults()
	return cfg
}
