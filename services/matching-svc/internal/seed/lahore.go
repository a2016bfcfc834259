// Package seed ships the curated Lahore road network and the starter data the
// service boots with when seeding is enabled.
package seed

import (
	"bloodlink/pkg/domain"
)

// Locations returns the 24 served areas in canonical order.
func Locations() []domain.Location {
	return []domain.Location{
		{ID: "gulberg", Name: "Gulberg", Lat: 31.5204, Lng: 74.3587},
		{ID: "dha", Name: "DHA", Lat: 31.4697, Lng: 74.4039},
		{ID: "johar_town", Name: "Johar Town", Lat: 31.4697, Lng: 74.2728},
		{ID: "model_town", Name: "Model Town", Lat: 31.4834, Lng: 74.3155},
		{ID: "allama_iqbal_town", Name: "Allama Iqbal Town", Lat: 31.4947, Lng: 74.2603},
		{ID: "garden_town", Name: "Garden Town", Lat: 31.5124, Lng: 74.3295},
		{ID: "cantt", Name: "Cantt", Lat: 31.5497, Lng: 74.3436},
		{ID: "township", Name: "Township", Lat: 31.4503, Lng: 74.2833},
		{ID: "wapda_town", Name: "Wapda Town", Lat: 31.4587, Lng: 74.2528},
		{ID: "bahria_town", Name: "Bahria Town", Lat: 31.3677, Lng: 74.1805},
		{ID: "iqbal_town", Name: "Iqbal Town", Lat: 31.5012, Lng: 74.2456},
		{ID: "sabzazar", Name: "Sabzazar", Lat: 31.4789, Lng: 74.2678},
		{ID: "faisal_town", Name: "Faisal Town", Lat: 31.4556, Lng: 74.3012},
		{ID: "cavalry_ground", Name: "Cavalry Ground", Lat: 31.5123, Lng: 74.3678},
		{ID: "defence_raya", Name: "Defence Raya", Lat: 31.4234, Lng: 74.4123},
		{ID: "valencia", Name: "Valencia Town", Lat: 31.4012, Lng: 74.2234},
		{ID: "paragon_city", Name: "Paragon City", Lat: 31.3856, Lng: 74.1567},
		{ID: "lake_city", Name: "Lake City", Lat: 31.3523, Lng: 74.1234},
		{ID: "mall_road", Name: "Mall Road", Lat: 31.5567, Lng: 74.3234},
		{ID: "old_lahore", Name: "Old Lahore (Walled City)", Lat: 31.5823, Lng: 74.3156},
		{ID: "shadman", Name: "Shadman", Lat: 31.5345, Lng: 74.3456},
		{ID: "liberty", Name: "Liberty Market Area", Lat: 31.5123, Lng: 74.3412},
		{ID: "peco_road", Name: "PECO Road", Lat: 31.4534, Lng: 74.2456},
		{ID: "raiwind", Name: "Raiwind", Lat: 31.2567, Lng: 74.2123},
	}
}

// Roads returns the 49 undirected road segments, distances in km.
func Roads() []domain.RoadEdge {
	return []domain.RoadEdge{
		{From: "gulberg", To: "dha", Distance: 7},
		{From: "gulberg", To: "model_town", Distance: 4},
		{From: "gulberg", To: "garden_town", Distance: 3},
		{From: "gulberg", To: "cantt", Distance: 5},
		{From: "gulberg", To: "cavalry_ground", Distance: 4},
		{From: "gulberg", To: "shadman", Distance: 3},
		{From: "gulberg", To: "liberty", Distance: 2},
		{From: "dha", To: "johar_town", Distance: 8},
		{From: "dha", To: "cantt", Distance: 9},
		{From: "dha", To: "bahria_town", Distance: 12},
		{From: "dha", To: "defence_raya", Distance: 5},
		{From: "dha", To: "valencia", Distance: 10},
		{From: "johar_town", To: "model_town", Distance: 7},
		{From: "johar_town", To: "allama_iqbal_town", Distance: 6},
		{From: "johar_town", To: "wapda_town", Distance: 4},
		{From: "johar_town", To: "faisal_town", Distance: 4},
		{From: "model_town", To: "allama_iqbal_town", Distance: 5},
		{From: "model_town", To: "garden_town", Distance: 5},
		{From: "model_town", To: "township", Distance: 6},
		{From: "model_town", To: "faisal_town", Distance: 5},
		{From: "allama_iqbal_town", To: "township", Distance: 4},
		{From: "allama_iqbal_town", To: "iqbal_town", Distance: 4},
		{From: "allama_iqbal_town", To: "sabzazar", Distance: 3},
		{From: "garden_town", To: "cantt", Distance: 4},
		{From: "garden_town", To: "liberty", Distance: 2},
		{From: "cantt", To: "cavalry_ground", Distance: 5},
		{From: "cantt", To: "mall_road", Distance: 3},
		{From: "cantt", To: "shadman", Distance: 4},
		{From: "township", To: "wapda_town", Distance: 5},
		{From: "township", To: "sabzazar", Distance: 5},
		{From: "township", To: "peco_road", Distance: 4},
		{From: "wapda_town", To: "bahria_town", Distance: 15},
		{From: "wapda_town", To: "valencia", Distance: 8},
		{From: "bahria_town", To: "paragon_city", Distance: 6},
		{From: "bahria_town", To: "lake_city", Distance: 8},
		{From: "bahria_town", To: "raiwind", Distance: 10},
		{From: "iqbal_town", To: "sabzazar", Distance: 3},
		{From: "iqbal_town", To: "peco_road", Distance: 5},
		{From: "faisal_town", To: "valencia", Distance: 7},
		{From: "cavalry_ground", To: "shadman", Distance: 3},
		{From: "defence_raya", To: "valencia", Distance: 8},
		{From: "valencia", To: "paragon_city", Distance: 10},
		{From: "paragon_city", To: "lake_city", Distance: 5},
		{From: "lake_city", To: "raiwind", Distance: 8},
		{From: "mall_road", To: "old_lahore", Distance: 4},
		{From: "mall_road", To: "shadman", Distance: 3},
		{From: "old_lahore", To: "shadman", Distance: 5},
		{From: "shadman", To: "liberty", Distance: 2},
		{From: "peco_road", To: "raiwind", Distance: 12},
	}
}

// Donors returns the starter donor registry.
func Donors() []domain.Donor {
	return []domain.Donor{
		{ID: "1", Name: "Ahmed Khan", BloodType: domain.APositive, LocationID: "gulberg", Phone: "0300-1234567", Available: true},
		{ID: "2", Name: "Sara Ali", BloodType: domain.ONegative, LocationID: "dha", Phone: "0301-2345678", Available: true},
		{ID: "3", Name: "Usman Malik", BloodType: domain.BPositive, LocationID: "model_town", Phone: "0302-3456789", Available: true},
		{ID: "4", Name: "Fatima Hassan", BloodType: domain.ABPositive, LocationID: "johar_town", Phone: "0303-4567890", Available: false},
		{ID: "5", Name: "Bilal Ahmed", BloodType: domain.ANegative, LocationID: "garden_town", Phone: "0304-5678901", Available: true},
		{ID: "6", Name: "Ayesha Tariq", BloodType: domain.OPositive, LocationID: "cantt", Phone: "0305-6789012", Available: true},
		{ID: "7", Name: "Hassan Raza", BloodType: domain.BNegative, LocationID: "township", Phone: "0306-7890123", Available: true},
		{ID: "8", Name: "Zara Sheikh", BloodType: domain.ABNegative, LocationID: "bahria_town", Phone: "0307-8901234", Available: false},
		{ID: "9", Name: "Ali Hussain", BloodType: domain.ONegative, LocationID: "allama_iqbal_town", Phone: "0308-9012345", Available: true},
		{ID: "10", Name: "Maryam Nawaz", BloodType: domain.APositive, LocationID: "wapda_town", Phone: "0309-0123456", Available: true},
	}
}

// Inventory returns the starter bank stock. O- keeps 3 units reserved for
// emergencies.
func Inventory() []domain.InventoryEntry {
	return []domain.InventoryEntry{
		{BloodType: domain.APositive, Total: 15},
		{BloodType: domain.ANegative, Total: 8},
		{BloodType: domain.BPositive, Total: 12},
		{BloodType: domain.BNegative, Total: 6},
		{BloodType: domain.ABPositive, Total: 10},
		{BloodType: domain.ABNegative, Total: 4},
		{BloodType: domain.OPositive, Total: 20},
		{BloodType: domain.ONegative, Total: 5, Reserved: 3},
	}
}
