// Package domain models tsunami-risk telemetry and seismic data.
//
// # Data Sources
//
// Sea-level telemetry comes from two independent providers and a synthetic
// fallback, tried in that order for every station:
//
//	1. IOC Sea Level Monitoring Facility CSV export (quality "verified").
//	2. NOAA NDBC realtime2 buoy text files (quality "measured"), only for
//	   regions mapped to a buoy.
//	3. A deterministic-shape tide model (quality "estimated").
//
// Earthquake events come from the USGS FDSN event service.
//
// # Units
//
// IOC values arrive in centimeters. They are converted to meters and shifted
// by a +5.0 m display offset so charts render above zero:
//
//	value_m = raw_cm / 100 + 5.0
//
// NDBC wave height (WVHT) is already in meters. The NDBC missing-data token
// "MM" maps to a fixed default wave height.
//
// # Reading Lists
//
// Every SourceResult holds between MinReadings (5) and MaxReadings (10)
// chronological readings. Feeds that decode fewer than MinReadings rows are
// rejected with ErrInsufficientData and the next provider is tried.
package domain
