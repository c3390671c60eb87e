// Package epicmix provides a client for the EpicMix rider statistics API
// behind the Vail "mountain.live" bridge.
//
// Features:
// - Username/password login with a single transparent token refresh on 401.
// - Strictly decoded records for lifetime, season, daily and lift-ride stats.
// - Optional zap logging and prometheus instrumentation.
package epicmix
