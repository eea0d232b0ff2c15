// Package model defines shared data types used across alertfeed.
//
// Conventions:
//   - Timestamps: int64 milliseconds since Unix epoch
//   - Absent numeric wire fields normalize to 0
//   - Absent string wire fields normalize to the "N/A" sentinel
//   - Week52High/Week52Low are the only nullable fields
package model
