// Package telemetry provides a way to capture telemetry data during the
// analysis of an archive source.
//
// The package provides a struct type Data that holds all telemetry data of an
// analysis run.
package telemetry
