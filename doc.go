// Package arcinfo provides a bounded binary accessor for inspecting archive
// files from disk or from an in-memory buffer.
//
// The accessor reads through a validated byte window with a uniform cursor,
// so that format decoders never read outside the range established at open
// time. Decoders implement the [Analyzer] interface and drive the cursor to
// populate their entry tables; [ZipReader] and [RarReader] are the bundled
// implementations.
//
// Configuration is done using the [Config], which is a configuration struct
// that can be used to set the logger, the telemetry hook, the maximum buffer
// size, and the chunk size used when saving ranges to disk. Telemetry data is
// captured during analysis using the telemetry package.
package arcinfo
