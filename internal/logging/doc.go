// Package logging provides structured logging for dutctl.
//
// Logging is silent by default so that command output stays clean for
// scripting. Set the DUTCTL_LOG_LEVEL environment variable (debug, info,
// warn, error) to enable console logging, most usefully "debug" to see
// every datagram on the wire as hex and ASCII.
package logging
