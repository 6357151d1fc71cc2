package grbflow

// Version is the release version, set at link time.
var Version = "0.1.0-dev"
