//go:build !release

package global

var MAJOR = 0
var MINOR = 0
var PATCH = 0

var Version = "development"
