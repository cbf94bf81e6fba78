// Package metadata is the per-module metadata container the passes share.
//
// A Container holds one FunctionMD per function: the implicit argument
// list (see package argview), OpenCL argument strings, buffer location
// records, the resource allocation record written by address promotion,
// and the private frame result. Module-wide flags live in ModuleFlags.
//
// The container is not synchronized. A single pass pipeline owns it.
package metadata
