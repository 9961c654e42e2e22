// Package scan discovers reviewable source files.
//
// [Dir] walks a directory tree, skipping dependency and VCS directories,
// applying include/exclude glob patterns and an extension allow-list, and
// returns files in stable lexical order. [File] reads one explicitly named
// file and bypasses the allow-list.
package scan
