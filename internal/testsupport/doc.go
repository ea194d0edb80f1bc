// Package testsupport provides shared fixtures: per-test configs, journal
// stores on temp directories, and an in-memory OMERO fake with scriptable
// failures.
package testsupport
