// Package executor provides the deployment executor implementations the
// coordinator drives. The command executor shells out to user-configured
// deploy and rollback commands; the simulated executor reports scripted
// outcomes without touching anything, for dry runs and tests.
package executor
