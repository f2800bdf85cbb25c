// Package worker runs a supervised task and emits a liveness pulse on every iteration.
//
// # Worker Loop
//
// Each iteration of Worker.Run:
//
//  1. Records a pulse on the shared liveness signal
//  2. Runs one Step of the task (any duration)
//  3. Returns if the step answered StepStop, otherwise loops
//
// A worker never tells the supervisor that it stopped. Termination is detected
// only through the absence of further pulses, which models crash detection by
// timeout rather than by shutdown notification.
//
// # Generations
//
// Every (re)start creates a new Worker with an increasing generation number
// and a fresh UUID. Spawn returns a Handle for the generation; the supervisor
// keeps the newest handle and abandons older ones without joining them.
package worker
