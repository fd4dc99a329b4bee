// Package task implements the delivery task aggregate: its status machine,
// priority and type enums, the request/return reference, route stops and the
// append-only status history.
//
// Key business rules:
//   - a task references exactly one approved request or one return
//   - a robot is bound only while the task is ASSIGNED or IN_PROGRESS
//   - COMPLETED, FAILED and CANCELLED are terminal
//   - a FAILED task may be replaced by a PENDING retry with attempt+1
package task
