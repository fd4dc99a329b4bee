// Package waypoint implements the waypoint catalogue entity.
package waypoint
