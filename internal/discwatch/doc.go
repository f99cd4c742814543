// Package discwatch reports media insertions on the configured optical drive.
//
// A Monitor subscribes to kernel udev events over netlink and invokes its
// handler for every block-device change event on the drive that carries a
// media flag. The handler runs on the monitor goroutine, so a slow handler
// delays (but does not drop) the following events.
package discwatch
