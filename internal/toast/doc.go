// Package toast manages the lifecycle and layout of transient notifications.
//
// A Manager admits toasts into a bottom-up stack inside the backend's work
// area, slides them in and out through an animation scheduler, closes them
// after their auto-close delay, and queues the ones that do not fit until
// space frees up.
//
// Lifecycle of a toast:
//
//	Queued -> Entering -> Active -> Exiting -> Removed
//
// Queued toasts hold no surface and reserve no space. A toast reaches Removed
// either when its exit animation completes or when it is hidden while queued.
//
// Mutations run under a single manager lock. Animation hooks never take that
// lock: they post transitions to a mailbox that the transition goroutine
// applies.
package toast
