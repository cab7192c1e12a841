// Package dbus puts the toast manager on the session bus. It implements the
// org.freedesktop.Notifications interface, so ordinary applications can show
// toasts, plus the io.github.jmylchreest.Histoast control interface used by
// the histoast CLI. Client is the matching caller side.
package dbus
