// Package daemon wires the toast manager to its surroundings: the surface
// backend, the theme loader, audio, the D-Bus front end and configuration
// hot-reload.
package daemon
