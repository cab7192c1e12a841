package dbus

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned when a signal is emitted before Start.
var ErrNotConnected = errors.New("not connected to D-Bus")

func (s *NotificationServer) emit(name string, values ...any) error {
	s.mu.Lock()
	e := s.emitter
	s.mu.Unlock()

	if e == nil {
		return ErrNotConnected
	}
	if err := e.Emit(DBusPath, DBusInterface+"."+name, values...); err != nil {
		return fmt.Errorf("failed to emit %s signal: %w", name, err)
	}
	return nil
}

// EmitNotificationClosed emits the NotificationClosed signal.
func (s *NotificationServer) EmitNotificationClosed(id uint32, reason CloseReason) error {
	if err := s.emit("NotificationClosed", id, uint32(reason)); err != nil {
		return err
	}
	s.logger.Debug("emitted NotificationClosed signal", "id", id, "reason", reason.String())
	return nil
}

// EmitActionInvoked emits the ActionInvoked signal.
func (s *NotificationServer) EmitActionInvoked(id uint32, actionKey string) error {
	if err := s.emit("ActionInvoked", id, actionKey); err != nil {
		return err
	}
	s.logger.Debug("emitted ActionInvoked signal", "id", id, "action_key", actionKey)
	return nil
}
