package input

import (
	"github.com/microsoft/mu-hid-go/internal/status"
	"github.com/microsoft/mu-hid-go/keyboard"
	"github.com/microsoft/mu-hid-go/pointer"
)

// SimpleTextInput is the basic text-input service (SPEC_FULL §6.7): a thin
// shim over keyboard.Handler that recovers its handler through the arena
// rather than raw pointer arithmetic (§9), and returns status.DeviceError
// if the record has been detached (Stop already ran, or a teardown error
// leaked it).
type SimpleTextInput struct {
	arena *handlerArena
	idx   int
}

func (s SimpleTextInput) handler() (*keyboard.Handler, error) {
	rec, ok := s.arena.get(s.idx)
	if !ok || rec.keyboard == nil {
		return nil, status.New(status.DeviceError)
	}
	return rec.keyboard, nil
}

// Reset delegates to keyboard.Handler.Reset.
func (s SimpleTextInput) Reset(extendedVerification bool) error {
	h, err := s.handler()
	if err != nil {
		return err
	}
	return h.Reset(extendedVerification)
}

// ReadKey delegates to keyboard.Handler.ReadKey.
func (s SimpleTextInput) ReadKey() (keyboard.KeyData, error) {
	h, err := s.handler()
	if err != nil {
		return keyboard.KeyData{}, err
	}
	return h.ReadKey()
}

// WaitForKeyEvent delegates to keyboard.Handler.WaitForKey.
func (s SimpleTextInput) WaitForKeyEvent(ready chan<- struct{}) error {
	h, err := s.handler()
	if err != nil {
		return err
	}
	h.WaitForKey(ready)
	return nil
}

// SimpleTextInputEx is the extended text-input service (SPEC_FULL §6.7).
type SimpleTextInputEx struct {
	arena *handlerArena
	idx   int
}

func (s SimpleTextInputEx) handler() (*keyboard.Handler, error) {
	rec, ok := s.arena.get(s.idx)
	if !ok || rec.keyboard == nil {
		return nil, status.New(status.DeviceError)
	}
	return rec.keyboard, nil
}

func (s SimpleTextInputEx) Reset(extendedVerification bool) error {
	h, err := s.handler()
	if err != nil {
		return err
	}
	return h.Reset(extendedVerification)
}

func (s SimpleTextInputEx) ReadKeyEx() (keyboard.KeyData, error) {
	h, err := s.handler()
	if err != nil {
		return keyboard.KeyData{}, err
	}
	return h.ReadKeyEx()
}

func (s SimpleTextInputEx) WaitForKeyExEvent(ready chan<- struct{}) error {
	h, err := s.handler()
	if err != nil {
		return err
	}
	h.WaitForKey(ready)
	return nil
}

func (s SimpleTextInputEx) SetState(toggleMask uint8) error {
	h, err := s.handler()
	if err != nil {
		return err
	}
	return h.SetState(toggleMask)
}

func (s SimpleTextInputEx) RegisterKeyNotify(pattern keyboard.NotifyPattern, cb keyboard.NotifyFunc) (keyboard.NotifyHandle, error) {
	if cb == nil {
		return 0, status.New(status.InvalidParameter)
	}
	h, err := s.handler()
	if err != nil {
		return 0, err
	}
	return h.RegisterKeyNotify(pattern, cb)
}

func (s SimpleTextInputEx) UnregisterKeyNotify(handle keyboard.NotifyHandle) error {
	h, err := s.handler()
	if err != nil {
		return err
	}
	return h.UnregisterKeyNotify(handle)
}

// AbsolutePointer is the absolute-pointer service (SPEC_FULL §6.7).
type AbsolutePointer struct {
	arena *handlerArena
	idx   int
}

func (s AbsolutePointer) handler() (*pointer.Handler, error) {
	rec, ok := s.arena.get(s.idx)
	if !ok || rec.pointer == nil {
		return nil, status.New(status.DeviceError)
	}
	return rec.pointer, nil
}

func (s AbsolutePointer) Reset(extendedVerification bool) error {
	h, err := s.handler()
	if err != nil {
		return err
	}
	return h.Reset(extendedVerification)
}

func (s AbsolutePointer) GetState() (pointer.State, error) {
	h, err := s.handler()
	if err != nil {
		return pointer.State{}, err
	}
	return h.GetState()
}

func (s AbsolutePointer) WaitForInputEvent(ready chan<- struct{}) error {
	h, err := s.handler()
	if err != nil {
		return err
	}
	h.WaitForInput(ready)
	return nil
}

func (s AbsolutePointer) Mode() (pointer.Mode, error) {
	h, err := s.handler()
	if err != nil {
		return pointer.Mode{}, err
	}
	return h.GetMode(), nil
}
