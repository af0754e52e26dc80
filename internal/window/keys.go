package window

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gpucontext"
)

var keyTable = buildKeyTable()

func buildKeyTable() map[glfw.Key]gpucontext.Key {
	t := map[glfw.Key]gpucontext.Key{
		glfw.KeyEscape:       gpucontext.KeyEscape,
		glfw.KeyTab:          gpucontext.KeyTab,
		glfw.KeyBackspace:    gpucontext.KeyBackspace,
		glfw.KeyEnter:        gpucontext.KeyEnter,
		glfw.KeySpace:        gpucontext.KeySpace,
		glfw.KeyInsert:       gpucontext.KeyInsert,
		glfw.KeyDelete:       gpucontext.KeyDelete,
		glfw.KeyHome:         gpucontext.KeyHome,
		glfw.KeyEnd:          gpucontext.KeyEnd,
		glfw.KeyPageUp:       gpucontext.KeyPageUp,
		glfw.KeyPageDown:     gpucontext.KeyPageDown,
		glfw.KeyLeft:         gpucontext.KeyLeft,
		glfw.KeyRight:        gpucontext.KeyRight,
		glfw.KeyUp:           gpucontext.KeyUp,
		glfw.KeyDown:         gpucontext.KeyDown,
		glfw.KeyLeftShift:    gpucontext.KeyLeftShift,
		glfw.KeyRightShift:   gpucontext.KeyRightShift,
		glfw.KeyLeftControl:  gpucontext.KeyLeftControl,
		glfw.KeyRightControl: gpucontext.KeyRightControl,
		glfw.KeyLeftAlt:      gpucontext.KeyLeftAlt,
		glfw.KeyRightAlt:     gpucontext.KeyRightAlt,
		glfw.KeyLeftSuper:    gpucontext.KeyLeftSuper,
		glfw.KeyRightSuper:   gpucontext.KeyRightSuper,
		glfw.KeyMinus:        gpucontext.KeyMinus,
		glfw.KeyEqual:        gpucontext.KeyEqual,
		glfw.KeyLeftBracket:  gpucontext.KeyLeftBracket,
		glfw.KeyRightBracket: gpucontext.KeyRightBracket,
		glfw.KeyBackslash:    gpucontext.KeyBackslash,
		glfw.KeySemicolon:    gpucontext.KeySemicolon,
		glfw.KeyApostrophe:   gpucontext.KeyApostrophe,
		glfw.KeyGraveAccent:  gpucontext.KeyGrave,
		glfw.KeyComma:        gpucontext.KeyComma,
		glfw.KeyPeriod:       gpucontext.KeyPeriod,
		glfw.KeySlash:        gpucontext.KeySlash,
		glfw.KeyKPDecimal:    gpucontext.KeyNumpadDecimal,
		glfw.KeyKPDivide:     gpucontext.KeyNumpadDivide,
		glfw.KeyKPMultiply:   gpucontext.KeyNumpadMultiply,
		glfw.KeyKPSubtract:   gpucontext.KeyNumpadSubtract,
		glfw.KeyKPAdd:        gpucontext.KeyNumpadAdd,
		glfw.KeyKPEnter:      gpucontext.KeyNumpadEnter,
		glfw.KeyCapsLock:     gpucontext.KeyCapsLock,
		glfw.KeyScrollLock:   gpucontext.KeyScrollLock,
		glfw.KeyNumLock:      gpucontext.KeyNumLock,
		glfw.KeyPrintScreen:  gpucontext.KeyPrintScreen,
		glfw.KeyPause:        gpucontext.KeyPause,
	}
	// Letters, digits, function keys and the keypad digits are contiguous
	// in both enumerations.
	for i := 0; i < 26; i++ {
		t[glfw.KeyA+glfw.Key(i)] = gpucontext.KeyA + gpucontext.Key(i)
	}
	for i := 0; i < 10; i++ {
		t[glfw.Key0+glfw.Key(i)] = gpucontext.Key0 + gpucontext.Key(i)
		t[glfw.KeyKP0+glfw.Key(i)] = gpucontext.KeyNumpad0 + gpucontext.Key(i)
	}
	for i := 0; i < 12; i++ {
		t[glfw.KeyF1+glfw.Key(i)] = gpucontext.KeyF1 + gpucontext.Key(i)
	}
	return t
}

func translateKey(k glfw.Key) gpucontext.Key {
	if gk, ok := keyTable[k]; ok {
		return gk
	}
	return gpucontext.KeyUnknown
}

func translateMods(m glfw.ModifierKey) gpucontext.Modifiers {
	var out gpucontext.Modifiers
	if m&glfw.ModShift != 0 {
		out |= gpucontext.ModShift
	}
	if m&glfw.ModControl != 0 {
		out |= gpucontext.ModControl
	}
	if m&glfw.ModAlt != 0 {
		out |= gpucontext.ModAlt
	}
	if m&glfw.ModSuper != 0 {
		out |= gpucontext.ModSuper
	}
	if m&glfw.ModCapsLock != 0 {
		out |= gpucontext.ModCapsLock
	}
	if m&glfw.ModNumLock != 0 {
		out |= gpucontext.ModNumLock
	}
	return out
}
