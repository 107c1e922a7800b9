package hii

// Modifier names the semantic key a HiiKeyDescriptor maps to, beyond the
// plain unicode value: lock keys, function keys, navigation keys, and the
// left/right qualifier keys. A descriptor with NullModifier carries no
// special meaning beyond its unicode fields.
type Modifier uint16

const (
	NullModifier Modifier = iota
	LeftControlModifier
	RightControlModifier
	LeftAltModifier
	RightAltModifier
	AltGrModifier
	LeftShiftModifier
	RightShiftModifier
	CapsLockModifier
	NumLockModifier
	LeftLogoModifier
	RightLogoModifier
	MenuModifier
	SysRequestModifier
	FunctionKeyOneModifier
	FunctionKeyTwoModifier
	FunctionKeyThreeModifier
	FunctionKeyFourModifier
	FunctionKeyFiveModifier
	FunctionKeySixModifier
	FunctionKeySevenModifier
	FunctionKeyEightModifier
	FunctionKeyNineModifier
	FunctionKeyTenModifier
	FunctionKeyElevenModifier
	FunctionKeyTwelveModifier
	PrintModifier
	ScrollLockModifier
	PauseModifier
	InsertModifier
	HomeModifier
	PageUpModifier
	DeleteModifier
	EndModifier
	PageDownModifier
	RightArrowModifier
	LeftArrowModifier
	DownArrowModifier
	UpArrowModifier

	// NsKeyModifier marks a descriptor as a non-spacing (dead) key: typing it
	// emits nothing itself; it selects which dependent descriptors the next
	// key is resolved against.
	NsKeyModifier
	// NsKeyDependencyModifier marks a descriptor as belonging to the
	// non-spacing key immediately preceding it in the layout's key list.
	NsKeyDependencyModifier
)

// AffectedBy is a bitmask of the lock/shift states that alter which of a
// descriptor's four unicode fields is emitted.
type AffectedBy uint16

const (
	AffectedByStandardShift AffectedBy = 1 << iota
	AffectedByCapsLock
	AffectedByNumLock
)
